// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"annotree/internal/appcore"
	"annotree/internal/cli"
	"annotree/internal/config"
	"annotree/internal/logx"
	"annotree/internal/version"
	"annotree/internal/watch"
	"annotree/internal/writers"
)

// RunContext executes the annotree command line and returns the process
// exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	if argv == nil {
		argv = []string{} // cobra falls back to os.Args on nil
	}
	code := 0
	root := newRoot(stdout, stderr, &code)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(parent); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func newRoot(stdout, stderr io.Writer, code *int) *cobra.Command {
	var o cli.Options
	root := &cobra.Command{
		Use:   "annotree",
		Short: "Merge, erase and reverse complement genome annotation trees",
		Long: `annotree keeps a hierarchical view of genome annotation
(alignments, blocks, feature sets, features) and folds YAML fragments
into it, reporting exactly what each operation changed.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("annotree version {{.Version}}\n")
	cli.BindGlobal(root.PersistentFlags(), &o)

	// run resolves the options, installs the logger and hands over to appcore.
	run := func(cmd *cobra.Command, build func() (appcore.Options, error)) error {
		if _, err := o.Resolve(cmd.Flags()); err != nil {
			return err
		}
		co, err := build()
		if err != nil {
			return err
		}
		lg, err := logx.New(stderr, o.LogLevel, o.LogJSON)
		if err != nil {
			return err
		}
		logx.SetLogger(lg)
		defer logx.SetLogger(nil)

		co.View = o.View
		co.DNA = o.DNA
		co.Threads = o.Threads
		co.Emit = o.Emit
		co.Events = o.Events
		co.NoChangeExitCode = o.NoChangeExitCode
		if co.Op == appcore.OpRevcomp && co.Emit == writers.EmitDiff {
			// revcomp has no diff; show the result instead
			co.Emit = writers.EmitView
		}
		wf := appcore.NewTreeWriterFactory(o.Output, o.Header, co.Op == appcore.OpWatch)
		*code = appcore.Run(cmd.Context(), stdout, stderr, co, wf)
		return nil
	}

	mergeCmd := &cobra.Command{
		Use:   "merge [--view FILE] FRAGMENT...",
		Short: "Merge fragment files into the view and write the diffs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func() (appcore.Options, error) {
				return appcore.Options{Op: appcore.OpMerge, Inputs: args}, nil
			})
		},
	}
	cli.BindView(mergeCmd.Flags(), &o)

	eraseCmd := &cobra.Command{
		Use:   "erase --view FILE REMOVE...",
		Short: "Erase the features named in REMOVE files from the view",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func() (appcore.Options, error) {
				return appcore.Options{Op: appcore.OpErase, Inputs: args}, nil
			})
		},
	}
	cli.BindView(eraseCmd.Flags(), &o)
	_ = eraseCmd.MarkFlagRequired("view")

	revcompCmd := &cobra.Command{
		Use:   "revcomp VIEW",
		Short: "Reverse complement a view and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.View = args[0]
			return run(cmd, func() (appcore.Options, error) {
				return appcore.Options{Op: appcore.OpRevcomp}, nil
			})
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch [--view FILE] DIR",
		Short: "Merge fragment files as they are dropped into DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func() (appcore.Options, error) {
				debounce, err := config.Watch{Debounce: o.Debounce}.DebounceDuration()
				if err != nil {
					return appcore.Options{}, err
				}
				return appcore.Options{
					Op: appcore.OpWatch,
					Watch: watch.Config{
						Dir:       args[0],
						Pattern:   o.Pattern,
						Debounce:  debounce,
						DedupeCap: o.DedupeCap,
					},
					MetricsAddr: o.MetricsAddr,
				}, nil
			})
		},
	}
	cli.BindView(watchCmd.Flags(), &o)
	cli.BindWatch(watchCmd.Flags(), &o)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "annotree version %s\n", version.Version)
			if writers.IsBrokenPipe(err) {
				return nil
			}
			if err != nil {
				*code = 3
			}
			return nil
		},
	}

	root.AddCommand(mergeCmd, eraseCmd, revcompCmd, watchCmd, versionCmd)
	return root
}
