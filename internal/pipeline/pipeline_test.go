package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"annotree/internal/feature"
	"annotree/internal/fragment"
)

// Compile-time check: a plain function can be a Loader.
var _ Loader = LoaderFunc(nil)

// fakeLoader returns two contexts per path, sleeping a random while first
// so that results come back out of order.
func fakeLoader(fail string) Loader {
	return LoaderFunc(func(path string) ([]*feature.Context, error) {
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
		if path == fail {
			return nil, errors.New("cannot load " + path)
		}
		return []*feature.Context{
			feature.NewContext(path+"#0", feature.Span{X1: 1, X2: 10}),
			feature.NewContext(path+"#1", feature.Span{X1: 1, X2: 10}),
		}, nil
	})
}

func paths(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("f%02d", i)
	}
	return out
}

func TestForEachContext_InputOrder(t *testing.T) {
	var got []string
	err := ForEachContext(context.Background(), Config{Threads: 4}, paths(20), fakeLoader(""), func(it Item) error {
		if it.Err != nil {
			t.Fatalf("unexpected load error: %v", it.Err)
		}
		got = append(got, it.Ctx.Sequence)
		return nil
	})
	if err != nil {
		t.Fatalf("pipeline err: %v", err)
	}
	if len(got) != 40 {
		t.Fatalf("want 40 contexts, got %d", len(got))
	}
	for i, s := range got {
		want := fmt.Sprintf("f%02d#%d", i/2, i%2)
		if s != want {
			t.Fatalf("position %d: want %s, got %s", i, want, s)
		}
	}
}

func TestForEachContext_DedupesPaths(t *testing.T) {
	n := 0
	err := ForEachContext(context.Background(), Config{Threads: 2}, []string{"a", "b", "a"}, fakeLoader(""), func(Item) error {
		n++
		return nil
	})
	if err != nil || n != 4 {
		t.Fatalf("want 4 visits without error, got %d, %v", n, err)
	}
}

func TestForEachContext_LoadErrorIsDelivered(t *testing.T) {
	var failed []string
	var seen int
	err := ForEachContext(context.Background(), Config{Threads: 3}, paths(5), fakeLoader("f02"), func(it Item) error {
		if it.Err != nil {
			failed = append(failed, it.Source)
			return nil
		}
		seen++
		return nil
	})
	if err != nil {
		t.Fatalf("pipeline err: %v", err)
	}
	if len(failed) != 1 || failed[0] != "f02" || seen != 8 {
		t.Fatalf("failed=%v seen=%d", failed, seen)
	}
}

func TestForEachContext_VisitErrorStops(t *testing.T) {
	boom := errors.New("boom")
	var (
		mu   sync.Mutex
		rest []*feature.Context
	)
	calls := 0
	err := ForEachContext(context.Background(), Config{Threads: 2}, paths(6), LoaderFunc(func(p string) ([]*feature.Context, error) {
		c := feature.NewContext(p, feature.Span{X1: 1, X2: 2})
		mu.Lock()
		rest = append(rest, c)
		mu.Unlock()
		return []*feature.Context{c}, nil
	}), func(Item) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("visit called after error: %d calls", calls)
	}
	destroyed := 0
	for _, c := range rest {
		if !c.Valid() {
			destroyed++
		}
	}
	if destroyed != 4 {
		t.Fatalf("undelivered contexts should be destroyed, got %d", destroyed)
	}
}

func TestForEachContext_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := ForEachContext(ctx, Config{Threads: 2}, paths(50), fakeLoader(""), func(Item) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestForEachContext_Fragments(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "a.yaml")
	body := "sequence: chr1\nspan: [1, 100]\nalignments: [{name: A, blocks: [{name: B, sets: [{name: s, features: [{name: f, span: [1, 5]}]}]}]}]\n"
	if err := os.WriteFile(fn, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	styles := fragment.NewStyles()
	n := 0
	err := ForEachContext(context.Background(), Config{Threads: 1}, []string{fn}, LoaderFunc(func(p string) ([]*feature.Context, error) {
		return fragment.LoadFile(p, styles)
	}), func(it Item) error {
		n += feature.CountFeatures(it.Ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("pipeline err: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 feature, got %d", n)
	}
}
