package feature

import "fmt"

// Check verifies the structure of the subtree under n: each child sits
// exactly one level below its parent, is filed under its own id, and points
// back at its parent. In a diff context, borrowed children are exempt from
// the back-reference rule. A Context's MasterAlign must be one of its
// alignments.
func Check(n Node) error {
	a := anyOf(n)
	if !a.Valid() {
		return fmt.Errorf("%w: check: invalid node", ErrArgument)
	}
	var diff *Context
	if c := Root(n); c.IsDiff() {
		diff = c
	}
	if c, ok := n.(*Context); ok && c.MasterAlign != nil && c.Alignment(c.MasterAlign.id) != c.MasterAlign {
		return fmt.Errorf("%w: master alignment %q is not a child of %q", ErrStructural, c.MasterAlign.id, c.id)
	}
	return check(a, diff)
}

func check(a *Any, diff *Context) error {
	if a.children == nil {
		return nil
	}
	for i, c := range a.children.Values {
		ca := anyOf(c)
		switch {
		case ca == nil:
			return fmt.Errorf("%w: nil child under %s %q", ErrStructural, a.level, a.id)
		case !ca.Valid():
			return fmt.Errorf("%w: destroyed %s %q under %s %q", ErrStructural, ca.level, ca.id, a.level, a.id)
		case ca.level != a.level+1:
			return fmt.Errorf("%w: %s %q under %s %q", ErrStructural, ca.level, ca.id, a.level, a.id)
		case ca.id != a.children.Keys[i]:
			return fmt.Errorf("%w: %s %q filed as %q", ErrStructural, ca.level, ca.id, a.children.Keys[i])
		}
		borrowed := diff != nil && ca.parent != a.self && !diff.Owns(c)
		if !borrowed && ca.parent != a.self {
			return fmt.Errorf("%w: %s %q does not point back at %s %q", ErrStructural, ca.level, ca.id, a.level, a.id)
		}
		if err := check(ca, diff); err != nil {
			return err
		}
	}
	return nil
}
