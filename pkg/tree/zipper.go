package tree

import "github.com/ccfs/ccfs/pkg/ccfserr"

// Zipper is a mutable cursor into a tree. Unlike Navigator it detaches
// the current node from its parent's children map while the cursor is
// positioned on it, so the caller can freely mutate the node (rename it,
// replace its children) before reattaching. Finish must be called to
// walk back to the root and reinsert every detached node; abandoning a
// Zipper mid-walk leaves its parent chain short one child and orphans
// the subtree, so every Child call that can fail reattaches immediately
// on the error path instead of leaving the walk half-finished. Ports
// ccfs-commons::TreeZipper.
type Zipper struct {
	node   *Node
	parent *Zipper
	name   string // key node was stored under in parent.node.Children
}

// Node returns the node the zipper currently points at.
func (z *Zipper) Node() *Node { return z.node }

// Child detaches the named child from the current node and returns a
// zipper positioned on it. On failure the current node is reattached to
// its own parent before the error is returned, so no subtree is ever
// left dangling.
func (z *Zipper) Child(name string) (*Zipper, error) {
	children, err := z.node.GetChildren()
	if err != nil {
		_, _ = z.Finish()
		return nil, err
	}
	child, ok := children[name]
	if !ok {
		_, _ = z.Finish()
		return nil, ccfserr.New(ccfserr.KindNotFound, "path '"+name+"' doesn't exist")
	}
	delete(children, name)
	return &Zipper{node: child, parent: z, name: name}, nil
}

// Parent reattaches the current node into its parent's children map and
// returns a zipper positioned on the parent. Moving up from the root is
// a no-op.
func (z *Zipper) Parent() (*Zipper, error) {
	if z.parent == nil {
		return z, nil
	}
	z.reattach()
	return z.parent, nil
}

// reattach inserts z.node back into z.parent's children map under its
// original name. It is idempotent-in-intent: called once per Zipper
// before it is discarded, whether via Parent or an error path in Child.
func (z *Zipper) reattach() {
	if z.parent == nil {
		return
	}
	children, _ := z.parent.node.GetChildren()
	children[z.name] = z.node
}

// Finish walks all the way back to the root, reattaching every detached
// node, and returns the root.
func (z *Zipper) Finish() (*Node, error) {
	curr := z
	for curr.parent != nil {
		next, err := curr.Parent()
		if err != nil {
			return nil, err
		}
		curr = next
	}
	return curr.node, nil
}
