package tree

import (
	"strings"

	"github.com/ccfs/ccfs/pkg/ccfserr"
)

// Navigator is a read-only cursor into a tree: the node it currently
// points at, plus the chain of ancestors needed to reconstruct its path
// or move back up. Ports ccfs-commons::TreeNavigator.
type Navigator struct {
	node   *Node
	parent *Navigator
}

// Node returns the node the navigator currently points at.
func (n *Navigator) Node() *Node { return n.node }

// Child descends into the named child, or returns a KindNotFound error.
func (n *Navigator) Child(name string) (*Navigator, error) {
	children, err := n.node.GetChildren()
	if err != nil {
		return nil, err
	}
	child, ok := children[name]
	if !ok {
		return nil, ccfserr.New(ccfserr.KindNotFound, "path '"+name+"' doesn't exist")
	}
	return &Navigator{node: child, parent: n}, nil
}

// Parent moves up one level. Attempting to go up from the root is a
// no-op: the navigator stays put, matching the original's behavior.
func (n *Navigator) Parent() *Navigator {
	if n.parent != nil {
		return n.parent
	}
	return n
}

// MoveTo resolves a single path segment: "." stays, ".." goes to the
// parent, anything else descends into that child.
func (n *Navigator) MoveTo(segment string) (*Navigator, error) {
	switch segment {
	case CURR_DIR:
		return n, nil
	case PREV_DIR:
		return n.Parent(), nil
	default:
		return n.Child(segment)
	}
}

// GetPath reconstructs the absolute, slash-separated path from the root
// to the navigator's current node.
func (n *Navigator) GetPath() string {
	var segments []string
	curr := n
	for curr.parent != nil {
		segments = append(segments, curr.node.Name)
		curr = curr.parent
	}
	if curr.node.Name == ROOT_DIR && len(segments) == 0 {
		return ROOT_DIR
	}
	// segments were collected from leaf to root; reverse them.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return ROOT_DIR + strings.Join(segments, "/")
}
