package tree

import (
	"sort"
	"strings"
)

// sortedNames returns a directory's child names in lexical order, so
// rendering is deterministic despite Children being a map.
func sortedNames(children map[string]*Node) []string {
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PrintSubtree renders n and its descendants as a box-drawing tree,
// matching ccfs-commons::FileMetadata::print_subtree.
func (n *Node) PrintSubtree() string {
	var b strings.Builder
	b.WriteString(n.Name)
	if n.Kind == KindDirectory {
		names := sortedNames(n.Children)
		for i, name := range names {
			child := n.Children[name]
			last := i == len(names)-1
			prefix := "├─"
			subdirPrefix := "│ "
			if last {
				prefix = "└─"
				subdirPrefix = "  "
			}
			subtree := child.PrintSubtree()
			lines := strings.Split(subtree, "\n")
			b.WriteString("\n" + prefix + " " + lines[0])
			for _, l := range lines[1:] {
				b.WriteString("\n" + subdirPrefix + " " + l)
			}
		}
	}
	return b.String()
}

// ListCurrentDir lists n's immediate children, one name per line, in
// lexical order. Returns a KindNotADir error if n is a file. Matches
// ccfs-commons::FileMetadata::print_current_dir.
func (n *Node) ListCurrentDir() (string, error) {
	children, err := n.GetChildren()
	if err != nil {
		return "", err
	}
	names := sortedNames(children)
	return strings.Join(names, "\n"), nil
}
