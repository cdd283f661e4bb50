package tree

// DFSIter walks a tree depth-first, pre-order. Ports
// ccfs-commons::DFSTreeIter. Child visitation order is not guaranteed —
// callers that need deterministic ordering should sort the returned
// nodes by name.
type DFSIter struct {
	stack []*Node
}

// NewDFSIter returns a DFS iterator rooted at n.
func NewDFSIter(n *Node) *DFSIter {
	return &DFSIter{stack: []*Node{n}}
}

// Next returns the next node in the walk, or nil when exhausted.
func (it *DFSIter) Next() *Node {
	if len(it.stack) == 0 {
		return nil
	}
	last := len(it.stack) - 1
	item := it.stack[last]
	it.stack = it.stack[:last]
	if item.Kind == KindDirectory {
		for _, child := range item.Children {
			it.stack = append(it.stack, child)
		}
	}
	return item
}

// BFSIter walks a tree breadth-first. Ports ccfs-commons::BFSTreeIter.
type BFSIter struct {
	queue []*Node
}

// NewBFSIter returns a BFS iterator rooted at n.
func NewBFSIter(n *Node) *BFSIter {
	return &BFSIter{queue: []*Node{n}}
}

// Next returns the next node in the walk, or nil when exhausted.
func (it *BFSIter) Next() *Node {
	if len(it.queue) == 0 {
		return nil
	}
	item := it.queue[0]
	it.queue = it.queue[1:]
	if item.Kind == KindDirectory {
		for _, child := range item.Children {
			it.queue = append(it.queue, child)
		}
	}
	return item
}

// BFSPathsIter walks a tree breadth-first, yielding the path of each
// node's parent directory alongside the node itself. Ports
// ccfs-commons::BFSPathsIter.
type BFSPathsIter struct {
	queue []*Node
	paths []string
}

// NewBFSPathsIter returns a BFS-with-paths iterator rooted at n.
func NewBFSPathsIter(n *Node) *BFSPathsIter {
	return &BFSPathsIter{queue: []*Node{n}, paths: []string{""}}
}

// Next returns the next node and the path of its parent directory, or
// (nil, "") when exhausted.
func (it *BFSPathsIter) Next() (*Node, string) {
	if len(it.queue) == 0 {
		return nil, ""
	}
	item := it.queue[0]
	path := it.paths[0]
	it.queue = it.queue[1:]
	it.paths = it.paths[1:]
	if item.Kind == KindDirectory {
		var childPath string
		switch path {
		case "":
			childPath = item.Name
		case ROOT_DIR:
			childPath = ROOT_DIR + item.Name
		default:
			childPath = path + "/" + item.Name
		}
		for _, child := range item.Children {
			it.queue = append(it.queue, child)
			it.paths = append(it.paths, childPath)
		}
	}
	return item, path
}
