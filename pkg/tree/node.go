package tree

import (
	"strings"
	"time"

	"github.com/ccfs/ccfs/pkg/ccfserr"
)

// FileStatus is the lifecycle state of a File node.
type FileStatus string

const (
	FileStatusStarted   FileStatus = "started"
	FileStatusCompleted FileStatus = "completed"
	FileStatusCanceled  FileStatus = "canceled"
)

// Kind discriminates the two shapes a Node can take. CCFS ports the
// original's FileInfo enum (Directory{children} / File{id,size,chunks,...})
// as a flat struct with a Kind tag rather than a Go interface, so the
// state machine can serialize a whole tree with one json.Marshal call.
type Kind int

const (
	KindDirectory Kind = iota
	KindFile
)

// Node is one entry in the CCFS namespace tree: either a directory with
// named children, or a file with a chunk list and upload progress.
// Mirrors ccfs-commons::FileMetadata/FileInfo.
type Node struct {
	Name       string
	Kind       Kind
	Version    int
	CreatedAt  time.Time
	ModifiedAt time.Time

	// Directory fields
	Children map[string]*Node

	// File fields
	FileID         string
	Size           uint64
	ChunkIDs       []string
	CompletedCount int
	Status         FileStatus
}

// NewRoot returns a fresh root directory node named ROOT_DIR.
func NewRoot() *Node {
	return NewDir(ROOT_DIR)
}

// NewDir constructs a directory node with no children.
func NewDir(name string) *Node {
	now := time.Now().UTC()
	return &Node{
		Name:       name,
		Kind:       KindDirectory,
		Children:   make(map[string]*Node),
		Version:    1,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// NewFile constructs a file node with the given id, size and chunk list.
func NewFile(name, fileID string, size uint64, chunkIDs []string) *Node {
	now := time.Now().UTC()
	return &Node{
		Name:       name,
		Kind:       KindFile,
		FileID:     fileID,
		Size:       size,
		ChunkIDs:   chunkIDs,
		Status:     FileStatusStarted,
		Version:    1,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// GetChildren returns the node's children, or a KindNotADir error if the
// node is a file.
func (n *Node) GetChildren() (map[string]*Node, error) {
	if n.Kind != KindDirectory {
		return nil, ccfserr.New(ccfserr.KindNotADir, n.Name+" is not a directory")
	}
	return n.Children, nil
}

// GetChunks returns the node's chunk IDs, or a KindNotAFile error if the
// node is a directory.
func (n *Node) GetChunks() ([]string, error) {
	if n.Kind != KindFile {
		return nil, ccfserr.New(ccfserr.KindNotAFile, n.Name+" is not a file")
	}
	return n.ChunkIDs, nil
}

// Traverse walks target (a slash-separated path relative to n, a leading
// "/" skipped if present) and returns the node it lands on. Mirrors
// FileMetadata::traverse.
func (n *Node) Traverse(target string) (*Node, error) {
	curr := n.Navigate()
	if target != "" {
		segments := splitTerminator(target, '/')
		skip := 0
		if strings.HasPrefix(target, ROOT_DIR) {
			skip = 1
		}
		var err error
		for _, seg := range segments[skip:] {
			curr, err = curr.Child(seg)
			if err != nil {
				return nil, err
			}
		}
	}
	return curr.node, nil
}

// InsertDir adds a new empty directory named name as a child of n,
// overwriting any existing child with that name (Open Question 1: name
// collisions silently overwrite, matching the original).
func (n *Node) InsertDir(name string) error {
	children, err := n.GetChildren()
	if err != nil {
		return err
	}
	children[name] = NewDir(name)
	n.ModifiedAt = time.Now().UTC()
	return nil
}

// InsertFile adds a new file named name as a child of n, overwriting any
// existing child with that name.
func (n *Node) InsertFile(name, fileID string, size uint64, chunkIDs []string) error {
	children, err := n.GetChildren()
	if err != nil {
		return err
	}
	children[name] = NewFile(name, fileID, size, chunkIDs)
	n.ModifiedAt = time.Now().UTC()
	return nil
}

// Navigate returns a read-only Navigator rooted at n.
func (n *Node) Navigate() *Navigator {
	return &Navigator{node: n}
}

// Zipper returns a mutable Zipper positioned on n. Children it moves into
// are detached from n's subtree; Finish must be called to reattach them
// once editing is done.
func (n *Node) Zipper() *Zipper {
	return &Zipper{node: n}
}
