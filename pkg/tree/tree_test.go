package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleTree() *Node {
	root := NewRoot()
	root.InsertDir("docs")
	root.InsertFile("readme.txt", "file-root", 10, []string{"chunk-root"})
	docs := root.Children["docs"]
	docs.InsertFile("report.bin", "file-1", 2048, []string{"chunk-a", "chunk-b"})
	docs.InsertDir("archive")
	return root
}

func TestIsValidPath(t *testing.T) {
	cases := map[string]bool{
		"":            false,
		"/":           true,
		"/docs":       true,
		"/docs/":      true,
		"docs/report": true,
		".":           true,
		"..":          true,
		"docs//x":     false,
	}
	for path, want := range cases {
		assert.Equal(t, want, IsValidPath(path), "path %q", path)
	}
}

func TestEvaluatePath(t *testing.T) {
	root := buildSampleTree()

	p, err := EvaluatePath(root, "/docs")
	require.NoError(t, err)
	assert.Equal(t, "/docs", p)

	p, err = EvaluatePath(root, "/docs/./archive/..")
	require.NoError(t, err)
	assert.Equal(t, "/docs", p)

	_, err = EvaluatePath(root, "/missing")
	assert.Error(t, err)
}

func TestTraverse(t *testing.T) {
	root := buildSampleTree()

	node, err := root.Traverse("/docs/report.bin")
	require.NoError(t, err)
	assert.Equal(t, KindFile, node.Kind)
	assert.Equal(t, "file-1", node.FileID)

	_, err = root.Traverse("/docs/report.bin/x")
	assert.Error(t, err)

	_, err = root.Traverse("/nope")
	assert.Error(t, err)
}

func TestInsertOverwritesCollidingName(t *testing.T) {
	root := NewRoot()
	root.InsertDir("docs")
	require.NoError(t, root.InsertFile("docs", "file-2", 1, nil))

	node := root.Children["docs"]
	assert.Equal(t, KindFile, node.Kind)
}

func TestNavigatorMoveToAndGetPath(t *testing.T) {
	root := buildSampleTree()
	nav := root.Navigate()

	nav, err := nav.MoveTo("docs")
	require.NoError(t, err)
	assert.Equal(t, "/docs", nav.GetPath())

	nav, err = nav.MoveTo("archive")
	require.NoError(t, err)
	assert.Equal(t, "/docs/archive", nav.GetPath())

	nav, err = nav.MoveTo("..")
	require.NoError(t, err)
	assert.Equal(t, "/docs", nav.GetPath())

	nav, err = nav.MoveTo(".")
	require.NoError(t, err)
	assert.Equal(t, "/docs", nav.GetPath())

	_, err = nav.MoveTo("missing")
	assert.Error(t, err)

	root.Navigate().Parent() // moving above root is a no-op, not a panic
}

func TestZipperDetachAndReattach(t *testing.T) {
	root := buildSampleTree()
	z := root.Zipper()

	docsZ, err := z.Child("docs")
	require.NoError(t, err)
	// docs is detached: root no longer lists it as a child.
	_, stillThere := root.Children["docs"]
	assert.False(t, stillThere)

	archiveZ, err := docsZ.Child("archive")
	require.NoError(t, err)
	assert.Equal(t, "archive", archiveZ.Node().Name)

	restoredRoot, err := archiveZ.Finish()
	require.NoError(t, err)
	_, backAgain := restoredRoot.Children["docs"]
	assert.True(t, backAgain)
	assert.Contains(t, restoredRoot.Children["docs"].Children, "archive")
}

func TestZipperChildErrorReattachesBeforeReturning(t *testing.T) {
	root := buildSampleTree()
	z := root.Zipper()

	docsZ, err := z.Child("docs")
	require.NoError(t, err)

	_, err = docsZ.Child("missing")
	assert.Error(t, err)

	// The failed Child call must have reattached docs to root already.
	_, ok := root.Children["docs"]
	assert.True(t, ok)
}

func TestDFSIterVisitsEveryNode(t *testing.T) {
	root := buildSampleTree()
	it := NewDFSIter(root)

	seen := map[string]bool{}
	for n := it.Next(); n != nil; n = it.Next() {
		seen[n.Name] = true
	}
	assert.True(t, seen[ROOT_DIR])
	assert.True(t, seen["docs"])
	assert.True(t, seen["readme.txt"])
	assert.True(t, seen["report.bin"])
	assert.True(t, seen["archive"])
}

func TestBFSIterVisitsEveryNode(t *testing.T) {
	root := buildSampleTree()
	it := NewBFSIter(root)

	count := 0
	for n := it.Next(); n != nil; n = it.Next() {
		count++
	}
	assert.Equal(t, 5, count) // root, docs, readme.txt, report.bin, archive
}

func TestBFSPathsIterReportsParentPath(t *testing.T) {
	root := buildSampleTree()
	it := NewBFSPathsIter(root)

	paths := map[string]string{}
	for n, parent := it.Next(); n != nil; n, parent = it.Next() {
		paths[n.Name] = parent
	}
	assert.Equal(t, "/docs", paths["report.bin"])
	assert.Equal(t, "/docs", paths["archive"])
}

func TestListCurrentDirAndPrintSubtree(t *testing.T) {
	root := buildSampleTree()

	listing, err := root.ListCurrentDir()
	require.NoError(t, err)
	assert.Equal(t, "docs\nreadme.txt", listing)

	_, err = root.Children["readme.txt"].ListCurrentDir()
	assert.Error(t, err)

	rendered := root.PrintSubtree()
	assert.Contains(t, rendered, "docs")
	assert.Contains(t, rendered, "report.bin")
}
