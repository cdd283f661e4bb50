package tree

import (
	"regexp"
	"strings"

	"github.com/ccfs/ccfs/pkg/ccfserr"
)

// ROOT_DIR is the name of the tree's root node and the string a caller
// supplies for "no base path".
const ROOT_DIR = "/"

// CURR_DIR and PREV_DIR are the special segments MoveTo treats as "stay"
// and "go to parent" rather than a child lookup.
const (
	CURR_DIR = "."
	PREV_DIR = ".."
)

// segmentRE is intentionally unanchored on its second alternative: it
// only has to find one run of allowed characters somewhere in the
// segment, not match the whole thing. That mirrors the original path
// validator exactly, including its permissiveness around embedded
// spaces — segments like "some dir" validate because "some" alone
// satisfies the pattern.
var segmentRE = regexp.MustCompile(`^\.{1,2}$|[A-Za-z0-9-_+.~*()'\[\]{}&%$#@!|]*[A-Za-z0-9][A-Za-z0-9-_+.~*()'\[\]{}&%$#@!|]*`)

// IsValidPath reports whether path is an acceptable CCFS path: non-empty,
// with each slash-separated segment either "." / ".." or containing at
// least one alphanumeric character. A leading slash produces an empty first
// segment, which is always accepted (it denotes starting from the root).
// Any other empty segment is rejected.
func IsValidPath(path string) bool {
	if path == "" {
		return false
	}
	segments := splitTerminator(path, '/')
	for i, seg := range segments {
		if i == 0 {
			if seg != "" && !segmentRE.MatchString(seg) {
				return false
			}
			continue
		}
		if !segmentRE.MatchString(seg) {
			return false
		}
	}
	return true
}

// splitTerminator splits s on sep the way Rust's str::split_terminator
// does: identical to a plain split, except a single trailing empty
// element (produced when s ends with sep) is dropped.
func splitTerminator(s string, sep byte) []string {
	parts := strings.Split(s, string(sep))
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// EvaluatePath resolves path against root, honoring "." and ".." segments,
// and returns the absolute, normalized path of the node it lands on. An
// empty path resolves to ROOT_DIR (Open Question: with no caller-supplied
// base, root is the base — see SPEC_FULL.md).
func EvaluatePath(root *Node, path string) (string, error) {
	if path != "" && !IsValidPath(path) {
		return "", ccfserr.New(ccfserr.KindValidation, "invalid path: "+path)
	}
	nav := root.Navigate()
	if path != "" {
		skip := 0
		segments := splitTerminator(path, '/')
		if len(segments) > 0 && segments[0] == "" {
			skip = 1
		}
		for _, seg := range segments[skip:] {
			if seg == "" {
				continue
			}
			var err error
			nav, err = nav.MoveTo(seg)
			if err != nil {
				return "", err
			}
		}
	}
	return nav.GetPath(), nil
}
