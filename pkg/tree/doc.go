/*
Package tree implements CCFS's namespace: a single in-memory tree of
directories and files, replicated as one value inside the Raft state
machine (pkg/statemachine).

# Core Types

Node is a directory or a file, tagged by Kind rather than split into two
Go types, so the whole tree serializes with one json.Marshal call:

  - Directory nodes hold a Children map keyed by name.
  - File nodes hold a file ID, size, chunk ID list, upload progress
    (CompletedCount) and a FileStatus.

Navigator is a read-only cursor that remembers its parent chain so it can
compute an absolute path (GetPath) or step back up (Parent/MoveTo).
Zipper is its mutable counterpart: moving into a child detaches that
child from its parent's map, and Finish walks back to the root
reattaching every detached node. A Zipper that errors mid-walk always
reattaches before returning, so a tree is never left missing a subtree.

# Path Grammar

IsValidPath/EvaluatePath implement the same segment grammar as the
original CCFS path validator: segments are "." or ".." or any run of
characters containing at least one alphanumeric; the one exception is
the first segment, which may be empty (a leading "/").
*/
package tree
