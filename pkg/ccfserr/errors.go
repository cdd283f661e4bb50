// Package ccfserr defines the tagged error taxonomy shared by every CCFS
// coordinator component, and the single place that taxonomy is mapped to
// an HTTP status code.
package ccfserr

import (
	"fmt"
	"net/http"
)

// Kind tags the class of failure a CCFS error represents. Components never
// construct raw errors for anything a caller needs to branch on — they
// wrap with a Kind so pkg/gateway can map it to a status code in one
// place instead of re-deriving it per handler.
type Kind int

const (
	// KindValidation covers malformed input: an invalid path, a missing
	// required field, an unparsable identifier.
	KindValidation Kind = iota
	// KindNotFound covers lookups against paths, files or chunks that
	// don't exist.
	KindNotFound
	// KindNotADir covers traversing through a file as though it were a
	// directory.
	KindNotADir
	// KindNotAFile covers reading chunks from a node that is a directory.
	KindNotAFile
	// KindNotLeader covers a write or linearizable read attempted against
	// a non-leader coordinator.
	KindNotLeader
	// KindUnavailable covers quorum loss, apply timeouts, and other
	// transient consensus failures.
	KindUnavailable
	// KindTransport covers a failed outbound RPC (replication requests,
	// cluster handshakes).
	KindTransport
	// KindIO covers local filesystem failures (snapshot writes, log
	// store errors).
	KindIO
	// KindInternal covers anything that should never happen in a
	// correctly operating cluster — serialization bugs, invariant
	// violations.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNotADir:
		return "not_a_dir"
	case KindNotAFile:
		return "not_a_file"
	case KindNotLeader:
		return "not_leader"
	case KindUnavailable:
		return "unavailable"
	case KindTransport:
		return "transport"
	case KindIO:
		return "io"
	default:
		return "internal"
	}
}

// Error is the concrete error type every CCFS package returns for a
// classified failure. It wraps an optional cause so the original error
// (an os.PathError, a raft error) is never lost.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Leader is set only for KindNotLeader, carrying the Raft server ID
	// of the coordinator the caller should retry against, if known. It
	// is an ID, not a dialable address — pkg/gateway resolves it to the
	// leader's HTTP address through the cluster directory before
	// composing a redirect.
	Leader string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a classified error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error around an existing cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotLeader builds the KindNotLeader error pkg/gateway turns into a 307,
// identifying the current leader by Raft server ID.
func NotLeader(leaderID string) *Error {
	return &Error{Kind: KindNotLeader, Message: "not the raft leader", Leader: leaderID}
}

// HTTPStatus maps a classified error to the status code pkg/gateway
// should respond with. Any non-*Error is treated as KindInternal.
func HTTPStatus(err error) int {
	ce, ok := err.(*Error)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ce.Kind {
	case KindValidation, KindNotADir, KindNotAFile:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNotLeader:
		return http.StatusTemporaryRedirect
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindTransport, KindIO, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// As reports whether err is a *Error of the given Kind.
func As(err error, kind Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}

// KindOf extracts the Kind a classified error was raised with, so a
// caller that only has an error value (not the *Error itself) can still
// preserve its class instead of collapsing it to a generic one. Anything
// that isn't a *Error is treated as KindInternal.
func KindOf(err error) Kind {
	ce, ok := err.(*Error)
	if !ok {
		return KindInternal
	}
	return ce.Kind
}
