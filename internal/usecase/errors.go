package usecase

import crerr "github.com/cockroachdb/errors"

// Sentinel errors shared across services and the transport layer. Handlers
// map these onto HTTP status codes; everything else becomes a 500.
var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrRemoteRejected        = crerr.New("remote api rejected request")
	ErrTransport             = crerr.New("remote api unreachable")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)
