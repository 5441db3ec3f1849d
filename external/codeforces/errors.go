package codeforces

import (
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/andriansah/cf-dashboard/internal/usecase"
)

// APIError is a FAILED envelope from the Codeforces API. The comment text is
// the only machine-readable detail the API provides.
type APIError struct {
	Method  string
	Comment string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("codeforces %s rejected: %s", e.Method, e.Comment)
}

// classifyAPIError marks a FAILED envelope with a usecase sentinel so the
// transport layer can pick a status code. Unknown-handle failures come back
// as comments like "handles: User with handle X not found".
func classifyAPIError(method, comment string) error {
	apiErr := &APIError{Method: method, Comment: strings.TrimSpace(comment)}
	if strings.Contains(strings.ToLower(apiErr.Comment), "not found") {
		return crerr.Mark(apiErr, usecase.ErrNotFound)
	}
	return crerr.Mark(apiErr, usecase.ErrRemoteRejected)
}
