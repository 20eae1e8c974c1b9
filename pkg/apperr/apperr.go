// Package apperr is the request-level error taxonomy. Repos and services
// return these; handlers hand any error to Respond, the single place that
// maps errors onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation      // missing/malformed input -> 400
	KindNotFound        // no matching resource -> 404
	KindRateLimited     // cooldown active -> 429
	KindUpstream        // external provider failed or empty -> 404
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func RateLimited(format string, args ...any) error {
	return &Error{Kind: KindRateLimited, Msg: fmt.Sprintf(format, args...)}
}

func Upstream(msg string, cause error) error {
	return &Error{Kind: KindUpstream, Msg: msg, Err: cause}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// Respond writes the JSON error response for err. Upstream errors are
// deliberately presented as 404 "no external results"; the caller logs the
// real cause server-side.
func Respond(c *gin.Context, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	switch ae.Kind {
	case KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": ae.Msg})
	case KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": ae.Msg})
	case KindRateLimited:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": ae.Msg})
	case KindUpstream:
		c.JSON(http.StatusNotFound, gin.H{"error": ae.Msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": ae.Error()})
	}
}
