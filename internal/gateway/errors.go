package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a gateway failure for caller branching.
type Kind int

const (
	// KindUnauthorized means the session cookie is missing or expired and
	// the user must sign in again.
	KindUnauthorized Kind = iota + 1
	// KindForbidden means the server rejected the request outright.
	KindForbidden
	// KindServer covers all other 4xx/5xx responses.
	KindServer
	// KindDecoding means the response body was malformed beyond what the
	// lenient tuple parser tolerates.
	KindDecoding
	// KindNetworkTimeout means the request or resource deadline elapsed.
	KindNetworkTimeout
	// KindNetworkConnectivity means the host was unreachable (DNS failure,
	// connection refused, no route).
	KindNetworkConnectivity
	// KindNetworkOther covers remaining transport failures.
	KindNetworkOther
)

// Error is the discriminated failure returned by every gateway call.
// Gateway errors are always returned, never panicked.
type Error struct {
	Kind       Kind
	StatusCode int // zero for transport failures
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway: %s (HTTP %d)", e.Message, e.StatusCode)
	}
	return "gateway: " + e.Message
}

// ErrKind extracts the gateway Kind from err, or zero if err is not a
// gateway error.
func ErrKind(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return 0
}

// IsUnauthorized reports whether err calls for re-authentication.
func IsUnauthorized(err error) bool {
	return ErrKind(err) == KindUnauthorized
}
