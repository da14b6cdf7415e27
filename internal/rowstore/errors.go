package rowstore

// Every failure of an outbound call is reported as an *Error whose Kind is
// one of the sentinels below; callers branch with errors.Is.

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNetwork means the request never got an HTTP answer: DNS, dial,
	// TLS or connection reset.  No row was touched.
	ErrNetwork = errors.New("upstream unreachable")

	// ErrTimeout means the request deadline passed before an answer
	// arrived.  The remote may or may not have applied the write.
	ErrTimeout = errors.New("upstream timeout")

	// ErrAuth means the remote refused the access key (401/403).
	ErrAuth = errors.New("upstream rejected credentials")

	// ErrRejected means the remote refused the query itself, e.g. an
	// unknown table or column (other 4xx).
	ErrRejected = errors.New("upstream rejected request")

	// ErrMalformed means the remote failed internally (5xx) or answered
	// with a body that is not a row list.
	ErrMalformed = errors.New("upstream returned malformed response")
)

// Error describes one failed outbound call.
type Error struct {
	Kind       error  // one of the Err* sentinels
	Op         string // "update" or "select"
	Table      string
	StatusCode int    // HTTP status from the remote; 0 when none was received
	Code       string // remote error code, e.g. PGRST204
	Message    string // remote error message
	Err        error  // underlying transport or decode error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("rowstore: %s %s: %v", e.Op, e.Table, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// kindForStatus classifies a non-2xx HTTP status.
func kindForStatus(code int) error {
	switch {
	case code == 401 || code == 403:
		return ErrAuth
	case code >= 400 && code < 500:
		return ErrRejected
	default:
		return ErrMalformed
	}
}

// kindForTransport classifies a request that got no HTTP answer.
func kindForTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return ErrNetwork
}
