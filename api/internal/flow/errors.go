package flow

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindTransport
	KindMalformedResponse
	KindTimedOut
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Error is the only failure a flow ever resolves with. Msg is shown to the user verbatim.
type Error struct {
	Kind       Kind
	Msg        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Err }

var (
	ErrEmptyDescription = &Error{Kind: KindValidation, Msg: "Please describe at least one symptom."}
	ErrNoFileSelected   = &Error{Kind: KindValidation, Msg: "Please select an image before submitting."}
)

// KindOf returns 0 for errors that did not come from a flow.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

func statusFailure(code int, detail string) *Error {
	if detail == "" {
		return &Error{Kind: KindTransport, StatusCode: code, Msg: fmt.Sprintf("Server returned status code %d", code)}
	}
	return &Error{Kind: KindTransport, StatusCode: code, Msg: fmt.Sprintf("Server returned %d: %s", code, detail)}
}

func malformed(detail string, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Msg: "Malformed response from server: " + detail, Err: err}
}

// transportFailure maps an error from the transport (no HTTP answer at all).
func transportFailure(err error, timeout time.Duration) *Error {
	if timedOut(err) {
		msg := "Request timed out"
		if timeout > 0 {
			msg = fmt.Sprintf("Request timed out after %s", timeout)
		}
		return &Error{Kind: KindTimedOut, Msg: msg, Err: err}
	}
	return &Error{Kind: KindTransport, Msg: err.Error(), Err: err}
}

func timedOut(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
