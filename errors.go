package eventstore

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code classifies an Error the way the reference client's ErrorCode does,
// so callers can branch with errors.As without string matching.
type Code int

const (
	CodeUnknown Code = iota
	CodeTransport
	CodeGrpc
	CodeResourceNotFound
	CodeAccessDenied
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeTransport:
		return "transport"
	case CodeGrpc:
		return "grpc"
	case CodeResourceNotFound:
		return "resource_not_found"
	case CodeAccessDenied:
		return "access_denied"
	case CodeInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the single error type this package returns. WrongExpectedVersion
// is deliberately not a Code here: it is reported as a typed return value
// next to WriteResult, because a failed optimistic-concurrency check is an
// ordinary append outcome, not a fault.
type Error struct {
	Code    Code
	Message string
	GrpcCode codes.Code
	err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("eventstore: %s: %s", e.Code, e.Message)
	}
	if e.err != nil {
		return fmt.Sprintf("eventstore: %s: %v", e.Code, e.err)
	}
	return fmt.Sprintf("eventstore: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.err }

func errTransport(err error) error {
	return &Error{Code: CodeTransport, err: err}
}

func errResourceNotFound(message string) error {
	return &Error{Code: CodeResourceNotFound, Message: message}
}

func errAccessDenied(message string) error {
	return &Error{Code: CodeAccessDenied, Message: message}
}

func errInternal(message string) error {
	return &Error{Code: CodeInternal, Message: message}
}

// reportTransportErr classifies a raw gRPC error and reports it to the
// executor before returning it, so a clustered implementation can
// invalidate and reselect the channel that produced it.
func (c *Client) reportTransportErr(err error) error {
	classified := classifyGrpcErr(err)
	c.executor.ReportError(c.executor.CurrentSelectedNode(), classified)
	return classified
}

// classifyGrpcErr turns a raw gRPC error into the taxonomy above, looking
// at the status code the way AccessDenied/NotFound are surfaced by the
// server today.
func classifyGrpcErr(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return errTransport(err)
	}
	switch st.Code() {
	case codes.NotFound:
		return errResourceNotFound(st.Message())
	case codes.PermissionDenied, codes.Unauthenticated:
		return errAccessDenied(st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return errTransport(err)
	default:
		return &Error{Code: CodeGrpc, Message: st.Message(), GrpcCode: st.Code(), err: err}
	}
}

// IsResourceNotFound reports whether err (or something it wraps) is a
// resource-not-found Error, the condition a missing stream surfaces as.
func IsResourceNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeResourceNotFound
	}
	return false
}
