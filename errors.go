package rangeworkers

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// ErrorKind classifies a failure observed by the coordinator or a worker.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindBind
	KindConnect
	KindProtocol
	KindIO
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBind:
		return "bind"
	case KindConnect:
		return "connect"
	case KindProtocol:
		return "protocol"
	case KindIO:
		return "io"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// BindError is returned when the coordinator cannot open its listening endpoint.
type BindError struct {
	Address string
	Err     error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Address, e.Err)
}

func (e *BindError) Cause() error  { return e.Err }
func (e *BindError) Unwrap() error { return e.Err }

// ConnectError is returned when a worker cannot reach the coordinator.
type ConnectError struct {
	Address string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Address, e.Err)
}

func (e *ConnectError) Cause() error  { return e.Err }
func (e *ConnectError) Unwrap() error { return e.Err }

// ProtocolError reports a missing or malformed line.
type ProtocolError struct {
	Line   string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	msg := "protocol error: " + e.Reason
	if e.Line != "" {
		msg += fmt.Sprintf(" (line %q)", truncate(e.Line, 64))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Cause() error  { return e.Err }
func (e *ProtocolError) Unwrap() error { return e.Err }

// IOError wraps a read or write failure on an established connection.
type IOError struct {
	Op   string
	Addr string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *IOError) Cause() error  { return e.Err }
func (e *IOError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying network error was a deadline expiry.
func (e *IOError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IncompleteError is returned by Coordinator.Run when some workers did not
// deliver a result and failures are not tolerated.
type IncompleteError struct {
	Failed []int
	Total  int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d of %d workers failed: %v", len(e.Failed), e.Total, e.Failed)
}

// KindOf classifies err. Network timeouts are reported as KindTimeout
// regardless of which typed error wraps them.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	var (
		be *BindError
		ce *ConnectError
		pe *ProtocolError
		ie *IOError
	)
	switch {
	case errors.As(err, &be):
		return KindBind
	case errors.As(err, &ce):
		return KindConnect
	case errors.As(err, &pe):
		return KindProtocol
	case errors.As(err, &ie):
		return KindIO
	}
	return KindIO
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
