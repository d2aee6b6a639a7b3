package rangeworkers

import (
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

// Transport selects how protocol lines travel between coordinator and worker.
type Transport string

const (
	// TransportTCP carries newline delimited lines over a raw TCP stream.
	TransportTCP Transport = "tcp"

	// TransportWebSocket carries one line per text frame over a websocket
	// served at WebSocketPath.
	TransportWebSocket Transport = "websocket"
)

// WebSocketPath is the HTTP path the coordinator upgrades to a websocket.
const WebSocketPath = "/ws"

// ParseTransport converts a flag value to a Transport.
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(s) {
	case "", "tcp":
		return TransportTCP, nil
	case "ws", "websocket":
		return TransportWebSocket, nil
	}
	return "", errors.Errorf("unknown transport %q", s)
}

// LineConn is a bidirectional connection exchanging single protocol lines.
// Lines are passed without their terminating newline.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// Listener accepts LineConns on the coordinator side.
type Listener interface {
	// Accept blocks until a worker connects or ctx is done. Cancelling ctx
	// closes the listener.
	Accept(ctx context.Context) (LineConn, error)
	Addr() net.Addr
	Close() error
}

// Listen opens a listening endpoint for the given transport. maxLine bounds
// the size of lines read from accepted connections; zero means unbounded.
func Listen(transport Transport, address string, maxLine int) (Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, &BindError{Address: address, Err: err}
	}
	switch transport {
	case TransportTCP:
		return &tcpListener{ln: ln, maxLine: maxLine}, nil
	case TransportWebSocket:
		return newWSListener(ln, maxLine), nil
	}
	ln.Close()
	return nil, &BindError{Address: address, Err: errors.Errorf("unknown transport %q", transport)}
}

// Dial connects to a coordinator listening at address.
func Dial(ctx context.Context, transport Transport, address string, maxLine int) (LineConn, error) {
	switch transport {
	case TransportTCP:
		return dialTCP(ctx, address, maxLine)
	case TransportWebSocket:
		return dialWebSocket(ctx, address, maxLine)
	}
	return nil, &ConnectError{Address: address, Err: errors.Errorf("unknown transport %q", transport)}
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
