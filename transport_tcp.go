package rangeworkers

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/net/context"
)

type tcpListener struct {
	ln      net.Listener
	maxLine int
}

func (l *tcpListener) Accept(ctx context.Context) (LineConn, error) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			l.ln.Close()
		case <-stop:
		}
	}()

	c, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &IOError{Op: "accept", Addr: l.ln.Addr().String(), Err: err}
	}
	return newTCPLineConn(c, l.maxLine), nil
}

func (l *tcpListener) Addr() net.Addr { return l.ln.Addr() }
func (l *tcpListener) Close() error   { return l.ln.Close() }

type tcpLineConn struct {
	conn    net.Conn
	r       *bufio.Reader
	maxLine int
}

func newTCPLineConn(c net.Conn, maxLine int) *tcpLineConn {
	return &tcpLineConn{conn: c, r: bufio.NewReader(c), maxLine: maxLine}
}

func dialTCP(ctx context.Context, address string, maxLine int) (LineConn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &ConnectError{Address: address, Err: err}
	}
	return newTCPLineConn(c, maxLine), nil
}

func (c *tcpLineConn) ReadLine() (string, error) {
	line, err := readLine(c.r, c.maxLine)
	if err != nil {
		if _, ok := err.(*ProtocolError); ok {
			return "", err
		}
		return "", &IOError{Op: "read", Addr: c.conn.RemoteAddr().String(), Err: err}
	}
	return line, nil
}

func (c *tcpLineConn) WriteLine(line string) error {
	if _, err := io.WriteString(c.conn, line+"\n"); err != nil {
		return &IOError{Op: "write", Addr: c.conn.RemoteAddr().String(), Err: err}
	}
	return nil
}

func (c *tcpLineConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *tcpLineConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }
func (c *tcpLineConn) RemoteAddr() net.Addr               { return c.conn.RemoteAddr() }
func (c *tcpLineConn) Close() error                       { return c.conn.Close() }

// readLine reads up to and including the next newline. A final line without a
// newline is accepted at EOF; EOF before any byte is a ProtocolError.
func readLine(r *bufio.Reader, maxLine int) (string, error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		buf = append(buf, frag...)
		if maxLine > 0 && len(buf) > maxLine+2 {
			return "", &ProtocolError{Reason: fmt.Sprintf("line exceeds %d bytes", maxLine)}
		}
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			if len(buf) == 0 {
				return "", &ProtocolError{Reason: "connection closed before a line was received", Err: err}
			}
			break
		}
		return "", err
	}
	line := trimEOL(string(buf))
	if maxLine > 0 && len(line) > maxLine {
		return "", &ProtocolError{Reason: fmt.Sprintf("line exceeds %d bytes", maxLine)}
	}
	return line, nil
}
