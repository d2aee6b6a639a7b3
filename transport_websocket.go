package rangeworkers

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/net/context"
)

// Time allowed to write the close frame to the peer.
const closeWait = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsListener struct {
	ln        net.Listener
	srv       *http.Server
	maxLine   int
	connC     chan LineConn
	doneC     chan struct{}
	closeOnce sync.Once
}

func newWSListener(ln net.Listener, maxLine int) *wsListener {
	l := &wsListener{
		ln:      ln,
		maxLine: maxLine,
		connC:   make(chan LineConn),
		doneC:   make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, l.serveWS)
	l.srv = &http.Server{Handler: mux}
	go l.srv.Serve(ln)
	return l
}

// serveWS upgrades the request and hands the connection to Accept. The
// handler returns once the connection is accepted; hijacked connections stay
// open after that.
func (l *wsListener) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newWSLineConn(ws, l.maxLine)
	select {
	case l.connC <- c:
	case <-l.doneC:
		c.Close()
	}
}

func (l *wsListener) Accept(ctx context.Context) (LineConn, error) {
	select {
	case c := <-l.connC:
		return c, nil
	case <-l.doneC:
		return nil, &IOError{Op: "accept", Addr: l.ln.Addr().String(), Err: net.ErrClosed}
	case <-ctx.Done():
		l.Close()
		return nil, ctx.Err()
	}
}

func (l *wsListener) Addr() net.Addr { return l.ln.Addr() }

func (l *wsListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.doneC)
		err = l.srv.Close()
	})
	return err
}

type wsLineConn struct {
	ws *websocket.Conn
}

func newWSLineConn(ws *websocket.Conn, maxLine int) *wsLineConn {
	if maxLine > 0 {
		ws.SetReadLimit(int64(maxLine) + 2)
	}
	return &wsLineConn{ws: ws}
}

func dialWebSocket(ctx context.Context, address string, maxLine int) (LineConn, error) {
	u := url.URL{Scheme: "ws", Host: address, Path: WebSocketPath}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, &ConnectError{Address: u.String(), Err: err}
	}
	return newWSLineConn(ws, maxLine), nil
}

func (c *wsLineConn) ReadLine() (string, error) {
	mt, p, err := c.ws.ReadMessage()
	if err != nil {
		switch {
		case err == websocket.ErrReadLimit:
			return "", &ProtocolError{Reason: "line exceeds read limit", Err: err}
		case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
			return "", &ProtocolError{Reason: "connection closed before a line was received", Err: err}
		}
		return "", &IOError{Op: "read", Addr: c.ws.RemoteAddr().String(), Err: err}
	}
	if mt != websocket.TextMessage {
		return "", &ProtocolError{Reason: "unexpected websocket message type"}
	}
	line := trimEOL(string(p))
	if strings.ContainsRune(line, '\n') {
		return "", &ProtocolError{Line: line, Reason: "frame carries more than one line"}
	}
	return line, nil
}

func (c *wsLineConn) WriteLine(line string) error {
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line+"\n")); err != nil {
		return &IOError{Op: "write", Addr: c.ws.RemoteAddr().String(), Err: err}
	}
	return nil
}

func (c *wsLineConn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *wsLineConn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }
func (c *wsLineConn) RemoteAddr() net.Addr               { return c.ws.RemoteAddr() }

// Close sends a close frame before closing the underlying connection, the
// clean shutdown the websocket protocol expects.
func (c *wsLineConn) Close() error {
	c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeWait))
	return c.ws.Close()
}
