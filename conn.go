package rangeworkers

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/context"
)

const (
	// Time allowed to write the range line to the worker.
	defaultWriteWait = 10 * time.Second

	// Maximum reply line size allowed from a worker.
	defaultMaxLineSize = 16 << 20
)

// ConnConfig holds per-connection limits on the coordinator side.
type ConnConfig struct {
	// WriteWait bounds writing the range line. Zero means no deadline.
	WriteWait time.Duration

	// ReplyTimeout bounds waiting for the reply line. Zero waits forever.
	ReplyTimeout time.Duration

	// MaxLineSize bounds the reply line. Zero means unbounded.
	MaxLineSize int
}

// DefaultConnConfig returns the default connection limits: no reply timeout.
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		WriteWait:   defaultWriteWait,
		MaxLineSize: defaultMaxLineSize,
	}
}

// Conn is the coordinator side of one accepted worker connection.
// It is owned by the ConnectedPool that holds it and closed exactly once.
type Conn struct {
	// Index in arrival order.
	index int

	// The line connection to the worker.
	lc LineConn

	config    ConnConfig
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

func newConn(index int, lc LineConn, config ConnConfig, logger *zap.Logger) *Conn {
	return &Conn{
		index:  index,
		lc:     lc,
		config: config,
		logger: logger.With(zap.Int("worker", index), zap.Stringer("remoteAddr", lc.RemoteAddr())),
	}
}

// Index returns the arrival position of the connection.
func (c *Conn) Index() int { return c.index }

// RemoteAddr returns the worker's address.
func (c *Conn) RemoteAddr() string { return c.lc.RemoteAddr().String() }

// Exchange sends iv to the worker and waits for exactly one reply line.
// Cancelling ctx closes the connection, which unblocks the pending read.
func (c *Conn) Exchange(ctx context.Context, iv Interval) WorkerResult {
	res := WorkerResult{
		Index:      c.index,
		RemoteAddr: c.RemoteAddr(),
		Interval:   iv,
	}
	started := time.Now()

	doneC := make(chan struct{})
	defer close(doneC)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-doneC:
		}
	}()

	reply, err := c.exchange(iv)
	res.Elapsed = time.Since(started)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		res.fail(err)
		c.logger.Error("worker failed",
			zap.Stringer("interval", iv),
			zap.Stringer("kind", res.Kind),
			zap.Duration("elapsed", res.Elapsed),
			zap.Error(err))
		return res
	}
	res.Status = StatusSuccess
	res.Result = reply
	c.logger.Info("received reply",
		zap.Stringer("interval", iv),
		zap.Int("size", len(reply)),
		zap.Duration("elapsed", res.Elapsed))
	if ce := c.logger.Check(zap.DebugLevel, "reply content"); ce != nil {
		ce.Write(zap.String("result", reply))
	}
	return res
}

func (c *Conn) exchange(iv Interval) (string, error) {
	if c.config.WriteWait > 0 {
		c.lc.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
	}
	c.logger.Info("assigning work", zap.Stringer("interval", iv))
	if err := c.lc.WriteLine(FormatInterval(iv)); err != nil {
		return "", err
	}

	if c.config.ReplyTimeout > 0 {
		c.lc.SetReadDeadline(time.Now().Add(c.config.ReplyTimeout))
	}
	return c.lc.ReadLine()
}

// Close closes the underlying connection. Later calls are no-ops.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.lc.Close()
	})
	return c.closeErr
}
