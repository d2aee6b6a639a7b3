// Package worker implements the worker side of the range protocol: connect to
// the coordinator, read one range line, compute, reply with one line, exit.
package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/context"

	"github.com/hnakamur/rangeworkers"
	"github.com/hnakamur/rangeworkers/compute"
)

// Config holds the worker's connection settings.
type Config struct {
	Transport rangeworkers.Transport

	// DialTimeout bounds connecting to the coordinator. Zero means no limit.
	DialTimeout time.Duration

	// ReadTimeout bounds waiting for the range line. Zero waits forever.
	ReadTimeout time.Duration

	// WriteWait bounds writing the reply line. Zero means no deadline.
	WriteWait time.Duration

	// MaxLineSize bounds the range line. Zero means unbounded.
	MaxLineSize int
}

// DefaultWorkerConfig returns the default worker settings.
func DefaultWorkerConfig() Config {
	return Config{
		Transport:   rangeworkers.TransportTCP,
		DialTimeout: 10 * time.Second,
		WriteWait:   10 * time.Second,
		MaxLineSize: 1024,
	}
}

// Worker performs one request-response exchange with a coordinator.
type Worker struct {
	address  string
	workFunc compute.Func
	logger   *zap.Logger
	config   Config
}

func NewWorker(address string, workFunc compute.Func, logger *zap.Logger, config Config) *Worker {
	return &Worker{
		address:  address,
		workFunc: workFunc,
		logger:   logger,
		config:   config,
	}
}

// Run connects, reads one interval, computes the reply and sends it back. It
// returns a *rangeworkers.ConnectError, *rangeworkers.ProtocolError or
// *rangeworkers.IOError on failure. There are no retries.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("connecting to coordinator",
		zap.String("address", w.address),
		zap.String("transport", string(w.config.Transport)))

	dialCtx := ctx
	if w.config.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, w.config.DialTimeout)
		defer cancel()
	}
	c, err := rangeworkers.Dial(dialCtx, w.config.Transport, w.address, w.config.MaxLineSize)
	if err != nil {
		w.logger.Error("dial error",
			zap.String("address", w.address),
			zap.Error(err))
		return err
	}
	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { c.Close() }) }
	defer closeConn()
	w.logger.Info("connected to coordinator", zap.Stringer("address", c.RemoteAddr()))

	doneC := make(chan struct{})
	defer close(doneC)
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-doneC:
		}
	}()

	if w.config.ReadTimeout > 0 {
		c.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))
	}
	line, err := c.ReadLine()
	if err != nil {
		w.logger.Error("read error", zap.Error(err))
		return err
	}
	iv, err := rangeworkers.ParseInterval(line)
	if err != nil {
		w.logger.Error("invalid range line", zap.Error(err))
		return err
	}
	w.logger.Info("received range", zap.Stringer("interval", iv))

	started := time.Now()
	result := w.workFunc(iv.Start, iv.End)
	if ce := w.logger.Check(zap.DebugLevel, "computed result"); ce != nil {
		ce.Write(zap.Stringer("interval", iv),
			zap.Duration("elapsed", time.Since(started)),
			zap.String("result", result))
	}

	if w.config.WriteWait > 0 {
		c.SetWriteDeadline(time.Now().Add(w.config.WriteWait))
	}
	if err := c.WriteLine(result); err != nil {
		w.logger.Error("write error", zap.Error(err))
		return err
	}
	w.logger.Info("sent result to coordinator",
		zap.Stringer("interval", iv),
		zap.Int("size", len(result)),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}
