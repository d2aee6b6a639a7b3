package rangeworkers

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

// Config is the startup configuration of a coordinator.
type Config struct {
	ListenAddress   string
	Transport       Transport
	ExpectedWorkers int

	// Start and End are the inclusive bounds of the global interval.
	Start int64
	End   int64

	Conn ConnConfig

	// TolerateFailures makes Run succeed even if some workers failed.
	TolerateFailures bool
}

// DefaultConfig returns the configuration of the reference deployment.
func DefaultConfig() Config {
	return Config{
		ListenAddress:   ":5000",
		Transport:       TransportTCP,
		ExpectedWorkers: 3,
		Start:           1000,
		End:             1000000,
		Conn:            DefaultConnConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.ExpectedWorkers < 1 {
		return errors.Errorf("expected workers must be positive, got %d", c.ExpectedWorkers)
	}
	if c.Start > c.End {
		return errors.Errorf("start %d is greater than end %d", c.Start, c.End)
	}
	if _, err := ParseTransport(string(c.Transport)); err != nil {
		return err
	}
	return nil
}

// Coordinator accepts a fixed number of workers, hands each of them one
// sub-range of the global interval and collects one reply per worker.
type Coordinator struct {
	config Config
	logger *zap.Logger
	ln     Listener
}

// NewCoordinator creates a coordinator. Call Listen or Run to start it.
func NewCoordinator(config Config, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		config: config,
		logger: logger,
	}
}

// Listen opens the listening endpoint. It returns a *BindError if the address
// cannot be bound.
func (c *Coordinator) Listen() error {
	if err := c.config.Validate(); err != nil {
		return err
	}
	transport, _ := ParseTransport(string(c.config.Transport))
	ln, err := Listen(transport, c.config.ListenAddress, c.config.Conn.MaxLineSize)
	if err != nil {
		c.logger.Error("failed to listen",
			zap.String("address", c.config.ListenAddress),
			zap.Error(err))
		return err
	}
	c.ln = ln
	c.logger.Info("coordinator start listening",
		zap.Stringer("address", ln.Addr()),
		zap.String("transport", string(transport)),
		zap.Int("expectedWorkers", c.config.ExpectedWorkers))
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (c *Coordinator) Addr() net.Addr {
	if c.ln == nil {
		return nil
	}
	return c.ln.Addr()
}

// AcceptExactly blocks until n workers are connected and returns them in
// arrival order. The listener is closed on return, whether the pool filled
// or accepting failed. There is no timeout; only cancelling ctx stops the
// wait.
func (c *Coordinator) AcceptExactly(ctx context.Context, n int) (*ConnectedPool, error) {
	if c.ln == nil {
		return nil, errors.New("coordinator is not listening")
	}
	pool := &ConnectedPool{conns: make([]*Conn, 0, n)}
	for len(pool.conns) < n {
		lc, err := c.ln.Accept(ctx)
		if err != nil {
			c.ln.Close()
			pool.Close()
			c.logger.Error("failed to accept worker",
				zap.Int("connected", len(pool.conns)),
				zap.Int("expected", n),
				zap.Error(err))
			return nil, err
		}
		conn := newConn(len(pool.conns), lc, c.config.Conn, c.logger)
		pool.conns = append(pool.conns, conn)
		c.logger.Info("worker connected",
			zap.Int("worker", conn.Index()),
			zap.String("remoteAddr", conn.RemoteAddr()),
			zap.Int("connected", len(pool.conns)),
			zap.Int("expected", n))
	}
	c.ln.Close()
	return pool, nil
}

// Dispatch sends intervals[i] to the i-th connection of pool concurrently and
// returns once every dispatch task has finished. A failure on one connection
// never stops the others. Every connection is closed on return.
func (c *Coordinator) Dispatch(ctx context.Context, pool *ConnectedPool, intervals []Interval) (*ResultSet, error) {
	if len(intervals) != pool.Len() {
		pool.Close()
		return nil, errors.Errorf("got %d intervals for %d workers", len(intervals), pool.Len())
	}

	resultC := make(chan WorkerResult, pool.Len())
	var g errgroup.Group
	for i, conn := range pool.conns {
		conn, iv := conn, intervals[i]
		g.Go(func() error {
			defer conn.Close()
			resultC <- conn.Exchange(ctx, iv)
			return nil
		})
	}
	g.Wait()
	close(resultC)

	rs := newResultSet(pool.Len())
	for r := range resultC {
		if err := rs.set(r); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// Run accepts the expected workers, dispatches one sub-range to each and
// waits for all of them. The returned report holds one result per worker.
// Unless failures are tolerated, Run returns an *IncompleteError together
// with the report when any worker failed.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	if c.ln == nil {
		if err := c.Listen(); err != nil {
			return nil, err
		}
	}
	intervals, err := Partition(c.config.Start, c.config.End, c.config.ExpectedWorkers)
	if err != nil {
		return nil, err
	}

	pool, err := c.AcceptExactly(ctx, c.config.ExpectedWorkers)
	if err != nil {
		return nil, err
	}
	c.logger.Info("all workers connected, assigning work",
		zap.Int("workers", pool.Len()))

	started := time.Now()
	rs, err := c.Dispatch(ctx, pool, intervals)
	if err != nil {
		return nil, err
	}
	report := &Report{
		Start:   c.config.Start,
		End:     c.config.End,
		Workers: rs.Len(),
		Results: rs.Results(),
		Elapsed: time.Since(started),
	}

	failed := report.Failed()
	c.logger.Info("computation complete",
		zap.Int("succeeded", report.Workers-len(failed)),
		zap.Int("failed", len(failed)),
		zap.Duration("elapsed", report.Elapsed))

	if len(failed) > 0 && !c.config.TolerateFailures {
		indexes := make([]int, len(failed))
		for i, r := range failed {
			indexes[i] = r.Index
		}
		return report, &IncompleteError{Failed: indexes, Total: report.Workers}
	}
	return report, nil
}

// Close closes the listener if it is still open.
func (c *Coordinator) Close() error {
	if c.ln == nil {
		return nil
	}
	return c.ln.Close()
}
