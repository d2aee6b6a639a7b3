package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/context"

	"github.com/hnakamur/rangeworkers"
	"github.com/hnakamur/rangeworkers/compute"
)

// serveOnce accepts one worker, sends rangeLine and returns the reply or the
// read error on replyC.
func serveOnce(t *testing.T, transport rangeworkers.Transport, rangeLine string) (string, <-chan string) {
	ln, err := rangeworkers.Listen(transport, "127.0.0.1:0", 1024)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	replyC := make(chan string, 1)
	go func() {
		defer close(replyC)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c, err := ln.Accept(ctx)
		if err != nil {
			return
		}
		defer c.Close()
		if err := c.WriteLine(rangeLine); err != nil {
			return
		}
		reply, err := c.ReadLine()
		if err != nil {
			return
		}
		replyC <- reply
	}()
	return ln.Addr().String(), replyC
}

func runWorker(t *testing.T, address string, mode compute.Mode, transport rangeworkers.Transport) error {
	workFunc, err := compute.ForMode(mode)
	require.NoError(t, err)
	config := DefaultWorkerConfig()
	config.Transport = transport
	config.ReadTimeout = 10 * time.Second
	w := NewWorker(address, workFunc, zaptest.NewLogger(t), config)
	return w.Run(context.Background())
}

func TestWorkerNonPrimeSingleton(t *testing.T) {
	addr, replyC := serveOnce(t, rangeworkers.TransportTCP, "10 10")
	require.NoError(t, runWorker(t, addr, compute.ModeList, rangeworkers.TransportTCP))
	require.Equal(t, compute.NoPrimesFound, <-replyC)
}

func TestWorkerPrimeSingleton(t *testing.T) {
	addr, replyC := serveOnce(t, rangeworkers.TransportTCP, "2 2")
	require.NoError(t, runWorker(t, addr, compute.ModeList, rangeworkers.TransportTCP))
	require.Equal(t, "2", <-replyC)
}

func TestWorkerCountMode(t *testing.T) {
	addr, replyC := serveOnce(t, rangeworkers.TransportTCP, "1 100")
	require.NoError(t, runWorker(t, addr, compute.ModeCount, rangeworkers.TransportTCP))
	require.Equal(t, "25", <-replyC)
}

func TestWorkerWebSocket(t *testing.T) {
	addr, replyC := serveOnce(t, rangeworkers.TransportWebSocket, "1 10")
	require.NoError(t, runWorker(t, addr, compute.ModeList, rangeworkers.TransportWebSocket))
	require.Equal(t, "2,3,5,7", <-replyC)
}

func TestWorkerRangeEndingAtMaxInt64(t *testing.T) {
	addr, replyC := serveOnce(t, rangeworkers.TransportTCP, "9223372036854775806 9223372036854775807")
	require.NoError(t, runWorker(t, addr, compute.ModeList, rangeworkers.TransportTCP))
	require.Equal(t, compute.NoPrimesFound, <-replyC)
}

func TestWorkerEmptyInterval(t *testing.T) {
	addr, replyC := serveOnce(t, rangeworkers.TransportTCP, "10 9")
	require.NoError(t, runWorker(t, addr, compute.ModeCount, rangeworkers.TransportTCP))
	require.Equal(t, "0", <-replyC)
}

func TestWorkerMalformedRange(t *testing.T) {
	addr, _ := serveOnce(t, rangeworkers.TransportTCP, "10 to 20")
	err := runWorker(t, addr, compute.ModeList, rangeworkers.TransportTCP)
	var pe *rangeworkers.ProtocolError
	require.ErrorAs(t, err, &pe)
}

func TestWorkerMissingRange(t *testing.T) {
	ln, err := rangeworkers.Listen(rangeworkers.TransportTCP, "127.0.0.1:0", 0)
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept(context.Background())
		if err == nil {
			c.Close()
		}
	}()

	err = runWorker(t, ln.Addr().String(), compute.ModeList, rangeworkers.TransportTCP)
	require.Error(t, err)
	kind := rangeworkers.KindOf(err)
	require.Contains(t, []rangeworkers.ErrorKind{rangeworkers.KindProtocol, rangeworkers.KindIO}, kind)
}

func TestWorkerConnectError(t *testing.T) {
	ln, err := rangeworkers.Listen(rangeworkers.TransportTCP, "127.0.0.1:0", 0)
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	err = runWorker(t, addr, compute.ModeList, rangeworkers.TransportTCP)
	var ce *rangeworkers.ConnectError
	require.ErrorAs(t, err, &ce)
}
