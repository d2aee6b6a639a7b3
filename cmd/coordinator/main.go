package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/context"
	"gopkg.in/vmihailenco/msgpack.v2"

	"github.com/hnakamur/rangeworkers"
)

var (
	config       = rangeworkers.DefaultConfig()
	transport    string
	reportFormat string
	debug        bool
)

var rootCmd = &cobra.Command{
	Use:          "coordinator",
	Short:        "Split an interval across remote workers and collect their results",
	SilenceUsage: true,
	RunE:         runFunc,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&config.ListenAddress, "listen", config.ListenAddress, "listen address")
	flags.StringVar(&transport, "transport", string(config.Transport), "transport (tcp or websocket)")
	flags.IntVar(&config.ExpectedWorkers, "workers", config.ExpectedWorkers, "number of workers to wait for")
	flags.Int64Var(&config.Start, "start", config.Start, "start of the global interval (inclusive)")
	flags.Int64Var(&config.End, "end", config.End, "end of the global interval (inclusive)")
	flags.DurationVar(&config.Conn.ReplyTimeout, "reply-timeout", config.Conn.ReplyTimeout, "time to wait for each reply (0 waits forever)")
	flags.DurationVar(&config.Conn.WriteWait, "write-wait", config.Conn.WriteWait, "time allowed to send a range")
	flags.IntVar(&config.Conn.MaxLineSize, "max-line-size", config.Conn.MaxLineSize, "maximum reply size in bytes")
	flags.BoolVar(&config.TolerateFailures, "tolerate-failures", false, "exit successfully even if some workers failed")
	flags.StringVar(&reportFormat, "report", "text", "report format (text, json or msgpack)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFunc(*cobra.Command, []string) error {
	logger, err := newLogger(debug)
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	defer logger.Sync()

	t, err := rangeworkers.ParseTransport(transport)
	if err != nil {
		return err
	}
	config.Transport = t
	if err := config.Validate(); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-interrupt
		logger.Info("got interrupt")
		cancel()
	}()

	c := rangeworkers.NewCoordinator(config, logger)
	if err := c.Listen(); err != nil {
		return err
	}
	defer c.Close()

	report, runErr := c.Run(ctx)
	if report != nil {
		if err := writeReport(os.Stdout, report, reportFormat); err != nil {
			return err
		}
	}
	return runErr
}

func writeReport(w io.Writer, report *rangeworkers.Report, format string) error {
	switch format {
	case "text":
		for _, r := range report.Results {
			if r.Status == rangeworkers.StatusSuccess {
				fmt.Fprintf(w, "worker %d %s %s: %s\n", r.Index, r.RemoteAddr, r.Interval, r.Result)
			} else {
				fmt.Fprintf(w, "worker %d %s %s: %s (%s): %v\n", r.Index, r.RemoteAddr, r.Interval, r.Status, r.Kind, r.Err)
			}
		}
		fmt.Fprintf(w, "All results received. Computation complete in %s.\n", report.Elapsed)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Message())
	case "msgpack":
		b, err := msgpack.Marshal(report.Message())
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return errors.Errorf("unknown report format %q", format)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
