package main

import (
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/context"

	"github.com/hnakamur/rangeworkers"
	"github.com/hnakamur/rangeworkers/compute"
	"github.com/hnakamur/rangeworkers/worker"
)

var (
	config    = worker.DefaultWorkerConfig()
	addr      string
	transport string
	mode      string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:          "worker",
	Short:        "Compute one sub-range for a coordinator",
	SilenceUsage: true,
	RunE:         runFunc,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1:5000", "coordinator address")
	flags.StringVar(&transport, "transport", string(config.Transport), "transport (tcp or websocket)")
	flags.StringVar(&mode, "mode", string(compute.ModeList), "compute mode (list or count)")
	flags.DurationVar(&config.DialTimeout, "dial-timeout", config.DialTimeout, "time allowed to connect")
	flags.DurationVar(&config.ReadTimeout, "read-timeout", config.ReadTimeout, "time to wait for the range (0 waits forever)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFunc(*cobra.Command, []string) error {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	defer logger.Sync()

	workFunc, err := compute.ForMode(compute.Mode(mode))
	if err != nil {
		return err
	}
	t, err := rangeworkers.ParseTransport(transport)
	if err != nil {
		return err
	}
	config.Transport = t

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-interrupt
		cancel()
	}()

	w := worker.NewWorker(addr, workFunc, logger, config)
	return w.Run(ctx)
}
