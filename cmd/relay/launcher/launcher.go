package launcher

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-bridge-relay/flags"
	"github.com/rony4d/go-bridge-relay/integration"
)

var app = flags.NewApp()

func init() {
	app.Action = run
}

// Launch parses args and runs the relay until SIGINT or SIGTERM.
func Launch(args []string) error {
	return app.Run(args)
}

func run(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}

	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	relay, err := integration.New(sigctx, cfg.Relay, log)
	if err != nil {
		log.WithError(err).Error("Relay assembly failed")
		return err
	}
	defer relay.Close()

	return relay.Run(sigctx)
}
