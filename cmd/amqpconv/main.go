package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	mangokong "github.com/alecthomas/mango-kong"
	"go.uber.org/zap"
)

var CLI struct {
	Convert   ConvertCommand    `cmd:"" help:"Convert message streams between formats."`
	Inspect   InspectCommand    `cmd:"" help:"Print section layout, properties and body of each message."`
	Redeliver RedeliverCommand  `cmd:"" help:"Replay messages with growing delivery-count."`
	Man       mangokong.ManFlag `help:"Write man page." hidden:""`
	Verbose   bool              `help:"Verbose output."`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(
		&CLI,
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.ConfigureHelp(kong.HelpOptions{
			Tree:    true,
			Compact: true,
		}),
		kong.Description(`AMQP 1.0 message conversion toolkit

Converts framed AMQP 1.0 messages to the broker core format and back, inspects them and replays them the way a broker redelivers.
		`),
	)

	log := zap.NewNop()
	if CLI.Verbose {
		log = zap.Must(zap.NewDevelopment())
	}
	defer log.Sync() //nolint:errcheck
	kongCtx.Bind(log)

	err := kongCtx.Run()
	if err != nil {
		log.Error("command failed", zap.String("command", kongCtx.Command()), zap.Error(err))
	}
	kongCtx.FatalIfErrorf(err)
}
