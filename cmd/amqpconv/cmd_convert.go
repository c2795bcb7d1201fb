package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ozontech/amqpconv/consts"
	"github.com/ozontech/amqpconv/formats"
	formatsAMQP "github.com/ozontech/amqpconv/formats/amqp"
	"github.com/ozontech/amqpconv/formats/converter"
	coreJSON "github.com/ozontech/amqpconv/formats/core/json"
	coreMsgpack "github.com/ozontech/amqpconv/formats/core/msgpack"
	"github.com/ozontech/amqpconv/formats/model"
	"github.com/ozontech/amqpconv/message"
	"github.com/ozontech/amqpconv/report/simple"
)

type format string

const (
	formatAMQP        format = formatsAMQP.Name
	formatCoreMsgpack format = coreMsgpack.Name
	formatCoreJSON    format = coreJSON.Name
)

type ConvertCommand struct {
	In  *os.File `arg:"" required:"" default:"-" help:"Input file (default is stdin)"`
	Out string   `arg:"" required:"" default:"-" help:"Output file (default is stdout)" type:"path"`

	From format `enum:"amqp.binary, core.msgpack" required:"" placeholder:"amqp.binary" help:"Input format. Available types: ${enum}"`
	To   format `enum:"amqp.binary, core.msgpack, core.json" required:"" placeholder:"core.json" help:"Output format. Available types: ${enum}"`

	Threads       int               `help:"Conversion goroutines (default is GOMAXPROCS)."`
	FailOnErrors  bool              `help:"Stop on the first message that fails to convert."`
	SetAddress    string            `help:"Rewrite the destination address."`
	SetProperty   map[string]string `help:"Set a string application property (name=value)."`
	DeliveryCount int64             `default:"-1" help:"Delivery-count for amqp.binary output."`
	Stats         bool              `help:"Print conversion statistics to stderr."`
}

func (c *ConvertCommand) Validate() error {
	if c.From == c.To && c.From != formatAMQP {
		return errors.New("--from and --to flags must have different values")
	}
	if c.DeliveryCount > math.MaxUint32 {
		return fmt.Errorf("--delivery-count exceeds %d", uint32(math.MaxUint32))
	}
	if c.DeliveryCount >= 0 && c.To != formatAMQP {
		return errors.New("--delivery-count applies to amqp.binary output only")
	}
	return nil
}

func (c *ConvertCommand) Run(ctx context.Context, log *zap.Logger) (err error) {
	outF := os.Stdout
	if c.Out != "-" {
		outF, err = os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("output file creation: %w", err)
		}
		defer func() { err = multierr.Append(err, outF.Close()) }()
	}

	var inputFormat *model.InputFormat
	switch c.From {
	case formatAMQP:
		inputFormat = formatsAMQP.NewInput(c.In, message.WithLogger(log.Named("message")))
	case formatCoreMsgpack:
		inputFormat = coreMsgpack.NewInput(c.In)
	default:
		panic("assertion error")
	}

	var outputFormat *model.OutputFormat
	switch c.To {
	case formatAMQP:
		outputFormat = formatsAMQP.NewOutput(outF)
	case formatCoreMsgpack:
		outputFormat = coreMsgpack.NewOutput(outF)
	case formatCoreJSON:
		outputFormat = coreJSON.NewOutput(outF)
	default:
		panic("assertion error")
	}
	outputFormat.Encoder = formats.WrapEncoder(outputFormat.Encoder, c.middlewares()...)

	opts := []converter.Option{converter.WithLogger(log.Named("convert"))}
	if c.Threads > 0 {
		opts = append(opts, converter.WithThreads(c.Threads))
	}
	if c.FailOnErrors {
		opts = append(opts, converter.WithFailOnConvertErrors())
	}
	if c.Stats {
		reporter := simple.New(os.Stderr, consts.ReportInterval)
		done := make(chan error, 1)
		go func() { done <- reporter.Run() }()
		defer func() { err = multierr.Combine(err, reporter.Close(), <-done) }()
		opts = append(opts, converter.WithReporter(reporter))
	}

	return converter.NewProcessor(formats.NewConvertStrategy(inputFormat, outputFormat), opts...).Process(ctx)
}

func (c *ConvertCommand) middlewares() []formats.MiddlewareFunc {
	var mws []formats.MiddlewareFunc
	if c.SetAddress != "" {
		mws = append(mws, formats.SetAddress(c.SetAddress))
	}
	for name, value := range c.SetProperty {
		mws = append(mws, formats.SetProperty(name, value))
	}
	if c.DeliveryCount >= 0 {
		mws = append(mws, formats.SetDeliveryCount(uint32(c.DeliveryCount)))
	}
	return mws
}
