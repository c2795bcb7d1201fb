package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ozontech/amqpconv/consts"
	"github.com/ozontech/amqpconv/datasource"
	binaryIO "github.com/ozontech/amqpconv/formats/binary/io"
	"github.com/ozontech/amqpconv/message"
	"github.com/ozontech/amqpconv/report"
	"github.com/ozontech/amqpconv/report/multi"
	"github.com/ozontech/amqpconv/report/simple"
	"github.com/ozontech/amqpconv/scheduler"
)

type RedeliverCommand struct {
	In      *os.File `arg:"" required:"" default:"-" help:"Input file in amqp.binary format (default is stdin)"`
	Out     string   `help:"Write replayed messages in amqp.binary format." type:"path"`
	Stats   string   `help:"Also write periodic statistics to this file." type:"path"`
	Rounds  int      `default:"1" help:"Delivery attempts per message."`
	Workers int      `default:"1" help:"Concurrent writers sharing the same messages."`

	Rate     uint64        `group:"pace" xor:"pace" help:"Constant deliveries per second."`
	RampFrom float64       `group:"pace" xor:"pace" help:"Starting deliveries per second of a linear ramp."`
	RampTo   float64       `group:"pace" help:"Ending deliveries per second of a linear ramp."`
	RampFor  time.Duration `group:"pace" help:"Ramp duration (10s, 2h...)."`
}

func (c *RedeliverCommand) Validate() error {
	if c.Rounds < 0 {
		return errors.New("--rounds must not be negative")
	}
	if c.Workers < 1 {
		return errors.New("--workers must be positive")
	}
	if c.RampFrom != 0 && (c.RampTo == 0 || c.RampFor == 0) {
		return errors.New("--ramp-from needs --ramp-to and --ramp-for")
	}
	return nil
}

func (c *RedeliverCommand) scheduler() (scheduler.Scheduler, error) {
	switch {
	case c.Rate != 0:
		return scheduler.NewConstant(c.Rate)
	case c.RampFrom != 0:
		return scheduler.NewRamp(c.RampFrom, c.RampTo, c.RampFor)
	}
	return scheduler.Unlimited{}, nil
}

func (c *RedeliverCommand) Run(ctx context.Context, log *zap.Logger) (err error) {
	sched, err := c.scheduler()
	if err != nil {
		return err
	}

	ds := datasource.NewInmem(c.In, message.WithLogger(log.Named("message")))
	if err = ds.Init(); err != nil {
		return fmt.Errorf("inmem datasource init: %w", err)
	}
	log.Info("messages loaded", zap.Int("count", ds.Len()))

	var sink func([]byte) error
	if c.Out != "" {
		f, createErr := os.Create(c.Out)
		if createErr != nil {
			return fmt.Errorf("creating output file(%s): %w", c.Out, createErr)
		}
		defer func() { err = multierr.Append(err, f.Close()) }()

		var mu sync.Mutex
		w := binaryIO.NewWriter(f)
		sink = func(b []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return w.WriteNext(b)
		}
	}

	var reporter report.Reporter = simple.New(os.Stderr, consts.ReportInterval)
	if c.Stats != "" {
		f, createErr := os.Create(c.Stats)
		if createErr != nil {
			return fmt.Errorf("creating stats file(%s): %w", c.Stats, createErr)
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		reporter = multi.New(reporter, simple.New(f, consts.ReportInterval))
	}
	done := make(chan error, 1)
	go func() { done <- reporter.Run() }()

	err = ds.Replay(ctx, datasource.ReplayConfig{
		Rounds:    c.Rounds,
		Workers:   c.Workers,
		Scheduler: sched,
		Reporter:  reporter,
		Sink:      sink,
	})
	err = multierr.Combine(err, reporter.Close(), <-done)

	memStats(log)
	return err
}

func memStats(log *zap.Logger) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Info(
		"memory stats",
		zap.Uint64("Alloc (MiB)", bToMb(m.Alloc)),
		zap.Uint64("TotalAlloc (MiB)", bToMb(m.TotalAlloc)),
		zap.Uint64("Sys (MiB)", bToMb(m.Sys)),
		zap.Uint64("HeapInuse (MiB)", bToMb(m.HeapInuse)),
		zap.Uint32("NumGC (count)", m.NumGC),
		zap.Uint64("Mallocs (count)", m.Mallocs),
	)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
