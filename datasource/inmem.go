// Package datasource хранит входные сообщения в памяти и повторно выдает их
// с растущим delivery-count, как при повторной доставке.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	formatsAMQP "github.com/ozontech/amqpconv/formats/amqp"
	"github.com/ozontech/amqpconv/formats/model"
	"github.com/ozontech/amqpconv/message"
	"github.com/ozontech/amqpconv/report"
	"github.com/ozontech/amqpconv/report/noop"
	"github.com/ozontech/amqpconv/scheduler"
)

var ErrEmpty = errors.New("input is empty")

type entry struct {
	msg   *message.Message
	count uint32
}

// Inmem держит чистые обертки, общие для всех читателей.
// После Init обертки только читаются.
type Inmem struct {
	format *model.InputFormat

	i       atomic.Uint64
	entries []entry
}

func NewInmem(r io.Reader, opts ...message.Option) *Inmem {
	return &Inmem{format: formatsAMQP.NewInput(r, opts...)}
}

func (ds *Inmem) Init() error {
	var e model.Envelope
	for {
		b, err := ds.format.Reader.ReadNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("read message #%d: %w", len(ds.entries)+1, err)
		}
		err = ds.format.Decoder.Unmarshal(&e, b)
		ds.format.Reader.Release(b)
		if err != nil {
			return fmt.Errorf("decode message #%d: %w", len(ds.entries)+1, err)
		}

		count, err := e.Wire.DeliveryCount()
		if err != nil {
			return fmt.Errorf("decode message #%d: %w", len(ds.entries)+1, err)
		}
		ds.entries = append(ds.entries, entry{e.Wire, count})
	}
	if len(ds.entries) == 0 {
		return ErrEmpty
	}
	return nil
}

func (ds *Inmem) Len() int { return len(ds.entries) }

// Fetch возвращает следующее сообщение и delivery-count для него:
// каждый полный проход по набору считается еще одной попыткой доставки.
func (ds *Inmem) Fetch() (*message.Message, uint32) {
	return ds.at(ds.i.Add(1) - 1)
}

func (ds *Inmem) at(i uint64) (*message.Message, uint32) {
	n := uint64(len(ds.entries))
	e := ds.entries[i%n]
	return e.msg, e.count + uint32(i/n)
}

type ReplayConfig struct {
	Rounds  int
	Workers int
	// Scheduler задает темп доставок; nil означает без ограничений.
	Scheduler scheduler.Scheduler
	Reporter  report.Reporter
	// Sink вызывается конкурентно и не должен сохранять переданный буфер.
	Sink func([]byte) error
}

// Replay пишет каждое сообщение Rounds раз из Workers горутин, начиная с
// исходного delivery-count. Все горутины читают одни и те же обертки.
func (ds *Inmem) Replay(ctx context.Context, c ReplayConfig) error {
	limit := uint64(c.Rounds) * uint64(len(ds.entries))
	if limit == 0 {
		return nil
	}
	sched := c.Scheduler
	if sched == nil {
		sched = scheduler.Unlimited{}
	}
	rep := c.Reporter
	if rep == nil {
		rep = noop.New()
	}

	var next atomic.Uint64
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < max(c.Workers, 1); w++ {
		g.Go(func() error {
			var dst []byte
			for {
				i := next.Add(1) - 1
				if i >= limit {
					return nil
				}
				if !scheduler.Wait(ctx, sched, start, int64(i)) {
					return ctx.Err()
				}
				m, count := ds.at(i)

				state := rep.Acquire()
				var (
					mode message.WriteMode
					err  error
				)
				dst, mode, err = m.AppendWire(dst[:0], count)
				if err == nil && c.Sink != nil {
					err = c.Sink(dst)
				}
				if err != nil {
					state.Error(err)
					state.End()
					return fmt.Errorf("delivery-count %d: %w", count, err)
				}
				state.SetMode(mode)
				state.SetSize(len(dst))
				state.End()
			}
		})
	}
	return g.Wait()
}
