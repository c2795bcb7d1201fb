// Package simple печатает сводку конвертации раз в интервал и итог при закрытии.
package simple

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ozontech/amqpconv/message"
	"github.com/ozontech/amqpconv/report"
	"github.com/ozontech/amqpconv/utils/pool"
)

type Counters struct {
	OK        uint64
	Failed    uint64
	Verbatim  uint64
	Patched   uint64
	Reencoded uint64
	Size      uint64
}

func (c Counters) sub(o Counters) Counters {
	return Counters{
		OK:        c.OK - o.OK,
		Failed:    c.Failed - o.Failed,
		Verbatim:  c.Verbatim - o.Verbatim,
		Patched:   c.Patched - o.Patched,
		Reencoded: c.Reencoded - o.Reencoded,
		Size:      c.Size - o.Size,
	}
}

type Reporter struct {
	pool     *pool.SlicePool[*state]
	closeCh  chan struct{}
	out      io.Writer
	interval time.Duration

	start time.Time
	ok    atomic.Uint64
	nook  atomic.Uint64
	modes [3]atomic.Uint64
	size  atomic.Uint64

	last     Counters
	lastTime time.Time
}

func New(out io.Writer, interval time.Duration) *Reporter {
	now := time.Now()
	return &Reporter{
		pool:     pool.NewSlicePoolSize[*state](100),
		closeCh:  make(chan struct{}),
		out:      out,
		interval: interval,
		start:    now,
		lastTime: now,
	}
}

func (a *Reporter) Run() error {
	t := time.NewTicker(a.interval)
	defer t.Stop()
	defer a.total()
	for {
		select {
		case now := <-t.C:
			a.report(now)
		case <-a.closeCh:
			return nil
		}
	}
}

func (a *Reporter) Close() error {
	close(a.closeCh)
	return nil
}

func (a *Reporter) Acquire() report.State {
	s, ok := a.pool.Acquire()
	if !ok {
		s = &state{reporter: a}
	}
	s.reset()
	return s
}

// Counters возвращает накопленные с запуска значения.
func (a *Reporter) Counters() Counters {
	return Counters{
		OK:        a.ok.Load(),
		Failed:    a.nook.Load(),
		Verbatim:  a.modes[message.WriteVerbatim].Load(),
		Patched:   a.modes[message.WritePatched].Load(),
		Reencoded: a.modes[message.WriteReencoded].Load(),
		Size:      a.size.Load(),
	}
}

func (a *Reporter) accept(s *state) {
	if s.err != nil {
		a.nook.Add(1)
	} else {
		a.ok.Add(1)
		a.size.Add(uint64(s.size))
		if s.hasMode && int(s.mode) < len(a.modes) {
			a.modes[s.mode].Add(1)
		}
	}
	a.pool.Release(s)
}

func (a *Reporter) write(c Counters, d time.Duration) {
	total := c.OK + c.Failed
	fmt.Fprintf(a.out,
		"total=%d ok=%d failed=%d verbatim=%d patched=%d reencoded=%d size=%s",
		total, c.OK, c.Failed, c.Verbatim, c.Patched, c.Reencoded, humanize.Bytes(c.Size),
	)
	if ms := d.Milliseconds(); ms > 0 {
		fmt.Fprintf(a.out, " rate=%s/s msg/s=%.2f",
			humanize.Bytes(c.Size*1000/uint64(ms)), float64(total)*1000/float64(ms),
		)
	}
	fmt.Fprintln(a.out)
}

func (a *Reporter) total() {
	fmt.Fprintln(a.out, "total")
	a.write(a.Counters(), time.Since(a.start))
}

func (a *Reporter) report(now time.Time) {
	c := a.Counters()
	a.write(c.sub(a.last), now.Sub(a.lastTime))
	a.last, a.lastTime = c, now
}

type state struct {
	reporter *Reporter
	size     int
	mode     message.WriteMode
	hasMode  bool
	err      error
}

func (s *state) reset() {
	s.size = 0
	s.hasMode = false
	s.err = nil
}

func (s *state) SetSize(size int) { s.size = size }
func (s *state) Error(err error)  { s.err = err }
func (s *state) End()             { s.reporter.accept(s) }

func (s *state) SetMode(mode message.WriteMode) {
	s.mode, s.hasMode = mode, true
}

var _ report.Reporter = (*Reporter)(nil)
