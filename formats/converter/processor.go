package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ozontech/amqpconv/report"
	"github.com/ozontech/amqpconv/report/noop"
)

type DataHolder = interface{}

type convertItem struct {
	message    DataHolder
	convertErr error
}

type Strategy interface {
	Read() (DataHolder, error)
	Decode(DataHolder) error

	Encode(DataHolder) error
	// Write возвращает число записанных байт сообщения.
	Write(DataHolder) (int, error)
	// Release возвращает держатель в пул после записи или ошибки.
	Release(DataHolder)
}

type Processor struct {
	conf     conf
	strategy Strategy
}

func NewProcessor(strategy Strategy, opts ...Option) *Processor {
	conf := newDefaultConf() //nolint:govet
	for _, o := range opts {
		if o != nil {
			o(&conf)
		}
	}

	return &Processor{
		conf:     conf,
		strategy: strategy,
	}
}

func (p *Processor) runRead(ctx context.Context, readChans []chan convertItem) error {
	defer func() {
		for _, readChan := range readChans {
			close(readChan)
		}
	}()

	s := p.strategy
	threads := p.conf.threads

	var i int
	for {
		message, err := s.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read #%d message error: %w", i+1, err)
		}

		select {
		case readChans[i%threads] <- convertItem{message, nil}:
		case <-ctx.Done():
			return ctx.Err()
		}
		i++
	}
}

func (p *Processor) runConvert(ctx context.Context, convertChan <-chan convertItem, writeChan chan<- convertItem) error {
	defer close(writeChan)

	s := p.strategy

	for {
		select {
		case item, ok := <-convertChan:
			if !ok {
				return nil
			}

			if err := s.Decode(item.message); err != nil {
				item.convertErr = fmt.Errorf("decode error: %w", err)
			} else if err = s.Encode(item.message); err != nil {
				item.convertErr = fmt.Errorf("encode error: %w", err)
			}

			select {
			case writeChan <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Processor) runWrite(ctx context.Context, writeChans []chan convertItem) error {
	threads := p.conf.threads
	errWriter := p.conf.errWriter
	s := p.strategy
	log := p.conf.log

	var (
		i           int
		closedChans int
	)
	for {
		select {
		case item, ok := <-writeChans[i%threads]:
			if !ok {
				closedChans++
				if closedChans == threads {
					return nil
				}
				continue
			}

			i++
			state := p.conf.reporter.Acquire()
			if item.convertErr != nil {
				s.Release(item.message)
				state.Error(item.convertErr)
				state.End()

				err := fmt.Errorf("message #%d: %w", i, item.convertErr)
				if p.conf.failOnConvertErrors {
					return err
				}
				log.Debug("skip message", zap.Int("n", i), zap.Error(item.convertErr))
				_, err = errWriter.Write([]byte(err.Error() + "\n"))
				if err != nil {
					return fmt.Errorf("errWriter: %w", err)
				}
				continue
			}
			n, err := s.Write(item.message)
			s.Release(item.message)
			if err != nil {
				state.Error(err)
				state.End()
				return fmt.Errorf("write: %w", err)
			}
			state.SetSize(n)
			state.End()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Processor) Process(ctx context.Context) error {
	threads := p.conf.threads
	readChans := make([]chan convertItem, threads)
	for i := range readChans {
		readChans[i] = make(chan convertItem, p.conf.threadBuffer)
	}
	writeChans := make([]chan convertItem, threads)
	for i := range readChans {
		writeChans[i] = make(chan convertItem)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { return p.runRead(ctx, readChans) })

	for i := 0; i < threads; i++ {
		i := i
		g.Go(func() error { return p.runConvert(ctx, readChans[i], writeChans[i]) })
	}

	g.Go(func() error { return p.runWrite(ctx, writeChans) })

	err := g.Wait()
	p.conf.log.Debug("conversion finished", zap.Int("threads", threads), zap.Error(err))
	return err
}

type conf struct {
	threads             int
	threadBuffer        int
	errWriter           io.Writer
	failOnConvertErrors bool
	log                 *zap.Logger
	reporter            report.Reporter
}

func newDefaultConf() conf {
	return conf{
		threads:      runtime.GOMAXPROCS(-1),
		threadBuffer: 100,
		errWriter:    os.Stderr,
		log:          zap.NewNop(),
		reporter:     noop.New(),
	}
}

type Option func(*conf)

func WithThreads(threads int) Option {
	return func(r *conf) {
		r.threads = threads
	}
}

func WithThreadsBuffer(threadBuffer int) Option {
	return func(c *conf) {
		c.threadBuffer = threadBuffer
	}
}

func WithErrWriter(errWriter io.Writer) Option {
	return func(c *conf) {
		c.errWriter = errWriter
	}
}

func WithFailOnConvertErrors() Option {
	return func(r *conf) {
		r.failOnConvertErrors = true
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *conf) {
		c.log = log
	}
}

// WithReporter передает исход каждого сообщения репортеру.
// Запуск и остановка репортера остаются на вызывающей стороне.
func WithReporter(r report.Reporter) Option {
	return func(c *conf) {
		c.reporter = r
	}
}
