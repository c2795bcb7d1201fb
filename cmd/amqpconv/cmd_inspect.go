package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ozontech/amqpconv/core"
	"github.com/ozontech/amqpconv/facade"
	formatsAMQP "github.com/ozontech/amqpconv/formats/amqp"
	"github.com/ozontech/amqpconv/formats/model"
	"github.com/ozontech/amqpconv/message"
)

const previewItems = 16

type InspectCommand struct {
	In    *os.File `arg:"" required:"" default:"-" help:"Input file in amqp.binary format (default is stdin)"`
	Limit int      `help:"Stop after this many messages."`
}

func (c *InspectCommand) Run(ctx context.Context, log *zap.Logger) error {
	return inspect(ctx, os.Stdout, formatsAMQP.NewInput(c.In, message.WithLogger(log.Named("message"))), c.Limit)
}

func inspect(ctx context.Context, out io.Writer, in *model.InputFormat, limit int) error {
	var e model.Envelope
	for i := 1; limit <= 0 || i <= limit; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := in.Reader.ReadNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read message #%d: %w", i, err)
		}
		err = in.Decoder.Unmarshal(&e, b)
		in.Reader.Release(b)

		fmt.Fprintf(out, "#%d %s\n", i, e.Wire)
		if err != nil {
			fmt.Fprintf(out, "  error: %v\n", err)
			continue
		}
		if err = describe(out, e.Wire); err != nil {
			fmt.Fprintf(out, "  error: %v\n", err)
		}
	}
	return nil
}

func describe(out io.Writer, w *message.Message) error {
	count, err := w.DeliveryCount()
	if err != nil {
		return err
	}
	cm, err := w.ToCore()
	if err != nil {
		return err
	}
	m, err := facade.Wrap(cm)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  kind=%s encoding=%s body=%s delivery-count=%d durable=%t priority=%d\n",
		m.Kind(), cm.Body.Encoding, humanize.IBytes(uint64(len(cm.Body.Payload))), count, cm.Durable, cm.Priority)
	if cm.MessageID != "" {
		fmt.Fprintf(out, "  message-id=%s\n", cm.MessageID)
	}
	if cm.Address != "" {
		fmt.Fprintf(out, "  address=%s\n", cm.Address)
	}
	if !cm.Timestamp.IsZero() {
		fmt.Fprintf(out, "  created %s\n", humanize.Time(cm.Timestamp))
	}
	for _, name := range m.PropertyNames() {
		v, _ := m.GetObjectProperty(name)
		fmt.Fprintf(out, "  property %s (%s) = %v\n", name, core.TypeOf(v), v)
	}
	cm.Annotations.Range(func(name string, v any) bool {
		fmt.Fprintf(out, "  annotation %s = %v\n", name, v)
		return true
	})
	return preview(out, m)
}

func preview(out io.Writer, m facade.Message) error {
	switch m := m.(type) {
	case *facade.TextMessage:
		if err := m.Decode(); err != nil {
			return err
		}
		text, err := m.Text()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  text %q\n", text)
	case *facade.MapMessage:
		if err := m.Decode(); err != nil {
			return err
		}
		names, err := m.MapNames()
		if err != nil {
			return err
		}
		for i, name := range names {
			if i == previewItems {
				fmt.Fprintf(out, "  ... %d more\n", len(names)-i)
				break
			}
			v, _ := m.GetObject(name)
			fmt.Fprintf(out, "  map %s (%s) = %v\n", name, core.TypeOf(v), v)
		}
	case *facade.StreamMessage:
		n, err := m.Len()
		if err != nil {
			return err
		}
		for i := 0; i < n && i < previewItems; i++ {
			v, err := m.ReadObject()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  item %d (%s) = %v\n", i, core.TypeOf(v), v)
		}
	case *facade.BytesMessage:
		fmt.Fprintf(out, "  bytes %s\n", humanize.IBytes(uint64(m.BodyLength())))
	case *facade.ObjectMessage:
		v, err := m.Value()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  value (%s) = %v\n", core.TypeOf(v), v)
	}
	return nil
}
