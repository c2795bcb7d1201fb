package amqp

import (
	"github.com/ozontech/amqpconv/consts"
	"github.com/ozontech/amqpconv/formats/model"
	"github.com/ozontech/amqpconv/message"
)

type Decoder struct {
	opts []message.Option
}

func NewDecoder(opts ...message.Option) *Decoder {
	return &Decoder{opts}
}

// Unmarshal копирует кадр: буфер чтения возвращается в пул после записи,
// а обертка владеет своими байтами.
func (d *Decoder) Unmarshal(e *model.Envelope, b []byte) error {
	e.Reset()
	e.Wire = message.FromBytes(append([]byte(nil), b...), consts.DefaultMessageFormat, d.opts...)
	// только сканирование границ секций, без разбора
	_, err := e.Wire.DeliveryCount()
	return err
}

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (*Encoder) MarshalAppend(b []byte, e *model.Envelope) ([]byte, error) {
	w, err := e.Wrapper()
	if err != nil {
		return b, err
	}
	if e.HasDeliveryCount {
		b, _, err = w.AppendWire(b, e.DeliveryCount)
		return b, err
	}
	wire, err := w.Bytes()
	if err != nil {
		return b, err
	}
	return append(b, wire...), nil
}

var (
	_ model.Unmarshaler = (*Decoder)(nil)
	_ model.Marshaler   = (*Encoder)(nil)
)
