package model

import (
	"github.com/ozontech/amqpconv/core"
	"github.com/ozontech/amqpconv/message"
)

// Envelope переносит одно сообщение между декодером и энкодером.
// Декодер заполняет хотя бы одно из представлений; энкодер достраивает недостающее.
type Envelope struct {
	Wire *message.Message
	Core *core.Message

	// DeliveryCount применяется энкодером amqp.binary, если HasDeliveryCount.
	DeliveryCount    uint32
	HasDeliveryCount bool
}

func (e *Envelope) Reset() {
	*e = Envelope{}
}

// Canonical возвращает core представление, конвертируя wire при необходимости.
func (e *Envelope) Canonical() (*core.Message, error) {
	if e.Core != nil {
		return e.Core, nil
	}
	cm, err := e.Wire.ToCore()
	if err != nil {
		return nil, err
	}
	e.Core = cm
	return cm, nil
}

// Wrapper возвращает wire представление, собирая его из core при необходимости.
func (e *Envelope) Wrapper() (*message.Message, error) {
	if e.Wire != nil {
		return e.Wire, nil
	}
	w, err := message.FromCore(e.Core)
	if err != nil {
		return nil, err
	}
	e.Wire = w
	return w, nil
}

type Marshaler interface {
	MarshalAppend([]byte, *Envelope) ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(e *Envelope, b []byte) error
}

type MessageReader interface {
	ReadNext([]byte) ([]byte, error)
}

type PooledMessageReader interface {
	ReadNext() ([]byte, error)
	Release([]byte)
}

type MessageWriter interface {
	WriteNext([]byte) error
}

type InputFormat struct {
	Reader  PooledMessageReader
	Decoder Unmarshaler
}

type OutputFormat struct {
	Writer  MessageWriter
	Encoder Marshaler
}
