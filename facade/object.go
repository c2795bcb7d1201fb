package facade

import (
	"github.com/ozontech/amqpconv/core"
)

// ObjectMessage passes the body through without structural decoding.
// It serves scalar bodies and messages without a body.
type ObjectMessage struct {
	base
}

func NewObjectMessage() *ObjectMessage {
	m := core.NewMessage(core.BodyValue)
	return &ObjectMessage{base: base{msg: m}}
}

func (m *ObjectMessage) Kind() Kind { return KindObject }

// Payload returns the encoded body as stored in the canonical message.
func (m *ObjectMessage) Payload() []byte { return m.msg.Body.Payload }

// Value decodes the body. An absent body yields nil.
func (m *ObjectMessage) Value() (any, error) {
	return core.DecodeValue(m.msg.Body.Payload)
}

func (m *ObjectMessage) SetValue(v any) error { return m.msg.SetValue(v) }

func (m *ObjectMessage) ClearBody() { _ = m.msg.SetValue(nil) }
