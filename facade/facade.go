// Package facade exposes canonical messages through the legacy typed message
// kinds: bytes, map, stream, text and object. The kind is chosen by the body
// kind of the canonical message; every kind shares the property accessors.
package facade

import (
	"errors"
	"strconv"

	"github.com/ozontech/amqpconv/core"
)

type Kind uint8

const (
	KindBytes Kind = iota
	KindMap
	KindStream
	KindText
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindMap:
		return "map"
	case KindStream:
		return "stream"
	case KindText:
		return "text"
	case KindObject:
		return "object"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// KindOf returns the facade kind serving a body kind.
func KindOf(k core.BodyKind) Kind {
	switch k {
	case core.BodyBytes:
		return KindBytes
	case core.BodyMap:
		return KindMap
	case core.BodyList:
		return KindStream
	case core.BodyText:
		return KindText
	}
	return KindObject
}

// Message is the capability set common to all kinds.
type Message interface {
	Kind() Kind
	Core() *core.Message

	PropertyExists(name string) bool
	PropertyNames() []string
	ClearProperties()
	ClearBody()

	GetBooleanProperty(name string) (bool, error)
	GetByteProperty(name string) (int8, error)
	GetShortProperty(name string) (int16, error)
	GetIntProperty(name string) (int32, error)
	GetLongProperty(name string) (int64, error)
	GetFloatProperty(name string) (float32, error)
	GetDoubleProperty(name string) (float64, error)
	GetStringProperty(name string) (string, error)
	GetObjectProperty(name string) (any, error)

	SetBooleanProperty(name string, v bool) error
	SetByteProperty(name string, v int8) error
	SetShortProperty(name string, v int16) error
	SetIntProperty(name string, v int32) error
	SetLongProperty(name string, v int64) error
	SetFloatProperty(name string, v float32) error
	SetDoubleProperty(name string, v float64) error
	SetStringProperty(name string, v string) error
	SetObjectProperty(name string, v any) error
}

var errNilMessage = errors.New("facade: nil message")

// Wrap selects the kind from the body of m. The facade refers to m, nothing is copied.
func Wrap(m *core.Message) (Message, error) {
	if m == nil {
		return nil, errNilMessage
	}
	if m.Properties == nil {
		m.Properties = core.NewProperties()
	}
	b := base{msg: m}
	switch KindOf(m.Body.Kind) {
	case KindBytes:
		return &BytesMessage{base: b}, nil
	case KindMap:
		return &MapMessage{base: b}, nil
	case KindStream:
		return &StreamMessage{base: b}, nil
	case KindText:
		return &TextMessage{base: b}, nil
	}
	return &ObjectMessage{base: b}, nil
}

func AsBytes(m Message) (*BytesMessage, error) {
	if v, ok := m.(*BytesMessage); ok {
		return v, nil
	}
	return nil, &KindMismatchError{Want: KindBytes, Got: m.Kind()}
}

func AsMap(m Message) (*MapMessage, error) {
	if v, ok := m.(*MapMessage); ok {
		return v, nil
	}
	return nil, &KindMismatchError{Want: KindMap, Got: m.Kind()}
}

func AsStream(m Message) (*StreamMessage, error) {
	if v, ok := m.(*StreamMessage); ok {
		return v, nil
	}
	return nil, &KindMismatchError{Want: KindStream, Got: m.Kind()}
}

func AsText(m Message) (*TextMessage, error) {
	if v, ok := m.(*TextMessage); ok {
		return v, nil
	}
	return nil, &KindMismatchError{Want: KindText, Got: m.Kind()}
}

func AsObject(m Message) (*ObjectMessage, error) {
	if v, ok := m.(*ObjectMessage); ok {
		return v, nil
	}
	return nil, &KindMismatchError{Want: KindObject, Got: m.Kind()}
}

// base carries the property accessors, which behave the same for every kind.
type base struct {
	msg *core.Message
}

func (b *base) Core() *core.Message { return b.msg }

func (b *base) PropertyExists(name string) bool { return b.msg.Properties.Has(name) }
func (b *base) PropertyNames() []string         { return b.msg.Properties.Names() }
func (b *base) ClearProperties()                { b.msg.Properties.Clear() }

func (b *base) GetBooleanProperty(name string) (bool, error)   { return b.msg.Properties.Bool(name) }
func (b *base) GetByteProperty(name string) (int8, error)      { return b.msg.Properties.Byte(name) }
func (b *base) GetShortProperty(name string) (int16, error)    { return b.msg.Properties.Short(name) }
func (b *base) GetIntProperty(name string) (int32, error)      { return b.msg.Properties.Int(name) }
func (b *base) GetLongProperty(name string) (int64, error)     { return b.msg.Properties.Long(name) }
func (b *base) GetFloatProperty(name string) (float32, error)  { return b.msg.Properties.Float(name) }
func (b *base) GetDoubleProperty(name string) (float64, error) { return b.msg.Properties.Double(name) }
func (b *base) GetStringProperty(name string) (string, error)  { return b.msg.Properties.String(name) }

func (b *base) GetObjectProperty(name string) (any, error) {
	v, ok := b.msg.Properties.Get(name)
	if !ok {
		return nil, core.ErrNotFound
	}
	return v, nil
}

func (b *base) SetBooleanProperty(name string, v bool) error {
	return b.msg.Properties.Set(name, v)
}

func (b *base) SetByteProperty(name string, v int8) error {
	return b.msg.Properties.Set(name, v)
}

func (b *base) SetShortProperty(name string, v int16) error {
	return b.msg.Properties.Set(name, v)
}

func (b *base) SetIntProperty(name string, v int32) error {
	return b.msg.Properties.Set(name, v)
}

func (b *base) SetLongProperty(name string, v int64) error {
	return b.msg.Properties.Set(name, v)
}

func (b *base) SetFloatProperty(name string, v float32) error {
	return b.msg.Properties.Set(name, v)
}

func (b *base) SetDoubleProperty(name string, v float64) error {
	return b.msg.Properties.Set(name, v)
}

func (b *base) SetStringProperty(name string, v string) error {
	return b.msg.Properties.Set(name, v)
}

// SetObjectProperty accepts any value a property may hold, nil included.
func (b *base) SetObjectProperty(name string, v any) error {
	return b.msg.Properties.Set(name, v)
}
