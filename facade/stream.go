package facade

import (
	"github.com/ozontech/amqpconv/core"
)

// StreamMessage reads and writes list items in order. The list is decoded on
// first use. A read that fails to convert leaves the cursor where it was, so
// the item can be read again as another type.
type StreamMessage struct {
	base
	items   []any
	pos     int
	decoded bool
}

func NewStreamMessage() *StreamMessage {
	m := core.NewMessage(core.BodyList)
	m.Body.Encoding = core.EncodingSequence
	return &StreamMessage{base: base{msg: m}, items: []any{}, decoded: true}
}

func (m *StreamMessage) Kind() Kind { return KindStream }

func (m *StreamMessage) decode() error {
	if m.decoded {
		return nil
	}
	items, err := core.DecodeList(m.msg.Body.Payload)
	if err != nil {
		return err
	}
	m.items = items
	m.decoded = true
	return nil
}

// Reset rewinds the cursor to the first item.
func (m *StreamMessage) Reset() { m.pos = 0 }

func (m *StreamMessage) ClearBody() {
	m.items = []any{}
	m.pos = 0
	m.decoded = true
	m.msg.Body.Payload = nil
}

// Len returns the number of items.
func (m *StreamMessage) Len() (int, error) {
	if err := m.decode(); err != nil {
		return 0, err
	}
	return len(m.items), nil
}

func (m *StreamMessage) peek() (any, error) {
	if err := m.decode(); err != nil {
		return nil, err
	}
	if m.pos >= len(m.items) {
		return nil, ErrEndOfStream
	}
	return m.items[m.pos], nil
}

// read converts the current item and advances only on success.
func read[T any](m *StreamMessage, conv func(any) (T, error)) (T, error) {
	v, err := m.peek()
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := conv(v)
	if err != nil {
		return out, err
	}
	m.pos++
	return out, nil
}

func (m *StreamMessage) ReadBoolean() (bool, error)   { return read(m, core.ToBool) }
func (m *StreamMessage) ReadInt8() (int8, error)      { return read(m, core.ToByte) }
func (m *StreamMessage) ReadShort() (int16, error)    { return read(m, core.ToShort) }
func (m *StreamMessage) ReadInt() (int32, error)      { return read(m, core.ToInt) }
func (m *StreamMessage) ReadLong() (int64, error)     { return read(m, core.ToLong) }
func (m *StreamMessage) ReadFloat() (float32, error)  { return read(m, core.ToFloat) }
func (m *StreamMessage) ReadDouble() (float64, error) { return read(m, core.ToDouble) }
func (m *StreamMessage) ReadString() (string, error)  { return read(m, core.ToString) }
func (m *StreamMessage) ReadBytes() ([]byte, error)   { return read(m, core.ToBytes) }

func (m *StreamMessage) ReadObject() (any, error) {
	return read(m, func(v any) (any, error) { return v, nil })
}

// write appends an item and writes the list back to the canonical body.
func (m *StreamMessage) write(v any) error {
	if err := m.decode(); err != nil {
		return err
	}
	items := append(m.items, v)
	payload, err := core.EncodeList(items)
	if err != nil {
		return err
	}
	m.items = items
	m.msg.Body.Payload = payload
	return nil
}

func (m *StreamMessage) WriteBoolean(v bool) error   { return m.write(v) }
func (m *StreamMessage) WriteInt8(v int8) error      { return m.write(v) }
func (m *StreamMessage) WriteShort(v int16) error    { return m.write(v) }
func (m *StreamMessage) WriteInt(v int32) error      { return m.write(v) }
func (m *StreamMessage) WriteLong(v int64) error     { return m.write(v) }
func (m *StreamMessage) WriteFloat(v float32) error  { return m.write(v) }
func (m *StreamMessage) WriteDouble(v float64) error { return m.write(v) }
func (m *StreamMessage) WriteString(v string) error  { return m.write(v) }
func (m *StreamMessage) WriteBytes(v []byte) error   { return m.write(v) }
func (m *StreamMessage) WriteObject(v any) error     { return m.write(v) }
