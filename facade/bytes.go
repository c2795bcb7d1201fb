package facade

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/ozontech/amqpconv/core"
)

// BytesMessage reads and writes the raw body sequentially, big-endian.
// Reads start at the beginning of the body; Reset rewinds. Writes append.
type BytesMessage struct {
	base
	pos int
}

func NewBytesMessage() *BytesMessage {
	m := core.NewMessage(core.BodyBytes)
	m.SetBytes(nil)
	return &BytesMessage{base: base{msg: m}}
}

func (m *BytesMessage) Kind() Kind { return KindBytes }

func (m *BytesMessage) BodyLength() int64 { return int64(len(m.msg.Body.Payload)) }

func (m *BytesMessage) Reset() { m.pos = 0 }

func (m *BytesMessage) ClearBody() {
	m.msg.SetBytes(nil)
	m.pos = 0
}

// next returns the following n bytes. The position moves only on success.
func (m *BytesMessage) next(n int) ([]byte, error) {
	p := m.msg.Body.Payload
	if len(p)-m.pos < n {
		return nil, ErrEndOfStream
	}
	b := p[m.pos : m.pos+n]
	m.pos += n
	return b, nil
}

// ReadBytes copies up to len(p) bytes. It returns ErrEndOfStream when the body is exhausted.
func (m *BytesMessage) ReadBytes(p []byte) (int, error) {
	rest := m.msg.Body.Payload[m.pos:]
	if len(rest) == 0 && len(p) > 0 {
		return 0, ErrEndOfStream
	}
	n := copy(p, rest)
	m.pos += n
	return n, nil
}

func (m *BytesMessage) ReadBoolean() (bool, error) {
	b, err := m.next(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (m *BytesMessage) ReadByte() (byte, error) {
	b, err := m.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *BytesMessage) ReadShort() (int16, error) {
	b, err := m.next(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (m *BytesMessage) ReadInt() (int32, error) {
	b, err := m.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (m *BytesMessage) ReadLong() (int64, error) {
	b, err := m.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (m *BytesMessage) ReadFloat() (float32, error) {
	n, err := m.ReadInt()
	return math.Float32frombits(uint32(n)), err
}

func (m *BytesMessage) ReadDouble() (float64, error) {
	n, err := m.ReadLong()
	return math.Float64frombits(uint64(n)), err
}

// ReadUTF reads a string prefixed with its uint16 byte length.
func (m *BytesMessage) ReadUTF() (string, error) {
	start := m.pos
	h, err := m.next(2)
	if err != nil {
		return "", err
	}
	b, err := m.next(int(binary.BigEndian.Uint16(h)))
	if err != nil {
		m.pos = start
		return "", err
	}
	if !utf8.Valid(b) {
		m.pos = start
		return "", &core.TypeMismatchError{Want: core.TypeString, Got: core.TypeBytes}
	}
	return string(b), nil
}

func (m *BytesMessage) Write(p []byte) (int, error) {
	m.msg.Body.Payload = append(m.msg.Body.Payload, p...)
	return len(p), nil
}

func (m *BytesMessage) WriteBoolean(v bool) error {
	var b byte
	if v {
		b = 1
	}
	return m.WriteByte(b)
}

func (m *BytesMessage) WriteByte(v byte) error {
	m.msg.Body.Payload = append(m.msg.Body.Payload, v)
	return nil
}

func (m *BytesMessage) WriteShort(v int16) error {
	m.msg.Body.Payload = binary.BigEndian.AppendUint16(m.msg.Body.Payload, uint16(v))
	return nil
}

func (m *BytesMessage) WriteInt(v int32) error {
	m.msg.Body.Payload = binary.BigEndian.AppendUint32(m.msg.Body.Payload, uint32(v))
	return nil
}

func (m *BytesMessage) WriteLong(v int64) error {
	m.msg.Body.Payload = binary.BigEndian.AppendUint64(m.msg.Body.Payload, uint64(v))
	return nil
}

func (m *BytesMessage) WriteFloat(v float32) error {
	return m.WriteInt(int32(math.Float32bits(v)))
}

func (m *BytesMessage) WriteDouble(v float64) error {
	return m.WriteLong(int64(math.Float64bits(v)))
}

func (m *BytesMessage) WriteUTF(s string) error {
	if len(s) > math.MaxUint16 {
		return errStringTooLong
	}
	m.msg.Body.Payload = binary.BigEndian.AppendUint16(m.msg.Body.Payload, uint16(len(s)))
	m.msg.Body.Payload = append(m.msg.Body.Payload, s...)
	return nil
}
