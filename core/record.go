package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const recordVersion = 2

const recordFields = 23

var errRecordVersion = errors.New("core: unsupported record version")

// Marshal serializes a message into the core persistence record.
func Marshal(m *Message) ([]byte, error) {
	return msgpack.Marshal(m)
}

func MarshalAppend(b []byte, m *Message) ([]byte, error) {
	rec, err := Marshal(m)
	if err != nil {
		return b, err
	}
	return append(b, rec...), nil
}

func Unmarshal(b []byte, m *Message) error {
	return msgpack.Unmarshal(b, m)
}

var (
	_ msgpack.CustomEncoder = (*Message)(nil)
	_ msgpack.CustomDecoder = (*Message)(nil)
)

func (m *Message) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(recordFields); err != nil {
		return err
	}
	id, _ := m.ID.MarshalBinary()
	steps := []func() error{
		func() error { return enc.EncodeUint8(recordVersion) },
		func() error { return enc.EncodeBytes(id) },
		func() error { return enc.EncodeString(m.MessageID) },
		func() error { return enc.EncodeString(m.CorrelationID) },
		func() error { return enc.EncodeBytes(m.UserID) },
		func() error { return enc.EncodeString(m.Address) },
		func() error { return enc.EncodeString(m.ReplyTo) },
		func() error { return enc.EncodeString(m.Subject) },
		func() error { return enc.EncodeString(m.GroupID) },
		func() error { return enc.EncodeUint32(m.GroupSequence) },
		func() error { return enc.EncodeString(m.ContentType) },
		func() error { return enc.EncodeString(m.ContentEncoding) },
		func() error { return enc.EncodeBool(m.Durable) },
		func() error { return enc.EncodeUint8(m.Priority) },
		func() error { return enc.EncodeInt64(unixMilli(m.Expiration)) },
		func() error { return enc.EncodeInt64(m.TTL.Milliseconds()) },
		func() error { return enc.EncodeBool(m.AbsoluteExpiry) },
		func() error { return enc.EncodeInt64(unixMilli(m.Timestamp)) },
		func() error { return enc.EncodeUint8(uint8(m.Body.Kind)) },
		func() error { return enc.EncodeUint8(uint8(m.Body.Encoding)) },
		func() error { return enc.EncodeBytes(m.Body.Payload) },
		func() error { return encodeProperties(enc, m.Properties) },
		func() error { return encodeProperties(enc, m.Annotations) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Message) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != recordFields {
		return fmt.Errorf("core: record has %d fields, want %d", n, recordFields)
	}
	version, err := dec.DecodeUint8()
	if err != nil {
		return err
	}
	if version != recordVersion {
		return fmt.Errorf("%w: %d", errRecordVersion, version)
	}

	var (
		id              []byte
		kind, encoding  uint8
		expiry, created int64
		ttl             int64
	)
	steps := []func() error{
		func() (err error) { id, err = dec.DecodeBytes(); return },
		func() (err error) { m.MessageID, err = dec.DecodeString(); return },
		func() (err error) { m.CorrelationID, err = dec.DecodeString(); return },
		func() (err error) { m.UserID, err = dec.DecodeBytes(); return },
		func() (err error) { m.Address, err = dec.DecodeString(); return },
		func() (err error) { m.ReplyTo, err = dec.DecodeString(); return },
		func() (err error) { m.Subject, err = dec.DecodeString(); return },
		func() (err error) { m.GroupID, err = dec.DecodeString(); return },
		func() (err error) { m.GroupSequence, err = dec.DecodeUint32(); return },
		func() (err error) { m.ContentType, err = dec.DecodeString(); return },
		func() (err error) { m.ContentEncoding, err = dec.DecodeString(); return },
		func() (err error) { m.Durable, err = dec.DecodeBool(); return },
		func() (err error) { m.Priority, err = dec.DecodeUint8(); return },
		func() (err error) { expiry, err = dec.DecodeInt64(); return },
		func() (err error) { ttl, err = dec.DecodeInt64(); return },
		func() (err error) { m.AbsoluteExpiry, err = dec.DecodeBool(); return },
		func() (err error) { created, err = dec.DecodeInt64(); return },
		func() (err error) { kind, err = dec.DecodeUint8(); return },
		func() (err error) { encoding, err = dec.DecodeUint8(); return },
		func() (err error) { m.Body.Payload, err = dec.DecodeBytes(); return },
		func() (err error) { m.Properties, err = decodeProperties(dec); return },
		func() (err error) { m.Annotations, err = decodeProperties(dec); return },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	if m.ID, err = uuid.FromBytes(id); err != nil {
		return fmt.Errorf("core: record id: %w", err)
	}
	m.Expiration = fromUnixMilli(expiry)
	m.TTL = time.Duration(ttl) * time.Millisecond
	m.Timestamp = fromUnixMilli(created)
	m.Body.Kind = BodyKind(kind)
	m.Body.Encoding = OriginalEncoding(encoding)
	return nil
}

func encodeProperties(enc *msgpack.Encoder, p *Properties) error {
	if err := enc.EncodeArrayLen(2 * p.Len()); err != nil {
		return err
	}
	var err error
	p.Range(func(name string, v any) bool {
		if err = enc.EncodeString(name); err != nil {
			return false
		}
		err = enc.Encode(v)
		return err == nil
	})
	return err
}

func decodeProperties(dec *msgpack.Decoder) (*Properties, error) {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, err
	}
	p := NewProperties()
	for i := 0; i < n/2; i++ {
		name, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		v, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		if err = p.Set(name, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
