// Package codec adapts github.com/Azure/go-amqp to the section level operations
// the message wrapper needs: whole message encode/decode, single section encode
// and a value-free scan of section boundaries.
package codec

import (
	"errors"

	"github.com/Azure/go-amqp"
)

var errNilMessage = errors.New("nil message")

// Decode parses a full AMQP message. The returned message may reference b.
func Decode(b []byte, format uint32) (*amqp.Message, error) {
	m := new(amqp.Message)
	if err := m.UnmarshalBinary(b); err != nil {
		return nil, &DecodeError{Offset: -1, Err: err}
	}
	m.Format = format
	return m, nil
}

func Encode(m *amqp.Message) ([]byte, error) {
	return MarshalAppend(nil, m)
}

func MarshalAppend(b []byte, m *amqp.Message) ([]byte, error) {
	if m == nil {
		return b, &EncodeError{Section: SectionBody, Err: errNilMessage}
	}
	if err := validateBody(m); err != nil {
		return b, err
	}
	enc, err := m.MarshalBinary()
	if err != nil {
		return b, &EncodeError{Section: SectionBody, Err: err}
	}
	// Сообщение без секций кодируется в пустой, но не nil буфер.
	if b == nil {
		b = make([]byte, 0, len(enc))
	}
	return append(b, enc...), nil
}

// AppendPrefix encodes every section that precedes the body.
func AppendPrefix(b []byte, m *amqp.Message) ([]byte, error) {
	prefix := &amqp.Message{
		Header:                m.Header,
		DeliveryAnnotations:   m.DeliveryAnnotations,
		Annotations:           m.Annotations,
		Properties:            m.Properties,
		ApplicationProperties: m.ApplicationProperties,
	}
	enc, err := prefix.MarshalBinary()
	if err != nil {
		return b, &EncodeError{Section: SectionApplicationProperties, Err: err}
	}
	return append(b, enc...), nil
}

func AppendHeader(b []byte, h *amqp.MessageHeader) ([]byte, error) {
	enc, err := (&amqp.Message{Header: h}).MarshalBinary()
	if err != nil {
		return b, &EncodeError{Section: SectionHeader, Err: err}
	}
	return append(b, enc...), nil
}

// DecodeHeader decodes a buffer holding only a header section.
func DecodeHeader(b []byte) (*amqp.MessageHeader, error) {
	m := new(amqp.Message)
	if err := m.UnmarshalBinary(b); err != nil {
		return nil, &DecodeError{Offset: -1, Err: err}
	}
	if m.Header == nil {
		return nil, &DecodeError{Offset: 0, Err: errors.New("buffer has no header section")}
	}
	return m.Header, nil
}

var errMixedBody = errors.New("message carries more than one kind of body section")

func validateBody(m *amqp.Message) error {
	kinds := 0
	if len(m.Data) > 0 {
		kinds++
	}
	if len(m.Sequence) > 0 {
		kinds++
	}
	if m.Value != nil {
		kinds++
	}
	if kinds > 1 {
		return &EncodeError{Section: SectionBody, Err: errMixedBody}
	}
	return nil
}
