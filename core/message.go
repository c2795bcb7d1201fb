package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/ozontech/amqpconv/consts"
)

// Message is the broker-native, protocol independent message.
type Message struct {
	ID uuid.UUID

	MessageID     string
	CorrelationID string
	UserID        []byte

	Address         string
	ReplyTo         string
	Subject         string
	GroupID         string
	GroupSequence   uint32
	ContentType     string
	ContentEncoding string

	Durable   bool
	Priority  uint8
	Timestamp time.Time

	// TTL is the header time-to-live as received. Expiration is derived from
	// it at conversion time unless an absolute expiry was carried, which then
	// sets AbsoluteExpiry.
	TTL            time.Duration
	Expiration     time.Time
	AbsoluteExpiry bool

	Body        Body
	Properties  *Properties
	Annotations *Properties
}

func NewMessage(kind BodyKind) *Message {
	return &Message{
		ID:          uuid.New(),
		Priority:    consts.DefaultPriority,
		Body:        Body{Kind: kind},
		Properties:  NewProperties(),
		Annotations: NewProperties(),
	}
}

// Clone returns a deep copy, so that fan-out paths never share mutable state.
func (m *Message) Clone() *Message {
	c := *m
	if m.UserID != nil {
		c.UserID = append([]byte(nil), m.UserID...)
	}
	c.Body = m.Body.clone()
	c.Properties = m.Properties.Clone()
	c.Annotations = m.Annotations.Clone()
	return &c
}

func (m *Message) SetText(s string) {
	m.Body = Body{Kind: BodyText, Encoding: EncodingValueString, Payload: []byte(s)}
}

func (m *Message) SetBytes(b []byte) {
	m.Body = Body{Kind: BodyBytes, Encoding: EncodingData, Payload: b}
}

func (m *Message) SetMap(v map[string]any) error {
	b, err := EncodeMap(v)
	if err != nil {
		return err
	}
	m.Body = Body{Kind: BodyMap, Encoding: EncodingValueMap, Payload: b}
	return nil
}

func (m *Message) SetList(v []any) error {
	b, err := EncodeList(v)
	if err != nil {
		return err
	}
	m.Body = Body{Kind: BodyList, Encoding: EncodingSequence, Payload: b}
	return nil
}

// SetValue stores a scalar body. A nil value clears the body.
func (m *Message) SetValue(v any) error {
	if v == nil {
		m.Body = Body{Kind: BodyValue, Encoding: EncodingNone}
		return nil
	}
	b, err := EncodeValue(v)
	if err != nil {
		return err
	}
	m.Body = Body{Kind: BodyValue, Encoding: EncodingValueOther, Payload: b}
	return nil
}
