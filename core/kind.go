package core

import "strconv"

// BodyKind is the shape of a canonical message body.
type BodyKind uint8

const (
	BodyBytes BodyKind = iota
	BodyMap
	BodyList
	BodyText
	BodyValue
)

func (k BodyKind) String() string {
	switch k {
	case BodyBytes:
		return "bytes"
	case BodyMap:
		return "map"
	case BodyList:
		return "list"
	case BodyText:
		return "text"
	case BodyValue:
		return "value"
	}
	return "BodyKind(" + strconv.Itoa(int(k)) + ")"
}

// OriginalEncoding remembers which AMQP body section produced the body,
// so the reverse conversion can restore the same section shape.
type OriginalEncoding uint8

const (
	EncodingNone OriginalEncoding = iota
	EncodingData
	EncodingSequence
	EncodingValueString
	EncodingValueMap
	EncodingValueList
	EncodingValueBinary
	EncodingValueOther
)

func (e OriginalEncoding) String() string {
	switch e {
	case EncodingNone:
		return "none"
	case EncodingData:
		return "data"
	case EncodingSequence:
		return "amqp-sequence"
	case EncodingValueString:
		return "amqp-value/string"
	case EncodingValueMap:
		return "amqp-value/map"
	case EncodingValueList:
		return "amqp-value/list"
	case EncodingValueBinary:
		return "amqp-value/binary"
	case EncodingValueOther:
		return "amqp-value"
	}
	return "OriginalEncoding(" + strconv.Itoa(int(e)) + ")"
}

type Body struct {
	Kind     BodyKind
	Encoding OriginalEncoding
	Payload  []byte
}

func (b Body) clone() Body {
	if b.Payload != nil {
		b.Payload = append([]byte(nil), b.Payload...)
	}
	return b
}
