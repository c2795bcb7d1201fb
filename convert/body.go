package convert

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/Azure/go-amqp"

	"github.com/ozontech/amqpconv/core"
)

var errInvalidText = errors.New("amqp-value string is not valid UTF-8")

// bodyToCore selects the canonical body kind from the AMQP body section shape.
// Several data sections are joined into one payload, several sequence
// sections into one list.
func bodyToCore(m *amqp.Message) (core.Body, error) {
	switch {
	case len(m.Data) > 0:
		n := 0
		for _, d := range m.Data {
			n += len(d)
		}
		payload := make([]byte, 0, n)
		for _, d := range m.Data {
			payload = append(payload, d...)
		}
		return core.Body{Kind: core.BodyBytes, Encoding: core.EncodingData, Payload: payload}, nil

	case len(m.Sequence) > 0:
		var items []any
		for _, seq := range m.Sequence {
			for _, item := range seq {
				v, err := bodyValueFromAMQP(item)
				if err != nil {
					return core.Body{}, fmt.Errorf("amqp-sequence item %d: %w", len(items), err)
				}
				items = append(items, v)
			}
		}
		payload, err := core.EncodeList(items)
		if err != nil {
			return core.Body{}, err
		}
		return core.Body{Kind: core.BodyList, Encoding: core.EncodingSequence, Payload: payload}, nil

	case m.Value == nil:
		return core.Body{Kind: core.BodyValue, Encoding: core.EncodingNone}, nil
	}
	return valueBodyToCore(m.Value)
}

func valueBodyToCore(v any) (core.Body, error) {
	if s, ok := asString(v); ok {
		if !utf8.ValidString(s) {
			return core.Body{}, errInvalidText
		}
		return core.Body{Kind: core.BodyText, Encoding: core.EncodingValueString, Payload: []byte(s)}, nil
	}
	if b, ok := v.([]byte); ok {
		payload := make([]byte, len(b))
		copy(payload, b)
		return core.Body{Kind: core.BodyBytes, Encoding: core.EncodingValueBinary, Payload: payload}, nil
	}

	cv, err := bodyValueFromAMQP(v)
	if err != nil {
		return core.Body{}, fmt.Errorf("amqp-value: %w", err)
	}
	switch cv := cv.(type) {
	case map[string]any:
		payload, err := core.EncodeMap(cv)
		if err != nil {
			return core.Body{}, err
		}
		return core.Body{Kind: core.BodyMap, Encoding: core.EncodingValueMap, Payload: payload}, nil
	case []any:
		payload, err := core.EncodeList(cv)
		if err != nil {
			return core.Body{}, err
		}
		return core.Body{Kind: core.BodyList, Encoding: core.EncodingValueList, Payload: payload}, nil
	}

	payload, err := core.EncodeValue(cv)
	if err != nil {
		return core.Body{}, err
	}
	return core.Body{Kind: core.BodyValue, Encoding: core.EncodingValueOther, Payload: payload}, nil
}

// bodyFromCore is the mirror of bodyToCore. The recorded encoding decides
// between the section shapes a kind can come from.
func bodyFromCore(b core.Body, m *amqp.Message) error {
	switch b.Kind {
	case core.BodyBytes:
		payload := b.Payload
		if payload == nil {
			payload = []byte{}
		}
		if b.Encoding == core.EncodingValueBinary {
			m.Value = payload
		} else {
			m.Data = [][]byte{payload}
		}
		return nil

	case core.BodyText:
		if !utf8.Valid(b.Payload) {
			return errInvalidText
		}
		m.Value = string(b.Payload)
		return nil

	case core.BodyMap:
		v, err := core.DecodeMap(b.Payload)
		if err != nil {
			return err
		}
		m.Value = v
		return nil

	case core.BodyList:
		v, err := core.DecodeList(b.Payload)
		if err != nil {
			return err
		}
		if b.Encoding == core.EncodingValueList {
			m.Value = v
		} else {
			m.Sequence = [][]any{v}
		}
		return nil

	case core.BodyValue:
		if b.Encoding == core.EncodingNone {
			return nil
		}
		v, err := core.DecodeValue(b.Payload)
		if err != nil {
			return err
		}
		m.Value = v
		return nil
	}
	return fmt.Errorf("unknown body kind %s", b.Kind)
}
