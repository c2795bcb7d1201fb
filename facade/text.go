package facade

import (
	"github.com/ozontech/amqpconv/core"
)

// TextMessage holds a whole-string body. A received message must be decoded
// explicitly before Text is available.
type TextMessage struct {
	base
	text    string
	decoded bool
}

func NewTextMessage(text string) *TextMessage {
	m := core.NewMessage(core.BodyText)
	m.SetText(text)
	return &TextMessage{base: base{msg: m}, text: text, decoded: true}
}

func (m *TextMessage) Kind() Kind { return KindText }

func (m *TextMessage) Decode() error {
	if !m.decoded {
		m.text = string(m.msg.Body.Payload)
		m.decoded = true
	}
	return nil
}

func (m *TextMessage) Text() (string, error) {
	if !m.decoded {
		return "", &UnreadyStateError{Kind: KindText, Op: "Text"}
	}
	return m.text, nil
}

// SetText replaces the body. It does not need a prior Decode.
func (m *TextMessage) SetText(text string) {
	m.msg.SetText(text)
	m.text = text
	m.decoded = true
}

func (m *TextMessage) ClearBody() { m.SetText("") }
