package codec

import (
	"errors"
	"testing"

	"github.com/Azure/go-amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSections(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	to := "queue://a"
	m := &amqp.Message{
		Header:                &amqp.MessageHeader{Durable: true, DeliveryCount: 9},
		DeliveryAnnotations:   amqp.Annotations{"x-trace": "t"},
		Annotations:           amqp.Annotations{"x-opt-origin": "q"},
		Properties:            &amqp.MessageProperties{To: &to},
		ApplicationProperties: map[string]any{"k": int32(1)},
		Data:                  [][]byte{[]byte("one"), []byte("two")},
		Footer:                amqp.Annotations{"sum": "x"},
	}
	b, err := Encode(m)
	r.NoError(err)

	l, err := Scan(b)
	r.NoError(err)
	r.Equal(len(b), l.Size)

	prev := 0
	for s := SectionHeader; s < sectionCount; s++ {
		r.True(l.Has(s), s.String())
		span := l.Span(s)
		r.Equal(prev, span.Start, "sections must be contiguous at %s", s)
		prev = span.End
	}
	r.Equal(len(b), prev)

	f, ok := l.Count(b)
	r.True(ok)
	r.Equal(uint32(9), f.Value())

	// each section decodes on its own
	h, err := DecodeHeader(b[:l.Span(SectionHeader).End])
	r.NoError(err)
	r.True(h.Durable)
}

func TestScanBodyOnly(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	b, err := Encode(&amqp.Message{Value: "text"})
	a.NoError(err)
	l, err := Scan(b)
	a.NoError(err)
	a.False(l.Has(SectionHeader))
	a.Equal(Span{Start: 0, End: len(b)}, l.Span(SectionBody))
	a.Equal(-1, l.CountOffset)
}

func TestScanErrors(t *testing.T) {
	t.Parallel()

	header := []byte{0x00, 0x53, 0x70, 0x45}
	value := []byte{0x00, 0x53, 0x77, 0xa1, 0x01, 'x'}
	data := []byte{0x00, 0x53, 0x75, 0xa0, 0x01, 'x'}

	tests := []struct {
		name string
		b    []byte
	}{
		{"not described", []byte{0x45}},
		{"unknown descriptor", []byte{0x00, 0x53, 0x10, 0x45}},
		{"truncated string", []byte{0x00, 0x53, 0x77, 0xa1, 0x05, 'x'}},
		{"truncated descriptor", []byte{0x00, 0x80, 0x00}},
		{"header after body", append(append([]byte{}, value...), header...)},
		{"two values", append(append([]byte{}, value...), value...)},
		{"data after value", append(append([]byte{}, value...), data...)},
		{"header is not a list", []byte{0x00, 0x53, 0x70, 0x41}},
		{"bad delivery-count constructor", []byte{0x00, 0x53, 0x70, 0xc0, 0x07, 0x05, 0x40, 0x40, 0x40, 0x40, 0xa1, 0x00}},
		{"unknown constructor", []byte{0x00, 0x53, 0x77, 0x01}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Scan(tc.b)
			var de *DecodeError
			assert.True(t, errors.As(err, &de), "%v", err)
		})
	}
}

func TestScanSymbolicDescriptor(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	sym := "amqp:amqp-value:*"
	b := append([]byte{0x00, 0xa3, byte(len(sym))}, sym...)
	b = append(b, 0xa1, 0x02, 'h', 'i')

	l, err := Scan(b)
	a.NoError(err)
	a.Equal(Span{Start: 0, End: len(b)}, l.Span(SectionBody))
}

func TestMixedBodyIsEncodeError(t *testing.T) {
	t.Parallel()

	_, err := Encode(&amqp.Message{Value: "x", Data: [][]byte{[]byte("y")}})
	var ee *EncodeError
	assert.ErrorAs(t, err, &ee)
	assert.ErrorIs(t, err, errMixedBody)
}
