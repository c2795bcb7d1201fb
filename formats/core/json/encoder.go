// Package json пишет core сообщения как JSON, по объекту на строку.
// Формат только выходной: он предназначен для чтения человеком и jq.
package json

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/mailru/easyjson/jwriter"

	"github.com/ozontech/amqpconv/core"
	"github.com/ozontech/amqpconv/formats/model"
)

const Name = "core.json"

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (*Encoder) MarshalAppend(b []byte, e *model.Envelope) ([]byte, error) {
	cm, err := e.Canonical()
	if err != nil {
		return b, err
	}

	w := jwriter.Writer{NoEscapeHTML: true}
	if err = writeMessage(&w, cm); err != nil {
		return b, err
	}
	out, err := w.BuildBytes()
	if err != nil {
		return b, fmt.Errorf("build json: %w", err)
	}
	return append(b, out...), nil
}

func writeMessage(w *jwriter.Writer, m *core.Message) error {
	w.RawString(`{"id":`)
	w.String(m.ID.String())
	optString(w, "message_id", m.MessageID)
	optString(w, "correlation_id", m.CorrelationID)
	if m.UserID != nil {
		w.RawString(`,"user_id":`)
		w.Base64Bytes(m.UserID)
	}
	optString(w, "address", m.Address)
	optString(w, "reply_to", m.ReplyTo)
	optString(w, "subject", m.Subject)
	optString(w, "group_id", m.GroupID)
	if m.GroupSequence != 0 {
		w.RawString(`,"group_sequence":`)
		w.Uint32(m.GroupSequence)
	}
	optString(w, "content_type", m.ContentType)
	optString(w, "content_encoding", m.ContentEncoding)
	w.RawString(`,"durable":`)
	w.Bool(m.Durable)
	w.RawString(`,"priority":`)
	w.Uint8(m.Priority)
	if m.TTL > 0 {
		w.RawString(`,"ttl":`)
		w.Int64(m.TTL.Milliseconds())
	}
	optTime(w, "expiration", m.Expiration)
	if m.AbsoluteExpiry {
		w.RawString(`,"absolute_expiry":true`)
	}
	optTime(w, "timestamp", m.Timestamp)

	if err := writeBody(w, m.Body); err != nil {
		return err
	}
	writeProperties(w, "properties", m.Properties)
	writeProperties(w, "annotations", m.Annotations)
	w.RawByte('}')
	return w.Error
}

func optString(w *jwriter.Writer, name, v string) {
	if v == "" {
		return
	}
	w.RawString(`,"` + name + `":`)
	w.String(v)
}

// время пишется в миллисекундах unix, как в AMQP timestamp
func optTime(w *jwriter.Writer, name string, t time.Time) {
	if t.IsZero() {
		return
	}
	w.RawString(`,"` + name + `":`)
	w.Int64(t.UnixMilli())
}

func writeBody(w *jwriter.Writer, b core.Body) error {
	w.RawString(`,"body":{"kind":`)
	w.String(b.Kind.String())
	w.RawString(`,"encoding":`)
	w.String(b.Encoding.String())

	var (
		v   any
		err error
	)
	switch b.Kind {
	case core.BodyBytes:
		w.RawString(`,"payload":`)
		w.Base64Bytes(b.Payload)
		w.RawByte('}')
		return nil
	case core.BodyText:
		v = string(b.Payload)
	case core.BodyMap:
		v, err = core.DecodeMap(b.Payload)
	case core.BodyList:
		v, err = core.DecodeList(b.Payload)
	case core.BodyValue:
		v, err = core.DecodeValue(b.Payload)
	}
	if err != nil {
		return fmt.Errorf("decode %s body: %w", b.Kind, err)
	}
	w.RawString(`,"value":`)
	writeValue(w, v)
	w.RawByte('}')
	return nil
}

func writeProperties(w *jwriter.Writer, name string, p *core.Properties) {
	if p.Len() == 0 {
		return
	}
	w.RawString(`,"` + name + `":[`)
	first := true
	p.Range(func(n string, v any) bool {
		if !first {
			w.RawByte(',')
		}
		first = false
		w.RawString(`{"n":`)
		w.String(n)
		w.RawString(`,"t":`)
		w.String(core.TypeOf(v).String())
		w.RawString(`,"v":`)
		writeValue(w, v)
		w.RawByte('}')
		return true
	})
	w.RawByte(']')
}

// nonFinite пишет NaN и бесконечности строками: в JSON для них нет чисел.
func nonFinite(w *jwriter.Writer, f float64) bool {
	switch {
	case math.IsNaN(f):
		w.String("NaN")
	case math.IsInf(f, 1):
		w.String("+Inf")
	case math.IsInf(f, -1):
		w.String("-Inf")
	default:
		return false
	}
	return true
}

func writeValue(w *jwriter.Writer, v any) {
	switch v := v.(type) {
	case nil:
		w.RawString("null")
	case bool:
		w.Bool(v)
	case int8:
		w.Int8(v)
	case int16:
		w.Int16(v)
	case int32:
		w.Int32(v)
	case int64:
		w.Int64(v)
	case uint8:
		w.Uint8(v)
	case uint16:
		w.Uint16(v)
	case uint32:
		w.Uint32(v)
	case uint64:
		w.Uint64(v)
	case float32:
		if nonFinite(w, float64(v)) {
			return
		}
		w.Float32(v)
	case float64:
		if nonFinite(w, v) {
			return
		}
		w.Float64(v)
	case string:
		w.String(v)
	case []byte:
		w.Base64Bytes(v)
	case time.Time:
		w.Int64(v.UnixMilli())
	case []any:
		w.RawByte('[')
		for i, item := range v {
			if i > 0 {
				w.RawByte(',')
			}
			writeValue(w, item)
		}
		w.RawByte(']')
	case map[string]any:
		w.RawByte('{')
		for i, k := range sortedKeys(v) {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(k)
			w.RawByte(':')
			writeValue(w, v[k])
		}
		w.RawByte('}')
	default:
		w.String(fmt.Sprint(v))
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WriteNext(p []byte) error {
	_, err := w.w.Write(append(p, '\n'))
	return err
}

func NewOutput(w io.Writer) *model.OutputFormat {
	return &model.OutputFormat{
		Writer:  NewWriter(w),
		Encoder: NewEncoder(),
	}
}
