package convert

import (
	"errors"
	"testing"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozontech/amqpconv/codec"
	"github.com/ozontech/amqpconv/consts"
	"github.com/ozontech/amqpconv/core"
)

// decodeWire builds a message from hand encoded sections. Symbols can only
// be produced this way: go-amqp keeps its symbol type internal.
func decodeWire(t *testing.T, b ...byte) *amqp.Message {
	t.Helper()
	m, err := codec.Decode(b, 0)
	require.NoError(t, err)
	return m
}

func TestBodyKindDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msg      *amqp.Message
		wire     []byte
		kind     core.BodyKind
		encoding core.OriginalEncoding
	}{
		{"data", &amqp.Message{Data: [][]byte{[]byte("raw")}}, nil, core.BodyBytes, core.EncodingData},
		{"value map", &amqp.Message{Value: map[string]any{"k": int32(1)}}, nil, core.BodyMap, core.EncodingValueMap},
		{"value map with symbol keys", nil, []byte{0x00, 0x53, 0x77, 0xc1, 0x05, 0x02, 0xa3, 0x01, 'k', 0x41}, core.BodyMap, core.EncodingValueMap},
		{"sequence", &amqp.Message{Sequence: [][]any{{int32(1), "two"}}}, nil, core.BodyList, core.EncodingSequence},
		{"value list", &amqp.Message{Value: []any{int64(1)}}, nil, core.BodyList, core.EncodingValueList},
		{"value string", &amqp.Message{Value: "someText"}, nil, core.BodyText, core.EncodingValueString},
		{"value symbol", nil, []byte{0x00, 0x53, 0x77, 0xa3, 0x03, 's', 'y', 'm'}, core.BodyText, core.EncodingValueString},
		{"value bool", &amqp.Message{Value: true}, nil, core.BodyValue, core.EncodingValueOther},
		{"value long", &amqp.Message{Value: int64(42)}, nil, core.BodyValue, core.EncodingValueOther},
		{"value binary", &amqp.Message{Value: []byte{1, 2}}, nil, core.BodyBytes, core.EncodingValueBinary},
		{"no body", &amqp.Message{}, nil, core.BodyValue, core.EncodingNone},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			msg := tc.msg
			if tc.wire != nil {
				msg = decodeWire(t, tc.wire...)
			}
			for _, props := range []map[string]any{nil, {"x": "y"}, {"a": true, "b": int64(2)}} {
				msg.ApplicationProperties = props
				cm, err := ToCore(msg)
				if !a.NoError(err) {
					return
				}
				a.Equal(tc.kind, cm.Body.Kind)
				a.Equal(tc.encoding, cm.Body.Encoding)
			}
		})
	}
}

func TestBodyRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *amqp.Message
	}{
		{"data", &amqp.Message{Data: [][]byte{[]byte("payload")}}},
		{"empty data", &amqp.Message{Data: [][]byte{{}}}},
		{"value map", &amqp.Message{Value: map[string]any{"i": int32(7), "s": "x", "b": false, "n": nil}}},
		{"sequence", &amqp.Message{Sequence: [][]any{{int8(1), int16(2), uint32(3), 4.5, "six"}}}},
		{"value list", &amqp.Message{Value: []any{"a", []any{"nested"}}}},
		{"value string", &amqp.Message{Value: "someText"}},
		{"value double", &amqp.Message{Value: 3.25}},
		{"value binary", &amqp.Message{Value: []byte{0xca, 0xfe}}},
		{"no body", &amqp.Message{}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			cm, err := ToCore(tc.msg)
			r.NoError(err)
			back, err := FromCore(cm)
			r.NoError(err)

			r.Equal(tc.msg.Data, back.Data)
			r.Equal(tc.msg.Sequence, back.Sequence)
			r.Equal(tc.msg.Value, back.Value)

			again, err := ToCore(back)
			r.NoError(err)
			r.Equal(cm.Body, again.Body)
		})
	}
}

func TestMultipleBodySectionsAreJoined(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	cm, err := ToCore(&amqp.Message{Data: [][]byte{[]byte("ab"), []byte("cd")}})
	a.NoError(err)
	a.Equal([]byte("abcd"), cm.Body.Payload)

	cm, err = ToCore(&amqp.Message{Sequence: [][]any{{"a"}, {"b", "c"}}})
	a.NoError(err)
	l, err := core.DecodeList(cm.Body.Payload)
	a.NoError(err)
	a.Equal([]any{"a", "b", "c"}, l)
}

func TestInvalidTextIsDecodeError(t *testing.T) {
	t.Parallel()

	_, err := ToCore(&amqp.Message{Value: string([]byte{0xff, 0xfe})})
	var de *codec.DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestPropertyFidelity(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	src := &amqp.Message{
		Value: "someText",
		ApplicationProperties: map[string]any{
			"true":  true,
			"false": false,
			"foo":   "bar",
			"empty": "",
			"null":  nil,
		},
	}
	cm, err := ToCore(src)
	a.NoError(err)

	v, err := cm.Properties.Bool("false")
	a.NoError(err)
	a.False(v)
	a.True(cm.Properties.Has("false"))
	v, err = cm.Properties.Bool("true")
	a.NoError(err)
	a.True(v)
	s, err := cm.Properties.String("foo")
	a.NoError(err)
	a.Equal("bar", s)
	s, err = cm.Properties.String("empty")
	a.NoError(err)
	a.Equal("", s)
	a.True(cm.Properties.Has("null"))
	_, err = cm.Properties.Bool("absent")
	a.ErrorIs(err, core.ErrNotFound)

	// names are sorted when the map is copied into the ordered bag
	a.Equal([]string{"empty", "false", "foo", "null", "true"}, cm.Properties.Names())

	back, err := FromCore(cm)
	a.NoError(err)
	a.Equal(src.ApplicationProperties, back.ApplicationProperties)
}

func TestAddPropertyAddsExactlyOneEntry(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	src := &amqp.Message{
		Data:                  [][]byte{[]byte("body")},
		ApplicationProperties: map[string]any{"a": int32(1), "b": "two"},
	}
	cm, err := ToCore(src)
	a.NoError(err)
	a.NoError(cm.Properties.Set("c", true))

	back, err := FromCore(cm)
	a.NoError(err)
	a.Equal(map[string]any{"a": int32(1), "b": "two", "c": true}, back.ApplicationProperties)
	a.Equal(src.Data, back.Data)
}

func TestUnsignedPropertiesWiden(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	cm, err := ToCore(&amqp.Message{ApplicationProperties: map[string]any{
		"ubyte":  uint8(200),
		"ushort": uint16(60000),
		"uint":   uint32(4000000000),
		"ulong":  uint64(1 << 40),
		"ts":     time.UnixMilli(1700000000000),
	}})
	a.NoError(err)

	v, _ := cm.Properties.Get("ubyte")
	a.Equal(int16(200), v)
	v, _ = cm.Properties.Get("ushort")
	a.Equal(int32(60000), v)
	v, _ = cm.Properties.Get("uint")
	a.Equal(int64(4000000000), v)
	v, _ = cm.Properties.Get("ulong")
	a.Equal(int64(1<<40), v)
	v, _ = cm.Properties.Get("ts")
	a.Equal(int64(1700000000000), v)
}

func TestSymbolsComeBackAsStrings(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	for _, wire := range [][]byte{
		{0x00, 0x53, 0x77, 0xa3, 0x03, 's', 'y', 'm'},
		{0x00, 0x53, 0x77, 0xc1, 0x05, 0x02, 0xa3, 0x01, 'k', 0x41},
	} {
		cm, err := ToCore(decodeWire(t, wire...))
		a.NoError(err)
		back, err := FromCore(cm)
		a.NoError(err)
		b, err := codec.Encode(back)
		a.NoError(err)
		// str8 и symbol отличаются только кодом конструктора
		a.NotContains(b, byte(0xa3))
	}
}

func TestSymbolPropertyIsText(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	// application-properties {"sym": symbol "s"}
	src := decodeWire(t, 0x00, 0x53, 0x74, 0xc1, 0x09, 0x02,
		0xa1, 0x03, 's', 'y', 'm',
		0xa3, 0x01, 's',
	)
	cm, err := ToCore(src)
	a.NoError(err)
	v, ok := cm.Properties.Get("sym")
	a.True(ok)
	a.Equal("s", v)
}

func TestBadPropertiesAreReportedTogether(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	_, err := ToCore(&amqp.Message{ApplicationProperties: map[string]any{
		"overflow": uint64(1 << 63),
		"list":     []any{1},
		"fine":     "ok",
	}})
	var de *codec.DecodeError
	a.ErrorAs(err, &de)
	a.ErrorIs(err, core.ErrUnsupportedType)
	a.Contains(err.Error(), `"overflow"`)
	a.Contains(err.Error(), `"list"`)
}

func TestAnnotationsStaySeparate(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	// message-annotations {symbol "x-opt-origin": "q1", 7: "seven"}
	// application-properties {"app": "v"}
	src := decodeWire(t,
		0x00, 0x53, 0x72, 0xc1, 0x1c, 0x04,
		0xa3, 0x0c, 'x', '-', 'o', 'p', 't', '-', 'o', 'r', 'i', 'g', 'i', 'n',
		0xa1, 0x02, 'q', '1',
		0x55, 0x07,
		0xa1, 0x05, 's', 'e', 'v', 'e', 'n',
		0x00, 0x53, 0x74, 0xc1, 0x09, 0x02,
		0xa1, 0x03, 'a', 'p', 'p',
		0xa1, 0x01, 'v',
	)
	cm, err := ToCore(src)
	a.NoError(err)
	a.Equal([]string{"7", "x-opt-origin"}, cm.Annotations.Names())
	a.Equal([]string{"app"}, cm.Properties.Names())

	back, err := FromCore(cm)
	a.NoError(err)
	a.Equal(amqp.Annotations{"7": "seven", "x-opt-origin": "q1"}, back.Annotations)
	a.Equal(map[string]any{"app": "v"}, back.ApplicationProperties)
}

func TestHeaderAndProperties(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	now := time.UnixMilli(1700000000000)
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	conv := NewConverter(
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() uuid.UUID { return id }),
		WithNameCache(16),
	)

	to, reply, subject, ct := "queue://orders", "queue://replies", "created", "application/json"
	created := now.Add(-time.Minute)
	src := &amqp.Message{
		Header: &amqp.MessageHeader{Durable: true, Priority: 7, TTL: 30 * time.Second},
		Properties: &amqp.MessageProperties{
			MessageID:     uint64(42),
			CorrelationID: "corr",
			To:            &to,
			ReplyTo:       &reply,
			Subject:       &subject,
			ContentType:   &ct,
			CreationTime:  &created,
			UserID:        []byte("user"),
		},
		Value: "body",
	}
	cm, err := conv.ToCore(src)
	a.NoError(err)
	a.Equal(id, cm.ID)
	a.True(cm.Durable)
	a.Equal(uint8(7), cm.Priority)
	a.Equal(30*time.Second, cm.TTL)
	a.Equal(now.Add(30*time.Second), cm.Expiration)
	a.False(cm.AbsoluteExpiry)
	a.Equal("ID:AMQP_ULONG:42", cm.MessageID)
	a.Equal("ID:AMQP_NO_PREFIX:corr", cm.CorrelationID)
	a.Equal(to, cm.Address)
	a.Equal(reply, cm.ReplyTo)
	a.Equal(subject, cm.Subject)
	a.Equal(ct, cm.ContentType)
	a.Equal(created, cm.Timestamp)
	a.Equal([]byte("user"), cm.UserID)

	back, err := conv.FromCore(cm)
	a.NoError(err)
	a.Equal(uint64(42), back.Properties.MessageID)
	a.Equal("corr", back.Properties.CorrelationID)
	a.Equal(to, *back.Properties.To)
	a.Equal(30*time.Second, back.Header.TTL)
	a.Nil(back.Properties.AbsoluteExpiryTime)
}

func TestDefaultsProduceNoHeaderOrProperties(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	cm, err := ToCore(&amqp.Message{Value: "x"})
	a.NoError(err)
	a.Equal(consts.DefaultPriority, cm.Priority)

	back, err := FromCore(cm)
	a.NoError(err)
	a.Nil(back.Header)
	a.Nil(back.Properties)
	a.Nil(back.ApplicationProperties)
	a.Nil(back.Annotations)
}

func TestAbsoluteExpiryWinsOverTTL(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	abs := time.UnixMilli(1800000000000)
	cm, err := ToCore(&amqp.Message{
		Header:     &amqp.MessageHeader{TTL: time.Second},
		Properties: &amqp.MessageProperties{AbsoluteExpiryTime: &abs},
	})
	a.NoError(err)
	a.Equal(abs, cm.Expiration)
	a.True(cm.AbsoluteExpiry)

	back, err := FromCore(cm)
	a.NoError(err)
	a.Equal(time.Second, back.Header.TTL)
	if a.NotNil(back.Properties) && a.NotNil(back.Properties.AbsoluteExpiryTime) {
		a.Equal(abs, *back.Properties.AbsoluteExpiryTime)
	}
}

func TestTTLSurvivesRoundTrip(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	// каждый вызов часов сдвигает время, пересчёт ttl это бы заметил
	now := time.UnixMilli(1700000000000)
	conv := NewConverter(WithClock(func() time.Time {
		now = now.Add(1500 * time.Millisecond)
		return now
	}))

	src := &amqp.Message{
		Header: &amqp.MessageHeader{TTL: 10 * time.Second},
		Value:  "x",
	}
	want, err := codec.Encode(src)
	r.NoError(err)

	cm, err := conv.ToCore(src)
	r.NoError(err)
	back, err := conv.FromCore(cm)
	r.NoError(err)
	r.Equal(10*time.Second, back.Header.TTL)
	r.Nil(back.Properties)

	got, err := codec.Encode(back)
	r.NoError(err)
	r.Equal(want, got)
}

func TestLocalExpirationIsAbsolute(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	exp := time.UnixMilli(1800000000000)
	cm := core.NewMessage(core.BodyText)
	cm.SetText("x")
	cm.Expiration = exp

	back, err := FromCore(cm)
	a.NoError(err)
	a.Nil(back.Header)
	if a.NotNil(back.Properties) && a.NotNil(back.Properties.AbsoluteExpiryTime) {
		a.Equal(exp, *back.Properties.AbsoluteExpiryTime)
	}
}

func TestFromCoreBodyErrorIsEncodeError(t *testing.T) {
	t.Parallel()

	cm := core.NewMessage(core.BodyMap)
	cm.Body.Payload = []byte{0xc1} // never used msgpack code
	_, err := FromCore(cm)
	var ee *codec.EncodeError
	if assert.True(t, errors.As(err, &ee)) {
		assert.Equal(t, codec.SectionBody, ee.Section)
	}
}
