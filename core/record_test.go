package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	m := NewMessage(BodyMap)
	m.MessageID = "ID:AMQP_ULONG:7"
	m.Address = "queue://orders"
	m.UserID = []byte("u")
	m.GroupSequence = 3
	m.Durable = true
	m.Priority = 9
	m.TTL = 90 * time.Second
	m.Expiration = time.UnixMilli(1800000000000)
	m.AbsoluteExpiry = true
	m.Timestamp = time.UnixMilli(1700000000000)
	r.NoError(m.SetMap(map[string]any{"n": int32(1), "s": "x"}))
	r.NoError(m.Properties.Set("flag", false))
	r.NoError(m.Properties.Set("count", int16(2)))
	r.NoError(m.Annotations.Set("x-opt-origin", "q"))

	b, err := MarshalAppend([]byte{0xff}, m)
	r.NoError(err)
	r.Equal(byte(0xff), b[0])

	var got Message
	r.NoError(Unmarshal(b[1:], &got))
	r.Equal(m.ID, got.ID)
	r.Equal(m.MessageID, got.MessageID)
	r.Equal(m.Address, got.Address)
	r.Equal(m.UserID, got.UserID)
	r.Equal(m.GroupSequence, got.GroupSequence)
	r.True(got.Durable)
	r.Equal(uint8(9), got.Priority)
	r.True(m.Expiration.Equal(got.Expiration))
	r.Equal(90*time.Second, got.TTL)
	r.True(got.AbsoluteExpiry)
	r.True(m.Timestamp.Equal(got.Timestamp))
	r.Equal(m.Body, got.Body)
	r.Equal([]string{"flag", "count"}, got.Properties.Names())
	v, _ := got.Properties.Get("count")
	r.Equal(int16(2), v)
	s, err := got.Annotations.String("x-opt-origin")
	r.NoError(err)
	r.Equal("q", s)
}

func TestRecordZeroTimes(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	m := NewMessage(BodyValue)
	b, err := Marshal(m)
	a.NoError(err)

	var got Message
	a.NoError(Unmarshal(b, &got))
	a.True(got.Expiration.IsZero())
	a.Zero(got.TTL)
	a.False(got.AbsoluteExpiry)
	a.True(got.Timestamp.IsZero())
	a.Equal(EncodingNone, got.Body.Encoding)
	a.NotEqual(uuid.Nil, got.ID)
}

func TestRecordRejectsGarbage(t *testing.T) {
	t.Parallel()

	var got Message
	assert.Error(t, Unmarshal([]byte{0x92, 0x01, 0x02}, &got))
	assert.ErrorIs(t, Unmarshal(append([]byte{0xdc, 0x00, recordFields}, 0x7f), &got), errRecordVersion)
}

func TestMessageClone(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	m := NewMessage(BodyBytes)
	m.SetBytes([]byte("abc"))
	a.NoError(m.Properties.Set("k", "v"))

	c := m.Clone()
	c.Body.Payload[0] = 'x'
	a.NoError(c.Properties.Set("k", "changed"))

	a.Equal("abc", string(m.Body.Payload))
	s, _ := m.Properties.String("k")
	a.Equal("v", s)
}

func TestBodyHelpers(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	b, err := EncodeMap(map[string]any{"b": int32(2), "a": uint8(1)})
	a.NoError(err)
	again, err := EncodeMap(map[string]any{"a": uint8(1), "b": int32(2)})
	a.NoError(err)
	a.Equal(b, again, "map payloads must be deterministic")

	m, err := DecodeMap(b)
	a.NoError(err)
	a.Equal(map[string]any{"a": uint8(1), "b": int32(2)}, m)

	_, err = DecodeMap([]byte{0x91, 0x01})
	a.Error(err)

	l, err := DecodeList(nil)
	a.NoError(err)
	a.Empty(l)

	v, err := DecodeValue(nil)
	a.NoError(err)
	a.Nil(v)
}
