package message

import (
	"context"
	"testing"

	"github.com/Azure/go-amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ozontech/amqpconv/codec"
)

func deliveryCountOf(t *testing.T, b []byte) uint32 {
	t.Helper()
	m, err := codec.Decode(b, 0)
	require.NoError(t, err)
	if m.Header == nil {
		return 0
	}
	return m.Header.DeliveryCount
}

func withCount(n uint32) *amqp.Message {
	m := textMessage()
	m.Header = &amqp.MessageHeader{Durable: true, Priority: 4, DeliveryCount: n}
	return m
}

func TestWriteWireModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial uint32
		header  bool
		next    uint32
		mode    WriteMode
	}{
		{"same count", 3, true, 3, WriteVerbatim},
		{"smalluint fits", 3, true, 200, WritePatched},
		{"smalluint too narrow", 3, true, 300, WriteReencoded},
		{"uint fits anything", 70000, true, 5, WritePatched},
		{"zero to zero", 0, true, 0, WriteVerbatim},
		{"count omitted", 0, true, 1, WriteReencoded},
		{"no header zero", 0, false, 0, WriteVerbatim},
		{"no header", 0, false, 2, WriteReencoded},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			src := textMessage()
			if tc.header {
				src = withCount(tc.initial)
			}
			orig := encode(t, src)
			m := FromBytes(append([]byte(nil), orig...), 0)

			out, mode, err := m.AppendWire(nil, tc.next)
			r.NoError(err)
			r.Equal(tc.mode, mode, mode.String())
			r.Equal(tc.next, deliveryCountOf(t, out))
			r.Equal(orig, m.LastEncoded(), "cached buffer must not change")

			origLayout, err := codec.Scan(orig)
			r.NoError(err)
			outLayout, err := codec.Scan(out)
			r.NoError(err)
			h := origLayout.Span(codec.SectionHeader)
			r.Equal(orig[h.End:], out[outLayout.Span(codec.SectionHeader).End:])

			if mode == WritePatched {
				r.Len(out, len(orig))
				diff := 0
				for i := range orig {
					if orig[i] != out[i] {
						diff++
					}
				}
				r.LessOrEqual(diff, 4)
			}

			if tc.header {
				fresh := FromBytes(out, 0)
				hdr, err := fresh.Header()
				r.NoError(err)
				r.True(hdr.Durable)
			}
		})
	}
}

func TestWriteWireReusesDestination(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	m := FromBytes(encode(t, withCount(1)), 0)
	dst := make([]byte, 0, 1024)
	for n := uint32(1); n < 10; n++ {
		var err error
		dst, err = m.WriteWire(dst, n)
		a.NoError(err)
		a.Equal(n, deliveryCountOf(t, dst))
	}
	a.Equal(1024, cap(dst))
}

func TestWriteWireDirtyMessage(t *testing.T) {
	t.Parallel()
	r := require.New(t)

	m := FromBytes(encode(t, withCount(4)), 0)
	r.NoError(m.SetPriority(9))

	out, _, err := m.AppendWire(nil, 5)
	r.NoError(err)
	r.False(m.Dirty())

	fresh, err := codec.Decode(out, 0)
	r.NoError(err)
	r.Equal(uint8(9), fresh.Header.Priority)
	r.Equal(uint32(5), fresh.Header.DeliveryCount)

	n, err := m.DeliveryCount()
	r.NoError(err)
	r.Equal(uint32(4), n, "writing does not change the message itself")
}

func TestDeliveryCount(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	n, err := FromBytes(encode(t, withCount(17)), 0).DeliveryCount()
	a.NoError(err)
	a.Equal(uint32(17), n)

	n, err = FromBytes(encode(t, textMessage()), 0).DeliveryCount()
	a.NoError(err)
	a.Zero(n)

	n, err = New(withCount(3)).DeliveryCount()
	a.NoError(err)
	a.Equal(uint32(3), n)
}

func TestSharedCleanMessage(t *testing.T) {
	t.Parallel()

	m := FromBytes(encode(t, withCount(0)), 0)
	_, err := m.Bytes()
	require.NoError(t, err)
	_, _, err = m.AppendWire(nil, 0)
	require.NoError(t, err)

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < 8; w++ {
		w := w
		g.Go(func() error {
			var dst []byte
			for n := uint32(0); n < 300; n++ {
				var err error
				if dst, _, err = m.AppendWire(dst[:0], n+uint32(w)); err != nil {
					return err
				}
				got, err := codec.Decode(dst, 0)
				if err != nil {
					return err
				}
				if got.Header.DeliveryCount != n+uint32(w) {
					t.Errorf("worker %d: delivery-count %d, want %d", w, got.Header.DeliveryCount, n+uint32(w))
				}
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.False(t, m.Dirty())
}
