package message

import (
	"github.com/Azure/go-amqp"
	"go.uber.org/zap"

	"github.com/ozontech/amqpconv/codec"
	"github.com/ozontech/amqpconv/consts"
)

// WriteMode tells how AppendWire produced its output.
type WriteMode uint8

const (
	// WriteVerbatim: the cached buffer was copied as is.
	WriteVerbatim WriteMode = iota
	// WritePatched: the copy had its delivery-count bytes overwritten.
	WritePatched
	// WriteReencoded: the header section was encoded anew because the
	// existing delivery-count encoding was too narrow or missing.
	WriteReencoded
)

func (m WriteMode) String() string {
	switch m {
	case WriteVerbatim:
		return "verbatim"
	case WritePatched:
		return "patched"
	case WriteReencoded:
		return "reencoded"
	}
	return "unknown"
}

// Reencode brings the buffer in line with the structured form. It is a no-op
// for a clean message. When only metadata sections changed, the body and
// footer bytes are carried over untouched. On failure the previous buffer
// stays available through LastEncoded and the message stays dirty.
func (m *Message) Reencode() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reencode()
}

func (m *Message) reencode() error {
	if m.err != nil {
		return m.err
	}
	if m.dirty == 0 {
		return nil
	}
	if err := m.ensureParsed(); err != nil {
		return err
	}

	var (
		out []byte
		err error
	)
	splice := m.buf != nil && !m.dirty.has(codec.SectionBody) && !m.dirty.has(codec.SectionFooter)
	if splice {
		if err = m.ensureScanned(); err != nil {
			return err
		}
		out, err = codec.AppendPrefix(make([]byte, 0, len(m.buf)), m.parsed)
		if err == nil {
			out = append(out, m.buf[m.tailStart():]...)
		}
	} else {
		out, err = codec.MarshalAppend(make([]byte, 0, len(m.buf)), m.parsed)
	}
	if err != nil {
		m.conf.log.Warn("reencode failed, keeping last good buffer",
			zap.Error(err),
			zap.Int("last_good_size", len(m.buf)),
		)
		return err
	}

	layout, err := codec.Scan(out)
	if err != nil {
		return &codec.EncodeError{Section: codec.SectionBody, Err: err}
	}
	m.conf.log.Debug("message reencoded",
		zap.Bool("splice", splice),
		zap.Int("size", len(out)),
	)
	m.buf = out
	m.layout = layout
	m.scanned = true
	m.dirty = 0
	return nil
}

// tailStart is where the first section kept verbatim by a prefix reencode begins.
func (m *Message) tailStart() int {
	for _, s := range [...]codec.Section{codec.SectionBody, codec.SectionFooter} {
		if m.layout.Has(s) {
			return m.layout.Span(s).Start
		}
	}
	return len(m.buf)
}

// Bytes returns the clean encoding, reencoding first if needed.
// The result is shared and must not be modified.
func (m *Message) Bytes() ([]byte, error) {
	m.mu.RLock()
	if m.dirty == 0 && m.buf != nil {
		b := m.buf
		m.mu.RUnlock()
		return b, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.reencode(); err != nil {
		return nil, err
	}
	return m.buf, nil
}

// LastEncoded returns the most recent good buffer, which may be stale.
func (m *Message) LastEncoded() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buf
}

// DeliveryCount returns the delivery-count the message would carry if sent now.
func (m *Message) DeliveryCount() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirty.has(codec.SectionHeader) || m.buf == nil {
		if err := m.ensureParsed(); err != nil {
			return 0, err
		}
		if m.parsed.Header == nil {
			return 0, nil
		}
		return m.parsed.Header.DeliveryCount, nil
	}
	if err := m.ensureScanned(); err != nil {
		return 0, err
	}
	if f, ok := m.layout.Count(m.buf); ok {
		return f.Value(), nil
	}
	return 0, nil
}

// WriteWire stores the encoded message carrying delivery-count n into dst,
// reusing its capacity.
func (m *Message) WriteWire(dst []byte, n uint32) ([]byte, error) {
	b, _, err := m.AppendWire(dst[:0], n)
	return b, err
}

// AppendWire appends the encoded message carrying delivery-count n to dst.
// A clean message is served under the read lock: the cached buffer is copied
// and, when the count differs, only the copy is patched.
func (m *Message) AppendWire(dst []byte, n uint32) ([]byte, WriteMode, error) {
	m.mu.RLock()
	if m.dirty == 0 && m.scanned && m.err == nil {
		defer m.mu.RUnlock()
		return m.appendWire(dst, n)
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.reencode(); err != nil {
		return dst, WriteVerbatim, err
	}
	if err := m.ensureScanned(); err != nil {
		return dst, WriteVerbatim, err
	}
	return m.appendWire(dst, n)
}

// appendWire reads only m.buf and m.layout, both immutable while clean.
func (m *Message) appendWire(dst []byte, n uint32) ([]byte, WriteMode, error) {
	field, ok := m.layout.Count(m.buf)
	switch {
	case ok && field.Value() == n, !ok && n == 0:
		return append(dst, m.buf...), WriteVerbatim, nil
	case ok && field.Fits(n):
		start := len(dst)
		dst = append(dst, m.buf...)
		codec.CountField(dst[start+m.layout.CountOffset:]).Set(n)
		return dst, WritePatched, nil
	}

	// заголовок перекодируется отдельно, остальные секции копируются как есть
	var h *amqp.MessageHeader
	span := m.layout.Span(codec.SectionHeader)
	if span.Present() {
		var err error
		if h, err = codec.DecodeHeader(m.buf[span.Start:span.End]); err != nil {
			return dst, WriteReencoded, err
		}
	} else {
		h = &amqp.MessageHeader{Priority: consts.DefaultPriority}
	}
	h.DeliveryCount = n

	dst, err := codec.AppendHeader(dst, h)
	if err != nil {
		return dst, WriteReencoded, err
	}
	return append(dst, m.buf[span.End:]...), WriteReencoded, nil
}
