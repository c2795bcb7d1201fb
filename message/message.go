// Package message holds an AMQP message in two representations at once: the
// encoded wire buffer and the parsed structured form. The buffer is
// authoritative until a mutation marks sections dirty; Reencode brings it
// back in line with the structured form.
//
// A clean Message may be shared read-only between goroutines: Bytes,
// LastEncoded and the WriteWire fast path take only a read lock and never
// write into the cached buffer. Values returned by the section accessors
// belong to the Message; a caller that modifies them in place must call
// MarkChanged afterwards.
package message

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Azure/go-amqp"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ozontech/amqpconv/codec"
	"github.com/ozontech/amqpconv/consts"
	"github.com/ozontech/amqpconv/core"
)

type sectionMask uint8

const maskAll sectionMask = 1<<(codec.SectionFooter+1) - 1

func maskOf(sections ...codec.Section) sectionMask {
	var m sectionMask
	for _, s := range sections {
		m |= 1 << s
	}
	return m
}

func (m sectionMask) has(s codec.Section) bool { return m&(1<<s) != 0 }

var errNoBuffer = &codec.DecodeError{Offset: -1, Err: errors.New("message has neither a buffer nor a structured form")}

type Message struct {
	mu   sync.RWMutex
	conf conf

	format uint32
	buf    []byte

	layout  codec.Layout
	scanned bool
	parsed  *amqp.Message

	dirty sectionMask
	err   error
}

// FromBytes wraps a received buffer. Nothing is parsed until it is needed.
// The Message takes ownership of b; the caller must not modify it afterwards.
func FromBytes(b []byte, format uint32, opts ...Option) *Message {
	if b == nil {
		b = []byte{}
	}
	return &Message{
		conf:   newConf(opts),
		format: format,
		buf:    b,
	}
}

// New wraps a structured message built locally. It has no buffer until the
// first Reencode, Bytes or WriteWire call.
func New(m *amqp.Message, opts ...Option) *Message {
	if m == nil {
		m = new(amqp.Message)
	}
	return &Message{
		conf:   newConf(opts),
		format: m.Format,
		parsed: m,
		dirty:  maskAll,
	}
}

// FromCore converts a canonical message back to AMQP and wraps the result.
// The new Message shares nothing with cm.
func FromCore(cm *core.Message, opts ...Option) (*Message, error) {
	conf := newConf(opts)
	m, err := conf.converter.FromCore(cm)
	if err != nil {
		return nil, err
	}
	w := New(m)
	w.conf = conf
	return w, nil
}

func (m *Message) Format() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.format
}

// Dirty reports whether the buffer lags behind the structured form.
func (m *Message) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirty != 0
}

// Err returns the sticky decode error, if the buffer turned out to be malformed.
func (m *Message) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// ensureScanned and ensureParsed must be called with the write lock held.
// A failure is remembered: a malformed message stays unusable.
func (m *Message) ensureScanned() error {
	if m.err != nil {
		return m.err
	}
	if m.scanned {
		return nil
	}
	if m.buf == nil {
		return errNoBuffer
	}
	layout, err := codec.Scan(m.buf)
	if err != nil {
		m.fail(err)
		return m.err
	}
	m.layout = layout
	m.scanned = true
	return nil
}

func (m *Message) ensureParsed() error {
	if m.err != nil {
		return m.err
	}
	if m.parsed != nil {
		return nil
	}
	if m.buf == nil {
		return errNoBuffer
	}
	parsed, err := codec.Decode(m.buf, m.format)
	if err != nil {
		m.fail(err)
		return m.err
	}
	m.parsed = parsed
	m.conf.log.Debug("message parsed",
		zap.Int("size", len(m.buf)),
		zap.Uint32("format", m.format),
	)
	return nil
}

func (m *Message) fail(err error) {
	var de *codec.DecodeError
	if !errors.As(err, &de) {
		err = &codec.DecodeError{Offset: -1, Err: err}
	}
	m.err = err
	m.conf.log.Warn("malformed message", zap.Error(err), zap.Int("size", len(m.buf)))
}

// structured runs fn over the parsed form under the write lock.
func (m *Message) structured(fn func(*amqp.Message) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureParsed(); err != nil {
		return err
	}
	return fn(m.parsed)
}

// Section returns the parsed content of one section: *amqp.MessageHeader,
// amqp.Annotations, *amqp.MessageProperties or map[string]any for the
// metadata sections, and [][]byte, [][]any or the amqp-value for the body.
// Absent sections yield nil.
func (m *Message) Section(s codec.Section) (any, error) {
	var v any
	err := m.structured(func(p *amqp.Message) error {
		switch s {
		case codec.SectionHeader:
			if p.Header != nil {
				v = p.Header
			}
		case codec.SectionDeliveryAnnotations:
			if p.DeliveryAnnotations != nil {
				v = p.DeliveryAnnotations
			}
		case codec.SectionMessageAnnotations:
			if p.Annotations != nil {
				v = p.Annotations
			}
		case codec.SectionProperties:
			if p.Properties != nil {
				v = p.Properties
			}
		case codec.SectionApplicationProperties:
			if p.ApplicationProperties != nil {
				v = p.ApplicationProperties
			}
		case codec.SectionBody:
			switch {
			case len(p.Data) > 0:
				v = p.Data
			case len(p.Sequence) > 0:
				v = p.Sequence
			default:
				v = p.Value
			}
		case codec.SectionFooter:
			if p.Footer != nil {
				v = p.Footer
			}
		default:
			return fmt.Errorf("unknown section %s", s)
		}
		return nil
	})
	return v, err
}

func (m *Message) Header() (h *amqp.MessageHeader, err error) {
	err = m.structured(func(p *amqp.Message) error {
		h = p.Header
		return nil
	})
	return h, err
}

func (m *Message) DeliveryAnnotations() (a amqp.Annotations, err error) {
	err = m.structured(func(p *amqp.Message) error {
		a = p.DeliveryAnnotations
		return nil
	})
	return a, err
}

func (m *Message) Annotations() (a amqp.Annotations, err error) {
	err = m.structured(func(p *amqp.Message) error {
		a = p.Annotations
		return nil
	})
	return a, err
}

func (m *Message) Properties() (props *amqp.MessageProperties, err error) {
	err = m.structured(func(p *amqp.Message) error {
		props = p.Properties
		return nil
	})
	return props, err
}

func (m *Message) ApplicationProperties() (props map[string]any, err error) {
	err = m.structured(func(p *amqp.Message) error {
		props = p.ApplicationProperties
		return nil
	})
	return props, err
}

// Structured returns the whole parsed form.
func (m *Message) Structured() (s *amqp.Message, err error) {
	err = m.structured(func(p *amqp.Message) error {
		s = p
		return nil
	})
	return s, err
}

func (m *Message) Address() (addr string, err error) {
	err = m.structured(func(p *amqp.Message) error {
		if p.Properties != nil && p.Properties.To != nil {
			addr = *p.Properties.To
		}
		return nil
	})
	return addr, err
}

// ToCore converts the structured form. The wire state is left as is:
// a dirty message stays dirty.
func (m *Message) ToCore() (*core.Message, error) {
	var cm *core.Message
	err := m.structured(func(p *amqp.Message) (err error) {
		cm, err = m.conf.converter.ToCore(p)
		return err
	})
	return cm, err
}

// mutate applies fn to the parsed form and marks the given sections dirty.
func (m *Message) mutate(mask sectionMask, fn func(*amqp.Message) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureParsed(); err != nil {
		return err
	}
	if err := fn(m.parsed); err != nil {
		return err
	}
	m.markChanged(mask)
	return nil
}

// markChanged is the single entry into the dirty state. The caller holds the write lock.
func (m *Message) markChanged(mask sectionMask) {
	m.dirty |= mask
}

// MarkChanged tells the Message that its structured form was modified in
// place. Every section is treated as changed, so the next Reencode is a full one.
func (m *Message) MarkChanged() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markChanged(maskAll)
}

func (m *Message) SetAddress(addr string) error {
	return m.mutate(maskOf(codec.SectionProperties), func(p *amqp.Message) error {
		if p.Properties == nil {
			p.Properties = new(amqp.MessageProperties)
		}
		p.Properties.To = &addr
		return nil
	})
}

// SetApplicationProperty accepts the simple AMQP types a property may hold.
func (m *Message) SetApplicationProperty(name string, v any) error {
	if _, err := core.NormalizeProperty(v); err != nil {
		return fmt.Errorf("application property %q: %w", name, err)
	}
	return m.mutate(maskOf(codec.SectionApplicationProperties), func(p *amqp.Message) error {
		if p.ApplicationProperties == nil {
			p.ApplicationProperties = make(map[string]any)
		}
		p.ApplicationProperties[name] = v
		return nil
	})
}

// RemoveApplicationProperty reports whether the property existed.
// Removing an absent property leaves the message clean.
func (m *Message) RemoveApplicationProperty(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureParsed(); err != nil {
		return false, err
	}
	if _, ok := m.parsed.ApplicationProperties[name]; !ok {
		return false, nil
	}
	delete(m.parsed.ApplicationProperties, name)
	m.markChanged(maskOf(codec.SectionApplicationProperties))
	return true, nil
}

func (m *Message) SetAnnotation(key string, v any) error {
	return m.mutate(maskOf(codec.SectionMessageAnnotations), func(p *amqp.Message) error {
		if p.Annotations == nil {
			p.Annotations = make(amqp.Annotations)
		}
		p.Annotations[key] = v
		return nil
	})
}

// SetBodyValue replaces the body with a single amqp-value section.
// A nil value removes the body.
func (m *Message) SetBodyValue(v any) error {
	return m.mutate(maskOf(codec.SectionBody), func(p *amqp.Message) error {
		p.Data = nil
		p.Sequence = nil
		p.Value = v
		return nil
	})
}

func (m *Message) SetDurable(durable bool) error {
	return m.mutate(maskOf(codec.SectionHeader), func(p *amqp.Message) error {
		ensureHeader(p).Durable = durable
		return nil
	})
}

func (m *Message) SetPriority(priority uint8) error {
	return m.mutate(maskOf(codec.SectionHeader), func(p *amqp.Message) error {
		ensureHeader(p).Priority = priority
		return nil
	})
}

func ensureHeader(p *amqp.Message) *amqp.MessageHeader {
	if p.Header == nil {
		p.Header = &amqp.MessageHeader{Priority: consts.DefaultPriority}
	}
	return p.Header
}

func (m *Message) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := "clean"
	switch {
	case m.err != nil:
		state = "malformed"
	case m.dirty != 0:
		state = "dirty"
	}
	s := fmt.Sprintf("amqp message format=%d size=%s state=%s", m.format, humanize.IBytes(uint64(len(m.buf))), state)
	if m.scanned {
		for sec := codec.SectionHeader; sec <= codec.SectionFooter; sec++ {
			if span := m.layout.Span(sec); span.Present() {
				s += fmt.Sprintf(" %s=%s", sec, humanize.IBytes(uint64(span.Len())))
			}
		}
	}
	return s
}
