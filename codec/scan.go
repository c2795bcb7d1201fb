package codec

import (
	"encoding/binary"
)

// Span is a byte range [Start, End) of an encoded section. The zero Span means absent.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int      { return s.End - s.Start }
func (s Span) Present() bool { return s.End > s.Start }

// Layout describes where each section of an encoded message lives.
// All body sections (several data or sequence sections are allowed) share one span.
type Layout struct {
	Spans [sectionCount]Span
	// CountOffset is the offset of the delivery-count constructor inside the
	// header section, or -1 when the header does not carry the field.
	CountOffset int
	Size        int
}

func (l *Layout) Span(s Section) Span { return l.Spans[s] }
func (l *Layout) Has(s Section) bool  { return l.Spans[s].Present() }

// Count returns the delivery-count field view inside b, which must be the scanned buffer.
func (l *Layout) Count(b []byte) (CountField, bool) {
	if l.CountOffset < 0 {
		return nil, false
	}
	f := CountField(b[l.CountOffset:])
	return f[:f.Len()], true
}

// Scan walks section boundaries of an encoded message without decoding values.
func Scan(b []byte) (Layout, error) {
	l := Layout{CountOffset: -1, Size: len(b)}
	s := scanner{b: b}

	last := -1
	var bodyDesc uint64
	for s.pos < len(b) {
		start := s.pos
		desc, err := s.descriptor()
		if err != nil {
			return l, err
		}
		sec, ok := sectionOf(desc)
		if !ok {
			return l, decodeErr(start, "unknown section descriptor 0x%02x", desc)
		}
		if int(sec) < last || (int(sec) == last && sec != SectionBody) {
			return l, decodeErr(start, "section %s out of order", sec)
		}
		if sec == SectionBody {
			if bodyDesc != 0 && (desc != bodyDesc || desc == descValue) {
				return l, decodeErr(start, "unexpected body section 0x%02x after 0x%02x", desc, bodyDesc)
			}
			bodyDesc = desc
		}

		if sec == SectionHeader {
			err = s.header(&l)
		} else {
			err = s.skipValue()
		}
		if err != nil {
			return l, err
		}

		span := &l.Spans[sec]
		if span.Present() {
			span.End = s.pos
		} else {
			*span = Span{Start: start, End: s.pos}
		}
		last = int(sec)
	}
	return l, nil
}

type scanner struct {
	b   []byte
	pos int
}

func (s *scanner) need(n int) error {
	if n < 0 || len(s.b)-s.pos < n {
		return decodeErr(s.pos, "unexpected end of buffer: need %d bytes, have %d", n, len(s.b)-s.pos)
	}
	return nil
}

func (s *scanner) readByte() (byte, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	c := s.b[s.pos]
	s.pos++
	return c, nil
}

func (s *scanner) readSize(width int) (int, error) {
	if err := s.need(width); err != nil {
		return 0, err
	}
	var n int
	if width == 1 {
		n = int(s.b[s.pos])
	} else {
		n = int(binary.BigEndian.Uint32(s.b[s.pos:]))
	}
	s.pos += width
	return n, nil
}

func (s *scanner) skip(n int) error {
	if err := s.need(n); err != nil {
		return err
	}
	s.pos += n
	return nil
}

// skipValue пропускает значение вместе с конструктором.
// Ширина значения однозначно определяется старшими четырьмя битами кода типа.
func (s *scanner) skipValue() error {
	start := s.pos
	c, err := s.readByte()
	if err != nil {
		return err
	}
	if c == 0x00 {
		// described value: descriptor, then the value itself
		if err = s.skipValue(); err != nil {
			return err
		}
		return s.skipValue()
	}

	switch c >> 4 {
	case 0x4:
		return nil
	case 0x5:
		return s.skip(1)
	case 0x6:
		return s.skip(2)
	case 0x7:
		return s.skip(4)
	case 0x8:
		return s.skip(8)
	case 0x9:
		return s.skip(16)
	case 0xa, 0xc, 0xe:
		n, err := s.readSize(1)
		if err != nil {
			return err
		}
		return s.skip(n)
	case 0xb, 0xd, 0xf:
		n, err := s.readSize(4)
		if err != nil {
			return err
		}
		return s.skip(n)
	}
	return decodeErr(start, "unknown constructor 0x%02x", c)
}

func (s *scanner) descriptor() (uint64, error) {
	start := s.pos
	c, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if c != 0x00 {
		return 0, decodeErr(start, "expected described section, got constructor 0x%02x", c)
	}

	c, err = s.readByte()
	if err != nil {
		return 0, err
	}
	switch c {
	case 0x44: // ulong0
		return 0, nil
	case 0x53: // smallulong
		v, err := s.readByte()
		return uint64(v), err
	case 0x80: // ulong
		if err = s.need(8); err != nil {
			return 0, err
		}
		v := binary.BigEndian.Uint64(s.b[s.pos:])
		s.pos += 8
		return v, nil
	case 0xa3, 0xb3: // sym8, sym32
		width := 1
		if c == 0xb3 {
			width = 4
		}
		n, err := s.readSize(width)
		if err != nil {
			return 0, err
		}
		if err = s.need(n); err != nil {
			return 0, err
		}
		name := string(s.b[s.pos : s.pos+n])
		s.pos += n
		desc, ok := symbolicDescriptors[name]
		if !ok {
			return 0, decodeErr(start, "unknown section descriptor %q", name)
		}
		return desc, nil
	}
	return 0, decodeErr(start, "unsupported descriptor constructor 0x%02x", c)
}

// header parses the header list far enough to find the delivery-count field (index 4).
func (s *scanner) header(l *Layout) error {
	start := s.pos
	c, err := s.readByte()
	if err != nil {
		return err
	}

	var count, end int
	switch c {
	case 0x45: // list0
		return nil
	case 0xc0: // list8
		size, err := s.readSize(1)
		if err != nil {
			return err
		}
		end = s.pos + size
		if count, err = s.readSize(1); err != nil {
			return err
		}
	case 0xd0: // list32
		size, err := s.readSize(4)
		if err != nil {
			return err
		}
		end = s.pos + size
		if count, err = s.readSize(4); err != nil {
			return err
		}
	default:
		return decodeErr(start, "header is not a list: constructor 0x%02x", c)
	}
	if end > len(s.b) {
		return decodeErr(start, "header list overruns buffer: end %d, size %d", end, len(s.b))
	}

	const deliveryCountIndex = 4
	for i := 0; i < count; i++ {
		if i == deliveryCountIndex {
			if err = s.need(1); err != nil {
				return err
			}
			if countFieldLen(s.b[s.pos]) == 0 {
				return decodeErr(s.pos, "unexpected delivery-count constructor 0x%02x", s.b[s.pos])
			}
			l.CountOffset = s.pos
		}
		if err = s.skipValue(); err != nil {
			return err
		}
	}
	if s.pos != end {
		return decodeErr(start, "header list size mismatch: parsed to %d, declared end %d", s.pos, end)
	}
	return nil
}
