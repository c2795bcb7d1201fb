package core

import "fmt"

// Properties is an insertion-ordered bag of typed values.
// A name mapped to nil is present with a null value, which is not the same as absent.
// The zero value is ready to use.
type Properties struct {
	names  []string
	values map[string]any
}

func NewProperties() *Properties {
	return &Properties{}
}

// Set stores v under name after normalizing it to a property type.
func (p *Properties) Set(name string, v any) error {
	nv, err := NormalizeProperty(v)
	if err != nil {
		return fmt.Errorf("property %q: %w", name, err)
	}
	p.set(name, nv)
	return nil
}

func (p *Properties) set(name string, v any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = v
}

func (p *Properties) Get(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[name]
	return v, ok
}

func (p *Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

func (p *Properties) Delete(name string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.values[name]; !ok {
		return false
	}
	delete(p.values, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	return true
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns a copy of the names in insertion order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.names...)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (p *Properties) Range(fn func(name string, v any) bool) {
	if p == nil {
		return
	}
	for _, n := range p.names {
		if !fn(n, p.values[n]) {
			return
		}
	}
}

func (p *Properties) Clear() {
	p.names = p.names[:0]
	clear(p.values)
}

func (p *Properties) Clone() *Properties {
	c := &Properties{}
	if p == nil {
		return c
	}
	c.names = append([]string(nil), p.names...)
	c.values = make(map[string]any, len(p.values))
	for k, v := range p.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

func (p *Properties) lookup(name string) (any, error) {
	v, ok := p.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v, nil
}

func (p *Properties) Bool(name string) (bool, error) {
	v, err := p.lookup(name)
	if err != nil {
		return false, err
	}
	b, err := ToBool(v)
	return b, Named(name, err)
}

func (p *Properties) Byte(name string) (int8, error) {
	v, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	n, err := ToByte(v)
	return n, Named(name, err)
}

func (p *Properties) Short(name string) (int16, error) {
	v, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	n, err := ToShort(v)
	return n, Named(name, err)
}

func (p *Properties) Int(name string) (int32, error) {
	v, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	n, err := ToInt(v)
	return n, Named(name, err)
}

func (p *Properties) Long(name string) (int64, error) {
	v, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	n, err := ToLong(v)
	return n, Named(name, err)
}

func (p *Properties) Float(name string) (float32, error) {
	v, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	f, err := ToFloat(v)
	return f, Named(name, err)
}

func (p *Properties) Double(name string) (float64, error) {
	v, err := p.lookup(name)
	if err != nil {
		return 0, err
	}
	f, err := ToDouble(v)
	return f, Named(name, err)
}

func (p *Properties) String(name string) (string, error) {
	v, err := p.lookup(name)
	if err != nil {
		return "", err
	}
	s, err := ToString(v)
	return s, Named(name, err)
}

func (p *Properties) Bytes(name string) ([]byte, error) {
	v, err := p.lookup(name)
	if err != nil {
		return nil, err
	}
	b, err := ToBytes(v)
	return b, Named(name, err)
}
