package facade

import (
	"fmt"
	"sort"

	"github.com/ozontech/amqpconv/core"
)

// MapMessage gives keyed access to a map body. A received message must be
// decoded explicitly before use; the view is built once.
type MapMessage struct {
	base
	items   map[string]any
	decoded bool
}

func NewMapMessage() *MapMessage {
	m := core.NewMessage(core.BodyMap)
	m.Body.Encoding = core.EncodingValueMap
	return &MapMessage{base: base{msg: m}, items: map[string]any{}, decoded: true}
}

func (m *MapMessage) Kind() Kind { return KindMap }

// Decode materializes the map view. Further calls are no-ops.
func (m *MapMessage) Decode() error {
	if m.decoded {
		return nil
	}
	items, err := core.DecodeMap(m.msg.Body.Payload)
	if err != nil {
		return err
	}
	m.items = items
	m.decoded = true
	return nil
}

func (m *MapMessage) ClearBody() {
	m.items = map[string]any{}
	m.decoded = true
	m.msg.Body.Payload = nil
}

func (m *MapMessage) item(op, name string) (any, error) {
	if !m.decoded {
		return nil, &UnreadyStateError{Kind: KindMap, Op: op}
	}
	v, ok := m.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrNotFound, name)
	}
	return v, nil
}

func (m *MapMessage) ItemExists(name string) (bool, error) {
	if !m.decoded {
		return false, &UnreadyStateError{Kind: KindMap, Op: "ItemExists"}
	}
	_, ok := m.items[name]
	return ok, nil
}

// MapNames returns the item names in sorted order.
func (m *MapMessage) MapNames() ([]string, error) {
	if !m.decoded {
		return nil, &UnreadyStateError{Kind: KindMap, Op: "MapNames"}
	}
	names := make([]string, 0, len(m.items))
	for name := range m.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MapMessage) GetBoolean(name string) (bool, error) {
	v, err := m.item("GetBoolean", name)
	if err != nil {
		return false, err
	}
	b, err := core.ToBool(v)
	return b, core.Named(name, err)
}

func (m *MapMessage) GetByte(name string) (int8, error) {
	v, err := m.item("GetByte", name)
	if err != nil {
		return 0, err
	}
	n, err := core.ToByte(v)
	return n, core.Named(name, err)
}

func (m *MapMessage) GetShort(name string) (int16, error) {
	v, err := m.item("GetShort", name)
	if err != nil {
		return 0, err
	}
	n, err := core.ToShort(v)
	return n, core.Named(name, err)
}

func (m *MapMessage) GetInt(name string) (int32, error) {
	v, err := m.item("GetInt", name)
	if err != nil {
		return 0, err
	}
	n, err := core.ToInt(v)
	return n, core.Named(name, err)
}

func (m *MapMessage) GetLong(name string) (int64, error) {
	v, err := m.item("GetLong", name)
	if err != nil {
		return 0, err
	}
	n, err := core.ToLong(v)
	return n, core.Named(name, err)
}

func (m *MapMessage) GetFloat(name string) (float32, error) {
	v, err := m.item("GetFloat", name)
	if err != nil {
		return 0, err
	}
	f, err := core.ToFloat(v)
	return f, core.Named(name, err)
}

func (m *MapMessage) GetDouble(name string) (float64, error) {
	v, err := m.item("GetDouble", name)
	if err != nil {
		return 0, err
	}
	f, err := core.ToDouble(v)
	return f, core.Named(name, err)
}

func (m *MapMessage) GetString(name string) (string, error) {
	v, err := m.item("GetString", name)
	if err != nil {
		return "", err
	}
	s, err := core.ToString(v)
	return s, core.Named(name, err)
}

func (m *MapMessage) GetBytes(name string) ([]byte, error) {
	v, err := m.item("GetBytes", name)
	if err != nil {
		return nil, err
	}
	b, err := core.ToBytes(v)
	return b, core.Named(name, err)
}

func (m *MapMessage) GetObject(name string) (any, error) {
	return m.item("GetObject", name)
}

// set stores the item and writes the whole map back to the canonical body.
func (m *MapMessage) set(op, name string, v any) error {
	if !m.decoded {
		return &UnreadyStateError{Kind: KindMap, Op: op}
	}
	prev, had := m.items[name]
	m.items[name] = v
	payload, err := core.EncodeMap(m.items)
	if err != nil {
		if had {
			m.items[name] = prev
		} else {
			delete(m.items, name)
		}
		return err
	}
	m.msg.Body.Payload = payload
	return nil
}

func (m *MapMessage) SetBoolean(name string, v bool) error   { return m.set("SetBoolean", name, v) }
func (m *MapMessage) SetByte(name string, v int8) error      { return m.set("SetByte", name, v) }
func (m *MapMessage) SetShort(name string, v int16) error    { return m.set("SetShort", name, v) }
func (m *MapMessage) SetInt(name string, v int32) error      { return m.set("SetInt", name, v) }
func (m *MapMessage) SetLong(name string, v int64) error     { return m.set("SetLong", name, v) }
func (m *MapMessage) SetFloat(name string, v float32) error  { return m.set("SetFloat", name, v) }
func (m *MapMessage) SetDouble(name string, v float64) error { return m.set("SetDouble", name, v) }
func (m *MapMessage) SetString(name string, v string) error  { return m.set("SetString", name, v) }
func (m *MapMessage) SetBytes(name string, v []byte) error   { return m.set("SetBytes", name, v) }

// SetObject accepts scalars, nil, []any and map[string]any.
func (m *MapMessage) SetObject(name string, v any) error { return m.set("SetObject", name, v) }
