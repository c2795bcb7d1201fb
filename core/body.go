package core

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Map, list and scalar bodies are kept as msgpack. Integers are written with
// their exact width so int32 stays int32 after a round trip, and map keys are
// sorted so equal maps produce equal payloads.

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(b []byte) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	return dec.DecodeInterface()
}

func EncodeMap(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := encode(m)
	if err != nil {
		return nil, fmt.Errorf("encode map body: %w", err)
	}
	return b, nil
}

func DecodeMap(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return map[string]any{}, nil
	}
	v, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode map body: %w", err)
	}
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case nil:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("decode map body: %w", mismatch(TypeMap, v, nil))
}

func EncodeList(l []any) ([]byte, error) {
	if l == nil {
		l = []any{}
	}
	b, err := encode(l)
	if err != nil {
		return nil, fmt.Errorf("encode list body: %w", err)
	}
	return b, nil
}

func DecodeList(b []byte) ([]any, error) {
	if len(b) == 0 {
		return []any{}, nil
	}
	v, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode list body: %w", err)
	}
	switch l := v.(type) {
	case []any:
		return l, nil
	case nil:
		return []any{}, nil
	}
	return nil, fmt.Errorf("decode list body: %w", mismatch(TypeList, v, nil))
}

func EncodeValue(v any) ([]byte, error) {
	b, err := encode(v)
	if err != nil {
		return nil, fmt.Errorf("encode value body: %w", err)
	}
	return b, nil
}

// DecodeValue returns nil for an empty payload, which stands for an absent body.
func DecodeValue(b []byte) (any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	v, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("decode value body: %w", err)
	}
	return v, nil
}
