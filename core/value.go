package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Type is the canonical type of a property, map item or stream item.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeNull
	TypeBool
	TypeByte
	TypeShort
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
	TypeBytes

	// Only in bodies.
	TypeUbyte
	TypeUshort
	TypeUint
	TypeUlong
	TypeTimestamp
	TypeList
	TypeMap
)

var typeNames = [...]string{
	TypeUnknown:   "unknown",
	TypeNull:      "null",
	TypeBool:      "boolean",
	TypeByte:      "byte",
	TypeShort:     "short",
	TypeInt:       "int",
	TypeLong:      "long",
	TypeFloat:     "float",
	TypeDouble:    "double",
	TypeString:    "string",
	TypeBytes:     "bytes",
	TypeUbyte:     "ubyte",
	TypeUshort:    "ushort",
	TypeUint:      "uint",
	TypeUlong:     "ulong",
	TypeTimestamp: "timestamp",
	TypeList:      "list",
	TypeMap:       "map",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

func TypeOf(v any) Type {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBool
	case int8:
		return TypeByte
	case int16:
		return TypeShort
	case int32:
		return TypeInt
	case int64:
		return TypeLong
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	case string:
		return TypeString
	case []byte:
		return TypeBytes
	case uint8:
		return TypeUbyte
	case uint16:
		return TypeUshort
	case uint32:
		return TypeUint
	case uint64:
		return TypeUlong
	case time.Time:
		return TypeTimestamp
	case []any:
		return TypeList
	case map[string]any:
		return TypeMap
	}
	return TypeUnknown
}

// NormalizeProperty приводит значение к одному из типов, допустимых в Properties.
// Беззнаковые целые расширяются до следующего знакового типа.
func NormalizeProperty(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, int8, int16, int32, int64, float32, float64, string, []byte:
		return v, nil
	case int:
		return int64(v), nil
	case uint8:
		return int16(v), nil
	case uint16:
		return int32(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		return normalizeUint64(uint64(v))
	case uint64:
		return normalizeUint64(v)
	case time.Time:
		return v.UnixMilli(), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func normalizeUint64(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("%w: ulong %d overflows long", ErrUnsupportedType, v)
	}
	return int64(v), nil
}

// The conversion functions below follow the legacy messaging API property
// conversion table: a value may be read as a wider type of the same family
// or parsed from a string, never narrowed.

func ToBool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	case string:
		return strings.EqualFold(v, "true"), nil
	}
	return false, mismatch(TypeBool, v, nil)
}

func ToByte(v any) (int8, error) {
	switch v := v.(type) {
	case int8:
		return v, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 8)
		if err != nil {
			return 0, mismatch(TypeByte, v, err)
		}
		return int8(n), nil
	}
	return 0, mismatch(TypeByte, v, nil)
}

func ToShort(v any) (int16, error) {
	switch v := v.(type) {
	case int8:
		return int16(v), nil
	case int16:
		return v, nil
	case uint8:
		return int16(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 16)
		if err != nil {
			return 0, mismatch(TypeShort, v, err)
		}
		return int16(n), nil
	}
	return 0, mismatch(TypeShort, v, nil)
}

func ToInt(v any) (int32, error) {
	switch v := v.(type) {
	case int8:
		return int32(v), nil
	case int16:
		return int32(v), nil
	case int32:
		return v, nil
	case uint8:
		return int32(v), nil
	case uint16:
		return int32(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return 0, mismatch(TypeInt, v, err)
		}
		return int32(n), nil
	}
	return 0, mismatch(TypeInt, v, nil)
}

func ToLong(v any) (int64, error) {
	switch v := v.(type) {
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, mismatch(TypeLong, v, nil)
		}
		return int64(v), nil
	case time.Time:
		return v.UnixMilli(), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, mismatch(TypeLong, v, err)
		}
		return n, nil
	}
	return 0, mismatch(TypeLong, v, nil)
}

func ToFloat(v any) (float32, error) {
	switch v := v.(type) {
	case float32:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return 0, mismatch(TypeFloat, v, err)
		}
		return float32(f), nil
	}
	return 0, mismatch(TypeFloat, v, nil)
}

func ToDouble(v any) (float64, error) {
	switch v := v.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, mismatch(TypeDouble, v, err)
		}
		return f, nil
	}
	return 0, mismatch(TypeDouble, v, nil)
}

// ToString formats any scalar. Null reads as the empty string, binary is not convertible.
func ToString(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), nil
	}
	return "", mismatch(TypeString, v, nil)
}

func ToBytes(v any) ([]byte, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case nil:
		return nil, nil
	}
	return nil, mismatch(TypeBytes, v, nil)
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case []byte:
		return append([]byte(nil), v...)
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = cloneValue(item)
		}
		return out
	}
	return v
}
