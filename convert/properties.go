package convert

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ozontech/amqpconv/core"
)

// asString принимает и string, и символьные типы кодека (amqp symbol).
func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

// propertyFromAMQP coerces an application property value to the nearest core type.
func propertyFromAMQP(v any) (any, error) {
	if s, ok := asString(v); ok {
		return s, nil
	}
	if u, ok := v.(amqp.UUID); ok {
		return uuid.UUID(u).String(), nil
	}
	return core.NormalizeProperty(v)
}

func (c *Converter) applicationPropertiesToCore(src map[string]any, dst *core.Properties) error {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	var err error
	for _, name := range names {
		v, perr := propertyFromAMQP(src[name])
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("application property %q: %w", name, perr))
			continue
		}
		err = multierr.Append(err, dst.Set(c.intern(name), v))
	}
	return err
}

func applicationPropertiesFromCore(src *core.Properties) map[string]any {
	if src.Len() == 0 {
		return nil
	}
	dst := make(map[string]any, src.Len())
	src.Range(func(name string, v any) bool {
		dst[name] = v
		return true
	})
	return dst
}

func annotationKey(k any) (string, error) {
	if s, ok := asString(k); ok {
		return s, nil
	}
	switch k := k.(type) {
	case int64:
		return strconv.FormatInt(k, 10), nil
	case uint64:
		return strconv.FormatUint(k, 10), nil
	case int:
		return strconv.Itoa(k), nil
	}
	return "", fmt.Errorf("unsupported annotation key type %T", k)
}

func (c *Converter) annotationsToCore(src amqp.Annotations, dst *core.Properties) error {
	type entry struct {
		key string
		val any
	}
	entries := make([]entry, 0, len(src))
	var err error
	for k, v := range src {
		key, kerr := annotationKey(k)
		if kerr != nil {
			err = multierr.Append(err, kerr)
			continue
		}
		entries = append(entries, entry{key, v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	for _, e := range entries {
		v, verr := propertyFromAMQP(e.val)
		if verr != nil {
			// аннотации могут содержать составные значения, сохраняем их текстом
			v = fmt.Sprint(e.val)
		}
		err = multierr.Append(err, dst.Set(c.intern(e.key), v))
	}
	return err
}

func annotationsFromCore(src *core.Properties) amqp.Annotations {
	if src.Len() == 0 {
		return nil
	}
	dst := make(amqp.Annotations, src.Len())
	src.Range(func(name string, v any) bool {
		dst[name] = v
		return true
	})
	return dst
}

// bodyValueFromAMQP keeps the exact scalar types (unsigned included) and
// flattens the codec's map and array shapes into map[string]any and []any.
func bodyValueFromAMQP(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, int8, int16, int32, int64, uint8, uint16, uint32, uint64,
		float32, float64, string, []byte, time.Time:
		return v, nil
	case int:
		return int64(v), nil
	case uint:
		return uint64(v), nil
	case amqp.UUID:
		return uuid.UUID(v).String(), nil
	case []any:
		out := make([]any, len(v))
		for i := range v {
			item, err := bodyValueFromAMQP(v[i])
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			cv, err := bodyValueFromAMQP(item)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	}

	if s, ok := asString(v); ok {
		return s, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := mapKey(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			item, err := bodyValueFromAMQP(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[k] = item
		}
		return out, nil
	case reflect.Slice:
		// AMQP arrays arrive as typed slices
		out := make([]any, rv.Len())
		for i := range out {
			item, err := bodyValueFromAMQP(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", core.ErrUnsupportedType, v)
}

func mapKey(k any) (string, error) {
	if s, ok := asString(k); ok {
		return s, nil
	}
	cv, err := bodyValueFromAMQP(k)
	if err != nil {
		return "", err
	}
	s, err := core.ToString(cv)
	if err != nil {
		return "", fmt.Errorf("map key: %w", err)
	}
	return s, nil
}
