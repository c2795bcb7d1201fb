package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertiesPresence(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	var p Properties
	a.NoError(p.Set("false", false))
	a.NoError(p.Set("empty", ""))
	a.NoError(p.Set("null", nil))

	b, err := p.Bool("false")
	a.NoError(err)
	a.False(b)

	s, err := p.String("empty")
	a.NoError(err)
	a.Equal("", s)

	a.True(p.Has("null"))
	v, ok := p.Get("null")
	a.True(ok)
	a.Nil(v)

	_, err = p.Bool("absent")
	a.ErrorIs(err, ErrNotFound)
	a.False(p.Has("absent"))
}

func TestPropertiesOrderAndDelete(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewProperties()
	for _, name := range []string{"c", "a", "b"} {
		a.NoError(p.Set(name, int32(1)))
	}
	a.NoError(p.Set("a", int32(2)))
	a.Equal([]string{"c", "a", "b"}, p.Names())

	a.True(p.Delete("a"))
	a.False(p.Delete("a"))
	a.Equal([]string{"c", "b"}, p.Names())
	a.Equal(2, p.Len())

	var seen []string
	p.Range(func(name string, _ any) bool {
		seen = append(seen, name)
		return false
	})
	a.Equal([]string{"c"}, seen)

	p.Clear()
	a.Zero(p.Len())
	a.False(p.Has("c"))
}

func TestPropertiesNormalize(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewProperties()
	a.NoError(p.Set("int", 5))
	a.NoError(p.Set("ubyte", uint8(255)))
	v, _ := p.Get("int")
	a.Equal(int64(5), v)
	v, _ = p.Get("ubyte")
	a.Equal(int16(255), v)

	err := p.Set("map", map[string]any{})
	a.ErrorIs(err, ErrUnsupportedType)
	a.False(p.Has("map"))
}

func TestPropertiesTypedGetters(t *testing.T) {
	t.Parallel()

	p := NewProperties()
	for name, v := range map[string]any{
		"byte":   int8(-3),
		"int":    int32(70000),
		"float":  float32(1.5),
		"string": "42",
		"bytes":  []byte{1},
		"bool":   true,
	} {
		assert.NoError(t, p.Set(name, v))
	}

	tests := []struct {
		name string
		get  func() (any, error)
		want any
		ok   bool
	}{
		{"byte as short", func() (any, error) { return p.Short("byte") }, int16(-3), true},
		{"byte as long", func() (any, error) { return p.Long("byte") }, int64(-3), true},
		{"int as short", func() (any, error) { return p.Short("int") }, int16(0), false},
		{"int as long", func() (any, error) { return p.Long("int") }, int64(70000), true},
		{"float as double", func() (any, error) { return p.Double("float") }, float64(1.5), true},
		{"float as int", func() (any, error) { return p.Int("float") }, int32(0), false},
		{"string as int", func() (any, error) { return p.Int("string") }, int32(42), true},
		{"string as byte", func() (any, error) { return p.Byte("string") }, int8(42), true},
		{"string as bool", func() (any, error) { return p.Bool("string") }, false, true},
		{"int as string", func() (any, error) { return p.String("int") }, "70000", true},
		{"bytes as string", func() (any, error) { return p.String("bytes") }, "", false},
		{"bool as bytes", func() (any, error) { return p.Bytes("bool") }, []byte(nil), false},
		{"bytes", func() (any, error) { return p.Bytes("bytes") }, []byte{1}, true},
		{"bool as float", func() (any, error) { return p.Float("bool") }, float32(0), false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			got, err := tc.get()
			if !tc.ok {
				var tm *TypeMismatchError
				if a.True(errors.As(err, &tm), "%v", err) {
					a.NotEmpty(tm.Name)
				}
				return
			}
			a.NoError(err)
			a.Equal(tc.want, got)
		})
	}
}

func TestPropertiesClone(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewProperties()
	a.NoError(p.Set("b", []byte{1, 2}))
	c := p.Clone()
	b, _ := c.Bytes("b")
	b[0] = 9

	orig, _ := p.Bytes("b")
	a.Equal([]byte{1, 2}, orig)
	a.Equal(p.Names(), c.Names())

	var nilProps *Properties
	a.Zero(nilProps.Clone().Len())
}
