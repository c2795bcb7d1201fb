package lru

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUEviction(t *testing.T) {
	t.Parallel()

	a := assert.New(t)
	l := New(3)
	l.Intern("content-type")
	l.InternBytes([]byte("x-opt-jms-dest"))
	l.Intern("trace-id")
	l.Intern("content-type")
	a.Equal(3, l.Len())
	a.Equal(3, l.list.Len())
	l.Intern("tenant")
	a.Equal(3, l.Len())

	lruOrder := []string{"tenant", "content-type", "trace-id"}
	el := l.list.Front()
	for _, v := range lruOrder {
		_, ok := l.items[v]
		a.True(ok)
		a.Equal(v, el.Value)
		el = el.Next()
	}
	_, ok := l.items["x-opt-jms-dest"]
	a.False(ok)

	hits, misses := l.Stats()
	a.Equal(uint64(1), hits)
	a.Equal(uint64(4), misses)
}

func TestLRUSharesString(t *testing.T) {
	t.Parallel()

	a := assert.New(t)
	l := New(8)
	first := l.InternBytes([]byte("priority-class"))
	second := l.InternBytes([]byte("priority-class"))
	a.Equal(first, second)
	a.Equal(1, l.Len())
}

func TestLRUPanicsOnZeroSize(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New(0) })
}
