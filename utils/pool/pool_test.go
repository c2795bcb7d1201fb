package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlicePoolLIFO(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewSlicePool[int]()
	_, ok := p.Acquire()
	a.False(ok)

	a.True(p.Release(1))
	a.True(p.Release(2))
	v, ok := p.Acquire()
	a.True(ok)
	a.Equal(2, v)
	a.Equal(1, p.Len())
}

func TestBoundedSlicePool(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	p := NewBoundedSlicePool[[]byte](2)
	a.True(p.Release(make([]byte, 1)))
	a.True(p.Release(make([]byte, 2)))
	a.False(p.Release(make([]byte, 3)))
	a.Equal(2, p.Len())
}

func TestSlicePoolConcurrent(t *testing.T) {
	t.Parallel()

	p := NewSlicePoolSize[*int](8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v, ok := p.Acquire()
				if !ok {
					v = new(int)
				}
				*v++
				p.Release(v)
			}
		}()
	}
	wg.Wait()

	var total int
	for {
		v, ok := p.Acquire()
		if !ok {
			break
		}
		total += *v
	}
	assert.Equal(t, 8000, total)
}
