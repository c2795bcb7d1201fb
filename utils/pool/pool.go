// Package pool хранит свободные объекты в срезе под мьютексом.
package pool

import "sync"

type SlicePool[T any] struct {
	mu    sync.Mutex
	s     []T
	limit int
}

func NewSlicePool[T any]() *SlicePool[T] {
	return new(SlicePool[T])
}

func NewSlicePoolSize[T any](size int) *SlicePool[T] {
	return &SlicePool[T]{s: make([]T, 0, size)}
}

// NewBoundedSlicePool хранит не больше limit объектов, лишние отдаются сборщику.
func NewBoundedSlicePool[T any](limit int) *SlicePool[T] {
	return &SlicePool[T]{s: make([]T, 0, limit), limit: limit}
}

func (p *SlicePool[T]) Acquire() (v T, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l := len(p.s)
	if l == 0 {
		return v, false
	}

	v = p.s[l-1]
	var zero T
	p.s[l-1] = zero
	p.s = p.s[:l-1]
	return v, true
}

// Release возвращает v в пул. Возвращает false, если пул полон.
func (p *SlicePool[T]) Release(v T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.limit > 0 && len(p.s) >= p.limit {
		return false
	}
	p.s = append(p.s, v)
	return true
}

func (p *SlicePool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.s)
}
