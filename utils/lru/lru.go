// Package lru interns property and annotation names. Messages of one stream
// tend to repeat the same small set of names, so converted messages share
// the name strings instead of holding a copy each.
package lru

import (
	"container/list"
	"sync"
)

type LRU struct {
	maxSize int
	items   map[string]*list.Element
	list    *list.List
	mu      sync.Mutex

	hits, misses uint64
}

func New(maxSize int) *LRU {
	if maxSize < 1 {
		panic("assertion error: maxSize < 1")
	}
	return &LRU{
		maxSize: maxSize,
		items:   make(map[string]*list.Element, maxSize),
		list:    list.New(),
	}
}

// Intern returns the cached copy of name, adding name when it is missing.
func (l *LRU) Intern(name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if element, ok := l.items[name]; ok {
		l.hits++
		l.list.MoveToFront(element)
		return element.Value.(string)
	}
	l.misses++
	l.add(name)
	return name
}

// InternBytes is Intern for names still held in a wire buffer.
// No string is allocated on a hit.
func (l *LRU) InternBytes(name []byte) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if element, ok := l.items[string(name)]; ok {
		l.hits++
		l.list.MoveToFront(element)
		return element.Value.(string)
	}
	l.misses++
	s := string(name)
	l.add(s)
	return s
}

func (l *LRU) add(name string) {
	if len(l.items) >= l.maxSize {
		element := l.list.Back()
		l.list.Remove(element)
		delete(l.items, element.Value.(string))
	}
	l.items[name] = l.list.PushFront(name)
}

func (l *LRU) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Stats returns hit and miss counters since creation.
func (l *LRU) Stats() (hits, misses uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits, l.misses
}
