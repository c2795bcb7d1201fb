package multi

import (
	"golang.org/x/sync/errgroup"

	"github.com/ozontech/amqpconv/message"
	"github.com/ozontech/amqpconv/report"
	"github.com/ozontech/amqpconv/utils/pool"
)

// Multi раздает события нескольким репортерам.
type Multi struct {
	nested []report.Reporter
	pool   *pool.SlicePool[*multiState]
}

func New(nested ...report.Reporter) *Multi {
	return &Multi{
		nested,
		pool.NewSlicePoolSize[*multiState](128),
	}
}

func (m *Multi) Run() error {
	g := new(errgroup.Group)
	for i := range m.nested {
		r := m.nested[i]
		g.Go(r.Run)
	}
	return g.Wait()
}

func (m *Multi) Close() error {
	g := new(errgroup.Group)
	for i := range m.nested {
		r := m.nested[i]
		g.Go(r.Close)
	}
	return g.Wait()
}

func (m *Multi) Acquire() report.State {
	ms, ok := m.pool.Acquire()
	if !ok {
		ms = &multiState{m: m, states: make([]report.State, len(m.nested))}
	}

	for i, r := range m.nested {
		ms.states[i] = r.Acquire()
	}
	return ms
}

type multiState struct {
	m      *Multi
	states []report.State
}

func (s *multiState) SetSize(n int) {
	for _, st := range s.states {
		st.SetSize(n)
	}
}

func (s *multiState) SetMode(mode message.WriteMode) {
	for _, st := range s.states {
		st.SetMode(mode)
	}
}

func (s *multiState) Error(err error) {
	for _, st := range s.states {
		st.Error(err)
	}
}

func (s *multiState) End() {
	for i, st := range s.states {
		st.End()
		s.states[i] = nil
	}
	s.m.pool.Release(s)
}

var _ report.Reporter = (*Multi)(nil)
