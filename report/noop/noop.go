package noop

import (
	"github.com/ozontech/amqpconv/message"
	"github.com/ozontech/amqpconv/report"
)

type Noop struct {
	close chan struct{}
}

func New() *Noop {
	return &Noop{make(chan struct{})}
}

func (m *Noop) Run() error {
	<-m.close
	return nil
}

func (m *Noop) Close() error {
	close(m.close)
	return nil
}

func (m *Noop) Acquire() report.State {
	return noopState{}
}

type noopState struct{}

func (noopState) SetSize(int)               {}
func (noopState) SetMode(message.WriteMode) {}
func (noopState) Error(error)               {}
func (noopState) End()                      {}

var _ report.Reporter = (*Noop)(nil)
