// Package report описывает сбор статистики конвертации и повторной доставки.
package report

import "github.com/ozontech/amqpconv/message"

type Reporter interface {
	Run() error
	Close() error
	Acquire() State
}

// State накапливает исход обработки одного сообщения; End возвращает его репортеру.
type State interface {
	SetSize(int)
	SetMode(message.WriteMode)
	Error(error)
	End()
}
