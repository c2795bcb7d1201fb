package consts

import "time"

const (
	DefaultMessageFormat uint32 = 0 // формат сообщения по умолчанию (AMQP 1.0 bare message)
	DefaultPriority      uint8  = 4

	DefaultReadBufferSize = 4096
	DefaultNameCacheSize  = 1 << 10
	ReaderPoolSize        = 1 << 10

	ReportInterval = time.Second

	// MaxMessageSize ограничивает размер одного сообщения в потоковых форматах.
	MaxMessageSize = 150 * 1024 * 1024
)
