// Package amqp читает и пишет поток AMQP 1.0 сообщений в кадрах длины.
package amqp

import (
	"io"

	binaryIO "github.com/ozontech/amqpconv/formats/binary/io"
	"github.com/ozontech/amqpconv/formats/internal/pooledreader"
	"github.com/ozontech/amqpconv/formats/model"
	"github.com/ozontech/amqpconv/message"
)

const Name = "amqp.binary"

func NewInput(r io.Reader, opts ...message.Option) *model.InputFormat {
	return &model.InputFormat{
		Reader:  pooledreader.New(binaryIO.NewReader(r)),
		Decoder: NewDecoder(opts...),
	}
}

func NewOutput(w io.Writer) *model.OutputFormat {
	return &model.OutputFormat{
		Writer:  binaryIO.NewWriter(w),
		Encoder: NewEncoder(),
	}
}
