// Package msgpack хранит core сообщения в msgpack записях, по одной на кадр.
package msgpack

import (
	"io"

	"github.com/ozontech/amqpconv/core"
	binaryIO "github.com/ozontech/amqpconv/formats/binary/io"
	"github.com/ozontech/amqpconv/formats/internal/pooledreader"
	"github.com/ozontech/amqpconv/formats/model"
)

const Name = "core.msgpack"

type Decoder struct{}

func (Decoder) Unmarshal(e *model.Envelope, b []byte) error {
	e.Reset()
	cm := new(core.Message)
	if err := core.Unmarshal(b, cm); err != nil {
		return err
	}
	e.Core = cm
	return nil
}

type Encoder struct{}

func (Encoder) MarshalAppend(b []byte, e *model.Envelope) ([]byte, error) {
	cm, err := e.Canonical()
	if err != nil {
		return b, err
	}
	return core.MarshalAppend(b, cm)
}

func NewInput(r io.Reader) *model.InputFormat {
	return &model.InputFormat{
		Reader:  pooledreader.New(binaryIO.NewReader(r)),
		Decoder: Decoder{},
	}
}

func NewOutput(w io.Writer) *model.OutputFormat {
	return &model.OutputFormat{
		Writer:  binaryIO.NewWriter(w),
		Encoder: Encoder{},
	}
}
