// Package formats связывает форматы ввода и вывода в стратегию конвертации
// для converter.Processor.
package formats

import (
	"github.com/ozontech/amqpconv/formats/converter"
	"github.com/ozontech/amqpconv/formats/model"
	"github.com/ozontech/amqpconv/utils/pool"
)

type EnvelopeHolder struct {
	envelope model.Envelope
	readBuf  []byte
	writeBuf []byte
}

type ConvertStrategy struct {
	pool *pool.SlicePool[*EnvelopeHolder]

	in  *model.InputFormat
	out *model.OutputFormat
}

func NewConvertStrategy(in *model.InputFormat, out *model.OutputFormat) *ConvertStrategy {
	return &ConvertStrategy{
		pool: pool.NewSlicePool[*EnvelopeHolder](),
		in:   in,
		out:  out,
	}
}

func (s *ConvertStrategy) Read() (converter.DataHolder, error) {
	eh, ok := s.pool.Acquire()
	if !ok {
		eh = new(EnvelopeHolder)
	}

	var err error
	eh.readBuf, err = s.in.Reader.ReadNext()
	if err != nil {
		s.pool.Release(eh)
		return nil, err
	}
	return eh, nil
}

func (s *ConvertStrategy) Decode(holder converter.DataHolder) error {
	eh := holder.(*EnvelopeHolder)
	return s.in.Decoder.Unmarshal(&eh.envelope, eh.readBuf)
}

func (s *ConvertStrategy) Encode(holder converter.DataHolder) error {
	eh := holder.(*EnvelopeHolder)
	var err error
	eh.writeBuf, err = s.out.Encoder.MarshalAppend(eh.writeBuf[:0], &eh.envelope)
	return err
}

func (s *ConvertStrategy) Write(holder converter.DataHolder) (int, error) {
	eh := holder.(*EnvelopeHolder)
	return len(eh.writeBuf), s.out.Writer.WriteNext(eh.writeBuf)
}

func (s *ConvertStrategy) Release(holder converter.DataHolder) {
	eh := holder.(*EnvelopeHolder)
	s.in.Reader.Release(eh.readBuf)
	eh.readBuf = nil
	eh.envelope.Reset()
	s.pool.Release(eh)
}

var _ converter.Strategy = (*ConvertStrategy)(nil)
