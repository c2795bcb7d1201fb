package message

import (
	"go.uber.org/zap"

	"github.com/ozontech/amqpconv/convert"
)

type conf struct {
	log       *zap.Logger
	converter *convert.Converter
}

var defaultConverter = convert.NewConverter()

func newConf(opts []Option) conf {
	c := conf{
		log:       zap.NewNop(),
		converter: defaultConverter,
	}
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	return c
}

type Option func(*conf)

func WithLogger(log *zap.Logger) Option {
	return func(c *conf) {
		c.log = log
	}
}

// WithConverter sets the converter used by ToCore and FromCore.
func WithConverter(converter *convert.Converter) Option {
	return func(c *conf) {
		c.converter = converter
	}
}
