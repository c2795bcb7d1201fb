// Package convert maps between the structured AMQP message and the canonical
// core message in both directions.
package convert

import (
	"fmt"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/ozontech/amqpconv/codec"
	"github.com/ozontech/amqpconv/core"
	"github.com/ozontech/amqpconv/utils/lru"
)

// Converter is safe for concurrent use. It holds no per-message state.
type Converter struct {
	conf  conf
	names *lru.LRU
}

func NewConverter(opts ...Option) *Converter {
	conf := newDefaultConf() //nolint:govet
	for _, o := range opts {
		if o != nil {
			o(&conf)
		}
	}

	c := &Converter{conf: conf}
	if conf.nameCacheSize > 0 {
		c.names = lru.New(conf.nameCacheSize)
	}
	return c
}

var defaultConverter = NewConverter()

func ToCore(m *amqp.Message) (*core.Message, error) { return defaultConverter.ToCore(m) }

func FromCore(m *core.Message) (*amqp.Message, error) { return defaultConverter.FromCore(m) }

func (c *Converter) intern(name string) string {
	if c.names == nil {
		return name
	}
	return c.names.Intern(name)
}

// ToCore builds a canonical message from the structured form. m is not modified.
// Every problem found is reported, wrapped in a single *codec.DecodeError.
func (c *Converter) ToCore(m *amqp.Message) (*core.Message, error) {
	body, err := bodyToCore(m)
	if err != nil {
		return nil, &codec.DecodeError{Offset: -1, Err: fmt.Errorf("body: %w", err)}
	}

	dst := &core.Message{
		ID:          c.conf.newID(),
		Body:        body,
		Properties:  core.NewProperties(),
		Annotations: core.NewProperties(),
	}
	c.headerToCore(m.Header, dst)
	err = multierr.Combine(
		c.propertiesToCore(m.Properties, dst),
		c.applicationPropertiesToCore(m.ApplicationProperties, dst.Properties),
		c.annotationsToCore(m.Annotations, dst.Annotations),
	)
	if err != nil {
		return nil, &codec.DecodeError{Offset: -1, Err: err}
	}
	return dst, nil
}

// FromCore builds a fresh structured message. The result shares no memory
// with m, so it can be wrapped and mutated independently.
func (c *Converter) FromCore(m *core.Message) (*amqp.Message, error) {
	dst := &amqp.Message{
		Format:                0,
		Header:                headerFromCore(m),
		Annotations:           annotationsFromCore(m.Annotations),
		ApplicationProperties: applicationPropertiesFromCore(m.Properties),
	}

	props, err := propertiesFromCore(m)
	if err != nil {
		return nil, &codec.EncodeError{Section: codec.SectionProperties, Err: err}
	}
	dst.Properties = props

	if err = bodyFromCore(m.Body, dst); err != nil {
		return nil, &codec.EncodeError{Section: codec.SectionBody, Err: err}
	}
	return dst, nil
}

type conf struct {
	nameCacheSize int
	now           func() time.Time
	newID         func() uuid.UUID
}

func newDefaultConf() conf {
	return conf{
		now:   time.Now,
		newID: uuid.New,
	}
}

type Option func(*conf)

// WithNameCache interns property and annotation names in an LRU of the given size.
func WithNameCache(size int) Option {
	return func(c *conf) {
		c.nameCacheSize = size
	}
}

// WithClock replaces the clock used to turn a ttl into an absolute expiration.
func WithClock(now func() time.Time) Option {
	return func(c *conf) {
		c.now = now
	}
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(c *conf) {
		c.newID = newID
	}
}
