package formats

import (
	"github.com/ozontech/amqpconv/formats/model"
)

// MiddlewareFunc позволяет модифицировать сообщения во время кодирования.
type MiddlewareFunc func(*model.Envelope) error

// WrapEncoder оборачивает Marshaler, выполняя заданные модификации над сообщениями перед каждым вызовом MarshalAppend.
func WrapEncoder(enc model.Marshaler, mw ...MiddlewareFunc) model.Marshaler {
	if len(mw) == 0 {
		return enc
	}
	return &middlewareEncoder{
		enc: enc,
		mws: mw,
	}
}

type middlewareEncoder struct {
	enc model.Marshaler
	mws []MiddlewareFunc
}

func (me *middlewareEncoder) MarshalAppend(b []byte, e *model.Envelope) ([]byte, error) {
	for _, mw := range me.mws {
		if err := mw(e); err != nil {
			return b, err
		}
	}
	return me.enc.MarshalAppend(b, e)
}

// SetAddress меняет адрес назначения. Wire представление помечается грязным,
// core представление меняется на месте.
func SetAddress(addr string) MiddlewareFunc {
	return func(e *model.Envelope) error {
		if e.Wire != nil {
			if err := e.Wire.SetAddress(addr); err != nil {
				return err
			}
		}
		if e.Core != nil {
			e.Core.Address = addr
		}
		return nil
	}
}

// SetProperty задает application property.
func SetProperty(name string, v any) MiddlewareFunc {
	return func(e *model.Envelope) error {
		if e.Wire != nil {
			if err := e.Wire.SetApplicationProperty(name, v); err != nil {
				return err
			}
		}
		if e.Core != nil {
			return e.Core.Properties.Set(name, v)
		}
		return nil
	}
}

// SetDeliveryCount задает delivery-count для amqp.binary вывода.
func SetDeliveryCount(n uint32) MiddlewareFunc {
	return func(e *model.Envelope) error {
		e.DeliveryCount = n
		e.HasDeliveryCount = true
		return nil
	}
}
