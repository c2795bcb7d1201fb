package convert

import (
	"fmt"

	"github.com/Azure/go-amqp"
	"go.uber.org/multierr"

	"github.com/ozontech/amqpconv/consts"
	"github.com/ozontech/amqpconv/core"
)

func (c *Converter) headerToCore(h *amqp.MessageHeader, dst *core.Message) {
	dst.Priority = consts.DefaultPriority
	if h == nil {
		return
	}
	dst.Durable = h.Durable
	dst.Priority = h.Priority
	dst.TTL = h.TTL
	if h.TTL > 0 {
		dst.Expiration = c.conf.now().Add(h.TTL)
	}
}

func (c *Converter) propertiesToCore(p *amqp.MessageProperties, dst *core.Message) error {
	if p == nil {
		return nil
	}

	var err error
	if id, idErr := IDToString(p.MessageID); idErr != nil {
		err = multierr.Append(err, fmt.Errorf("message-id: %w", idErr))
	} else {
		dst.MessageID = id
	}
	if id, idErr := IDToString(p.CorrelationID); idErr != nil {
		err = multierr.Append(err, fmt.Errorf("correlation-id: %w", idErr))
	} else {
		dst.CorrelationID = id
	}

	if p.UserID != nil {
		dst.UserID = append([]byte(nil), p.UserID...)
	}
	dst.Address = deref(p.To)
	dst.ReplyTo = deref(p.ReplyTo)
	dst.Subject = deref(p.Subject)
	dst.GroupID = deref(p.GroupID)
	if p.GroupSequence != nil {
		dst.GroupSequence = *p.GroupSequence
	}
	dst.ContentType = deref(p.ContentType)
	dst.ContentEncoding = deref(p.ContentEncoding)
	if p.CreationTime != nil {
		dst.Timestamp = *p.CreationTime
	}
	// absolute-expiry-time имеет приоритет над ttl из заголовка
	if p.AbsoluteExpiryTime != nil && !p.AbsoluteExpiryTime.IsZero() {
		dst.Expiration = *p.AbsoluteExpiryTime
		dst.AbsoluteExpiry = true
	}
	return err
}

// headerFromCore returns nil when every header field has its default value.
// The ttl is emitted as received, never recomputed from Expiration.
func headerFromCore(src *core.Message) *amqp.MessageHeader {
	if !src.Durable && src.Priority == consts.DefaultPriority && src.TTL <= 0 {
		return nil
	}
	h := &amqp.MessageHeader{
		Durable:  src.Durable,
		Priority: src.Priority,
	}
	if src.TTL > 0 {
		h.TTL = src.TTL
	}
	return h
}

// propertiesFromCore returns nil when no properties field is set.
func propertiesFromCore(src *core.Message) (*amqp.MessageProperties, error) {
	p := new(amqp.MessageProperties)
	set := false

	var err error
	if src.MessageID != "" {
		id, idErr := IDFromString(src.MessageID)
		err = multierr.Append(err, idErr)
		p.MessageID = id
		set = true
	}
	if src.CorrelationID != "" {
		id, idErr := IDFromString(src.CorrelationID)
		err = multierr.Append(err, idErr)
		p.CorrelationID = id
		set = true
	}
	if err != nil {
		return nil, err
	}

	if src.UserID != nil {
		p.UserID = append([]byte(nil), src.UserID...)
		set = true
	}
	for _, f := range [...]struct {
		dst **string
		v   string
	}{
		{&p.To, src.Address},
		{&p.ReplyTo, src.ReplyTo},
		{&p.Subject, src.Subject},
		{&p.GroupID, src.GroupID},
		{&p.ContentType, src.ContentType},
		{&p.ContentEncoding, src.ContentEncoding},
	} {
		if f.v != "" {
			v := f.v
			*f.dst = &v
			set = true
		}
	}
	if src.GroupSequence != 0 {
		seq := src.GroupSequence
		p.GroupSequence = &seq
		set = true
	}
	if !src.Timestamp.IsZero() {
		ts := src.Timestamp
		p.CreationTime = &ts
		set = true
	}
	// Expiration derived from a ttl stays implicit; a locally built message
	// without ttl keeps its deadline as absolute-expiry-time.
	if !src.Expiration.IsZero() && (src.AbsoluteExpiry || src.TTL <= 0) {
		exp := src.Expiration
		p.AbsoluteExpiryTime = &exp
		set = true
	}

	if !set {
		return nil, nil
	}
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
