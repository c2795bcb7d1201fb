package codec

import "fmt"

// DecodeError reports malformed wire bytes. It is fatal for the message:
// the caller must reject it.
type DecodeError struct {
	Offset int // -1 when unknown
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("amqp decode error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("amqp decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a structured form that can not be serialized.
type EncodeError struct {
	Section Section
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("amqp encode error (%s): %v", e.Section, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func decodeErr(off int, format string, args ...any) *DecodeError {
	return &DecodeError{Offset: off, Err: fmt.Errorf(format, args...)}
}
