package facade

import (
	"errors"
	"fmt"
	"io"
)

// ErrEndOfStream is returned by sequential reads past the last item or byte.
// It matches io.EOF with errors.Is.
var ErrEndOfStream = fmt.Errorf("facade: end of message body: %w", io.EOF)

// UnreadyStateError is returned when a map or text accessor runs before Decode.
type UnreadyStateError struct {
	Kind Kind
	Op   string
}

func (e *UnreadyStateError) Error() string {
	return fmt.Sprintf("facade: %s message: %s called before Decode", e.Kind, e.Op)
}

// KindMismatchError is returned by the As helpers.
type KindMismatchError struct {
	Want Kind
	Got  Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("facade: %s message requested, have %s message", e.Want, e.Got)
}

var errStringTooLong = errors.New("facade: string longer than 65535 bytes")
