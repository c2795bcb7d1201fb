package codec

import (
	"encoding/binary"
	"strconv"
)

// AMQP constructors the delivery-count field of the header may be encoded with.
const (
	codeNull      byte = 0x40
	codeUint0     byte = 0x43
	codeSmallUint byte = 0x52
	codeUint      byte = 0x70
)

// CountField is a view over the encoded delivery-count of a header section:
// the constructor byte followed by the value bytes.
type CountField []byte

func countFieldLen(constructor byte) int {
	switch constructor {
	case codeNull, codeUint0:
		return 1
	case codeSmallUint:
		return 2
	case codeUint:
		return 5
	}
	return 0
}

func (f CountField) Len() int { return countFieldLen(f[0]) }

func (f CountField) Value() uint32 {
	switch f[0] {
	case codeSmallUint:
		_ = f[1]
		return uint32(f[1])
	case codeUint:
		_ = f[4]
		return binary.BigEndian.Uint32(f[1:])
	}
	return 0
}

// Fits reports whether n can be written without changing the field width.
func (f CountField) Fits(n uint32) bool {
	switch f[0] {
	case codeSmallUint:
		return n <= 0xff
	case codeUint:
		return true
	}
	// null и uint0 не имеют байтов значения
	return n == 0
}

// Set overwrites the value bytes in place. It must only be called when Fits(n).
func (f CountField) Set(n uint32) {
	switch f[0] {
	case codeSmallUint:
		_ = f[1]
		f[1] = byte(n)
	case codeUint:
		_ = f[4]
		f[1] = byte(n >> 24)
		f[2] = byte(n >> 16)
		f[3] = byte(n >> 8)
		f[4] = byte(n)
	}
}

func (f CountField) String() string {
	return "delivery-count=" + strconv.FormatUint(uint64(f.Value()), 10) +
		" width=" + strconv.Itoa(f.Len()-1)
}
