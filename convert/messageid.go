package convert

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/Azure/go-amqp"
	"github.com/google/uuid"
)

// Message and correlation ids may be strings, ulongs, uuids or binaries on the
// wire. The core message keeps them as text, so the AMQP type is recorded in a
// prefix and restored by IDFromString.
const (
	idPrefix       = "ID:"
	prefixUUID     = "AMQP_UUID:"
	prefixUlong    = "AMQP_ULONG:"
	prefixBinary   = "AMQP_BINARY:"
	prefixString   = "AMQP_STRING:"
	prefixNoPrefix = "AMQP_NO_PREFIX:"
)

func hasTypePrefix(s string) bool {
	for _, p := range [...]string{prefixUUID, prefixUlong, prefixBinary, prefixString, prefixNoPrefix} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func IDToString(id any) (string, error) {
	if id == nil {
		return "", nil
	}
	if s, ok := asString(id); ok {
		switch {
		case !strings.HasPrefix(s, idPrefix):
			return idPrefix + prefixNoPrefix + s, nil
		case hasTypePrefix(s[len(idPrefix):]):
			return idPrefix + prefixString + s, nil
		}
		return s, nil
	}

	switch id := id.(type) {
	case uint64:
		return idPrefix + prefixUlong + strconv.FormatUint(id, 10), nil
	case amqp.UUID:
		return idPrefix + prefixUUID + uuid.UUID(id).String(), nil
	case []byte:
		return idPrefix + prefixBinary + strings.ToUpper(hex.EncodeToString(id)), nil
	}
	return "", fmt.Errorf("unsupported message id type %T", id)
}

func IDFromString(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, idPrefix) {
		return s, nil
	}

	rest := s[len(idPrefix):]
	switch {
	case strings.HasPrefix(rest, prefixNoPrefix):
		return rest[len(prefixNoPrefix):], nil
	case strings.HasPrefix(rest, prefixString):
		return rest[len(prefixString):], nil
	case strings.HasPrefix(rest, prefixUlong):
		n, err := strconv.ParseUint(rest[len(prefixUlong):], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ulong message id %q: %w", s, err)
		}
		return n, nil
	case strings.HasPrefix(rest, prefixUUID):
		u, err := uuid.Parse(rest[len(prefixUUID):])
		if err != nil {
			return nil, fmt.Errorf("uuid message id %q: %w", s, err)
		}
		return amqp.UUID(u), nil
	case strings.HasPrefix(rest, prefixBinary):
		b, err := hex.DecodeString(rest[len(prefixBinary):])
		if err != nil {
			return nil, fmt.Errorf("binary message id %q: %w", s, err)
		}
		return b, nil
	}
	return s, nil
}
