package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errNotInteger = errors.New("not a non-negative integer")

// ParseAddress parses a segment start address written as a string. A 0x, 0o
// or 0b prefix (any case) selects base 16, 8 or 2; anything else is decimal.
// Surrounding whitespace, a leading '+', and '_' digit separators are
// accepted. Zero-padded decimals such as "0010" are rejected as ambiguous.
func ParseAddress(s string) (uint64, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(t, "+")
	if t == "" {
		return 0, fmt.Errorf("address %q: empty", s)
	}
	if len(t) > 1 && t[0] == '0' && t[1] >= '0' && t[1] <= '9' {
		if strings.Trim(t, "0_") != "" {
			return 0, fmt.Errorf("address %q: leading zeros are ambiguous; use a 0o prefix for octal", s)
		}
		return 0, nil
	}
	v, err := strconv.ParseUint(t, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", s, err)
	}
	return v, nil
}

// startAddress interprets a decoded "start" value: a JSON integer or a string.
func startAddress(v any) (uint64, error) {
	switch x := v.(type) {
	case json.Number:
		u, err := strconv.ParseUint(x.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("start %s: %w", x, errNotInteger)
		}
		return u, nil
	case string:
		return ParseAddress(x)
	default:
		return 0, fmt.Errorf("start has unsupported type %T", v)
	}
}
