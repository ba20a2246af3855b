package common

import (
	"strconv"
	"strings"
)

// IntOr parses a base-10 integer, returning def for blank, malformed or
// out-of-range input.
func IntOr[T ~int | ~int32 | ~int64](value string, def T) T {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || int64(T(n)) != n {
		return def
	}
	return T(n)
}
