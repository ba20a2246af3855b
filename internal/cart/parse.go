package cart

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// UnknownTitle is the identity given to a card without a title element.
const UnknownTitle = "unknown"

// Parsed carries a parse result together with whether the input was usable.
// Value always holds something safe to use: the parsed value or the fallback.
type Parsed[T any] struct {
	Value T
	OK    bool
}

// Or returns the parsed value, or fallback when parsing failed.
func (p Parsed[T]) Or(fallback T) T {
	if p.OK {
		return p.Value
	}
	return fallback
}

func parsed[T any](v T) Parsed[T] { return Parsed[T]{Value: v, OK: true} }

func failed[T any](fallback T) Parsed[T] { return Parsed[T]{Value: fallback} }

// ParseTitle trims the card title. A missing element resolves to UnknownTitle.
func ParseTitle(text string, present bool) Parsed[string] {
	if !present {
		return failed(UnknownTitle)
	}
	return parsed(strings.TrimSpace(text))
}

// ParsePrice extracts a unit price from display text such as "$1,299.50".
// Everything but digits and dots is dropped, then the longest leading decimal
// number is read, so "1.2.3" parses as 1.2.
func ParsePrice(text string, present bool) Parsed[decimal.Decimal] {
	if !present {
		return failed(decimal.Zero)
	}
	var cleaned strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			cleaned.WriteRune(r)
		}
	}
	number := leadingDecimal(cleaned.String())
	if number == "" {
		return failed(decimal.Zero)
	}
	d, err := decimal.NewFromString(number)
	if err != nil {
		return failed(decimal.Zero)
	}
	return parsed(d)
}

// ParseQuantity reads a quantity from display text. Leading whitespace and an
// optional sign are accepted and trailing garbage is ignored ("3 pcs" is 3).
// Negative or unreadable values fall back to 0.
func ParseQuantity(text string, present bool) Parsed[int] {
	if !present {
		return failed(0)
	}
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return failed(0)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return failed(0)
	}
	return parsed(n)
}

func leadingDecimal(s string) string {
	end := 0
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		frac := end + 1
		for frac < len(s) && s[frac] >= '0' && s[frac] <= '9' {
			frac++
			digits++
		}
		if frac > end+1 {
			end = frac
		}
	}
	if digits == 0 {
		return ""
	}
	number := s[:end]
	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}
	return number
}
