// Package money implements decimal-string amount arithmetic on integer
// cents. Amounts cross the wire as decimal strings and are only ever parsed
// here, immediately before a computation; floats are never involved.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformed  = errors.New("malformed amount")
	ErrNegative   = errors.New("amount cannot be negative")
	ErrZeroPeople = errors.New("cannot split among zero people")
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")
	ErrOutOfRange = errors.New("amount out of range")
)

// Amount is a monetary value in cents. The zero value is zero money.
type Amount int64

// Parse converts a decimal string like "100", "100.5" or "100.50" into an
// Amount. At most two fraction digits are accepted; negative values and
// anything non-numeric are rejected.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMalformed
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegative
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrMalformed
	}
	if len(frac) > 2 {
		return 0, ErrTooPrecise
	}
	if whole == "" {
		whole = "0"
	}
	// Pad ".5" to ".50" so cents come out right.
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, ErrOutOfRange
		}
		return 0, ErrMalformed
	}
	cents64, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents64 < 0 {
		return 0, ErrMalformed
	}
	if units > (1<<62)/100 {
		return 0, ErrOutOfRange
	}
	return Amount(units*100 + cents64), nil
}

// String renders the amount with exactly two decimal places, matching the
// wire format the backend expects.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%02d", int64(a)/100, int64(a)%100)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// SplitEven divides the amount among n people, rounding half-up to the
// cent. Every share is identical: the rounding remainder is NOT
// redistributed, so n shares may sum to slightly more or less than the
// original (splitting 100.00 three ways yields 33.33 each, 99.99 total).
func (a Amount) SplitEven(n int) (Amount, error) {
	if n <= 0 {
		return 0, ErrZeroPeople
	}
	if a < 0 {
		return 0, ErrNegative
	}
	c := int64(a)
	return Amount((2*c + int64(n)) / (2 * int64(n))), nil
}
