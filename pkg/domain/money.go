package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Amount is an amount of money in cents.
//
// On the wire it is a JSON number with two decimals (e.g. 1234.50).
type Amount int64

// MaxAmountDigits is the number of whole digits an amount may have, as numeric(12, 2) stores.
const MaxAmountDigits = 10

// ParseAmount parses a decimal expression like "1234.5", "-12" or "0.07".
//
// More than two decimals, or more than MaxAmountDigits whole digits, are rejected
// rather than rounded.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount: empty")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, fmt.Errorf("amount: no digits")
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount: too many decimals: %s", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	whole = strings.TrimLeft(whole, "0")
	if MaxAmountDigits < len(whole) {
		return 0, fmt.Errorf("amount: too many digits: %s", s)
	}
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseUint(whole, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("amount: %w", err)
	}
	f, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("amount: %w", err)
	}

	cents := int64(w)*100 + int64(f)
	if neg {
		cents = -cents
	}
	return Amount(cents), nil
}

// Dollars builds an amount from whole dollars and cents.
func Dollars(dollars int64, cents int64) Amount {
	if dollars < 0 {
		return Amount(dollars*100 - cents)
	}
	return Amount(dollars*100 + cents)
}

func (a Amount) Cents() int64 {
	return int64(a)
}

// String formats as a plain decimal, "1234.50".
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Currency formats for humans, "$1,234.50".
func (a Amount) Currency() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	digits := strconv.FormatInt(v/100, 10)

	b := &strings.Builder{}
	for i, r := range digits {
		if i != 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), v%100)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	v, err := ParseAmount(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Rate is a percentage in hundredths of a percent: 4.5% is Rate(450).
type Rate int64

func ParseRate(s string) (Rate, error) {
	a, err := ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("rate: %w", err)
	}
	if a < 0 {
		return 0, fmt.Errorf("rate: negative: %s", s)
	}
	return Rate(a), nil
}

// String formats the rate as a percentage number, "4.50".
func (r Rate) String() string {
	return Amount(r).String()
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	v, err := ParseRate(string(bytes.Trim(b, `"`)))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Of computes the rate of an amount, rounding half away from zero to a cent.
func (r Rate) Of(a Amount) Amount {
	n := int64(a) * int64(r)
	const denom = 100 * 100
	q, m := n/denom, n%denom
	if m < 0 {
		m = -m
	}
	if 2*m >= denom {
		if n < 0 {
			q -= 1
		} else {
			q += 1
		}
	}
	return Amount(q)
}
