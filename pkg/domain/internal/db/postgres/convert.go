package postgres

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgtype"
	"github.com/opre/ops/pkg/domain"
)

// scale of numeric(_, 2) columns. Amount (cents) and Rate (1/100 %) share it.
const scale = 2

func numericOf(v int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(v), Exp: -scale, Status: pgtype.Present}
}

// scaled reads a numeric as an integer in 1/100 units.
//
// It returns false when the numeric is NULL.
func scaled(n pgtype.Numeric) (int64, bool, error) {
	if n.Status != pgtype.Present {
		return 0, false, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.None {
		return 0, false, fmt.Errorf("numeric is not a finite number")
	}

	v := new(big.Int).Set(n.Int)
	exp := n.Exp + scale
	ten := big.NewInt(10)
	switch {
	case 0 < exp:
		v.Mul(v, new(big.Int).Exp(ten, big.NewInt(int64(exp)), nil))
	case exp < 0:
		div := new(big.Int).Exp(ten, big.NewInt(int64(-exp)), nil)
		q, r := new(big.Int).QuoRem(v, div, new(big.Int))
		// round half away from zero
		if new(big.Int).Mul(new(big.Int).Abs(r), big.NewInt(2)).Cmp(div) >= 0 {
			if v.Sign() < 0 {
				q.Sub(q, big.NewInt(1))
			} else {
				q.Add(q, big.NewInt(1))
			}
		}
		v = q
	}
	if !v.IsInt64() {
		return 0, false, fmt.Errorf("numeric %s is out of range", v)
	}
	return v.Int64(), true, nil
}

// Amount converts an amount into a numeric parameter.
func Amount(a domain.Amount) pgtype.Numeric {
	return numericOf(a.Cents())
}

// NullableAmount converts an optional amount into a numeric parameter.
func NullableAmount(a *domain.Amount) pgtype.Numeric {
	if a == nil {
		return pgtype.Numeric{Status: pgtype.Null}
	}
	return Amount(*a)
}

// AsAmount reads a not-null numeric as an amount.
func AsAmount(n pgtype.Numeric) (domain.Amount, error) {
	v, ok, err := scaled(n)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("amount is null")
	}
	return domain.Amount(v), nil
}

// AsNullableAmount reads a numeric as an optional amount.
func AsNullableAmount(n pgtype.Numeric) (*domain.Amount, error) {
	v, ok, err := scaled(n)
	if err != nil || !ok {
		return nil, err
	}
	a := domain.Amount(v)
	return &a, nil
}

func NullableRate(r *domain.Rate) pgtype.Numeric {
	if r == nil {
		return pgtype.Numeric{Status: pgtype.Null}
	}
	return numericOf(int64(*r))
}

func AsRate(n pgtype.Numeric) (domain.Rate, error) {
	v, ok, err := scaled(n)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("rate is null")
	}
	return domain.Rate(v), nil
}

func AsNullableRate(n pgtype.Numeric) (*domain.Rate, error) {
	v, ok, err := scaled(n)
	if err != nil || !ok {
		return nil, err
	}
	r := domain.Rate(v)
	return &r, nil
}

// Date converts a date into a date parameter. The zero date is NULL.
func Date(d domain.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{Status: pgtype.Null}
	}
	return pgtype.Date{Time: d.Time(), Status: pgtype.Present}
}

func NullableDate(d *domain.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{Status: pgtype.Null}
	}
	return Date(*d)
}

// AsDate reads a date. NULL is the zero date.
func AsDate(d pgtype.Date) domain.Date {
	if d.Status != pgtype.Present || d.InfinityModifier != pgtype.None {
		return domain.Date{}
	}
	return domain.DateOf(d.Time)
}

func AsNullableDate(d pgtype.Date) *domain.Date {
	if d.Status != pgtype.Present || d.InfinityModifier != pgtype.None {
		return nil
	}
	v := domain.DateOf(d.Time)
	return &v
}

// JSONB marshals v as a jsonb parameter.
func JSONB(v any) (pgtype.JSONB, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return pgtype.JSONB{}, err
	}
	return pgtype.JSONB{Bytes: b, Status: pgtype.Present}, nil
}

// FromJSONB unmarshals a jsonb column into v. NULL leaves v as it is.
func FromJSONB(j pgtype.JSONB, v any) error {
	if j.Status != pgtype.Present || len(j.Bytes) == 0 {
		return nil
	}
	return json.Unmarshal(j.Bytes, v)
}

func Roles(rs []domain.Role) []string {
	s := make([]string, 0, len(rs))
	for _, r := range rs {
		s = append(s, r.String())
	}
	return s
}

func AsRoles(s []string) ([]domain.Role, error) {
	rs := make([]domain.Role, 0, len(s))
	for _, r := range s {
		role, err := domain.AsRole(r)
		if err != nil {
			return nil, err
		}
		rs = append(rs, role)
	}
	return rs, nil
}

// Timestamp converts an optional time into a timestamptz parameter.
func Timestamp(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: *t, Status: pgtype.Present}
}
