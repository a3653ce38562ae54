package matcher

import (
	"fmt"
	"time"
)

// Matcher tells whether a value read from database is expected.
type Matcher[T any] interface {
	Match(T) bool
	String() string
}

type matcherFunc[T any] struct {
	desc  string
	match func(T) bool
}

func (m matcherFunc[T]) Match(t T) bool             { return m.match(t) }
func (m matcherFunc[T]) String() string             { return m.desc }
func (m matcherFunc[T]) Format(s fmt.State, _ rune) { fmt.Fprint(s, m.desc) }

// Any matches everything, for values decided by database (ids, sequences).
func Any[T any]() Matcher[T] {
	return matcherFunc[T]{desc: "(any)", match: func(T) bool { return true }}
}

// EqEq matches values == v.
func EqEq[T comparable](v T) Matcher[T] {
	return matcherFunc[T]{desc: fmt.Sprintf("%+v", v), match: func(t T) bool { return t == v }}
}

// Between matches timestamps in [from, to].
//
// Timestamps written by database are taken with now(), so tests pin them with
// times taken before and after the operation.
func Between(from, to time.Time) Matcher[time.Time] {
	return matcherFunc[time.Time]{
		desc:  fmt.Sprintf("between %s and %s", from, to),
		match: func(t time.Time) bool { return !t.Before(from) && !t.After(to) },
	}
}
