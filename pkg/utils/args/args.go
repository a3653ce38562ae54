package args

import "flag"

// Adapter makes a flag.Value from a parser function.
type Adapter[T interface{ String() string }] struct {
	value  T
	parser func(string) (T, error)
	isSet  bool
}

var _ flag.Value = &Adapter[interface{ String() string }]{}

func (i *Adapter[T]) String() string {
	if i.isSet {
		return i.value.String()
	}
	return ""
}

func (i *Adapter[T]) Set(s string) error {
	v, err := i.parser(s)
	if err != nil {
		return err
	}
	i.isSet = true
	i.value = v
	return nil
}

// Value is the parsed value. It is the zero value when the flag is not given.
func (i Adapter[T]) Value() T {
	return i.value
}

func (i Adapter[T]) IsSet() bool {
	return i.isSet
}

// Or returns the parsed value, or d when the flag is not given.
func (i Adapter[T]) Or(d T) T {
	if i.isSet {
		return i.value
	}
	return d
}

func Parser[T interface{ String() string }](parser func(string) (T, error)) *Adapter[T] {
	return &Adapter[T]{parser: parser}
}
