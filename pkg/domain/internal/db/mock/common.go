package mocks

// CallLog records arguments of calls to a mocked method, in call order.
type CallLog[T any] []T

// Times is how many times the method is called.
func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

// Last returns the arguments of the latest call. ok is false when never called.
func (l CallLog[T]) Last() (args T, ok bool) {
	if len(l) == 0 {
		return args, false
	}
	return l[len(l)-1], true
}
