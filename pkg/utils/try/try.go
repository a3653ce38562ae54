package try

// Fataler is something which can stop the program or test, like *testing.T or *log.Logger.
type Fataler interface {
	Fatal(...any)
}

// Either is a result of a call: a value, or an error.
type Either[T any] interface {
	// Get returns the value and the error as they were.
	Get() (T, error)

	// OrFatal returns the value, or calls ftl.Fatal with the error.
	//
	// When ftl has "Helper()" (like *testing.T), it is called before Fatal.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value, or d when there is an error.
	OrDefault(d T) T
}

// To wraps a (value, error) pair.
//
//	conf := try.To(configs.LoadServerConfig(path)).OrFatal(logger)
func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{ok}
	}
	return tryNg[T]{ng}
}

type tryOk[T any] struct {
	value T
}

type tryNg[T any] struct {
	err error
}

func (ok tryOk[T]) Get() (T, error) {
	return ok.value, nil
}

func (ng tryNg[T]) Get() (T, error) {
	return *new(T), ng.err
}

func (ok tryOk[T]) OrDefault(T) T {
	return ok.value
}

func (ng tryNg[T]) OrDefault(d T) T {
	return d
}

func (ok tryOk[T]) OrFatal(Fataler) T {
	return ok.value
}

func (ng tryNg[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(ng.err)
	return *new(T)
}
