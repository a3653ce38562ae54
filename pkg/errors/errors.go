// Package errors provides an error wrapper which remembers where it was wrapped.
//
//	wrapped := xe.Wrap(err)
//
// The message of `wrapped` starts with the function name, file and line of the call site,
// followed by " <- " and the message of `err`. Reading a chain of wrapped errors
// gives you a poor man's stack trace of the places which touched the error.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Located is an error annotated with its wrapping location.
type Located struct {
	file     string
	line     int
	funcname string
	note     string
	err      error
}

func (e *Located) File() string {
	return e.file
}

func (e *Located) Line() int {
	return e.line
}

func (e *Located) Func() string {
	return e.funcname
}

func (e *Located) Error() string {
	if e.note == "" {
		return fmt.Sprintf(`@ %s "%s" l%d <- %s`, e.funcname, e.file, e.line, e.err.Error())
	}
	return fmt.Sprintf(`@ %s "%s" l%d (%s) <- %s`, e.funcname, e.file, e.line, e.note, e.err.Error())
}

func (e *Located) Unwrap() error {
	return e.err
}

// New creates a new error located at the caller.
func New(text string) error {
	return locate("", errors.New(text), 1)
}

// Errorf is fmt.Errorf located at the caller. `%w` works as usual.
func Errorf(format string, args ...any) error {
	return locate("", fmt.Errorf(format, args...), 1)
}

// Wrap err with the location of the caller.
//
// Wrap(nil) is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return locate("", err, 1)
}

// WrapAsOuter wraps err with the location of the caller's caller (depth = 1),
// or further up the stack.
func WrapAsOuter(err error, depth int) error {
	if err == nil {
		return nil
	}
	return locate("", err, depth+1)
}

// WrapWithNote is Wrap with a short note describing what was going on.
func WrapWithNote(note string, err error) error {
	if err == nil {
		return nil
	}
	return locate(note, err, 1)
}

func locate(note string, err error, depth int) error {
	pc, file, line, ok := runtime.Caller(depth + 1)
	funcname := "(unknown func)"
	if !ok {
		file = "?"
		line = -1
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcname = fn.Name()
	}

	return &Located{
		funcname: funcname,
		file:     file,
		line:     line,
		note:     note,
		err:      err,
	}
}
