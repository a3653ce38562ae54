package errors_test

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	xe "github.com/opre/ops/pkg/errors"
)

type myErr struct{}

func (myErr) Error() string {
	return "error type for test"
}

func createError(message string) error {
	return xe.New(message)
}

func wrapInHelper(err error) error {
	return xe.WrapAsOuter(err, 1)
}

func TestLocatedError(t *testing.T) {
	t.Run("it knows location where it is created.", func(t *testing.T) {
		testee := createError("test error")
		errMessage := testee.Error()

		_, thisFile, _, _ := runtime.Caller(0)

		if !strings.Contains(errMessage, "createError") {
			t.Errorf("it does not know function name: %s", errMessage)
		}
		if !strings.Contains(errMessage, thisFile) {
			t.Errorf("it does not know file (%s): %s", thisFile, errMessage)
		}
	})

	t.Run("it supports errors protocol", func(t *testing.T) {
		root := myErr{}

		err := xe.Wrap(fmt.Errorf("%w", fmt.Errorf("%w", root)))

		if !errors.Is(err, root) {
			t.Error("it does not support unwrapping.")
		}
	})

	t.Run("wrapping nil gives nil", func(t *testing.T) {
		if err := xe.Wrap(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := xe.WrapWithNote("note", nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("it carries the note", func(t *testing.T) {
		err := xe.WrapWithNote("loading CAN", myErr{})
		if !strings.Contains(err.Error(), "(loading CAN)") {
			t.Errorf("note is missing: %s", err)
		}
	})

	t.Run("WrapAsOuter points to the caller of the helper", func(t *testing.T) {
		err := wrapInHelper(myErr{})

		located := new(xe.Located)
		if !errors.As(err, &located) {
			t.Fatalf("not a located error: %v", err)
		}
		if !strings.HasSuffix(located.Func(), "TestLocatedError.func5") {
			t.Errorf("unexpected function: %s", located.Func())
		}
	})
}
