package pkg

import (
	"fmt"
	"reflect"
	"strings"
)

// Error is a chain of errors, innermost first.
//
// Sentinels are single-element chains made with [MakeErrorf]; a chain built
// from one by [Error.Wrap] or [Error.Wrapf] still matches it with errors.Is.
type Error []error

// MakeError returns the chain of errs, each flattened with [UnwrapErrors].
// Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf returns a chain holding one formatted error.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the messages of the chain with ": ", innermost first.
func (e Error) Error() string {
	part := make([]string, len(e))
	for i, err := range e {
		part[i] = err.Error()
	}

	return strings.Join(part, ": ")
}

// Wrap returns e extended by errs.
func (e Error) Wrap(errs ...error) Error {
	out := make(Error, len(e), len(e)+len(errs))
	copy(out, e)

	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}

	return out
}

// Wrapf returns e extended by a formatted error.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the errors of the chain.
func (e Error) Unwrap() []error { return e }

// Is reports whether every error of the chain target is part of e.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	for _, want := range t {
		if !e.contains(want) {
			return false
		}
	}

	return true
}

func (e Error) contains(want error) bool {
	if !reflect.TypeOf(want).Comparable() {
		return false
	}

	for _, err := range e {
		if reflect.TypeOf(err).Comparable() && err == want {
			return true
		}
	}

	return false
}

// UnwrapErrors flattens the chain of err, innermost first. Multi-error
// containers contribute their members but not themselves.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	switch x := err.(type) {
	case interface{ Unwrap() []error }:
		var chain Error

		for _, member := range x.Unwrap() {
			chain = append(chain, UnwrapErrors(member)...)
		}

		return chain
	case interface{ Unwrap() error }:
		return append(UnwrapErrors(x.Unwrap()), err)
	default:
		return Error{err}
	}
}
