package lit

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrSyntax     = NewError("syntax error")
	ErrMismatch   = NewError("mismatch form")
	ErrEmptyPath  = NewError("empty path")
	ErrMissedArg  = NewError("missed arg")
	ErrArgName    = NewError("unallowed symbols")
	ErrNotFound   = NewError("path not found")
	ErrCycle      = NewError("cyclic reference")
	ErrDuplicate  = NewError("duplicate path")
	ErrHandler    = NewError("invalid handler")
	ErrIncomplete = NewError("incomplete expansion")
	ErrDirective  = NewError("invalid directive")
	ErrDelims     = NewError("invalid delimiters")
	ErrNoSource   = NewError("no input source configured")
	ErrNoSink     = NewError("no output sink configured")
	ErrNoFormat   = NewError("no format registry configured")
	ErrWrite      = NewError("write failed")
)

// Error represents an error with optional structured logging attributes and
// an optional source location.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	at    *location
}

type location struct {
	source string
	line   int
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
//
// The location prefix "source:line: " is added when known.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	msg := strings.Join(part, ": ")

	if e.at != nil {
		return e.at.source + ":" + strconv.Itoa(e.at.line) + ": " + msg
	}

	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel Error with the same message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.err != nil || t.msg == "" {
		return false
	}

	return t.msg == e.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.at != nil {
		attrs = append(attrs,
			slog.String("source", e.at.source),
			slog.Int("line", e.at.line),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		at:    e.at,
	}
}

// Wrapf creates a new Error wrapping a formatted message.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		at:    e.at,
	}
}

// At returns a copy of the error located at the given source line.
func (e *Error) At(source string, line int) *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs,
		at:    &location{source: source, line: line},
	}
}

// Located reports the source and line attached to the error, if any.
func (e *Error) Located() (source string, line int, ok bool) {
	if e.at == nil {
		return "", 0, false
	}

	return e.at.source, e.at.line, true
}

// locate attaches a source location to err unless it already has one.
func locate(err error, source string, line int) error {
	if err == nil || source == "" {
		return err
	}

	e := &Error{}
	if errors.As(err, &e) {
		if e.at != nil {
			return err
		}

		if e == err {
			return e.At(source, line)
		}
	}

	return (&Error{err: err}).At(source, line)
}
