// Package errors annotates errors with a message, the source location and structured [slog.Attr] so that the
// logs carry the context of a failure without each caller having to log it.
package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
)

// Re-exports of the standard library so that callers need a single errors import.
//
//nolint:gochecknoglobals // aliases of standard library functions.
var (
	Is     = stderrors.Is
	As     = stderrors.As
	Unwrap = stderrors.Unwrap
	Join   = stderrors.Join
	New    = stderrors.New
)

// sentinelError is a comparable error without source location meant for package level error values.
type sentinelError struct {
	msg string
}

func (e *sentinelError) Error() string {
	return e.msg
}

// NewSentinel creates an error value meant to be compared with [Is].
func NewSentinel(msg string) error {
	return &sentinelError{msg: msg}
}

type annotatedError struct {
	msg   string
	cause error
	attrs []slog.Attr
	file  string
	line  int
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

func (e *annotatedError) source() string {
	if e.file == "" {
		return ""
	}
	return filepath.Base(e.file) + ":" + strconv.Itoa(e.line)
}

// Wrap annotates err with msg, the caller's source location and attrs that are emitted with [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	_, file, line, _ := runtime.Caller(1)
	return &annotatedError{
		msg:   msg,
		cause: err,
		attrs: attrs,
		file:  file,
		line:  line,
	}
}

// DecoratePanic converts a recovered panic value into an error pointing at the panicking line.
// It must be called from the deferred function that recovered.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}

	err := &annotatedError{ //nolint:exhaustruct // source is resolved below.
		msg: fmt.Sprintf("panic: %v", excp),
	}
	if cause, ok := excp.(error); ok {
		err.msg = "panic"
		err.cause = cause
	}

	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic {
			err.file, err.line = frame.File, frame.Line
			break
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			break
		}
	}

	return err
}

// SlogError flattens err into an "error" group containing the message, the annotations collected through the whole
// chain and the source of the innermost annotation.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{} //nolint:exhaustruct // empty attribute is ignored by handlers.
	}

	var (
		annotations []any
		source      string
	)
	visit(err, func(e error) {
		var annotated *annotatedError
		if ae, ok := e.(*annotatedError); ok { //nolint:errorlint // walking the chain manually.
			annotated = ae
		}
		if annotated == nil {
			return
		}
		for _, attr := range annotated.attrs {
			annotations = append(annotations, attr)
		}
		if s := annotated.source(); s != "" {
			source = s
		}
	})

	args := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		args = append(args, slog.Group("annotations", annotations...))
	}
	if source != "" {
		args = append(args, slog.String("source", source))
	}
	return slog.Group("error", args...)
}

// visit walks the error tree depth first including joined errors.
func visit(err error, fn func(error)) {
	if err == nil {
		return
	}
	fn(err)
	switch e := err.(type) { //nolint:errorlint // walking the chain manually.
	case interface{ Unwrap() []error }:
		for _, child := range e.Unwrap() {
			visit(child, fn)
		}
	case interface{ Unwrap() error }:
		visit(e.Unwrap(), fn)
	}
}
