package failure

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// Named is an error that you can read a name from
type Named interface {
	Name() string
}

// WithStackTrace is an error that you can read a stack trace from
type WithStackTrace interface {
	Stack() string
}

type Failure interface {
	error
	Named
}

type NamedWithStackTrace interface {
	Named
	WithStackTrace
}

// Kind names a category of failure. It is comparable, so it can be used as
// a sentinel with errors.Is against any failure created from it.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

func (k Kind) Name() string {
	return string(k)
}

type namedWithStackTrace struct {
	name  string
	stack errors.StackTrace
}

func (n namedWithStackTrace) Name() string {
	return n.name
}

func (n namedWithStackTrace) Stack() string {
	return fmt.Sprintf("%+v", n.stack)
}

func NamedWithCurrentStackTrace(name string) NamedWithStackTrace {
	return namedWithStackTraceSkip(name, 3)
}

func namedWithStackTraceSkip(name string, skip int) NamedWithStackTrace {
	const depth = 32

	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])

	f := make(errors.StackTrace, n)
	for i := 0; i < n; i++ {
		f[i] = errors.Frame(pcs[i])
	}

	return namedWithStackTrace{name, f}
}

type failure struct {
	NamedWithStackTrace
	kind    Kind
	message string
	cause   error
}

func (f failure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s", f.message, f.cause.Error())
	}
	return f.message
}

func (f failure) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == f.kind
}

func (f failure) Unwrap() error {
	return f.cause
}

// New creates a failure of the given kind, capturing the stack of the
// caller.
func New(kind Kind, format string, args ...any) Failure {
	return failure{
		NamedWithStackTrace: namedWithStackTraceSkip(kind.Name(), 3),
		kind:                kind,
		message:             fmt.Sprintf(format, args...),
	}
}

// Wrap creates a failure of the given kind that has cause as its underlying
// error. The cause message is appended to the formatted message.
func Wrap(kind Kind, cause error, format string, args ...any) Failure {
	return failure{
		NamedWithStackTrace: namedWithStackTraceSkip(kind.Name(), 3),
		kind:                kind,
		message:             fmt.Sprintf(format, args...),
		cause:               cause,
	}
}
