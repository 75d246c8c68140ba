// Package result implements the success/error/loading container returned at
// every use-case boundary.
package result

import "fmt"

// Result is a sealed sum type. The only implementations are Success, Error
// and Loading; consumers branch on it with Match.
type Result[T any] interface {
	variant() string
	sealed(T)
}

// Success carries the value produced by a completed operation.
type Success[T any] struct {
	Value T
}

// Error carries a human-readable failure message and, optionally, the
// underlying error it was built from.
type Error[T any] struct {
	Message string
	Cause   error
}

// Loading marks an operation that has not produced a value yet.
type Loading[T any] struct{}

func (Success[T]) variant() string { return "success" }
func (Error[T]) variant() string   { return "error" }
func (Loading[T]) variant() string { return "loading" }

func (Success[T]) sealed(T) {}
func (Error[T]) sealed(T)   {}
func (Loading[T]) sealed(T) {}

func (e Error[T]) Error() string { return e.Message }

func (e Error[T]) Unwrap() error { return e.Cause }

// Ok wraps v in a Success.
func Ok[T any](v T) Result[T] {
	return Success[T]{Value: v}
}

// Fail builds an Error from err, keeping err's message verbatim.
func Fail[T any](err error) Result[T] {
	if err == nil {
		return Error[T]{Message: "unknown error"}
	}
	return Error[T]{Message: err.Error(), Cause: err}
}

// Failf builds an Error with a formatted message and no cause.
func Failf[T any](format string, args ...any) Result[T] {
	return Error[T]{Message: fmt.Sprintf(format, args...)}
}

// Pending returns a Loading result.
func Pending[T any]() Result[T] {
	return Loading[T]{}
}

// From converts a (value, error) pair.
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// Match dispatches on the variant of r. Every callback is required.
func Match[T, R any](r Result[T], onSuccess func(T) R, onError func(Error[T]) R, onLoading func() R) R {
	switch v := r.(type) {
	case Success[T]:
		return onSuccess(v.Value)
	case Error[T]:
		return onError(v)
	case Loading[T]:
		return onLoading()
	default:
		panic(fmt.Sprintf("result: unknown variant %T", r))
	}
}

func IsSuccess[T any](r Result[T]) bool {
	_, ok := r.(Success[T])
	return ok
}

func IsError[T any](r Result[T]) bool {
	_, ok := r.(Error[T])
	return ok
}

func IsLoading[T any](r Result[T]) bool {
	_, ok := r.(Loading[T])
	return ok
}

// Get unpacks r into the usual Go (value, error) pair. Loading yields
// ErrLoading.
func Get[T any](r Result[T]) (T, error) {
	var zero T
	switch v := r.(type) {
	case Success[T]:
		return v.Value, nil
	case Error[T]:
		return zero, v
	case Loading[T]:
		return zero, ErrLoading
	default:
		panic(fmt.Sprintf("result: unknown variant %T", r))
	}
}

// GetOrThrow returns the success value and panics on any other variant.
func GetOrThrow[T any](r Result[T]) T {
	v, err := Get(r)
	if err != nil {
		panic(err)
	}
	return v
}

// ErrorMessage returns the message of an Error, or "" for other variants.
func ErrorMessage[T any](r Result[T]) string {
	if e, ok := r.(Error[T]); ok {
		return e.Message
	}
	return ""
}

// Map transforms the success value, passing Error and Loading through.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	return Match(r,
		func(v T) Result[U] { return Ok(fn(v)) },
		func(e Error[T]) Result[U] { return Error[U]{Message: e.Message, Cause: e.Cause} },
		func() Result[U] { return Loading[U]{} },
	)
}

type loadingError struct{}

func (loadingError) Error() string { return "result is still loading" }

// ErrLoading is returned by Get for a Loading result.
var ErrLoading error = loadingError{}
