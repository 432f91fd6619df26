// Package result provides the two-variant outcome carried by every async
// operation: a Success holding data or an Error holding a message.
package result

import "fmt"

// UnknownError is the message used when a failure carries no text.
const UnknownError = "Unknown error"

// Result is either Success with data of type T or Error with a message.
// The zero value is an Error with an empty message.
type Result[T any] struct {
	data    T
	message string
	ok      bool
}

// Success creates a successful Result.
func Success[T any](data T) Result[T] {
	return Result[T]{data: data, ok: true}
}

// Error creates a failed Result with the given message.
func Error[T any](message string) Result[T] {
	return Result[T]{message: message}
}

// FromError creates a failed Result from err, falling back to UnknownError
// when err is nil or has no text.
func FromError[T any](err error) Result[T] {
	if err == nil || err.Error() == "" {
		return Error[T](UnknownError)
	}
	return Error[T](err.Error())
}

// IsSuccess reports whether the Result is a Success.
func (r Result[T]) IsSuccess() bool {
	return r.ok
}

// Data returns the success value, or the zero value for an Error.
func (r Result[T]) Data() T {
	return r.data
}

// Message returns the error message, or "" for a Success.
func (r Result[T]) Message() string {
	return r.message
}

// Match executes onSuccess if successful, onError otherwise.
func (r Result[T]) Match(onSuccess func(T), onError func(string)) {
	if r.ok {
		onSuccess(r.data)
	} else {
		onError(r.message)
	}
}

func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%v)", r.data)
	}
	return fmt.Sprintf("Error(%q)", r.message)
}

// Catch runs fn and converts a panic raised inside it into an Error.
func Catch[T any](fn func() Result[T]) (r Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			r = Error[T](PanicMessage(rec))
		}
	}()
	return fn()
}

// PanicMessage extracts a human message from a recovered panic value.
func PanicMessage(rec any) string {
	switch v := rec.(type) {
	case error:
		if v.Error() != "" {
			return v.Error()
		}
	case string:
		if v != "" {
			return v
		}
	case fmt.Stringer:
		if s := v.String(); s != "" {
			return s
		}
	}
	return UnknownError
}
