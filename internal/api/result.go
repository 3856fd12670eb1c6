package api

// Result carries the outcome of an asynchronous operation: a value or an error
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful value
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps an error
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// From builds a Result from a conventional (value, error) pair
func From[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// IsOk reports whether the result holds a value
func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

// Unwrap returns the result as a (value, error) pair
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Err
}

// Map transforms a successful value. An error from f becomes the result's error.
func Map[T, U any](r Result[T], f func(T) (U, error)) Result[U] {
	if r.Err != nil {
		return Fail[U](r.Err)
	}
	return From(f(r.Value))
}

// FlatMap chains an operation that itself yields a Result
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.Err != nil {
		return Fail[U](r.Err)
	}
	return f(r.Value)
}
