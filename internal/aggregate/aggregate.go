// SPDX-License-Identifier: MPL-2.0

package aggregate

import (
	"errors"
	"strings"
)

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindSingle means exactly one underlying failure, returned unwrapped.
	KindSingle
	// KindComposite means two or more failures wrapped in an *Error.
	KindComposite
)

type (
	// Kind classifies the error returned by Collect.
	Kind int

	// Result is the outcome of one fallible computation.
	Result[T any] struct {
		Value T
		Err   error
	}

	// Error is the composite failure for two or more failed items.
	// Its message is every underlying message joined by newlines and its
	// cause (Unwrap) is the first failure.
	Error struct {
		errs []error
	}
)

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// Collect partitions results. With no failures it returns every value in
// input order. With exactly one failure it returns that error as is. With
// more it returns an *Error holding all of them in input order.
func Collect[T any](results []Result[T]) ([]T, error) {
	values := make([]T, 0, len(results))
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		values = append(values, r.Value)
	}

	switch len(errs) {
	case 0:
		return values, nil
	case 1:
		return nil, errs[0]
	default:
		return nil, &Error{errs: errs}
	}
}

// CollectFunc applies fn to every item and collects the results.
func CollectFunc[S, T any](items []S, fn func(S) (T, error)) ([]T, error) {
	results := make([]Result[T], 0, len(items))
	for _, item := range items {
		v, err := fn(item)
		results = append(results, Result[T]{Value: v, Err: err})
	}
	return Collect(results)
}

// Classify reports which shape err has.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var agg *Error
	if errors.As(err, &agg) {
		return KindComposite
	}
	return KindSingle
}

// Errors returns every underlying failure of err: the failures of a
// composite, the error itself for a single failure, or nil.
func Errors(err error) []error {
	var agg *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &agg):
		return agg.Errors()
	default:
		return []error{err}
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap returns the first failure.
func (e *Error) Unwrap() error {
	return e.errs[0]
}

// Errors returns a copy of the underlying failures in encountered order.
func (e *Error) Errors() []error {
	return append([]error(nil), e.errs...)
}

// Len returns the number of underlying failures.
func (e *Error) Len() int {
	return len(e.errs)
}
