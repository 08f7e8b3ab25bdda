// Package apperr defines the kinds of failure a run can end with.
//
// Errors are wrapped so that both the kind and the underlying cause survive,
// callers match on the kind with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork is a transport failure or a non-success HTTP status.
	ErrNetwork = errors.New("network error")
	// ErrDataShape means an upstream response no longer has the expected shape.
	ErrDataShape = errors.New("data shape error")
	// ErrPersistence is a failure reading or writing the history store.
	ErrPersistence = errors.New("persistence error")
	// ErrConfiguration is missing or invalid configuration.
	ErrConfiguration = errors.New("configuration error")
)

var kinds = []error{ErrNetwork, ErrDataShape, ErrPersistence, ErrConfiguration}

func wrap(kind error, op string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", kind, op)
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

func Network(op string, err error) error {
	return wrap(ErrNetwork, op, err)
}

func DataShape(op string, err error) error {
	return wrap(ErrDataShape, op, err)
}

func Persistence(op string, err error) error {
	return wrap(ErrPersistence, op, err)
}

func Configuration(op string, err error) error {
	return wrap(ErrConfiguration, op, err)
}

// KindOf returns the kind err was wrapped with, or nil if it has none.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
