// Package options implements the generic functional options used by the
// table, store and registry constructors.
package options

// Option configures a value of type T. Options may reject their argument by
// returning an error from apply.
type Option[T any] interface {
	apply(T) error
}

// Func is a generic functional option that wraps a function.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates an option from a function that may fail.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates an option from a function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order and stops at the first error.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

// Build copies defaults, applies opts to the copy and returns it.
//
// The defaults value is never modified, so a package can keep one shared
// default configuration and derive per-call configurations from it.
func Build[T any](defaults T, opts ...Option[*T]) (T, error) {
	cfg := defaults
	if err := Apply(&cfg, opts...); err != nil {
		var zero T
		return zero, err
	}

	return cfg, nil
}
