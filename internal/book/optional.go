package book

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Optional[T]) IsSet() bool { return o.ok }

// Or returns the value, or def when absent.
func (o Optional[T]) Or(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

func optionalFrom[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func textFrom(p *string) Optional[string] {
	if p == nil || *p == "" {
		return None[string]()
	}
	return Some(*p)
}
