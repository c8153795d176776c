package bay

// cached is a lazily resolved value. The zero value is unresolved, which is
// distinct from a resolved zero value.
type cached[T any] struct {
	value    T
	resolved bool
}

func (c *cached[T]) get() (T, bool) {
	return c.value, c.resolved
}

func (c *cached[T]) set(v T) {
	c.value = v
	c.resolved = true
}
