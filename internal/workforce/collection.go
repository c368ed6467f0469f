package workforce

import "slices"

type cloner[T any] interface {
	Clone() T
}

// collection keeps entities in insertion order. Values handed in or out are
// cloned, so callers never share memory with the stored state.
type collection[T cloner[T]] struct {
	order []string
	byID  map[string]T
}

func newCollection[T cloner[T]]() *collection[T] {
	return &collection[T]{byID: make(map[string]T)}
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.byID[id]
	if !ok {
		var zero T
		return zero, false
	}

	return v.Clone(), true
}

func (c *collection[T]) has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}

	return out
}

// each visits the stored values without cloning. fn must not modify them.
func (c *collection[T]) each(fn func(T) bool) {
	for _, id := range c.order {
		if !fn(c.byID[id]) {
			return
		}
	}
}

func (c *collection[T]) size() int {
	return len(c.order)
}

func (c *collection[T]) put(id string, v T) {
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}

	c.byID[id] = v.Clone()
}

func (c *collection[T]) remove(id string) {
	if _, ok := c.byID[id]; !ok {
		return
	}

	delete(c.byID, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
}

func (c *collection[T]) reset(items []T, id func(T) string) {
	c.order = make([]string, 0, len(items))
	c.byID = make(map[string]T, len(items))

	for _, v := range items {
		c.put(id(v), v)
	}
}
