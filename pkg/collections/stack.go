// Package collections provides small generic containers used by the heap
// traversals.
package collections

// Stack is a generic LIFO stack. The zero value is ready to use.
type Stack[T any] struct {
	data []T
}

// NewStack creates a new stack with the given capacity.
func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{
		data: make([]T, 0, capacity),
	}
}

// NewStackFrom creates a stack holding items, the last one on top. The
// stack takes ownership of the slice.
func NewStackFrom[T any](items []T) *Stack[T] {
	return &Stack[T]{data: items}
}

// Push pushes a value onto the stack.
func (s *Stack[T]) Push(v T) {
	s.data = append(s.data, v)
}

// PushAll pushes vs in order, so the last one ends on top.
func (s *Stack[T]) PushAll(vs ...T) {
	s.data = append(s.data, vs...)
}

// Pop pops a value from the stack.
func (s *Stack[T]) Pop() (T, bool) {
	if len(s.data) == 0 {
		var zero T
		return zero, false
	}
	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return v, true
}

// Peek returns the top value without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.data) == 0 {
		var zero T
		return zero, false
	}
	return s.data[len(s.data)-1], true
}

// IsEmpty returns true if the stack is empty.
func (s *Stack[T]) IsEmpty() bool {
	return len(s.data) == 0
}

// Len returns the number of items in the stack.
func (s *Stack[T]) Len() int {
	return len(s.data)
}
