package internal

const (
	STACK_LIMIT = 256 // Maximum stack depth
)

// Stack is a bounded LIFO.
type Stack[T any] struct {
	Data []T
}

// Push adds a value, returning false when the stack is already full.
func (s *Stack[T]) Push(value T) (ok bool) {
	if s.Full() {
		return false
	}
	s.Data = append(s.Data, value)
	return true
}

func (s *Stack[T]) Pop() (value T, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *Stack[T]) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack[T]) Full() bool {
	return len(s.Data) >= STACK_LIMIT
}

func (s *Stack[T]) Len() int {
	return len(s.Data)
}

func (s *Stack[T]) Peek() (value T, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack[T]) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
