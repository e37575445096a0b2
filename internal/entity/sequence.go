package entity

// Sequence is a doubly linked ordering over arena indices. Links are stored
// one-based so that the zero value is an empty, usable sequence.
type Sequence struct {
	prev []int
	next []int
	head int
	tail int
}

// Len is the number of linked indices.
func (s *Sequence) Len() int { return len(s.next) }

// Front returns the first index, or -1 if the sequence is empty.
func (s *Sequence) Front() int { return s.head - 1 }

// Back returns the last index, or -1 if the sequence is empty.
func (s *Sequence) Back() int { return s.tail - 1 }

// Next returns the index after i, or -1 at the end.
func (s *Sequence) Next(i int) int { return s.next[i] - 1 }

// Prev returns the index before i, or -1 at the start.
func (s *Sequence) Prev(i int) int { return s.prev[i] - 1 }

// push appends a new index, which must equal the current length.
func (s *Sequence) push() int {
	i := len(s.next)
	s.prev = append(s.prev, s.tail)
	s.next = append(s.next, 0)
	if s.tail != 0 {
		s.next[s.tail-1] = i + 1
	} else {
		s.head = i + 1
	}
	s.tail = i + 1
	return i
}

func (s *Sequence) unlink(i int) {
	p, n := s.prev[i], s.next[i]
	if p != 0 {
		s.next[p-1] = n
	} else {
		s.head = n
	}
	if n != 0 {
		s.prev[n-1] = p
	} else {
		s.tail = p
	}
	s.prev[i], s.next[i] = 0, 0
}

// MoveBefore splices i out of its position and relinks it immediately
// before mark. Moving an index before itself is a no-op.
func (s *Sequence) MoveBefore(i, mark int) {
	if i == mark {
		return
	}
	s.unlink(i)
	p := s.prev[mark]
	s.prev[i] = p
	s.next[i] = mark + 1
	s.prev[mark] = i + 1
	if p != 0 {
		s.next[p-1] = i + 1
	} else {
		s.head = i + 1
	}
}

// MoveToFront relinks i as the first element.
func (s *Sequence) MoveToFront(i int) {
	if s.head == i+1 {
		return
	}
	s.MoveBefore(i, s.head-1)
}

// Indices returns the indices in sequence order.
func (s *Sequence) Indices() []int {
	out := make([]int, 0, len(s.next))
	for i := s.Front(); i >= 0; i = s.Next(i) {
		out = append(out, i)
	}
	return out
}

// Clone returns an independent copy of the sequence.
func (s Sequence) Clone() Sequence {
	return Sequence{
		prev: append([]int(nil), s.prev...),
		next: append([]int(nil), s.next...),
		head: s.head,
		tail: s.tail,
	}
}
