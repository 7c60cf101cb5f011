package fingerprint

import "fmt"

// Slicer cuts a sample stream into windows of size samples, advancing by
// increment. A window is handed out as two contiguous pieces: samples held
// over from earlier calls and the start of the current input.
type Slicer struct {
	size      int
	increment int
	buf       []int16
}

func NewSlicer(size, increment int) *Slicer {
	if increment <= 0 || increment > size {
		panic(fmt.Sprintf("fingerprint: invalid slicer geometry size=%d increment=%d", size, increment))
	}
	return &Slicer{
		size:      size,
		increment: increment,
		buf:       make([]int16, 0, size),
	}
}

func (s *Slicer) Size() int      { return s.size }
func (s *Slicer) Increment() int { return s.increment }

// Buffered is the number of samples held for the next window.
func (s *Slicer) Buffered() int { return len(s.buf) }

func (s *Slicer) Reset() {
	s.buf = s.buf[:0]
}

// Process emits every complete window in buffered+input. len(head)+len(tail)
// is always size. Neither slice may be retained after fn returns.
func (s *Slicer) Process(input []int16, fn func(head, tail []int16)) {
	for len(s.buf)+len(input) >= s.size {
		if len(s.buf) == 0 {
			fn(input[:s.size], nil)
		} else {
			fn(s.buf, input[:s.size-len(s.buf)])
		}

		if len(s.buf) >= s.increment {
			n := copy(s.buf, s.buf[s.increment:])
			s.buf = s.buf[:n]
		} else {
			input = input[s.increment-len(s.buf):]
			s.buf = s.buf[:0]
		}
	}
	s.buf = append(s.buf, input...)
}
