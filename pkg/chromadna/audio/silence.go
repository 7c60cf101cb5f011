package audio

import "fmt"

// SilenceWindow is the moving average length, 5 ms at 11025 Hz.
const SilenceWindow = 55

// MovingAverage keeps the integer mean of the last size values.
type MovingAverage struct {
	buf    []int
	offset int
	count  int
	sum    int
}

func NewMovingAverage(size int) *MovingAverage {
	return &MovingAverage{buf: make([]int, size)}
}

func (m *MovingAverage) Add(x int) {
	m.sum += x - m.buf[m.offset]
	m.buf[m.offset] = x
	m.offset = (m.offset + 1) % len(m.buf)
	if m.count < len(m.buf) {
		m.count++
	}
}

func (m *MovingAverage) Average() int {
	if m.count == 0 {
		return 0
	}
	return m.sum / m.count
}

func (m *MovingAverage) Reset() {
	clear(m.buf)
	m.offset, m.count, m.sum = 0, 0, 0
}

// SilenceRemover drops samples until the moving average of |sample| first
// exceeds the threshold, then forwards everything from that sample on.
type SilenceRemover struct {
	threshold int
	seeking   bool
	average   *MovingAverage
	consumer  Consumer
}

func NewSilenceRemover(threshold int, consumer Consumer) *SilenceRemover {
	return &SilenceRemover{
		threshold: threshold,
		seeking:   true,
		average:   NewMovingAverage(SilenceWindow),
		consumer:  consumer,
	}
}

func (s *SilenceRemover) Threshold() int { return s.threshold }

func (s *SilenceRemover) SetThreshold(threshold int) { s.threshold = threshold }

// Seeking reports whether the leading silence has not ended yet.
func (s *SilenceRemover) Seeking() bool { return s.seeking }

// Reset starts a new stream. Only mono input is supported.
func (s *SilenceRemover) Reset(sampleRate, channels int) {
	if channels != 1 {
		panic(fmt.Sprintf("audio: silence remover needs mono input, got %d channels", channels))
	}
	s.seeking = true
	s.average.Reset()
}

func (s *SilenceRemover) Consume(samples []int16) {
	if s.seeking {
		for i, v := range samples {
			x := int(v)
			if x < 0 {
				x = -x
			}
			s.average.Add(x)
			if s.average.Average() > s.threshold {
				s.seeking = false
				samples = samples[i:]
				break
			}
		}
		if s.seeking {
			return
		}
	}
	if len(samples) > 0 {
		s.consumer.Consume(samples)
	}
}
