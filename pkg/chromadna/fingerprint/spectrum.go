package fingerprint

import (
	"math"

	"github.com/mjibson/go-dsp/window"
)

// Spectrum frames the mono sample stream, applies a Hamming window and
// forwards the power spectrum of each frame.
type Spectrum struct {
	slicer   *Slicer
	window   []float64
	frame    []float64
	power    []float64
	backend  FFTBackend
	consumer FrameConsumer
}

func NewSpectrum(frameSize, overlap int, backend FFTBackend, consumer FrameConsumer) *Spectrum {
	if backend == nil {
		backend = GoDSPBackend{}
	}
	w := window.Hamming(frameSize)
	for i := range w {
		w[i] /= math.MaxInt16
	}
	return &Spectrum{
		slicer:   NewSlicer(frameSize, frameSize-overlap),
		window:   w,
		frame:    make([]float64, frameSize),
		power:    make([]float64, frameSize/2+1),
		backend:  backend,
		consumer: consumer,
	}
}

func (s *Spectrum) FrameSize() int { return len(s.frame) }

func (s *Spectrum) Reset() {
	s.slicer.Reset()
}

// Consume accepts mono samples at the analysis rate.
func (s *Spectrum) Consume(samples []int16) {
	s.slicer.Process(samples, s.processFrame)
}

func (s *Spectrum) processFrame(head, tail []int16) {
	i := 0
	for _, v := range head {
		s.frame[i] = float64(v) * s.window[i]
		i++
	}
	for _, v := range tail {
		s.frame[i] = float64(v) * s.window[i]
		i++
	}

	PowerSpectrum(s.backend.Forward(s.frame), s.power)
	s.consumer.ConsumeFrame(s.power)
}

// PowerSpectrum fills dst (length n/2+1) from FFT coefficients. The DC and
// Nyquist bins of a real transform carry no imaginary part.
func PowerSpectrum(coeffs []complex128, dst []float64) {
	last := len(dst) - 1
	dst[0] = real(coeffs[0]) * real(coeffs[0])
	for i := 1; i < last; i++ {
		re, im := real(coeffs[i]), imag(coeffs[i])
		dst[i] = re*re + im*im
	}
	dst[last] = real(coeffs[last]) * real(coeffs[last])
}
