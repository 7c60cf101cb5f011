package fingerprint

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTBackend computes the forward transform of a real frame. The result holds
// at least len(frame)/2+1 coefficients and may be reused by the next call.
type FFTBackend interface {
	Forward(frame []float64) []complex128
}

// FFTKind names a built-in FFTBackend.
type FFTKind string

const (
	FFTGoDSP FFTKind = "go-dsp"
	FFTGonum FFTKind = "gonum"
)

// NewFFTBackend returns a fresh backend of the given kind. Backends keep
// scratch state and must not be shared between pipelines.
func NewFFTBackend(kind FFTKind) (FFTBackend, error) {
	switch kind {
	case FFTGoDSP, "":
		return GoDSPBackend{}, nil
	case FFTGonum:
		return &GonumBackend{}, nil
	default:
		return nil, fmt.Errorf("%w: fft backend %q", ErrInvalidConfiguration, kind)
	}
}

// GoDSPBackend uses github.com/mjibson/go-dsp/fft.
type GoDSPBackend struct{}

func (GoDSPBackend) Forward(frame []float64) []complex128 {
	return fft.FFTReal(frame)
}

// GonumBackend uses gonum's real FFT, which only computes the
// non-redundant half of the spectrum.
type GonumBackend struct {
	n      int
	fft    *fourier.FFT
	coeffs []complex128
}

func (b *GonumBackend) Forward(frame []float64) []complex128 {
	if b.fft == nil || b.n != len(frame) {
		b.n = len(frame)
		b.fft = fourier.NewFFT(b.n)
		b.coeffs = make([]complex128, b.n/2+1)
	}
	b.coeffs = b.fft.Coefficients(b.coeffs, frame)
	return b.coeffs
}
