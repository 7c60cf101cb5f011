package fingerprint

import (
	"math"
	"slices"
	"testing"
)

type frameRecorder struct {
	frames [][]float64
}

func (r *frameRecorder) ConsumeFrame(power []float64) {
	r.frames = append(r.frames, slices.Clone(power))
}

func sineSamples(n int, freq, rate float64, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}
	return out
}

func TestPowerSpectrum(t *testing.T) {
	coeffs := []complex128{complex(2, 5), complex(1, 2), complex(3, 4), complex(-3, 7)}
	dst := make([]float64, 4)
	PowerSpectrum(coeffs, dst)

	// the imaginary parts at DC and Nyquist are ignored
	want := []float64{4, 5, 25, 9}
	if !slices.Equal(dst, want) {
		t.Errorf("PowerSpectrum = %v, want %v", dst, want)
	}
}

func TestFFTBackendsAgree(t *testing.T) {
	const n = 512
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = math.Sin(float64(i)*0.3) + 0.5*math.Cos(float64(i)*1.7)
	}

	godsp, err := NewFFTBackend(FFTGoDSP)
	if err != nil {
		t.Fatalf("NewFFTBackend(go-dsp) failed: %v", err)
	}
	gonum, err := NewFFTBackend(FFTGonum)
	if err != nil {
		t.Fatalf("NewFFTBackend(gonum) failed: %v", err)
	}

	a := make([]float64, n/2+1)
	b := make([]float64, n/2+1)
	PowerSpectrum(godsp.Forward(frame), a)
	PowerSpectrum(gonum.Forward(frame), b)

	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-6*math.Max(1, a[i]) {
			t.Fatalf("bin %d: go-dsp %f, gonum %f", i, a[i], b[i])
		}
	}
}

func TestNewFFTBackendUnknown(t *testing.T) {
	if _, err := NewFFTBackend("fftw"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestSpectrumPeakBin(t *testing.T) {
	rec := &frameRecorder{}
	s := NewSpectrum(DefaultFrameSize, DefaultFrameOverlap, nil, rec)

	// bin 400 of a 4096-point frame at 11025 Hz
	freq := 400 * float64(SampleRate) / DefaultFrameSize
	s.Consume(sineSamples(DefaultFrameSize, freq, SampleRate, 10000))

	if len(rec.frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(rec.frames))
	}
	power := rec.frames[0]
	if len(power) != DefaultFrameSize/2+1 {
		t.Fatalf("Expected %d bins, got %d", DefaultFrameSize/2+1, len(power))
	}

	peak := 0
	for i, v := range power {
		if v < 0 {
			t.Fatalf("bin %d is negative: %f", i, v)
		}
		if v > power[peak] {
			peak = i
		}
	}
	if peak != 400 {
		t.Errorf("Expected peak at bin 400, got %d", peak)
	}
}

func TestSpectrumFrameCount(t *testing.T) {
	rec := &frameRecorder{}
	s := NewSpectrum(DefaultFrameSize, DefaultFrameOverlap, GoDSPBackend{}, rec)

	increment := DefaultFrameSize - DefaultFrameOverlap
	n := DefaultFrameSize + 9*increment + 10
	samples := sineSamples(n, 440, SampleRate, 3000)
	for _, chunk := range partition(samples, []int{1000}) {
		s.Consume(chunk)
	}

	if len(rec.frames) != 10 {
		t.Errorf("Expected 10 frames, got %d", len(rec.frames))
	}
}
