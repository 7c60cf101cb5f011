package chromadna

import (
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/audio"
)

// synthMusic renders a sequence of random three-note chords with a little
// noise. The same seed always gives the same samples.
func synthMusic(seconds float64, rate, channels int, seed uint64) []int16 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	frames := int(seconds * float64(rate))
	out := make([]int16, frames*channels)

	var freqs [3]float64
	var phases [3]float64
	noteLen := 0
	for i := 0; i < frames; i++ {
		if noteLen == 0 {
			noteLen = rate/5 + rng.IntN(rate/4)
			for j := range freqs {
				freqs[j] = 110 * math.Pow(2, float64(rng.IntN(48))/12)
			}
		}
		noteLen--

		v := 0.0
		for j := range freqs {
			phases[j] += 2 * math.Pi * freqs[j] / float64(rate)
			v += 3000 * math.Sin(phases[j])
		}
		v += 200 * (rng.Float64()*2 - 1)
		s := int16(v)
		for c := 0; c < channels; c++ {
			out[i*channels+c] = s
		}
	}
	return out
}

// stereoMusic interleaves two independent synthMusic channels.
func stereoMusic(seconds float64, rate int, left, right uint64) []int16 {
	l := synthMusic(seconds, rate, 1, left)
	r := synthMusic(seconds, rate, 1, right)
	out := make([]int16, 0, 2*len(l))
	for i := range l {
		out = append(out, l[i], r[i])
	}
	return out
}

func writeClip(t *testing.T, name string, samples []int16, rate, channels int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := audio.WriteWAV(path, &audio.PCM{Samples: samples, SampleRate: rate, Channels: channels}); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func newTestFingerprinter(t *testing.T, alg Algorithm, opts ...Option) *Fingerprinter {
	t.Helper()
	f, err := NewFingerprinter(alg, opts...)
	if err != nil {
		t.Fatalf("NewFingerprinter failed: %v", err)
	}
	return f
}

func fingerprintSamples(t *testing.T, f *Fingerprinter, samples []int16, rate, channels int) []uint32 {
	t.Helper()
	if err := f.Start(rate, channels); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := f.Feed(samples); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := f.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	return f.RawFingerprint()
}
