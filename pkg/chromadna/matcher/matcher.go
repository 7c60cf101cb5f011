// Package matcher finds aligned, similar regions in two raw fingerprints.
package matcher

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/OneOfOne/xxhash"
	"gonum.org/v1/gonum/stat"

	"github.com/himanishpuri/ChromaDNA/internal/dsp"
)

const (
	// AlignBits is how many top bits of a subfingerprint form the alignment key.
	AlignBits = 12

	hashShift  = 32 - AlignBits
	hashMask   = (1<<AlignBits - 1) << hashShift
	offsetMask = 1<<(32-AlignBits-1) - 1
	sourceMask = 1 << (32 - AlignBits - 1)

	// DefaultThreshold is the largest mean bit error a reported segment may have.
	DefaultThreshold = 10.0

	smoothingSigma  = 8.0
	smoothingPasses = 3
	peakThreshold   = 0.15
	mergeTolerance  = 0.7
)

var ErrFingerprintTooLong = errors.New("fingerprint too long to match")

type alignment struct {
	count  int
	offset int
}

// Matcher compares pairs of fingerprints. It reuses its scratch buffers
// between calls and is not safe for concurrent use.
type Matcher struct {
	threshold  float64
	entries    []uint32
	histogram  []int
	alignments []alignment
}

func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

func (m *Matcher) Threshold() float64 { return m.threshold }

func (m *Matcher) SetThreshold(t float64) { m.threshold = t }

// Match aligns a and b on their most common offset and returns the segments
// of that alignment whose mean bit error is below the threshold.
func (m *Matcher) Match(a, b []uint32) ([]Segment, error) {
	if len(a)+1 >= offsetMask {
		return nil, fmt.Errorf("%w: first input has %d items", ErrFingerprintTooLong, len(a))
	}
	if len(b)+1 >= offsetMask {
		return nil, fmt.Errorf("%w: second input has %d items", ErrFingerprintTooLong, len(b))
	}

	m.buildHistogram(a, b)
	m.findAlignments()
	if len(m.alignments) == 0 {
		return nil, nil
	}

	// Only the strongest alignment is examined.
	best := m.alignments[0]
	return m.segments(a, b, best.offset-len(b)), nil
}

// buildHistogram counts, for every pair of items with equal alignment keys,
// the offset that would line them up.
func (m *Matcher) buildHistogram(a, b []uint32) {
	m.entries = m.entries[:0]
	for i, x := range a {
		m.entries = append(m.entries, x>>hashShift<<hashShift|uint32(i)&offsetMask)
	}
	for i, x := range b {
		m.entries = append(m.entries, x>>hashShift<<hashShift|uint32(i)&offsetMask|sourceMask)
	}
	slices.Sort(m.entries)

	m.histogram = slices.Grow(m.histogram[:0], len(a)+len(b))[:len(a)+len(b)]
	clear(m.histogram)

	for i, e := range m.entries {
		if e&sourceMask != 0 {
			continue
		}
		hash := e & hashMask
		offA := int(e & offsetMask)
		for _, e2 := range m.entries[i+1:] {
			if e2&hashMask != hash {
				break
			}
			if e2&sourceMask != 0 {
				offB := int(e2 & offsetMask)
				m.histogram[offA+len(b)-offB]++
			}
		}
	}
}

// findAlignments collects histogram peaks with a count above one, strongest
// first.
func (m *Matcher) findAlignments() {
	m.alignments = m.alignments[:0]
	h := m.histogram
	for i, count := range h {
		if count <= 1 {
			continue
		}
		left := i == 0 || h[i-1] <= count
		right := i == len(h)-1 || h[i+1] <= count
		if left && right {
			m.alignments = append(m.alignments, alignment{count: count, offset: i})
		}
	}
	// Equal counts go to the larger offset, i.e. the later position in a.
	// Swapping the arguments can therefore pick a different alignment.
	slices.SortFunc(m.alignments, func(x, y alignment) int {
		if x.count != y.count {
			return y.count - x.count
		}
		return y.offset - x.offset
	})
}

func (m *Matcher) segments(a, b []uint32, offsetDiff int) []Segment {
	offA := max(offsetDiff, 0)
	offB := max(-offsetDiff, 0)
	size := min(len(a)-offA, len(b)-offB)
	if size <= 0 {
		return nil
	}

	counts := make([]float64, size)
	for i := range counts {
		counts[i] = float64(bits.OnesCount32(a[offA+i]^b[offB+i])) + jitter(i)
	}

	smoothed := dsp.GaussianFilter(counts, smoothingSigma, smoothingPasses)
	gradient := dsp.Gradient(smoothed)
	for i, g := range gradient {
		gradient[i] = math.Abs(g)
	}

	var peaks []int
	for i := 1; i < size-1; i++ {
		g := gradient[i]
		if g > peakThreshold && g >= gradient[i-1] && g >= gradient[i+1] {
			if len(peaks) == 0 || peaks[len(peaks)-1]+1 < i {
				peaks = append(peaks, i)
			}
		}
	}
	peaks = append(peaks, size)

	var out []Segment
	begin := 0
	for _, end := range peaks {
		score := stat.Mean(counts[begin:end], nil)
		if score < m.threshold {
			seg := newSegment(offA+begin, offB+begin, end-begin, score)
			if n := len(out); n > 0 && out[n-1].adjacent(seg) && math.Abs(out[n-1].Score-score) < mergeTolerance {
				out[n-1] = out[n-1].merge(seg)
			} else {
				out = append(out, seg)
			}
		}
		begin = end
	}
	return out
}

// jitter is a small deterministic offset that keeps the distance curve from
// having exactly flat regions. It depends only on the position so both
// argument orders see the same values.
func jitter(i int) float64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(i))
	return float64(xxhash.Checksum64(buf[:])%1000) * 1e-6
}

// Match compares a and b with a fresh Matcher.
func Match(a, b []uint32, threshold float64) ([]Segment, error) {
	return NewMatcher(threshold).Match(a, b)
}
