package fingerprint

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Algorithm identifies one of the fixed fingerprint configurations. The numeric
// value is the id written into compressed fingerprints.
type Algorithm int

const (
	AlgorithmTest1 Algorithm = iota
	AlgorithmTest2
	AlgorithmTest3
	AlgorithmTest4
	AlgorithmTest5

	AlgorithmDefault = AlgorithmTest2
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmTest1:
		return "test1"
	case AlgorithmTest2:
		return "test2"
	case AlgorithmTest3:
		return "test3"
	case AlgorithmTest4:
		return "test4"
	case AlgorithmTest5:
		return "test5"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// ParseAlgorithm maps a name such as "test2" or "default" to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "default" {
		return AlgorithmDefault, nil
	}
	for a := AlgorithmTest1; a <= AlgorithmTest5; a++ {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

const (
	// SampleRate is the analysis rate every stream is converted to.
	SampleRate = 11025

	DefaultFrameSize    = 4096
	DefaultFrameOverlap = DefaultFrameSize - DefaultFrameSize/3

	DefaultMinFreq = 28
	DefaultMaxFreq = 3520

	// DefaultSilenceThreshold is used by the variants that trim leading silence.
	DefaultSilenceThreshold = 50
)

var (
	ErrUnknownAlgorithm     = errors.New("unknown fingerprint algorithm")
	ErrInvalidConfiguration = errors.New("invalid fingerprint configuration")
)

// DefaultFilterCoefficients smooth chroma vectors over five frames.
var DefaultFilterCoefficients = []float64{0.25, 0.75, 1.0, 0.75, 0.25}

// Configuration is the immutable parameter set of one algorithm variant.
// Accessors return copies of slice fields.
type Configuration struct {
	id                 Algorithm
	classifiers        []Classifier
	filterCoefficients []float64
	interpolate        bool
	removeSilence      bool
	silenceThreshold   int
	frameSize          int
	frameOverlap       int
	decimation         int
	minFreq            int
	maxFreq            int
	maxFilterWidth     int
}

// NewConfiguration resolves an algorithm id to its configuration.
func NewConfiguration(alg Algorithm) (*Configuration, error) {
	c := &Configuration{
		id:                 alg,
		filterCoefficients: append([]float64(nil), DefaultFilterCoefficients...),
		frameSize:          DefaultFrameSize,
		frameOverlap:       DefaultFrameOverlap,
		minFreq:            DefaultMinFreq,
		maxFreq:            DefaultMaxFreq,
	}

	switch alg {
	case AlgorithmTest1:
		c.classifiers = classifiersTest1()
	case AlgorithmTest2:
		c.classifiers = classifiersTest2()
	case AlgorithmTest3:
		c.classifiers = classifiersTest2()
		c.interpolate = true
	case AlgorithmTest4:
		c.classifiers = classifiersTest2()
		c.removeSilence = true
		c.silenceThreshold = DefaultSilenceThreshold
	case AlgorithmTest5:
		c.classifiers = classifiersTest2()
		c.frameSize = DefaultFrameSize / 2
		c.frameOverlap = c.frameSize - c.frameSize/3
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(alg))
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	c.maxFilterWidth = maxFilterWidth(c.classifiers)
	return c, nil
}

// Custom returns a copy of c with a different classifier bank and filter.
// It is mostly useful for experiments and tests.
func (c *Configuration) Custom(classifiers []Classifier, coefficients []float64) (*Configuration, error) {
	out := *c
	out.classifiers = append([]Classifier(nil), classifiers...)
	out.filterCoefficients = append([]float64(nil), coefficients...)
	if err := out.validate(); err != nil {
		return nil, err
	}
	out.maxFilterWidth = maxFilterWidth(out.classifiers)
	return &out, nil
}

// WithDecimation returns a copy of c that averages every factor chroma
// vectors into one. A factor of 0 or 1 disables decimation.
func (c *Configuration) WithDecimation(factor int) (*Configuration, error) {
	if factor < 0 {
		return nil, fmt.Errorf("%w: negative decimation %d", ErrInvalidConfiguration, factor)
	}
	out := *c
	out.decimation = factor
	return &out, nil
}

func (c *Configuration) validate() error {
	if len(c.classifiers) == 0 || len(c.classifiers) > 16 {
		return fmt.Errorf("%w: need 1..16 classifiers, got %d", ErrInvalidConfiguration, len(c.classifiers))
	}
	if n := len(c.filterCoefficients); n == 0 || n > maxFilterLength {
		return fmt.Errorf("%w: need 1..%d filter coefficients, got %d", ErrInvalidConfiguration, maxFilterLength, n)
	}
	if c.frameSize <= 0 || c.frameOverlap < 0 || c.frameOverlap >= c.frameSize {
		return fmt.Errorf("%w: frame size %d overlap %d", ErrInvalidConfiguration, c.frameSize, c.frameOverlap)
	}
	for i, cl := range c.classifiers {
		if err := cl.Quantizer.Validate(); err != nil {
			return fmt.Errorf("classifier %d: %w", i, err)
		}
		if err := cl.Filter.Validate(); err != nil {
			return fmt.Errorf("classifier %d: %w", i, err)
		}
	}
	return nil
}

func maxFilterWidth(classifiers []Classifier) int {
	w := 0
	for _, cl := range classifiers {
		if cl.Filter.Width > w {
			w = cl.Filter.Width
		}
	}
	return w
}

func (c *Configuration) ID() Algorithm { return c.id }

func (c *Configuration) Classifiers() []Classifier {
	return append([]Classifier(nil), c.classifiers...)
}

func (c *Configuration) FilterCoefficients() []float64 {
	return append([]float64(nil), c.filterCoefficients...)
}

func (c *Configuration) Interpolate() bool     { return c.interpolate }
func (c *Configuration) RemoveSilence() bool   { return c.removeSilence }
func (c *Configuration) SilenceThreshold() int { return c.silenceThreshold }
func (c *Configuration) FrameSize() int        { return c.frameSize }
func (c *Configuration) FrameOverlap() int     { return c.frameOverlap }
func (c *Configuration) Decimation() int       { return c.decimation }
func (c *Configuration) MinFreq() int          { return c.minFreq }
func (c *Configuration) MaxFreq() int          { return c.maxFreq }
func (c *Configuration) SampleRate() int       { return SampleRate }

// MaxFilterWidth is the widest classifier rectangle in time rows.
func (c *Configuration) MaxFilterWidth() int { return c.maxFilterWidth }

// ItemDuration is the number of samples one subfingerprint advances by.
func (c *Configuration) ItemDuration() int {
	n := c.frameSize - c.frameOverlap
	if c.decimation > 1 {
		n *= c.decimation
	}
	return n
}

// ItemDurationTime is ItemDuration expressed as wall time.
func (c *Configuration) ItemDurationTime() time.Duration {
	return samplesToDuration(c.ItemDuration())
}

// Delay is the number of samples between the start of the stream and the
// point the first subfingerprint describes.
func (c *Configuration) Delay() int {
	return ((len(c.filterCoefficients)-1)+(c.maxFilterWidth-1))*c.ItemDuration() + c.frameOverlap
}

func (c *Configuration) DelayTime() time.Duration {
	return samplesToDuration(c.Delay())
}

func samplesToDuration(n int) time.Duration {
	return time.Duration(n) * time.Second / SampleRate
}
