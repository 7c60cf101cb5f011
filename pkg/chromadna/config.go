package chromadna

import (
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/fingerprint"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/matcher"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/storage"
)

type Config struct {
	Algorithm  Algorithm
	DBPath     string
	Logger     Logger
	Storage    Storage
	FFTBackend fingerprint.FFTKind

	// SilenceThreshold overrides the algorithm's leading-silence threshold.
	// Negative keeps the algorithm default, 0 disables trimming.
	SilenceThreshold int

	// Decimation averages this many chroma vectors into one. 0 or 1 is off.
	Decimation int

	MatchThreshold  float64
	MaxHashDistance int

	// FeedChunk is how many interleaved samples are fed per call when a
	// whole recording is fingerprinted. The context is checked between chunks.
	FeedChunk int
}

type Option func(*Config)

func WithAlgorithm(alg Algorithm) Option {
	return func(c *Config) {
		c.Algorithm = alg
	}
}

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithFFTBackend(kind fingerprint.FFTKind) Option {
	return func(c *Config) {
		c.FFTBackend = kind
	}
}

func WithSilenceThreshold(threshold int) Option {
	return func(c *Config) {
		c.SilenceThreshold = threshold
	}
}

func WithDecimation(factor int) Option {
	return func(c *Config) {
		c.Decimation = factor
	}
}

func WithMatchThreshold(threshold float64) Option {
	return func(c *Config) {
		c.MatchThreshold = threshold
	}
}

// WithMaxHashDistance limits identification to tracks whose similarity hash
// differs from the query's in at most n bits. 32 compares every track.
func WithMaxHashDistance(n int) Option {
	return func(c *Config) {
		c.MaxHashDistance = n
	}
}

func WithFeedChunk(samples int) Option {
	return func(c *Config) {
		c.FeedChunk = samples
	}
}

// fingerprintConfig resolves the algorithm configuration the options select.
func (c *Config) fingerprintConfig() (*fingerprint.Configuration, error) {
	config, err := fingerprint.NewConfiguration(c.Algorithm)
	if err != nil {
		return nil, err
	}
	if c.Decimation != 0 {
		return config.WithDecimation(c.Decimation)
	}
	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		Algorithm:        AlgorithmDefault,
		DBPath:           storage.DefaultDBFile,
		FFTBackend:       fingerprint.FFTGoDSP,
		SilenceThreshold: -1,
		MatchThreshold:   matcher.DefaultThreshold,
		MaxHashDistance:  storage.MaxHashDistance,
		FeedChunk:        44100,
	}
}
