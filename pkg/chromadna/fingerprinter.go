// Package chromadna computes compact audio fingerprints from PCM streams,
// compares them, and keeps a catalog of known tracks.
package chromadna

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/audio"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/codec"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/fingerprint"
	"github.com/himanishpuri/ChromaDNA/pkg/logger"
)

// OptionSilenceThreshold is the SetOption name of the leading-silence threshold.
const OptionSilenceThreshold = "silence_threshold"

var (
	ErrNotStarted    = errors.New("fingerprinter not started")
	ErrUnknownOption = errors.New("unknown option")
)

type consumerFunc func([]int16)

func (fn consumerFunc) Consume(samples []int16) { fn(samples) }

// Fingerprinter is one fingerprinting session. Start it for a stream, Feed
// interleaved PCM, then Finish. A Fingerprinter can be restarted for the next
// stream and is not safe for concurrent use.
type Fingerprinter struct {
	config *fingerprint.Configuration
	log    Logger

	processor *audio.Processor
	silence   *audio.SilenceRemover
	trim      bool
	pipeline  *fingerprint.Pipeline

	started bool
}

func NewFingerprinter(alg Algorithm, opts ...Option) (*Fingerprinter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Algorithm = alg
	return newFingerprinter(cfg)
}

func newFingerprinter(cfg *Config) (*Fingerprinter, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	config, err := cfg.fingerprintConfig()
	if err != nil {
		log.Debugf("Rejected configuration for algorithm %d: %v", int(cfg.Algorithm), err)
		return nil, err
	}
	backend, err := fingerprint.NewFFTBackend(cfg.FFTBackend)
	if err != nil {
		log.Debugf("Rejected FFT backend %q: %v", cfg.FFTBackend, err)
		return nil, err
	}

	f := &Fingerprinter{
		config:   config,
		log:      log,
		pipeline: fingerprint.NewPipeline(config, backend),
	}
	f.silence = audio.NewSilenceRemover(config.SilenceThreshold(), f.pipeline)
	f.trim = config.RemoveSilence()
	f.processor = audio.NewProcessor(fingerprint.SampleRate, consumerFunc(f.route))

	if cfg.SilenceThreshold >= 0 {
		if err := f.SetOption(OptionSilenceThreshold, cfg.SilenceThreshold); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Fingerprinter) route(samples []int16) {
	if f.trim {
		f.silence.Consume(samples)
		return
	}
	f.pipeline.Consume(samples)
}

func (f *Fingerprinter) Algorithm() Algorithm { return f.config.ID() }

// Config returns the resolved algorithm configuration.
func (f *Fingerprinter) Config() *fingerprint.Configuration { return f.config }

// ItemDuration is the stream time covered by one subfingerprint.
func (f *Fingerprinter) ItemDuration() time.Duration { return f.config.ItemDurationTime() }

// Delay is the stream time before the first subfingerprint.
func (f *Fingerprinter) Delay() time.Duration { return f.config.DelayTime() }

// SetOption changes a session option. The only option is "silence_threshold"
// (0..32767); a positive value enables leading-silence trimming, 0 disables it.
func (f *Fingerprinter) SetOption(name string, value int) error {
	switch name {
	case OptionSilenceThreshold:
		if value < 0 || value > math.MaxInt16 {
			return fmt.Errorf("%w: %s %d out of range 0..%d", fingerprint.ErrInvalidConfiguration, name, value, math.MaxInt16)
		}
		f.silence.SetThreshold(value)
		f.trim = value > 0
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
}

// Start resets every stage for a new stream. Accumulated subfingerprints are
// dropped.
func (f *Fingerprinter) Start(sampleRate, channels int) error {
	f.started = false
	if err := f.processor.Reset(sampleRate, channels); err != nil {
		f.log.Debugf("Start(%d, %d) failed: %v", sampleRate, channels, err)
		return err
	}
	f.silence.Reset(fingerprint.SampleRate, 1)
	f.pipeline.Reset()
	f.started = true
	return nil
}

// Feed streams interleaved samples. Chunks may have any size and need not
// end on a frame boundary.
func (f *Fingerprinter) Feed(samples []int16) error {
	if !f.started {
		return ErrNotStarted
	}
	return f.processor.Consume(samples)
}

// Finish pushes the buffered audio through every stage. A partial analysis
// frame is not padded.
func (f *Fingerprinter) Finish() error {
	if !f.started {
		return ErrNotStarted
	}
	return f.processor.Flush()
}

// RawFingerprint returns a copy of the subfingerprints accumulated so far.
func (f *Fingerprinter) RawFingerprint() []uint32 { return f.pipeline.Fingerprint() }

// ClearFingerprint empties the accumulated subfingerprints but keeps the
// stream state, so consecutive fingerprints can be cut from one stream.
func (f *Fingerprinter) ClearFingerprint() { f.pipeline.ClearFingerprint() }

// Fingerprint returns the accumulated fingerprint compressed and base64
// encoded.
func (f *Fingerprinter) Fingerprint() (string, error) {
	if !f.started {
		return "", ErrNotStarted
	}
	return codec.Encode(f.pipeline.Fingerprint(), int(f.config.ID())), nil
}

// Hash returns the similarity hash of the accumulated fingerprint.
func (f *Fingerprinter) Hash() uint32 { return codec.SimHash(f.pipeline.Fingerprint()) }

// Process fingerprints a whole decoded recording, feeding it in chunks of
// chunk samples and checking ctx between them.
func (f *Fingerprinter) Process(ctx context.Context, pcm *audio.PCM, chunk int) ([]uint32, error) {
	if err := f.Start(pcm.SampleRate, pcm.Channels); err != nil {
		return nil, err
	}

	step := len(pcm.Samples)
	if chunk > 0 {
		step = max(pcm.Channels, chunk-chunk%pcm.Channels)
	}
	for start := 0; start < len(pcm.Samples); start += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := f.Feed(pcm.Samples[start:min(start+step, len(pcm.Samples))]); err != nil {
			return nil, err
		}
	}
	if err := f.Finish(); err != nil {
		return nil, err
	}
	return f.RawFingerprint(), nil
}

// FingerprintPCM fingerprints a decoded recording with a fresh session.
func FingerprintPCM(ctx context.Context, pcm *audio.PCM, alg Algorithm, opts ...Option) ([]uint32, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Algorithm = alg
	f, err := newFingerprinter(cfg)
	if err != nil {
		return nil, err
	}
	return f.Process(ctx, pcm, cfg.FeedChunk)
}
