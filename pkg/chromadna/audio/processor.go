package audio

import (
	"errors"
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

const (
	// MinSampleRate is the lowest accepted input or target rate. Rates at or
	// below it are rejected.
	MinSampleRate = 1000

	// BufferSize is the number of mono samples staged before resampling.
	BufferSize = 32768
)

var (
	ErrInvalidChannels  = errors.New("invalid number of channels")
	ErrSampleRateTooLow = errors.New("sample rate too low")
)

// Consumer receives mono samples. The slice is only valid during the call.
type Consumer interface {
	Consume(samples []int16)
}

// flusher is implemented by resamplers that hold back a filter tail.
type flusher interface {
	Flush() ([]float64, error)
}

// Processor downmixes interleaved PCM to mono and converts it to the target
// sample rate before handing it to the consumer.
type Processor struct {
	targetRate int
	consumer   Consumer

	sampleRate int
	channels   int

	buffer    []int16
	offset    int
	pending   []int16
	resampler resampling.Resampler
	scratch   []float64
	out       []int16
}

func NewProcessor(targetRate int, consumer Consumer) *Processor {
	return &Processor{
		targetRate: targetRate,
		consumer:   consumer,
		buffer:     make([]int16, BufferSize),
	}
}

func (p *Processor) TargetRate() int { return p.targetRate }
func (p *Processor) SampleRate() int { return p.sampleRate }
func (p *Processor) Channels() int   { return p.channels }

// Reset prepares the processor for a new stream. On error the processor is
// left unconfigured and ignores input until the next successful Reset.
func (p *Processor) Reset(sampleRate, channels int) error {
	p.sampleRate, p.channels = 0, 0
	p.offset = 0
	p.pending = p.pending[:0]
	p.resampler = nil

	if channels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	if sampleRate <= MinSampleRate {
		return fmt.Errorf("%w: input rate %d Hz", ErrSampleRateTooLow, sampleRate)
	}
	if p.targetRate <= MinSampleRate {
		return fmt.Errorf("%w: target rate %d Hz", ErrSampleRateTooLow, p.targetRate)
	}

	var rs resampling.Resampler
	if sampleRate != p.targetRate {
		var err error
		rs, err = resampling.New(&resampling.Config{
			InputRate:  float64(sampleRate),
			OutputRate: float64(p.targetRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return fmt.Errorf("failed to create resampler: %w", err)
		}
	}

	p.sampleRate, p.channels = sampleRate, channels
	p.resampler = rs
	return nil
}

// Consume accepts interleaved samples in chunks of any size. A partial frame
// at the end of one call is completed by the next.
func (p *Processor) Consume(input []int16) error {
	if p.channels == 0 {
		return nil
	}
	if len(p.pending) > 0 {
		n := min(p.channels-len(p.pending), len(input))
		p.pending = append(p.pending, input[:n]...)
		input = input[n:]
		if len(p.pending) < p.channels {
			return nil
		}
		err := p.consumeFrames(p.pending)
		p.pending = p.pending[:0]
		if err != nil {
			return err
		}
	}

	whole := len(input) - len(input)%p.channels
	if err := p.consumeFrames(input[:whole]); err != nil {
		return err
	}
	p.pending = append(p.pending, input[whole:]...)
	return nil
}

func (p *Processor) consumeFrames(input []int16) error {
	frames := len(input) / p.channels
	for frames > 0 {
		n := min(frames, len(p.buffer)-p.offset)
		p.load(input[:n*p.channels])
		input = input[n*p.channels:]
		frames -= n

		if p.offset == len(p.buffer) {
			if err := p.resample(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush pushes everything still staged, including the resampler's tail. An
// incomplete frame stays pending.
func (p *Processor) Flush() error {
	if p.channels == 0 {
		return nil
	}
	if p.offset > 0 {
		if err := p.resample(); err != nil {
			return err
		}
	}
	if f, ok := any(p.resampler).(flusher); ok && p.resampler != nil {
		tail, err := f.Flush()
		if err != nil {
			return fmt.Errorf("resampler flush: %w", err)
		}
		p.emit(tail)
	}
	return nil
}

func (p *Processor) load(input []int16) {
	dst := p.buffer[p.offset:]
	switch p.channels {
	case 1:
		copy(dst, input)
	case 2:
		for i := range len(input) / 2 {
			dst[i] = int16((int(input[2*i]) + int(input[2*i+1])) / 2)
		}
	default:
		ch := p.channels
		for i := range len(input) / ch {
			sum := 0
			for _, v := range input[i*ch : i*ch+ch] {
				sum += int(v)
			}
			dst[i] = int16(sum / ch)
		}
	}
	p.offset += len(input) / p.channels
}

func (p *Processor) resample() error {
	staged := p.buffer[:p.offset]
	p.offset = 0

	if p.resampler == nil {
		p.consumer.Consume(staged)
		return nil
	}

	if cap(p.scratch) < len(staged) {
		p.scratch = make([]float64, len(staged))
	}
	in := p.scratch[:len(staged)]
	for i, v := range staged {
		in[i] = float64(v) / 32768.0
	}

	out, err := p.resampler.Process(in)
	if err != nil {
		return fmt.Errorf("resample error: %w", err)
	}
	p.emit(out)
	return nil
}

func (p *Processor) emit(samples []float64) {
	if len(samples) == 0 {
		return
	}
	if cap(p.out) < len(samples) {
		p.out = make([]int16, len(samples))
	}
	out := p.out[:len(samples)]
	for i, s := range samples {
		v := math.Round(s * 32768.0)
		out[i] = int16(max(math.MinInt16, min(math.MaxInt16, v)))
	}
	p.consumer.Consume(out)
}
