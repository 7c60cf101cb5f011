package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("invalid WAV file")

// PCM is decoded interleaved 16-bit audio.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames is the number of samples per channel.
func (p *PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// DurationMs is the length of the audio in milliseconds.
func (p *PCM) DurationMs() int {
	if p.SampleRate == 0 {
		return 0
	}
	return int(int64(p.Frames()) * 1000 / int64(p.SampleRate))
}

// ReadWAV reads an integer PCM WAV file. Samples of other bit depths are
// rescaled to 16 bits.
func ReadWAV(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeWAV(f)
}

func DecodeWAV(r io.ReadSeeker) (*PCM, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if decoder.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: audio format %d is not integer PCM", ErrInvalidWAV, decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(decoder.BitDepth)
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = toInt16(v, depth)
	}

	return &PCM{
		Samples:    samples,
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
	}, nil
}

func toInt16(v, depth int) int16 {
	switch {
	case depth == 8:
		// 8-bit WAV is unsigned
		return int16((v - 128) << 8)
	case depth > 16:
		return int16(v >> (depth - 16))
	default:
		return int16(v)
	}
}

// WriteWAV writes interleaved samples as a 16-bit PCM WAV file.
func WriteWAV(path string, pcm *PCM) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, pcm.SampleRate, 16, pcm.Channels, 1)
	data := make([]int, len(pcm.Samples))
	for i, s := range pcm.Samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: pcm.Channels,
			SampleRate:  pcm.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to close WAV encoder: %w", err)
	}
	return f.Close()
}
