package chromadna

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/fingerprint"
)

// FileConfig is the YAML form of the catalog options. Unset fields keep
// their defaults.
type FileConfig struct {
	Algorithm        string   `yaml:"algorithm"`
	Storage          string   `yaml:"storage"` // "sqlite" (default) or "badger"
	DBPath           string   `yaml:"db_path"`
	BadgerDir        string   `yaml:"badger_dir"` // empty keeps the badger catalog in memory
	FFTBackend       string   `yaml:"fft_backend"`
	SilenceThreshold *int     `yaml:"silence_threshold"`
	Decimation       int      `yaml:"decimation"`
	MatchThreshold   *float64 `yaml:"match_threshold"`
	MaxHashDistance  *int     `yaml:"max_hash_distance"`
	FeedChunk        int      `yaml:"feed_chunk"`
}

// LoadConfigFile reads a YAML catalog configuration.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

// Options converts the file settings to options. A badger catalog is opened
// here, so the caller owns it through the Service it builds.
func (fc *FileConfig) Options() ([]Option, error) {
	var opts []Option

	if fc.Algorithm != "" {
		alg, err := fingerprint.ParseAlgorithm(fc.Algorithm)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAlgorithm(alg))
	}
	if fc.DBPath != "" {
		opts = append(opts, WithDBPath(fc.DBPath))
	}
	if fc.FFTBackend != "" {
		opts = append(opts, WithFFTBackend(fingerprint.FFTKind(fc.FFTBackend)))
	}
	if fc.SilenceThreshold != nil {
		opts = append(opts, WithSilenceThreshold(*fc.SilenceThreshold))
	}
	if fc.Decimation != 0 {
		opts = append(opts, WithDecimation(fc.Decimation))
	}
	if fc.MatchThreshold != nil {
		opts = append(opts, WithMatchThreshold(*fc.MatchThreshold))
	}
	if fc.MaxHashDistance != nil {
		opts = append(opts, WithMaxHashDistance(*fc.MaxHashDistance))
	}
	if fc.FeedChunk > 0 {
		opts = append(opts, WithFeedChunk(fc.FeedChunk))
	}

	switch fc.Storage {
	case "", "sqlite":
	case "badger":
		kv, err := NewBadgerStorage(fc.BadgerDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		opts = append(opts, WithStorage(kv))
	default:
		return nil, fmt.Errorf("unknown storage %q", fc.Storage)
	}
	return opts, nil
}
