package chromadna

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/audio"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/codec"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/matcher"
	"github.com/himanishpuri/ChromaDNA/pkg/logger"
	"github.com/himanishpuri/ChromaDNA/pkg/models"
	"github.com/himanishpuri/ChromaDNA/pkg/utils"
)

var ErrEmptyFingerprint = errors.New("empty fingerprint")

// catalogService is the default implementation of the Service interface.
type catalogService struct {
	storage Storage
	log     Logger
	config  *Config
	item    time.Duration
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	// validates the algorithm before anything is opened
	fpConfig, err := cfg.fingerprintConfig()
	if err != nil {
		return nil, err
	}

	var stor Storage
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &catalogService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
		item:    fpConfig.ItemDurationTime(),
	}, nil
}

func (s *catalogService) fingerprintFile(ctx context.Context, wavPath string) ([]uint32, *audio.PCM, error) {
	if !utils.FileExists(wavPath) {
		return nil, nil, fmt.Errorf("audio file not found: %s", wavPath)
	}
	pcm, err := audio.ReadWAV(wavPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read WAV file: %w", err)
	}
	s.log.Debugf("Read %s: %d Hz, %d channels, %s samples",
		wavPath, pcm.SampleRate, pcm.Channels, humanize.Comma(int64(len(pcm.Samples))))

	f, err := newFingerprinter(s.config)
	if err != nil {
		return nil, nil, err
	}
	raw, err := f.Process(ctx, pcm, s.config.FeedChunk)
	if err != nil {
		return nil, nil, fmt.Errorf("fingerprinting failed: %w", err)
	}
	return raw, pcm, nil
}

// AddTrack fingerprints a WAV file and stores it in the catalog.
func (s *catalogService) AddTrack(ctx context.Context, wavPath, title, artist string) (string, error) {
	s.log.Infof("Processing track: %s by %s", title, artist)

	raw, pcm, err := s.fingerprintFile(ctx, wavPath)
	if err != nil {
		return "", err
	}
	return s.AddFingerprint(ctx, title, artist, pcm.DurationMs(), raw)
}

// AddFingerprint stores an already computed raw fingerprint.
func (s *catalogService) AddFingerprint(ctx context.Context, title, artist string, durationMs int, raw []uint32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: %s by %s", ErrEmptyFingerprint, title, artist)
	}

	track := &models.Track{
		Title:       title,
		Artist:      artist,
		DurationMs:  durationMs,
		Algorithm:   int(s.config.Algorithm),
		Fingerprint: codec.Encode(raw, int(s.config.Algorithm)),
		Hash:        codec.SimHash(raw),
		Items:       len(raw),
	}
	id, err := s.storage.SaveTrack(track)
	if err != nil {
		return "", fmt.Errorf("failed to store track: %w", err)
	}

	s.log.Infof("Stored track ID=%s (%s subfingerprints, %s)",
		id, humanize.Comma(int64(len(raw))), humanize.Bytes(uint64(len(track.Fingerprint))))
	return id, nil
}

// Identify fingerprints a WAV file and matches it against the catalog.
func (s *catalogService) Identify(ctx context.Context, wavPath string) ([]models.MatchResult, error) {
	s.log.Infof("Matching audio: %s", wavPath)

	raw, _, err := s.fingerprintFile(ctx, wavPath)
	if err != nil {
		return nil, err
	}
	return s.MatchFingerprint(ctx, raw)
}

// MatchFingerprint compares a raw fingerprint with every catalog track whose
// similarity hash is close enough. Results are ordered by confidence.
func (s *catalogService) MatchFingerprint(ctx context.Context, raw []uint32) ([]models.MatchResult, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyFingerprint
	}

	candidates, err := s.storage.FindTracks(codec.SimHash(raw), s.config.MaxHashDistance)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	total, err := s.storage.CountTracks()
	if err != nil {
		return nil, fmt.Errorf("failed to count tracks: %w", err)
	}
	s.log.Infof("Comparing %s subfingerprints against %s of %s tracks",
		humanize.Comma(int64(len(raw))), humanize.Comma(int64(len(candidates))), humanize.Comma(int64(total)))

	m := matcher.NewMatcher(s.config.MatchThreshold)
	results := make([]models.MatchResult, 0)
	for _, track := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if track.Algorithm != int(s.config.Algorithm) {
			continue
		}

		fp, _, err := codec.Decode(track.Fingerprint)
		if err != nil {
			s.log.Warnf("Skipping track %s: %v", track.ID, err)
			continue
		}
		segments, err := m.Match(raw, fp)
		if err != nil {
			s.log.Warnf("Skipping track %s: %v", track.ID, err)
			continue
		}
		if len(segments) == 0 {
			continue
		}
		results = append(results, s.buildResult(track, segments, len(raw)))
	}

	slices.SortStableFunc(results, func(a, b models.MatchResult) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(a.Score, b.Score)
	})

	s.log.Infof("Returning %d matches", len(results))
	return results, nil
}

func (s *catalogService) buildResult(track models.Track, segments []Segment, queryItems int) models.MatchResult {
	matched := 0
	longest := segments[0]
	best := segments[0]
	for _, seg := range segments {
		matched += seg.Duration
		if seg.Duration > longest.Duration {
			longest = seg
		}
		if seg.Score < best.Score {
			best = seg
		}
	}

	posA, posB, _ := longest.Times(s.item)
	_, _, matchedTime := Segment{Duration: matched}.Times(s.item)

	return models.MatchResult{
		TrackID:    track.ID,
		Title:      track.Title,
		Artist:     track.Artist,
		Score:      best.PublicScore(),
		Segments:   len(segments),
		QueryMs:    posA.Milliseconds(),
		TrackMs:    posB.Milliseconds(),
		OffsetMs:   (posB - posA).Milliseconds(),
		MatchedMs:  matchedTime.Milliseconds(),
		Confidence: min(100, 100*float64(matched)/float64(queryItems)),
	}
}

func (s *catalogService) GetTrackByID(id string) (*models.Track, error) {
	return s.storage.GetTrackByID(id)
}

func (s *catalogService) ListTracks() ([]models.Track, error) {
	return s.storage.ListTracks()
}

func (s *catalogService) DeleteTrack(id string) error {
	if err := s.storage.DeleteTrack(id); err != nil {
		return err
	}
	s.log.Infof("Deleted track ID=%s", id)
	return nil
}

// Close releases all resources held by the service.
func (s *catalogService) Close() error {
	return s.storage.Close()
}
