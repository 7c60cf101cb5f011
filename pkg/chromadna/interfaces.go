package chromadna

import (
	"context"

	"github.com/himanishpuri/ChromaDNA/pkg/models"
)

// Service is a fingerprint catalog: it stores fingerprints of known tracks
// and identifies query audio against them.
type Service interface {
	AddTrack(ctx context.Context, wavPath, title, artist string) (string, error)
	AddFingerprint(ctx context.Context, title, artist string, durationMs int, raw []uint32) (string, error)
	Identify(ctx context.Context, wavPath string) ([]models.MatchResult, error)
	MatchFingerprint(ctx context.Context, raw []uint32) ([]models.MatchResult, error)
	GetTrackByID(id string) (*models.Track, error)
	ListTracks() ([]models.Track, error)
	DeleteTrack(id string) error
	Close() error
}

type Storage interface {
	SaveTrack(track *models.Track) (string, error)
	GetTrackByID(id string) (*models.Track, error)
	ListTracks() ([]models.Track, error)
	DeleteTrack(id string) error
	FindTracks(hash uint32, maxDistance int) ([]models.Track, error)
	CountTracks() (int, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
