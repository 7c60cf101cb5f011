// Package storage keeps catalog tracks in SQLite (gorm) or BadgerDB.
package storage

import (
	"errors"

	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/codec"
	"github.com/himanishpuri/ChromaDNA/pkg/models"
)

const errDBClientNil = "db client is nil"

var ErrTrackNotFound = errors.New("track not found")

// MaxHashDistance is the largest possible distance between two hashes. A
// search with this distance returns every track.
const MaxHashDistance = 32

func withinDistance(tracks []models.Track, hash uint32, maxDistance int) []models.Track {
	if maxDistance >= MaxHashDistance {
		return tracks
	}
	out := tracks[:0]
	for _, t := range tracks {
		if codec.HashDistance(t.Hash, hash) <= maxDistance {
			out = append(out, t)
		}
	}
	return out
}
