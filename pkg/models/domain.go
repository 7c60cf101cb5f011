package models

import "time"

// Track is a catalog entry holding one stored fingerprint.
type Track struct {
	ID          string    `msgpack:"id"`          // Track ID (UUID)
	Title       string    `msgpack:"title"`       // Track title
	Artist      string    `msgpack:"artist"`      // Artist name
	DurationMs  int       `msgpack:"duration_ms"` // Duration of the source audio in milliseconds
	Algorithm   int       `msgpack:"alg"`         // Algorithm id the fingerprint was computed with
	Fingerprint string    `msgpack:"fp"`          // Compressed fingerprint, URL-safe base64
	Hash        uint32    `msgpack:"hash"`        // 32-bit similarity hash of the raw fingerprint
	Items       int       `msgpack:"items"`       // Number of subfingerprints
	CreatedAt   time.Time `msgpack:"created_at"`  // When the track was first stored
}

// MatchResult is one catalog track found in a query.
type MatchResult struct {
	TrackID    string  // ID of the matched track
	Title      string  // Track title
	Artist     string  // Artist name
	Score      int     // Best segment score in hundredths of a bit
	Segments   int     // Number of matching segments
	QueryMs    int64   // Position of the longest segment in the query
	TrackMs    int64   // Position of the longest segment in the track
	OffsetMs   int64   // TrackMs - QueryMs
	MatchedMs  int64   // Total matched duration
	Confidence float64 // Matched share of the query as a percentage (0-100)
}
