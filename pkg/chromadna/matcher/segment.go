package matcher

import "time"

// Segment is a run of aligned subfingerprints. PosA and PosB are item
// indexes into the two inputs, Duration is the number of items and Score the
// mean number of differing bits per item.
type Segment struct {
	PosA     int
	PosB     int
	Duration int
	Score    float64

	// LeftScore and RightScore keep the scores of the two halves when the
	// segment was built by merging.
	LeftScore  float64
	RightScore float64
}

func newSegment(posA, posB, duration int, score float64) Segment {
	return Segment{
		PosA:       posA,
		PosB:       posB,
		Duration:   duration,
		Score:      score,
		LeftScore:  score,
		RightScore: score,
	}
}

// adjacent reports whether other starts right where s ends on both sides.
func (s Segment) adjacent(other Segment) bool {
	return s.PosA+s.Duration == other.PosA && s.PosB+s.Duration == other.PosB
}

func (s Segment) merge(other Segment) Segment {
	d := s.Duration + other.Duration
	score := (s.Score*float64(s.Duration) + other.Score*float64(other.Duration)) / float64(d)
	return Segment{
		PosA:       s.PosA,
		PosB:       s.PosB,
		Duration:   d,
		Score:      score,
		LeftScore:  s.Score,
		RightScore: other.Score,
	}
}

// PublicScore is the score scaled to an integer percentage of a bit.
func (s Segment) PublicScore() int {
	return int(s.Score*100 + 0.5)
}

// Times converts the item positions to durations, given the duration of one item.
func (s Segment) Times(item time.Duration) (posA, posB, duration time.Duration) {
	return time.Duration(s.PosA) * item, time.Duration(s.PosB) * item, time.Duration(s.Duration) * item
}
