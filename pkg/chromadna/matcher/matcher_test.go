package matcher

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

func randomFingerprint(n int, seed uint64) []uint32 {
	rng := rand.New(rand.NewPCG(seed, 99))
	fp := make([]uint32, n)
	for i := range fp {
		fp[i] = rng.Uint32()
	}
	return fp
}

func TestMatchIdentical(t *testing.T) {
	a := randomFingerprint(200, 1)

	segments, err := Match(a, a, DefaultThreshold)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d: %+v", len(segments), segments)
	}
	s := segments[0]
	if s.PosA != 0 || s.PosB != 0 || s.Duration != 200 {
		t.Errorf("Unexpected segment %+v", s)
	}
	if s.Score > 0.01 {
		t.Errorf("Expected near-zero score, got %f", s.Score)
	}
	if s.PublicScore() != 0 {
		t.Errorf("PublicScore = %d, want 0", s.PublicScore())
	}
}

func TestMatchOffset(t *testing.T) {
	a := randomFingerprint(300, 2)
	b := a[20:]

	segments, err := Match(a, b, DefaultThreshold)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	s := segments[0]
	if s.PosA != 20 || s.PosB != 0 || s.Duration != 280 {
		t.Errorf("Unexpected segment %+v", s)
	}
}

func TestMatchSymmetry(t *testing.T) {
	a := randomFingerprint(300, 3)
	b := append(append([]uint32(nil), a[20:260]...), randomFingerprint(50, 4)...)

	ab, err := Match(a, b, DefaultThreshold)
	if err != nil {
		t.Fatalf("Match(a, b) failed: %v", err)
	}
	ba, err := Match(b, a, DefaultThreshold)
	if err != nil {
		t.Fatalf("Match(b, a) failed: %v", err)
	}

	if len(ab) == 0 || len(ab) != len(ba) {
		t.Fatalf("segment counts differ or empty: %d vs %d", len(ab), len(ba))
	}
	for i := range ab {
		x, y := ab[i], ba[i]
		if x.PosA != y.PosB || x.PosB != y.PosA || x.Duration != y.Duration || x.Score != y.Score {
			t.Errorf("segment %d: %+v is not the mirror of %+v", i, x, y)
		}
	}
}

func TestMatchTiedAlignments(t *testing.T) {
	x := randomFingerprint(40, 5)
	y := randomFingerprint(40, 6)
	xy := append(append([]uint32(nil), x...), y...)
	yx := append(append([]uint32(nil), y...), x...)

	for _, args := range [][2][]uint32{{xy, yx}, {yx, xy}} {
		segments, err := Match(args[0], args[1], DefaultThreshold)
		if err != nil {
			t.Fatalf("Match failed: %v", err)
		}
		if len(segments) != 1 {
			t.Fatalf("Expected 1 segment, got %+v", segments)
		}
		if s := segments[0]; s.PosA != 40 || s.PosB != 0 || s.Duration != 40 {
			t.Errorf("Expected the later block of the first argument, got %+v", s)
		}
	}
}

func TestMatchSplitsAtChange(t *testing.T) {
	a := randomFingerprint(200, 5)
	b := append([]uint32(nil), a...)
	for i := 100; i < 200; i++ {
		b[i] = ^a[i]
	}

	segments, err := Match(a, b, DefaultThreshold)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d: %+v", len(segments), segments)
	}
	s := segments[0]
	if s.PosA != 0 || s.PosB != 0 {
		t.Errorf("Unexpected start %+v", s)
	}
	if s.Duration < 97 || s.Duration > 103 {
		t.Errorf("Expected the segment to end near item 100, got duration %d", s.Duration)
	}
	if s.Score >= 1 {
		t.Errorf("Expected a low score, got %f", s.Score)
	}
}

func TestMatchThreshold(t *testing.T) {
	a := randomFingerprint(200, 6)
	b := append([]uint32(nil), a...)
	// flip 12 low bits everywhere; the alignment keys are untouched
	for i := range b {
		b[i] ^= 0xFFF
	}

	m := NewMatcher(DefaultThreshold)
	segments, err := m.Match(a, b)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("Expected no segments below threshold %v, got %+v", m.Threshold(), segments)
	}

	m.SetThreshold(13)
	segments, err = m.Match(a, b)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(segments) != 1 || segments[0].Duration != 200 {
		t.Errorf("Expected one full segment at threshold 13, got %+v", segments)
	}
}

func TestMatchNoCommonKeys(t *testing.T) {
	a := make([]uint32, 50)
	b := make([]uint32, 50)
	for i := range a {
		a[i] = uint32(i) << hashShift
		b[i] = uint32(i+100) << hashShift
	}
	segments, err := Match(a, b, DefaultThreshold)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if segments != nil {
		t.Errorf("Expected no segments, got %+v", segments)
	}
}

func TestMatchEmpty(t *testing.T) {
	segments, err := Match(nil, randomFingerprint(10, 7), DefaultThreshold)
	if err != nil || segments != nil {
		t.Errorf("Match(nil, b) = %v, %v", segments, err)
	}
}

func TestMatchTooLong(t *testing.T) {
	long := make([]uint32, offsetMask)
	if _, err := Match(long, []uint32{1}, DefaultThreshold); !errors.Is(err, ErrFingerprintTooLong) {
		t.Errorf("Expected ErrFingerprintTooLong, got %v", err)
	}
	if _, err := Match([]uint32{1}, long, DefaultThreshold); !errors.Is(err, ErrFingerprintTooLong) {
		t.Errorf("Expected ErrFingerprintTooLong, got %v", err)
	}
}

func TestJitterIsSmallAndDeterministic(t *testing.T) {
	for i := 0; i < 1000; i++ {
		j := jitter(i)
		if j < 0 || j >= 0.001 {
			t.Fatalf("jitter(%d) = %f out of range", i, j)
		}
		if j != jitter(i) {
			t.Fatalf("jitter(%d) is not deterministic", i)
		}
	}
}

func TestSegmentMerge(t *testing.T) {
	left := newSegment(10, 4, 30, 2.0)
	right := newSegment(40, 34, 10, 2.4)
	if !left.adjacent(right) {
		t.Fatal("Expected segments to be adjacent")
	}

	m := left.merge(right)
	if m.PosA != 10 || m.PosB != 4 || m.Duration != 40 {
		t.Errorf("Unexpected merged segment %+v", m)
	}
	if want := (2.0*30 + 2.4*10) / 40; m.Score != want {
		t.Errorf("merged score = %f, want %f", m.Score, want)
	}
	if m.LeftScore != 2.0 || m.RightScore != 2.4 {
		t.Errorf("left/right scores = %f/%f", m.LeftScore, m.RightScore)
	}

	if left.adjacent(newSegment(41, 35, 5, 2)) {
		t.Error("segments with a gap should not be adjacent")
	}
}

func TestSegmentPublicScoreAndTimes(t *testing.T) {
	s := newSegment(2, 5, 10, 3.456)
	if s.PublicScore() != 346 {
		t.Errorf("PublicScore = %d, want 346", s.PublicScore())
	}

	posA, posB, d := s.Times(100 * time.Millisecond)
	if posA != 200*time.Millisecond || posB != 500*time.Millisecond || d != time.Second {
		t.Errorf("Times = %v, %v, %v", posA, posB, d)
	}
}
