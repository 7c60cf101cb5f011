package fingerprint

import (
	"math"
	"testing"
)

func constantVector(v float64) []float64 {
	out := make([]float64, NumBands)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestChromaFilterWarmup(t *testing.T) {
	rec := &featureRecorder{}
	f := NewChromaFilter(DefaultFilterCoefficients, rec)

	for i := 0; i < 4; i++ {
		f.ConsumeFeatures(constantVector(1))
	}
	if len(rec.rows) != 0 {
		t.Fatalf("filter emitted %d rows before 5 inputs", len(rec.rows))
	}

	f.ConsumeFeatures(constantVector(1))
	if len(rec.rows) != 1 {
		t.Fatalf("Expected 1 row after 5 inputs, got %d", len(rec.rows))
	}
	// 0.25 + 0.75 + 1 + 0.75 + 0.25
	if !approxEqual(rec.rows[0], constantVector(3), 1e-12) {
		t.Errorf("Unexpected output %v", rec.rows[0])
	}
}

func TestChromaFilterCoefficientOrder(t *testing.T) {
	rec := &featureRecorder{}
	f := NewChromaFilter([]float64{1, -2, 3}, rec)

	// feed 1..12 so the ring wraps past its 8 slots
	for i := 1; i <= 12; i++ {
		f.ConsumeFeatures(constantVector(float64(i)))
	}
	if len(rec.rows) != 10 {
		t.Fatalf("Expected 10 rows, got %d", len(rec.rows))
	}
	for k, row := range rec.rows {
		// inputs t, t+1, t+2 with t = k+1
		tt := float64(k + 1)
		want := 1*tt - 2*(tt+1) + 3*(tt+2)
		if math.Abs(row[0]-want) > 1e-12 {
			t.Errorf("row %d = %f, want %f", k, row[0], want)
		}
	}
}

func TestChromaFilterSingleCoefficient(t *testing.T) {
	rec := &featureRecorder{}
	f := NewChromaFilter([]float64{2}, rec)
	f.ConsumeFeatures(constantVector(1.5))
	if len(rec.rows) != 1 || rec.rows[0][3] != 3 {
		t.Errorf("Unexpected output %v", rec.rows)
	}
}

func TestChromaFilterReset(t *testing.T) {
	rec := &featureRecorder{}
	f := NewChromaFilter([]float64{1, 1}, rec)
	f.ConsumeFeatures(constantVector(1))
	f.Reset()
	f.ConsumeFeatures(constantVector(1))
	if len(rec.rows) != 0 {
		t.Errorf("Reset should restart the warm-up, got %d rows", len(rec.rows))
	}
}

func TestChromaDecimator(t *testing.T) {
	rec := &featureRecorder{}
	d := NewChromaDecimator(3, rec)

	for i := 1; i <= 7; i++ {
		d.ConsumeFeatures(constantVector(float64(i)))
	}
	if len(rec.rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rec.rows))
	}
	if rec.rows[0][0] != 2 || rec.rows[1][0] != 5 {
		t.Errorf("Unexpected averages %v, %v", rec.rows[0][0], rec.rows[1][0])
	}
}

func TestNormalizeVector(t *testing.T) {
	v := []float64{3, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	NormalizeVector(v)
	if math.Abs(v[0]-0.6) > 1e-12 || math.Abs(v[1]-0.8) > 1e-12 {
		t.Errorf("Unexpected normalized vector %v", v)
	}

	// already unit length
	before := append([]float64(nil), v...)
	NormalizeVector(v)
	if !approxEqual(v, before, 1e-12) {
		t.Errorf("Normalizing a unit vector changed it: %v -> %v", before, v)
	}
}

func TestNormalizeVectorSilence(t *testing.T) {
	v := constantVector(0.001)
	NormalizeVector(v)
	for i, x := range v {
		if x != 0 {
			t.Errorf("element %d = %f, want 0", i, x)
		}
	}
}

func TestChromaNormalizerForwards(t *testing.T) {
	rec := &featureRecorder{}
	n := NewChromaNormalizer(rec)
	n.ConsumeFeatures(constantVector(2))
	want := constantVector(1 / math.Sqrt(NumBands))
	if !approxEqual(rec.rows[0], want, 1e-12) {
		t.Errorf("Unexpected output %v", rec.rows[0])
	}
}
