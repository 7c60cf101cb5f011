package fingerprint

import (
	"errors"
	"fmt"
)

var ErrThresholdOrder = errors.New("quantizer thresholds must be non-decreasing")

// Quantizer maps a filter response to one of four buckets.
type Quantizer struct {
	T0, T1, T2 float64
}

func NewQuantizer(t0, t1, t2 float64) (Quantizer, error) {
	q := Quantizer{T0: t0, T1: t1, T2: t2}
	if err := q.Validate(); err != nil {
		return Quantizer{}, err
	}
	return q, nil
}

func (q Quantizer) Validate() error {
	if q.T0 > q.T1 || q.T1 > q.T2 {
		return fmt.Errorf("%w: %g, %g, %g", ErrThresholdOrder, q.T0, q.T1, q.T2)
	}
	return nil
}

func (q Quantizer) Quantize(v float64) int {
	if v < q.T1 {
		if v < q.T0 {
			return 0
		}
		return 1
	}
	if v < q.T2 {
		return 2
	}
	return 3
}
