package fingerprint

import "gonum.org/v1/gonum/floats"

// ChromaDecimator averages every factor consecutive vectors into one.
// An incomplete group is never emitted.
type ChromaDecimator struct {
	factor   int
	count    int
	sum      []float64
	consumer FeatureConsumer
}

func NewChromaDecimator(factor int, consumer FeatureConsumer) *ChromaDecimator {
	if factor < 1 {
		factor = 1
	}
	return &ChromaDecimator{
		factor:   factor,
		sum:      make([]float64, NumBands),
		consumer: consumer,
	}
}

func (d *ChromaDecimator) Reset() {
	d.count = 0
	clear(d.sum)
}

func (d *ChromaDecimator) ConsumeFeatures(features []float64) {
	floats.Add(d.sum, features)
	d.count++
	if d.count < d.factor {
		return
	}
	floats.Scale(1/float64(d.factor), d.sum)
	d.consumer.ConsumeFeatures(d.sum)
	d.Reset()
}
