package fingerprint

import "gonum.org/v1/gonum/floats"

// SilenceNorm is the Euclidean norm below which a vector counts as silence.
const SilenceNorm = 0.01

// ChromaNormalizer scales each vector to unit length.
type ChromaNormalizer struct {
	consumer FeatureConsumer
}

func NewChromaNormalizer(consumer FeatureConsumer) *ChromaNormalizer {
	return &ChromaNormalizer{consumer: consumer}
}

func (n *ChromaNormalizer) Reset() {}

func (n *ChromaNormalizer) ConsumeFeatures(features []float64) {
	NormalizeVector(features)
	n.consumer.ConsumeFeatures(features)
}

// NormalizeVector scales v in place to unit Euclidean norm, or zeroes it
// when the norm is below SilenceNorm.
func NormalizeVector(v []float64) {
	norm := floats.Norm(v, 2)
	if norm < SilenceNorm {
		clear(v)
		return
	}
	floats.Scale(1/norm, v)
}
