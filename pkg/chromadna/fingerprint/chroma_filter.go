package fingerprint

import "gonum.org/v1/gonum/floats"

const maxFilterLength = 8

// ChromaFilter is a FIR filter over consecutive chroma vectors. The first
// output is produced once len(coefficients) vectors have been seen.
type ChromaFilter struct {
	coefficients []float64
	buffer       [maxFilterLength][]float64
	offset       int
	size         int
	result       []float64
	consumer     FeatureConsumer
}

func NewChromaFilter(coefficients []float64, consumer FeatureConsumer) *ChromaFilter {
	if len(coefficients) == 0 || len(coefficients) > maxFilterLength {
		panic("fingerprint: chroma filter needs 1..8 coefficients")
	}
	f := &ChromaFilter{
		coefficients: append([]float64(nil), coefficients...),
		result:       make([]float64, NumBands),
		consumer:     consumer,
	}
	for i := range f.buffer {
		f.buffer[i] = make([]float64, NumBands)
	}
	return f
}

func (f *ChromaFilter) Reset() {
	f.offset = 0
	f.size = 0
}

func (f *ChromaFilter) ConsumeFeatures(features []float64) {
	copy(f.buffer[f.offset], features)
	f.offset = (f.offset + 1) % maxFilterLength
	if f.size < len(f.coefficients)-1 {
		f.size++
		return
	}

	start := (f.offset + maxFilterLength - len(f.coefficients)) % maxFilterLength
	clear(f.result)
	for j, c := range f.coefficients {
		floats.AddScaled(f.result, c, f.buffer[(start+j)%maxFilterLength])
	}
	f.consumer.ConsumeFeatures(f.result)
}
