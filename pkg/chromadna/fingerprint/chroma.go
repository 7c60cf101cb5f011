package fingerprint

import "math"

// referenceFreq is A0 (27.5 Hz); octaves are counted from it.
const referenceFreq = 440.0 / 16.0

// Chroma folds a power spectrum into NumBands pitch classes.
type Chroma struct {
	interpolate bool
	minIndex    int
	maxIndex    int
	notes       []int
	notesFrac   []float64
	features    []float64
	consumer    FeatureConsumer
}

func NewChroma(minFreq, maxFreq, frameSize, sampleRate int, interpolate bool, consumer FeatureConsumer) *Chroma {
	c := &Chroma{
		interpolate: interpolate,
		notes:       make([]int, frameSize),
		notesFrac:   make([]float64, frameSize),
		features:    make([]float64, NumBands),
		consumer:    consumer,
	}
	c.prepareNotes(minFreq, maxFreq, frameSize, sampleRate)
	return c
}

func (c *Chroma) prepareNotes(minFreq, maxFreq, frameSize, sampleRate int) {
	c.minIndex = max(1, freqToIndex(float64(minFreq), frameSize, sampleRate))
	c.maxIndex = min(frameSize/2, freqToIndex(float64(maxFreq), frameSize, sampleRate))
	for i := c.minIndex; i < c.maxIndex; i++ {
		freq := indexToFreq(i, frameSize, sampleRate)
		octave := math.Log2(freq / referenceFreq)
		note := NumBands * (octave - math.Floor(octave))
		c.notes[i] = int(note)
		c.notesFrac[i] = note - float64(c.notes[i])
	}
}

func freqToIndex(freq float64, frameSize, sampleRate int) int {
	return int(math.Round(float64(frameSize) * freq / float64(sampleRate)))
}

func indexToFreq(i, frameSize, sampleRate int) float64 {
	return float64(i) * float64(sampleRate) / float64(frameSize)
}

func (c *Chroma) Reset() {}

func (c *Chroma) ConsumeFrame(power []float64) {
	clear(c.features)
	for i := c.minIndex; i < c.maxIndex; i++ {
		note := c.notes[i]
		energy := power[i]
		if !c.interpolate {
			c.features[note] += energy
			continue
		}

		note2 := note
		a := 1.0
		frac := c.notesFrac[i]
		if frac < 0.5 {
			note2 = (note + NumBands - 1) % NumBands
			a = 0.5 + frac
		}
		if frac > 0.5 {
			note2 = (note + 1) % NumBands
			a = 1.5 - frac
		}
		c.features[note] += energy * a
		c.features[note2] += energy * (1 - a)
	}
	c.consumer.ConsumeFeatures(c.features)
}
