package fingerprint

// Classifier turns one filter response into a 2-bit code.
type Classifier struct {
	Filter    Filter
	Quantizer Quantizer
}

func (c Classifier) Classify(img *RollingIntegralImage, offset int) int {
	return c.Quantizer.Quantize(c.Filter.Apply(img, offset))
}

var grayCodes = [4]uint32{0, 1, 3, 2}

// GrayCode maps a quantizer bucket to its reflected binary code.
func GrayCode(i int) uint32 {
	return grayCodes[i]
}
