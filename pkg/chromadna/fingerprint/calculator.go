package fingerprint

// Calculator is the last stage of the pipeline: it feeds normalized chroma
// vectors into a rolling integral image and evaluates the classifier bank
// once enough rows are available.
type Calculator struct {
	classifiers    []Classifier
	maxFilterWidth int
	image          *RollingIntegralImage
	fingerprint    []uint32
}

func NewCalculator(classifiers []Classifier) *Calculator {
	w := maxFilterWidth(classifiers)
	return &Calculator{
		classifiers:    append([]Classifier(nil), classifiers...),
		maxFilterWidth: w,
		image:          NewRollingIntegralImage(w + 1),
	}
}

func (c *Calculator) ConsumeFeatures(features []float64) {
	c.image.AddRow(features)
	if n := c.image.NumRows(); n >= c.maxFilterWidth {
		c.fingerprint = append(c.fingerprint, c.subfingerprint(n-c.maxFilterWidth))
	}
}

func (c *Calculator) subfingerprint(offset int) uint32 {
	var bits uint32
	for _, cl := range c.classifiers {
		bits = bits<<2 | GrayCode(cl.Classify(c.image, offset))
	}
	return bits
}

// Fingerprint returns a copy of the subfingerprints computed so far.
func (c *Calculator) Fingerprint() []uint32 {
	return append([]uint32(nil), c.fingerprint...)
}

// ClearFingerprint drops the accumulated subfingerprints but keeps the image.
func (c *Calculator) ClearFingerprint() {
	c.fingerprint = c.fingerprint[:0]
}

func (c *Calculator) Reset() {
	c.image.Reset()
	c.fingerprint = c.fingerprint[:0]
}
