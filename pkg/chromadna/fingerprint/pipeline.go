package fingerprint

// Pipeline wires the stages from mono samples at SampleRate down to
// subfingerprints:
//
//	Spectrum -> Chroma -> ChromaFilter -> [ChromaDecimator] -> ChromaNormalizer -> Calculator
type Pipeline struct {
	config     *Configuration
	spectrum   *Spectrum
	chroma     *Chroma
	filter     *ChromaFilter
	decimator  *ChromaDecimator
	normalizer *ChromaNormalizer
	calculator *Calculator
}

func NewPipeline(config *Configuration, backend FFTBackend) *Pipeline {
	p := &Pipeline{config: config}
	p.calculator = NewCalculator(config.classifiers)
	p.normalizer = NewChromaNormalizer(p.calculator)

	var next FeatureConsumer = p.normalizer
	if config.decimation > 1 {
		p.decimator = NewChromaDecimator(config.decimation, p.normalizer)
		next = p.decimator
	}

	p.filter = NewChromaFilter(config.filterCoefficients, next)
	p.chroma = NewChroma(config.minFreq, config.maxFreq, config.frameSize, SampleRate, config.interpolate, p.filter)
	p.spectrum = NewSpectrum(config.frameSize, config.frameOverlap, backend, p.chroma)
	return p
}

func (p *Pipeline) Config() *Configuration { return p.config }

// Consume accepts mono samples at SampleRate.
func (p *Pipeline) Consume(samples []int16) {
	p.spectrum.Consume(samples)
}

func (p *Pipeline) Reset() {
	p.spectrum.Reset()
	p.chroma.Reset()
	p.filter.Reset()
	if p.decimator != nil {
		p.decimator.Reset()
	}
	p.normalizer.Reset()
	p.calculator.Reset()
}

func (p *Pipeline) Fingerprint() []uint32 { return p.calculator.Fingerprint() }

func (p *Pipeline) ClearFingerprint() { p.calculator.ClearFingerprint() }
