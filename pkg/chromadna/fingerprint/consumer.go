package fingerprint

// NumBands is the number of pitch classes in a chroma vector.
const NumBands = 12

// FrameConsumer receives one power spectrum per analysis frame. The slice is
// reused by the producer and is only valid during the call.
type FrameConsumer interface {
	ConsumeFrame(power []float64)
}

// FeatureConsumer receives one feature vector per time step. The slice is
// reused by the producer and is only valid during the call.
type FeatureConsumer interface {
	ConsumeFeatures(features []float64)
}
