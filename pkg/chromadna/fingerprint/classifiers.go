package fingerprint

func classifier(kind FilterKind, y, height, width int, t0, t1, t2 float64) Classifier {
	return Classifier{
		Filter:    Filter{Kind: kind, Y: y, Height: height, Width: width},
		Quantizer: Quantizer{T0: t0, T1: t1, T2: t2},
	}
}

func classifiersTest1() []Classifier {
	return []Classifier{
		classifier(FilterWhole, 0, 3, 15, 2.10543, 2.45354, 2.69414),
		classifier(FilterBandHalves, 0, 4, 14, -0.345922, 0.0463746, 0.446251),
		classifier(FilterBandHalves, 4, 4, 11, -0.392132, 0.0291077, 0.443391),
		classifier(FilterDiagonal, 0, 4, 14, -0.192851, 0.00583535, 0.204053),
		classifier(FilterTimeHalves, 8, 2, 4, -0.0771619, -0.00991999, 0.0575406),
		classifier(FilterTimeThirds, 6, 2, 15, -0.710437, -0.518954, -0.330402),
		classifier(FilterBandHalves, 9, 2, 16, -0.353724, -0.0189719, 0.289768),
		classifier(FilterDiagonal, 4, 2, 10, -0.128418, -0.0285697, 0.0591791),
		classifier(FilterDiagonal, 9, 2, 16, -0.139052, -0.0228468, 0.0879723),
		classifier(FilterTimeHalves, 1, 3, 6, -0.133562, 0.00669205, 0.155012),
		classifier(FilterDiagonal, 3, 6, 2, -0.0267, 0.00804829, 0.0459773),
		classifier(FilterTimeHalves, 8, 1, 10, -0.0972417, 0.0152227, 0.129003),
		classifier(FilterDiagonal, 4, 4, 14, -0.141434, 0.00374515, 0.149935),
		classifier(FilterTimeThirds, 4, 2, 15, -0.64035, -0.466999, -0.285493),
		classifier(FilterTimeThirds, 9, 2, 3, -0.322792, -0.254258, -0.174278),
		classifier(FilterTimeHalves, 1, 8, 4, -0.0741375, -0.00590933, 0.0600357),
	}
}

func classifiersTest2() []Classifier {
	return []Classifier{
		classifier(FilterWhole, 4, 3, 15, 1.98215, 2.35817, 2.63523),
		classifier(FilterBandThirds, 4, 6, 15, -1.03809, -0.651211, -0.282167),
		classifier(FilterBandHalves, 0, 4, 16, -0.298702, 0.119262, 0.558497),
		classifier(FilterDiagonal, 8, 2, 12, -0.105439, 0.0153946, 0.135898),
		classifier(FilterDiagonal, 4, 4, 8, -0.142891, 0.0258736, 0.200632),
		classifier(FilterBandThirds, 0, 3, 5, -0.826319, -0.590612, -0.368214),
		classifier(FilterBandHalves, 2, 2, 9, -0.557409, -0.233035, 0.0534525),
		classifier(FilterTimeHalves, 7, 3, 4, -0.0646826, 0.00620476, 0.0784847),
		classifier(FilterTimeHalves, 6, 2, 16, -0.192387, -0.029699, 0.215855),
		classifier(FilterTimeHalves, 1, 3, 2, -0.0397818, -0.00568076, 0.0292026),
		classifier(FilterTimeThirds, 10, 1, 15, -0.53823, -0.369934, -0.190235),
		classifier(FilterDiagonal, 6, 2, 10, -0.124877, 0.0296483, 0.139239),
		classifier(FilterTimeHalves, 1, 1, 14, -0.101475, 0.0225617, 0.231971),
		classifier(FilterDiagonal, 5, 6, 4, -0.0799915, -0.00729616, 0.063262),
		classifier(FilterBandHalves, 9, 2, 12, -0.272556, 0.019424, 0.302559),
		classifier(FilterDiagonal, 4, 2, 14, -0.164292, -0.0321188, 0.0846339),
	}
}
