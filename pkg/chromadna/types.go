package chromadna

import (
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/fingerprint"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/matcher"
)

// Algorithm selects one of the fixed fingerprint configurations.
type Algorithm = fingerprint.Algorithm

const (
	AlgorithmTest1   = fingerprint.AlgorithmTest1
	AlgorithmTest2   = fingerprint.AlgorithmTest2
	AlgorithmTest3   = fingerprint.AlgorithmTest3
	AlgorithmTest4   = fingerprint.AlgorithmTest4
	AlgorithmTest5   = fingerprint.AlgorithmTest5
	AlgorithmDefault = fingerprint.AlgorithmDefault
)

// Segment is an aligned similar region reported by Match.
type Segment = matcher.Segment
