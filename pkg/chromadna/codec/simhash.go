package codec

import "math/bits"

// SimHash reduces a fingerprint to one 32-bit value: bit b is set when it is
// set in more than half of the subfingerprints.
func SimHash(fp []uint32) uint32 {
	var votes [32]int
	for _, x := range fp {
		for b := range votes {
			if x>>b&1 != 0 {
				votes[b]++
			} else {
				votes[b]--
			}
		}
	}

	var hash uint32
	for b, v := range votes {
		if v > 0 {
			hash |= 1 << b
		}
	}
	return hash
}

// HashDistance is the number of differing bits between two hashes.
func HashDistance(a, b uint32) int {
	return bits.OnesCount32(a ^ b)
}
