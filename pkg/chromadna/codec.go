package chromadna

import (
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/codec"
	"github.com/himanishpuri/ChromaDNA/pkg/chromadna/matcher"
)

// Compress packs a raw fingerprint into the binary wire format.
func Compress(fp []uint32, alg Algorithm) []byte {
	return codec.Compress(fp, int(alg))
}

// Decompress reverses Compress. Malformed input returns
// codec.ErrInvalidFingerprint.
func Decompress(data []byte) ([]uint32, Algorithm, error) {
	fp, alg, err := codec.Decompress(data)
	return fp, Algorithm(alg), err
}

// Encode compresses fp and encodes it as URL-safe base64.
func Encode(fp []uint32, alg Algorithm) string {
	return codec.Encode(fp, int(alg))
}

func Decode(s string) ([]uint32, Algorithm, error) {
	fp, alg, err := codec.Decode(s)
	return fp, Algorithm(alg), err
}

// Hash returns the 32-bit similarity hash of fp.
func Hash(fp []uint32) uint32 {
	return codec.SimHash(fp)
}

// Match returns the similar aligned segments of a and b whose mean bit error
// is below threshold.
func Match(a, b []uint32, threshold float64) ([]Segment, error) {
	return matcher.Match(a, b, threshold)
}
