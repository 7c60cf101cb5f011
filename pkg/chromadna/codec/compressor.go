// Package codec implements the compact binary form of fingerprints, its
// text encoding and the 32-bit similarity hash.
package codec

const (
	headerSize = 4

	normalBits      = 3
	exceptionalBits = 5

	// maxNormalValue is the largest gap that fits in a normal code. Larger
	// gaps store the excess as an exceptional code.
	maxNormalValue = 1<<normalBits - 1

	// MaxCount is the largest number of subfingerprints the header can hold.
	MaxCount = 1<<24 - 1
)

type compressor struct {
	normal      []byte
	exceptional []byte
}

// Compress encodes fp into the binary fingerprint format:
//
//	[alg:1][count:3 big-endian][normal codes, 3 bits each][exceptional codes, 5 bits each]
//
// Only the low byte of alg is kept and the count is truncated to 24 bits.
func Compress(fp []uint32, alg int) []byte {
	c := compressor{
		normal: make([]byte, 0, len(fp)*4),
	}
	if len(fp) > 0 {
		c.processValue(fp[0])
		for i := 1; i < len(fp); i++ {
			c.processValue(fp[i] ^ fp[i-1])
		}
	}

	n := len(fp) & MaxCount
	out := make([]byte, 0, headerSize+packedSize(len(c.normal), normalBits)+packedSize(len(c.exceptional), exceptionalBits))
	out = append(out, byte(alg), byte(n>>16), byte(n>>8), byte(n))
	out = packBits(out, c.normal, normalBits)
	out = packBits(out, c.exceptional, exceptionalBits)
	return out
}

// processValue emits the distance between consecutive set bits of x,
// counting positions from 1, followed by a 0 terminator.
func (c *compressor) processValue(x uint32) {
	bit, last := 1, 0
	for ; x != 0; x >>= 1 {
		if x&1 != 0 {
			gap := bit - last
			if gap >= maxNormalValue {
				c.normal = append(c.normal, maxNormalValue)
				c.exceptional = append(c.exceptional, byte(gap-maxNormalValue))
			} else {
				c.normal = append(c.normal, byte(gap))
			}
			last = bit
		}
		bit++
	}
	c.normal = append(c.normal, 0)
}
