package codec

import (
	"errors"
	"fmt"
)

var ErrInvalidFingerprint = errors.New("invalid fingerprint")

// Decompress reverses Compress. On failure it returns a nil fingerprint and
// the algorithm id read from the first byte, or -1 for empty input.
func Decompress(data []byte) ([]uint32, int, error) {
	if len(data) == 0 {
		return nil, -1, fmt.Errorf("%w: empty input", ErrInvalidFingerprint)
	}
	alg := int(data[0])
	if len(data) < headerSize {
		return nil, alg, fmt.Errorf("%w: shorter than %d bytes", ErrInvalidFingerprint, headerSize)
	}

	count := int(data[1])<<16 | int(data[2])<<8 | int(data[3])
	offset := headerSize

	bits := unpackBits(data[offset:], normalBits)
	found, numExceptional := 0, 0
	if count == 0 {
		bits = bits[:0]
	}
	for i, b := range bits {
		if b == 0 {
			found++
			if found == count {
				bits = bits[:i+1]
				break
			}
		} else if b == maxNormalValue {
			numExceptional++
		}
	}
	if found != count {
		return nil, alg, fmt.Errorf("%w: not enough normal codes (%d of %d values)", ErrInvalidFingerprint, found, count)
	}

	offset += packedSize(len(bits), normalBits)
	if len(data) < offset+packedSize(numExceptional, exceptionalBits) {
		return nil, alg, fmt.Errorf("%w: not enough exceptional codes", ErrInvalidFingerprint)
	}

	if numExceptional > 0 {
		extra := unpackBits(data[offset:offset+packedSize(numExceptional, exceptionalBits)], exceptionalBits)
		j := 0
		for i, b := range bits {
			if b == maxNormalValue {
				bits[i] += extra[j]
				j++
			}
		}
	}

	fp, err := unpackValues(bits, count)
	if err != nil {
		return nil, alg, err
	}
	return fp, alg, nil
}

// unpackValues rebuilds subfingerprints from bit gaps and undoes the XOR
// delta between neighbours.
func unpackValues(bits []byte, count int) ([]uint32, error) {
	out := make([]uint32, count)
	i, last := 0, 0
	var value uint32
	for _, b := range bits {
		if b == 0 {
			if i > 0 {
				value ^= out[i-1]
			}
			out[i] = value
			value, last = 0, 0
			i++
			continue
		}
		bit := last + int(b)
		if bit > 32 {
			return nil, fmt.Errorf("%w: bit position %d out of range", ErrInvalidFingerprint, bit)
		}
		last = bit
		value |= 1 << (bit - 1)
	}
	return out, nil
}
