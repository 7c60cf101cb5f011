package codec

import (
	"encoding/base64"
	"fmt"
)

// Encode compresses fp and returns it as unpadded URL-safe base64.
func Encode(fp []uint32, alg int) string {
	return base64.RawURLEncoding.EncodeToString(Compress(fp, alg))
}

// Decode reverses Encode.
func Decode(s string) ([]uint32, int, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, -1, fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}
	return Decompress(data)
}
