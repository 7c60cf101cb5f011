package codec

// packedSize is the number of bytes needed for n values of width bits.
func packedSize(n, width int) int {
	return (n*width + 7) / 8
}

// unpackedSize is the number of width-bit values that fit in n bytes.
func unpackedSize(n, width int) int {
	return n * 8 / width
}

// packBits writes values into a little-endian bit stream, value i occupying
// bits [width*i, width*i+width). Values are masked to width bits.
func packBits(dst []byte, values []byte, width uint) []byte {
	mask := byte(1<<width - 1)
	start := len(dst)
	dst = append(dst, make([]byte, packedSize(len(values), int(width)))...)
	out := dst[start:]

	pos := uint(0)
	for _, v := range values {
		v &= mask
		i, shift := pos/8, pos%8
		out[i] |= v << shift
		if shift+width > 8 {
			out[i+1] |= v >> (8 - shift)
		}
		pos += width
	}
	return dst
}

// unpackBits reads every complete width-bit value from data.
func unpackBits(data []byte, width uint) []byte {
	n := unpackedSize(len(data), int(width))
	mask := uint16(1<<width - 1)
	out := make([]byte, n)

	pos := uint(0)
	for k := range out {
		i, shift := pos/8, pos%8
		word := uint16(data[i])
		if i+1 < uint(len(data)) {
			word |= uint16(data[i+1]) << 8
		}
		out[k] = byte(word >> shift & mask)
		pos += width
	}
	return out
}
