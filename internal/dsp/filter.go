// Package dsp holds the small 1-D signal helpers used by the matcher.
package dsp

import "math"

// reflect maps any index onto [0, n) by mirroring at both edges, repeating
// the edge sample: ... 1 0 | 0 1 ... n-1 | n-1 n-2 ...
func reflect(i, n int) int {
	period := 2 * n
	m := i % period
	if m < 0 {
		m += period
	}
	if m < n {
		return m
	}
	return period - 1 - m
}

// BoxFilter writes the moving average of input over a window of w samples
// into output, which must have the same length. The window for sample i
// starts at i - w/2 and edges are reflected.
func BoxFilter(input, output []float64, w int) {
	n := len(input)
	if w <= 0 || n == 0 {
		copy(output, input)
		return
	}

	start := -(w / 2)
	sum := 0.0
	for k := 0; k < w; k++ {
		sum += input[reflect(start+k, n)]
	}
	fw := float64(w)
	for i := 0; i < n; i++ {
		output[i] = sum / fw
		sum += input[reflect(start+i+w, n)] - input[reflect(start+i, n)]
	}
}

// GaussianFilter approximates a Gaussian blur with standard deviation sigma
// by n successive box filters.
func GaussianFilter(input []float64, sigma float64, n int) []float64 {
	wl, wu, m := boxSizes(sigma, n)

	a := append([]float64(nil), input...)
	b := make([]float64, len(input))
	for i := 0; i < n; i++ {
		w := wu
		if i < m {
			w = wl
		}
		BoxFilter(a, b, w)
		a, b = b, a
	}
	return a
}

// boxSizes returns the two odd box widths and how many passes use the
// smaller one.
func boxSizes(sigma float64, n int) (wl, wu, m int) {
	fn := float64(n)
	w := int(math.Floor(math.Sqrt(12*sigma*sigma/fn + 1)))
	wl = w
	if wl%2 == 0 {
		wl--
	}
	wu = wl + 2
	fwl := float64(wl)
	m = int(math.Round((12*sigma*sigma - fn*fwl*fwl - 4*fn*fwl - 3*fn) / (-4*fwl - 4)))
	return wl, wu, m
}

// Gradient computes central differences, one-sided at both ends. A single
// sample has a gradient of 0.
func Gradient(input []float64) []float64 {
	n := len(input)
	out := make([]float64, n)
	switch n {
	case 0:
		return out
	case 1:
		out[0] = 0
		return out
	}
	out[0] = input[1] - input[0]
	for i := 1; i < n-1; i++ {
		out[i] = (input[i+1] - input[i-1]) / 2
	}
	out[n-1] = input[n-1] - input[n-2]
	return out
}
