package fingerprint

import (
	"fmt"
	"math"
)

// FilterKind selects the rectangle shape of a Filter.
type FilterKind int

const (
	// FilterWhole compares the whole rectangle against zero.
	FilterWhole FilterKind = iota
	// FilterBandHalves compares the upper and lower halves of the band range.
	FilterBandHalves
	// FilterTimeHalves compares the later and earlier halves in time.
	FilterTimeHalves
	// FilterDiagonal compares the two diagonals of a 2x2 split.
	FilterDiagonal
	// FilterBandThirds compares the middle band third with the outer thirds.
	FilterBandThirds
	// FilterTimeThirds compares the middle time third with the outer thirds.
	FilterTimeThirds
)

// Filter is a rectangle over the feature image. Y and Height address chroma
// bands, Width is the number of time rows the rectangle spans.
type Filter struct {
	Kind   FilterKind
	Y      int
	Height int
	Width  int
}

func (f Filter) Validate() error {
	if f.Kind < FilterWhole || f.Kind > FilterTimeThirds {
		return fmt.Errorf("%w: filter kind %d", ErrInvalidConfiguration, int(f.Kind))
	}
	if f.Y < 0 || f.Height <= 0 || f.Width <= 0 || f.Y+f.Height > NumBands {
		return fmt.Errorf("%w: filter rectangle y=%d height=%d width=%d",
			ErrInvalidConfiguration, f.Y, f.Height, f.Width)
	}
	return nil
}

// Apply evaluates the filter with its rectangle starting at time row x.
func (f Filter) Apply(img *RollingIntegralImage, x int) float64 {
	y, w, h := f.Y, f.Width, f.Height

	switch f.Kind {
	case FilterWhole:
		a := img.Area(x, y, x+w, y+h)
		return subtractLog(a, 0)

	case FilterBandHalves:
		h2 := h / 2
		a := img.Area(x, y+h2, x+w, y+h)
		b := img.Area(x, y, x+w, y+h2)
		return subtractLog(a, b)

	case FilterTimeHalves:
		w2 := w / 2
		a := img.Area(x+w2, y, x+w, y+h)
		b := img.Area(x, y, x+w2, y+h)
		return subtractLog(a, b)

	case FilterDiagonal:
		w2, h2 := w/2, h/2
		a := img.Area(x, y+h2, x+w2, y+h) +
			img.Area(x+w2, y, x+w, y+h2)
		b := img.Area(x, y, x+w2, y+h2) +
			img.Area(x+w2, y+h2, x+w, y+h)
		return subtractLog(a, b)

	case FilterBandThirds:
		h3 := h / 3
		a := img.Area(x, y+h3, x+w, y+2*h3)
		b := img.Area(x, y, x+w, y+h3) +
			img.Area(x, y+2*h3, x+w, y+h)
		return subtractLog(a, b)

	case FilterTimeThirds:
		w3 := w / 3
		a := img.Area(x+w3, y, x+2*w3, y+h)
		b := img.Area(x, y, x+w3, y+h) +
			img.Area(x+2*w3, y, x+w, y+h)
		return subtractLog(a, b)
	}

	panic(fmt.Sprintf("fingerprint: unknown filter kind %d", int(f.Kind)))
}

func subtractLog(a, b float64) float64 {
	return math.Log(1+a) - math.Log(1+b)
}
