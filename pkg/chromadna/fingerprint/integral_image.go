package fingerprint

import "fmt"

// RollingIntegralImage is a 2D prefix sum over a stream of rows that keeps
// only the most recent rows in a fixed ring.
type RollingIntegralImage struct {
	maxRows    int
	numColumns int
	numRows    int
	data       []float64
}

func NewRollingIntegralImage(maxRows int) *RollingIntegralImage {
	if maxRows <= 0 {
		panic(fmt.Sprintf("fingerprint: integral image needs a positive capacity, got %d", maxRows))
	}
	return &RollingIntegralImage{maxRows: maxRows}
}

func (img *RollingIntegralImage) NumRows() int    { return img.numRows }
func (img *RollingIntegralImage) NumColumns() int { return img.numColumns }
func (img *RollingIntegralImage) Capacity() int   { return img.maxRows }

func (img *RollingIntegralImage) Reset() {
	img.numRows = 0
	img.numColumns = 0
	img.data = img.data[:0]
}

// AddRow appends a row. All rows must have the same number of columns.
func (img *RollingIntegralImage) AddRow(row []float64) {
	if img.numColumns == 0 {
		img.numColumns = len(row)
		if cap(img.data) >= img.maxRows*img.numColumns {
			img.data = img.data[:img.maxRows*img.numColumns]
		} else {
			img.data = make([]float64, img.maxRows*img.numColumns)
		}
	}
	if len(row) != img.numColumns {
		panic(fmt.Sprintf("fingerprint: row has %d columns, image has %d", len(row), img.numColumns))
	}

	cur := img.slot(img.numRows)
	sum := 0.0
	for i, v := range row {
		sum += v
		cur[i] = sum
	}
	if img.numRows > 0 {
		prev := img.slot(img.numRows - 1)
		for i := range cur {
			cur[i] += prev[i]
		}
	}
	img.numRows++
}

// Area sums rows [r1, r2) and columns [c1, c2).
func (img *RollingIntegralImage) Area(r1, c1, r2, c2 int) float64 {
	if r1 == r2 || c1 == c2 {
		return 0
	}

	if r1 == 0 {
		row := img.row(r2 - 1)
		if c1 == 0 {
			return row[c2-1]
		}
		return row[c2-1] - row[c1-1]
	}

	row1 := img.row(r1 - 1)
	row2 := img.row(r2 - 1)
	if c1 == 0 {
		return row2[c2-1] - row1[c2-1]
	}
	return row2[c2-1] - row1[c2-1] - row2[c1-1] + row1[c1-1]
}

// row returns the cumulative row i, panicking when it is not retained.
func (img *RollingIntegralImage) row(i int) []float64 {
	if i < 0 || i >= img.numRows || i < img.numRows-img.maxRows {
		panic(fmt.Sprintf("fingerprint: integral image row %d outside retained window [%d, %d)",
			i, max(0, img.numRows-img.maxRows), img.numRows))
	}
	return img.slot(i)
}

func (img *RollingIntegralImage) slot(i int) []float64 {
	off := (i % img.maxRows) * img.numColumns
	return img.data[off : off+img.numColumns]
}
