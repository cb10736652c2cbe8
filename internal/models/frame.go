package models

import "fmt"

// Frame is a 2D image held as a row-major float64 array. Axis 0 (rows, y)
// runs along the spatial/spectral direction of the detector, axis 1
// (columns, x) along the cross-dispersion direction.
type Frame struct {
	// Data is the pixel data in row-major order, length Width*Height
	Data []float64

	// Width is the number of columns (naxis1)
	Width int

	// Height is the number of rows (naxis2)
	Height int
}

// NewFrame allocates a zero-filled frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
	}
}

// FrameFromRows builds a frame from a slice of equal-length rows.
func FrameFromRows(rows [][]float64) (*Frame, error) {
	if len(rows) == 0 {
		return NewFrame(0, 0), nil
	}
	width := len(rows[0])
	f := NewFrame(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d samples, expected %d", y, len(row), width)
		}
		copy(f.Data[y*width:(y+1)*width], row)
	}
	return f, nil
}

// At returns the sample at column x, row y.
func (f *Frame) At(x, y int) float64 {
	return f.Data[y*f.Width+x]
}

// Set stores a sample at column x, row y.
func (f *Frame) Set(x, y int, v float64) {
	f.Data[y*f.Width+x] = v
}

// Row returns row y without copying.
func (f *Frame) Row(y int) []float64 {
	return f.Data[y*f.Width : (y+1)*f.Width]
}

// Clone returns an independent copy of the frame.
func (f *Frame) Clone() *Frame {
	out := NewFrame(f.Width, f.Height)
	copy(out.Data, f.Data)
	return out
}

// Region copies the rectangle [x1,x2) x [y1,y2) into a new frame.
// The caller is responsible for bounds; a degenerate rectangle yields
// a zero-sized frame.
func (f *Frame) Region(x1, x2, y1, y2 int) *Frame {
	out := NewFrame(x2-x1, y2-y1)
	for y := y1; y < y2; y++ {
		copy(out.Row(y-y1), f.Row(y)[x1:x2])
	}
	return out
}

// Fill sets every sample inside [x1,x2) x [y1,y2) to v.
func (f *Frame) Fill(x1, x2, y1, y2 int, v float64) {
	for y := y1; y < y2; y++ {
		row := f.Row(y)
		for x := x1; x < x2; x++ {
			row[x] = v
		}
	}
}
