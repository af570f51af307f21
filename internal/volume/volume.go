// Package volume holds the float32 3D array assembled from a stack of 2D
// cross-sections, together with the transforms and statistics that operate
// on it.
//
// A Volume is stored row-major with the last axis varying fastest, so the
// sample at (i, j, k) lives at offset (i*shape[1]+j)*shape[2]+k. Right after
// assembly the shape is (height, width, depth).
package volume

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed axes, indices or inputs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShapeMismatch is returned when planes of different shapes are stacked.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// ShapeMismatchError reports the first plane whose shape differs from the
// first plane of a stack.
type ShapeMismatchError struct {
	Index    int    // position of the offending plane in the stack
	Expected [2]int // (rows, cols) of plane 0
	Got      [2]int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("plane %d has shape %dx%d, expected %dx%d",
		e.Index, e.Got[0], e.Got[1], e.Expected[0], e.Expected[1])
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// Plane is a single 2D grid of samples in row-major order.
type Plane struct {
	Rows int
	Cols int
	Data []float32
}

// Volume is a 3D float32 array.
type Volume struct {
	shape [3]int
	data  []float32
}

// New allocates a zero-filled volume.
func New(d0, d1, d2 int) *Volume {
	return &Volume{
		shape: [3]int{d0, d1, d2},
		data:  make([]float32, d0*d1*d2),
	}
}

// FromData wraps data as a volume of the given shape without copying it.
func FromData(shape [3]int, data []float32) (*Volume, error) {
	for _, n := range shape {
		if n <= 0 {
			return nil, fmt.Errorf("%w: non-positive dimension in shape %v", ErrInvalidArgument, shape)
		}
	}
	if want := shape[0] * shape[1] * shape[2]; len(data) != want {
		return nil, fmt.Errorf("%w: %d samples for shape %v (want %d)", ErrInvalidArgument, len(data), shape, want)
	}
	return &Volume{shape: shape, data: data}, nil
}

// Stack builds a (rows, cols, len(planes)) volume, placing planes[k] at
// depth index k. Every plane must share the shape of planes[0].
func Stack(planes []Plane) (*Volume, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: no planes to stack", ErrInvalidArgument)
	}
	rows, cols := planes[0].Rows, planes[0].Cols
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: plane 0 has shape %dx%d", ErrInvalidArgument, rows, cols)
	}
	for k, p := range planes {
		if p.Rows != rows || p.Cols != cols {
			return nil, &ShapeMismatchError{Index: k, Expected: [2]int{rows, cols}, Got: [2]int{p.Rows, p.Cols}}
		}
		if len(p.Data) != rows*cols {
			return nil, fmt.Errorf("%w: plane %d holds %d samples for %dx%d",
				ErrShapeMismatch, k, len(p.Data), rows, cols)
		}
	}

	depth := len(planes)
	v := New(rows, cols, depth)
	for k, p := range planes {
		for idx, s := range p.Data {
			v.data[idx*depth+k] = s
		}
	}
	return v, nil
}

// Shape returns the current dimensions.
func (v *Volume) Shape() [3]int { return v.shape }

// Depth is the size of the axis at position 2.
func (v *Volume) Depth() int { return v.shape[2] }

// Len is the total number of samples.
func (v *Volume) Len() int { return len(v.data) }

// Data exposes the backing slice. Writes through it modify the volume.
func (v *Volume) Data() []float32 { return v.data }

func (v *Volume) offset(i, j, k int) int {
	return (i*v.shape[1]+j)*v.shape[2] + k
}

// At returns the sample at (i, j, k). It panics when out of range, like
// slice indexing.
func (v *Volume) At(i, j, k int) float32 {
	return v.data[v.offset(i, j, k)]
}

// Set stores a sample at (i, j, k).
func (v *Volume) Set(i, j, k int, val float32) {
	v.data[v.offset(i, j, k)] = val
}

// Plane copies out the 2D grid at depth index k.
func (v *Volume) Plane(k int) (Plane, error) {
	if k < 0 || k >= v.shape[2] {
		return Plane{}, fmt.Errorf("%w: depth index %d outside [0, %d)", ErrInvalidArgument, k, v.shape[2])
	}
	rows, cols, depth := v.shape[0], v.shape[1], v.shape[2]
	out := make([]float32, rows*cols)
	for idx := range out {
		out[idx] = v.data[idx*depth+k]
	}
	return Plane{Rows: rows, Cols: cols, Data: out}, nil
}

// Clone returns a deep copy.
func (v *Volume) Clone() *Volume {
	data := make([]float32, len(v.data))
	copy(data, v.data)
	return &Volume{shape: v.shape, data: data}
}

// SizeBytes is the in-memory size of the samples.
func (v *Volume) SizeBytes() int64 {
	return int64(len(v.data)) * 4
}
