package volume

import "fmt"

// ValidateAxes checks that axes is a permutation of {0, 1, 2}.
func ValidateAxes(axes []int) error {
	if len(axes) != 3 {
		return fmt.Errorf("%w: axes %v must have 3 entries", ErrInvalidArgument, axes)
	}
	var seen [3]bool
	for _, a := range axes {
		if a < 0 || a > 2 {
			return fmt.Errorf("%w: axes %v must be a permutation of (0, 1, 2)", ErrInvalidArgument, axes)
		}
		if seen[a] {
			return fmt.Errorf("%w: axes %v must be a permutation of (0, 1, 2)", ErrInvalidArgument, axes)
		}
		seen[a] = true
	}
	return nil
}

// InverseAxes returns the permutation that undoes axes.
func InverseAxes(axes []int) ([]int, error) {
	if err := ValidateAxes(axes); err != nil {
		return nil, err
	}
	inv := make([]int, 3)
	for d, a := range axes {
		inv[a] = d
	}
	return inv, nil
}

// Transpose returns a new volume whose axis d is axis axes[d] of v, the
// same convention as numpy.transpose. v is left untouched.
func (v *Volume) Transpose(axes []int) (*Volume, error) {
	if err := ValidateAxes(axes); err != nil {
		return nil, err
	}

	srcStrides := [3]int{v.shape[1] * v.shape[2], v.shape[2], 1}
	var shape, strides [3]int
	for d, a := range axes {
		shape[d] = v.shape[a]
		strides[d] = srcStrides[a]
	}

	out := New(shape[0], shape[1], shape[2])
	n := 0
	for i := 0; i < shape[0]; i++ {
		oi := i * strides[0]
		for j := 0; j < shape[1]; j++ {
			oj := oi + j*strides[1]
			for k := 0; k < shape[2]; k++ {
				out.data[n] = v.data[oj+k*strides[2]]
				n++
			}
		}
	}
	return out, nil
}

type normalizeConfig struct {
	min, max       float32
	hasMin, hasMax bool
}

// NormalizeOption overrides one of the normalization bounds.
type NormalizeOption func(*normalizeConfig)

// WithMin fixes the lower bound instead of using the volume minimum.
func WithMin(m float32) NormalizeOption {
	return func(c *normalizeConfig) {
		c.min, c.hasMin = m, true
	}
}

// WithMax fixes the upper bound instead of using the volume maximum.
func WithMax(m float32) NormalizeOption {
	return func(c *normalizeConfig) {
		c.max, c.hasMax = m, true
	}
}

// Normalize rescales every sample to (s - min) / (max - min) in place and
// returns the bounds that were used. Equal bounds are not guarded against:
// the division yields NaN or ±Inf per IEEE 754.
func (v *Volume) Normalize(opts ...NormalizeOption) (lo, hi float32) {
	var cfg normalizeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	lo, hi = cfg.min, cfg.max
	if !cfg.hasMin {
		lo = v.Min()
	}
	if !cfg.hasMax {
		hi = v.Max()
	}

	span := hi - lo
	for i, s := range v.data {
		v.data[i] = (s - lo) / span
	}
	return lo, hi
}
