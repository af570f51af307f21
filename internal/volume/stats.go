package volume

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinMax is the value range of one depth slice.
type MinMax struct {
	Min float32
	Max float32
}

// SliceStat summarizes one depth slice. Std is the population standard
// deviation.
type SliceStat struct {
	Index int
	Min   float32
	Max   float32
	Mean  float64
	Std   float64
}

// Min returns the smallest sample. A NaN anywhere makes the result NaN.
func (v *Volume) Min() float32 {
	return reduce(v.data, func(a, b float32) bool { return b < a })
}

// Max returns the largest sample. A NaN anywhere makes the result NaN.
func (v *Volume) Max() float32 {
	return reduce(v.data, func(a, b float32) bool { return b > a })
}

func reduce(data []float32, better func(cur, cand float32) bool) float32 {
	if len(data) == 0 {
		return float32(math.NaN())
	}
	best := data[0]
	for _, s := range data {
		if s != s {
			return s
		}
		if better(best, s) {
			best = s
		}
	}
	return best
}

// SliceMinMax returns the range of every slice along axis 2, in index order.
func (v *Volume) SliceMinMax() []MinMax {
	depth := v.shape[2]
	out := make([]MinMax, depth)
	buf := make([]float32, v.shape[0]*v.shape[1])
	for k := 0; k < depth; k++ {
		v.gather(k, buf)
		out[k] = MinMax{
			Min: reduce(buf, func(a, b float32) bool { return b < a }),
			Max: reduce(buf, func(a, b float32) bool { return b > a }),
		}
	}
	return out
}

// SliceStats extends SliceMinMax with the mean and standard deviation of
// each slice.
func (v *Volume) SliceStats() []SliceStat {
	depth := v.shape[2]
	out := make([]SliceStat, depth)
	buf := make([]float32, v.shape[0]*v.shape[1])
	wide := make([]float64, len(buf))
	for k := 0; k < depth; k++ {
		v.gather(k, buf)
		for i, s := range buf {
			wide[i] = float64(s)
		}
		mean, std := stat.PopMeanStdDev(wide, nil)
		out[k] = SliceStat{
			Index: k,
			Min:   reduce(buf, func(a, b float32) bool { return b < a }),
			Max:   reduce(buf, func(a, b float32) bool { return b > a }),
			Mean:  mean,
			Std:   std,
		}
	}
	return out
}

// gather copies depth slice k into buf, which must hold shape[0]*shape[1].
func (v *Volume) gather(k int, buf []float32) {
	depth := v.shape[2]
	for idx := range buf {
		buf[idx] = v.data[idx*depth+k]
	}
}
