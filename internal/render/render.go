// Package render writes depth slices of a volume as PNG files or an
// animated GIF.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/mrsinham/dicomstack/internal/volume"
	"golang.org/x/image/draw"
)

// Options controls how slices are drawn.
type Options struct {
	Colormap string // gray, bone, hot or inverted; empty means gray
	Scale    int    // integer upscale factor; values below 1 mean 1
	StepMS   int    // GIF frame delay in milliseconds
}

// SliceImage renders depth slice k. Intensities are windowed to the slice's
// own range, so a constant slice renders as the bottom of the colormap.
func SliceImage(v *volume.Volume, k int, opts Options) (*image.Paletted, error) {
	palette, err := Palette(colormapName(opts))
	if err != nil {
		return nil, err
	}
	shape := v.Shape()
	if k < 0 || k >= shape[2] {
		return nil, fmt.Errorf("slice index %d out of range [0, %d)", k, shape[2])
	}

	rows, cols := shape[0], shape[1]
	lo, hi := sliceRange(v, k)
	span := float64(hi) - float64(lo)

	gray := image.NewGray(image.Rect(0, 0, cols, rows))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t := 0.0
			if span > 0 {
				t = (float64(v.At(i, j, k)) - float64(lo)) / span
			}
			if math.IsNaN(t) {
				t = 0
			}
			t = math.Max(0, math.Min(1, t))
			gray.SetGray(j, i, color.Gray{Y: uint8(t*255 + 0.5)})
		}
	}

	scale := max(1, opts.Scale)
	src := gray
	if scale > 1 {
		src = image.NewGray(image.Rect(0, 0, cols*scale, rows*scale))
		draw.CatmullRom.Scale(src, src.Bounds(), gray, gray.Bounds(), draw.Src, nil)
	}

	out := image.NewPaletted(src.Bounds(), palette)
	copy(out.Pix, src.Pix)
	return out, nil
}

// sliceRange returns the finite min and max of slice k.
func sliceRange(v *volume.Volume, k int) (float32, float32) {
	shape := v.Shape()
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			s := v.At(i, j, k)
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				continue
			}
			lo = min(lo, s)
			hi = max(hi, s)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// SavePNGs writes slice_%03d.png into dir for each index and returns the
// written paths. Nil indices means every depth index.
func SavePNGs(v *volume.Volume, dir string, indices []int, opts Options) ([]string, error) {
	indices = allIndices(v, indices)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := make([]string, 0, len(indices))
	for _, k := range indices {
		img, err := SliceImage(v, k, opts)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf("slice_%03d.png", k))
		if err := writePNG(path, img); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return png.Encode(f, img)
}

// SaveGIF writes an animated GIF with one frame per index, looping forever.
func SaveGIF(v *volume.Volume, path string, indices []int, opts Options) error {
	indices = allIndices(v, indices)
	delay := max(1, opts.StepMS/10)

	anim := &gif.GIF{}
	for _, k := range indices {
		img, err := SliceImage(v, k, opts)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
	}
	if len(anim.Image) == 0 {
		return fmt.Errorf("no slices to animate")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return gif.EncodeAll(f, anim)
}

func allIndices(v *volume.Volume, indices []int) []int {
	if indices != nil {
		return indices
	}
	out := make([]int, v.Depth())
	for i := range out {
		out[i] = i
	}
	return out
}

func colormapName(opts Options) string {
	if opts.Colormap == "" {
		return "gray"
	}
	return opts.Colormap
}
