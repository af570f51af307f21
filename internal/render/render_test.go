package render

import (
	"image/color"
	"image/gif"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsinham/dicomstack/internal/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient builds a 2x3x3 volume where slice k holds k*100 + offset.
func gradient(t *testing.T) *volume.Volume {
	t.Helper()
	v := volume.New(2, 3, 3)
	for k := 0; k < 3; k++ {
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				v.Set(i, j, k, float32(k*100+i*3+j))
			}
		}
	}
	return v
}

func TestPalette(t *testing.T) {
	gray, err := Palette("gray")
	require.NoError(t, err)
	require.Len(t, gray, 256)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, gray[0])
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, gray[255])

	inv, err := Palette("INVERTED")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, inv[0])

	hot, err := Palette("hot")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, hot[255])
	r, g, b, _ := hot[128].RGBA()
	assert.Greater(t, r, g)
	assert.Greater(t, g, b)

	_, err = Palette("jet")
	assert.Error(t, err)
}

func TestColormaps_Sorted(t *testing.T) {
	assert.Equal(t, []string{"bone", "gray", "hot", "inverted"}, Colormaps())
}

func TestSliceImage_WindowsPerSlice(t *testing.T) {
	v := gradient(t)

	for k := 0; k < 3; k++ {
		img, err := SliceImage(v, k, Options{})
		require.NoError(t, err)
		assert.Equal(t, 3, img.Bounds().Dx())
		assert.Equal(t, 2, img.Bounds().Dy())
		assert.Equal(t, uint8(0), img.ColorIndexAt(0, 0), "slice %d", k)
		assert.Equal(t, uint8(255), img.ColorIndexAt(2, 1), "slice %d", k)
	}
}

func TestSliceImage_ConstantAndNaN(t *testing.T) {
	v := volume.New(2, 2, 1)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v.Set(i, j, 0, 7)
		}
	}
	v.Set(1, 1, 0, float32(math.NaN()))

	img, err := SliceImage(v, 0, Options{})
	require.NoError(t, err)
	for _, p := range img.Pix {
		assert.Equal(t, uint8(0), p)
	}
}

func TestSliceImage_Scale(t *testing.T) {
	img, err := SliceImage(gradient(t), 1, Options{Scale: 4})
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestSliceImage_Errors(t *testing.T) {
	v := gradient(t)
	_, err := SliceImage(v, 3, Options{})
	assert.Error(t, err)
	_, err = SliceImage(v, -1, Options{})
	assert.Error(t, err)
	_, err = SliceImage(v, 0, Options{Colormap: "viridis"})
	assert.Error(t, err)
}

func TestSavePNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "png")

	paths, err := SavePNGs(gradient(t), dir, []int{2, 0}, Options{Colormap: "bone"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "slice_002.png"),
		filepath.Join(dir, "slice_000.png"),
	}, paths)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	all, err := SavePNGs(gradient(t), dir, nil, Options{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stack.gif")

	require.NoError(t, SaveGIF(gradient(t), path, nil, Options{StepMS: 250, Scale: 2}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)

	assert.Len(t, anim.Image, 3)
	assert.Equal(t, []int{25, 25, 25}, anim.Delay)
	assert.Equal(t, 6, anim.Image[0].Bounds().Dx())
}

func TestSaveGIF_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, SaveGIF(gradient(t), filepath.Join(dir, "a.gif"), []int{5}, Options{}))
	assert.Error(t, SaveGIF(gradient(t), filepath.Join(dir, "b.gif"), []int{}, Options{}))
}
