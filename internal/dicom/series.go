package dicom

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"math"
	randv2 "math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	secondaryCaptureSOPClassUID = "1.2.840.10008.5.1.4.1.1.7"
	explicitVRLittleEndian      = "1.2.840.10008.1.2.1"
)

// SyntheticSlice describes one file written by WriteSeries. Nil key fields
// are omitted from the dataset.
type SyntheticSlice struct {
	SliceLocation  *float64
	InstanceNumber *int

	// Pixels holds Rows*Cols samples in row-major order. When nil a seeded
	// radial pattern is generated instead.
	Pixels []int
}

// SeriesOptions contains all parameters needed to write a synthetic series.
type SeriesOptions struct {
	Rows int
	Cols int

	BitsAllocated int  // 8 or 16; 0 means 16
	Signed        bool // PixelRepresentation 1, samples stored as two's complement

	Slices []SyntheticSlice

	Seed    uint64
	Overlay bool // burn "Slice k/N" into generated pixels

	// FilePattern is a fmt pattern taking the slice index; default "IMG%04d.dcm".
	FilePattern string
}

// Validate checks the options before any file is written.
func (o *SeriesOptions) Validate() error {
	if o.Rows <= 0 || o.Cols <= 0 {
		return fmt.Errorf("dimensions must be > 0, got %dx%d", o.Rows, o.Cols)
	}
	if o.BitsAllocated != 0 && o.BitsAllocated != 8 && o.BitsAllocated != 16 {
		return fmt.Errorf("bits allocated must be 8 or 16, got %d", o.BitsAllocated)
	}
	if len(o.Slices) == 0 {
		return fmt.Errorf("at least one slice is required")
	}
	lo, hi := o.sampleRange()
	for i, s := range o.Slices {
		if s.Pixels == nil {
			continue
		}
		if len(s.Pixels) != o.Rows*o.Cols {
			return fmt.Errorf("slice %d: %d pixels for %dx%d", i, len(s.Pixels), o.Rows, o.Cols)
		}
		for _, p := range s.Pixels {
			if p < lo || p > hi {
				return fmt.Errorf("slice %d: sample %d outside [%d, %d]", i, p, lo, hi)
			}
		}
	}
	return nil
}

func (o *SeriesOptions) bits() int {
	if o.BitsAllocated == 0 {
		return 16
	}
	return o.BitsAllocated
}

// sampleRange is the representable sample range for the configured depth.
func (o *SeriesOptions) sampleRange() (int, int) {
	bits := o.bits()
	if o.Signed {
		return -(1 << (bits - 1)), 1<<(bits-1) - 1
	}
	return 0, 1<<bits - 1
}

// WriteSeries writes one single-frame MONOCHROME2 file per slice into dir
// and returns the paths in slice order.
func WriteSeries(dir string, opts SeriesOptions) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.FilePattern == "" {
		opts.FilePattern = "IMG%04d.dcm"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	seriesUID := deterministicUID(fmt.Sprintf("%s_%d_series", dir, opts.Seed))
	paths := make([]string, len(opts.Slices))
	for i, s := range opts.Slices {
		samples := s.Pixels
		if samples == nil {
			samples = generatePattern(opts, i)
		}

		sopInstanceUID := deterministicUID(fmt.Sprintf("%s_%d_instance_%d", dir, opts.Seed, i))
		elements, err := sliceElements(opts, s, samples, seriesUID, sopInstanceUID)
		if err != nil {
			return nil, fmt.Errorf("build slice %d: %w", i, err)
		}

		path := filepath.Join(dir, fmt.Sprintf(opts.FilePattern, i))
		if err := writeDatasetToFile(path, dicom.Dataset{Elements: elements}); err != nil {
			return nil, fmt.Errorf("write slice %d: %w", i, err)
		}
		paths[i] = path
	}
	return paths, nil
}

// writeDatasetToFile writes a DICOM dataset to a file
func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}

func sliceElements(opts SeriesOptions, s SyntheticSlice, samples []int, seriesUID, sopInstanceUID string) ([]*dicom.Element, error) {
	bits := opts.bits()
	pixelRepresentation := 0
	if opts.Signed {
		pixelRepresentation = 1
	}

	elements := []*dicom.Element{
		mustNewElement(tag.MediaStorageSOPClassUID, []string{secondaryCaptureSOPClassUID}),
		mustNewElement(tag.MediaStorageSOPInstanceUID, []string{sopInstanceUID}),
		mustNewElement(tag.TransferSyntaxUID, []string{explicitVRLittleEndian}),
		mustNewElement(tag.SOPClassUID, []string{secondaryCaptureSOPClassUID}),
		mustNewElement(tag.SOPInstanceUID, []string{sopInstanceUID}),
		mustNewElement(tag.Modality, []string{"OT"}),
		mustNewElement(tag.SeriesInstanceUID, []string{seriesUID}),
	}
	if s.InstanceNumber != nil {
		elements = append(elements, mustNewElement(tag.InstanceNumber, []string{strconv.Itoa(*s.InstanceNumber)}))
	}
	if s.SliceLocation != nil {
		elements = append(elements, mustNewElement(tag.SliceLocation, []string{fmt.Sprintf("%.6f", *s.SliceLocation)}))
	}
	elements = append(elements,
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.Rows, []int{opts.Rows}),
		mustNewElement(tag.Columns, []int{opts.Cols}),
		mustNewElement(tag.BitsAllocated, []int{bits}),
		mustNewElement(tag.BitsStored, []int{bits}),
		mustNewElement(tag.HighBit, []int{bits - 1}),
		mustNewElement(tag.PixelRepresentation, []int{pixelRepresentation}),
	)

	pixelsPerFrame := opts.Rows * opts.Cols
	var fr frame.Frame
	if bits == 8 {
		nativeFrame := frame.NewNativeFrame[uint8](8, opts.Rows, opts.Cols, pixelsPerFrame, 1)
		for i, v := range samples {
			nativeFrame.RawData[i] = uint8(v)
		}
		fr = frame.Frame{Encapsulated: false, NativeData: nativeFrame}
	} else {
		nativeFrame := frame.NewNativeFrame[uint16](16, opts.Rows, opts.Cols, pixelsPerFrame, 1)
		for i, v := range samples {
			nativeFrame.RawData[i] = uint16(v)
		}
		fr = frame.Frame{Encapsulated: false, NativeData: nativeFrame}
	}

	pixelData, err := dicom.NewElement(tag.PixelData, dicom.PixelDataInfo{Frames: []*frame.Frame{&fr}})
	if err != nil {
		return nil, err
	}
	return append(elements, pixelData), nil
}

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// deterministicUID derives a UID under the 2.25 root from a seed string.
func deterministicUID(seed string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return "2.25." + strconv.FormatUint(h.Sum64(), 10)
}

// generatePattern builds a radial gradient with seeded noise for slice idx,
// offset by idx so consecutive slices differ in brightness.
func generatePattern(opts SeriesOptions, idx int) []int {
	seedHash := fnv.New64a()
	_, _ = fmt.Fprintf(seedHash, "%d_pixel_%d", opts.Seed, idx)
	pixelSeed := seedHash.Sum64()
	rng := randv2.New(randv2.NewPCG(pixelSeed, pixelSeed))

	lo, hi := opts.sampleRange()
	valueRange := float64(hi - lo)
	base := float64(lo) + valueRange*0.1 + float64(idx%8)*valueRange*0.05
	centerX, centerY := float64(opts.Cols)/2, float64(opts.Rows)/2
	maxDist := math.Sqrt(centerX*centerX + centerY*centerY)

	out := make([]int, opts.Rows*opts.Cols)
	for y := 0; y < opts.Rows; y++ {
		for x := 0; x < opts.Cols; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			dist := math.Sqrt(dx*dx + dy*dy)

			intensity := base + (1.0-dist/maxDist)*valueRange*0.3
			intensity += (rng.Float64() - 0.5) * valueRange * 0.05
			out[y*opts.Cols+x] = int(math.Max(float64(lo), math.Min(float64(hi), intensity)))
		}
	}

	if opts.Overlay {
		drawLabel(out, opts.Cols, opts.Rows, lo, hi, fmt.Sprintf("Slice %d/%d", idx+1, len(opts.Slices)))
	}
	return out
}

// drawLabel burns text into the center of a grayscale sample grid. The text
// is rendered at base size, upscaled to ~30% of the width and outlined.
func drawLabel(samples []int, width, height, lo, hi int, text string) {
	face := basicfont.Face7x13
	baseTextWidth := font.MeasureString(face, text).Ceil()
	baseTextHeight := 13

	textImg := image.NewAlpha(image.Rect(0, 0, baseTextWidth, baseTextHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.NewUniform(color.Alpha{A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(11)},
	}
	drawer.DrawString(text)

	scaleFactor := float64(width) * 0.3 / float64(baseTextWidth)
	if scaleFactor < 1 {
		scaleFactor = 1
	}
	scaledWidth := int(float64(baseTextWidth) * scaleFactor)
	scaledHeight := int(float64(baseTextHeight) * scaleFactor)

	scaled := image.NewAlpha(image.Rect(0, 0, scaledWidth, scaledHeight))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), textImg, textImg.Bounds(), draw.Over, nil)

	posX := (width - scaledWidth) / 2
	posY := (height - scaledHeight) / 2
	outline := max(1, scaledHeight/10)

	set := func(x, y, v int) {
		if x >= 0 && x < width && y >= 0 && y < height {
			samples[y*width+x] = v
		}
	}

	for sy := 0; sy < scaledHeight; sy++ {
		for sx := 0; sx < scaledWidth; sx++ {
			if scaled.AlphaAt(sx, sy).A < 128 {
				continue
			}
			for dy := -outline; dy <= outline; dy++ {
				for dx := -outline; dx <= outline; dx++ {
					set(posX+sx+dx, posY+sy+dy, lo)
				}
			}
		}
	}
	for sy := 0; sy < scaledHeight; sy++ {
		for sx := 0; sx < scaledWidth; sx++ {
			if scaled.AlphaAt(sx, sy).A >= 128 {
				set(posX+sx, posY+sy, hi)
			}
		}
	}
}
