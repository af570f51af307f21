package dicom

import (
	"errors"
	"fmt"

	"github.com/mrsinham/dicomstack/internal/volume"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// exactFloat32Limit is the largest integer magnitude a float32 holds exactly.
const exactFloat32Limit = 1 << 24

var (
	errNoPixelData    = errors.New("no pixel data")
	errEncapsulated   = errors.New("encapsulated (compressed) pixel data is not supported")
	errMultiFrame     = errors.New("expected a single frame")
	errMultiSample    = errors.New("expected one sample per pixel")
	errUnknownSamples = errors.New("unsupported sample type")
)

type sample interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~int
}

// decodePlane converts the single native frame of ds into a float32 plane.
// It also returns how many samples could not be represented exactly.
func decodePlane(ds dicom.Dataset) (volume.Plane, int, error) {
	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil || elem == nil {
		return volume.Plane{}, 0, errNoPixelData
	}
	info, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return volume.Plane{}, 0, errNoPixelData
	}
	if info.IsEncapsulated {
		return volume.Plane{}, 0, errEncapsulated
	}
	if len(info.Frames) != 1 {
		return volume.Plane{}, 0, fmt.Errorf("%w, got %d", errMultiFrame, len(info.Frames))
	}

	fr := info.Frames[0]
	if fr.Encapsulated {
		return volume.Plane{}, 0, errEncapsulated
	}
	nf := fr.NativeData
	if nf == nil {
		return volume.Plane{}, 0, errNoPixelData
	}
	if spp := nf.SamplesPerPixel(); spp != 1 {
		return volume.Plane{}, 0, fmt.Errorf("%w, got %d", errMultiSample, spp)
	}

	rows, cols := nf.Rows(), nf.Cols()
	signed := intValue(ds, tag.PixelRepresentation, 0) == 1
	bitsStored := intValue(ds, tag.BitsStored, 0)

	var (
		data  []float32
		lossy int
	)
	switch raw := nf.RawDataSlice().(type) {
	case []uint8:
		data, lossy = widen(raw, signed, bitsStored, 8)
	case []uint16:
		data, lossy = widen(raw, signed, bitsStored, 16)
	case []uint32:
		data, lossy = widen(raw, signed, bitsStored, 32)
	case []int8:
		data, lossy = widen(raw, false, 0, 8)
	case []int16:
		data, lossy = widen(raw, false, 0, 16)
	case []int32:
		data, lossy = widen(raw, false, 0, 32)
	case []int:
		// BitsAllocated 1 is unpacked one bit per sample.
		data, lossy = widen(raw, false, 0, 32)
	default:
		return volume.Plane{}, 0, fmt.Errorf("%w: %T", errUnknownSamples, raw)
	}

	if len(data) != rows*cols {
		return volume.Plane{}, 0, fmt.Errorf("pixel data holds %d samples for %dx%d", len(data), rows, cols)
	}
	return volume.Plane{Rows: rows, Cols: cols, Data: data}, lossy, nil
}

// widen casts raw samples to float32. When signExtend is set the samples
// are two's complement values of bitsStored bits held in an unsigned
// container and are sign-extended first.
func widen[T sample](raw []T, signExtend bool, bitsStored, containerBits int) ([]float32, int) {
	if bitsStored <= 0 || bitsStored > containerBits {
		bitsStored = containerBits
	}
	mask := int64(1)<<bitsStored - 1
	signBit := int64(1) << (bitsStored - 1)

	out := make([]float32, len(raw))
	lossy := 0
	for i, r := range raw {
		s := int64(r)
		if signExtend {
			s &= mask
			if s&signBit != 0 {
				s -= mask + 1
			}
		}
		if s > exactFloat32Limit || s < -exactFloat32Limit {
			lossy++
		}
		out[i] = float32(s)
	}
	return out, lossy
}
