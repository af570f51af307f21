package dicom

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// KeySource records which metadata field produced a slice's ordering key.
type KeySource int

const (
	// KeyPrimary means the preferred field was present.
	KeyPrimary KeySource = iota
	// KeyFallback means the preferred field was absent and the other one was used.
	KeyFallback
	// KeyDefault means neither field was present and the key defaulted to 0.
	KeyDefault
)

func (s KeySource) String() string {
	switch s {
	case KeyPrimary:
		return "primary"
	case KeyFallback:
		return "fallback"
	default:
		return "default"
	}
}

// SliceInfo describes one discovered file and where it lands in the stack.
type SliceInfo struct {
	Path      string
	Discovery int     // position in directory discovery order
	Key       float64 // ordering key
	Source    KeySource
	KeyTag    tag.Tag // tag the key was read from; zero for KeyDefault
	Rows      int
	Cols      int
}

// orderingKey extracts the key of ds. With preferFallback unset the primary
// tag is tried first, otherwise the fallback tag; a missing key is 0.
func orderingKey(ds dicom.Dataset, primary, fallback tag.Tag, preferFallback bool) (float64, KeySource, tag.Tag) {
	first, second := primary, fallback
	if preferFallback {
		first, second = fallback, primary
	}
	if v, ok := numericValue(ds, first); ok {
		return v, KeyPrimary, first
	}
	if v, ok := numericValue(ds, second); ok {
		return v, KeyFallback, second
	}
	return 0, KeyDefault, tag.Tag{}
}

// numericValue returns the first value of t as a number. DS and IS values
// arrive as strings; empty or unparsable strings count as absent.
func numericValue(ds dicom.Dataset, t tag.Tag) (float64, bool) {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil || elem.Value == nil {
		return 0, false
	}

	switch vals := elem.Value.GetValue().(type) {
	case []string:
		if len(vals) == 0 {
			return 0, false
		}
		s := strings.Trim(vals[0], " \x00")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case []int:
		if len(vals) == 0 {
			return 0, false
		}
		return float64(vals[0]), true
	case []float64:
		if len(vals) == 0 {
			return 0, false
		}
		if math.IsNaN(vals[0]) {
			return 0, false
		}
		return vals[0], true
	}
	return 0, false
}

// intValue returns the first integer value of t, or def when absent.
func intValue(ds dicom.Dataset, t tag.Tag, def int) int {
	elem, err := ds.FindElementByTag(t)
	if err != nil || elem == nil || elem.Value == nil {
		return def
	}
	if vals, ok := elem.Value.GetValue().([]int); ok && len(vals) > 0 {
		return vals[0]
	}
	if v, ok := numericValue(ds, t); ok {
		return int(v)
	}
	return def
}

// sortByKey orders slices by key ascending. The sort is stable so equal
// keys, including the shared default of 0, keep discovery order.
func sortByKey[T any](items []T, key func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) < key(items[j])
	})
}

// mixedSources reports whether the keys came from more than one field.
func mixedSources(infos []SliceInfo) bool {
	if len(infos) < 2 {
		return false
	}
	for _, info := range infos[1:] {
		if info.KeyTag != infos[0].KeyTag {
			return true
		}
	}
	return false
}
