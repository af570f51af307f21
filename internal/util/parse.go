package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(B|KB|MB|GB|TB)$`)

// ParseSize parses a size string (e.g., "4.5GB", "100MB") into bytes.
//
// Supported units: B, KB, MB, GB, TB (binary multiples, case-insensitive).
// An empty string means no limit and returns 0.
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))
	if sizeStr == "" {
		return 0, nil
	}

	matches := sizePattern.FindStringSubmatch(sizeStr)
	if matches == nil {
		return 0, fmt.Errorf("invalid size %q: use a format like '512MB' or '4.5GB'", sizeStr)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %v", err)
	}

	multipliers := map[string]int64{
		"B":  1,
		"KB": 1 << 10,
		"MB": 1 << 20,
		"GB": 1 << 30,
		"TB": 1 << 40,
	}

	return int64(value * float64(multipliers[matches[2]])), nil
}

// ParseAxes parses a comma-separated axis order such as "1,2,0". It only
// checks the syntax; whether the result is a permutation is left to the
// volume.
func ParseAxes(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty axis list")
	}
	axes := make([]int, 0, len(parts))
	for _, p := range parts {
		a, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid axis %q: %w", p, err)
		}
		axes = append(axes, a)
	}
	return axes, nil
}

// ParseIndices parses slice indices given as a comma-separated list of
// single values or inclusive ranges, e.g. "0,2,5-8". Order is preserved and
// duplicates are kept, so callers can request any sequence of frames.
func ParseIndices(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, nil
	}
	var out []int
	for _, p := range parts {
		lo, hi, isRange := strings.Cut(p, "-")
		if !isRange {
			i, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid index %q: %w", p, err)
			}
			out = append(out, i)
			continue
		}
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid range start in %q: %w", p, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid range end in %q: %w", p, err)
		}
		if end < start {
			return nil, fmt.Errorf("invalid range %q: end before start", p)
		}
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
	}
	return out, nil
}

// ParseFloats parses a comma-separated list of numbers.
func ParseFloats(s string) ([]float64, error) {
	parts := splitList(s)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	fields := strings.Split(s, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
