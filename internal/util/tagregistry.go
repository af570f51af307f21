// Package util provides lookups and flag parsers shared by the loader and CLI.
package util

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// KeyKind describes how an ordering tag relates slices to each other.
type KeyKind int

const (
	// KindSpatial tags carry a physical position along the stack normal.
	KindSpatial KeyKind = iota
	// KindSequence tags carry an acquisition or instance counter.
	KindSequence
	// KindTemporal tags order frames of a time series.
	KindTemporal
)

// String returns the string representation of a KeyKind.
func (k KeyKind) String() string {
	switch k {
	case KindSpatial:
		return "Spatial"
	case KindSequence:
		return "Sequence"
	case KindTemporal:
		return "Temporal"
	default:
		return "Unknown"
	}
}

// TagInfo describes a scalar numeric tag usable as a slice ordering key.
type TagInfo struct {
	Name string
	Tag  tag.Tag
	Kind KeyKind
}

// keyRegistry maps lowercase tag names to their TagInfo.
var keyRegistry = map[string]TagInfo{
	"slicelocation": {Name: "SliceLocation", Tag: tag.SliceLocation, Kind: KindSpatial},

	"instancenumber":    {Name: "InstanceNumber", Tag: tag.InstanceNumber, Kind: KindSequence},
	"acquisitionnumber": {Name: "AcquisitionNumber", Tag: tag.AcquisitionNumber, Kind: KindSequence},
	"echonumbers":       {Name: "EchoNumbers", Tag: tag.EchoNumbers, Kind: KindSequence},

	"temporalpositionidentifier": {Name: "TemporalPositionIdentifier", Tag: tag.TemporalPositionIdentifier, Kind: KindTemporal},
	"triggertime":                {Name: "TriggerTime", Tag: tag.TriggerTime, Kind: KindTemporal},
}

// GetTagByName returns TagInfo for a given ordering tag name.
// The lookup is case-insensitive. If the tag is not found, an error is returned
// with a suggestion for the closest matching tag name (using Levenshtein distance).
func GetTagByName(name string) (TagInfo, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if info, ok := keyRegistry[normalizedName]; ok {
		return info, nil
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown ordering tag %q, did you mean %q?", name, suggestion)
	}

	return TagInfo{}, fmt.Errorf("unknown ordering tag %q", name)
}

// LookupTag returns the registry entry for t.
func LookupTag(t tag.Tag) (TagInfo, bool) {
	for _, info := range keyRegistry {
		if info.Tag == t {
			return info, true
		}
	}
	return TagInfo{}, false
}

// GetTagName returns the registered name of t, or its (gggg,eeee) form.
func GetTagName(t tag.Tag) string {
	if info, ok := LookupTag(t); ok {
		return info.Name
	}
	return t.String()
}

// findClosestTagName finds the closest matching tag name using Levenshtein distance.
// Returns empty string if no close match is found (distance > 5).
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range keyRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance || (distance == bestDistance && info.Name < bestMatch) {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance is the minimum number of single-character insertions,
// deletions or substitutions turning a into b.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}

	return prev[len(b)]
}
