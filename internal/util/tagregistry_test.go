package util

import (
	"strings"
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestGetTagByName_Valid(t *testing.T) {
	tests := []struct {
		name         string
		expectedTag  tag.Tag
		expectedKind KeyKind
	}{
		{"SliceLocation", tag.SliceLocation, KindSpatial},
		{"InstanceNumber", tag.InstanceNumber, KindSequence},
		{"AcquisitionNumber", tag.AcquisitionNumber, KindSequence},
		{"EchoNumbers", tag.EchoNumbers, KindSequence},
		{"TemporalPositionIdentifier", tag.TemporalPositionIdentifier, KindTemporal},
		{"TriggerTime", tag.TriggerTime, KindTemporal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := GetTagByName(tc.name)
			if err != nil {
				t.Fatalf("GetTagByName(%q) returned error: %v", tc.name, err)
			}
			if info.Tag != tc.expectedTag {
				t.Errorf("GetTagByName(%q).Tag = %v, want %v", tc.name, info.Tag, tc.expectedTag)
			}
			if info.Kind != tc.expectedKind {
				t.Errorf("GetTagByName(%q).Kind = %v, want %v", tc.name, info.Kind, tc.expectedKind)
			}
			if info.Name != tc.name {
				t.Errorf("GetTagByName(%q).Name = %q, want %q", tc.name, info.Name, tc.name)
			}
		})
	}
}

func TestGetTagByName_Invalid(t *testing.T) {
	for _, name := range []string{"PatientName", "NotATag", "", "   "} {
		t.Run(name, func(t *testing.T) {
			if _, err := GetTagByName(name); err == nil {
				t.Errorf("GetTagByName(%q) should return error", name)
			}
		})
	}
}

func TestGetTagByName_Suggestion(t *testing.T) {
	tests := []struct {
		typo       string
		suggestion string
	}{
		{"SliceLocaton", "SliceLocation"},
		{"SlicePosition", "SliceLocation"},
		{"InstanceNumer", "InstanceNumber"},
		{"TrigerTime", "TriggerTime"},
	}

	for _, tc := range tests {
		t.Run(tc.typo, func(t *testing.T) {
			_, err := GetTagByName(tc.typo)
			if err == nil {
				t.Fatalf("GetTagByName(%q) should return error", tc.typo)
			}
			if !strings.Contains(err.Error(), tc.suggestion) {
				t.Errorf("Error for %q should suggest %q, got: %v", tc.typo, tc.suggestion, err)
			}
		})
	}
}

func TestGetTagByName_CaseInsensitive(t *testing.T) {
	for _, input := range []string{"slicelocation", "SLICELOCATION", " SliceLocation "} {
		info, err := GetTagByName(input)
		if err != nil {
			t.Fatalf("GetTagByName(%q) returned error: %v", input, err)
		}
		if info.Name != "SliceLocation" {
			t.Errorf("GetTagByName(%q).Name = %q", input, info.Name)
		}
	}
}

func TestGetTagName(t *testing.T) {
	if got := GetTagName(tag.InstanceNumber); got != "InstanceNumber" {
		t.Errorf("GetTagName(InstanceNumber) = %q", got)
	}
	if got := GetTagName(tag.PatientName); got == "" || got == "PatientName" {
		t.Errorf("GetTagName(PatientName) = %q, want the numeric form", got)
	}
}

func TestLookupTag(t *testing.T) {
	info, ok := LookupTag(tag.TriggerTime)
	if !ok || info.Name != "TriggerTime" || info.Kind != KindTemporal {
		t.Errorf("LookupTag(TriggerTime) = %+v, %v", info, ok)
	}
	if _, ok := LookupTag(tag.PatientName); ok {
		t.Error("LookupTag(PatientName) should not be found")
	}
}

func TestKeyKind_String(t *testing.T) {
	tests := []struct {
		kind     KeyKind
		expected string
	}{
		{KindSpatial, "Spatial"},
		{KindSequence, "Sequence"},
		{KindTemporal, "Temporal"},
		{KeyKind(42), "Unknown"},
	}

	for _, tc := range tests {
		if tc.kind.String() != tc.expected {
			t.Errorf("KeyKind.String() = %q, want %q", tc.kind.String(), tc.expected)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
	}

	for _, tc := range tests {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			if result := levenshteinDistance(tc.a, tc.b); result != tc.expected {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tc.a, tc.b, result, tc.expected)
			}
		})
	}
}
