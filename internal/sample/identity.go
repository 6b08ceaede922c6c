// Package sample handles patient-eye sample identity and duplicate
// resolution for extracted topography files.
//
// A sample filename decomposes into underscore-separated fields:
// fields 0-3 form the base key, field 4 is the eye indicator (L or R) and
// field 5 carries a zero-padded acquisition sequence number. The pair
// (base key, eye) identifies a patient-eye; the sequence orders repeated
// acquisitions of the same eye.
package sample

import (
	"strconv"
	"strings"
	"unicode"
)

// Identity is the decomposed form of one sample filename.
type Identity struct {
	Filename string
	Base     string
	Eye      string
	Sequence int
}

// ParseFilename decomposes a sample filename. It returns false for names
// that do not split into at least six underscore-separated fields or whose
// sequence field contains no digits. Leading zeros in the sequence are
// preserved in the filename but compared as integers.
func ParseFilename(name string) (Identity, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 6 {
		return Identity{}, false
	}

	var digits strings.Builder
	for _, r := range parts[5] {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return Identity{}, false
	}
	seq, err := strconv.Atoi(digits.String())
	if err != nil {
		return Identity{}, false
	}

	return Identity{
		Filename: name,
		Base:     strings.Join(parts[:4], "_"),
		Eye:      parts[4],
		Sequence: seq,
	}, true
}

// Key returns the patient-eye grouping key.
func (id Identity) Key() string {
	return id.Base + "_" + id.Eye
}
