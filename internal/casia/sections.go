// Package casia extracts labelled numeric sections from raw Casia corneal
// topography instrument exports.
//
// A raw export is a heterogeneous CSV: narrative header lines, blank lines,
// then bracketed section tags, each followed by a fixed number of descriptor
// lines and a 256x32 numeric matrix. The extractor harvests each known
// section into its own headerless CSV.
package casia

import "strings"

// Matrix shape of every section. These are properties of the instrument's
// export format, not runtime configuration.
const (
	RowsToKeep = 256
	ColsToKeep = 32
)

// Section describes one bracketed section of a raw export: the tag to match
// on and the number of descriptor lines between the tag row and the first
// data row.
type Section struct {
	Tag  string
	Skip int
}

// Sections is the canonical descriptor set. The elevation sections carry a
// longer descriptor block, hence skip 11 instead of 3.
var Sections = []Section{
	{Tag: "[Pachymetry]", Skip: 3},
	{Tag: "[Axial Posterior]", Skip: 3},
	{Tag: "[Axial Anterior]", Skip: 3},
	{Tag: "[Height Anterior]", Skip: 3},
	{Tag: "[Height Posterior]", Skip: 3},
	{Tag: "[Axial Keratometric]", Skip: 3},
	{Tag: "[Elevation Anterior]", Skip: 11},
	{Tag: "[Elevation Posterior]", Skip: 11},
}

// Name returns the tag with brackets stripped and spaces retained,
// e.g. "Axial Anterior". Used for the per-section output directory.
func (s Section) Name() string {
	return strings.Trim(s.Tag, "[]")
}

// FilePrefix returns the tag with brackets stripped and spaces replaced by
// underscores, e.g. "Axial_Anterior". Used for the output file prefix.
func (s Section) FilePrefix() string {
	return strings.ReplaceAll(s.Name(), " ", "_")
}
