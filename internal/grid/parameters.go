// Package grid assembles per-section topography matrices into a long-form
// analytical table: one row per (meridian, radial) grid point with polar and
// Cartesian geometry, a legacy radial remapping, a derived ratio, and a
// per-parameter z-score standardised within the sample.
package grid

import "strings"

// Grid shape of every parameter matrix. 256 meridians sweep the full circle
// in 360/256 degree steps; 32 radial positions map linearly onto a
// normalized radius in [0, 1].
const (
	NumMeridians = 256
	NumRadials   = 32

	// CellsPerSample is the flat length of one parameter vector.
	CellsPerSample = NumMeridians * NumRadials
)

// Parameters is the fixed parameter order of the combined table. Column
// pairs (<P>_Value, <P>_Scaled) are emitted in exactly this order.
var Parameters = []string{
	"Axial_Anterior",
	"Axial_Posterior",
	"Elevation_Anterior",
	"Elevation_Posterior",
	"Axial_Keratometric",
	"Height_Anterior",
	"Height_Posterior",
	"Pachymetry",
}

// SectionDir returns the extracted-section directory name for a parameter,
// e.g. "Axial_Anterior" -> "Axial Anterior".
func SectionDir(param string) string {
	return strings.ReplaceAll(param, "_", " ")
}
