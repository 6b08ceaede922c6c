package grid

import "math"

// LegacyJ0 is the radial remapping function applied to pi*normalized radius.
//
// This is NOT the mathematical Bessel J0: the upstream analysis chain was
// built on cos(sin(x)/x) and every downstream dataset depends on its exact
// numeric output, so it is reproduced verbatim. Replacing it with a correct
// J0 would silently change every Transformed_Radius, X_Coordinate and
// Y_Coordinate. Do not "fix" without re-deriving the downstream statistics.
func LegacyJ0(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Cos(math.Sin(x) / x)
}
