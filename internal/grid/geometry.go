package grid

import "math"

// Geometry is the coordinate block for one (meridian, radial) grid point.
// Indices are 1-based on the wire; the constructor takes 0-based loop
// indices.
type Geometry struct {
	MeridianIndex     int
	RadialIndex       int
	MeridianAngleDeg  float64
	MeridianAngleRad  float64
	NormalizedRadius  float64
	TransformedRadius float64
	CosTheta          float64
	SinTheta          float64
	X                 float64
	Y                 float64
}

// GeometryAt computes the geometry block for 0-based meridian and radial
// indices. The Cartesian coordinates use the transformed (remapped) radius,
// not the raw normalized radius.
func GeometryAt(meridian, radial int) Geometry {
	g := Geometry{
		MeridianIndex: meridian + 1,
		RadialIndex:   radial + 1,
	}

	g.MeridianAngleDeg = float64(g.MeridianIndex-1) * (360.0 / float64(NumMeridians))
	g.MeridianAngleRad = g.MeridianAngleDeg * math.Pi / 180.0
	g.NormalizedRadius = float64(g.RadialIndex-1) / float64(NumRadials-1)
	g.TransformedRadius = LegacyJ0(math.Pi * g.NormalizedRadius)
	g.CosTheta = math.Cos(g.MeridianAngleRad)
	g.SinTheta = math.Sin(g.MeridianAngleRad)
	g.X = g.TransformedRadius * g.CosTheta
	g.Y = g.TransformedRadius * g.SinTheta
	return g
}

// DataIndex returns the flat row-major index into a parameter vector for
// 0-based meridian and radial indices. Every parameter of a sample is
// indexed with this same convention.
func DataIndex(meridian, radial int) int {
	return meridian*NumRadials + radial
}

// AlphaAngle is the Pachymetry / (Height_Posterior - Height_Anterior)
// ratio. The quantity is dimensionless rather than an angle; the name is
// kept for compatibility with the historical column. A zero denominator
// yields NaN and the row is still emitted.
func AlphaAngle(pachymetry, heightPosterior, heightAnterior float64) float64 {
	denom := heightPosterior - heightAnterior
	if denom == 0 {
		return math.NaN()
	}
	return pachymetry / denom
}
