package grid

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aricept094/casiapipe/internal/batch"
)

// Stats holds the per-parameter standardisation moments for one sample.
type Stats struct {
	Mean   float64
	StdDev float64
}

// ComputeStats returns the mean and Bessel-corrected (N-1) standard
// deviation of a parameter vector. A non-finite result rejects the sample.
func ComputeStats(path string, values []float64) (Stats, error) {
	mean := stat.Mean(values, nil)
	std := stat.StdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(std) || math.IsInf(std, 0) {
		return Stats{}, batch.Errorf(batch.KindNonFinite, path,
			"non-finite statistic: mean=%v stddev=%v", mean, std)
	}
	return Stats{Mean: mean, StdDev: std}, nil
}

// Scale standardises a value against s. Zero (or pathological) spread maps
// everything to 0 rather than NaN.
func (s Stats) Scale(value float64) float64 {
	if s.StdDev <= 0 || math.IsNaN(s.StdDev) || math.IsInf(s.StdDev, 0) {
		return 0
	}
	scaled := (value - s.Mean) / s.StdDev
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return 0
	}
	return scaled
}
