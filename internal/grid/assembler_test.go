package grid

import (
	"encoding/csv"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

// paramBase offsets each parameter's synthetic matrix so every section file
// holds distinct values.
var paramBase = map[string]float64{
	"Axial_Anterior":      10000,
	"Axial_Posterior":     20000,
	"Elevation_Anterior":  30000,
	"Elevation_Posterior": 40000,
	"Axial_Keratometric":  50000,
	"Height_Anterior":     100,
	"Height_Posterior":    300,
	"Pachymetry":          1000,
}

// seedSample writes all eight section matrices for sampleID. The height
// sections differ by a constant 200 so Alpha_Angle is (1000+i)/200.
func seedSample(t *testing.T, mfs *fsutil.MemoryFileSystem, baseDir, sampleID string) {
	t.Helper()
	for _, param := range Parameters {
		path := baseDir + "/" + SectionDir(param) + "/" + param + "_" + sampleID + ".csv"
		require.NoError(t, mfs.WriteFile(path, []byte(matrixCSV(paramBase[param])), 0o644))
	}
}

func newTestAssembler(t *testing.T) (*Assembler, *fsutil.MemoryFileSystem) {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	asm := NewAssembler(mfs, "/base", "/combined")
	asm.Logf = t.Logf
	return asm, mfs
}

func TestListSamples(t *testing.T) {
	t.Parallel()

	asm, mfs := newTestAssembler(t)
	roster := "/base/Elevation Anterior"
	for _, name := range []string{
		"Elevation_Anterior_P2_R.csv",
		"Elevation_Anterior_P1_L.csv",
		"not_a_sample.txt",
	} {
		require.NoError(t, mfs.WriteFile(roster+"/"+name, []byte("x"), 0o644))
	}

	ids, err := asm.ListSamples()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"P1_L", "P2_R"}, ids); diff != "" {
		t.Errorf("sample IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestListSamplesMissingRoster(t *testing.T) {
	t.Parallel()

	asm, _ := newTestAssembler(t)
	_, err := asm.ListSamples()
	require.Error(t, err)
	assert.Equal(t, batch.KindInputMissing, batch.ClassifyError(err))
}

func TestAssembleSample(t *testing.T) {
	t.Parallel()

	asm, mfs := newTestAssembler(t)
	seedSample(t, mfs, "/base", "P1_L")

	require.NoError(t, asm.AssembleSample("P1_L"))

	data, err := mfs.ReadFile("/combined/P1_L_combined.csv")
	require.NoError(t, err)

	r := csv.NewReader(strings.NewReader(string(data)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, CellsPerSample+1, "header plus one row per cell")

	if diff := cmp.Diff(Header(), records[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}

	// First data row is meridian 1, radial 1: the grid origin.
	first := records[1]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "1", first[1])
	assert.Equal(t, "0", first[2])  // Meridian_Angle_Deg
	assert.Equal(t, "0", first[4])  // Normalized_Radius
	assert.Equal(t, "1", first[5])  // Transformed_Radius
	assert.Equal(t, "1", first[6])  // Cos_Theta
	assert.Equal(t, "0", first[7])  // Sin_Theta
	assert.Equal(t, "1", first[8])  // X_Coordinate
	assert.Equal(t, "0", first[9])  // Y_Coordinate
	assert.Equal(t, "5", first[10]) // 1000 / (300 - 100)

	// Rows are in (meridian asc, radial asc) order with 1-based indices.
	last := records[CellsPerSample]
	assert.Equal(t, "256", last[0])
	assert.Equal(t, "32", last[1])
	row33 := records[NumRadials+1]
	assert.Equal(t, "2", row33[0])
	assert.Equal(t, "1", row33[1])

	// Parameter values follow DataIndex order; check a mid-grid cell.
	meridian, radial := 3, 7
	rec := records[1+meridian*NumRadials+radial]
	i := float64(DataIndex(meridian, radial))
	valueCol := len(Header()) - 2*len(Parameters)
	for p, param := range Parameters {
		got, err := strconv.ParseFloat(rec[valueCol+2*p], 64)
		require.NoError(t, err)
		assert.Equal(t, paramBase[param]+i, got, "param %s", param)
	}

	// Scaled columns standardise within the sample: mean 0, sample std 1.
	scaledCol := valueCol + 1
	var sum, sumSq float64
	for _, rec := range records[1:] {
		z, err := strconv.ParseFloat(rec[scaledCol], 64)
		require.NoError(t, err)
		sum += z
		sumSq += z * z
	}
	n := float64(CellsPerSample)
	assert.InDelta(t, 0.0, sum/n, 1e-9)
	assert.InDelta(t, 1.0, sumSq/(n-1), 1e-9)
}

func TestAssembleSampleZeroDenominator(t *testing.T) {
	t.Parallel()

	asm, mfs := newTestAssembler(t)
	seedSample(t, mfs, "/base", "P1_L")

	// Identical height sections force a zero Alpha_Angle denominator; the
	// rows must still be emitted, with NaN in that column only.
	path := "/base/Height Posterior/Height_Posterior_P1_L.csv"
	require.NoError(t, mfs.WriteFile(path, []byte(matrixCSV(paramBase["Height_Anterior"])), 0o644))

	require.NoError(t, asm.AssembleSample("P1_L"))

	data, err := mfs.ReadFile("/combined/P1_L_combined.csv")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, CellsPerSample+1)

	alpha, err := strconv.ParseFloat(records[1][10], 64)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(alpha))
}

func TestAssembleSampleMissingSection(t *testing.T) {
	t.Parallel()

	asm, mfs := newTestAssembler(t)
	seedSample(t, mfs, "/base", "P1_L")
	require.NoError(t, mfs.Remove("/base/Pachymetry/Pachymetry_P1_L.csv"))

	err := asm.AssembleSample("P1_L")
	require.Error(t, err)
	assert.Equal(t, batch.KindInputMissing, batch.ClassifyError(err))
	assert.False(t, mfs.Exists("/combined/P1_L_combined.csv"),
		"no partial combined file under the final name")
}

func TestAssembleSampleConstantParameterScalesToZero(t *testing.T) {
	t.Parallel()

	asm, mfs := newTestAssembler(t)
	seedSample(t, mfs, "/base", "P1_L")

	// A constant matrix has zero spread; its scaled column must be all 0.
	var sb strings.Builder
	for r := 0; r < NumMeridians; r++ {
		cells := make([]string, NumRadials)
		for c := range cells {
			cells[c] = "7"
		}
		sb.WriteString(strings.Join(cells, ","))
		sb.WriteByte('\n')
	}
	path := "/base/Axial Anterior/Axial_Anterior_P1_L.csv"
	require.NoError(t, mfs.WriteFile(path, []byte(sb.String()), 0o644))

	require.NoError(t, asm.AssembleSample("P1_L"))

	data, err := mfs.ReadFile("/combined/P1_L_combined.csv")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)

	// Axial_Anterior is the first parameter pair after the geometry block.
	valueCol := len(Header()) - 2*len(Parameters)
	for _, rec := range records[1:] {
		assert.Equal(t, "7", rec[valueCol])
		assert.Equal(t, "0", rec[valueCol+1])
	}
}
