package grid

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

// ReadMatrix reads a headerless extracted-section CSV into a flat float64
// vector in row-major on-disk order. The sample is rejected (classified
// error) for a missing file, a non-numeric cell, a non-finite value, or a
// vector length other than CellsPerSample.
func ReadMatrix(fsys fsutil.FileSystem, path string) ([]float64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, batch.NewError(batch.KindInputMissing, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	values := make([]float64, 0, CellsPerSample)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, batch.Errorf(batch.KindMalformedRow, path, "read matrix: %v", err)
		}
		for _, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, batch.Errorf(batch.KindParseNumeric, path,
					"non-numeric cell %q: %v", cell, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, batch.Errorf(batch.KindNonFinite, path,
					"non-finite value %q", cell)
			}
			values = append(values, v)
		}
	}

	if len(values) != CellsPerSample {
		return nil, batch.Errorf(batch.KindMalformedRow, path,
			"matrix has %d values, expected %d", len(values), CellsPerSample)
	}
	return values, nil
}
