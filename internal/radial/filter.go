// Package radial subsets combined long-form CSVs by radial index: either
// filtering one file down to a whitelist of Radial_Index values, or fanning
// a file out into one output per radial index.
package radial

import (
	"encoding/csv"
	"io"
	"path/filepath"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

// radialColumn is the header name the filter and splitter key on.
const radialColumn = "Radial_Index"

// findRadialColumn locates the Radial_Index column. A combined file without
// it cannot be processed at all.
func findRadialColumn(path string, header []string) (int, error) {
	for i, name := range header {
		if name == radialColumn {
			return i, nil
		}
	}
	return 0, batch.Errorf(batch.KindMalformedRow, path, "%s column not found", radialColumn)
}

// Filter copies inputPath into outDir under the same filename, preserving
// the header and keeping only rows whose Radial_Index matches one of the
// allowed values. Allowed values are compared as strings, exactly as they
// appear in the file.
func Filter(fsys fsutil.FileSystem, inputPath, outDir string, allowed map[string]bool) error {
	f, err := fsys.Open(inputPath)
	if err != nil {
		return batch.NewError(batch.KindInputMissing, inputPath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return batch.Errorf(batch.KindMalformedRow, inputPath, "read header: %v", err)
	}
	col, err := findRadialColumn(inputPath, header)
	if err != nil {
		return err
	}

	outPath := filepath.Join(outDir, filepath.Base(inputPath))
	werr := fsutil.WriteCSVAtomic(fsys, outPath, func(w *csv.Writer) error {
		if err := w.Write(header); err != nil {
			return err
		}
		for {
			row, err := r.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return batch.Errorf(batch.KindMalformedRow, inputPath, "read row: %v", err)
			}
			if col < len(row) && allowed[row[col]] {
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	})
	if werr != nil {
		if batch.ClassifyError(werr) != batch.KindUnknown {
			return werr
		}
		return batch.NewError(batch.KindIoWrite, outPath, werr)
	}
	return nil
}
