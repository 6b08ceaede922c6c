package radial

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

// SplitDir returns the fan-out directory for one radial index.
func SplitDir(baseOutDir string, index int) string {
	return filepath.Join(baseOutDir, fmt.Sprintf("radial_%d", index))
}

// PrepareSplitDirs creates the radial_<k> directories. Failure is fatal for
// the batch.
func PrepareSplitDirs(fsys fsutil.FileSystem, baseOutDir string, targets []int) error {
	for _, k := range targets {
		dir := SplitDir(baseOutDir, k)
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return batch.NewError(batch.KindOutputDirUncreatable, dir, err)
		}
	}
	return nil
}

// Split fans inputPath out into one file per target radial index, each under
// radial_<k>/ with the same filename, carrying the header plus exactly the
// rows whose Radial_Index parses to k. Rows whose index does not parse or is
// not targeted are dropped silently.
func Split(fsys fsutil.FileSystem, inputPath, baseOutDir string, targets []int) error {
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

	// One in-memory bucket per target; files are written whole so a failed
	// split never leaves a partial fan-out member behind.
	buckets := make(map[int][][]string, len(targets))
	for _, k := range targets {
		buckets[k] = nil
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return batch.Errorf(batch.KindMalformedRow, inputPath, "read row: %v", err)
		}
		if col >= len(row) {
			continue
		}
		k, err := strconv.Atoi(row[col])
		if err != nil {
			continue
		}
		if _, wanted := buckets[k]; !wanted {
			continue
		}
		buckets[k] = append(buckets[k], row)
	}

	name := filepath.Base(inputPath)
	for _, k := range targets {
		outPath := filepath.Join(SplitDir(baseOutDir, k), name)
		rows := buckets[k]
		err := fsutil.WriteCSVAtomic(fsys, outPath, func(w *csv.Writer) error {
			if err := w.Write(header); err != nil {
				return err
			}
			for _, row := range rows {
				if err := w.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return batch.NewError(batch.KindIoWrite, outPath, err)
		}
	}
	return nil
}
