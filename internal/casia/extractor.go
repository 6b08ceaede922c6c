package casia

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

// Extractor harvests every known section from raw instrument exports.
type Extractor struct {
	FS fsutil.FileSystem

	// Logf receives per-row and per-section warnings. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewExtractor returns an Extractor backed by fsys.
func NewExtractor(fsys fsutil.FileSystem) *Extractor {
	return &Extractor{FS: fsys}
}

// Result reports the outcome of extracting one raw file.
type Result struct {
	// SectionsWritten counts section files emitted for this input.
	SectionsWritten int

	// Errors holds one classified error per failed section. Sections are
	// independent: a missing tag does not stop the others.
	Errors []error
}

// PrepareOutputDirs creates the per-section directories under outDir.
// Failure here is fatal for the batch: nothing can be written without them.
func (e *Extractor) PrepareOutputDirs(outDir string) error {
	if err := e.FS.MkdirAll(outDir, 0755); err != nil {
		return batch.NewError(batch.KindOutputDirUncreatable, outDir, err)
	}
	for _, s := range Sections {
		dir := filepath.Join(outDir, s.Name())
		if err := e.FS.MkdirAll(dir, 0755); err != nil {
			return batch.NewError(batch.KindOutputDirUncreatable, dir, err)
		}
	}
	return nil
}

// ExtractFile harvests all known sections from one raw export into
// outDir/<Section>/<Section>_<filename>. Section failures are collected,
// not propagated: the caller decides whether a partially-extracted file
// counts as a batch failure.
func (e *Extractor) ExtractFile(inputPath, outDir string) Result {
	var res Result

	rows, err := e.readAllRows(inputPath)
	if err != nil {
		res.Errors = append(res.Errors, err)
		return res
	}

	for _, section := range Sections {
		if err := e.extractSection(inputPath, outDir, section, rows); err != nil {
			e.logf("skipping section %q in %s: %v", section.Tag, inputPath, err)
			res.Errors = append(res.Errors, err)
			continue
		}
		res.SectionsWritten++
	}
	return res
}

// readAllRows reads the raw export with a permissive reader: variable column
// counts are expected in the narrative header region.
func (e *Extractor) readAllRows(path string) ([][]string, error) {
	f, err := e.FS.Open(path)
	if err != nil {
		return nil, batch.NewError(batch.KindInputMissing, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, batch.Errorf(batch.KindMalformedRow, path, "read raw export: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// extractSection locates the section tag and copies its 256x32 block.
func (e *Extractor) extractSection(inputPath, outDir string, section Section, rows [][]string) error {
	marker := -1
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == section.Tag {
			marker = i
			break
		}
	}
	if marker < 0 {
		return batch.Errorf(batch.KindMarkerMissing, inputPath, "marker %q not found", section.Tag)
	}

	start := marker + section.Skip
	end := start + RowsToKeep

	var kept [][]string
	for i := start; i < end && i < len(rows); i++ {
		row := rows[i]
		if len(row) < ColsToKeep {
			e.logf("warning: row %d in %s has only %d columns (expected %d), skipping row",
				i+1, inputPath, len(row), ColsToKeep)
			continue
		}
		kept = append(kept, row[:ColsToKeep])
	}

	if len(kept) == 0 {
		return batch.Errorf(batch.KindMalformedRow, inputPath,
			"no rows written for marker %q (start=%d, end=%d)", section.Tag, start, end)
	}
	if len(kept) != RowsToKeep {
		e.logf("warning: marker %q in %s: expected %d rows, wrote %d",
			section.Tag, inputPath, RowsToKeep, len(kept))
	}

	outPath := filepath.Join(outDir, section.Name(),
		fmt.Sprintf("%s_%s", section.FilePrefix(), filepath.Base(inputPath)))
	if err := fsutil.WriteCSVAtomic(e.FS, outPath, func(w *csv.Writer) error {
		for _, row := range kept {
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return batch.NewError(batch.KindIoWrite, outPath, err)
	}
	return nil
}

func (e *Extractor) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}
