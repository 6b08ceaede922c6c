package sample

import (
	"encoding/csv"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

// Report records one resolved duplicate: the canonical file kept for a
// patient-eye and one file removed in its favour.
type Report struct {
	KeepFile   string
	RemoveFile string
	Reason     string
}

// Deduper picks one canonical sample per patient-eye and deletes the rest.
// It runs single-threaded so the audit trail has a deterministic order.
type Deduper struct {
	FS fsutil.FileSystem

	// Logf receives per-file notices. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewDeduper returns a Deduper backed by fsys.
func NewDeduper(fsys fsutil.FileSystem) *Deduper {
	return &Deduper{FS: fsys}
}

// FindDuplicates enumerates *.csv files in dir, groups them by patient-eye
// and returns one Report per removal candidate. The directory listing is
// sorted before grouping so keeper choice and report order do not depend on
// filesystem iteration order. Filenames that do not parse are dropped
// silently.
func (d *Deduper) FindDuplicates(dir string) ([]Report, error) {
	entries, err := d.FS.ReadDir(dir)
	if err != nil {
		return nil, batch.NewError(batch.KindInputMissing, dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	groups := make(map[string][]Identity)
	var order []string
	for _, name := range names {
		id, ok := ParseFilename(name)
		if !ok {
			continue
		}
		key := id.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], id)
	}

	var reports []Report
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		// Stable sort keeps the sorted-filename order for equal sequences.
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Sequence < members[j].Sequence
		})
		keeper := members[0]
		for _, removal := range members[1:] {
			reports = append(reports, Report{
				KeepFile:   keeper.Filename,
				RemoveFile: removal.Filename,
				Reason: fmt.Sprintf("Keep sequence %d (lower) vs %d (higher) for eye %s",
					keeper.Sequence, removal.Sequence, keeper.Eye),
			})
		}
	}
	return reports, nil
}

// WriteReport writes the audit CSV. The audit must land on disk before any
// file is deleted.
func (d *Deduper) WriteReport(reports []Report, path string) error {
	err := fsutil.WriteCSVAtomic(d.FS, path, func(w *csv.Writer) error {
		if err := w.Write([]string{"Keep File", "Remove File", "Reason"}); err != nil {
			return err
		}
		for _, r := range reports {
			if err := w.Write([]string{r.KeepFile, r.RemoveFile, r.Reason}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return batch.NewError(batch.KindIoWrite, path, err)
	}
	return nil
}

// RemoveFiles deletes the removal targets named by reports from dir.
// A target that is already gone is logged and skipped.
func (d *Deduper) RemoveFiles(dir string, reports []Report) int {
	removed := 0
	for _, r := range reports {
		path := filepath.Join(dir, r.RemoveFile)
		if !d.FS.Exists(path) {
			d.logf("removal target already gone: %s", path)
			continue
		}
		if err := d.FS.Remove(path); err != nil {
			d.logf("failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed
}

// Run finds duplicates in dir, writes the audit CSV to auditPath and then
// deletes the removal files. It returns the reports and the count of files
// actually removed.
func (d *Deduper) Run(dir, auditPath string) ([]Report, int, error) {
	reports, err := d.FindDuplicates(dir)
	if err != nil {
		return nil, 0, err
	}
	if len(reports) == 0 {
		return nil, 0, nil
	}
	if err := d.WriteReport(reports, auditPath); err != nil {
		return reports, 0, err
	}
	return reports, d.RemoveFiles(dir, reports), nil
}

func (d *Deduper) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}
