package fsutil

import (
	"encoding/csv"
	"fmt"
)

// WriteCSVAtomic writes a CSV file via a temporary sibling that is renamed
// onto the final path on success, so a crashed writer never leaves a
// half-written output under the real name.
func WriteCSVAtomic(fsys FileSystem, path string, write func(w *csv.Writer) error) error {
	tmp := path + ".tmp"

	f, err := fsys.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		fsys.Remove(tmp)
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		fsys.Remove(tmp)
		return fmt.Errorf("flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		fsys.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}

	if err := fsys.Rename(tmp, path); err != nil {
		fsys.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
