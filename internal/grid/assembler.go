package grid

import (
	"encoding/csv"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

// sampleScanSection is the section directory used to enumerate sample IDs.
// Every sample needs all eight sections anyway; any one of them works as
// the roster.
const sampleScanSection = "Elevation_Anterior"

// Assembler joins the eight extracted section matrices of one sample into a
// single long-form combined CSV. A sample is rejected wholly on any missing
// or malformed input; no partial combined file is ever produced under the
// final name.
type Assembler struct {
	FS fsutil.FileSystem

	// BaseDir contains one subdirectory per section.
	BaseDir string

	// OutDir receives <sample>_combined.csv files.
	OutDir string

	// Logf receives progress notices. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewAssembler returns an Assembler over baseDir writing into outDir.
func NewAssembler(fsys fsutil.FileSystem, baseDir, outDir string) *Assembler {
	return &Assembler{FS: fsys, BaseDir: baseDir, OutDir: outDir}
}

// Header returns the exact ordered column list of a combined file.
func Header() []string {
	header := []string{
		"Meridian_Index",
		"Radial_Index",
		"Meridian_Angle_Deg",
		"Meridian_Angle_Rad",
		"Normalized_Radius",
		"Transformed_Radius",
		"Cos_Theta",
		"Sin_Theta",
		"X_Coordinate",
		"Y_Coordinate",
		"Alpha_Angle",
	}
	for _, p := range Parameters {
		header = append(header, p+"_Value", p+"_Scaled")
	}
	return header
}

// ListSamples enumerates sample IDs from the roster section directory,
// sorted. A sample ID is the extracted filename with the section prefix and
// the .csv suffix stripped.
func (a *Assembler) ListSamples() ([]string, error) {
	dir := filepath.Join(a.BaseDir, SectionDir(sampleScanSection))
	entries, err := a.FS.ReadDir(dir)
	if err != nil {
		return nil, batch.NewError(batch.KindInputMissing, dir, err)
	}

	prefix := sampleScanSection + "_"
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") || !strings.HasPrefix(name, prefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".csv"))
	}
	sort.Strings(ids)
	return ids, nil
}

// SectionPath returns the extracted matrix path for one parameter of one
// sample.
func (a *Assembler) SectionPath(param, sampleID string) string {
	return filepath.Join(a.BaseDir, SectionDir(param),
		fmt.Sprintf("%s_%s.csv", param, sampleID))
}

// CombinedPath returns the output path for one sample.
func (a *Assembler) CombinedPath(sampleID string) string {
	return filepath.Join(a.OutDir, sampleID+"_combined.csv")
}

// AssembleSample reads all parameter matrices for sampleID, standardises
// each within the sample and writes the 8192-row combined CSV in
// (meridian asc, radial asc) order.
func (a *Assembler) AssembleSample(sampleID string) error {
	vectors := make(map[string][]float64, len(Parameters))
	moments := make(map[string]Stats, len(Parameters))

	for _, param := range Parameters {
		path := a.SectionPath(param, sampleID)
		values, err := ReadMatrix(a.FS, path)
		if err != nil {
			return err
		}
		stats, err := ComputeStats(path, values)
		if err != nil {
			return err
		}
		vectors[param] = values
		moments[param] = stats
	}

	pachymetry := vectors["Pachymetry"]
	heightAnterior := vectors["Height_Anterior"]
	heightPosterior := vectors["Height_Posterior"]

	outPath := a.CombinedPath(sampleID)
	err := fsutil.WriteCSVAtomic(a.FS, outPath, func(w *csv.Writer) error {
		if err := w.Write(Header()); err != nil {
			return err
		}

		row := make([]string, 0, len(Header()))
		for meridian := 0; meridian < NumMeridians; meridian++ {
			for radial := 0; radial < NumRadials; radial++ {
				i := DataIndex(meridian, radial)
				g := GeometryAt(meridian, radial)
				alpha := AlphaAngle(pachymetry[i], heightPosterior[i], heightAnterior[i])

				row = row[:0]
				row = append(row,
					strconv.Itoa(g.MeridianIndex),
					strconv.Itoa(g.RadialIndex),
					formatFloat(g.MeridianAngleDeg),
					formatFloat(g.MeridianAngleRad),
					formatFloat(g.NormalizedRadius),
					formatFloat(g.TransformedRadius),
					formatFloat(g.CosTheta),
					formatFloat(g.SinTheta),
					formatFloat(g.X),
					formatFloat(g.Y),
					formatFloat(alpha),
				)
				for _, param := range Parameters {
					value := vectors[param][i]
					row = append(row,
						formatFloat(value),
						formatFloat(moments[param].Scale(value)))
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if batch.ClassifyError(err) != batch.KindUnknown {
			return err
		}
		return batch.NewError(batch.KindIoWrite, outPath, err)
	}

	a.logf("combined %s: %d rows", outPath, CellsPerSample)
	return nil
}

// formatFloat renders a float with shortest-round-trip formatting so
// consumers recover the exact IEEE-754 double.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (a *Assembler) logf(format string, args ...any) {
	if a.Logf != nil {
		a.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}
