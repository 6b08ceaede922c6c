// casia-extract harvests the tagged measurement sections out of raw CASIA
// instrument exports.
//
// Each *.csv under --input is scanned for the eight section tags and every
// hit is written to processed_data/<Section Name>/<Prefix>_<filename>.
// Files are independent: a malformed export is logged and skipped, the rest
// of the batch keeps going.
//
// Usage:
//
//	casia-extract --input /data/raw [--output /data/raw/processed_data]
//	              [--file one_export.csv] [--jobs 8] [--config pipeline.json]
//	              [--db runs.sqlite]
package main

import (
	"flag"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/casia"
	"github.com/aricept094/casiapipe/internal/config"
	"github.com/aricept094/casiapipe/internal/db"
	"github.com/aricept094/casiapipe/internal/fsutil"
)

func main() {
	var (
		inputDir   = flag.String("input", "", "directory of raw instrument CSV exports (required)")
		outputDir  = flag.String("output", "", "section output directory (default <input>/processed_data)")
		singleFile = flag.String("file", "", "extract only this file instead of the whole directory")
		jobs       = flag.Int("jobs", 0, "worker parallelism (0 = NumCPU)")
		configPath = flag.String("config", "", "optional pipeline config JSON")
		ledgerPath = flag.String("db", "", "optional SQLite run ledger")
	)
	flag.Parse()

	if *inputDir == "" {
		log.Fatal("--input is required")
	}
	if *outputDir == "" {
		*outputDir = filepath.Join(*inputDir, "processed_data")
	}

	cfg := config.EmptyPipelineConfig()
	if *configPath != "" {
		loaded, err := config.LoadPipelineConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", *configPath, err)
		}
		cfg = loaded
	}
	if *jobs == 0 {
		*jobs = cfg.GetJobs()
	}
	if *ledgerPath == "" {
		*ledgerPath = cfg.GetLedgerPath()
	}

	fsys := fsutil.OSFileSystem{}
	ex := casia.NewExtractor(fsys)

	if err := ex.PrepareOutputDirs(*outputDir); err != nil {
		log.Fatalf("Failed to prepare output directories: %v", err)
	}

	var inputs []string
	if *singleFile != "" {
		inputs = []string{*singleFile}
	} else {
		entries, err := fsys.ReadDir(*inputDir)
		if err != nil {
			log.Fatalf("Failed to read input directory %s: %v", *inputDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
				continue
			}
			inputs = append(inputs, filepath.Join(*inputDir, entry.Name()))
		}
	}
	if len(inputs) == 0 {
		log.Printf("No CSV files found under %s, nothing to do", *inputDir)
		return
	}

	log.Printf("Extracting sections from %d file(s) into %s (%d workers)",
		len(inputs), *outputDir, *jobs)
	started := time.Now()

	tasks := make([]batch.Task, 0, len(inputs))
	for _, path := range inputs {
		path := path
		tasks = append(tasks, batch.Task{
			Path: path,
			Run: func() error {
				// Section failures are logged by the extractor; a file
				// only counts as failed when nothing could be harvested.
				res := ex.ExtractFile(path, *outputDir)
				if res.SectionsWritten == 0 && len(res.Errors) > 0 {
					return res.Errors[0]
				}
				return nil
			},
		})
	}

	pool := batch.Pool{Jobs: *jobs}
	sum := pool.Run(tasks)
	sum.LogSummary(log.Printf, "extract")
	log.Printf("Extraction finished in %s", time.Since(started).Round(time.Millisecond))

	if runID, err := db.RecordStage(*ledgerPath, "extract", started, sum); err != nil {
		log.Printf("WARN failed to record run in ledger: %v", err)
	} else if runID != "" {
		log.Printf("Recorded run %s in %s", runID, *ledgerPath)
	}
}
