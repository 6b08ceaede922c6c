// casia-combine assembles the per-section files of each sample into one
// long-format grid CSV: 8192 rows (256 meridians by 32 radials) carrying the
// polar geometry columns, the raw value of every parameter and its in-sample
// z-score.
//
// The sample roster comes from the Elevation Anterior section directory; a
// sample missing any of the eight sections is rejected and logged, the rest
// of the batch keeps going.
//
// Usage:
//
//	casia-combine --input processed_data [--output combined_data]
//	              [--jobs 8] [--config pipeline.json] [--db runs.sqlite]
package main

import (
	"flag"
	"log"
	"path/filepath"
	"time"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/config"
	"github.com/aricept094/casiapipe/internal/db"
	"github.com/aricept094/casiapipe/internal/fsutil"
	"github.com/aricept094/casiapipe/internal/grid"
)

func main() {
	var (
		inputDir   = flag.String("input", "", "processed_data directory holding the section subdirectories (required)")
		outputDir  = flag.String("output", "", "combined output directory (default <input>/../combined_data)")
		jobs       = flag.Int("jobs", 0, "worker parallelism (0 = NumCPU)")
		configPath = flag.String("config", "", "optional pipeline config JSON")
		ledgerPath = flag.String("db", "", "optional SQLite run ledger")
	)
	flag.Parse()

	if *inputDir == "" {
		log.Fatal("--input is required")
	}
	if *outputDir == "" {
		*outputDir = filepath.Join(filepath.Dir(*inputDir), "combined_data")
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
	if err := fsys.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory %s: %v", *outputDir, err)
	}

	asm := grid.NewAssembler(fsys, *inputDir, *outputDir)
	samples, err := asm.ListSamples()
	if err != nil {
		log.Fatalf("Failed to list samples under %s: %v", *inputDir, err)
	}
	if len(samples) == 0 {
		log.Printf("No samples found under %s, nothing to do", *inputDir)
		return
	}

	log.Printf("Assembling %d sample(s) into %s (%d workers)", len(samples), *outputDir, *jobs)
	started := time.Now()

	tasks := make([]batch.Task, 0, len(samples))
	for _, id := range samples {
		id := id
		tasks = append(tasks, batch.Task{
			Path: id,
			Run:  func() error { return asm.AssembleSample(id) },
		})
	}

	pool := batch.Pool{Jobs: *jobs}
	sum := pool.Run(tasks)
	sum.LogSummary(log.Printf, "combine")
	log.Printf("Assembly finished in %s", time.Since(started).Round(time.Millisecond))

	if runID, err := db.RecordStage(*ledgerPath, "combine", started, sum); err != nil {
		log.Printf("WARN failed to record run in ledger: %v", err)
	} else if runID != "" {
		log.Printf("Recorded run %s in %s", runID, *ledgerPath)
	}
}
