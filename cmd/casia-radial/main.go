// casia-radial subsets combined grid CSVs by radial index.
//
// Filter mode keeps only rows whose Radial_Index is in the --radial list and
// writes the result under --output with the same filename. Split mode fans
// each input out into one file per target index under radial_<k>/
// subdirectories.
//
// Usage:
//
//	casia-radial --mode filter --input combined_data --output combined_data/limited --radial 1,8
//	casia-radial --mode split  --input combined_data --radial 1,4,8
//	              [--jobs 8] [--config pipeline.json] [--db runs.sqlite]
package main

import (
	"flag"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/config"
	"github.com/aricept094/casiapipe/internal/db"
	"github.com/aricept094/casiapipe/internal/fsutil"
	"github.com/aricept094/casiapipe/internal/radial"
)

func main() {
	var (
		inputDir   = flag.String("input", "", "directory of combined grid CSVs (required)")
		outputDir  = flag.String("output", "", "output directory (filter default <input>/limited, split default <input>)")
		mode       = flag.String("mode", "filter", "filter or split")
		radialList = flag.String("radial", "", "comma-separated Radial_Index values (required)")
		jobs       = flag.Int("jobs", 0, "worker parallelism (0 = NumCPU)")
		configPath = flag.String("config", "", "optional pipeline config JSON")
		ledgerPath = flag.String("db", "", "optional SQLite run ledger")
	)
	flag.Parse()

	if *inputDir == "" {
		log.Fatal("--input is required")
	}
	if *mode != "filter" && *mode != "split" {
		log.Fatalf("Unknown mode %q, want filter or split", *mode)
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

	targets, allowed := parseRadials(*radialList, cfg.RadialIndices)
	if len(targets) == 0 {
		log.Fatal("--radial is required (e.g. --radial 1,4,8)")
	}

	if *outputDir == "" {
		if *mode == "filter" {
			*outputDir = filepath.Join(*inputDir, "limited")
		} else {
			*outputDir = *inputDir
		}
	}

	fsys := fsutil.OSFileSystem{}
	if *mode == "filter" {
		if err := fsys.MkdirAll(*outputDir, 0o755); err != nil {
			log.Fatalf("Failed to create output directory %s: %v", *outputDir, err)
		}
	} else {
		if err := radial.PrepareSplitDirs(fsys, *outputDir, targets); err != nil {
			log.Fatalf("Failed to prepare split directories: %v", err)
		}
	}

	entries, err := fsys.ReadDir(*inputDir)
	if err != nil {
		log.Fatalf("Failed to read input directory %s: %v", *inputDir, err)
	}
	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		inputs = append(inputs, filepath.Join(*inputDir, entry.Name()))
	}
	if len(inputs) == 0 {
		log.Printf("No CSV files found under %s, nothing to do", *inputDir)
		return
	}

	log.Printf("Running radial %s over %d file(s) for indices %v (%d workers)",
		*mode, len(inputs), targets, *jobs)
	started := time.Now()

	tasks := make([]batch.Task, 0, len(inputs))
	for _, path := range inputs {
		path := path
		tasks = append(tasks, batch.Task{
			Path: path,
			Run: func() error {
				if *mode == "filter" {
					return radial.Filter(fsys, path, *outputDir, allowed)
				}
				return radial.Split(fsys, path, *outputDir, targets)
			},
		})
	}

	pool := batch.Pool{Jobs: *jobs}
	sum := pool.Run(tasks)
	sum.LogSummary(log.Printf, "radial-"+*mode)
	log.Printf("Radial %s finished in %s", *mode, time.Since(started).Round(time.Millisecond))

	if runID, err := db.RecordStage(*ledgerPath, "radial-"+*mode, started, sum); err != nil {
		log.Printf("WARN failed to record run in ledger: %v", err)
	} else if runID != "" {
		log.Printf("Recorded run %s in %s", runID, *ledgerPath)
	}
}

// parseRadials turns the flag value (or the config fallback) into both the
// integer target list and the allowed-string set the filter matches against.
func parseRadials(list string, fallback []int) ([]int, map[string]bool) {
	var targets []int
	if list != "" {
		for _, tok := range strings.Split(list, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil {
				log.Fatalf("Bad --radial value %q: %v", tok, err)
			}
			targets = append(targets, n)
		}
	} else {
		targets = append(targets, fallback...)
	}

	allowed := make(map[string]bool, len(targets))
	for _, n := range targets {
		allowed[strconv.Itoa(n)] = true
	}
	return targets, allowed
}
