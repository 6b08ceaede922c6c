// casia-dedupe removes repeated acquisitions of the same patient and eye,
// keeping the earliest sequence number and writing an audit report of every
// removal.
//
// Filenames are expected to follow the instrument's export grammar:
// at least six underscore-separated fields, where the first four identify
// the patient, field five is the eye (L or R) and field six carries the
// acquisition sequence number.
//
// Dedupe runs single threaded so the audit report ordering is stable.
//
// Usage:
//
//	casia-dedupe --input processed_data/Axial_Anterior
//	             [--audit-dir reports] [--cohort "Axial Anterior"]
//	             [--config pipeline.json] [--db runs.sqlite]
package main

import (
	"flag"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/aricept094/casiapipe/internal/batch"
	"github.com/aricept094/casiapipe/internal/config"
	"github.com/aricept094/casiapipe/internal/db"
	"github.com/aricept094/casiapipe/internal/fsutil"
	"github.com/aricept094/casiapipe/internal/sample"
)

func main() {
	var (
		inputDir   = flag.String("input", "", "directory of section CSV files to dedupe (required)")
		auditDir   = flag.String("audit-dir", "", "directory for the audit report (default <input>)")
		cohort     = flag.String("cohort", "", "cohort label used in the audit filename (default input dir name)")
		configPath = flag.String("config", "", "optional pipeline config JSON")
		ledgerPath = flag.String("db", "", "optional SQLite run ledger")
	)
	flag.Parse()

	if *inputDir == "" {
		log.Fatal("--input is required")
	}
	if *auditDir == "" {
		*auditDir = *inputDir
	}

	cfg := config.EmptyPipelineConfig()
	if *configPath != "" {
		loaded, err := config.LoadPipelineConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", *configPath, err)
		}
		cfg = loaded
	}
	if *cohort == "" {
		*cohort = cfg.GetCohort(filepath.Base(*inputDir))
	}
	if *ledgerPath == "" {
		*ledgerPath = cfg.GetLedgerPath()
	}

	auditName := "duplicate_removal_report_" + strings.ReplaceAll(*cohort, " ", "_") + ".csv"
	auditPath := filepath.Join(*auditDir, auditName)

	started := time.Now()
	deduper := sample.NewDeduper(fsutil.OSFileSystem{})

	reports, removed, err := deduper.Run(*inputDir, auditPath)
	if err != nil {
		log.Fatalf("Dedupe failed: %v", err)
	}

	for _, r := range reports {
		log.Printf("DUPLICATE keep=%s remove=%s (%s)", r.KeepFile, r.RemoveFile, r.Reason)
	}
	log.Printf("Dedupe of %s done: %d duplicate(s) found, %d file(s) removed, audit at %s",
		*inputDir, len(reports), removed, auditPath)

	sum := batch.Summary{Processed: removed}
	if runID, err := db.RecordStage(*ledgerPath, "dedupe", started, sum); err != nil {
		log.Printf("WARN failed to record run in ledger: %v", err)
	} else if runID != "" {
		log.Printf("Recorded run %s in %s", runID, *ledgerPath)
	}
}
