// casia-report renders the run ledger as a static HTML page: per-stage unit
// outcomes and rejection tallies by error kind.
//
// Usage:
//
//	casia-report --db runs.sqlite [--output report.html]
package main

import (
	"flag"
	"log"

	"github.com/aricept094/casiapipe/internal/db"
	"github.com/aricept094/casiapipe/internal/report"
)

func main() {
	var (
		ledgerPath = flag.String("db", "", "SQLite run ledger (required)")
		output     = flag.String("output", "report.html", "output HTML file")
	)
	flag.Parse()

	if *ledgerPath == "" {
		log.Fatal("--db is required")
	}

	ledger, err := db.Open(*ledgerPath)
	if err != nil {
		log.Fatalf("Failed to open ledger %s: %v", *ledgerPath, err)
	}
	defer ledger.Close()

	stages, err := ledger.StageCounts()
	if err != nil {
		log.Fatalf("Failed to read stage counts: %v", err)
	}
	rejections, err := ledger.RejectionCounts()
	if err != nil {
		log.Fatalf("Failed to read rejection counts: %v", err)
	}
	runs, err := ledger.ListRuns()
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}

	if err := report.Build(stages, rejections, *output); err != nil {
		log.Fatalf("Failed to build report: %v", err)
	}
	log.Printf("Wrote %s (%d run(s), %d stage(s), %d rejection kind(s))",
		*output, len(runs), len(stages), len(rejections))
}
