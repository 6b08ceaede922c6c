// Package batch runs independent units of work across a bounded worker pool.
//
// Units are independent files or samples; a panic or classified failure in
// one unit never terminates its siblings. The pool records processed/failed
// counts and per-kind rejection tallies for the end-of-run summary.
package batch

import (
	"log"
	"runtime"
	"sort"
	"sync"
)

// Task is one unit of work, usually a single input file or sample.
type Task struct {
	// Path identifies the unit in logs and the ledger.
	Path string

	// Run does the work. A returned *Error is counted under its Kind;
	// any other error is counted as Unknown.
	Run func() error
}

// Summary holds the outcome counts of a pool run.
type Summary struct {
	Processed int
	Failed    int
	ByKind    map[Kind]int

	// Rejections preserves one entry per failed unit for the audit trail.
	Rejections []Rejection
}

// Rejection records a single failed unit.
type Rejection struct {
	Path    string
	Kind    Kind
	Message string
}

// Pool executes tasks with at most Jobs workers.
type Pool struct {
	// Jobs bounds worker parallelism. Zero or negative means NumCPU.
	Jobs int

	// Logf receives one line per rejection. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// Run executes all tasks and returns the outcome summary. Panics inside a
// task are recovered at the task boundary, logged with the offending path,
// and counted as WorkerPanic.
func (p *Pool) Run(tasks []Task) Summary {
	jobs := p.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	logf := p.Logf
	if logf == nil {
		logf = log.Printf
	}

	var (
		mu      sync.Mutex
		summary = Summary{ByKind: make(map[Kind]int)}
	)

	record := func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			summary.Processed++
			return
		}
		kind := ClassifyError(err)
		summary.Failed++
		summary.ByKind[kind]++
		summary.Rejections = append(summary.Rejections, Rejection{
			Path:    path,
			Kind:    kind,
			Message: err.Error(),
		})
		logf("reject %s: %v", path, err)
	}

	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(t Task) {
			defer wg.Done()
			defer func() { <-sem }()
			record(t.Path, runRecovered(t))
		}(task)
	}
	wg.Wait()

	// Stable order for the audit trail regardless of completion order.
	sort.Slice(summary.Rejections, func(i, j int) bool {
		return summary.Rejections[i].Path < summary.Rejections[j].Path
	})
	return summary
}

// runRecovered invokes the task, converting a panic into a WorkerPanic error.
func runRecovered(t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Errorf(KindWorkerPanic, t.Path, "panic in worker: %v", r)
		}
	}()
	return t.Run()
}

// LogSummary prints the end-of-batch summary, one line for the totals and
// one per rejection kind.
func (s Summary) LogSummary(logf func(format string, args ...any), stage string) {
	if logf == nil {
		logf = log.Printf
	}
	logf("%s: processed %d units, failed %d", stage, s.Processed, s.Failed)
	kinds := make([]Kind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		logf("%s: %s=%d", stage, k, s.ByKind[k])
	}
}
