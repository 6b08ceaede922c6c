package batch

import (
	"errors"
	"fmt"
)

// Kind classifies a unit-of-work failure so the pool and the run ledger can
// report rejections by category rather than by free-form message.
type Kind int

const (
	// KindUnknown is the zero value for unclassified failures.
	KindUnknown Kind = iota

	// KindInputMissing marks an expected input file that is absent.
	KindInputMissing

	// KindMalformedRow marks a data row with too few columns.
	KindMalformedRow

	// KindMarkerMissing marks a section tag that never appears in a raw file.
	KindMarkerMissing

	// KindParseNumeric marks a non-numeric cell where a number is required.
	KindParseNumeric

	// KindNonFinite marks NaN or ±Inf in parameter data or a derived statistic.
	KindNonFinite

	// KindIoWrite marks a failure to write an output file.
	KindIoWrite

	// KindOutputDirUncreatable marks an uncreatable top-level output
	// directory. This is the only kind treated as fatal for a whole batch.
	KindOutputDirUncreatable

	// KindWorkerPanic marks a panic recovered at the task boundary.
	KindWorkerPanic
)

// String returns the stable name used in logs and ledger rows.
func (k Kind) String() string {
	switch k {
	case KindInputMissing:
		return "InputMissing"
	case KindMalformedRow:
		return "MalformedRow"
	case KindMarkerMissing:
		return "MarkerMissing"
	case KindParseNumeric:
		return "ParseNumeric"
	case KindNonFinite:
		return "NonFinite"
	case KindIoWrite:
		return "IoWrite"
	case KindOutputDirUncreatable:
		return "OutputDirUncreatable"
	case KindWorkerPanic:
		return "WorkerPanic"
	default:
		return "Unknown"
	}
}

// Error is a classified unit-of-work failure. Path identifies the offending
// file or sample so a rejection can be traced back from logs or the ledger.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// NewError wraps err with a kind and the offending path.
func NewError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether the failure should abort the whole batch rather
// than just this unit of work.
func (e *Error) Fatal() bool { return e.Kind == KindOutputDirUncreatable }

// ClassifyError returns the Kind of err if it is a classified *Error,
// KindUnknown otherwise.
func ClassifyError(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}
