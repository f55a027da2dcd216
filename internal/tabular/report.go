package tabular

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	apperrors "github.com/allisson/anonymizer/internal/errors"
)

// maxReportErrors bounds the error list so a failing run cannot grow the
// report without limit.
const maxReportErrors = 100

// ColumnReport summarizes one column of a run.
type ColumnReport struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Cells      int64   `json:"cells"`
}

// Report accumulates per-run statistics. Safe for concurrent use by the
// pipeline workers.
type Report struct {
	mu      sync.Mutex
	Files   int                      `json:"files"`
	Rows    int64                    `json:"rows"`
	Columns map[string]*ColumnReport `json:"columns"`
	Errors  []string                 `json:"errors"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{Columns: make(map[string]*ColumnReport)}
}

// SetColumnType records the detection outcome for a column.
func (r *Report) SetColumnType(column, dataType string, confidence float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.column(column)
	entry.Type = dataType
	entry.Confidence = confidence
}

// CountCell increments a column's processed-cell counter.
func (r *Report) CountCell(column string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.column(column).Cells++
}

// AddError appends an error to the report, keeping at most maxReportErrors.
func (r *Report) AddError(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Errors) < maxReportErrors {
		r.Errors = append(r.Errors, err.Error())
	}
}

// Merge folds another report into this one for multi-file runs.
func (r *Report) Merge(other *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Files += other.Files
	r.Rows += other.Rows
	for name, column := range other.Columns {
		entry := r.column(name)
		entry.Cells += column.Cells
		if entry.Type == "" {
			entry.Type = column.Type
			entry.Confidence = column.Confidence
		}
	}
	for _, message := range other.Errors {
		if len(r.Errors) < maxReportErrors {
			r.Errors = append(r.Errors, message)
		}
	}
}

func (r *Report) column(name string) *ColumnReport {
	entry, ok := r.Columns[name]
	if !ok {
		entry = &ColumnReport{}
		r.Columns[name] = entry
	}
	return entry
}

// RenderJSON writes the report as indented JSON.
func (r *Report) RenderJSON(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return apperrors.Wrap(err, "failed to render report as json")
	}
	return nil
}

// RenderText writes a human-readable summary, columns sorted by name.
func (r *Report) RenderText(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.Columns))
	for name := range r.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := fmt.Fprintf(w, "files: %d\nrows: %d\n", r.Files, r.Rows); err != nil {
		return apperrors.Wrap(err, "failed to render report")
	}
	for _, name := range names {
		column := r.Columns[name]
		_, err := fmt.Fprintf(w, "column %s: type=%s confidence=%.2f cells=%d\n",
			name, column.Type, column.Confidence, column.Cells)
		if err != nil {
			return apperrors.Wrap(err, "failed to render report")
		}
	}
	for _, message := range r.Errors {
		if _, err := fmt.Fprintf(w, "error: %s\n", message); err != nil {
			return apperrors.Wrap(err, "failed to render report")
		}
	}
	return nil
}
