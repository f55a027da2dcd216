package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Counters(t *testing.T) {
	report := NewReport()
	report.SetColumnType("email", "email", 0.95)
	report.CountCell("email")
	report.CountCell("email")

	entry := report.Columns["email"]
	require.NotNil(t, entry)
	assert.Equal(t, "email", entry.Type)
	assert.Equal(t, 0.95, entry.Confidence)
	assert.Equal(t, int64(2), entry.Cells)
}

func TestReport_AddErrorBounded(t *testing.T) {
	report := NewReport()
	report.AddError(nil)
	assert.Empty(t, report.Errors)

	for i := 0; i < maxReportErrors+10; i++ {
		report.AddError(fmt.Errorf("failure %d", i))
	}
	assert.Len(t, report.Errors, maxReportErrors)
}

func TestReport_Merge(t *testing.T) {
	first := NewReport()
	first.Files = 1
	first.Rows = 10
	first.SetColumnType("email", "email", 0.9)
	first.CountCell("email")

	second := NewReport()
	second.Files = 1
	second.Rows = 5
	second.SetColumnType("email", "email", 0.9)
	second.CountCell("email")
	second.SetColumnType("phone", "phone", 0.8)
	second.CountCell("phone")
	second.AddError(errors.New("bad row"))

	first.Merge(second)

	assert.Equal(t, 2, first.Files)
	assert.Equal(t, int64(15), first.Rows)
	assert.Equal(t, int64(2), first.Columns["email"].Cells)
	assert.Equal(t, "phone", first.Columns["phone"].Type)
	assert.Equal(t, []string{"bad row"}, first.Errors)
}

func TestReport_RenderText(t *testing.T) {
	report := NewReport()
	report.Files = 1
	report.Rows = 3
	report.SetColumnType("phone", "phone", 0.8)
	report.SetColumnType("email", "email", 0.95)
	report.CountCell("email")
	report.AddError(errors.New("bad row"))

	var buf bytes.Buffer
	require.NoError(t, report.RenderText(&buf))

	output := buf.String()
	assert.Contains(t, output, "files: 1\nrows: 3\n")
	assert.Contains(t, output, "column email: type=email confidence=0.95 cells=1")
	assert.Contains(t, output, "error: bad row")
	assert.Less(t, strings.Index(output, "column email"), strings.Index(output, "column phone"))
}

func TestReport_RenderJSON(t *testing.T) {
	report := NewReport()
	report.Files = 1
	report.Rows = 2
	report.SetColumnType("email", "email", 0.95)
	report.CountCell("email")

	var buf bytes.Buffer
	require.NoError(t, report.RenderJSON(&buf))

	var decoded struct {
		Files   int                     `json:"files"`
		Rows    int64                   `json:"rows"`
		Columns map[string]ColumnReport `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Files)
	assert.Equal(t, int64(2), decoded.Rows)
	assert.Equal(t, int64(1), decoded.Columns["email"].Cells)
}
