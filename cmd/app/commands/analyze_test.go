package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunAnalyze(t *testing.T) {
	t.Setenv("ANONYMIZER_PROFILE", "test-data")

	input := "email,phone\nalice@example.com,+1-202-555-0134\nbob@example.com,+1-202-555-0178\n"

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.csv")
		require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

		var buf bytes.Buffer
		err := RunAnalyze(context.Background(), path, "text", IOTuple{Reader: strings.NewReader(""), Writer: &buf})
		require.NoError(t, err)
		require.Contains(t, buf.String(), "email")
		require.Contains(t, buf.String(), "phone")
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.csv")
		require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

		var buf bytes.Buffer
		err := RunAnalyze(context.Background(), path, "json", IOTuple{Reader: strings.NewReader(""), Writer: &buf})
		require.NoError(t, err)

		var schema struct {
			Columns []struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"columns"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
		require.Len(t, schema.Columns, 2)
		require.Equal(t, "email", schema.Columns[0].Name)
	})

	t.Run("stdin", func(t *testing.T) {
		var buf bytes.Buffer
		err := RunAnalyze(context.Background(), "", "text", IOTuple{Reader: strings.NewReader(input), Writer: &buf})
		require.NoError(t, err)
		require.Contains(t, buf.String(), "email")
	})

	t.Run("missing-file", func(t *testing.T) {
		var buf bytes.Buffer
		err := RunAnalyze(context.Background(), "does-not-exist.csv", "text", IOTuple{Reader: strings.NewReader(""), Writer: &buf})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open input")
	})
}
