package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunAnonymize(t *testing.T) {
	t.Setenv("ANONYMIZER_PROFILE", "test-data")

	input := "email,phone\nalice@example.com,+1-202-555-0134\nbob@example.com,+1-202-555-0178\n"

	t.Run("file-to-file", func(t *testing.T) {
		dir := t.TempDir()
		inputPath := filepath.Join(dir, "input.csv")
		outputPath := filepath.Join(dir, "output.csv")
		require.NoError(t, os.WriteFile(inputPath, []byte(input), 0o600))

		var buf bytes.Buffer
		err := RunAnonymize(context.Background(), inputPath, outputPath, "text", IOTuple{Reader: strings.NewReader(""), Writer: &buf})
		require.NoError(t, err)

		outputFile, err := os.Open(outputPath)
		require.NoError(t, err)
		defer func() {
			require.NoError(t, outputFile.Close())
		}()

		rows, err := csv.NewReader(outputFile).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.Equal(t, []string{"email", "phone"}, rows[0])
		require.NotEqual(t, "alice@example.com", rows[1][0])

		require.Contains(t, buf.String(), "rows: 2")
	})

	t.Run("stdin-to-stdout", func(t *testing.T) {
		var buf bytes.Buffer
		err := RunAnonymize(context.Background(), "", "", "text", IOTuple{Reader: strings.NewReader(input), Writer: &buf})
		require.NoError(t, err)

		rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		// The report is only logged here, never mixed into the CSV stream.
		require.NotContains(t, buf.String(), "rows: 2")
	})

	t.Run("missing-input", func(t *testing.T) {
		var buf bytes.Buffer
		err := RunAnonymize(context.Background(), "does-not-exist.csv", "", "text", IOTuple{Reader: strings.NewReader(""), Writer: &buf})
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open input")
	})
}
