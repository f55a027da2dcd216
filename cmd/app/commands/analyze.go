package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/allisson/anonymizer/internal/app"
	"github.com/allisson/anonymizer/internal/config"
)

// RunAnalyze detects column types from a CSV sample without transforming
// anything. The detected schema is printed as text or indented JSON.
func RunAnalyze(ctx context.Context, inputPath, format string, streams IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	pipeline, err := container.Pipeline()
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	input, closeInput, err := openInput(inputPath, streams)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		if err := closeInput(); err != nil {
			logger.Error("failed to close input", slog.Any("error", err))
		}
	}()

	schema, err := pipeline.Analyze(ctx, input)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(streams.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(schema)
	}

	for _, column := range schema.Columns {
		if _, err := fmt.Fprintf(
			streams.Writer,
			"%s\t%s\t%.2f\n",
			column.Name, column.Type, column.Confidence,
		); err != nil {
			return err
		}
	}
	return nil
}
