package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/anonymizer/internal/app"
	"github.com/allisson/anonymizer/internal/config"
)

// RunAnonymize processes a CSV stream through the anonymization pipeline.
// Reads from inputPath (or the tuple's reader when empty), writes anonymized
// rows to outputPath (or the tuple's writer when empty), and renders the run
// report. The vault is opened only for configurations that store mappings.
func RunAnonymize(ctx context.Context, inputPath, outputPath, reportFormat string, streams IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	pipeline, err := container.Pipeline()
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	if err := container.OpenVault(ctx); err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
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

	output, closeOutput, err := openOutput(outputPath, streams)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	report, runErr := pipeline.Run(ctx, input, output)
	if err := closeOutput(); err != nil {
		logger.Error("failed to close output", slog.Any("error", err))
	}
	if runErr != nil {
		return fmt.Errorf("anonymization failed: %w", runErr)
	}

	logger.Info("anonymization completed",
		slog.Int64("rows", report.Rows),
		slog.Int("report_errors", len(report.Errors)),
	)

	// When the anonymized rows go to stdout, the report would corrupt the
	// stream, so it is only logged.
	if outputPath == "" {
		return nil
	}

	if reportFormat == "json" {
		return report.RenderJSON(streams.Writer)
	}
	return report.RenderText(streams.Writer)
}
