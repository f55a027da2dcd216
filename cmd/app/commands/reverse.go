package commands

import (
	"context"
	"fmt"

	"github.com/allisson/anonymizer/internal/app"
	"github.com/allisson/anonymizer/internal/config"
)

// RunReverse looks up the original value for an anonymized one. Requires a
// vault-backed configuration and an opened vault.
func RunReverse(ctx context.Context, column, value string, streams IOTuple) error {
	if column == "" || value == "" {
		return fmt.Errorf("--column and --value are required")
	}

	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	eng, err := container.Engine()
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if err := container.OpenVault(ctx); err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}

	original, err := eng.Deanonymize(ctx, column, value)
	if err != nil {
		return fmt.Errorf("failed to reverse value: %w", err)
	}

	_, err = fmt.Fprintln(streams.Writer, original)
	return err
}
