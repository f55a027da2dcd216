package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/allisson/anonymizer/internal/app"
	"github.com/allisson/anonymizer/internal/config"
)

// RunVaultStats prints mapping counts from the vault, total and broken down
// by data type and column.
func RunVaultStats(ctx context.Context, format string, streams IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	useCase, err := container.VaultUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	if err := container.OpenVault(ctx); err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}

	stats, err := useCase.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read vault stats: %w", err)
	}

	if format == "json" {
		encoder := json.NewEncoder(streams.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]any{
			"total_mappings": stats.TotalMappings,
			"by_type":        stats.ByType,
			"by_column":      stats.ByColumn,
		})
	}

	if _, err := fmt.Fprintf(streams.Writer, "total mappings: %d\n", stats.TotalMappings); err != nil {
		return err
	}
	if err := renderCounts(streams, "by type", stats.ByType); err != nil {
		return err
	}
	return renderCounts(streams, "by column", stats.ByColumn)
}

// renderCounts prints a labeled count map with keys sorted for stable output.
func renderCounts(streams IOTuple, label string, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if _, err := fmt.Fprintf(streams.Writer, "%s:\n", label); err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := fmt.Fprintf(streams.Writer, "  %s: %d\n", key, counts[key]); err != nil {
			return err
		}
	}
	return nil
}
