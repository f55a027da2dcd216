package commands

import (
	"context"
	"fmt"

	"github.com/allisson/anonymizer/internal/app"
	"github.com/allisson/anonymizer/internal/config"
	keysService "github.com/allisson/anonymizer/internal/keys/service"
)

// RunCreateVaultKey generates a fresh 32-byte vault key and exports it to the
// configured key file. When a KMS key URI is configured the key material is
// wrapped before it touches disk; otherwise it is stored base64-encoded.
//
// The exported file is the only copy of the key. Losing it makes every
// mapping stored under it unrecoverable.
func RunCreateVaultKey(ctx context.Context, keyFile string, streams IOTuple) error {
	cfg := config.Load()
	if keyFile == "" {
		keyFile = cfg.VaultKeyFile
	}

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	keyFiles, err := container.KeyFileService()
	if err != nil {
		return fmt.Errorf("failed to initialize key file service: %w", err)
	}

	key, err := keysService.GenerateVaultKey()
	if err != nil {
		return fmt.Errorf("failed to generate vault key: %w", err)
	}

	if err := keyFiles.Export(ctx, keyFile, key); err != nil {
		return fmt.Errorf("failed to export vault key: %w", err)
	}

	if _, err := fmt.Fprintf(streams.Writer, "vault key written to %s\n", keyFile); err != nil {
		return err
	}
	_, err = fmt.Fprintln(streams.Writer, "keep this file safe: mappings cannot be recovered without it")
	return err
}
