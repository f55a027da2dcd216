package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCreateVaultKey(t *testing.T) {
	t.Run("explicit-key-file", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "vault.key")

		var buf bytes.Buffer
		err := RunCreateVaultKey(context.Background(), keyFile, IOTuple{Reader: strings.NewReader(""), Writer: &buf})
		require.NoError(t, err)
		require.Contains(t, buf.String(), keyFile)

		info, err := os.Stat(keyFile)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("configured-key-file", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "configured.key")
		t.Setenv("VAULT_KEY_FILE", keyFile)

		var buf bytes.Buffer
		err := RunCreateVaultKey(context.Background(), "", IOTuple{Reader: strings.NewReader(""), Writer: &buf})
		require.NoError(t, err)

		_, err = os.Stat(keyFile)
		require.NoError(t, err)
	})
}
