package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	t.Run("invalid-driver", func(t *testing.T) {
		t.Setenv("VAULT_DRIVER", "invalid")

		err := RunMigrations()
		require.Error(t, err)
		require.Contains(t, err.Error(), "unsupported vault driver")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		t.Setenv("VAULT_DRIVER", "postgres")
		t.Setenv("VAULT_DSN", "invalid-connection-string")

		err := RunMigrations()
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to create migrate instance")
	})
}
