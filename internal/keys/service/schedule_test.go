package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keysDomain "github.com/allisson/anonymizer/internal/keys/domain"
)

func TestNewSchedule(t *testing.T) {
	t.Run("derives deterministically from a seed", func(t *testing.T) {
		first, err := NewSchedule([]byte("seed"))
		require.NoError(t, err)
		second, err := NewSchedule([]byte("seed"))
		require.NoError(t, err)

		assert.Equal(t, first.ColumnKey("email"), second.ColumnKey("email"))
		assert.Equal(t,
			first.ForwardFingerprint("email", "alice@example.com"),
			second.ForwardFingerprint("email", "alice@example.com"),
		)
	})

	t.Run("generates a random seed when none is given", func(t *testing.T) {
		first, err := NewSchedule(nil)
		require.NoError(t, err)
		second, err := NewSchedule(nil)
		require.NoError(t, err)

		assert.Len(t, first.Seed(), keysDomain.SeedSize)
		assert.NotEqual(t, first.Seed(), second.Seed())
	})
}

func TestSchedule_ColumnKey(t *testing.T) {
	schedule, err := NewSchedule([]byte("seed"))
	require.NoError(t, err)

	emailKey := schedule.ColumnKey("email")
	phoneKey := schedule.ColumnKey("phone")

	assert.NotEqual(t, emailKey, phoneKey)
	assert.Equal(t, emailKey, schedule.ColumnKey("email"))
}

func TestSchedule_Fingerprints(t *testing.T) {
	schedule, err := NewSchedule([]byte("seed"))
	require.NoError(t, err)

	t.Run("forward and reverse never collide", func(t *testing.T) {
		forward := schedule.ForwardFingerprint("email", "alice@example.com")
		reverse := schedule.ReverseFingerprint("email", "alice@example.com")

		assert.Len(t, forward, FingerprintSize)
		assert.Len(t, reverse, FingerprintSize)
		assert.NotEqual(t, forward, reverse)
	})

	t.Run("columns separate the key space", func(t *testing.T) {
		assert.NotEqual(t,
			schedule.ForwardFingerprint("email", "alice@example.com"),
			schedule.ForwardFingerprint("backup_email", "alice@example.com"),
		)
	})
}

func TestDeriveVaultKey(t *testing.T) {
	salt := []byte("0123456789abcdef")

	first := DeriveVaultKey([]byte("password"), salt, 1000)
	second := DeriveVaultKey([]byte("password"), salt, 1000)
	other := DeriveVaultKey([]byte("different"), salt, 1000)

	assert.Len(t, first, keysDomain.MasterKeySize)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestGenerateVaultKey(t *testing.T) {
	first, err := GenerateVaultKey()
	require.NoError(t, err)
	second, err := GenerateVaultKey()
	require.NoError(t, err)

	assert.Len(t, first, keysDomain.MasterKeySize)
	assert.NotEqual(t, first, second)
}
