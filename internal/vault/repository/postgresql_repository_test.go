package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/anonymizer/internal/errors"
	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
)

func testMapping() *vaultDomain.Mapping {
	return &vaultDomain.Mapping{
		ID:             uuid.Must(uuid.NewV7()),
		HashKey:        "aa11",
		ReverseHashKey: "bb22",
		ColumnName:     "email",
		DataType:       "email",
		Ciphertext:     []byte("ciphertext"),
		Nonce:          []byte("nonce"),
		CreatedAt:      time.Now().UTC(),
	}
}

func TestPostgreSQLMappingRepository_Insert(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("INSERT INTO mappings").
			WillReturnResult(sqlmock.NewResult(1, 1))

		repo := NewPostgreSQLMappingRepository(db)
		err = repo.Insert(context.Background(), testMapping())
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("forward conflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("INSERT INTO mappings").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "mappings_hash_key_key"})

		repo := NewPostgreSQLMappingRepository(db)
		err = repo.Insert(context.Background(), testMapping())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("reverse collision", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("INSERT INTO mappings").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "mappings_reverse_hash_key_key"})

		repo := NewPostgreSQLMappingRepository(db)
		err = repo.Insert(context.Background(), testMapping())
		assert.ErrorIs(t, err, vaultDomain.ErrAnonymizedCollision)
	})
}

func TestPostgreSQLMappingRepository_GetByHashKey(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mapping := testMapping()
		rows := sqlmock.NewRows([]string{
			"id", "hash_key", "reverse_hash_key", "column_name", "data_type", "ciphertext", "nonce", "created_at",
		}).AddRow(
			mapping.ID.String(), mapping.HashKey, mapping.ReverseHashKey, mapping.ColumnName,
			mapping.DataType, mapping.Ciphertext, mapping.Nonce, mapping.CreatedAt,
		)

		mock.ExpectQuery("SELECT (.+) FROM mappings").
			WithArgs(mapping.HashKey).
			WillReturnRows(rows)

		repo := NewPostgreSQLMappingRepository(db)
		got, err := repo.GetByHashKey(context.Background(), mapping.HashKey)
		require.NoError(t, err)
		assert.Equal(t, mapping.HashKey, got.HashKey)
		assert.Equal(t, mapping.ColumnName, got.ColumnName)
		assert.Equal(t, mapping.Ciphertext, got.Ciphertext)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT (.+) FROM mappings").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewPostgreSQLMappingRepository(db)
		_, err = repo.GetByHashKey(context.Background(), "missing")
		assert.ErrorIs(t, err, vaultDomain.ErrMappingNotFound)
	})
}

func TestPostgreSQLMappingRepository_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("GROUP BY data_type").
		WillReturnRows(sqlmock.NewRows([]string{"data_type", "count"}).AddRow("email", 3).AddRow("phone", 2))
	mock.ExpectQuery("GROUP BY column_name").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "count"}).AddRow("email", 3).AddRow("phone", 2))
	mock.ExpectCommit()

	repo := NewPostgreSQLMappingRepository(db)
	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalMappings)
	assert.Equal(t, int64(3), stats.ByType["email"])
	assert.Equal(t, int64(2), stats.ByColumn["phone"])
	require.NoError(t, mock.ExpectationsWereMet())
}
