package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/allisson/anonymizer/internal/database"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
)

// SQLiteMappingRepository implements mapping persistence for the default
// single-file SQLite vault.
type SQLiteMappingRepository struct {
	db *sql.DB
	tx database.TxManager
}

// Insert adds a new mapping. Returns apperrors.ErrConflict when the forward
// hash key already exists and vaultDomain.ErrAnonymizedCollision when the
// reverse hash key is already claimed by another original.
func (s *SQLiteMappingRepository) Insert(ctx context.Context, mapping *vaultDomain.Mapping) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO mappings (id, hash_key, reverse_hash_key, column_name, data_type, ciphertext, nonce, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		mapping.ID,
		mapping.HashKey,
		mapping.ReverseHashKey,
		mapping.ColumnName,
		mapping.DataType,
		mapping.Ciphertext,
		mapping.Nonce,
		mapping.CreatedAt,
	)
	if err != nil {
		// SQLite reports the violated index in the error message
		// ("UNIQUE constraint failed: mappings.reverse_hash_key").
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			if strings.Contains(sqliteErr.Error(), "mappings.reverse_hash_key") {
				return vaultDomain.ErrAnonymizedCollision
			}
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to insert mapping")
	}
	return nil
}

// GetByHashKey retrieves a mapping by its forward hash key.
func (s *SQLiteMappingRepository) GetByHashKey(
	ctx context.Context,
	hashKey string,
) (*vaultDomain.Mapping, error) {
	return s.getByKey(ctx, "hash_key", hashKey)
}

// GetByReverseHashKey retrieves a mapping by its reverse hash key.
func (s *SQLiteMappingRepository) GetByReverseHashKey(
	ctx context.Context,
	reverseHashKey string,
) (*vaultDomain.Mapping, error) {
	return s.getByKey(ctx, "reverse_hash_key", reverseHashKey)
}

func (s *SQLiteMappingRepository) getByKey(
	ctx context.Context,
	column string,
	key string,
) (*vaultDomain.Mapping, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, hash_key, reverse_hash_key, column_name, data_type, ciphertext, nonce, created_at
			  FROM mappings
			  WHERE ` + column + ` = ?`

	var mapping vaultDomain.Mapping
	err := querier.QueryRowContext(ctx, query, key).Scan(
		&mapping.ID,
		&mapping.HashKey,
		&mapping.ReverseHashKey,
		&mapping.ColumnName,
		&mapping.DataType,
		&mapping.Ciphertext,
		&mapping.Nonce,
		&mapping.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrMappingNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get mapping")
	}

	return &mapping, nil
}

// IterColumn streams all mappings of a column to fn in insertion order.
// Iteration stops at the first error returned by fn.
func (s *SQLiteMappingRepository) IterColumn(
	ctx context.Context,
	columnName string,
	fn func(*vaultDomain.Mapping) error,
) error {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT id, hash_key, reverse_hash_key, column_name, data_type, ciphertext, nonce, created_at
			  FROM mappings
			  WHERE column_name = ?
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, columnName)
	if err != nil {
		return apperrors.Wrap(err, "failed to iterate mappings")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var mapping vaultDomain.Mapping
		err := rows.Scan(
			&mapping.ID,
			&mapping.HashKey,
			&mapping.ReverseHashKey,
			&mapping.ColumnName,
			&mapping.DataType,
			&mapping.Ciphertext,
			&mapping.Nonce,
			&mapping.CreatedAt,
		)
		if err != nil {
			return apperrors.Wrap(err, "failed to scan mapping")
		}
		if err := fn(&mapping); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return apperrors.Wrap(err, "error iterating mappings")
	}

	return nil
}

// Stats returns total, per-type, and per-column mapping counts. The counts
// are read in one transaction so they describe the same snapshot.
func (s *SQLiteMappingRepository) Stats(ctx context.Context) (*vaultDomain.Stats, error) {
	stats := &vaultDomain.Stats{
		ByType:   make(map[string]int64),
		ByColumn: make(map[string]int64),
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, s.db)

		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM mappings`).Scan(&stats.TotalMappings)
		if err != nil {
			return apperrors.Wrap(err, "failed to count mappings")
		}

		if err := s.groupCounts(ctx, "data_type", stats.ByType); err != nil {
			return err
		}
		return s.groupCounts(ctx, "column_name", stats.ByColumn)
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *SQLiteMappingRepository) groupCounts(
	ctx context.Context,
	column string,
	out map[string]int64,
) error {
	querier := database.GetTx(ctx, s.db)

	rows, err := querier.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM mappings GROUP BY `+column)
	if err != nil {
		return apperrors.Wrap(err, "failed to group mappings")
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return apperrors.Wrap(err, "failed to scan group count")
		}
		out[key] = count
	}

	if err := rows.Err(); err != nil {
		return apperrors.Wrap(err, "error iterating group counts")
	}

	return nil
}

// GetMeta retrieves the vault metadata row. Returns ErrMappingNotFound when
// the vault has not been initialized yet.
func (s *SQLiteMappingRepository) GetMeta(ctx context.Context) (*vaultDomain.Meta, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT magic, version, salt, kdf_iterations, password_hash, algorithm, created_at
			  FROM vault_meta
			  LIMIT 1`

	var meta vaultDomain.Meta
	err := querier.QueryRowContext(ctx, query).Scan(
		&meta.Magic,
		&meta.Version,
		&meta.Salt,
		&meta.KDFIterations,
		&meta.PasswordHash,
		&meta.Algorithm,
		&meta.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrMappingNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get vault metadata")
	}

	return &meta, nil
}

// InsertMeta writes the vault metadata row during initialization.
func (s *SQLiteMappingRepository) InsertMeta(ctx context.Context, meta *vaultDomain.Meta) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO vault_meta (magic, version, salt, kdf_iterations, password_hash, algorithm, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		meta.Magic,
		meta.Version,
		meta.Salt,
		meta.KDFIterations,
		meta.PasswordHash,
		meta.Algorithm,
		meta.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to insert vault metadata")
	}
	return nil
}

// NewSQLiteMappingRepository creates a new SQLite mapping repository instance.
func NewSQLiteMappingRepository(db *sql.DB) *SQLiteMappingRepository {
	return &SQLiteMappingRepository{db: db, tx: database.NewTxManager(db)}
}
