// Package mysql implements mapping vault persistence for MySQL databases.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/anonymizer/internal/database"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
)

// MySQLMappingRepository implements mapping persistence for MySQL databases.
type MySQLMappingRepository struct {
	db *sql.DB
	tx database.TxManager
}

// Insert adds a new mapping. Returns apperrors.ErrConflict when the forward
// hash key already exists and vaultDomain.ErrAnonymizedCollision when the
// reverse hash key is already claimed by another original.
func (m *MySQLMappingRepository) Insert(ctx context.Context, mapping *vaultDomain.Mapping) error {
	querier := database.GetTx(ctx, m.db)

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
		// Duplicate entry is MySQL error number 1062; the message names the
		// violated key ("for key 'mappings.reverse_hash_key'").
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			if strings.Contains(mysqlErr.Message, "reverse_hash_key") {
				return vaultDomain.ErrAnonymizedCollision
			}
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to insert mapping")
	}
	return nil
}

// GetByHashKey retrieves a mapping by its forward hash key.
func (m *MySQLMappingRepository) GetByHashKey(
	ctx context.Context,
	hashKey string,
) (*vaultDomain.Mapping, error) {
	return m.getByKey(ctx, "hash_key", hashKey)
}

// GetByReverseHashKey retrieves a mapping by its reverse hash key.
func (m *MySQLMappingRepository) GetByReverseHashKey(
	ctx context.Context,
	reverseHashKey string,
) (*vaultDomain.Mapping, error) {
	return m.getByKey(ctx, "reverse_hash_key", reverseHashKey)
}

func (m *MySQLMappingRepository) getByKey(
	ctx context.Context,
	column string,
	key string,
) (*vaultDomain.Mapping, error) {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLMappingRepository) IterColumn(
	ctx context.Context,
	columnName string,
	fn func(*vaultDomain.Mapping) error,
) error {
	querier := database.GetTx(ctx, m.db)

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

// Stats returns total, per-type, and per-column mapping counts.
func (m *MySQLMappingRepository) Stats(ctx context.Context) (*vaultDomain.Stats, error) {
	stats := &vaultDomain.Stats{
		ByType:   make(map[string]int64),
		ByColumn: make(map[string]int64),
	}

	err := m.tx.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, m.db)

		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM mappings`).Scan(&stats.TotalMappings)
		if err != nil {
			return apperrors.Wrap(err, "failed to count mappings")
		}

		if err := m.groupCounts(ctx, "data_type", stats.ByType); err != nil {
			return err
		}
		return m.groupCounts(ctx, "column_name", stats.ByColumn)
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (m *MySQLMappingRepository) groupCounts(
	ctx context.Context,
	column string,
	out map[string]int64,
) error {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLMappingRepository) GetMeta(ctx context.Context) (*vaultDomain.Meta, error) {
	querier := database.GetTx(ctx, m.db)

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
func (m *MySQLMappingRepository) InsertMeta(ctx context.Context, meta *vaultDomain.Meta) error {
	querier := database.GetTx(ctx, m.db)

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

// NewMySQLMappingRepository creates a new MySQL mapping repository instance.
func NewMySQLMappingRepository(db *sql.DB) *MySQLMappingRepository {
	return &MySQLMappingRepository{db: db, tx: database.NewTxManager(db)}
}
