// Package repository implements mapping vault persistence. Supports hash-keyed
// forward/reverse lookups, atomic first-writer-wins inserts, and multiple
// database backends (SQLite, PostgreSQL, and MySQL).
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/anonymizer/internal/database"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
)

// PostgreSQLMappingRepository implements mapping persistence for PostgreSQL databases.
type PostgreSQLMappingRepository struct {
	db *sql.DB
	tx database.TxManager
}

// Insert adds a new mapping. Returns apperrors.ErrConflict when the forward
// hash key already exists and vaultDomain.ErrAnonymizedCollision when the
// reverse hash key is already claimed by another original.
func (p *PostgreSQLMappingRepository) Insert(ctx context.Context, mapping *vaultDomain.Mapping) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO mappings (id, hash_key, reverse_hash_key, column_name, data_type, ciphertext, nonce, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

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
		// Unique violation is SQLSTATE 23505; the constraint name tells us
		// which of the two key spaces collided.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "mappings_reverse_hash_key_key" {
				return vaultDomain.ErrAnonymizedCollision
			}
			return apperrors.ErrConflict
		}
		return apperrors.Wrap(err, "failed to insert mapping")
	}
	return nil
}

// GetByHashKey retrieves a mapping by its forward hash key.
func (p *PostgreSQLMappingRepository) GetByHashKey(
	ctx context.Context,
	hashKey string,
) (*vaultDomain.Mapping, error) {
	return p.getByKey(ctx, "hash_key", hashKey)
}

// GetByReverseHashKey retrieves a mapping by its reverse hash key.
func (p *PostgreSQLMappingRepository) GetByReverseHashKey(
	ctx context.Context,
	reverseHashKey string,
) (*vaultDomain.Mapping, error) {
	return p.getByKey(ctx, "reverse_hash_key", reverseHashKey)
}

func (p *PostgreSQLMappingRepository) getByKey(
	ctx context.Context,
	column string,
	key string,
) (*vaultDomain.Mapping, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, hash_key, reverse_hash_key, column_name, data_type, ciphertext, nonce, created_at
			  FROM mappings
			  WHERE ` + column + ` = $1`

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
func (p *PostgreSQLMappingRepository) IterColumn(
	ctx context.Context,
	columnName string,
	fn func(*vaultDomain.Mapping) error,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, hash_key, reverse_hash_key, column_name, data_type, ciphertext, nonce, created_at
			  FROM mappings
			  WHERE column_name = $1
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
func (p *PostgreSQLMappingRepository) Stats(ctx context.Context) (*vaultDomain.Stats, error) {
	stats := &vaultDomain.Stats{
		ByType:   make(map[string]int64),
		ByColumn: make(map[string]int64),
	}

	err := p.tx.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, p.db)

		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM mappings`).Scan(&stats.TotalMappings)
		if err != nil {
			return apperrors.Wrap(err, "failed to count mappings")
		}

		if err := p.groupCounts(ctx, "data_type", stats.ByType); err != nil {
			return err
		}
		return p.groupCounts(ctx, "column_name", stats.ByColumn)
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (p *PostgreSQLMappingRepository) groupCounts(
	ctx context.Context,
	column string,
	out map[string]int64,
) error {
	querier := database.GetTx(ctx, p.db)

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
func (p *PostgreSQLMappingRepository) GetMeta(ctx context.Context) (*vaultDomain.Meta, error) {
	querier := database.GetTx(ctx, p.db)

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
func (p *PostgreSQLMappingRepository) InsertMeta(ctx context.Context, meta *vaultDomain.Meta) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_meta (magic, version, salt, kdf_iterations, password_hash, algorithm, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

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

// NewPostgreSQLMappingRepository creates a new PostgreSQL mapping repository instance.
func NewPostgreSQLMappingRepository(db *sql.DB) *PostgreSQLMappingRepository {
	return &PostgreSQLMappingRepository{db: db, tx: database.NewTxManager(db)}
}
