package usecase

import (
	"context"
	"time"

	"github.com/allisson/anonymizer/internal/metrics"
	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
)

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(
	useCase VaultUseCase,
	m metrics.BusinessMetrics,
) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *vaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	v.metrics.RecordOperation(ctx, "vault", operation, status)
	v.metrics.RecordDuration(ctx, "vault", operation, time.Since(start), status)
}

// OpenWithPassword records metrics for password-based vault opens.
func (v *vaultUseCaseWithMetrics) OpenWithPassword(ctx context.Context, password []byte) error {
	start := time.Now()
	err := v.next.OpenWithPassword(ctx, password)
	v.record(ctx, "open_password", start, err)
	return err
}

// OpenWithKey records metrics for key-file-based vault opens.
func (v *vaultUseCaseWithMetrics) OpenWithKey(ctx context.Context, key []byte) error {
	start := time.Now()
	err := v.next.OpenWithKey(ctx, key)
	v.record(ctx, "open_key", start, err)
	return err
}

// Store records metrics for mapping upserts.
func (v *vaultUseCaseWithMetrics) Store(
	ctx context.Context,
	column string,
	dataType string,
	original string,
	anonymized string,
) (*vaultDomain.UpsertOutcome, error) {
	start := time.Now()
	outcome, err := v.next.Store(ctx, column, dataType, original, anonymized)
	v.record(ctx, "store", start, err)
	return outcome, err
}

// Forward records metrics for forward lookups.
func (v *vaultUseCaseWithMetrics) Forward(ctx context.Context, column, original string) (*vaultDomain.Pair, error) {
	start := time.Now()
	pair, err := v.next.Forward(ctx, column, original)
	v.record(ctx, "forward", start, err)
	return pair, err
}

// Reverse records metrics for reverse lookups.
func (v *vaultUseCaseWithMetrics) Reverse(ctx context.Context, column, anonymized string) (*vaultDomain.Pair, error) {
	start := time.Now()
	pair, err := v.next.Reverse(ctx, column, anonymized)
	v.record(ctx, "reverse", start, err)
	return pair, err
}

// IterColumn records metrics for column scans.
func (v *vaultUseCaseWithMetrics) IterColumn(
	ctx context.Context,
	column string,
	fn func(vaultDomain.Pair) error,
) error {
	start := time.Now()
	err := v.next.IterColumn(ctx, column, fn)
	v.record(ctx, "iter_column", start, err)
	return err
}

// Stats records metrics for statistics queries.
func (v *vaultUseCaseWithMetrics) Stats(ctx context.Context) (*vaultDomain.Stats, error) {
	start := time.Now()
	stats, err := v.next.Stats(ctx)
	v.record(ctx, "stats", start, err)
	return stats, err
}
