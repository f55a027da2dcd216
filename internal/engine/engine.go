// Package engine coordinates one anonymization run. The Engine owns the key
// schedule, the per-column detection cache, the transformer set, and the
// mapping vault; callers feed it cells and get shape-preserving replacements
// back, with consistency guaranteed through the vault.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/detector"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	keysService "github.com/allisson/anonymizer/internal/keys/service"
	"github.com/allisson/anonymizer/internal/transform"
	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
	vaultUseCase "github.com/allisson/anonymizer/internal/vault/usecase"
)

// ErrNotReversible is returned by Deanonymize when the run's mode never stores
// mappings (hmac or a fully synthetic profile).
var ErrNotReversible = apperrors.Wrap(apperrors.ErrInvalidInput, "mode does not store reversible mappings")

// Options configures an Engine.
type Options struct {
	Profile Profile

	// Columns restricts anonymization to the named columns. Empty means every
	// column is anonymized.
	Columns []string

	// Lenient returns the original cell unchanged on unrecoverable errors
	// instead of surfacing them. Default (strict) surfaces the error.
	Lenient bool

	// PreserveDomains keeps a stable cross-column pseudonym per email domain
	// instead of a fresh per-column draw.
	PreserveDomains bool

	SeedPresent bool
}

// Engine is the single entry point for per-cell anonymization.
//
// All methods are safe for concurrent use. Detection results are cached per
// column for the lifetime of the run, so a column's type never changes
// mid-run.
type Engine struct {
	opts       Options
	mu         sync.RWMutex
	mode       transform.Mode
	detections map[string]detector.Detection

	schedule   *keysService.Schedule
	det        *detector.Detector
	transforms *transform.Set
	vault      vaultUseCase.VaultUseCase
	columns    map[string]bool
	logger     *slog.Logger
}

// New creates an engine for one run. vault may be nil only when the profile
// never stores mappings (hmac mode or fully synthetic).
func New(
	opts Options,
	schedule *keysService.Schedule,
	corpora *corpus.Corpora,
	vault vaultUseCase.VaultUseCase,
	logger *slog.Logger,
) (*Engine, error) {
	if err := opts.Profile.Validate(); err != nil {
		return nil, err
	}
	if vault == nil && !opts.Profile.FullySynthetic && opts.Profile.Mode != transform.ModeHMAC {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "profile requires a vault")
	}

	columns := make(map[string]bool, len(opts.Columns))
	for _, column := range opts.Columns {
		columns[column] = true
	}

	return &Engine{
		opts:       opts,
		mode:       opts.Profile.Mode,
		detections: make(map[string]detector.Detection),
		schedule:   schedule,
		det:        detector.New(),
		transforms: transform.NewSet(schedule, corpora, opts.PreserveDomains),
		vault:      vault,
		columns:    columns,
		logger:     logger,
	}, nil
}

// SetMode switches the anonymization mode mid-run. Cached detections survive;
// vault-backed consistency still holds for values stored under the old mode.
func (e *Engine) SetMode(mode transform.Mode) error {
	switch mode {
	case transform.ModeFake, transform.ModeFPE, transform.ModeHMAC, transform.ModeHybrid:
	default:
		return apperrors.Wrap(apperrors.ErrInvalidInput, "unknown mode: "+string(mode))
	}
	e.mu.Lock()
	e.mode = mode
	e.mu.Unlock()
	return nil
}

// Mode returns the current anonymization mode.
func (e *Engine) Mode() transform.Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// RegisterColumn runs detection over a bounded sample and caches the result.
// Registering before dispatching parallel rows keeps steady-state reads
// lock-free and the decision stable for the whole run.
func (e *Engine) RegisterColumn(column string, sample []string) detector.Detection {
	e.mu.RLock()
	detection, ok := e.detections[column]
	e.mu.RUnlock()
	if ok {
		return detection
	}

	detection = e.det.Detect(column, sample)

	e.mu.Lock()
	if existing, ok := e.detections[column]; ok {
		detection = existing
	} else {
		e.detections[column] = detection
	}
	e.mu.Unlock()

	e.logger.Info("column registered",
		slog.String("column", column),
		slog.String("type", string(detection.Type)),
		slog.Float64("confidence", detection.Confidence),
	)
	return detection
}

// Anonymize maps one cell to its anonymized replacement. Empty values and
// columns outside the anonymize set pass through unchanged. Vault-backed modes
// return the stored value for repeated originals.
func (e *Engine) Anonymize(ctx context.Context, column, value string) (string, error) {
	if value == "" {
		return value, nil
	}
	if len(e.columns) > 0 && !e.columns[column] {
		return value, nil
	}

	mode := e.Mode()
	detection := e.detectionFor(column, value)

	if mode == transform.ModeHMAC || e.opts.Profile.FullySynthetic {
		out, err := e.transform(mode, detection, column, value, 0)
		return e.finish(column, value, out, err)
	}

	pair, err := e.vault.Forward(ctx, column, value)
	if err == nil {
		return pair.Anonymized, nil
	}
	if !apperrors.Is(err, vaultDomain.ErrMappingNotFound) {
		return e.finish(column, value, "", err)
	}

	for attempt := 0; attempt < transform.MaxAttempts; attempt++ {
		candidate, err := e.transform(mode, detection, column, value, attempt)
		if err != nil {
			return e.finish(column, value, "", err)
		}

		outcome, err := e.vault.Store(ctx, column, string(detection.Type), value, candidate)
		if err == nil {
			return outcome.Anonymized, nil
		}
		if apperrors.Is(err, vaultDomain.ErrAnonymizedCollision) {
			e.logger.Debug("anonymized value collision, retrying",
				slog.String("column", column),
				slog.Int("attempt", attempt),
			)
			continue
		}
		return e.finish(column, value, "", err)
	}

	return e.finish(column, value, "", transform.ErrExhaustedDomain)
}

// Deanonymize resolves an anonymized value back to its original through the
// vault's reverse index.
func (e *Engine) Deanonymize(ctx context.Context, column, value string) (string, error) {
	if value == "" {
		return value, nil
	}
	if e.Mode() == transform.ModeHMAC || e.opts.Profile.FullySynthetic {
		return "", ErrNotReversible
	}

	pair, err := e.vault.Reverse(ctx, column, value)
	if err != nil {
		return "", err
	}
	return pair.Original, nil
}

// transform invokes the transformer set, falling back to the free-text
// contract when the typed transformer cannot parse the value.
func (e *Engine) transform(
	mode transform.Mode,
	detection detector.Detection,
	column string,
	value string,
	attempt int,
) (string, error) {
	out, err := e.transforms.Transform(mode, detection.Type, column, value, detection.Params, attempt)
	if err == nil {
		return out, nil
	}
	if !apperrors.Is(err, transform.ErrFormatUnparseable) {
		return "", err
	}

	e.logger.Warn("value does not parse as detected type, using free-text fallback",
		slog.String("column", column),
		slog.String("type", string(detection.Type)),
	)
	return e.transforms.Transform(mode, detector.TypeFreeText, column, value, detection.Params, attempt)
}

// finish applies the strict/lenient policy to a terminal result.
func (e *Engine) finish(column, value, out string, err error) (string, error) {
	if err == nil {
		return out, nil
	}
	if e.opts.Lenient {
		e.logger.Error("cell kept unchanged in lenient mode",
			slog.String("column", column),
			slog.String("error", err.Error()),
		)
		return value, nil
	}
	return "", err
}

func (e *Engine) detectionFor(column, value string) detector.Detection {
	e.mu.RLock()
	detection, ok := e.detections[column]
	e.mu.RUnlock()
	if ok {
		return detection
	}
	// No registered sample; detect from the single pending cell.
	return e.RegisterColumn(column, []string{value})
}

// ColumnParams is one column's entry in the run-parameter document.
type ColumnParams struct {
	Name       string          `json:"name"`
	Type       detector.Type   `json:"type"`
	Confidence float64         `json:"confidence"`
	Params     detector.Params `json:"params"`
}

// RunParams is the serialized run-parameter document consumed by callers.
type RunParams struct {
	Mode        string         `json:"mode"`
	Profile     string         `json:"profile"`
	SeedPresent bool           `json:"seed_present"`
	Columns     []ColumnParams `json:"columns"`
}

// Params snapshots the run parameters: mode, profile, and every column
// registered so far, sorted by column name.
func (e *Engine) Params() RunParams {
	e.mu.RLock()
	defer e.mu.RUnlock()

	columns := make([]ColumnParams, 0, len(e.detections))
	for name, detection := range e.detections {
		columns = append(columns, ColumnParams{
			Name:       name,
			Type:       detection.Type,
			Confidence: detection.Confidence,
			Params:     detection.Params,
		})
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].Name < columns[j].Name })

	return RunParams{
		Mode:        string(e.mode),
		Profile:     e.opts.Profile.Name,
		SeedPresent: e.opts.SeedPresent,
		Columns:     columns,
	}
}
