// Package transform rewrites cell values into shape-preserving replacements.
// One transformer per detected type implements the anonymization contract for
// that type; the Set dispatches by mode and type and owns the shared key
// schedule, cipher cache, and corpora.
package transform

import (
	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/detector"
	"github.com/allisson/anonymizer/internal/fpe"
	keysService "github.com/allisson/anonymizer/internal/keys/service"
)

// Mode selects the anonymization strategy for a run.
type Mode string

const (
	ModeFake   Mode = "fake"
	ModeFPE    Mode = "fpe"
	ModeHMAC   Mode = "hmac"
	ModeHybrid Mode = "hybrid"
)

// Modes lists every accepted mode value.
var Modes = []string{string(ModeFake), string(ModeFPE), string(ModeHMAC), string(ModeHybrid)}

// fpeTypes are the structured types hybrid mode routes through the cipher
// rather than corpus draws.
var fpeTypes = map[detector.Type]bool{
	detector.TypePhone:      true,
	detector.TypeNumericID:  true,
	detector.TypeCreditCard: true,
	detector.TypeIBAN:       true,
	detector.TypeUUID:       true,
	detector.TypeDate:       true,
}

// Set holds the shared state every transformer needs. Immutable after
// construction and safe for concurrent use.
type Set struct {
	schedule        *keysService.Schedule
	corpora         *corpus.Corpora
	preserveDomains bool
}

// NewSet creates a transformer set bound to one run's key schedule.
func NewSet(schedule *keysService.Schedule, corpora *corpus.Corpora, preserveDomains bool) *Set {
	return &Set{
		schedule:        schedule,
		corpora:         corpora,
		preserveDomains: preserveDomains,
	}
}

// Transform produces the anonymized replacement for one cell. attempt perturbs
// the tweak so the caller's collision-retry loop lands on a fresh candidate;
// attempt zero is the canonical output.
func (s *Set) Transform(
	mode Mode,
	dataType detector.Type,
	column string,
	value string,
	params detector.Params,
	attempt int,
) (string, error) {
	if value == "" {
		return value, nil
	}

	switch mode {
	case ModeHMAC:
		return s.hmacRender(column, value, attempt)
	case ModeFPE:
		if fpeTypes[dataType] {
			return s.typed(dataType, column, value, params, attempt)
		}
		return s.encryptSegments(column, value, attempt)
	default:
		// fake and hybrid share the per-type contracts; structured types are
		// cipher-backed in both.
		return s.typed(dataType, column, value, params, attempt)
	}
}

func (s *Set) typed(
	dataType detector.Type,
	column string,
	value string,
	params detector.Params,
	attempt int,
) (string, error) {
	switch dataType {
	case detector.TypeEmail:
		return s.transformEmail(column, value, attempt)
	case detector.TypePhone:
		return s.transformPhone(column, value, params, attempt)
	case detector.TypeName:
		return s.transformName(column, value, attempt)
	case detector.TypeUUID:
		return s.transformUUID(column, value, attempt)
	case detector.TypeDate:
		return s.transformDate(column, value, params, attempt)
	case detector.TypeNumericID:
		return s.transformNumericID(column, value, attempt)
	case detector.TypeCreditCard:
		return s.transformCreditCard(column, value, attempt)
	case detector.TypeIBAN:
		return s.transformIBAN(column, value, attempt)
	case detector.TypeAddress:
		return s.transformAddress(column, value, attempt)
	case detector.TypeDomain:
		return s.transformDomain(value, attempt)
	default:
		return s.transformFreeText(column, value, attempt)
	}
}

// cipher returns the column's format-preserving cipher.
func (s *Set) cipher(column string) *fpe.Cipher {
	return fpe.NewCipher(s.schedule.ColumnKey(column))
}

// tweakFor builds the cipher tweak for a column. attempt zero keeps the
// canonical tweak; retries append the counter so the walk lands elsewhere.
func tweakFor(label string, attempt int) []byte {
	tweak := append([]byte(label), 0x00)
	if attempt > 0 {
		tweak = append(tweak, byte(attempt))
	}
	return tweak
}

// drawKey perturbs a corpus draw input on retries.
func drawKey(original string, attempt int) string {
	if attempt == 0 {
		return original
	}
	return original + "\x00" + string(rune('0'+attempt))
}
