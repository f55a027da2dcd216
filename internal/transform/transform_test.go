package transform

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/detector"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	"github.com/allisson/anonymizer/internal/format"
	keysService "github.com/allisson/anonymizer/internal/keys/service"
)

var (
	testSetOnce sync.Once
	testSet     *Set
)

// newTestSet shares one schedule across the package; the KDF is deliberately
// slow, so deriving it per test would dominate the suite.
func newTestSet(t *testing.T) *Set {
	t.Helper()
	testSetOnce.Do(func() {
		schedule, err := keysService.NewSchedule([]byte("transform-test-seed"))
		require.NoError(t, err)
		corpora, err := corpus.Load()
		require.NoError(t, err)
		testSet = NewSet(schedule, corpora, false)
	})
	return testSet
}

func TestTransform_EmptyValue(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeEmail, "email", "", detector.Params{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestTransform_Deterministic(t *testing.T) {
	set := newTestSet(t)

	first, err := set.Transform(ModeFake, detector.TypeNumericID, "customer_id", "123456789012", detector.Params{}, 0)
	require.NoError(t, err)
	second, err := set.Transform(ModeFake, detector.TypeNumericID, "customer_id", "123456789012", detector.Params{}, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTransform_ColumnSeparation(t *testing.T) {
	set := newTestSet(t)

	a, err := set.Transform(ModeFake, detector.TypeNumericID, "customer_id", "123456789012", detector.Params{}, 0)
	require.NoError(t, err)
	b, err := set.Transform(ModeFake, detector.TypeNumericID, "order_id", "123456789012", detector.Params{}, 0)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTransform_AttemptPerturbation(t *testing.T) {
	set := newTestSet(t)

	canonical, err := set.Transform(ModeFake, detector.TypeNumericID, "customer_id", "123456789012", detector.Params{}, 0)
	require.NoError(t, err)
	retry, err := set.Transform(ModeFake, detector.TypeNumericID, "customer_id", "123456789012", detector.Params{}, 1)
	require.NoError(t, err)
	assert.NotEqual(t, canonical, retry)
}

func TestTransformNumericID(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeNumericID, "customer_id", "00123456", detector.Params{}, 0)
	require.NoError(t, err)
	assert.Len(t, out, 8)
	assert.Equal(t, format.Signature("00123456"), format.Signature(out))
}

func TestTransformPhone(t *testing.T) {
	set := newTestSet(t)
	params := detector.Params{PhoneCountry: "1", PhoneSeparator: "-"}

	out, err := set.Transform(ModeFake, detector.TypePhone, "phone", "+1 555-123-4567", params, 0)
	require.NoError(t, err)

	assert.Equal(t, format.Signature("+1 555-123-4567"), format.Signature(out))
	assert.True(t, strings.HasPrefix(out, "+1 "))
	// segment-leading digits were non-zero in the original and must stay so
	assert.NotEqual(t, byte('0'), out[3])
	assert.NotEqual(t, byte('0'), out[7])
	assert.NotEqual(t, byte('0'), out[11])
}

func TestTransformPhone_NoDigitsBesidePrefix(t *testing.T) {
	set := newTestSet(t)
	params := detector.Params{PhoneCountry: "55"}

	out, err := set.Transform(ModeFake, detector.TypePhone, "phone", "+55", params, 0)
	require.NoError(t, err)
	assert.Equal(t, "+55", out)
}

func TestTransformEmail(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeEmail, "email", "john.doe@example.com", detector.Params{}, 0)
	require.NoError(t, err)

	local, domain, ok := strings.Cut(out, "@")
	require.True(t, ok)
	assert.Equal(t, 1, strings.Count(local, "."))
	assert.Contains(t, domain, ".")
	assert.Equal(t, strings.ToLower(out), out)
}

func TestTransformEmail_Unparseable(t *testing.T) {
	set := newTestSet(t)

	_, err := set.Transform(ModeFake, detector.TypeEmail, "email", "not-an-email", detector.Params{}, 0)
	require.ErrorIs(t, err, ErrFormatUnparseable)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestTransformName(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeName, "full_name", "John Smith", detector.Params{}, 0)
	require.NoError(t, err)

	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	for _, field := range fields {
		assert.Equal(t, format.CapsTitle, format.DetectCaps(field))
	}
}

func TestTransformName_Hyphenated(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeName, "full_name", "Mary-Jane Watson", detector.Params{}, 0)
	require.NoError(t, err)

	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.Equal(t, 1, strings.Count(fields[0], "-"))
}

func TestTransformUUID(t *testing.T) {
	set := newTestSet(t)
	value := "550e8400-e29b-41d4-a716-446655440000"

	out, err := set.Transform(ModeFake, detector.TypeUUID, "uuid", value, detector.Params{}, 0)
	require.NoError(t, err)

	require.Len(t, out, 36)
	for _, i := range []int{8, 13, 18, 23} {
		assert.Equal(t, byte('-'), out[i])
	}
	for i := 0; i < len(out); i++ {
		if out[i] == '-' {
			continue
		}
		assert.True(t, (out[i] >= '0' && out[i] <= '9') || (out[i] >= 'a' && out[i] <= 'f'))
	}
	assert.NotEqual(t, value, out)
}

func TestTransformDate(t *testing.T) {
	set := newTestSet(t)
	params := detector.Params{DateTemplate: "2006-01-02"}

	out, err := set.Transform(ModeFake, detector.TypeDate, "birth_date", "1985-06-15", params, 0)
	require.NoError(t, err)

	shifted, err := time.Parse("2006-01-02", out)
	require.NoError(t, err)
	original, err := time.Parse("2006-01-02", "1985-06-15")
	require.NoError(t, err)

	diff := shifted.Sub(original)
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, time.Duration(maxOffsetDays)*24*time.Hour)
}

func TestTransformDate_TemplateFallback(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeDate, "created_at", "15/06/1985", detector.Params{}, 0)
	require.NoError(t, err)

	_, err = time.Parse("02/01/2006", out)
	assert.NoError(t, err)
}

func TestTransformDate_Unparseable(t *testing.T) {
	set := newTestSet(t)

	_, err := set.Transform(ModeFake, detector.TypeDate, "created_at", "not a date", detector.Params{}, 0)
	require.ErrorIs(t, err, ErrFormatUnparseable)
}

func TestTransformCreditCard(t *testing.T) {
	set := newTestSet(t)
	value := "4111 1111 1111 1111"

	out, err := set.Transform(ModeFake, detector.TypeCreditCard, "card_number", value, detector.Params{}, 0)
	require.NoError(t, err)

	assert.Equal(t, format.Signature(value), format.Signature(out))
	digits := strings.ReplaceAll(out, " ", "")
	assert.True(t, detector.LuhnValid(digits))
}

func TestTransformCreditCard_Unparseable(t *testing.T) {
	set := newTestSet(t)

	_, err := set.Transform(ModeFake, detector.TypeCreditCard, "card_number", "4111-abcd-1111", detector.Params{}, 0)
	require.ErrorIs(t, err, ErrFormatUnparseable)
}

func TestTransformIBAN(t *testing.T) {
	set := newTestSet(t)
	value := "DE89 3704 0044 0532 0130 00"

	out, err := set.Transform(ModeFake, detector.TypeIBAN, "iban", value, detector.Params{}, 0)
	require.NoError(t, err)

	require.Len(t, out, len(value))
	assert.True(t, strings.HasPrefix(out, "DE"))
	for i := range value {
		if value[i] == ' ' {
			assert.Equal(t, byte(' '), out[i])
		}
	}
	normalized := strings.ReplaceAll(out, " ", "")
	assert.True(t, detector.Mod97Valid(normalized))
}

func TestTransformIBAN_Unparseable(t *testing.T) {
	set := newTestSet(t)

	_, err := set.Transform(ModeFake, detector.TypeIBAN, "iban", "XX12", detector.Params{}, 0)
	require.ErrorIs(t, err, ErrFormatUnparseable)
}

func TestTransformAddress(t *testing.T) {
	set := newTestSet(t)
	value := "123 Main Street, Springfield"

	out, err := set.Transform(ModeFake, detector.TypeAddress, "address", value, detector.Params{}, 0)
	require.NoError(t, err)

	fields := strings.Split(out, ",")
	require.Len(t, fields, 2)

	tokens := strings.Fields(fields[0])
	require.Len(t, tokens, 3)
	assert.Len(t, tokens[0], 3)
	assert.NotEqual(t, byte('0'), tokens[0][0])
	assert.Equal(t, format.CapsTitle, format.DetectCaps(tokens[1]))
	assert.Equal(t, "Street", tokens[2])

	city := strings.TrimSpace(fields[1])
	assert.NotEmpty(t, city)
}

func TestTransformDomain(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeDomain, "website", "shop.example.com", detector.Params{}, 0)
	require.NoError(t, err)

	labels := strings.Split(out, ".")
	require.Len(t, labels, 3)
	assert.Equal(t, "com", labels[2])
}

func TestTransformDomain_StableAcrossColumns(t *testing.T) {
	set := newTestSet(t)

	a, err := set.Transform(ModeFake, detector.TypeDomain, "website", "example.com", detector.Params{}, 0)
	require.NoError(t, err)
	b, err := set.Transform(ModeFake, detector.TypeDomain, "homepage", "example.com", detector.Params{}, 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTransformFreeText(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFake, detector.TypeFreeText, "notes", "called about order 12345, will retry", detector.Params{}, 0)
	require.NoError(t, err)

	tokens := strings.Fields(out)
	require.Len(t, tokens, 6)
	assert.Regexp(t, `^\d{5},$`, tokens[3])
	assert.Equal(t, strings.ToLower(tokens[0]), tokens[0])
}

func TestTransformHMACMode(t *testing.T) {
	set := newTestSet(t)
	value := "John Smith <john@example.com>"

	out, err := set.Transform(ModeHMAC, detector.TypeFreeText, "contact", value, detector.Params{}, 0)
	require.NoError(t, err)

	assert.Equal(t, format.Signature(value), format.Signature(out))

	again, err := set.Transform(ModeHMAC, detector.TypeFreeText, "contact", value, detector.Params{}, 0)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestTransformFPEMode_SegmentFallback(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFPE, detector.TypeName, "full_name", "John Smith", detector.Params{}, 0)
	require.NoError(t, err)
	assert.Equal(t, format.Signature("John Smith"), format.Signature(out))
}

func TestTransformFPEMode_NonASCIIFallsBackToDigest(t *testing.T) {
	set := newTestSet(t)

	out, err := set.Transform(ModeFPE, detector.TypeName, "full_name", "Zoë Müller", detector.Params{}, 0)
	require.NoError(t, err)
	assert.Equal(t, format.Signature("Zoë Müller"), format.Signature(out))
}

func TestTransformFPEMode_StructuredTypesStayTyped(t *testing.T) {
	set := newTestSet(t)
	value := "4111 1111 1111 1111"

	out, err := set.Transform(ModeFPE, detector.TypeCreditCard, "card_number", value, detector.Params{}, 0)
	require.NoError(t, err)
	assert.True(t, detector.LuhnValid(strings.ReplaceAll(out, " ", "")))
}
