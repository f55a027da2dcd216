package transform

import (
	"fmt"
	"strconv"
	"time"

	"github.com/allisson/anonymizer/internal/detector"
	"github.com/allisson/anonymizer/internal/fpe"
)

// maxOffsetDays bounds the date shift to twenty years either way.
const maxOffsetDays = 7305

// transformDate shifts a date by a key-derived number of days within ±20
// years and renders it back through the column's template. Shifting by whole
// days keeps the calendar valid, so Feb 29 needs no special handling.
func (s *Set) transformDate(column, value string, params detector.Params, attempt int) (string, error) {
	template := params.DateTemplate
	parsed, err := time.Time{}, error(nil)
	if template != "" {
		parsed, err = time.Parse(template, value)
	}
	if template == "" || err != nil {
		template = detector.DateTemplate(value)
		if template == "" {
			return "", ErrFormatUnparseable
		}
		parsed, err = time.Parse(template, value)
		if err != nil {
			return "", ErrFormatUnparseable
		}
	}

	days := parsed.Unix() / 86400
	if days < 0 {
		days = -days
	}
	block := fmt.Sprintf("%08d", days%100000000)

	encrypted, err := s.cipher(column).Encrypt(tweakFor(template, attempt), fpe.Digits, block)
	if err != nil {
		return "", err
	}
	encoded, err := strconv.ParseInt(encrypted, 10, 64)
	if err != nil {
		return "", err
	}

	offset := int(encoded%(2*maxOffsetDays+1)) - maxOffsetDays
	return parsed.AddDate(0, 0, offset).Format(template), nil
}
