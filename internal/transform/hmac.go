package transform

import (
	"crypto/hmac"
	"crypto/sha256"
	"strings"

	"github.com/allisson/anonymizer/internal/format"
)

// hmacRender fills the value's shape with keyed digest material. The output is
// deterministic per (column key, value) and carries nothing of the original
// beyond its shape.
func (s *Set) hmacRender(column, value string, attempt int) (string, error) {
	key := s.schedule.ColumnKey(column)
	stream := newDigestStream(key, drawKey(value, attempt))

	mask, _ := format.Decompose(value)
	var out strings.Builder
	for _, entry := range mask {
		if entry.Class == format.ClassOther {
			out.WriteRune(entry.Literal)
			continue
		}
		alphabet := classAlphabet(entry.Class)
		out.WriteByte(alphabet[int(stream.next())%len(alphabet)])
	}
	return out.String(), nil
}

// digestFill draws n symbols of alphabet from a keyed digest stream.
func digestFill(key []byte, seed, alphabet string, n int) string {
	stream := newDigestStream(key, seed)
	var out strings.Builder
	for i := 0; i < n; i++ {
		out.WriteByte(alphabet[int(stream.next())%len(alphabet)])
	}
	return out.String()
}

func classAlphabet(class format.Class) string {
	switch class {
	case format.ClassUpper:
		return format.AlphabetUpper
	case format.ClassLower:
		return format.AlphabetLower
	default:
		return format.AlphabetDigit
	}
}

// digestStream yields an unbounded byte stream seeded from one HMAC digest and
// extended by rehashing when drained.
type digestStream struct {
	buf []byte
	pos int
}

func newDigestStream(key []byte, seed string) *digestStream {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(seed))
	return &digestStream{buf: mac.Sum(nil)}
}

func (d *digestStream) next() byte {
	if d.pos == len(d.buf) {
		sum := sha256.Sum256(d.buf)
		d.buf = sum[:]
		d.pos = 0
	}
	b := d.buf[d.pos]
	d.pos++
	return b
}
