package fpe

import (
	"crypto/hmac"
	"crypto/sha256"
	"math/big"

	apperrors "github.com/allisson/anonymizer/internal/errors"
)

const rounds = 10

// ErrCycleExhausted is returned when cycle-walking fails to reach a candidate
// the predicate accepts within the iteration budget.
var ErrCycleExhausted = apperrors.Wrap(apperrors.ErrConflict, "cycle walk exhausted its iteration budget")

// Cipher is a tweakable format-preserving cipher keyed on a column sub-key.
// The key never leaves the HMAC round function. Safe for concurrent use.
type Cipher struct {
	key []byte
}

// NewCipher creates a cipher from a column sub-key.
func NewCipher(key []byte) *Cipher {
	return &Cipher{key: key}
}

// Encrypt maps a block to another block of the same length over the same
// alphabet. The block is split into L (ceil(n/2) symbols) and R (the rest),
// both treated as base-radix integers; each round folds an HMAC of the
// opposite half into one half modulo that half's domain.
func (c *Cipher) Encrypt(tweak []byte, alphabet *Alphabet, block string) (string, error) {
	digits, err := alphabet.Encode(block)
	if err != nil {
		return "", err
	}
	n := len(digits)
	if n == 0 {
		return block, nil
	}

	radix := alphabet.Radix()
	if n == 1 {
		shift := c.roundConstant(tweak, radix)
		return alphabet.Decode([]int{(digits[0] + shift) % radix}), nil
	}

	u := (n + 1) / 2
	v := n - u
	left := toInt(digits[:u], radix)
	right := toInt(digits[u:], radix)
	modLeft := domainSize(radix, u)
	modRight := domainSize(radix, v)

	for i := 0; i < rounds; i++ {
		if i%2 == 0 {
			left.Add(left, c.prf(tweak, i, right))
			left.Mod(left, modLeft)
		} else {
			right.Add(right, c.prf(tweak, i, left))
			right.Mod(right, modRight)
		}
	}

	out := append(fromInt(left, radix, u), fromInt(right, radix, v)...)
	return alphabet.Decode(out), nil
}

// Decrypt is the exact inverse of Encrypt: the rounds run in reverse order and
// each round's addition becomes a subtraction.
func (c *Cipher) Decrypt(tweak []byte, alphabet *Alphabet, block string) (string, error) {
	digits, err := alphabet.Encode(block)
	if err != nil {
		return "", err
	}
	n := len(digits)
	if n == 0 {
		return block, nil
	}

	radix := alphabet.Radix()
	if n == 1 {
		shift := c.roundConstant(tweak, radix)
		return alphabet.Decode([]int{(digits[0] - shift + radix) % radix}), nil
	}

	u := (n + 1) / 2
	v := n - u
	left := toInt(digits[:u], radix)
	right := toInt(digits[u:], radix)
	modLeft := domainSize(radix, u)
	modRight := domainSize(radix, v)

	for i := rounds - 1; i >= 0; i-- {
		if i%2 == 0 {
			left.Sub(left, c.prf(tweak, i, right))
			left.Mod(left, modLeft)
		} else {
			right.Sub(right, c.prf(tweak, i, left))
			right.Mod(right, modRight)
		}
	}

	out := append(fromInt(left, radix, u), fromInt(right, radix, v)...)
	return alphabet.Decode(out), nil
}

// EncryptWhere re-encrypts until the candidate satisfies pred. The cipher is a
// permutation, so walking a cycle stays inside the block's domain; the
// iteration budget bounds pathological cycles that never hit the legal set.
func (c *Cipher) EncryptWhere(
	tweak []byte,
	alphabet *Alphabet,
	block string,
	pred func(string) bool,
) (string, error) {
	n := len([]rune(block))
	limit := walkLimit(alphabet.Radix(), n)

	candidate := block
	for i := 0; i < limit; i++ {
		var err error
		candidate, err = c.Encrypt(tweak, alphabet, candidate)
		if err != nil {
			return "", err
		}
		if pred(candidate) {
			return candidate, nil
		}
	}
	return "", ErrCycleExhausted
}

// prf is the Feistel round function: HMAC-SHA256(key, tweak || round || half)
// read as a big-endian integer. The caller reduces it modulo the target half's
// domain.
func (c *Cipher) prf(tweak []byte, round int, half *big.Int) *big.Int {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(tweak)
	mac.Write([]byte{byte(round)})
	mac.Write(half.Bytes())
	return new(big.Int).SetBytes(mac.Sum(nil))
}

// roundConstant derives the additive shift for single-symbol blocks, where a
// Feistel split is impossible. A zero shift would make the map the identity
// over the whole domain, so it is bumped to one.
func (c *Cipher) roundConstant(tweak []byte, radix int) int {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(tweak)
	sum := new(big.Int).SetBytes(mac.Sum(nil))
	shift := int(new(big.Int).Mod(sum, big.NewInt(int64(radix))).Int64())
	if shift == 0 {
		shift = 1
	}
	return shift
}

// walkLimit bounds cycle-walking at eight times the domain for small domains.
// Larger domains get a fixed ceiling; predicates there reject only a vanishing
// fraction of candidates.
func walkLimit(radix, length int) int {
	const ceiling = 1 << 16

	limit := 8
	for i := 0; i < length; i++ {
		limit *= radix
		if limit >= ceiling || limit < 0 {
			return ceiling
		}
	}
	return limit
}

func toInt(digits []int, radix int) *big.Int {
	result := new(big.Int)
	radixBig := big.NewInt(int64(radix))
	for _, d := range digits {
		result.Mul(result, radixBig)
		result.Add(result, big.NewInt(int64(d)))
	}
	return result
}

func fromInt(value *big.Int, radix, length int) []int {
	digits := make([]int, length)
	radixBig := big.NewInt(int64(radix))
	tmp := new(big.Int).Set(value)
	remainder := new(big.Int)
	for i := length - 1; i >= 0; i-- {
		tmp.DivMod(tmp, radixBig, remainder)
		digits[i] = int(remainder.Int64())
	}
	return digits
}

func domainSize(radix, length int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(length)), nil)
}
