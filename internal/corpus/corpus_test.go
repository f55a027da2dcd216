package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, c.Size(FirstNames), 1000)
	assert.GreaterOrEqual(t, c.Size(LastNames), 1000)
	assert.GreaterOrEqual(t, c.Size(Cities), 500)
	assert.GreaterOrEqual(t, c.Size(StreetTypes), 30)
	assert.GreaterOrEqual(t, c.Size(TLDs), 10)
	assert.Equal(t, middlePoolSize, c.Size(MiddlePool))
	assert.Positive(t, c.Size(StreetNames))
	assert.Positive(t, c.Size(DomainBases))
	assert.Positive(t, c.Size(WordsShort))
	assert.Positive(t, c.Size(WordsMedium))
	assert.Positive(t, c.Size(WordsLong))
}

func TestCorpora_Draw_Deterministic(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	key := []byte("column-key")
	first, err := c.Draw(FirstNames, key, "alice")
	require.NoError(t, err)
	second, err := c.Draw(FirstNames, key, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestCorpora_Draw_KeySeparation(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	// Same original under different column keys should not be forced to the
	// same draw; collect a few and expect at least one difference.
	originals := []string{"alice", "bob", "carol", "dave", "erin"}
	same := 0
	for _, original := range originals {
		a, err := c.Draw(FirstNames, []byte("key-a"), original)
		require.NoError(t, err)
		b, err := c.Draw(FirstNames, []byte("key-b"), original)
		require.NoError(t, err)
		if a == b {
			same++
		}
	}
	assert.Less(t, same, len(originals))
}

func TestCorpora_Draw_UnknownCorpus(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	_, err = c.Draw("nope", []byte("k"), "v")
	assert.Error(t, err)
}

func TestWordBucket(t *testing.T) {
	assert.Equal(t, WordsShort, WordBucket(1))
	assert.Equal(t, WordsShort, WordBucket(4))
	assert.Equal(t, WordsMedium, WordBucket(5))
	assert.Equal(t, WordsMedium, WordBucket(8))
	assert.Equal(t, WordsLong, WordBucket(9))
	assert.Equal(t, WordsLong, WordBucket(30))
}
