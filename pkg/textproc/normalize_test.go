package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "buy nifty now", Clean("  buy   nifty\t\nnow  "))
}

func TestCleanStripsControlCharacters(t *testing.T) {
	assert.Equal(t, "buysell", Clean("buy\x00\x08\x7fsell"))
}

func TestCleanPreservesEmojiAndIndicText(t *testing.T) {
	in := "निफ्टी टूट गया 📉 big loss"
	assert.Equal(t, "निफ्टी टूट गया 📉 big loss", Clean(in))
}

func TestCleanEmptyInput(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("   \t\n  "))
}

func TestCleanDeterministic(t *testing.T) {
	inputs := []string{
		"Buy  #nifty50 now!",
		"बैंक निफ्टी   में तेजी 🚀",
		"crash​ incoming", // zero-width space survives NFKC
	}
	for _, in := range inputs {
		first := Clean(in)
		assert.Equal(t, first, Clean(in))
		assert.Equal(t, Identity(in), Identity(in))
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"  spaced   out  text ",
		"सेंसेक्स ऊपर 📈",
		"plain",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once))
	}
}

func TestIdentityCollapsesCosmeticDifferences(t *testing.T) {
	// NFKC folds NBSP to a plain space; whitespace runs collapse.
	a := "buy nifty  now"
	b := "buy nifty now"
	assert.Equal(t, Identity(b), Identity(a))
}

func TestIdentityDiffersForDifferentContent(t *testing.T) {
	assert.NotEqual(t, Identity("buy nifty"), Identity("sell nifty"))
}

func TestHashIsStableHex(t *testing.T) {
	h := Hash("buy nifty now")
	require.Len(t, h, 64)
	assert.Equal(t, h, Hash("buy nifty now"))
}

func TestDeduperFirstOccurrenceWins(t *testing.T) {
	d := NewDeduper()
	h := Identity("buy nifty")

	assert.False(t, d.Seen(h))
	assert.True(t, d.Seen(h))
	assert.True(t, d.Seen(h))
	assert.Equal(t, 1, d.Len())
}
