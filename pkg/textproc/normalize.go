// Package textproc cleans raw post text and derives the content identity
// used for deduplication.
package textproc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean canonicalizes raw text: NFKC Unicode normalization (composed forms
// common in Indic scripts collapse to one representation), control characters
// removed, whitespace runs collapsed to a single space, and the result
// trimmed. Emoji and non-Latin letters pass through unchanged. Empty input
// yields "".
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isControl(r) && !unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// isControl reports whether r is in the non-printing ranges stripped from
// cleaned text: C0 controls, DEL and C1 controls. Whitespace controls like
// \t and \n are handled by the whitespace collapse instead.
func isControl(r rune) bool {
	return (r >= 0x00 && r <= 0x1f) || (r >= 0x7f && r <= 0x9f)
}

// Hash returns the hex-encoded SHA-256 digest of the UTF-8 encoding of text.
// Callers hash cleaned text so that cosmetic whitespace and Unicode
// composition differences collapse to the same identity.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Identity is the content identity of raw text: Hash(Clean(text)).
func Identity(text string) string {
	return Hash(Clean(text))
}

// Deduper tracks content hashes seen during one scraping session. It is
// owned by the session that created it and discarded when the session ends;
// it is not safe for concurrent use.
type Deduper struct {
	seen map[string]struct{}
}

// NewDeduper creates an empty session deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Seen records hash and reports whether it had been recorded before.
func (d *Deduper) Seen(hash string) bool {
	if _, ok := d.seen[hash]; ok {
		return true
	}
	d.seen[hash] = struct{}{}
	return false
}

// Len returns the number of distinct hashes recorded.
func (d *Deduper) Len() int {
	return len(d.seen)
}
