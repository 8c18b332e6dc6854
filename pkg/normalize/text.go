package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the canonical comparison form of a hashtag, mention or
// token: NFC-normalized and lowercased.
func Fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// ExtractHashtags returns the folded hashtags of a caption in first-seen
// order without duplicates. A hashtag runs from '#' to the next whitespace
// or '#'; trailing punctuation is dropped.
func ExtractHashtags(caption string) []string {
	return extract(caption, '#', false)
}

// ExtractMentions returns the folded @handles of a caption in first-seen
// order. An '@' directly after a letter or digit (an e-mail address) does
// not start a mention.
func ExtractMentions(caption string) []string {
	return extract(caption, '@', true)
}

func extract(caption string, marker rune, wordBoundary bool) []string {
	out := []string{}
	if !strings.ContainsRune(caption, marker) {
		return out
	}

	seen := make(map[string]bool)
	prev := ' '
	for i := 0; i < len(caption); {
		r, size := utf8.DecodeRuneInString(caption[i:])
		if r != marker || (wordBoundary && isWordRune(prev)) {
			prev = r
			i += size
			continue
		}

		start := i + size
		end := start
		for end < len(caption) {
			next, n := utf8.DecodeRuneInString(caption[end:])
			if unicode.IsSpace(next) || next == marker {
				break
			}
			end += n
		}

		tag := strings.TrimRightFunc(caption[start:end], isTrailing)
		if tag != "" {
			folded := Fold(tag)
			if !seen[folded] {
				seen[folded] = true
				out = append(out, folded)
			}
		}

		prev = r
		i = end
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isTrailing(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
