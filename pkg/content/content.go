// Package content derives hashtag, token, mention and theme signals from
// captions. It is best-effort and never fails: empty captions simply yield
// empty lists.
package content

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"iganalyzer/pkg/normalize"
	"iganalyzer/pkg/post"
	"iganalyzer/pkg/stats"
)

// Uncategorized is the theme when no hashtag maps to a category
const Uncategorized = "uncategorized"

// Options controls classification
type Options struct {
	TopKHashtags   int
	TopKTokens     int
	TopKMentions   int
	MinTokenLength int

	// CategoryMap maps hashtags (without '#') to theme categories
	CategoryMap map[string]string
}

// DefaultOptions returns top-10 lists, a minimum token length of 3 and no
// category map
func DefaultOptions() Options {
	return Options{
		TopKHashtags:   10,
		TopKTokens:     10,
		TopKMentions:   10,
		MinTokenLength: 3,
	}
}

// Count is one entry of a frequency list
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Profile is the content summary of a record set
type Profile struct {
	TopHashtags        []Count      `json:"top_hashtags"`
	TopTokens          []Count      `json:"top_tokens"`
	TopMentions        []Count      `json:"top_mentions"`
	Theme              string       `json:"theme"`
	Themes             []Count      `json:"themes"`
	TotalHashtags      int          `json:"total_hashtags"`
	UniqueHashtags     int          `json:"unique_hashtags"`
	AvgHashtagsPerPost stats.Metric `json:"avg_hashtags_per_post"`
}

// Classify builds the content profile of records. Hashtags are taken from
// the records, which already hold them folded and deduplicated per post.
func Classify(records []post.Record, opts Options) Profile {
	categories := foldCategories(opts.CategoryMap)

	hashtags := newCounter()
	tokens := newCounter()
	mentions := newCounter()
	themes := newCounter()

	for _, r := range records {
		for _, tag := range r.Hashtags {
			hashtags.add(tag)
			if category, ok := categories[tag]; ok {
				themes.add(category)
			}
		}
		for _, m := range r.Mentions {
			mentions.add(m)
		}
		for _, tok := range Tokenize(r.Caption, opts.MinTokenLength) {
			tokens.add(tok)
		}
	}

	p := Profile{
		TopHashtags:    hashtags.top(opts.TopKHashtags),
		TopTokens:      tokens.top(opts.TopKTokens),
		TopMentions:    mentions.top(opts.TopKMentions),
		Theme:          Uncategorized,
		Themes:         themes.top(len(themes.order)),
		TotalHashtags:  hashtags.total,
		UniqueHashtags: len(hashtags.order),
	}
	if len(p.Themes) > 0 {
		p.Theme = p.Themes[0].Value
	}
	if len(records) > 0 {
		p.AvgHashtagsPerPost = stats.Value(float64(hashtags.total) / float64(len(records)))
	}
	return p
}

// Tokenize splits a caption into folded words. Apostrophes are dropped.
// Hashtags, mentions and URLs are removed, as are stop words, numbers and words shorter than minLength
// runes.
func Tokenize(caption string, minLength int) []string {
	var out []string
	for _, field := range strings.Fields(caption) {
		if isURL(field) {
			continue
		}
		if i := strings.IndexAny(field, "#@"); i >= 0 {
			field = field[:i]
		}
		field = apostrophes.Replace(field)
		for _, word := range strings.FieldsFunc(field, notWordRune) {
			word = normalize.Fold(word)
			if utf8.RuneCountInString(word) < minLength || isNumeric(word) || IsStopWord(word) {
				continue
			}
			out = append(out, word)
		}
	}
	return out
}

// apostrophes are dropped so contractions stay one word ("don't" → "dont")
var apostrophes = strings.NewReplacer("'", "", "’", "", "ʼ", "")

func isURL(field string) bool {
	lower := strings.ToLower(field)
	return strings.Contains(lower, "://") || strings.HasPrefix(lower, "www.")
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// foldCategories folds the map keys. When several keys fold to the same
// hashtag the first key in sorted order wins.
func foldCategories(m map[string]string) map[string]string {
	keys := make([]string, 0, len(m))
	for tag := range m {
		keys = append(keys, tag)
	}
	sort.Strings(keys)

	folded := make(map[string]string, len(m))
	for _, key := range keys {
		tag := FoldCategoryKey(key)
		category := strings.TrimSpace(m[key])
		if tag == "" || category == "" {
			continue
		}
		if _, exists := folded[tag]; !exists {
			folded[tag] = category
		}
	}
	return folded
}

// FoldCategoryKey returns the hashtag a category map key matches
func FoldCategoryKey(key string) string {
	return normalize.Fold(strings.TrimPrefix(strings.TrimSpace(key), "#"))
}

// counter counts values and remembers first-seen order for tie breaks
type counter struct {
	counts map[string]int
	order  []string
	total  int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(v string) {
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
	c.total++
}

// top returns the k most frequent values, ties in first-seen order
func (c *counter) top(k int) []Count {
	if k <= 0 {
		return []Count{}
	}
	ranked := make([]Count, len(c.order))
	for i, v := range c.order {
		ranked[i] = Count{Value: v, Count: c.counts[v]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
