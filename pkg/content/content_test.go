package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iganalyzer/pkg/normalize"
	"iganalyzer/pkg/post"
	"iganalyzer/pkg/stats"
)

func captioned(id, caption string) post.Record {
	return post.Record{
		ID:       id,
		Caption:  caption,
		Hashtags: normalize.ExtractHashtags(caption),
		Mentions: normalize.ExtractMentions(caption),
	}
}

func TestClassify_CaseInsensitiveHashtags(t *testing.T) {
	records := []post.Record{
		captioned("a", "Morning run #Foo"),
		captioned("b", "Evening run #foo #bar"),
	}

	p := Classify(records, DefaultOptions())

	assert.Equal(t, []Count{{"foo", 2}, {"bar", 1}}, p.TopHashtags)
	assert.Equal(t, 3, p.TotalHashtags)
	assert.Equal(t, 2, p.UniqueHashtags)
	assert.Equal(t, stats.Value(1.5), p.AvgHashtagsPerPost)
}

func TestClassify_TiesFirstSeen(t *testing.T) {
	records := []post.Record{
		captioned("a", "#zeta #alpha"),
		captioned("b", "#alpha #zeta #mid"),
	}

	opts := DefaultOptions()
	opts.TopKHashtags = 2
	p := Classify(records, opts)

	assert.Equal(t, []Count{{"zeta", 2}, {"alpha", 2}}, p.TopHashtags)
}

func TestClassify_Tokens(t *testing.T) {
	records := []post.Record{
		captioned("a", "Building the startup, building the team! https://example.com #build @cofounder 2024"),
		captioned("b", "Startup life: coffee & code... www.example.org"),
	}

	p := Classify(records, DefaultOptions())

	assert.Equal(t, []Count{
		{"building", 2},
		{"startup", 2},
		{"team", 1},
		{"life", 1},
		{"coffee", 1},
		{"code", 1},
	}, p.TopTokens)
	assert.Equal(t, []Count{{"cofounder", 1}}, p.TopMentions)
}

func TestClassify_Themes(t *testing.T) {
	records := []post.Record{
		captioned("a", "#Startup #focus"),
		captioned("b", "#money #routine"),
		captioned("c", "#art"),
	}

	opts := DefaultOptions()
	opts.CategoryMap = map[string]string{
		"#startup": "entrepreneurship",
		"Money":    "entrepreneurship",
		"focus":    "productivity",
		"routine":  "productivity",
		"art":      "creativity",
	}
	p := Classify(records, opts)

	assert.Equal(t, "entrepreneurship", p.Theme)
	assert.Equal(t, []Count{
		{"entrepreneurship", 2},
		{"productivity", 2},
		{"creativity", 1},
	}, p.Themes)
}

func TestClassify_CollidingCategoryKeys(t *testing.T) {
	records := []post.Record{captioned("a", "Road trip #travel")}
	opts := DefaultOptions()
	opts.CategoryMap = map[string]string{"Travel": "adventure", "#travel": "leisure"}

	for i := 0; i < 200; i++ {
		p := Classify(records, opts)
		require.Equal(t, "leisure", p.Theme)
		require.Equal(t, []Count{{"leisure", 1}}, p.Themes)
	}
}

func TestFoldCategoryKey(t *testing.T) {
	assert.Equal(t, "travel", FoldCategoryKey(" #Travel "))
	assert.Equal(t, "caf\u00e9", FoldCategoryKey("CAFE\u0301"))
	assert.Equal(t, "", FoldCategoryKey("#"))
}

func TestClassify_Uncategorized(t *testing.T) {
	records := []post.Record{captioned("a", "#cats")}

	p := Classify(records, DefaultOptions())
	assert.Equal(t, Uncategorized, p.Theme)
	assert.Empty(t, p.Themes)

	opts := DefaultOptions()
	opts.CategoryMap = map[string]string{"dogs": "pets"}
	p = Classify(records, opts)
	assert.Equal(t, Uncategorized, p.Theme)
}

func TestClassify_Empty(t *testing.T) {
	for _, records := range [][]post.Record{nil, {captioned("a", "")}} {
		p := Classify(records, DefaultOptions())

		assert.NotNil(t, p.TopHashtags)
		assert.Empty(t, p.TopHashtags)
		assert.NotNil(t, p.TopTokens)
		assert.Empty(t, p.TopTokens)
		assert.Equal(t, Uncategorized, p.Theme)
		assert.Equal(t, 0, p.TotalHashtags)
	}

	assert.False(t, Classify(nil, DefaultOptions()).AvgHashtagsPerPost.Defined)
}

func TestClassify_ZeroTopK(t *testing.T) {
	opts := Options{MinTokenLength: 1}
	p := Classify([]post.Record{captioned("a", "words #tag")}, opts)

	assert.Empty(t, p.TopHashtags)
	assert.Empty(t, p.TopTokens)
	assert.Equal(t, 1, p.TotalHashtags)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		min     int
		want    []string
	}{
		{"stop words", "The best of the best", 3, []string{"best", "best"}},
		{"numbers", "Top 10 tips 2024", 3, []string{"top", "tips"}},
		{"min length", "go is fun", 3, []string{"fun"}},
		{"attached hashtag", "sunset#beach", 3, []string{"sunset"}},
		{"unicode", "Crème brûlée", 3, []string{"crème", "brûlée"}},
		{"apostrophes", "Don't stop, it's Sam’s dream", 3, []string{"stop", "sams", "dream"}},
		{"empty", "", 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.caption, tt.min))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	records := []post.Record{
		captioned("a", "one two three #x #y"),
		captioned("b", "three two one #y #x"),
	}

	first := Classify(records, DefaultOptions())
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Classify(records, DefaultOptions()))
	}
}
