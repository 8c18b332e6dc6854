package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iganalyzer/pkg/post"
)

func at(day int) time.Time {
	return time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC)
}

func TestRank_WorkedExample(t *testing.T) {
	records := []post.Record{
		{ID: "a", TakenAt: at(1), Likes: post.Known(100), Comments: post.Known(5)},
		{ID: "b", TakenAt: at(2), Likes: post.Known(50), Comments: post.Known(50)},
	}

	entries := Rank(records, DefaultWeights(), 10)

	require.Len(t, entries, 2)
	assert.Equal(t, []string{"a", "b"}, IDs(entries))
	assert.Equal(t, 105.0, entries[0].Score)
	assert.Equal(t, 100.0, entries[1].Score)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestRank_Weights(t *testing.T) {
	records := []post.Record{
		{ID: "a", TakenAt: at(1), Likes: post.Known(100), Comments: post.Known(5)},
		{ID: "b", TakenAt: at(2), Likes: post.Known(50), Comments: post.Known(50)},
	}

	entries := Rank(records, Weights{Likes: 1, Comments: 3}, 10)
	assert.Equal(t, []string{"b", "a"}, IDs(entries))
	assert.Equal(t, 200.0, entries[0].Score)
}

func TestRank_TieBreaks(t *testing.T) {
	records := []post.Record{
		{ID: "old", TakenAt: at(1), Likes: post.Known(10)},
		{ID: "z", TakenAt: at(5), Likes: post.Known(10)},
		{ID: "y", TakenAt: at(5), Likes: post.Known(10)},
		{ID: "top", TakenAt: at(1), Likes: post.Known(11)},
	}

	entries := Rank(records, DefaultWeights(), 10)
	assert.Equal(t, []string{"top", "y", "z", "old"}, IDs(entries))
}

func TestRank_UnavailableCountsScoreZero(t *testing.T) {
	records := []post.Record{
		{ID: "a", TakenAt: at(1), Likes: post.Unavailable(), Comments: post.Known(3)},
		{ID: "b", TakenAt: at(1), Likes: post.Known(2), Comments: post.Unavailable()},
	}

	entries := Rank(records, DefaultWeights(), 10)
	assert.Equal(t, []string{"a", "b"}, IDs(entries))
	assert.Equal(t, 3.0, entries[0].Score)
	assert.False(t, entries[0].Likes.Available)
}

func TestRank_Limits(t *testing.T) {
	records := []post.Record{
		{ID: "a", TakenAt: at(1), Likes: post.Known(3)},
		{ID: "b", TakenAt: at(1), Likes: post.Known(2)},
		{ID: "c", TakenAt: at(1), Likes: post.Known(1)},
	}

	tests := []struct {
		n    int
		want []string
	}{
		{-1, []string{}},
		{0, []string{}},
		{1, []string{"a"}},
		{3, []string{"a", "b", "c"}},
		{10, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		entries := Rank(records, DefaultWeights(), tt.n)
		assert.NotNil(t, entries)
		assert.Equal(t, tt.want, IDs(entries), "n=%d", tt.n)
	}

	assert.Empty(t, Rank(nil, DefaultWeights(), 10))
}

func TestRank_DoesNotReorderInput(t *testing.T) {
	records := []post.Record{
		{ID: "low", TakenAt: at(1), Likes: post.Known(1)},
		{ID: "high", TakenAt: at(1), Likes: post.Known(9)},
	}

	Rank(records, DefaultWeights(), 10)
	assert.Equal(t, "low", records[0].ID)
	assert.Equal(t, "high", records[1].ID)
}

func TestRank_CarriesDetails(t *testing.T) {
	records := []post.Record{{
		ID:        "a",
		Shortcode: "Cx1",
		TakenAt:   at(3),
		Likes:     post.Known(1),
		MediaType: post.MediaVideo,
		Asset:     "media/a.mp4",
	}}

	e := Rank(records, DefaultWeights(), 1)[0]
	assert.Equal(t, "Cx1", e.Shortcode)
	assert.Equal(t, at(3), e.TakenAt)
	assert.Equal(t, post.MediaVideo, e.MediaType)
	assert.Equal(t, "media/a.mp4", e.Asset)
}
