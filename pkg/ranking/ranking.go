// Package ranking orders posts by engagement score.
package ranking

import (
	"sort"
	"time"

	"iganalyzer/pkg/post"
)

// Weights are the coefficients of the engagement score
//
//	score = Likes*likes + Comments*comments
//
// Unavailable counts contribute nothing.
type Weights struct {
	Likes    float64 `json:"likes"`
	Comments float64 `json:"comments"`
}

// DefaultWeights weighs likes and comments equally
func DefaultWeights() Weights {
	return Weights{Likes: 1, Comments: 1}
}

// Score returns the engagement score of r
func (w Weights) Score(r post.Record) float64 {
	var score float64
	if r.Likes.Available {
		score += w.Likes * float64(r.Likes.Value)
	}
	if r.Comments.Available {
		score += w.Comments * float64(r.Comments.Value)
	}
	return score
}

// Entry is one ranked post
type Entry struct {
	Rank      int            `json:"rank"`
	ID        string         `json:"id"`
	Shortcode string         `json:"shortcode,omitempty"`
	Score     float64        `json:"score"`
	Likes     post.Count     `json:"likes"`
	Comments  post.Count     `json:"comments"`
	TakenAt   time.Time      `json:"taken_at"`
	MediaType post.MediaType `json:"media_type"`
	Asset     string         `json:"asset,omitempty"`
}

// Rank returns at most n records ordered by score descending, then by
// taken_at descending, then by id ascending. records is not reordered.
func Rank(records []post.Record, weights Weights, n int) []Entry {
	if n <= 0 || len(records) == 0 {
		return []Entry{}
	}

	type scored struct {
		rec   *post.Record
		score float64
	}
	order := make([]scored, len(records))
	for i := range records {
		order[i] = scored{rec: &records[i], score: weights.Score(records[i])}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.rec.TakenAt.Equal(b.rec.TakenAt) {
			return a.rec.TakenAt.After(b.rec.TakenAt)
		}
		return a.rec.ID < b.rec.ID
	})

	if len(order) > n {
		order = order[:n]
	}

	entries := make([]Entry, len(order))
	for i, s := range order {
		entries[i] = Entry{
			Rank:      i + 1,
			ID:        s.rec.ID,
			Shortcode: s.rec.Shortcode,
			Score:     s.score,
			Likes:     s.rec.Likes,
			Comments:  s.rec.Comments,
			TakenAt:   s.rec.TakenAt,
			MediaType: s.rec.MediaType,
			Asset:     s.rec.Asset,
		}
	}
	return entries
}

// IDs returns the post ids of entries in rank order
func IDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
