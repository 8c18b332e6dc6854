// Package stats computes engagement summaries and posting patterns over
// normalized records.
package stats

import (
	"time"
	"unicode/utf8"

	"iganalyzer/pkg/post"
)

// Creator tiers derived from average likes
const (
	TierHighEngagement = "high-engagement"
	TierGrowing        = "growing"
	TierEmerging       = "emerging"
)

// Options controls aggregation
type Options struct {
	// Location used for weekday, hour and month buckets. Nil means UTC.
	Location *time.Location

	// Average-likes thresholds for the creator tier
	HighTier    float64
	GrowingTier float64
}

// DefaultOptions returns UTC buckets and the default tier thresholds
func DefaultOptions() Options {
	return Options{
		Location:    time.UTC,
		HighTier:    5000,
		GrowingTier: 1000,
	}
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// CountStats summarises one engagement counter
type CountStats struct {
	Total     int64  `json:"total"`
	Available int    `json:"available"`
	Average   Metric `json:"average"`
	Median    Metric `json:"median"`
	Max       Metric `json:"max"`
}

// DateRange is the span of post timestamps
type DateRange struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

// Summary holds the scalar aggregates of a record set
type Summary struct {
	TotalPosts        int            `json:"total_posts"`
	Likes             CountStats     `json:"likes"`
	Comments          CountStats     `json:"comments"`
	EngagementPerPost Metric         `json:"engagement_per_post"`
	MediaTypes        map[string]int `json:"media_types"`
	DateRange         *DateRange     `json:"date_range"`
	AvgCaptionLength  Metric         `json:"avg_caption_length"`
	CreatorTier       *string        `json:"creator_tier"`
}

// Result bundles everything the aggregator produces
type Result struct {
	Summary        Summary        `json:"summary"`
	PostingPattern PostingPattern `json:"posting_pattern"`
}

// Aggregate computes the summary and posting pattern of records. It only
// reads records.
func Aggregate(records []post.Record, opts Options) Result {
	return Result{
		Summary:        Summarize(records, opts),
		PostingPattern: Pattern(records, opts),
	}
}

// Summarize computes totals, averages and medians. Unavailable counts are
// excluded from averages, medians and maxima.
func Summarize(records []post.Record, opts Options) Summary {
	s := Summary{
		TotalPosts: len(records),
		MediaTypes: make(map[string]int, len(post.MediaTypes)),
	}
	for _, mt := range post.MediaTypes {
		s.MediaTypes[string(mt)] = 0
	}

	var likes, comments, engagement []int64
	var captionRunes int
	for _, r := range records {
		if r.Likes.Available {
			likes = append(likes, r.Likes.Value)
		}
		if r.Comments.Available {
			comments = append(comments, r.Comments.Value)
		}
		if r.Likes.Available && r.Comments.Available {
			engagement = append(engagement, r.Likes.Value+r.Comments.Value)
		}
		s.MediaTypes[string(r.MediaType)]++
		captionRunes += utf8.RuneCountInString(r.Caption)

		if s.DateRange == nil {
			s.DateRange = &DateRange{First: r.TakenAt, Last: r.TakenAt}
			continue
		}
		if r.TakenAt.Before(s.DateRange.First) {
			s.DateRange.First = r.TakenAt
		}
		if r.TakenAt.After(s.DateRange.Last) {
			s.DateRange.Last = r.TakenAt
		}
	}

	s.Likes = countStats(likes)
	s.Comments = countStats(comments)
	s.EngagementPerPost = mean(engagement)
	if len(records) > 0 {
		s.AvgCaptionLength = Value(float64(captionRunes) / float64(len(records)))
	}
	s.CreatorTier = creatorTier(s.Likes.Average, opts)

	return s
}

func countStats(values []int64) CountStats {
	cs := CountStats{
		Available: len(values),
		Average:   mean(values),
		Median:    median(values),
		Max:       maximum(values),
	}
	for _, v := range values {
		cs.Total += v
	}
	return cs
}

func creatorTier(avgLikes Metric, opts Options) *string {
	if !avgLikes.Defined {
		return nil
	}
	tier := TierEmerging
	switch {
	case avgLikes.Value > opts.HighTier:
		tier = TierHighEngagement
	case avgLikes.Value > opts.GrowingTier:
		tier = TierGrowing
	}
	return &tier
}
