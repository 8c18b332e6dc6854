// Package report merges the analytics results into one document and
// serializes it deterministically.
package report

import (
	"bytes"
	"encoding/json"
	"io"

	"iganalyzer/pkg/content"
	"iganalyzer/pkg/errors"
	"iganalyzer/pkg/normalize"
	"iganalyzer/pkg/ranking"
	"iganalyzer/pkg/stats"
)

// SchemaVersion identifies the layout of the serialized report
const SchemaVersion = "1.0"

// Parameters are the analysis settings a report was produced with
type Parameters struct {
	TopN               int               `json:"top_n"`
	ScoreWeights       ranking.Weights   `json:"score_weights"`
	TimezoneConvention string            `json:"timezone_convention"`
	TopKHashtags       int               `json:"top_k_hashtags"`
	TopKTokens         int               `json:"top_k_tokens"`
	TopKMentions       int               `json:"top_k_mentions"`
	MinTokenLength     int               `json:"min_token_length"`
	TierThresholds     TierThresholds    `json:"tier_thresholds"`
	HashtagCategoryMap map[string]string `json:"hashtag_category_map,omitempty"`
}

// TierThresholds mirrors the creator tier boundaries
type TierThresholds struct {
	High    float64 `json:"high"`
	Growing float64 `json:"growing"`
}

// Diagnostics reports what normalization dropped or coerced
type Diagnostics struct {
	TotalInput         int                   `json:"total_input"`
	Accepted           int                   `json:"accepted"`
	Rejected           int                   `json:"rejected"`
	RejectionsByReason map[string]int        `json:"rejections_by_reason"`
	WarningsByReason   map[string]int        `json:"warnings_by_reason"`
	Rejections         []normalize.Rejection `json:"rejections"`
	Warnings           []normalize.Warning   `json:"warnings"`
}

// Report is the analytics document of one run. It holds no wall-clock
// data so identical input and parameters give identical bytes.
type Report struct {
	SchemaVersion  string               `json:"schema_version"`
	Config         Parameters           `json:"config"`
	Summary        stats.Summary        `json:"summary"`
	PostingPattern stats.PostingPattern `json:"posting_pattern"`
	ContentProfile content.Profile      `json:"content_profile"`
	TopPosts       []string             `json:"top_posts"`
	TopPostDetails []ranking.Entry      `json:"top_post_details"`
	Diagnostics    Diagnostics          `json:"diagnostics"`
}

// Assemble builds a report from the stage outputs
func Assemble(params Parameters, agg stats.Result, profile content.Profile, top []ranking.Entry, diag normalize.Diagnostics) *Report {
	if top == nil {
		top = []ranking.Entry{}
	}
	rejections := diag.Rejections
	if rejections == nil {
		rejections = []normalize.Rejection{}
	}
	warnings := diag.Warnings
	if warnings == nil {
		warnings = []normalize.Warning{}
	}

	return &Report{
		SchemaVersion:  SchemaVersion,
		Config:         params,
		Summary:        agg.Summary,
		PostingPattern: agg.PostingPattern,
		ContentProfile: profile,
		TopPosts:       ranking.IDs(top),
		TopPostDetails: top,
		Diagnostics: Diagnostics{
			TotalInput:         diag.TotalInput,
			Accepted:           diag.Accepted,
			Rejected:           diag.Rejected(),
			RejectionsByReason: diag.RejectedByReason(),
			WarningsByReason:   diag.WarningsByReason(),
			Rejections:         rejections,
			Warnings:           warnings,
		},
	}
}

// Encode writes the report as indented JSON followed by a newline. Struct
// fields keep declaration order and map keys are sorted.
func (r *Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return errors.Serialization("failed to encode report", err)
	}
	return nil
}

// Bytes returns the encoded report
func (r *Report) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
