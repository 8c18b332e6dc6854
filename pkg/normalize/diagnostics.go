package normalize

import "sort"

// Reason is a stable code describing why a record was rejected or flagged
type Reason string

// Rejection reasons. A rejected record is dropped from the analysis.
const (
	ReasonNotObject        Reason = "not an object"
	ReasonMissingID        Reason = "missing id"
	ReasonDuplicateID      Reason = "duplicate id"
	ReasonMissingTimestamp Reason = "missing timestamp"
	ReasonBadTimestamp     Reason = "unparseable timestamp"
)

// Warning reasons. A flagged record is kept.
const (
	ReasonNegativeCount    Reason = "negative count"
	ReasonNonNumericCount  Reason = "non-numeric count"
	ReasonMissingCount     Reason = "missing count"
	ReasonUnknownMediaType Reason = "unknown media type"
)

// Rejection describes one input record dropped by normalization
type Rejection struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Warning describes a field of an accepted record that was coerced
type Warning struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Diagnostics summarises a normalization pass
type Diagnostics struct {
	TotalInput int         `json:"total_input"`
	Accepted   int         `json:"accepted"`
	Rejections []Rejection `json:"rejections"`
	Warnings   []Warning   `json:"warnings"`
}

// Rejected returns the number of dropped records
func (d Diagnostics) Rejected() int {
	return len(d.Rejections)
}

// RejectedByReason counts rejections per reason
func (d Diagnostics) RejectedByReason() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Rejections {
		counts[string(r.Reason)]++
	}
	return counts
}

// WarningsByReason counts warnings per reason
func (d Diagnostics) WarningsByReason() map[string]int {
	counts := make(map[string]int)
	for _, w := range d.Warnings {
		counts[string(w.Reason)]++
	}
	return counts
}

// Reasons returns the distinct reasons of counts in sorted order
func Reasons(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
