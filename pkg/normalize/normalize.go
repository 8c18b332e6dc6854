package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"iganalyzer/pkg/post"
)

// Result holds the accepted records and the diagnostics of one pass
type Result struct {
	Records     []post.Record
	Diagnostics Diagnostics
}

// Normalizer converts raw post metadata into canonical records
type Normalizer struct{}

// New creates a Normalizer
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize is a shorthand for New().Normalize(items)
func Normalize(items []json.RawMessage) Result {
	return New().Normalize(items)
}

// Normalize validates every item and returns the accepted records in input
// order. Items are never modified. Rejected items are reported in the
// diagnostics together with their index.
func (n *Normalizer) Normalize(items []json.RawMessage) Result {
	res := Result{
		Records: make([]post.Record, 0, len(items)),
		Diagnostics: Diagnostics{
			TotalInput: len(items),
			Rejections: []Rejection{},
			Warnings:   []Warning{},
		},
	}

	seen := make(map[string]bool, len(items))
	for i, item := range items {
		rec, warnings, rej := n.normalizeOne(i, item)
		if rej == nil && seen[rec.ID] {
			rej = &Rejection{Index: i, ID: rec.ID, Reason: ReasonDuplicateID}
		}
		if rej != nil {
			res.Diagnostics.Rejections = append(res.Diagnostics.Rejections, *rej)
			continue
		}

		seen[rec.ID] = true
		res.Records = append(res.Records, rec)
		res.Diagnostics.Warnings = append(res.Diagnostics.Warnings, warnings...)
	}

	res.Diagnostics.Accepted = len(res.Records)
	return res
}

func (n *Normalizer) normalizeOne(index int, raw json.RawMessage) (post.Record, []Warning, *Rejection) {
	var rec post.Record

	fields, err := decodeObject(raw)
	if err != nil {
		return rec, nil, &Rejection{Index: index, Reason: ReasonNotObject, Detail: err.Error()}
	}

	idValue, _, _ := lookup(fields, idFields)
	rec.ID = parseID(idValue)
	if rec.ID == "" {
		return rec, nil, &Rejection{Index: index, Reason: ReasonMissingID}
	}

	tsValue, tsField, ok := lookup(fields, timeFields)
	if !ok {
		return rec, nil, &Rejection{Index: index, ID: rec.ID, Reason: ReasonMissingTimestamp}
	}
	rec.TakenAt, err = parseTimestamp(tsValue)
	if err == errMissing {
		return rec, nil, &Rejection{Index: index, ID: rec.ID, Reason: ReasonMissingTimestamp}
	}
	if err != nil {
		return rec, nil, &Rejection{
			Index:  index,
			ID:     rec.ID,
			Reason: ReasonBadTimestamp,
			Detail: fmt.Sprintf("%s: %v", tsField, err),
		}
	}

	var warnings []Warning
	warn := func(field string, reason Reason, detail string) {
		warnings = append(warnings, Warning{
			Index:  index,
			ID:     rec.ID,
			Field:  field,
			Reason: reason,
			Detail: detail,
		})
	}

	if v, _, ok := lookup(fields, shortcodeFields); ok {
		rec.Shortcode = stringValue(v)
	}

	rec.Likes = countField(fields, likeFields, "likes", warn)
	rec.Comments = countField(fields, commentFields, "comments", warn)

	rec.Caption = caption(fields)
	rec.Hashtags = ExtractHashtags(rec.Caption)
	rec.Mentions = ExtractMentions(rec.Caption)

	mt, name, known := mediaType(fields)
	if !known {
		warn("media_type", ReasonUnknownMediaType, name)
	}
	rec.MediaType = mt

	if v, _, ok := lookup(fields, assetFields); ok {
		rec.Asset = stringValue(v)
	}

	return rec, warnings, nil
}

func decodeObject(raw json.RawMessage) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("got %s", kindOf(v))
	}
	return m, nil
}

func kindOf(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func countField(fields map[string]interface{}, aliases []string, name string, warn func(string, Reason, string)) post.Count {
	v, alias, ok := lookup(fields, aliases)
	if !ok {
		warn(name, ReasonMissingCount, "")
		return post.Unavailable()
	}

	value, err := parseCount(v)
	switch {
	case err == errMissing:
		warn(name, ReasonMissingCount, alias)
		return post.Unavailable()
	case err != nil:
		warn(name, ReasonNonNumericCount, fmt.Sprintf("%s: %v", alias, v))
		return post.Unavailable()
	case value < 0:
		warn(name, ReasonNegativeCount, fmt.Sprintf("%s: %d", alias, value))
		return post.Unavailable()
	}
	return post.Known(value)
}

func caption(fields map[string]interface{}) string {
	v, _, ok := lookup(fields, captionFields)
	if !ok {
		return ""
	}
	switch c := v.(type) {
	case string:
		return c
	case map[string]interface{}:
		if text, ok := c["text"].(string); ok {
			return text
		}
	}
	return ""
}

// mediaType resolves the media type from the first media hint present.
// Records without any hint are images.
func mediaType(fields map[string]interface{}) (post.MediaType, string, bool) {
	for _, key := range []string{"media_type", "__typename", "product_type"} {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		var name string
		switch t := v.(type) {
		case string:
			name = t
		case json.Number:
			name = t.String()
		default:
			name = fmt.Sprint(t)
		}
		if strings.TrimSpace(name) == "" {
			continue
		}
		mt, known := post.ParseMediaType(name)
		return mt, name, known
	}

	if isVideo, ok := fields["is_video"].(bool); ok && isVideo {
		return post.MediaVideo, "", true
	}
	return post.MediaImage, "", true
}
