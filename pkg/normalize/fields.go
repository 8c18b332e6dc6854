package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field aliases accepted from the different downloader formats. The first
// present alias wins.
var (
	idFields        = []string{"id", "pk", "media_id", "mediaid", "shortcode", "code"}
	shortcodeFields = []string{"shortcode", "code"}
	timeFields      = []string{"taken_at", "taken_at_timestamp", "timestamp", "date_utc", "date"}
	likeFields      = []string{"like_count", "likes", "likes_count", "edge_liked_by", "edge_media_preview_like"}
	commentFields   = []string{"comment_count", "comments", "comments_count", "edge_media_to_comment"}
	captionFields   = []string{"caption", "caption_text", "edge_media_to_caption.edges.0.node.text"}
	assetFields     = []string{"local_path", "path", "file", "display_url", "url", "thumbnail_url"}
)

// unixMillisThreshold separates unix seconds from unix milliseconds
const unixMillisThreshold = 1e12

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

var (
	errMissing    = errors.New("missing")
	errNonNumeric = errors.New("non-numeric")
)

// lookup resolves the first alias present in m. Aliases may be dotted paths
// through nested objects and arrays ("edges.0.node.text").
func lookup(m map[string]interface{}, aliases []string) (interface{}, string, bool) {
	for _, alias := range aliases {
		if v, ok := lookupPath(m, alias); ok && v != nil {
			return v, alias, true
		}
	}
	return nil, "", false
}

func lookupPath(m map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = m
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []interface{}:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// parseID accepts string and numeric identifiers
func parseID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	default:
		return ""
	}
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Representable years of an RFC 3339 timestamp
const (
	minYear = 0
	maxYear = 9999
)

// parseTimestamp accepts unix seconds or milliseconds (numbers or numeric
// strings) and the common textual layouts. Zone-less values are UTC. Times
// outside years 0-9999 have no RFC 3339 form and are rejected.
func parseTimestamp(v interface{}) (time.Time, error) {
	t, err := parseTime(v)
	if err != nil {
		return time.Time{}, err
	}
	if y := t.Year(); y < minYear || y > maxYear {
		return time.Time{}, fmt.Errorf("year %d outside [%d, %d]", y, minYear, maxYear)
	}
	return t, nil
}

func parseTime(v interface{}) (time.Time, error) {
	switch ts := v.(type) {
	case json.Number:
		f, err := ts.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid number %q", ts.String())
		}
		return fromUnix(f)
	case string:
		s := strings.TrimSpace(ts)
		if s == "" {
			return time.Time{}, errMissing
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromUnix(f)
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised time %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}
}

func fromUnix(f float64) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("invalid unix time %v", f)
	}
	if math.Abs(f) >= unixMillisThreshold {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

// parseCount accepts integers, integral floats, numeric strings with
// thousands separators and {"count": n} objects.
func parseCount(v interface{}) (int64, error) {
	switch c := v.(type) {
	case nil:
		return 0, errMissing
	case json.Number:
		if n, err := c.Int64(); err == nil {
			return n, nil
		}
		f, err := c.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
			return 0, errNonNumeric
		}
		return int64(f), nil
	case string:
		s := strings.NewReplacer(",", "", "_", "", " ", "").Replace(c)
		if s == "" {
			return 0, errMissing
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errNonNumeric
		}
		return n, nil
	case map[string]interface{}:
		inner, ok := c["count"]
		if !ok {
			return 0, errMissing
		}
		return parseCount(inner)
	default:
		return 0, errNonNumeric
	}
}
