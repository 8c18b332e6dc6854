package post

import (
	"fmt"
	"strings"
	"time"
)

// MediaType is the kind of media a post carries
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaCarousel MediaType = "carousel"
)

// MediaTypes lists every media type in report order
var MediaTypes = []MediaType{MediaImage, MediaVideo, MediaCarousel}

// ParseMediaType maps the names used by Instagram exports and scrapers onto
// a MediaType. The boolean is false for names it does not recognise.
func ParseMediaType(s string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image", "photo", "graphimage", "feed", "1":
		return MediaImage, true
	case "video", "reel", "clips", "igtv", "graphvideo", "2":
		return MediaVideo, true
	case "carousel", "carousel_container", "album", "sidecar", "graphsidecar", "8":
		return MediaCarousel, true
	}
	return MediaImage, false
}

// Count is an engagement counter. Available is false when the source value
// was missing or untrustworthy; Value is then 0 and must not be read as a
// true zero.
type Count struct {
	Value     int64 `json:"value"`
	Available bool  `json:"available"`
}

// Known returns an available count
func Known(v int64) Count {
	return Count{Value: v, Available: true}
}

// Unavailable returns a count flagged as unavailable
func Unavailable() Count {
	return Count{}
}

func (c Count) String() string {
	if !c.Available {
		return "n/a"
	}
	return fmt.Sprintf("%d", c.Value)
}

// Record is one normalized post. Records are built once by the normalizer
// and treated as read-only afterwards; slices are never modified in place.
type Record struct {
	ID        string    `json:"id"`
	Shortcode string    `json:"shortcode,omitempty"`
	TakenAt   time.Time `json:"taken_at"`
	Likes     Count     `json:"likes"`
	Comments  Count     `json:"comments"`
	Caption   string    `json:"caption"`
	Hashtags  []string  `json:"hashtags"`
	Mentions  []string  `json:"mentions"`
	MediaType MediaType `json:"media_type"`
	Asset     string    `json:"asset,omitempty"`
}
