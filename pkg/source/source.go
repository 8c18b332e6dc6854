// Package source reads post metadata produced by external downloaders.
//
// Three layouts are accepted: a JSON array of post objects, a captured
// GraphQL response whose first "edges" array holds the posts, and a
// directory of per-post JSON sidecar files.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"iganalyzer/internal/sidecar"
	"iganalyzer/pkg/errors"
	"iganalyzer/pkg/logger"
)

// DefaultSkip matches the reports this tool writes, so an output directory
// can be analysed again without picking them up.
var DefaultSkip = []string{"analytics_report*.json"}

// DefaultWorkers is the number of sidecar files read concurrently
const DefaultWorkers = 4

// Loader reads raw post items
type Loader struct {
	skip    []string
	workers int
	logger  logger.Logger
}

// NewLoader creates a loader that ignores directory entries matching any of
// the skip glob patterns
func NewLoader(skip []string) *Loader {
	return &Loader{skip: skip, workers: DefaultWorkers, logger: logger.NewNopLogger()}
}

// WithWorkers sets how many sidecar files are read at once
func (l *Loader) WithWorkers(n int) *Loader {
	if n > 0 {
		l.workers = n
	}
	return l
}

// WithLogger sets the logger used while reading sidecar directories
func (l *Loader) WithLogger(log logger.Logger) *Loader {
	if log != nil {
		l.logger = log
	}
	return l
}

// Load reads path with the default skip patterns
func Load(path string) ([]json.RawMessage, error) {
	return NewLoader(DefaultSkip).Load(context.Background(), path)
}

// Load returns the raw post items found at path in input order
func (l *Loader) Load(ctx context.Context, path string) ([]json.RawMessage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Input("cannot read input", err)
	}
	if info.IsDir() {
		return l.loadDir(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Input("cannot read input", err)
	}
	items, err := Parse(data)
	if err != nil {
		return nil, errors.Input(fmt.Sprintf("invalid input %s", path), err)
	}
	return items, nil
}

func (l *Loader) loadDir(ctx context.Context, dir string) ([]json.RawMessage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Input("cannot read input directory", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || l.skipped(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}

	items, err := sidecar.ReadAll(ctx, paths, l.workers, Parse, l.logger)
	if err != nil {
		return nil, errors.Input("invalid sidecar file", err)
	}
	l.logger.DebugWithFields("Sidecar directory loaded", map[string]interface{}{
		"dir":   dir,
		"files": len(paths),
		"items": len(items),
	})
	return items, nil
}

func (l *Loader) skipped(name string) bool {
	for _, pattern := range l.skip {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Parse splits one JSON document into post items. An array yields its
// elements. An object with a post identifier is one post, a {"node": ...}
// wrapper yields its node, and any other object yields the nodes of the
// first "edges" array found by depth-first search.
func Parse(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode array: %w", err)
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		return items, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("failed to decode object: %w", err)
		}
		if isPost(obj) {
			return []json.RawMessage{json.RawMessage(data)}, nil
		}
		if node, ok := obj["node"]; ok && bytes.HasPrefix(bytes.TrimSpace(node), []byte("{")) {
			return []json.RawMessage{node}, nil
		}
		if edges, ok := findEdges(data); ok {
			return edges, nil
		}
		return []json.RawMessage{json.RawMessage(data)}, nil
	default:
		return nil, fmt.Errorf("expected a JSON array or object")
	}
}

// isPost reports whether a top-level object is a post rather than a wrapper.
// Posts carry their own "edges" (caption, comments) which must not be
// mistaken for a post list.
func isPost(obj map[string]json.RawMessage) bool {
	for _, key := range []string{"id", "pk", "media_id", "shortcode", "code"} {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

// findEdges searches for the first "edges" array. Object keys are visited
// in sorted order so the result does not depend on map iteration.
func findEdges(data json.RawMessage) ([]json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false
	}

	switch data[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, false
		}
		if raw, ok := obj["edges"]; ok {
			if edges, ok := unwrapEdges(raw); ok {
				return edges, true
			}
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if edges, ok := findEdges(obj[k]); ok {
				return edges, true
			}
		}
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, false
		}
		for _, elem := range arr {
			if edges, ok := findEdges(elem); ok {
				return edges, true
			}
		}
	}
	return nil, false
}

// unwrapEdges turns [{"node": {...}}, ...] into [{...}, ...]. Edges without
// a node are kept as they are.
func unwrapEdges(raw json.RawMessage) ([]json.RawMessage, bool) {
	var edges []json.RawMessage
	if err := json.Unmarshal(raw, &edges); err != nil {
		return nil, false
	}

	items := make([]json.RawMessage, 0, len(edges))
	for _, edge := range edges {
		var wrapper struct {
			Node json.RawMessage `json:"node"`
		}
		if err := json.Unmarshal(edge, &wrapper); err == nil && len(wrapper.Node) > 0 {
			items = append(items, wrapper.Node)
			continue
		}
		items = append(items, edge)
	}
	return items, true
}
