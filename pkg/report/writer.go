package report

import (
	"bytes"
	"path/filepath"

	"iganalyzer/pkg/errors"
	"iganalyzer/pkg/logger"
	"iganalyzer/pkg/storage"
)

// Writer persists reports to disk
type Writer struct {
	logger logger.Logger
}

// NewWriter creates a report writer
func NewWriter(log logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Writer{logger: log}
}

// Write encodes r and stores it atomically at path. Every failure is a
// serialization error; the report itself is left untouched so the caller
// can retry with another sink.
func (w *Writer) Write(path string, r *Report) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}

	manager, err := storage.NewManager(filepath.Dir(path))
	if err != nil {
		return errors.Serialization("output directory is not usable", err)
	}

	name := filepath.Base(path)
	if manager.Exists(name) {
		w.logger.WithField("path", path).Debug("Replacing existing report")
	}

	written, err := manager.Save(bytes.NewReader(data), name)
	if err != nil {
		return errors.Serialization("failed to write report", err)
	}

	w.logger.InfoWithFields("Report written", map[string]interface{}{
		"path":  written,
		"bytes": len(data),
	})
	return nil
}
