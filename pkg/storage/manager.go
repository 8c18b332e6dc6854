package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Manager writes report artifacts into one output directory
type Manager struct {
	outputDir string
	artifacts map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		artifacts: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records the JSON files already in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			m.artifacts[entry.Name()] = true
		}
	}

	return nil
}

// Exists reports whether an artifact with the given file name is present
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	known := m.artifacts[name]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(m.Path(name)); err == nil {
		m.mu.Lock()
		m.artifacts[name] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Path returns the full path of an artifact
func (m *Manager) Path(name string) string {
	return filepath.Join(m.outputDir, name)
}

// Save writes r to the named artifact. The content goes to a temporary file
// in the same directory first and is renamed into place, so readers never
// see a partial file.
func (m *Manager) Save(r io.Reader, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	filename := m.Path(name)

	out, err := os.CreateTemp(m.outputDir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write artifact data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.artifacts[name] = true
	m.mu.Unlock()

	return filename, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetArtifactCount returns the number of JSON artifacts known to the manager
func (m *Manager) GetArtifactCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.artifacts)
}
