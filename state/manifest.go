// Package state tracks generated files in a manifest so stale outputs can
// be detected across generation runs.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const manifestName = ".loom.manifest.json"

type Entry struct {
	Path     string    `json:"path"`
	Hash     string    `json:"hash"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	Template string    `json:"template"`
	RunID    string    `json:"run_id"`
}

type Manifest struct {
	Version    string           `json:"version"`
	Generated  time.Time        `json:"generated"`
	Generator  string           `json:"generator"`
	OutputRoot string           `json:"output_root"`
	Entries    map[string]Entry `json:"entries"`
}

// Manager owns the manifest file under one output root.
type Manager struct {
	outputRoot   string
	manifestPath string
}

func NewManager(outputRoot string) *Manager {
	return &Manager{
		outputRoot:   outputRoot,
		manifestPath: filepath.Join(outputRoot, manifestName),
	}
}

func (m *Manager) Load() (*Manifest, error) {
	f, err := os.Open(m.manifestPath)
	if os.IsNotExist(err) {
		return &Manifest{
			Version:    "1.0",
			Generated:  time.Now(),
			Generator:  "loom",
			OutputRoot: m.outputRoot,
			Entries:    make(map[string]Entry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var manifest Manifest
	if err := json.NewDecoder(f).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.Entries == nil {
		manifest.Entries = make(map[string]Entry)
	}
	return &manifest, nil
}

// Save writes the manifest atomically, through a temp file and rename.
func (m *Manager) Save(manifest *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(m.manifestPath), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmpPath := m.manifestPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temporary manifest: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temporary manifest: %w", err)
	}

	if err := os.Rename(tmpPath, m.manifestPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("move manifest into place: %w", err)
	}
	return nil
}

// Add records a freshly generated file. path is relative to the output root.
func (m *Manager) Add(manifest *Manifest, path, template, runID string) error {
	fullPath := filepath.Join(m.outputRoot, path)
	stat, err := os.Stat(fullPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", fullPath, err)
	}

	hash, err := hashFile(fullPath)
	if err != nil {
		return fmt.Errorf("hash %s: %w", fullPath, err)
	}

	manifest.Entries[path] = Entry{
		Path:     path,
		Hash:     hash,
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
		Template: template,
		RunID:    runID,
	}
	manifest.Generated = time.Now()
	return nil
}

// HasChanged reports whether the file on disk diverged from its manifest
// entry. Unknown and missing files count as changed.
func (m *Manager) HasChanged(manifest *Manifest, path string) (bool, error) {
	entry, ok := manifest.Entries[path]
	if !ok {
		return true, nil
	}

	fullPath := filepath.Join(m.outputRoot, path)
	stat, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", fullPath, err)
	}

	if stat.Size() != entry.Size {
		return true, nil
	}

	hash, err := hashFile(fullPath)
	if err != nil {
		return false, fmt.Errorf("hash %s: %w", fullPath, err)
	}
	return hash != entry.Hash, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
