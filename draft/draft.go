// Package draft implements reading and writing of draft files.
//
// A draft is a small YAML document with four top-level keys in fixed
// order:
//
//	goal: Build a tool
//	context:
//	  - No existing code
//	steps:
//	  - Design, implement, test
//	constraints:
//	  - Must run offline
//
// Drafts are always emitted through the yaml.v3 encoder, so any string
// (list markers, colons, quotes, newlines) survives a round-trip.
package draft

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Extension is the conventional file extension for drafts.
const Extension = ".draft"

// Draft is the translated result of a wizard session.
type Draft struct {
	Goal        string   `yaml:"goal"`
	Context     []string `yaml:"context"`
	Steps       []string `yaml:"steps"`
	Constraints []string `yaml:"constraints"`
}

// Marshal encodes the draft as YAML with two-space indentation.
// Empty lists are written as [].
func (d Draft) Marshal() ([]byte, error) {
	d.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a draft document.
func Parse(data []byte) (Draft, error) {
	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("parsing draft: %w", err)
	}
	d.normalize()
	return d, nil
}

// ParseFile reads and decodes a draft file.
func ParseFile(path string) (Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Draft{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// WriteFile writes the draft to path, creating parent directories. The
// file is written to a temporary sibling first and renamed into place, so
// a failed save never leaves a truncated draft behind.
func (d Draft) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// DefaultFileName returns the suggested file name for a draft saved at t.
func DefaultFileName(t time.Time) string {
	return "draft-" + t.Format("2006-01-02") + Extension
}

func (d *Draft) normalize() {
	if d.Context == nil {
		d.Context = []string{}
	}
	if d.Steps == nil {
		d.Steps = []string{}
	}
	if d.Constraints == nil {
		d.Constraints = []string{}
	}
}
