// Package snapshot defines the persisted document a registry saves and
// loads: a container name, a save timestamp and one text-encoded record per
// variable.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimeLayout is the saveTime format, YYYY-MM-DD HH:MM:SS.
const TimeLayout = "2006-01-02 15:04:05"

// ErrMissingContainer is returned when a document has no container name.
var ErrMissingContainer = errors.New("snapshot: document has no container name")

// Document is the point-in-time state of one registry.
type Document struct {
	ContainerName string   `json:"containerName"`
	SaveTime      string   `json:"saveTime"`
	Variables     []Record `json:"variables"`
}

// Record is one variable's encoded value.
type Record struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// New returns an empty document stamped with at.
func New(container string, at time.Time) Document {
	return Document{
		ContainerName: container,
		SaveTime:      at.Format(TimeLayout),
		Variables:     []Record{},
	}
}

// SavedAt parses SaveTime in the local time zone.
func (d Document) SavedAt() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, d.SaveTime, time.Local)
}

// Marshal encodes doc as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	if doc.Variables == nil {
		doc.Variables = []Record{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes a document. Only the top level is validated; record
// values stay opaque text for the registry to decode one by one.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("snapshot: parse document: %w", err)
	}
	if doc.ContainerName == "" {
		return Document{}, ErrMissingContainer
	}
	return doc, nil
}

// WriteFile writes doc to path, creating parent directories. The file is
// written next to its destination and renamed into place. A document without
// a container name is refused since Unmarshal would reject it.
func WriteFile(path string, doc Document) error {
	if doc.ContainerName == "" {
		return fmt.Errorf("snapshot: write %s: %w", path, ErrMissingContainer)
	}
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("snapshot: replace %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and decodes the document at path. A missing file yields an
// error matching fs.ErrNotExist.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
