package registry

import (
	"errors"
	"io/fs"

	"github.com/vk/scriptvars/internal/snapshot"
)

// ApplyReport describes what Apply did with each record.
type ApplyReport struct {
	Applied []string
	// Unknown lists record names with no matching variable.
	Unknown []string
	// Failed maps record names to their decode error.
	Failed map[string]error
}

// Snapshot encodes every variable's current value. Variables whose value
// cannot be encoded are logged and left out.
func (r *Registry) Snapshot() snapshot.Document {
	doc := snapshot.New(r.name, r.now())
	for _, e := range r.entries {
		text, err := e.EncodeValue()
		if err != nil {
			r.logger.Warn("Skipping variable that failed to encode.", "registry", r.name, "variable", e.Name(), "error", err)
			continue
		}
		doc.Variables = append(doc.Variables, snapshot.Record{
			Name:  e.Name(),
			Type:  e.Kind(),
			Value: text,
		})
	}
	return doc
}

// Apply assigns every record whose name matches a variable. Each record is
// decoded by the target variable's own kind; a failure is logged and does
// not stop the remaining records. Variables without a record keep their
// value.
func (r *Registry) Apply(doc snapshot.Document) ApplyReport {
	report := ApplyReport{Failed: map[string]error{}}
	if doc.ContainerName != r.name {
		r.logger.Warn("Applying snapshot saved for another container.", "registry", r.name, "container", doc.ContainerName)
	}
	for _, rec := range doc.Variables {
		e, ok := r.byName[rec.Name]
		if !ok {
			r.logger.Warn("Skipping saved variable not present in registry.", "registry", r.name, "variable", rec.Name)
			report.Unknown = append(report.Unknown, rec.Name)
			continue
		}
		if rec.Type != e.Kind() {
			r.logger.Warn("Saved type differs from variable type, decoding as variable type.",
				"registry", r.name, "variable", rec.Name, "saved_type", rec.Type, "type", e.Kind())
		}
		if err := e.DecodeValue(rec.Value); err != nil {
			r.logger.Warn("Failed to load saved variable.", "registry", r.name, "variable", rec.Name, "error", err)
			report.Failed[rec.Name] = err
			continue
		}
		report.Applied = append(report.Applied, rec.Name)
	}
	return report
}

// SaveToPath writes a snapshot of the registry to path, creating parent
// directories. It returns false and logs when the file cannot be written.
func (r *Registry) SaveToPath(path string) bool {
	doc := r.Snapshot()
	if err := snapshot.WriteFile(path, doc); err != nil {
		r.logger.Error("Failed to save registry.", "registry", r.name, "path", path, "error", err)
		return false
	}
	r.logger.Debug("Registry saved.", "registry", r.name, "path", path, "variables", len(doc.Variables))
	return true
}

// LoadFromPath reads the snapshot at path and applies it. It returns false
// when the file is missing or its top level does not parse; per-variable
// failures are logged and do not affect the result.
func (r *Registry) LoadFromPath(path string) bool {
	doc, err := snapshot.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("No saved state found.", "registry", r.name, "path", path)
		} else {
			r.logger.Error("Failed to read saved state.", "registry", r.name, "path", path, "error", err)
		}
		return false
	}
	report := r.Apply(doc)
	r.logger.Debug("Registry loaded.", "registry", r.name, "path", path,
		"applied", len(report.Applied), "unknown", len(report.Unknown), "failed", len(report.Failed))
	return true
}
