// Package transfer moves appointments in and out of the book as JSON or
// YAML documents.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/models"
)

// DocumentVersion is written into every export.
const DocumentVersion = 1

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected json or yaml)", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the on-disk export layout.
type Document struct {
	Version      int                  `json:"version" yaml:"version"`
	ExportedAt   time.Time            `json:"exported_at" yaml:"exported_at"`
	Appointments []models.Appointment `json:"appointments" yaml:"appointments"`
}

// Export writes appts to w.
func Export(w io.Writer, format Format, appts []models.Appointment, exportedAt time.Time) error {
	if appts == nil {
		appts = []models.Appointment{}
	}
	doc := Document{
		Version:      DocumentVersion,
		ExportedAt:   exportedAt.UTC().Truncate(time.Second),
		Appointments: appts,
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Decode reads a document, rejecting unknown fields and newer versions.
func Decode(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("document version %d is newer than supported version %d", doc.Version, DocumentVersion)
	}
	return &doc, nil
}

// Inserter is the slice of the repository an import needs.
type Inserter interface {
	Insert(ctx context.Context, a models.Appointment) (int64, error)
}

// Import validates every appointment in doc and then inserts them with
// fresh ids. Nothing is inserted if any record is invalid.
func Import(ctx context.Context, dst Inserter, doc *Document) (int, error) {
	prepared := make([]models.Appointment, 0, len(doc.Appointments))
	for i, a := range doc.Appointments {
		if strings.TrimSpace(a.ClientName) == "" {
			return 0, fmt.Errorf("appointment %d: client name must not be blank", i+1)
		}
		switch a.Status {
		case "":
			a.Status = constants.StatusScheduled
		case constants.StatusScheduled, constants.StatusCompleted:
		default:
			return 0, fmt.Errorf("appointment %d: unknown status %q", i+1, a.Status)
		}
		a.ID = 0
		prepared = append(prepared, a)
	}

	for i, a := range prepared {
		if _, err := dst.Insert(ctx, a); err != nil {
			return i, fmt.Errorf("failed to import appointment %d: %w", i+1, err)
		}
	}
	return len(prepared), nil
}
