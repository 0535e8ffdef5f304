package hl7v2

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Segment names, in message order.
const (
	SegmentMSH = "MSH"
	SegmentPID = "PID"
	SegmentPD1 = "PD1"
	SegmentORC = "ORC"
	SegmentRXA = "RXA"
	SegmentRXR = "RXR"
	SegmentOBX = "OBX"
)

// segmentOrder is the fixed assembly order of a message.
var segmentOrder = []string{
	SegmentMSH, SegmentPID, SegmentPD1, SegmentORC, SegmentRXA, SegmentRXR, SegmentOBX,
}

//go:embed templates/*.txt
var defaultTemplates embed.FS

// TemplateStore holds the seven parsed segment templates. It is built
// once at startup and read-only afterward, safe for concurrent use.
//
// Template files are authored with ordinary newlines; the loader rewrites
// line ends to the HL7 segment terminator (CR) so the assembler can
// concatenate rendered segments without inserting separators. Templates
// render with missingkey=error, so a placeholder absent from a builder's
// field map fails that segment rather than emitting a blank.
type TemplateStore struct {
	templates map[string]*template.Template
}

// NewTemplateStore loads the embedded default templates.
func NewTemplateStore() (*TemplateStore, error) {
	sub, err := fs.Sub(defaultTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return newTemplateStore(func(name string) ([]byte, error) {
		return fs.ReadFile(sub, name)
	})
}

// NewTemplateStoreFromDir loads registry-specific template overrides from
// dir. Every segment file must be present; a missing or malformed file is
// a configuration error.
func NewTemplateStoreFromDir(dir string) (*TemplateStore, error) {
	return newTemplateStore(func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	})
}

func newTemplateStore(read func(name string) ([]byte, error)) (*TemplateStore, error) {
	s := &TemplateStore{templates: make(map[string]*template.Template, len(segmentOrder))}
	for _, seg := range segmentOrder {
		name := strings.ToLower(seg) + ".txt"
		raw, err := read(name)
		if err != nil {
			return nil, fmt.Errorf("load %s template: %w", seg, err)
		}
		tmpl, err := template.New(seg).Option("missingkey=error").Parse(normalizeTerminators(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", seg, err)
		}
		s.templates[seg] = tmpl
	}
	return s, nil
}

// normalizeTerminators converts file line endings to the HL7 CR segment
// terminator, guaranteeing exactly one trailing CR.
func normalizeTerminators(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimRight(raw, "\n")
	return strings.ReplaceAll(raw, "\n", "\r") + "\r"
}

// Render substitutes fields into the named segment template.
func (s *TemplateStore) Render(segment string, fields map[string]string) (string, error) {
	tmpl, ok := s.templates[segment]
	if !ok {
		return "", fmt.Errorf("no template for segment %q", segment)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, fields); err != nil {
		return "", fmt.Errorf("render %s: %w", segment, err)
	}
	return sb.String(), nil
}
