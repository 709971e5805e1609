package exporters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
	"github.com/ysh4me/bibliotheque-interactif/internal/library"
	"github.com/ysh4me/bibliotheque-interactif/internal/settingsstore"
)

const (
	ExportSource = "bibliotheque-en-ligne"

	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

var ErrInvalidDocument = fmt.Errorf("%w: invalid export document", library.ErrValidation)

type Metadata struct {
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
}

// Document is the full export: the library, the preferences and a stats summary.
type Document struct {
	Books    entities.Snapshot       `json:"books"`
	Settings *settingsstore.Settings `json:"settings,omitempty"`
	Stats    *library.Stats          `json:"stats,omitempty"`
	Metadata Metadata                `json:"metadata"`
}

// ImportDocument is the decoded form of an uploaded export. Books stay raw so
// the library can sanitize them the same way it sanitizes its own storage.
type ImportDocument struct {
	Books    json.RawMessage         `json:"books"`
	Settings *settingsstore.Settings `json:"settings,omitempty"`
	Metadata *Metadata               `json:"metadata,omitempty"`
}

// ParseDocument decodes an export document. A bare library snapshot (an
// object keyed by column ids) is accepted as well.
func ParseDocument(raw []byte) (*ImportDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidDocument)
	}

	if _, ok := top["books"]; !ok {
		for _, column := range entities.Columns {
			if _, ok := top[string(column)]; ok {
				return &ImportDocument{Books: raw}, nil
			}
		}
		return nil, fmt.Errorf("%w: missing books", ErrInvalidDocument)
	}

	var doc ImportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if trimmed := bytes.TrimSpace(doc.Books); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: books must be an object", ErrInvalidDocument)
	}
	return &doc, nil
}

type Service struct {
	store    LibraryStore
	settings SettingsStore
	archiver Archiver
	version  string
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Service)

func WithArchiver(archiver Archiver) Option {
	return func(s *Service) {
		s.archiver = archiver
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store LibraryStore, settings SettingsStore, version string, opts ...Option) *Service {
	s := &Service{
		store:    store,
		settings: settings,
		version:  version,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build assembles the export document from the current state.
func (s *Service) Build() Document {
	stats := s.store.GetStats()
	doc := Document{
		Books: s.store.Snapshot(),
		Stats: &stats,
		Metadata: Metadata{
			ExportDate: s.now(),
			Version:    s.version,
			Source:     ExportSource,
		},
	}
	if s.settings != nil {
		settings := s.settings.Get()
		doc.Settings = &settings
	}
	return doc
}

// Export writes the current state to w in the given format.
func (s *Service) Export(w io.Writer, format string) (ExportResult, error) {
	doc := s.Build()
	counter := &countingWriter{w: w}

	var err error
	switch format {
	case "", FormatJSON:
		err = WriteJSON(counter, doc)
	case FormatMarkdown:
		_, err = io.WriteString(counter, GenerateMarkdown(doc.Books, doc.Metadata.ExportDate))
	default:
		return ExportResult{}, fmt.Errorf("%w: unknown export format %q", library.ErrValidation, format)
	}
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to write export: %w", err)
	}

	return ExportResult{
		BooksExported: doc.Books.TotalBooks(),
		BytesWritten:  counter.n,
		ExportedAt:    doc.Metadata.ExportDate,
	}, nil
}

// Import replaces the library, and the settings when the document carries
// them. Settings are validated before anything is applied.
func (s *Service) Import(raw []byte) (*ImportResult, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	if doc.Settings != nil {
		if err := doc.Settings.Validate(); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{}
	if s.archiver != nil {
		path, err := s.archiver.ArchiveImport(raw)
		if err != nil {
			s.logger.Warn("failed to archive import payload", zap.Error(err))
		} else {
			result.ArchivePath = path
		}
	}

	report, err := s.store.Import(doc.Books)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.TotalBooks = s.store.Snapshot().TotalBooks()

	if doc.Settings != nil && s.settings != nil {
		if err := s.settings.Save(*doc.Settings); err != nil {
			return result, fmt.Errorf("library imported but settings were not: %w", err)
		}
		result.SettingsApplied = true
	}

	s.logger.Info("library imported",
		zap.Int("total_books", result.TotalBooks),
		zap.Int("entries_dropped", report.EntriesDropped),
		zap.Bool("settings_applied", result.SettingsApplied))
	return result, nil
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
