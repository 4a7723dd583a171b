// Package session owns the catalog of one user session and serializes the
// upload, view, recalculation and export operations on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pricecompare/internal/catalog"
)

var (
	ErrNoFiles = errors.New("no files selected")
	// ErrStaleGeneration rejects a recalculation issued against a catalog that
	// a newer upload has replaced.
	ErrStaleGeneration = errors.New("catalog was replaced by a newer upload")
)

// Decoder turns raw file content into the first sheet of the file.
type Decoder interface {
	Decode(name string, data []byte) (catalog.RawSheet, error)
}

// File is one uploaded file.
type File struct {
	Name string
	Data []byte
}

type Options struct {
	Reconcile catalog.Reconcile
}

// Session holds the authoritative catalog. All methods are safe for
// concurrent use; operations run one at a time.
type Session struct {
	mu       sync.Mutex
	decoder  Decoder
	logger   *slog.Logger
	opts     Options
	catalog  catalog.Catalog
	summary  *catalog.Summary
	selected map[string]struct{}
	gen      string
}

func New(decoder Decoder, logger *slog.Logger, opts Options) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Reconcile == "" {
		opts.Reconcile = catalog.ReconcileFirst
	}
	return &Session{
		decoder:  decoder,
		logger:   logger,
		opts:     opts,
		selected: make(map[string]struct{}),
	}
}

// Load decodes and normalizes files one by one and stops at the first file
// that fails. It does not touch any session.
func Load(ctx context.Context, decoder Decoder, files []File) (catalog.Catalog, catalog.Summary, error) {
	if len(files) == 0 {
		return nil, catalog.Summary{}, ErrNoFiles
	}
	batches := make([]catalog.Batch, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, catalog.Summary{}, err
		}
		records, err := loadFile(decoder, file)
		if err != nil {
			return nil, catalog.Summary{}, &catalog.DecodeError{File: file.Name, Err: err}
		}
		batches = append(batches, catalog.Batch{Source: catalog.SourceName(file.Name), Records: records})
	}
	merged, summary := catalog.Merge(batches, len(files))
	return merged, summary, nil
}

func loadFile(decoder Decoder, file File) ([]catalog.ProductRecord, error) {
	raw, err := decoder.Decode(file.Name, file.Data)
	if err != nil {
		return nil, err
	}
	return catalog.Normalize(raw, catalog.SourceName(file.Name))
}

// Upload replaces the catalog with the records of files. When any file fails
// the previous catalog, summary and selection are kept.
func (s *Session) Upload(ctx context.Context, files []File) (catalog.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, summary, err := Load(ctx, s.decoder, files)
	if err != nil {
		s.logger.Warn("upload rejected", slog.Int("files", len(files)), slog.Any("error", err))
		return catalog.Summary{}, err
	}
	s.catalog = merged
	s.summary = &summary
	s.selected = make(map[string]struct{})
	s.gen = uuid.NewString()
	s.logger.Info("catalog loaded",
		slog.String("generation", s.gen),
		slog.Int("files", summary.FilesProcessed),
		slog.Int("products", summary.Total),
		slog.Int("categories", len(summary.Categories)),
	)
	return summary, nil
}

// Loaded reports whether an upload has succeeded.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary != nil
}

// Summary returns the summary of the current batch; ok is false before the
// first successful upload.
func (s *Session) Summary() (catalog.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return catalog.Summary{}, false
	}
	return *s.summary, true
}

// Generation identifies the current batch. It changes on every successful upload.
func (s *Session) Generation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Catalog returns a copy of the authoritative catalog.
func (s *Session) Catalog() catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Clone()
}

func (s *Session) withDefaults(f catalog.Filters) catalog.Filters {
	if f.Reconcile == "" {
		f.Reconcile = s.opts.Reconcile
	}
	return f
}

// View derives the comparison entries for f.
func (s *Session) View(f catalog.Filters) []catalog.ComparisonEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.DeriveView(s.catalog, s.withDefaults(f))
}

// Records returns the filtered records before grouping.
func (s *Session) Records(f catalog.Filters) []catalog.ProductRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.Filter(s.catalog, f)
}

// RecalcRequest is a markup request against the session. The selected
// scope uses Codes when it is non-nil and the session selection otherwise;
// Codes never change the session selection. An empty Generation skips the
// staleness check.
type RecalcRequest struct {
	Percentage     float64
	Scope          catalog.Scope
	ActiveCategory string
	Generation     string
	Codes          []string
}

// Recalculate updates suggested prices and returns how many records changed.
// Callers re-derive their view afterwards.
func (s *Session) Recalculate(req RecalcRequest) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Generation != "" && req.Generation != s.gen {
		return 0, ErrStaleGeneration
	}
	var selected map[string]struct{}
	if req.Codes != nil {
		selected = make(map[string]struct{}, len(req.Codes))
		for _, code := range req.Codes {
			selected[code] = struct{}{}
		}
	} else {
		selected = make(map[string]struct{}, len(s.selected))
		for code := range s.selected {
			selected[code] = struct{}{}
		}
	}
	updated, changed, err := catalog.Recalculate(s.catalog, catalog.RecalcRequest{
		Percentage:     req.Percentage,
		Scope:          req.Scope,
		SelectedCodes:  selected,
		ActiveCategory: req.ActiveCategory,
	})
	if err != nil {
		return 0, fmt.Errorf("recalculate: %w", err)
	}
	s.catalog = updated
	s.logger.Info("suggested prices updated",
		slog.String("generation", s.gen),
		slog.String("scope", string(req.Scope)),
		slog.Float64("percentage", req.Percentage),
		slog.Int("changed", changed),
	)
	return changed, nil
}

// Export builds the export grid for the view described by f.
func (s *Session) Export(f catalog.Filters) (catalog.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var summary catalog.Summary
	if s.summary != nil {
		summary = *s.summary
	}
	return catalog.Export(catalog.DeriveView(s.catalog, s.withDefaults(f)), summary)
}

// Toggle flips the selection of code and reports whether it is now selected.
func (s *Session) Toggle(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[code]; ok {
		delete(s.selected, code)
		return false
	}
	s.selected[code] = struct{}{}
	return true
}

// SelectAll replaces the selection with codes.
func (s *Session) SelectAll(codes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{}, len(codes))
	for _, code := range codes {
		s.selected[code] = struct{}{}
	}
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]struct{})
}

// Selected returns the selected codes in sorted order.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selected))
	for code := range s.selected {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (s *Session) IsSelected(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[code]
	return ok
}
