package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/domain"
	domprov "github.com/cityhealth/directory/internal/domain/provider"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Repository is the consumer interface for provider persistence (ISP).
type Repository interface {
	Get(ctx context.Context, id string) (domprov.Provider, error)
	Save(ctx context.Context, p *domprov.Provider) error
}

// Options control how rows are written.
type Options struct {
	// Verify marks every imported provider as verified.
	Verify bool
	// DryRun validates rows without writing them.
	DryRun bool
}

// RowError reports a rejected row.
type RowError struct {
	Source int
	ID     string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Source, e.ID, e.Err)
}

// Report summarizes an import run.
type Report struct {
	Total    int
	Imported int
	Rejected []RowError
}

// Importer upserts providers read from import files.
type Importer struct {
	repo   Repository
	newID  func() string
	now    func() time.Time
	logger *zap.Logger
}

// New creates an importer.
func New(repo Repository, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{repo: repo, newID: uuid.NewString, now: time.Now, logger: logger}
}

// ReadFile parses path by extension (.yaml, .yml or .xlsx).
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Import writes rows one by one. Invalid rows are reported and skipped;
// a store failure stops the run and is returned with the partial report.
func (im *Importer) Import(ctx context.Context, rows []Row, opts Options) (Report, error) {
	rep := Report{Total: len(rows)}
	for i := range rows {
		p := rows[i].provider()
		if p.ID == "" {
			p.ID = im.newID()
		}
		if opts.Verify {
			p.Verified = true
		}

		if err := im.merge(ctx, &p); err != nil {
			return rep, err
		}
		if err := p.Validate(); err != nil {
			rep.Rejected = append(rep.Rejected, RowError{Source: rows[i].Source, ID: p.ID, Err: err})
			continue
		}
		if opts.DryRun {
			rep.Imported++
			continue
		}

		if err := im.repo.Save(ctx, &p); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				rep.Rejected = append(rep.Rejected, RowError{Source: rows[i].Source, ID: p.ID, Err: err})
				continue
			}
			return rep, fmt.Errorf("import row %d: %w", rows[i].Source, err)
		}
		rep.Imported++
		im.logger.Debug("Provider imported", zap.String("provider_id", p.ID), zap.Int("row", rows[i].Source))
	}

	im.logger.Info("Import finished",
		zap.Int("total", rep.Total),
		zap.Int("imported", rep.Imported),
		zap.Int("rejected", len(rep.Rejected)),
	)
	return rep, nil
}

// merge keeps the creation time and view counter of an existing record.
func (im *Importer) merge(ctx context.Context, p *domprov.Provider) error {
	now := im.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	existing, err := im.repo.Get(ctx, p.ID)
	switch {
	case err == nil:
		p.CreatedAt = existing.CreatedAt
		p.Views = existing.Views
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("look up provider %s: %w", p.ID, err)
	}
}
