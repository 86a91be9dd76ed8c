// Package ingest runs an importer over a file, stores the records, indexes
// them for retrieval and announces the import.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/importer"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

// Indexer is satisfied by *rag.Indexer.
type Indexer interface {
	IndexRecord(ctx context.Context, rec models.Embeddable) (int, error)
}

var collections = map[importer.Kind]string{
	importer.KindFreight:   models.CollectionFreightOrders,
	importer.KindTimesheet: models.CollectionTimesheets,
	importer.KindRoute:     models.CollectionRoutes,
	importer.KindPhoto:     models.CollectionDocuments,
	importer.KindPDF:       models.CollectionDocuments,
}

// Summary is the outcome of one file.
type Summary struct {
	Source     string              `json:"source"`
	Kind       importer.Kind       `json:"kind"`
	Collection string              `json:"collection"`
	Rows       int                 `json:"rows"`
	Imported   int                 `json:"imported"`
	Duplicates int                 `json:"duplicates"`
	Skipped    int                 `json:"skipped"`
	Indexed    int                 `json:"indexed"`
	Errors     []importer.RowError `json:"errors,omitempty"`
	Took       time.Duration       `json:"-"`
}

type Service struct {
	store   repository.Store
	indexer Indexer
	pub     broker.EventPublisher
	layout  *importer.Layout
	workers int
	log     *slog.Logger
}

type Option func(*Service)

func WithPublisher(p broker.EventPublisher) Option {
	return func(s *Service) { s.pub = p }
}

func WithLayout(l *importer.Layout) Option {
	return func(s *Service) {
		if l != nil {
			s.layout = l
		}
	}
}

// WithWorkers bounds Batch concurrency; values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = max(n, 1) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService needs a store. indexer may be nil to skip embeddings.
func NewService(store repository.Store, indexer Indexer, opts ...Option) *Service {
	s := &Service{
		store:   store,
		indexer: indexer,
		layout:  importer.DefaultLayout(),
		workers: 4,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("cmp", "ingest")
	return s
}

// ImportFile imports one file (or, for photo and pdf, a directory of
// them). Duplicates and invalid records are counted, not fatal.
func (s *Service) ImportFile(ctx context.Context, kind importer.Kind, path string) (*Summary, error) {
	start := time.Now()
	if kind == "" || kind == importer.KindAuto {
		k, err := importer.Detect(path)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	var (
		sum *Summary
		err error
	)
	switch kind {
	case importer.KindFreight:
		sum, err = run[*models.FreightOrder](ctx, s, kind, path, importer.NewFreightImporter(s.layout, s.log))
	case importer.KindTimesheet:
		sum, err = run[*models.Timesheet](ctx, s, kind, path, importer.NewTimesheetImporter(s.layout, s.log))
	case importer.KindRoute:
		sum, err = run[*models.Route](ctx, s, kind, path, importer.NewRouteImporter(s.layout, s.log))
	case importer.KindPhoto:
		sum, err = run[*models.FileDocument](ctx, s, kind, path, importer.NewPhotoImporter(s.log))
	case importer.KindPDF:
		sum, err = run[*models.FileDocument](ctx, s, kind, path, importer.NewPDFImporter(s.log))
	default:
		return nil, fmt.Errorf("%w: unsupported kind %q", importer.ErrImport, kind)
	}
	if err != nil {
		return nil, err
	}
	sum.Took = time.Since(start)

	s.log.Info("import_done",
		"source", sum.Source,
		"kind", sum.Kind,
		"imported", sum.Imported,
		"duplicates", sum.Duplicates,
		"skipped", sum.Skipped,
		"indexed", sum.Indexed,
		"duration_ms", sum.Took.Milliseconds(),
	)
	s.publish(ctx, broker.ImportEvent(sum.Collection, sum.Source, sum.Imported))
	return sum, nil
}

func run[T models.Embeddable](ctx context.Context, s *Service, kind importer.Kind, path string, imp importer.Importer[T]) (*Summary, error) {
	res, err := imp.Import(path)
	if err != nil {
		return nil, err
	}
	sum := &Summary{
		Source:     res.Source,
		Kind:       kind,
		Collection: collections[kind],
		Rows:       res.Rows,
		Skipped:    res.Skipped,
		Errors:     res.Errors,
	}
	for _, rec := range res.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.store.Insert(ctx, rec); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				sum.Duplicates++
				s.log.Debug("import_duplicate", "collection", rec.Collection(), "id", rec.GetID())
			case errors.Is(err, models.ErrValidation):
				sum.Skipped++
				sum.Errors = append(sum.Errors, importer.RowError{Reason: err.Error()})
			default:
				return nil, fmt.Errorf("insert %s: %w", rec.Collection(), err)
			}
			continue
		}
		sum.Imported++

		if s.indexer == nil {
			continue
		}
		n, err := s.indexer.IndexRecord(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("index %s/%s: %w", rec.Collection(), rec.GetID(), err)
		}
		sum.Indexed += n
	}
	return sum, nil
}

func (s *Service) publish(ctx context.Context, e broker.Event) {
	if s.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.pub.PublishEvent(ctx, e); err != nil {
		s.log.Warn("publish_event_error", "type", e.Type, "err", err)
	}
}
