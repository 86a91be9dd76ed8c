package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/chat"
	"github.com/Werneck0live/personal-controller/internal/importer"
	"github.com/Werneck0live/personal-controller/internal/ingest"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

type storeMock struct {
	InsertFn  func(ctx context.Context, rec models.Record) error
	GetFn     func(ctx context.Context, collection, id string, dst any) error
	ListFn    func(ctx context.Context, collection string, limit, skip int64, dst any) error
	ReplaceFn func(ctx context.Context, rec models.Record) error
	DeleteFn  func(ctx context.Context, collection, id string) error
	CountFn   func(ctx context.Context, collection string) (int64, error)
}

func (m *storeMock) Insert(ctx context.Context, rec models.Record) error {
	if m.InsertFn == nil {
		return errors.New("InsertFn not set")
	}
	return m.InsertFn(ctx, rec)
}
func (m *storeMock) Get(ctx context.Context, collection, id string, dst any) error {
	if m.GetFn == nil {
		return errors.New("GetFn not set")
	}
	return m.GetFn(ctx, collection, id, dst)
}
func (m *storeMock) List(ctx context.Context, collection string, limit, skip int64, dst any) error {
	if m.ListFn == nil {
		return errors.New("ListFn not set")
	}
	return m.ListFn(ctx, collection, limit, skip, dst)
}
func (m *storeMock) Replace(ctx context.Context, rec models.Record) error {
	if m.ReplaceFn == nil {
		return errors.New("ReplaceFn not set")
	}
	return m.ReplaceFn(ctx, rec)
}
func (m *storeMock) Delete(ctx context.Context, collection, id string) error {
	if m.DeleteFn == nil {
		return errors.New("DeleteFn not set")
	}
	return m.DeleteFn(ctx, collection, id)
}
func (m *storeMock) Count(ctx context.Context, collection string) (int64, error) {
	if m.CountFn == nil {
		return 0, errors.New("CountFn not set")
	}
	return m.CountFn(ctx, collection)
}
func (m *storeMock) Index(context.Context, repository.IndexEntry) error { return nil }
func (m *storeMock) Unindex(context.Context, string, string) error      { return nil }
func (m *storeMock) Search(context.Context, []float32, int) ([]repository.Match, error) {
	return []repository.Match{}, nil
}
func (m *storeMock) Close(context.Context) error { return nil }

type pubMock struct {
	mu        sync.Mutex
	events    []broker.Event
	PublishFn func(ctx context.Context, e broker.Event) error
}

func (p *pubMock) PublishEvent(ctx context.Context, e broker.Event) error {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
	if p.PublishFn == nil {
		return nil
	}
	return p.PublishFn(ctx, e)
}
func (p *pubMock) Close() error { return nil }

func (p *pubMock) Events() []broker.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broker.Event(nil), p.events...)
}

type ingestMock struct {
	ImportFileFn func(ctx context.Context, kind importer.Kind, path string) (*ingest.Summary, error)
}

func (m *ingestMock) ImportFile(ctx context.Context, kind importer.Kind, path string) (*ingest.Summary, error) {
	if m.ImportFileFn == nil {
		return nil, errors.New("ImportFileFn not set")
	}
	return m.ImportFileFn(ctx, kind, path)
}

type indexerMock struct {
	mu      sync.Mutex
	indexed []string
}

func (m *indexerMock) IndexRecord(_ context.Context, rec models.Embeddable) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed = append(m.indexed, rec.Collection()+"/"+rec.GetID())
	return 1, nil
}

var _ Chatter = (*chat.Assistant)(nil)
