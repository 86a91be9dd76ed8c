package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/embedding"
	"github.com/Werneck0live/personal-controller/internal/importer"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/rag"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

type pubMock struct {
	mu     sync.Mutex
	events []broker.Event
	err    error
}

func (p *pubMock) PublishEvent(_ context.Context, e broker.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *pubMock) Close() error { return nil }

func freightLine(numero string) string {
	return numero + ";05/04/2025;01/04/2025;1001;Pagador SA;16 3333-4444;Rem Ltda;Franca;Dest ME;Araras"
}

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return p
}

func newService(t *testing.T, opts ...Option) (*Service, repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore(embedding.DefaultDimension)
	ix := rag.NewIndexer(store, embedding.NewGenerator(embedding.DefaultModel, embedding.DefaultDimension), nil)
	return NewService(store, ix, opts...), store
}

func TestImportFileStoresIndexesAndPublishes(t *testing.T) {
	pub := &pubMock{}
	svc, store := newService(t, WithPublisher(pub))
	ctx := context.Background()

	path := writeFile(t, t.TempDir(), "Planilha-04.csv",
		"Numero;Agendamento;Emissao",
		freightLine("288415"),
		freightLine("288416"),
		"x;y",
	)

	sum, err := svc.ImportFile(ctx, importer.KindAuto, path)
	require.NoError(t, err)
	assert.Equal(t, importer.KindFreight, sum.Kind)
	assert.Equal(t, models.CollectionFreightOrders, sum.Collection)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 1, sum.Skipped)
	assert.Positive(t, sum.Indexed)

	n, err := store.Count(ctx, models.CollectionFreightOrders)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	matches, err := store.Search(ctx, embedding.NewGenerator("", embedding.DefaultDimension).Vector("pagador sa"), 5)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	require.Len(t, pub.events, 1)
	assert.Equal(t, broker.TypeImport, pub.events[0].Type)
	assert.Equal(t, 2, pub.events[0].Count)

	// reimportar conta duplicados em vez de falhar
	again, err := svc.ImportFile(ctx, importer.KindFreight, path)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 2, again.Duplicates)
}

func TestImportFilePublishErrorIsNotFatal(t *testing.T) {
	svc, _ := newService(t, WithPublisher(&pubMock{err: errors.New("down")}))
	path := writeFile(t, t.TempDir(), "Horas.csv",
		"Funcionario;Mes;Data;Entrada;Saida",
		"Maria;Abril;01/04/2025;08:00;17:00",
	)
	sum, err := svc.ImportFile(context.Background(), importer.KindAuto, path)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, models.CollectionTimesheets, sum.Collection)
}

func TestImportFileUndetectable(t *testing.T) {
	svc, _ := newService(t)
	path := writeFile(t, t.TempDir(), "notas.txt", "x")
	_, err := svc.ImportFile(context.Background(), importer.KindAuto, path)
	assert.ErrorIs(t, err, importer.ErrImport)
}

func TestImportFileWithoutIndexer(t *testing.T) {
	store := repository.NewMemoryStore(embedding.DefaultDimension)
	svc := NewService(store, nil)
	path := writeFile(t, t.TempDir(), "Rotas.csv",
		"Ribeirao;Franca",
		"Franca;Batatais",
	)
	sum, err := svc.ImportFile(context.Background(), importer.KindRoute, path)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Indexed)

	matches, err := store.Search(context.Background(), make([]float32, embedding.DefaultDimension), 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestBatchImportsDirectory(t *testing.T) {
	svc, store := newService(t, WithWorkers(2))
	dir := t.TempDir()
	writeFile(t, dir, "Planilha-04-a.csv", "h", freightLine("1"), freightLine("2"))
	writeFile(t, dir, "Planilha-04-b.csv", "h", freightLine("3"), freightLine("1"))
	writeFile(t, dir, "Horas.csv", "h", "Maria;Abril;01/04/2025;08:00;17:00")
	writeFile(t, dir, "leia-me.txt", "nada")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	out, err := svc.Batch(context.Background(), importer.KindAuto, dir)
	require.NoError(t, err)
	assert.Len(t, out.Files, 3)
	require.Len(t, out.Failed, 1)
	assert.Contains(t, out.Failed[0].Path, "leia-me.txt")
	assert.Equal(t, 5, out.Imported+out.Duplicates)
	assert.Equal(t, 1, out.Duplicates)

	n, err := store.Count(context.Background(), models.CollectionFreightOrders)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestBatchMissingDir(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Batch(context.Background(), importer.KindAuto, filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, importer.ErrImport)
}
