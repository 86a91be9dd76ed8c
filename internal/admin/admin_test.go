package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/embedding"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/rag"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

type pubMock struct{ events []broker.Event }

func (p *pubMock) PublishEvent(_ context.Context, e broker.Event) error {
	p.events = append(p.events, e)
	return nil
}
func (p *pubMock) Close() error { return nil }

func TestSeedCompaniesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(embedding.DefaultDimension)

	first, err := SeedCompanies(ctx, store, nil)
	require.NoError(t, err)
	assert.Len(t, first.Created, 4)
	assert.Equal(t, 1, first.Invalid)

	second, err := SeedCompanies(ctx, store, nil)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 4, second.Existed)

	n, err := store.Count(ctx, models.CollectionCompanies)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	list, err := repository.ListAll[models.Company](ctx, store, models.CollectionCompanies)
	require.NoError(t, err)
	for _, c := range list {
		assert.Len(t, c.CNPJ, 14)
		assert.Equal(t, "seed", c.CreatedBy)
	}
}

func TestInitIndexesAndReindexPublishes(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(embedding.DefaultDimension)
	gen := embedding.NewGenerator(embedding.DefaultModel, embedding.DefaultDimension)
	ix := rag.NewIndexer(store, gen, nil)

	res, err := Init(ctx, store, ix, nil)
	require.NoError(t, err)
	require.Len(t, res.Created, 4)

	docs, err := rag.NewSystem(store, gen, nil).RetrieveContext(ctx, "Ávila Transportes Franca", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, rag.SourceCompany, docs[0].Source.Kind)

	pub := &pubMock{}
	n, err := Reindex(ctx, ix, pub, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, pub.events, 1)
	assert.Equal(t, broker.TypeIndex, pub.events[0].Type)
	assert.Equal(t, 4, pub.events[0].Count)
}
