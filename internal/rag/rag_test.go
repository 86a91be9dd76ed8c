package rag

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/personal-controller/internal/embedding"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

func freight() *models.FreightOrder {
	o := models.NewFreightOrder("288415", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		"Pagador SA", "Rem Ltda", "Ribeirão Preto", "Dest ME", "Araras")
	o.ValorFrete = 1234.56
	return o
}

func TestBuildPrompt(t *testing.T) {
	docs := []Document{{Content: "Rota: Franca - Franca", Score: 0.5}}
	got := BuildPrompt("Quais rotas?", docs)
	want := "Você é a Personal-Controller-LLM, uma IA especializada da Ávila Transportes.\n\n" +
		"# Contexto Relevante\n\n" +
		"Documento 1 (relevância: 50.00%):\nRota: Franca - Franca\n\n" +
		"# Pergunta do Usuário\nQuais rotas?\n\n" +
		"# Instruções\n" +
		"- Responda em português claro e objetivo\n" +
		"- Use os documentos fornecidos como contexto\n" +
		"- Se não tiver certeza, diga que não sabe\n" +
		"- Cite as fontes quando relevante\n\n" +
		"Resposta:"
	assert.Equal(t, want, got)

	noCtx := BuildPrompt("Oi", nil)
	assert.NotContains(t, noCtx, "# Contexto Relevante")
	assert.Contains(t, noCtx, "# Pergunta do Usuário\nOi\n\n")
}

func TestBuildSimplePrompt(t *testing.T) {
	assert.Equal(t,
		"Você é a Personal-Controller-LLM da Ávila Transportes.\n\nPergunta: Olá\n\nResposta:",
		BuildSimplePrompt("Olá"))
}

func TestChunkText(t *testing.T) {
	chunks, err := ChunkText("one two three four five six seven eight nine ten", 3, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"one two three",
		"three four five",
		"five six seven",
		"seven eight nine",
		"nine ten",
	}, chunks)

	chunks, err = ChunkText("a b", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b"}, chunks)

	chunks, err = ChunkText("   ", 5, 1)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	for _, p := range [][2]int{{3, 3}, {3, 4}, {0, 0}, {3, -1}} {
		_, err := ChunkText("x y z", p[0], p[1])
		assert.ErrorIs(t, err, ErrInvalidChunking, "%v", p)
	}
}

func TestFromRecord(t *testing.T) {
	d, ok := FromRecord(freight(), 0.9)
	require.True(t, ok)
	assert.Contains(t, d.Content, "Número: 288415")
	assert.Contains(t, d.Content, "Remetente: Rem Ltda - Ribeirão Preto")
	assert.Contains(t, d.Content, "Valor do frete: R$ 1234.56")
	assert.Contains(t, d.Content, "Status: Pendente")
	assert.Equal(t, "FreightOrder(288415)", d.Source.Label())
	assert.Equal(t, []string{"freight", "order"}, d.Metadata.Tags)

	c := models.NewCompany("Ávila", "Franca", "SP", models.CompanyTransportadora)
	d, ok = FromRecord(c, 0.1)
	require.True(t, ok)
	assert.Contains(t, d.Content, "Tipo: Transportadora")
	assert.Contains(t, d.Content, "Telefone: N/A")
	assert.Contains(t, d.Content, "Email: N/A")
	assert.Equal(t, []string{"company", "transportadora"}, d.Metadata.Tags)

	in, _ := models.NewClockTime(8, 0)
	out, _ := models.NewClockTime(17, 30)
	ts := models.NewTimesheet("Maria", "Abril", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), in, out)
	d, ok = FromRecord(ts, 0)
	require.True(t, ok)
	assert.Contains(t, d.Content, "Entrada: 08:00\nSaída: 17:30\nHoras trabalhadas: 9.50")
	assert.Equal(t, "Timesheet(Maria-2025-04-01)", d.Source.Label())

	_, ok = FromRecord(&models.Contact{Nome: "x"}, 0)
	assert.False(t, ok)
}

func newStack(t *testing.T) (*repository.MemoryStore, *System, *Indexer) {
	t.Helper()
	gen := embedding.NewGenerator("", 0)
	store := repository.NewMemoryStore(gen.Dimension())
	return store, NewSystem(store, gen, nil), NewIndexer(store, gen, nil)
}

func TestRetrieveContextEmptyIndex(t *testing.T) {
	_, sys, _ := newStack(t)
	docs, err := sys.RetrieveContext(context.Background(), "qualquer coisa", 5)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestRetrieveContextRanksRecords(t *testing.T) {
	ctx := context.Background()
	store, sys, ix := newStack(t)

	route := models.NewRoute("Franca - Franca", "Franca")
	route.AddCidade("Franca")
	recs := []models.Embeddable{
		freight(),
		models.NewCompany("Ávila Transportes", "Ribeirão Preto", "SP", models.CompanyTransportadora),
		route,
	}
	for _, r := range recs {
		require.NoError(t, store.Insert(ctx, r))
		n, err := ix.IndexRecord(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	docs, err := sys.RetrieveContext(ctx, "Franca", 2)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.LessOrEqual(t, len(docs), 2)
	assert.Equal(t, SourceRoute, docs[0].Source.Kind)
	for i := 1; i < len(docs); i++ {
		assert.GreaterOrEqual(t, docs[i-1].Score, docs[i].Score)
	}
	assert.Equal(t, "Route(Franca - Franca)", Sources(docs)[0])
}

func TestRetrieveContextSkipsStaleEntries(t *testing.T) {
	ctx := context.Background()
	store, sys, _ := newStack(t)
	gen := embedding.NewGenerator("", 0)

	err := store.Index(ctx, repository.IndexEntry{
		ID: "ghost#0", Collection: models.CollectionRoutes, RecordID: "ghost",
		Vector: gen.Vector("franca"),
	})
	require.NoError(t, err)

	docs, err := sys.RetrieveContext(ctx, "franca", 3)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReindex(t *testing.T) {
	ctx := context.Background()
	store, sys, ix := newStack(t)

	require.NoError(t, store.Insert(ctx, freight()))
	route := models.NewRoute("Araras - Leme", "Araras")
	route.AddCidade("Leme")
	require.NoError(t, store.Insert(ctx, route))
	require.NoError(t, store.Insert(ctx, &models.Contact{Nome: "Sem índice"}))

	n, err := ix.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs, err := sys.RetrieveContext(ctx, "leme", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, route.ID, docs[0].ID)
}

func TestIndexerChunking(t *testing.T) {
	_, _, ix := newStack(t)
	_, err := ix.WithChunking(10, 10)
	assert.ErrorIs(t, err, ErrInvalidChunking)

	small, err := ix.WithChunking(3, 1)
	require.NoError(t, err)
	route := models.NewRoute("Rota longa", "Franca")
	for _, c := range []string{"A", "B", "C", "D", "E"} {
		route.AddCidade(c)
	}
	n, err := small.IndexRecord(context.Background(), route)
	require.NoError(t, err)
	assert.Greater(t, n, 1)
}

func TestIndexRecordDropsOldChunks(t *testing.T) {
	ctx := context.Background()
	store, _, ix := newStack(t)
	small, err := ix.WithChunking(3, 1)
	require.NoError(t, err)

	route := models.NewRoute("Rota longa", "Franca")
	for _, c := range []string{"Batatais", "Cravinhos", "Delfinópolis", "Estreito", "Ituverava"} {
		route.AddCidade(c)
	}
	before, err := small.IndexRecord(ctx, route)
	require.NoError(t, err)
	require.Greater(t, before, 2)

	route.Cidades = []string{"Batatais"}
	after, err := small.IndexRecord(ctx, route)
	require.NoError(t, err)
	require.Less(t, after, before)

	gen := embedding.NewGenerator("", 0)
	got, err := store.Search(ctx, gen.Vector("ituverava"), 10)
	require.NoError(t, err)
	for _, m := range got {
		assert.NotEqual(t, entryID(route.Collection(), route.ID, before-1), m.ID)
	}
}
