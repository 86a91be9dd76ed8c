package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("EMBEDDING_PROVIDER", "hash")
	t.Setenv("IMPORT_LAYOUT_FILE", "")

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	err := app.Run(append([]string{"pc", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestCommandsShareBadgerStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BADGER_PATH", filepath.Join(dir, "db"))
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("EMBEDDING_PROVIDER", "hash")
	t.Setenv("IMPORT_LAYOUT_FILE", "")

	sheet := filepath.Join(dir, "Rotas.csv")
	require.NoError(t, os.WriteFile(sheet, []byte("RA15;;;;;;;;Franca\n;;;;;;;;Franca;Batatais\n"), 0o600))

	exec := func(args ...string) string {
		app := newApp()
		var out bytes.Buffer
		app.Writer = &out
		require.NoError(t, app.Run(append([]string{"pc", "--log-level", "error"}, args...)))
		return out.String()
	}

	out := exec("import", "--file", sheet)
	assert.Contains(t, out, "2 importados")

	out = exec("stats")
	assert.Regexp(t, `routes\s+2\n`, out)

	out = exec("chat", "rotas", "de", "Franca")
	assert.Contains(t, out, "Fontes: Route(")
}

func TestInitSeedsCompanies(t *testing.T) {
	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "4 criadas")
	assert.Contains(t, out, "1 inválidas")
}

func TestStatsOnEmptyStore(t *testing.T) {
	out, err := run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "companies")
	assert.Contains(t, out, "receita de frete: 0.00")
}

func TestChatAnswers(t *testing.T) {
	out, err := run(t, "chat", "Quantos", "fretes?")
	require.NoError(t, err)
	assert.Contains(t, out, "Personal-Controller-LLM")

	_, err = run(t, "chat")
	assert.Error(t, err)
}

func TestImportFlags(t *testing.T) {
	_, err := run(t, "import")
	assert.ErrorContains(t, err, "--file or --dir")

	_, err = run(t, "import", "--file", "a.csv", "--dir", "x")
	assert.ErrorContains(t, err, "--file or --dir")

	_, err = run(t, "import", "--type", "xml", "--file", "a.csv")
	assert.Error(t, err)

	_, err = run(t, "import", "--dir", t.TempDir()+"/nao-existe")
	assert.Error(t, err)
}
