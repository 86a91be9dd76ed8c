package importer

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// writeCSV grava as linhas em Windows-1252, como o sistema de origem exporta.
func writeCSV(t *testing.T, name string, lines ...string) string {
	t.Helper()
	enc, err := charmap.Windows1252.NewEncoder().String(strings.Join(lines, "\n") + "\n")
	require.NoError(t, err)
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(enc), 0o600))
	return p
}

type freightCells struct {
	numero, emissao, pagador, remetente, destinatario, peso string
	width                                                   int
}

func (f freightCells) line() string {
	cells := make([]string, f.width)
	set := func(i int, v string) {
		if i < len(cells) {
			cells[i] = v
		}
	}
	set(0, f.numero)
	set(1, "05/04/2025")
	set(2, f.emissao)
	set(3, "1001, 1002, 1001")
	set(4, f.pagador)
	set(5, "16 3333-4444")
	set(6, f.remetente)
	set(7, "Ribeirão Preto")
	set(8, f.destinatario)
	set(9, "São Carlos")
	set(10, "12")
	set(11, f.peso)
	set(12, "R$ 10.500,00")
	set(13, "R$ 1.234,56")
	set(14, "1.100,00")
	set(26, "RP")
	set(27, "João")
	set(28, "SC")
	set(29, "José")
	return strings.Join(cells, ";")
}

func okRow(numero string) freightCells {
	return freightCells{numero: numero, emissao: "01/04/2025", pagador: "Pagador SA", remetente: "Rem Ltda", destinatario: "Dest ME", peso: "350,5", width: 30}
}

func TestFreightImport(t *testing.T) {
	short := okRow("3")
	short.width = 5
	noNumber := okRow("")
	noEmissao := okRow("5")
	noEmissao.emissao = ""
	noPayer := okRow("6")
	noPayer.pagador = " "
	badPeso := okRow("7")
	badPeso.peso = "abc"
	minimal := okRow("8")
	minimal.width = 10

	path := writeCSV(t, "Relatorio-04-2025.csv",
		"Numero;Agendamento;Emissao;NF;Pagador",
		okRow("288415").line(),
		short.line(),
		noNumber.line(),
		noEmissao.line(),
		noPayer.line(),
		badPeso.line(),
		minimal.line(),
	)

	imp := NewFreightImporter(nil, nil)
	res, err := imp.Import(path)
	require.NoError(t, err)

	assert.Equal(t, 7, res.Rows)
	assert.Equal(t, 4, res.Skipped)
	assert.Len(t, res.Errors, 2, "linhas curtas ou sem número são descartadas sem erro")
	require.Len(t, res.Records, 3)

	o := res.Records[0]
	assert.Equal(t, "288415", o.Numero)
	assert.Equal(t, "Ribeirão Preto", o.RemetenteCidade)
	assert.Equal(t, "São Carlos", o.DestinatarioCidade)
	assert.Equal(t, []string{"1001", "1002"}, o.NotasFiscais)
	assert.Equal(t, "16 3333-4444", o.PagadorTelefone)
	assert.Equal(t, 12, o.Volumes)
	assert.InDelta(t, 350.5, o.Peso, 1e-9)
	assert.InDelta(t, 10500.0, o.ValorNotas, 1e-9)
	assert.InDelta(t, 1234.56, o.ValorFrete, 1e-9)
	require.NotNil(t, o.FreteTabelado)
	assert.InDelta(t, 1100.0, *o.FreteTabelado, 1e-9)
	require.NotNil(t, o.DataAgendamento)
	assert.Equal(t, "João", o.MotoristaColeta)
	assert.Equal(t, "José", o.MotoristaEntrega)
	assert.Equal(t, "Relatorio-04-2025.csv", o.FonteArquivo)

	assert.Equal(t, "7", res.Records[1].Numero)
	assert.Zero(t, res.Records[1].Peso, "peso ilegível vira zero")

	m := res.Records[2]
	assert.Nil(t, m.FreteTabelado)
	assert.Zero(t, m.Volumes)
	assert.Empty(t, m.MotoristaEntrega)
}

func TestFreightImportNegativeValueIsRowError(t *testing.T) {
	neg := okRow("9")
	neg.peso = "-3"
	path := writeCSV(t, "Planilha.csv", "h", neg.line())

	res, err := NewFreightImporter(nil, nil).Import(path)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Reason, "peso")
	assert.Equal(t, 2, res.Errors[0].Line)
}

func TestFreightImportMissingFile(t *testing.T) {
	_, err := NewFreightImporter(nil, nil).ImportFile(filepath.Join(t.TempDir(), "nope-04.csv"))
	assert.ErrorIs(t, err, ErrImport)
}

func TestFreightCanImport(t *testing.T) {
	imp := NewFreightImporter(nil, nil)
	assert.True(t, imp.CanImport("/tmp/Relatorio-04-2025.csv"))
	assert.True(t, imp.CanImport("Planilha Fretes.csv"))
	assert.True(t, imp.CanImport("Planilha.xlsx"))
	assert.False(t, imp.CanImport("Planilha.txt"))
	assert.False(t, imp.CanImport("Horas.csv"))
}

func TestTimesheetImport(t *testing.T) {
	path := writeCSV(t, "Horas Abril.csv",
		"Funcionario;Mes;Data;Entrada;Saida",
		"Maria;Abril;01/04/2025;08:00;17:00",
		"Jão;Abril;02/04/2025;22:00;6:00",
		"Pedro;Abril;31/04/2025;08:00;17:00",
		"Ana;Abril;03/04/2025;08:00;",
		";Abril;03/04/2025;08:00;17:00",
		"Curto;Abril",
	)

	imp := NewTimesheetImporter(nil, nil)
	assert.True(t, imp.CanImport(path))

	res, err := imp.Import(path)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 6, res.Rows)
	assert.Equal(t, 4, res.Skipped)
	assert.Len(t, res.Errors, 2)

	assert.Equal(t, "Maria", res.Records[0].Funcionario)
	assert.Equal(t, 540, res.Records[0].TotalMinutos)
	assert.InDelta(t, 9.0, res.Records[0].TotalHours(), 1e-9)

	assert.Equal(t, "Jão", res.Records[1].Funcionario)
	assert.Equal(t, 480, res.Records[1].TotalMinutos)
	assert.Equal(t, "06:00", res.Records[1].Saida.String())
	assert.Equal(t, "Horas Abril.csv", res.Records[1].FonteArquivo)
}

func TestTimesheetImportXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Funcionario", "Mes", "Data", "Entrada", "Saida"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Maria", "Abril", "01/04/2025", "08:00", "17:00"}))
	path := filepath.Join(t.TempDir(), "Horas.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := NewTimesheetImporter(nil, nil).ImportFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 540, got[0].TotalMinutos)
}

func TestRouteImport(t *testing.T) {
	cells := make([]string, 26)
	cells[0] = "Cravinhos"
	cells[8] = "Franca"
	cells[9] = "Batatais"
	cells[16] = "Araraquara"
	cells[24] = "Leme"
	path := writeCSV(t, "Rotas 2025.csv",
		"RA15;;;;;;;;Franca",
		strings.Join(cells, ";"),
	)

	imp := NewRouteImporter(nil, nil)
	assert.True(t, imp.CanImport(path))
	routes, err := imp.ImportFile(path)
	require.NoError(t, err)
	require.Len(t, routes, 5)

	byName := map[string]int{}
	for i, r := range routes {
		byName[r.Nome] = i
	}
	i, ok := byName["Franca - Franca"]
	require.True(t, ok, "rota Franca - Franca ausente")
	assert.Equal(t, "Franca", routes[i].Regiao)
	assert.Equal(t, []string{"Franca"}, routes[i].Cidades)

	assert.Contains(t, byName, "Ribeirão Preto (RA15) - Cravinhos")
	assert.Contains(t, byName, "Central (RA14 - Araraquara) - Araraquara")
	assert.Contains(t, byName, "Araras - Leme")

	merged := MergeByRegion(routes)
	require.Len(t, merged, 4)
	assert.Equal(t, "Franca", merged[1].Regiao)
	assert.Equal(t, []string{"Franca", "Batatais"}, merged[1].Cidades)

	t.Run("celula ilegivel", func(t *testing.T) {
		// 0x81 não existe no Windows-1252 e vira U+FFFD na decodificação
		p := filepath.Join(t.TempDir(), "Rotas.csv")
		raw := []byte("RA15;;;;;;;;Franca\n\x81Cidade;;;;;;;;Franca\n")
		require.NoError(t, os.WriteFile(p, raw, 0o600))

		var logs bytes.Buffer
		imp := NewRouteImporter(nil, slog.New(slog.NewTextHandler(&logs, nil)))
		res, err := imp.Import(p)
		require.NoError(t, err)

		require.Len(t, res.Records, 1)
		assert.Equal(t, "Franca - Franca", res.Records[0].Nome)
		assert.Equal(t, 1, res.Skipped)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, 2, res.Errors[0].Line)
		assert.Equal(t, "undecodable city cell", res.Errors[0].Reason)
		assert.Contains(t, logs.String(), "level=WARN")
		assert.Contains(t, logs.String(), "import_replacement_chars")
	})
}

func TestDetect(t *testing.T) {
	cases := map[string]Kind{
		"Horas Abril.csv":       KindTimesheet,
		"Ponto.csv":             KindTimesheet,
		"Rotas.csv":             KindRoute,
		"Relatorio-04-2025.csv": KindFreight,
		"Planilha.csv":          KindFreight,
		"entrega.JPG":           KindPhoto,
		"cte_1.pdf":             KindPDF,
	}
	for name, want := range cases {
		got, err := Detect(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := Detect("qualquer.csv")
	assert.ErrorIs(t, err, ErrImport)

	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindAuto, k)
	_, err = ParseKind("xml")
	assert.ErrorIs(t, err, ErrImport)
}

func TestLayoutOverride(t *testing.T) {
	src := strings.Replace(string(defaultLayoutYAML), "peso: 11", "peso: 12", 1)
	src = strings.Replace(src, "valor_notas: 12", "valor_notas: 11", 1)
	l, err := ParseLayout([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 12, l.Freight.Columns.Peso)

	path := writeCSV(t, "Planilha.csv", "h", okRow("1").line())
	got, err := NewFreightImporter(l, nil).ImportFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 10500.0, got[0].Peso, 1e-9)
	assert.InDelta(t, 350.5, got[0].ValorNotas, 1e-9)

	_, err = ParseLayout([]byte(strings.Replace(string(defaultLayoutYAML), "version: 1", "version: 2", 1)))
	assert.Error(t, err)
	_, err = ParseLayout([]byte(strings.Replace(string(defaultLayoutYAML), "numero: 0", "numero: 40", 1)))
	assert.Error(t, err)

	def, err := LoadLayout("")
	require.NoError(t, err)
	assert.Equal(t, "Franca", def.Route.RegionFor(15))
	assert.Equal(t, "Araras", def.Route.RegionFor(24))
}

func TestPhotoImportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entrega_2025-04-10.jpg"), []byte("jpegdata"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "canhoto.PNG"), []byte("png"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notas.txt"), []byte("x"), 0o600))

	res, err := NewPhotoImporter(nil).Import(dir)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	// ordenado por nome: canhoto.PNG vem antes
	assert.Nil(t, res.Records[0].CapturedAt)
	p := res.Records[1]
	assert.Equal(t, DocTypePhoto, p.DocumentType)
	assert.EqualValues(t, 8, p.FileSize)
	require.NotNil(t, p.CapturedAt)
	assert.Equal(t, "2025-04-10", p.CapturedAt.Format("2006-01-02"))
	assert.Contains(t, p.Content, "Size: 8 bytes")

	_, ok := CaptureDate("foto_2025-02-30.jpg")
	assert.False(t, ok)
}

func TestPDFImportUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cte_288415.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	docs, err := NewPDFImporter(nil).ImportFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "CT-e", docs[0].DocumentType)
	assert.Nil(t, docs[0].PageCount)
	assert.Contains(t, docs[0].Content, "Pages: unknown")

	_, err = NewPDFImporter(nil).Import(filepath.Join(t.TempDir(), "x.txt"))
	assert.ErrorIs(t, err, ErrImport)
}

func TestDocumentType(t *testing.T) {
	cases := map[string]string{
		"CTE_1.pdf":          "CT-e",
		"nf-e 22.pdf":        "NF-e",
		"minuta.pdf":         "Minuta",
		"Comprovante.pdf":    "Comprovante",
		"pre_embarque.pdf":   "Pre-Embarque",
		"fatura_abril.pdf":   "Fatura",
		"monthly_report.pdf": "Relatorio",
		"outro.pdf":          "PDF",
	}
	for name, want := range cases {
		assert.Equal(t, want, DocumentType(name), name)
	}
}
