package importer

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/locale"
	"github.com/Werneck0live/personal-controller/internal/models"
)

// FreightImporter reads the "-04"/"Planilha" freight exports.
type FreightImporter struct {
	layout FreightLayout
	log    *slog.Logger
}

func NewFreightImporter(l *Layout, log *slog.Logger) *FreightImporter {
	if l == nil {
		l = DefaultLayout()
	}
	return &FreightImporter{layout: l.Freight, log: loggerOr(log).With("kind", KindFreight)}
}

func (imp *FreightImporter) CanImport(path string) bool {
	name := filepath.Base(path)
	return isSheet(name) && (strings.Contains(name, "-04") || strings.Contains(name, "Planilha"))
}

func (imp *FreightImporter) ImportFile(path string) ([]*models.FreightOrder, error) {
	res, err := imp.Import(path)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (imp *FreightImporter) Import(path string) (*Result[*models.FreightOrder], error) {
	source := filepath.Base(path)
	imp.log.Info("freight_import_start", "file", source)

	rows, err := readRows(path, imp.log)
	if err != nil {
		return nil, err
	}
	res := &Result[*models.FreightOrder]{Source: source, Records: []*models.FreightOrder{}}
	for _, r := range rows {
		res.Rows++
		order, reason := imp.parseRow(r, source)
		if order == nil {
			res.skip(r.line, reason)
			continue
		}
		res.Records = append(res.Records, order)
	}

	imp.log.Info("freight_import_done",
		"file", source,
		"rows", res.Rows,
		"imported", len(res.Records),
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)
	return res, nil
}

// parseRow returns nil plus a reason when the row is dropped. An empty
// reason means the row is not a freight line at all (short, no number).
func (imp *FreightImporter) parseRow(r row, source string) (*models.FreightOrder, string) {
	c := imp.layout.Columns
	if len(r.cells) < imp.layout.MinColumns {
		return nil, ""
	}
	numero, _ := cell(r.cells, c.Numero)
	if numero == "" {
		return nil, ""
	}

	emissaoRaw, _ := cell(r.cells, c.Emissao)
	emissao, ok := locale.ParseDate(emissaoRaw)
	if !ok {
		imp.log.Warn("import_row_skipped", "line", r.line, "numero", numero, "reason", "missing emission date")
		return nil, "numero " + numero + ": missing emission date"
	}

	pagador, _ := cell(r.cells, c.Pagador)
	remetente, _ := cell(r.cells, c.Remetente)
	destinatario, _ := cell(r.cells, c.Destinatario)
	if pagador == "" || remetente == "" || destinatario == "" {
		imp.log.Debug("import_row_skipped", "line", r.line, "numero", numero, "reason", "missing party")
		return nil, "numero " + numero + ": missing payer, sender or recipient"
	}
	remetenteCidade, _ := cell(r.cells, c.RemetenteCidade)
	destinatarioCidade, _ := cell(r.cells, c.DestinatarioCidade)

	o := models.NewFreightOrder(numero, emissao, pagador, remetente, remetenteCidade, destinatario, destinatarioCidade)
	o.FonteArquivo = source

	if s, _ := cell(r.cells, c.Agendamento); s != "" {
		if d, ok := locale.ParseDate(s); ok {
			o.DataAgendamento = &d
		}
	}
	if s, _ := cell(r.cells, c.NotasFiscais); s != "" {
		for _, nf := range locale.SplitMultiValue(s) {
			o.AddNotaFiscal(nf)
		}
	}
	if s, ok := cell(r.cells, c.PagadorTelefone); ok {
		o.PagadorTelefone = s
	}

	o.Volumes = imp.integer(r, c.Volumes, "volumes")
	o.Peso = imp.currency(r, c.Peso, "peso")
	o.ValorNotas = imp.currency(r, c.ValorNotas, "valor_notas")
	o.ValorFrete = imp.currency(r, c.ValorFrete, "valor_frete")
	if _, ok := cell(r.cells, c.FreteTabelado); ok {
		v := imp.currency(r, c.FreteTabelado, "frete_tabelado")
		o.FreteTabelado = &v
	}

	o.FilialColeta, _ = cell(r.cells, c.FilialColeta)
	o.MotoristaColeta, _ = cell(r.cells, c.MotoristaColeta)
	o.FilialEntrega, _ = cell(r.cells, c.FilialEntrega)
	o.MotoristaEntrega, _ = cell(r.cells, c.MotoristaEntrega)

	if err := o.Validate(); err != nil {
		imp.log.Warn("import_row_invalid", "line", r.line, "numero", numero, "err", err)
		return nil, "numero " + numero + ": " + strings.TrimPrefix(err.Error(), models.ErrValidation.Error()+": ")
	}
	return o, ""
}

// currency keeps the zero default for unreadable cells but leaves a trace.
func (imp *FreightImporter) currency(r row, idx int, field string) float64 {
	s, _ := cell(r.cells, idx)
	if s == "" {
		return 0
	}
	v, ok := locale.ParseCurrencyStrict(s)
	if !ok {
		imp.log.Debug("numeric_default_zero", "line", r.line, "field", field, "value", s)
	}
	return v
}

func (imp *FreightImporter) integer(r row, idx int, field string) int {
	s, _ := cell(r.cells, idx)
	if s == "" {
		return 0
	}
	v, ok := locale.ParseIntegerStrict(s)
	if !ok {
		imp.log.Debug("numeric_default_zero", "line", r.line, "field", field, "value", s)
	}
	return v
}

var _ Importer[*models.FreightOrder] = (*FreightImporter)(nil)
