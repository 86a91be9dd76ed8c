package importer

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/locale"
	"github.com/Werneck0live/personal-controller/internal/models"
)

// TimesheetImporter reads the "Horas" clock-in/clock-out exports.
type TimesheetImporter struct {
	layout TimesheetLayout
	log    *slog.Logger
}

func NewTimesheetImporter(l *Layout, log *slog.Logger) *TimesheetImporter {
	if l == nil {
		l = DefaultLayout()
	}
	return &TimesheetImporter{layout: l.Timesheet, log: loggerOr(log).With("kind", KindTimesheet)}
}

func (imp *TimesheetImporter) CanImport(path string) bool {
	name := filepath.Base(path)
	return isSheet(name) && strings.Contains(name, "Horas")
}

func (imp *TimesheetImporter) ImportFile(path string) ([]*models.Timesheet, error) {
	res, err := imp.Import(path)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func (imp *TimesheetImporter) Import(path string) (*Result[*models.Timesheet], error) {
	source := filepath.Base(path)
	imp.log.Info("timesheet_import_start", "file", source)

	rows, err := readRows(path, imp.log)
	if err != nil {
		return nil, err
	}
	c := imp.layout.Columns
	res := &Result[*models.Timesheet]{Source: source, Records: []*models.Timesheet{}}
	for _, r := range rows {
		res.Rows++
		if len(r.cells) < imp.layout.MinColumns {
			res.skip(r.line, "")
			continue
		}
		funcionario, _ := cell(r.cells, c.Funcionario)
		if funcionario == "" {
			res.skip(r.line, "")
			continue
		}
		mes, _ := cell(r.cells, c.Mes)
		dataRaw, _ := cell(r.cells, c.Data)
		entradaRaw, _ := cell(r.cells, c.Entrada)
		saidaRaw, _ := cell(r.cells, c.Saida)

		// data, entrada e saída precisam ser válidas ao mesmo tempo
		data, okData := locale.ParseDate(dataRaw)
		entrada, okIn := locale.ParseClock(entradaRaw)
		saida, okOut := locale.ParseClock(saidaRaw)
		if !okData || !okIn || !okOut {
			imp.log.Debug("import_row_skipped", "line", r.line, "funcionario", funcionario,
				"data", dataRaw, "entrada", entradaRaw, "saida", saidaRaw)
			res.skip(r.line, funcionario+": invalid date or clock time")
			continue
		}

		ts := models.NewTimesheet(funcionario, mes, data, entrada, saida)
		ts.FonteArquivo = source
		res.Records = append(res.Records, ts)
	}

	imp.log.Info("timesheet_import_done",
		"file", source,
		"rows", res.Rows,
		"imported", len(res.Records),
		"skipped", res.Skipped,
	)
	return res, nil
}

var _ Importer[*models.Timesheet] = (*TimesheetImporter)(nil)
