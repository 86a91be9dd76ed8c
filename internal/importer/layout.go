package importer

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LayoutVersion is the only layout schema this package understands.
const LayoutVersion = 1

//go:embed layouts/default.yaml
var defaultLayoutYAML []byte

// Layout maps spreadsheet columns to record fields. Export format drift is
// handled by shipping a new layout file, not by changing the importers.
type Layout struct {
	Version   int             `yaml:"version"`
	Freight   FreightLayout   `yaml:"freight"`
	Timesheet TimesheetLayout `yaml:"timesheet"`
	Route     RouteLayout     `yaml:"route"`
}

type FreightLayout struct {
	MinColumns int            `yaml:"min_columns"`
	Columns    FreightColumns `yaml:"columns"`
}

type FreightColumns struct {
	Numero             int `yaml:"numero"`
	Agendamento        int `yaml:"agendamento"`
	Emissao            int `yaml:"emissao"`
	NotasFiscais       int `yaml:"notas_fiscais"`
	Pagador            int `yaml:"pagador"`
	PagadorTelefone    int `yaml:"pagador_telefone"`
	Remetente          int `yaml:"remetente"`
	RemetenteCidade    int `yaml:"remetente_cidade"`
	Destinatario       int `yaml:"destinatario"`
	DestinatarioCidade int `yaml:"destinatario_cidade"`
	Volumes            int `yaml:"volumes"`
	Peso               int `yaml:"peso"`
	ValorNotas         int `yaml:"valor_notas"`
	ValorFrete         int `yaml:"valor_frete"`
	FreteTabelado      int `yaml:"frete_tabelado"`
	FilialColeta       int `yaml:"filial_coleta"`
	MotoristaColeta    int `yaml:"motorista_coleta"`
	FilialEntrega      int `yaml:"filial_entrega"`
	MotoristaEntrega   int `yaml:"motorista_entrega"`
}

type TimesheetLayout struct {
	MinColumns int              `yaml:"min_columns"`
	Columns    TimesheetColumns `yaml:"columns"`
}

type TimesheetColumns struct {
	Funcionario int `yaml:"funcionario"`
	Mes         int `yaml:"mes"`
	Data        int `yaml:"data"`
	Entrada     int `yaml:"entrada"`
	Saida       int `yaml:"saida"`
}

type Region struct {
	Label string `yaml:"label"`
	From  int    `yaml:"from"`
	To    int    `yaml:"to"`
}

type RouteLayout struct {
	Regions       []Region `yaml:"regions"`
	DefaultRegion string   `yaml:"default_region"`
}

// RegionFor returns the region label of a column index.
func (r RouteLayout) RegionFor(col int) string {
	for _, reg := range r.Regions {
		if col >= reg.From && col <= reg.To {
			return reg.Label
		}
	}
	return r.DefaultRegion
}

// DefaultLayout returns the embedded layout.
func DefaultLayout() *Layout {
	l, err := ParseLayout(defaultLayoutYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded layout: %v", err))
	}
	return l
}

// LoadLayout reads a layout file; an empty path means the embedded one.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(b)
}

func ParseLayout(b []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Layout) validate() error {
	if l.Version != LayoutVersion {
		return fmt.Errorf("layout version %d not supported (want %d)", l.Version, LayoutVersion)
	}
	fc := l.Freight.Columns
	// colunas obrigatórias precisam caber no tamanho mínimo da linha
	for name, idx := range map[string]int{
		"numero":       fc.Numero,
		"emissao":      fc.Emissao,
		"pagador":      fc.Pagador,
		"remetente":    fc.Remetente,
		"destinatario": fc.Destinatario,
	} {
		if idx < 0 || idx >= l.Freight.MinColumns {
			return fmt.Errorf("freight column %s=%d outside min_columns %d", name, idx, l.Freight.MinColumns)
		}
	}
	tc := l.Timesheet.Columns
	for name, idx := range map[string]int{
		"funcionario": tc.Funcionario,
		"data":        tc.Data,
		"entrada":     tc.Entrada,
		"saida":       tc.Saida,
	} {
		if idx < 0 || idx >= l.Timesheet.MinColumns {
			return fmt.Errorf("timesheet column %s=%d outside min_columns %d", name, idx, l.Timesheet.MinColumns)
		}
	}
	if l.Route.DefaultRegion == "" {
		return fmt.Errorf("route default_region is required")
	}
	for _, r := range l.Route.Regions {
		if r.Label == "" || r.From < 0 || r.To < r.From {
			return fmt.Errorf("invalid route region %+v", r)
		}
	}
	return nil
}
