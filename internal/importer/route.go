package importer

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/models"
)

// RouteImporter reads the "Rotas" sheet. The sheet has no schema: every
// filled cell is a city and its column decides the region.
type RouteImporter struct {
	layout RouteLayout
	log    *slog.Logger
}

func NewRouteImporter(l *Layout, log *slog.Logger) *RouteImporter {
	if l == nil {
		l = DefaultLayout()
	}
	return &RouteImporter{layout: l.Route, log: loggerOr(log).With("kind", KindRoute)}
}

func (imp *RouteImporter) CanImport(path string) bool {
	name := filepath.Base(path)
	return isSheet(name) && strings.Contains(name, "Rotas")
}

func (imp *RouteImporter) ImportFile(path string) ([]*models.Route, error) {
	res, err := imp.Import(path)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Import yields one route per city cell, named "{region} - {city}".
func (imp *RouteImporter) Import(path string) (*Result[*models.Route], error) {
	source := filepath.Base(path)
	imp.log.Info("route_import_start", "file", source)

	rows, err := readRows(path, imp.log)
	if err != nil {
		return nil, err
	}
	res := &Result[*models.Route]{Source: source, Records: []*models.Route{}}
	for _, r := range rows {
		res.Rows++
		for col, raw := range r.cells {
			cidade := strings.TrimSpace(raw)
			if cidade == "" {
				continue
			}
			if strings.HasPrefix(cidade, "�") {
				res.skip(r.line, "undecodable city cell")
				continue
			}
			regiao := imp.layout.RegionFor(col)
			route := models.NewRoute(regiao+" - "+cidade, regiao)
			route.AddCidade(cidade)
			res.Records = append(res.Records, route)
		}
	}

	imp.log.Info("route_import_done", "file", source, "rows", res.Rows, "routes", len(res.Records))
	return res, nil
}

// MergeByRegion folds single-city routes into one route per region,
// keeping region order of first appearance and city insertion order.
func MergeByRegion(routes []*models.Route) []*models.Route {
	byRegion := make(map[string]*models.Route)
	var out []*models.Route
	for _, r := range routes {
		m, ok := byRegion[r.Regiao]
		if !ok {
			m = models.NewRoute(r.Regiao, r.Regiao)
			byRegion[r.Regiao] = m
			out = append(out, m)
		}
		for _, c := range r.Cidades {
			m.AddCidade(c)
		}
	}
	return out
}

var _ Importer[*models.Route] = (*RouteImporter)(nil)
