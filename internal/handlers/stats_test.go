package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Werneck0live/personal-controller/internal/models"
)

func TestStats_Endpoints(t *testing.T) {
	h, _, _ := newTestAPI()
	ctx := context.Background()
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	a := models.NewCompany("A", "Franca", "SP", models.CompanyCliente)
	b := models.NewCompany("B", "Franca", "SP", models.CompanyCliente)
	b.Ativo = false
	o1 := models.NewFreightOrder("1", day, "P", "R", "Franca", "D", "Araras")
	o1.ValorFrete, o1.Peso, o1.Volumes = 100.5, 10, 2
	o2 := models.NewFreightOrder("2", day, "P", "R", "Franca", "D", "Araras")
	o2.ValorFrete, o2.Status = 50, models.StatusCompleted
	in, _ := models.NewClockTime(8, 0)
	out, _ := models.NewClockTime(17, 0)
	ts1 := models.NewTimesheet("Maria", "Abril", day, in, out)
	ts2 := models.NewTimesheet("Maria", "Abril", day.AddDate(0, 0, 1), in, out)
	for _, r := range []models.Record{a, b, o1, o2, ts1, ts2} {
		if err := h.Store.Insert(ctx, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	counts := decode[map[string]int64](t, serve(h, http.MethodGet, "/api/v1/stats", nil))
	if counts[models.CollectionCompanies] != 2 || counts[models.CollectionFreightOrders] != 2 || counts[models.CollectionRoutes] != 0 {
		t.Fatalf("contagens inesperadas: %v", counts)
	}

	cs := decode[CompanyStats](t, serve(h, http.MethodGet, "/api/v1/stats/companies", nil))
	if cs.Total != 2 || cs.Ativas != 1 || cs.PorTipo["cliente"] != 2 {
		t.Fatalf("empresas: %+v", cs)
	}

	fs := decode[FreightStats](t, serve(h, http.MethodGet, "/api/v1/stats/freight", nil))
	if fs.Total != 2 || fs.ValorFreteTotal != 150.5 || fs.PorStatus["completed"] != 1 || fs.PorStatus["pending"] != 1 || fs.VolumesTotal != 2 {
		t.Fatalf("frete: %+v", fs)
	}

	tsStats := decode[TimesheetStats](t, serve(h, http.MethodGet, "/api/v1/stats/timesheets", nil))
	if tsStats.Total != 2 || tsStats.Funcionarios != 1 || tsStats.HorasTotal != 18 || tsStats.MediaHoras != 9 {
		t.Fatalf("ponto: %+v", tsStats)
	}

	if rr := serve(h, http.MethodPost, "/api/v1/stats", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("método: %d", rr.Code)
	}
}
