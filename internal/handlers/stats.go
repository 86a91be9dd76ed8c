package handlers

import (
	"context"
	"net/http"

	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

type CompanyStats struct {
	Total   int            `json:"total"`
	Ativas  int            `json:"ativas"`
	PorTipo map[string]int `json:"por_tipo"`
}

type FreightStats struct {
	Total           int            `json:"total"`
	PorStatus       map[string]int `json:"por_status"`
	ValorFreteTotal float64        `json:"valor_frete_total"`
	ValorNotasTotal float64        `json:"valor_notas_total"`
	PesoTotal       float64        `json:"peso_total"`
	VolumesTotal    int            `json:"volumes_total"`
}

type TimesheetStats struct {
	Total        int     `json:"total"`
	Funcionarios int     `json:"funcionarios"`
	HorasTotal   float64 `json:"horas_total"`
	MediaHoras   float64 `json:"media_horas"`
}

func ComputeCompanyStats(list []models.Company) CompanyStats {
	st := CompanyStats{Total: len(list), PorTipo: map[string]int{}}
	for _, c := range list {
		if c.Ativo {
			st.Ativas++
		}
		st.PorTipo[string(c.Tipo)]++
	}
	return st
}

func ComputeFreightStats(list []models.FreightOrder) FreightStats {
	st := FreightStats{Total: len(list), PorStatus: map[string]int{}}
	for _, o := range list {
		st.PorStatus[string(o.Status)]++
		st.ValorFreteTotal += o.ValorFrete
		st.ValorNotasTotal += o.ValorNotas
		st.PesoTotal += o.Peso
		st.VolumesTotal += o.Volumes
	}
	return st
}

func ComputeTimesheetStats(list []models.Timesheet) TimesheetStats {
	st := TimesheetStats{Total: len(list)}
	people := map[string]bool{}
	for _, t := range list {
		people[t.Funcionario] = true
		st.HorasTotal += t.TotalHours()
	}
	st.Funcionarios = len(people)
	if st.Total > 0 {
		st.MediaHoras = st.HorasTotal / float64(st.Total)
	}
	return st
}

// Stats conta os registros de cada coleção.
func (h *API) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	counts, err := repository.Stats(ctx, h.Store)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	out := make(map[string]int64, len(counts)+1)
	for k, v := range counts {
		out[k] = v
	}
	if h.Sessions != nil {
		out["chat_sessions"] = int64(h.Sessions.Len())
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (h *API) CompanyStats(w http.ResponseWriter, r *http.Request) {
	collectionStats(h, w, r, models.CollectionCompanies, ComputeCompanyStats)
}

func (h *API) FreightStats(w http.ResponseWriter, r *http.Request) {
	collectionStats(h, w, r, models.CollectionFreightOrders, ComputeFreightStats)
}

func (h *API) TimesheetStats(w http.ResponseWriter, r *http.Request) {
	collectionStats(h, w, r, models.CollectionTimesheets, ComputeTimesheetStats)
}

func collectionStats[T, S any](h *API, w http.ResponseWriter, r *http.Request, coll string, compute func([]T) S) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	list, err := repository.ListAll[T](ctx, h.Store, coll)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, compute(list))
}
