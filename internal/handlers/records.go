package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

type record[T any] interface {
	*T
	models.Record
	AuditInfo() models.Audit
	KeepCreation(models.Audit)
}

// resource serves list/create on /api/v1/{path} and get/put/delete (and
// patch when set) on /api/v1/{path}/{id}.
type resource[T any, PT record[T]] struct {
	path       string
	collection string
	// decode lê o corpo de POST/PUT; o default decodifica o próprio model.
	decode func(io.Reader) (PT, error)
	label  func(PT) string
	patch  func(h *API, w http.ResponseWriter, r *http.Request, current PT) (PT, bool)
}

func decodeModel[T any, PT record[T]](body io.Reader) (PT, error) {
	rec := PT(new(T))
	if err := utils.DecodeStrict(body, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (rs *resource[T, PT]) mount(h *API, mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/"+rs.path, func(w http.ResponseWriter, r *http.Request) { rs.collectionHandler(h, w, r) })
	mux.HandleFunc("/api/v1/"+rs.path+"/", func(w http.ResponseWriter, r *http.Request) { rs.itemHandler(h, w, r) })
}

func (rs *resource[T, PT]) read(body io.Reader) (PT, error) {
	if rs.decode != nil {
		return rs.decode(body)
	}
	return decodeModel[T, PT](body)
}

func (rs *resource[T, PT]) name(rec PT) string {
	if rs.label != nil {
		if l := rs.label(rec); l != "" {
			return l
		}
	}
	return rec.GetID()
}

func (rs *resource[T, PT]) collectionHandler(h *API, w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		page, perPage := pageParams(r)
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		total, err := h.Store.Count(ctx, rs.collection)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		p := models.NewPagination(page, perPage, total)
		items := []T{}
		if err := h.Store.List(ctx, rs.collection, int64(p.PerPage), p.Offset(), &items); err != nil {
			writeStoreErr(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, models.PaginatedResponse[T]{Data: items, Pagination: p})

	case http.MethodPost:
		rec, err := rs.read(r.Body)
		if err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		rec.SetID("")

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		if err := h.Store.Insert(ctx, rec); err != nil {
			writeStoreErr(w, err)
			return
		}
		h.index(ctx, rec)
		h.publishEvent(broker.RecordEvent(broker.ActionCreated, rs.collection, rec.GetID(), rs.name(rec)))
		utils.WriteJSON(w, http.StatusCreated, rec)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (rs *resource[T, PT]) itemHandler(h *API, w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDFromPath(r.URL.Path, rs.path)
	if !ok {
		notFound(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		rec := PT(new(T))
		if err := h.Store.Get(ctx, rs.collection, id, rec); err != nil {
			writeStoreErr(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, rec)

	case http.MethodPut:
		rec, err := rs.read(r.Body)
		if err != nil {
			utils.BadRequest(w, utils.FormatUnknownFieldError(err))
			return
		}
		current := PT(new(T))
		if err := h.Store.Get(ctx, rs.collection, id, current); err != nil {
			writeStoreErr(w, err)
			return
		}
		// PUT = replace: mesmo _id, criação preservada
		rec.SetID(id)
		rec.KeepCreation(current.AuditInfo())
		rs.replace(ctx, h, w, rec)

	case http.MethodPatch:
		if rs.patch == nil {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		current := PT(new(T))
		if err := h.Store.Get(ctx, rs.collection, id, current); err != nil {
			writeStoreErr(w, err)
			return
		}
		rec, ok := rs.patch(h, w, r, current)
		if !ok {
			return
		}
		rs.replace(ctx, h, w, rec)

	case http.MethodDelete:
		// busca antes para ter o nome no evento
		current := PT(new(T))
		if err := h.Store.Get(ctx, rs.collection, id, current); err != nil {
			writeStoreErr(w, err)
			return
		}
		if err := h.Store.Delete(ctx, rs.collection, id); err != nil {
			writeStoreErr(w, err)
			return
		}
		h.publishEvent(broker.RecordEvent(broker.ActionDeleted, rs.collection, id, rs.name(current)))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (rs *resource[T, PT]) replace(ctx context.Context, h *API, w http.ResponseWriter, rec PT) {
	if err := h.Store.Replace(ctx, rec); err != nil {
		writeStoreErr(w, err)
		return
	}
	h.index(ctx, rec)
	h.publishEvent(broker.RecordEvent(broker.ActionUpdated, rs.collection, rec.GetID(), rs.name(rec)))
	utils.WriteJSON(w, http.StatusOK, rec)
}

func companies() *resource[models.Company, *models.Company] {
	return &resource[models.Company, *models.Company]{
		path:       "companies",
		collection: models.CollectionCompanies,
		decode:     decodeCompany,
		label: func(c *models.Company) string {
			if c.NomeFantasia != "" {
				return c.NomeFantasia
			}
			return c.Nome
		},
	}
}

func freightOrders() *resource[models.FreightOrder, *models.FreightOrder] {
	return &resource[models.FreightOrder, *models.FreightOrder]{
		path:       "freight-orders",
		collection: models.CollectionFreightOrders,
		decode: func(body io.Reader) (*models.FreightOrder, error) {
			o, err := decodeModel[models.FreightOrder](body)
			if err != nil {
				return nil, err
			}
			if o.Status == "" {
				o.Status = models.StatusPending
			}
			if o.NotasFiscais == nil {
				o.NotasFiscais = []string{}
			}
			return o, nil
		},
		label: func(o *models.FreightOrder) string { return o.Numero },
		patch: patchFreightOrder,
	}
}

func timesheets() *resource[models.Timesheet, *models.Timesheet] {
	return &resource[models.Timesheet, *models.Timesheet]{
		path:       "timesheets",
		collection: models.CollectionTimesheets,
		decode: func(body io.Reader) (*models.Timesheet, error) {
			t, err := decodeModel[models.Timesheet](body)
			if err != nil {
				return nil, err
			}
			// total sempre derivado de entrada/saída
			t.SetClock(t.Entrada, t.Saida)
			return t, nil
		},
		label: func(t *models.Timesheet) string { return t.Funcionario },
	}
}

func routes() *resource[models.Route, *models.Route] {
	return &resource[models.Route, *models.Route]{
		path:       "routes",
		collection: models.CollectionRoutes,
		label:      func(r *models.Route) string { return r.Nome },
	}
}
