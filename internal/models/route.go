package models

import (
	"fmt"
	"strings"
)

type Route struct {
	ID      string   `bson:"_id,omitempty" json:"id"`
	Nome    string   `bson:"nome" json:"nome"`
	Regiao  string   `bson:"regiao" json:"regiao"`
	Cidades []string `bson:"cidades" json:"cidades"`

	DistanciaKm        *float64 `bson:"distancia_km,omitempty" json:"distancia_km,omitempty"`
	TempoEstimadoHoras *float64 `bson:"tempo_estimado_horas,omitempty" json:"tempo_estimado_horas,omitempty"`
	Pedagios           *int     `bson:"pedagios,omitempty" json:"pedagios,omitempty"`
	CustoPedagio       *float64 `bson:"custo_pedagio,omitempty" json:"custo_pedagio,omitempty"`

	Ativo       bool   `bson:"ativo" json:"ativo"`
	Observacoes string `bson:"observacoes,omitempty" json:"observacoes,omitempty"`

	Audit `bson:",inline"`
}

func NewRoute(nome, regiao string) *Route {
	return &Route{
		ID:      NewID(),
		Nome:    nome,
		Regiao:  regiao,
		Cidades: []string{},
		Ativo:   true,
		Audit:   NewAudit(),
	}
}

// AddCidade appends a city unless it is already on the route.
func (r *Route) AddCidade(cidade string) {
	cidade = strings.TrimSpace(cidade)
	if cidade == "" {
		return
	}
	for _, c := range r.Cidades {
		if c == cidade {
			return
		}
	}
	r.Cidades = append(r.Cidades, cidade)
}

func (r *Route) Collection() string { return CollectionRoutes }
func (r *Route) GetID() string      { return r.ID }
func (r *Route) SetID(id string)    { r.ID = id }

func (r *Route) Validate() error {
	if blank(r.Nome) {
		return invalid("nome is required")
	}
	if r.DistanciaKm != nil && *r.DistanciaKm < 0 {
		return invalid("distancia_km must be >= 0")
	}
	if r.TempoEstimadoHoras != nil && *r.TempoEstimadoHoras < 0 {
		return invalid("tempo_estimado_horas must be >= 0")
	}
	if r.Pedagios != nil && *r.Pedagios < 0 {
		return invalid("pedagios must be >= 0")
	}
	if r.CustoPedagio != nil && *r.CustoPedagio < 0 {
		return invalid("custo_pedagio must be >= 0")
	}
	return nil
}

func (r *Route) EmbeddingText() string {
	return fmt.Sprintf("Rota %s regiao %s cidades %s", r.Nome, r.Regiao, strings.Join(r.Cidades, ", "))
}
