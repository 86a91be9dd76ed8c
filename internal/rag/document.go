package rag

import (
	"fmt"
	"strings"
	"time"

	"github.com/Werneck0live/personal-controller/internal/models"
)

type SourceKind string

const (
	SourceFreightOrder SourceKind = "FreightOrder"
	SourceCompany      SourceKind = "Company"
	SourceTimesheet    SourceKind = "Timesheet"
	SourceRoute        SourceKind = "Route"
	SourceOther        SourceKind = "Other"
)

// Source points back to the record a Document was built from.
type Source struct {
	Kind SourceKind `json:"kind"`
	Ref  string     `json:"ref"`
}

// Label is the form cited to the user, e.g. FreightOrder(288415).
func (s Source) Label() string { return fmt.Sprintf("%s(%s)", s.Kind, s.Ref) }

type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    string    `json:"author,omitempty"`
	Tags      []string  `json:"tags"`
}

// Document is the prompt-ready projection of a record. It lives only
// for one retrieval.
type Document struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Score    float32   `json:"score"`
	Source   Source    `json:"source"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

func meta(a models.Audit, tags ...string) *Metadata {
	return &Metadata{CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, Author: a.CreatedBy, Tags: tags}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// FromRecord formats any indexable record. ok is false for types that
// have no document form.
func FromRecord(rec models.Record, score float32) (Document, bool) {
	switch r := rec.(type) {
	case *models.FreightOrder:
		return fromFreightOrder(r, score), true
	case *models.Company:
		return fromCompany(r, score), true
	case *models.Timesheet:
		return fromTimesheet(r, score), true
	case *models.Route:
		return fromRoute(r, score), true
	case *models.Manifest:
		return fromManifest(r, score), true
	case *models.FileDocument:
		return fromFile(r, score), true
	}
	return Document{}, false
}

func fromFreightOrder(o *models.FreightOrder, score float32) Document {
	return Document{
		ID:    o.ID,
		Title: "Ordem de Frete " + o.Numero,
		Content: fmt.Sprintf("Ordem de Frete #%s\nNúmero: %s\nRemetente: %s - %s\nDestinatário: %s - %s\nValor do frete: R$ %.2f\nStatus: %s",
			o.ID, o.Numero,
			o.RemetenteNome, o.RemetenteCidade,
			o.DestinatarioNome, o.DestinatarioCidade,
			o.ValorFrete, o.Status.Label()),
		Score:    score,
		Source:   Source{Kind: SourceFreightOrder, Ref: o.Numero},
		Metadata: meta(o.Audit, "freight", "order"),
	}
}

func fromCompany(c *models.Company, score float32) Document {
	return Document{
		ID:    c.ID,
		Title: c.Nome,
		Content: fmt.Sprintf("Empresa: %s\nTipo: %s\nCNPJ: %s\nCidade: %s - %s\nTelefone: %s\nEmail: %s",
			c.Nome, c.Tipo.Label(), orNA(c.CNPJ), c.Cidade, c.Estado, orNA(c.Telefone), orNA(c.Email)),
		Score:    score,
		Source:   Source{Kind: SourceCompany, Ref: c.Nome},
		Metadata: meta(c.Audit, "company", strings.ToLower(string(c.Tipo))),
	}
}

func fromTimesheet(t *models.Timesheet, score float32) Document {
	day := t.Data.Format("2006-01-02")
	return Document{
		ID:    t.ID,
		Title: "Ponto " + t.Funcionario + " " + day,
		Content: fmt.Sprintf("Registro de Ponto\nFuncionário: %s\nData: %s\nEntrada: %s\nSaída: %s\nHoras trabalhadas: %.2f",
			t.Funcionario, day, t.Entrada, t.Saida, t.TotalHours()),
		Score:    score,
		Source:   Source{Kind: SourceTimesheet, Ref: t.Funcionario + "-" + day},
		Metadata: meta(t.Audit, "timesheet", "hours"),
	}
}

func fromRoute(r *models.Route, score float32) Document {
	return Document{
		ID:       r.ID,
		Title:    r.Nome,
		Content:  fmt.Sprintf("Rota: %s\nRegião: %s\nCidades: %s", r.Nome, r.Regiao, strings.Join(r.Cidades, ", ")),
		Score:    score,
		Source:   Source{Kind: SourceRoute, Ref: r.Nome},
		Metadata: meta(r.Audit, "route", "region"),
	}
}

func fromManifest(m *models.Manifest, score float32) Document {
	return Document{
		ID:    m.ID,
		Title: m.Tipo + " " + m.Numero,
		Content: fmt.Sprintf("Manifesto %s\nTipo: %s\nRemetente: %s\nDestinatário: %s - %s\nNotas: %s\nStatus: %s",
			m.Numero, m.Tipo, m.RemetenteNome, m.DestinatarioNome, m.DestinatarioCidade,
			strings.Join(m.NotasFiscais, ", "), m.Status),
		Score:    score,
		Source:   Source{Kind: SourceOther, Ref: "manifesto " + m.Numero},
		Metadata: meta(m.Audit, "manifest"),
	}
}

func fromFile(d *models.FileDocument, score float32) Document {
	return Document{
		ID:       d.ID,
		Title:    d.Title,
		Content:  d.Content,
		Score:    score,
		Source:   Source{Kind: SourceOther, Ref: d.Title},
		Metadata: meta(d.Audit, "document", strings.ToLower(d.DocumentType)),
	}
}
