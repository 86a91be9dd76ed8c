package models

import (
	"fmt"
	"strings"
	"time"
)

type FreightOrder struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	Numero          string     `bson:"numero" json:"numero"`
	DataEmissao     time.Time  `bson:"data_emissao" json:"data_emissao"`
	DataAgendamento *time.Time `bson:"data_agendamento,omitempty" json:"data_agendamento,omitempty"`
	DataEntrega     *time.Time `bson:"data_entrega,omitempty" json:"data_entrega,omitempty"`

	NotasFiscais []string `bson:"notas_fiscais" json:"notas_fiscais"`
	CteNumero    string   `bson:"cte_numero,omitempty" json:"cte_numero,omitempty"`
	CteChave     string   `bson:"cte_chave,omitempty" json:"cte_chave,omitempty"`

	PagadorNome     string `bson:"pagador_nome" json:"pagador_nome"`
	PagadorTelefone string `bson:"pagador_telefone,omitempty" json:"pagador_telefone,omitempty"`

	RemetenteNome      string `bson:"remetente_nome" json:"remetente_nome"`
	RemetenteCidade    string `bson:"remetente_cidade" json:"remetente_cidade"`
	DestinatarioNome   string `bson:"destinatario_nome" json:"destinatario_nome"`
	DestinatarioCidade string `bson:"destinatario_cidade" json:"destinatario_cidade"`

	Volumes       int      `bson:"volumes" json:"volumes"`
	Peso          float64  `bson:"peso" json:"peso"`
	ValorNotas    float64  `bson:"valor_notas" json:"valor_notas"`
	ValorFrete    float64  `bson:"valor_frete" json:"valor_frete"`
	FreteTabelado *float64 `bson:"frete_tabelado,omitempty" json:"frete_tabelado,omitempty"`

	FilialColeta     string `bson:"filial_coleta,omitempty" json:"filial_coleta,omitempty"`
	MotoristaColeta  string `bson:"motorista_coleta,omitempty" json:"motorista_coleta,omitempty"`
	FilialEntrega    string `bson:"filial_entrega,omitempty" json:"filial_entrega,omitempty"`
	MotoristaEntrega string `bson:"motorista_entrega,omitempty" json:"motorista_entrega,omitempty"`

	FormaPagamento string `bson:"forma_pagamento,omitempty" json:"forma_pagamento,omitempty"`
	Status         Status `bson:"status" json:"status"`
	Observacoes    string `bson:"observacoes,omitempty" json:"observacoes,omitempty"`
	FonteArquivo   string `bson:"fonte_arquivo,omitempty" json:"fonte_arquivo,omitempty"`

	Audit `bson:",inline"`
}

// NewFreightOrder fills the mandatory fields; everything else starts zeroed and pending.
func NewFreightOrder(numero string, emissao time.Time, pagador, remetente, remetenteCidade, destinatario, destinatarioCidade string) *FreightOrder {
	return &FreightOrder{
		ID:                 NewID(),
		Numero:             numero,
		DataEmissao:        emissao,
		NotasFiscais:       []string{},
		PagadorNome:        pagador,
		RemetenteNome:      remetente,
		RemetenteCidade:    remetenteCidade,
		DestinatarioNome:   destinatario,
		DestinatarioCidade: destinatarioCidade,
		Status:             StatusPending,
		Audit:              NewAudit(),
	}
}

func (o *FreightOrder) Collection() string { return CollectionFreightOrders }
func (o *FreightOrder) GetID() string      { return o.ID }
func (o *FreightOrder) SetID(id string)    { o.ID = id }

func (o *FreightOrder) UniqueKey() (string, string) { return "numero", o.Numero }

// AddNotaFiscal keeps insertion order and ignores repeated numbers.
func (o *FreightOrder) AddNotaFiscal(nf string) {
	nf = strings.TrimSpace(nf)
	if nf == "" {
		return
	}
	for _, existing := range o.NotasFiscais {
		if existing == nf {
			return
		}
	}
	o.NotasFiscais = append(o.NotasFiscais, nf)
}

func (o *FreightOrder) Validate() error {
	switch {
	case blank(o.Numero):
		return invalid("numero is required")
	case blank(o.PagadorNome):
		return invalid("pagador_nome is required")
	case blank(o.RemetenteNome):
		return invalid("remetente_nome is required")
	case blank(o.DestinatarioNome):
		return invalid("destinatario_nome is required")
	case o.DataEmissao.IsZero():
		return invalid("data_emissao is required")
	case o.Volumes < 0:
		return invalid("volumes must be >= 0")
	case o.Peso < 0:
		return invalid("peso must be >= 0")
	case o.ValorNotas < 0:
		return invalid("valor_notas must be >= 0")
	case o.ValorFrete < 0:
		return invalid("valor_frete must be >= 0")
	case o.FreteTabelado != nil && *o.FreteTabelado < 0:
		return invalid("frete_tabelado must be >= 0")
	}
	if o.Status != "" && !o.Status.Valid() {
		return invalid("unknown status %q", o.Status)
	}
	if o.DataAgendamento != nil && o.DataEntrega != nil && o.DataEntrega.Before(*o.DataAgendamento) {
		return invalid("data_entrega before data_agendamento")
	}
	if o.CteChave != "" && len(o.CteChave) != 44 {
		return invalid("cte_chave must have 44 characters")
	}
	return nil
}

func (o *FreightOrder) EmbeddingText() string {
	return fmt.Sprintf("Ordem %s de %s para %s pagador %s notas %s valor %.2f motorista %s",
		o.Numero,
		o.RemetenteCidade,
		o.DestinatarioCidade,
		o.PagadorNome,
		strings.Join(o.NotasFiscais, ","),
		o.ValorFrete,
		o.MotoristaEntrega,
	)
}

type Manifest struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	Tipo            string     `bson:"tipo" json:"tipo"` // Minuta, CT-e...
	Numero          string     `bson:"numero" json:"numero"`
	DataEmissao     time.Time  `bson:"data_emissao" json:"data_emissao"`
	DataEntrega     *time.Time `bson:"data_entrega,omitempty" json:"data_entrega,omitempty"`
	DataAgendamento *time.Time `bson:"data_agendamento,omitempty" json:"data_agendamento,omitempty"`

	NotasFiscais []string `bson:"notas_fiscais" json:"notas_fiscais"`
	ChaveAcesso  string   `bson:"chave_acesso,omitempty" json:"chave_acesso,omitempty"`

	RemetenteNome      string `bson:"remetente_nome" json:"remetente_nome"`
	DestinatarioNome   string `bson:"destinatario_nome" json:"destinatario_nome"`
	DestinatarioCidade string `bson:"destinatario_cidade" json:"destinatario_cidade"`

	Volumes    int     `bson:"volumes" json:"volumes"`
	Peso       float64 `bson:"peso" json:"peso"`
	ValorNotas float64 `bson:"valor_notas" json:"valor_notas"`
	ValorFrete float64 `bson:"valor_frete" json:"valor_frete"`

	Status      string `bson:"status" json:"status"` // Finalizada, Pendente, Em Atraso
	Observacoes string `bson:"observacoes,omitempty" json:"observacoes,omitempty"`

	Audit `bson:",inline"`
}

func (m *Manifest) Collection() string { return CollectionManifests }
func (m *Manifest) GetID() string      { return m.ID }
func (m *Manifest) SetID(id string)    { m.ID = id }

func (m *Manifest) Validate() error {
	if blank(m.Numero) {
		return invalid("numero is required")
	}
	if m.Volumes < 0 || m.Peso < 0 || m.ValorNotas < 0 || m.ValorFrete < 0 {
		return invalid("cargo values must be >= 0")
	}
	return nil
}

func (m *Manifest) EmbeddingText() string {
	return fmt.Sprintf("Manifesto %s tipo %s de %s para %s notas %s status %s",
		m.Numero, m.Tipo, m.RemetenteNome, m.DestinatarioCidade, strings.Join(m.NotasFiscais, ","), m.Status)
}
