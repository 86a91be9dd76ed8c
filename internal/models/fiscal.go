package models

import "time"

const accessKeyLen = 44

// Invoice é a NF-e.
type Invoice struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	Numero           string    `bson:"numero" json:"numero"`
	Serie            string    `bson:"serie,omitempty" json:"serie,omitempty"`
	ChaveAcesso      string    `bson:"chave_acesso,omitempty" json:"chave_acesso,omitempty"`
	DataEmissao      time.Time `bson:"data_emissao" json:"data_emissao"`
	EmitenteID       string    `bson:"emitente_id,omitempty" json:"emitente_id,omitempty"`
	EmitenteNome     string    `bson:"emitente_nome" json:"emitente_nome"`
	DestinatarioID   string    `bson:"destinatario_id,omitempty" json:"destinatario_id,omitempty"`
	DestinatarioNome string    `bson:"destinatario_nome" json:"destinatario_nome"`
	ValorTotal       float64   `bson:"valor_total" json:"valor_total"`
	ValorProdutos    float64   `bson:"valor_produtos" json:"valor_produtos"`
	ValorFrete       *float64  `bson:"valor_frete,omitempty" json:"valor_frete,omitempty"`
	ValorICMS        *float64  `bson:"valor_icms,omitempty" json:"valor_icms,omitempty"`
	NaturezaOperacao string    `bson:"natureza_operacao,omitempty" json:"natureza_operacao,omitempty"`
	CFOP             string    `bson:"cfop,omitempty" json:"cfop,omitempty"`
	XMLPath          string    `bson:"xml_path,omitempty" json:"xml_path,omitempty"`
	PDFPath          string    `bson:"pdf_path,omitempty" json:"pdf_path,omitempty"`

	Audit `bson:",inline"`
}

func (i *Invoice) Collection() string { return CollectionInvoices }
func (i *Invoice) GetID() string      { return i.ID }
func (i *Invoice) SetID(id string)    { i.ID = id }

func (i *Invoice) Validate() error {
	switch {
	case blank(i.Numero):
		return invalid("numero is required")
	case i.ValorTotal < 0:
		return invalid("valor_total must be >= 0")
	case i.ChaveAcesso != "" && len(i.ChaveAcesso) != accessKeyLen:
		return invalid("chave_acesso must have 44 characters")
	}
	return nil
}

// Cte é o conhecimento de transporte eletrônico.
type Cte struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Numero         string    `bson:"numero" json:"numero"`
	Serie          string    `bson:"serie,omitempty" json:"serie,omitempty"`
	ChaveAcesso    string    `bson:"chave_acesso" json:"chave_acesso"`
	DataEmissao    time.Time `bson:"data_emissao" json:"data_emissao"`
	EmitenteID     string    `bson:"emitente_id" json:"emitente_id"`
	RemetenteID    string    `bson:"remetente_id" json:"remetente_id"`
	DestinatarioID string    `bson:"destinatario_id" json:"destinatario_id"`
	ExpedidorID    string    `bson:"expedidor_id,omitempty" json:"expedidor_id,omitempty"`
	RecebedorID    string    `bson:"recebedor_id,omitempty" json:"recebedor_id,omitempty"`
	ValorTotal     float64   `bson:"valor_total" json:"valor_total"`
	ValorReceber   float64   `bson:"valor_receber" json:"valor_receber"`
	Modal          string    `bson:"modal" json:"modal"`
	TipoServico    string    `bson:"tipo_servico" json:"tipo_servico"`
	NotasFiscais   []string  `bson:"notas_fiscais" json:"notas_fiscais"`
	XMLPath        string    `bson:"xml_path,omitempty" json:"xml_path,omitempty"`
	PDFPath        string    `bson:"pdf_path,omitempty" json:"pdf_path,omitempty"`

	Audit `bson:",inline"`
}

func (c *Cte) Collection() string { return CollectionCtes }
func (c *Cte) GetID() string      { return c.ID }
func (c *Cte) SetID(id string)    { c.ID = id }

func (c *Cte) UniqueKey() (string, string) { return "chave_acesso", c.ChaveAcesso }

func (c *Cte) Validate() error {
	switch {
	case blank(c.Numero):
		return invalid("numero is required")
	case len(c.ChaveAcesso) != accessKeyLen:
		return invalid("chave_acesso must have 44 characters")
	case c.ValorTotal < 0 || c.ValorReceber < 0:
		return invalid("values must be >= 0")
	}
	return nil
}
