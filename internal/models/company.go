package models

import (
	"fmt"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/utils"
)

type CompanyType string

const (
	CompanyCliente        CompanyType = "cliente"
	CompanyFornecedor     CompanyType = "fornecedor"
	CompanyParceiro       CompanyType = "parceiro"
	CompanyTransportadora CompanyType = "transportadora"
	CompanyOutros         CompanyType = "outros"
)

func (t CompanyType) Valid() bool {
	switch t {
	case CompanyCliente, CompanyFornecedor, CompanyParceiro, CompanyTransportadora, CompanyOutros:
		return true
	}
	return false
}

// Label devolve o nome capitalizado (Cliente, Transportadora...).
func (t CompanyType) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

type Company struct {
	ID                string      `bson:"_id,omitempty" json:"id"`
	Nome              string      `bson:"nome" json:"nome"`
	NomeFantasia      string      `bson:"nome_fantasia,omitempty" json:"nome_fantasia,omitempty"`
	CNPJ              string      `bson:"cnpj,omitempty" json:"cnpj,omitempty"` // apenas dígitos
	CPF               string      `bson:"cpf,omitempty" json:"cpf,omitempty"`
	InscricaoEstadual string      `bson:"inscricao_estadual,omitempty" json:"inscricao_estadual,omitempty"`
	Tipo              CompanyType `bson:"tipo" json:"tipo"`

	Endereco    string `bson:"endereco,omitempty" json:"endereco,omitempty"`
	Numero      string `bson:"numero,omitempty" json:"numero,omitempty"`
	Complemento string `bson:"complemento,omitempty" json:"complemento,omitempty"`
	Bairro      string `bson:"bairro,omitempty" json:"bairro,omitempty"`
	Cidade      string `bson:"cidade" json:"cidade"`
	Estado      string `bson:"estado" json:"estado"`
	CEP         string `bson:"cep,omitempty" json:"cep,omitempty"`

	Telefone string `bson:"telefone,omitempty" json:"telefone,omitempty"`
	Celular  string `bson:"celular,omitempty" json:"celular,omitempty"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Site     string `bson:"site,omitempty" json:"site,omitempty"`

	// Funcionarios alimenta a cota mínima de PcD (PcdMinimo é derivado).
	Funcionarios int `bson:"funcionarios,omitempty" json:"funcionarios,omitempty"`
	PcdMinimo    int `bson:"pcd_minimo" json:"pcd_minimo"`

	Observacoes string `bson:"observacoes,omitempty" json:"observacoes,omitempty"`
	Ativo       bool   `bson:"ativo" json:"ativo"`

	Audit `bson:",inline"`
}

func NewCompany(nome, cidade, estado string, tipo CompanyType) *Company {
	return &Company{
		ID:     NewID(),
		Nome:   nome,
		Cidade: cidade,
		Estado: estado,
		Tipo:   tipo,
		Ativo:  true,
		Audit:  NewAudit(),
	}
}

func (c *Company) Collection() string { return CollectionCompanies }
func (c *Company) GetID() string      { return c.ID }
func (c *Company) SetID(id string)    { c.ID = id }

// Empresas sem CNPJ (pessoa física) não entram no índice único.
func (c *Company) UniqueKey() (string, string) { return "cnpj", c.CNPJ }

// Normalize deixa CNPJ/CPF/CEP só com dígitos antes de validar e gravar.
func (c *Company) Normalize() {
	if c.CNPJ != "" {
		c.CNPJ = utils.SanitizeCNPJ(c.CNPJ)
	}
	if c.CPF != "" {
		c.CPF = utils.OnlyDigits(c.CPF)
	}
	if c.CEP != "" {
		c.CEP = utils.OnlyDigits(c.CEP)
	}
	if c.Tipo == "" {
		c.Tipo = CompanyOutros
	}
	c.PcdMinimo = utils.ComputeMinPCD(c.Funcionarios)
}

func (c *Company) Validate() error {
	switch {
	case blank(c.Nome):
		return invalid("nome is required")
	case blank(c.Cidade):
		return invalid("cidade is required")
	case blank(c.Estado):
		return invalid("estado is required")
	case c.Tipo != "" && !c.Tipo.Valid():
		return invalid("unknown tipo %q", c.Tipo)
	case c.CNPJ != "" && !utils.ValidateCNPJ(c.CNPJ):
		return invalid("invalid cnpj")
	case c.CPF != "" && !utils.ValidateCPF(c.CPF):
		return invalid("invalid cpf")
	case c.CEP != "" && !utils.ValidateCEP(c.CEP):
		return invalid("invalid cep")
	case c.Telefone != "" && !utils.ValidatePhone(c.Telefone):
		return invalid("telefone must have 10 or 11 digits")
	case c.Email != "" && !utils.ValidateEmail(c.Email):
		return invalid("invalid email")
	case c.Funcionarios < 0:
		return invalid("funcionarios must be >= 0")
	}
	return nil
}

func (c *Company) EmbeddingText() string {
	return strings.Join(strings.Fields(fmt.Sprintf("%s %s %s %s %s %s %s",
		c.Nome, c.NomeFantasia, c.CNPJ, c.Cidade, c.Estado, c.Telefone, c.Email)), " ")
}

type Contact struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Nome        string `bson:"nome" json:"nome"`
	Cargo       string `bson:"cargo,omitempty" json:"cargo,omitempty"`
	EmpresaID   string `bson:"empresa_id" json:"empresa_id"`
	Telefone    string `bson:"telefone,omitempty" json:"telefone,omitempty"`
	Celular     string `bson:"celular,omitempty" json:"celular,omitempty"`
	Email       string `bson:"email,omitempty" json:"email,omitempty"`
	WhatsApp    string `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
	Principal   bool   `bson:"principal" json:"principal"`
	Ativo       bool   `bson:"ativo" json:"ativo"`
	Observacoes string `bson:"observacoes,omitempty" json:"observacoes,omitempty"`

	Audit `bson:",inline"`
}

func (c *Contact) Collection() string { return CollectionContacts }
func (c *Contact) GetID() string      { return c.ID }
func (c *Contact) SetID(id string)    { c.ID = id }

func (c *Contact) Validate() error {
	if blank(c.Nome) {
		return invalid("nome is required")
	}
	if c.Email != "" && !utils.ValidateEmail(c.Email) {
		return invalid("invalid email")
	}
	return nil
}
