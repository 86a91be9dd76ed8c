package handlers

import (
	"io"

	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

// somente os campos do contrato; id e auditoria ficam com o servidor
type CompanyDTO struct {
	Nome              string             `json:"nome"`
	NomeFantasia      string             `json:"nome_fantasia"`
	CNPJ              string             `json:"cnpj"`
	CPF               string             `json:"cpf"`
	InscricaoEstadual string             `json:"inscricao_estadual"`
	Tipo              models.CompanyType `json:"tipo"`
	Endereco          string             `json:"endereco"`
	Numero            string             `json:"numero"`
	Complemento       string             `json:"complemento"`
	Bairro            string             `json:"bairro"`
	Cidade            string             `json:"cidade"`
	Estado            string             `json:"estado"`
	CEP               string             `json:"cep"`
	Telefone          string             `json:"telefone"`
	Celular           string             `json:"celular"`
	Email             string             `json:"email"`
	Site              string             `json:"site"`
	Funcionarios      int                `json:"funcionarios"`
	Observacoes       string             `json:"observacoes"`
	// ponteiro: omitido = ativa
	Ativo *bool `json:"ativo,omitempty"`
}

func (d CompanyDTO) toModel() *models.Company {
	c := models.NewCompany(d.Nome, d.Cidade, d.Estado, d.Tipo)
	c.NomeFantasia = d.NomeFantasia
	c.CNPJ = d.CNPJ
	c.CPF = d.CPF
	c.InscricaoEstadual = d.InscricaoEstadual
	c.Endereco = d.Endereco
	c.Numero = d.Numero
	c.Complemento = d.Complemento
	c.Bairro = d.Bairro
	c.CEP = d.CEP
	c.Telefone = d.Telefone
	c.Celular = d.Celular
	c.Email = d.Email
	c.Site = d.Site
	c.Funcionarios = d.Funcionarios
	c.Observacoes = d.Observacoes
	if d.Ativo != nil {
		c.Ativo = *d.Ativo
	}
	c.Normalize()
	return c
}

func decodeCompany(body io.Reader) (*models.Company, error) {
	var dto CompanyDTO
	if err := utils.DecodeStrict(body, &dto); err != nil {
		return nil, err
	}
	if err := validateCompanyDTO(dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

// Atualização parcial de ordem de frete; ponteiros distinguem "omitido" de "informado".
// Datas aceitam dd/mm/aaaa.
type FreightPatchDTO struct {
	Status          *models.Status `json:"status,omitempty"`
	Observacoes     *string        `json:"observacoes,omitempty"`
	DataAgendamento *string        `json:"data_agendamento,omitempty"`
	DataEntrega     *string        `json:"data_entrega,omitempty"`
	FormaPagamento  *string        `json:"forma_pagamento,omitempty"`
	CteNumero       *string        `json:"cte_numero,omitempty"`
	CteChave        *string        `json:"cte_chave,omitempty"`
}
