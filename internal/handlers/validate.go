package handlers

import (
	"errors"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/utils"
)

func validateCompanyDTO(d CompanyDTO) error {
	if strings.TrimSpace(d.Nome) == "" {
		return errors.New("nome is required")
	}
	if d.CNPJ != "" && !utils.ValidateCNPJ(utils.SanitizeCNPJ(d.CNPJ)) {
		return errors.New("invalid cnpj")
	}
	if d.Tipo != "" && !d.Tipo.Valid() {
		return errors.New("unknown tipo")
	}
	return nil
}

func validateFreightPatch(d FreightPatchDTO) error {
	if d.Status == nil && d.Observacoes == nil && d.DataAgendamento == nil && d.DataEntrega == nil &&
		d.FormaPagamento == nil && d.CteNumero == nil && d.CteChave == nil {
		return errors.New("no field to update")
	}
	if d.Status != nil && !d.Status.Valid() {
		return errors.New("unknown status")
	}
	return nil
}
