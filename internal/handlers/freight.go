package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Werneck0live/personal-controller/internal/locale"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

// patchFreightOrder aplica somente os campos presentes sobre a ordem atual.
// Data vazia ("") limpa o campo.
func patchFreightOrder(_ *API, w http.ResponseWriter, r *http.Request, o *models.FreightOrder) (*models.FreightOrder, bool) {
	var dto FreightPatchDTO
	if err := utils.DecodeStrict(r.Body, &dto); err != nil {
		utils.BadRequest(w, utils.FormatUnknownFieldError(err))
		return nil, false
	}
	if err := validateFreightPatch(dto); err != nil {
		utils.BadRequest(w, err.Error())
		return nil, false
	}

	agendamento, err := patchDate(dto.DataAgendamento, o.DataAgendamento, "data_agendamento")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return nil, false
	}
	entrega, err := patchDate(dto.DataEntrega, o.DataEntrega, "data_entrega")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return nil, false
	}
	o.DataAgendamento, o.DataEntrega = agendamento, entrega

	if dto.Status != nil {
		o.Status = *dto.Status
	}
	if dto.Observacoes != nil {
		o.Observacoes = *dto.Observacoes
	}
	if dto.FormaPagamento != nil {
		o.FormaPagamento = *dto.FormaPagamento
	}
	if dto.CteNumero != nil {
		o.CteNumero = *dto.CteNumero
	}
	if dto.CteChave != nil {
		o.CteChave = *dto.CteChave
	}
	return o, true
}

func patchDate(raw *string, current *time.Time, field string) (*time.Time, error) {
	if raw == nil {
		return current, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}
	d, ok := locale.ParseDate(s)
	if !ok {
		return nil, fmt.Errorf("%s must be dd/mm/yyyy", field)
	}
	return &d, nil
}
