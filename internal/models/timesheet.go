package models

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// ClockTime is a wall-clock time as minutes since midnight. Text form is "HH:MM".
type ClockTime int

func NewClockTime(hour, minute int) (ClockTime, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return ClockTime(hour*60 + minute), true
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	var h, m int
	if _, err := fmt.Sscanf(string(b), "%d:%d", &h, &m); err != nil {
		return fmt.Errorf("clock time %q: %w", b, err)
	}
	v, ok := NewClockTime(h, m)
	if !ok {
		return fmt.Errorf("clock time %q out of range", b)
	}
	*c = v
	return nil
}

// WorkedMinutes is the span between entrada and saida, wrapping past midnight.
func WorkedMinutes(entrada, saida ClockTime) int {
	if saida >= entrada {
		return int(saida - entrada)
	}
	return (minutesPerDay - int(entrada)) + int(saida)
}

type Timesheet struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Funcionario   string    `bson:"funcionario" json:"funcionario"`
	FuncionarioID string    `bson:"funcionario_id,omitempty" json:"funcionario_id,omitempty"`
	Mes           string    `bson:"mes" json:"mes"`
	Data          time.Time `bson:"data" json:"data"`
	Entrada       ClockTime `bson:"entrada" json:"entrada"`
	Saida         ClockTime `bson:"saida" json:"saida"`
	TotalMinutos  int       `bson:"total_minutos" json:"total_minutos"`
	SaldoMinutos  int       `bson:"saldo_minutos" json:"saldo_minutos"`
	Observacoes   string    `bson:"observacoes,omitempty" json:"observacoes,omitempty"`
	FonteArquivo  string    `bson:"fonte_arquivo,omitempty" json:"fonte_arquivo,omitempty"`

	Audit `bson:",inline"`
}

func NewTimesheet(funcionario, mes string, data time.Time, entrada, saida ClockTime) *Timesheet {
	t := &Timesheet{
		ID:          NewID(),
		Funcionario: funcionario,
		Mes:         mes,
		Data:        data,
		Audit:       NewAudit(),
	}
	t.SetClock(entrada, saida)
	return t
}

// SetClock is the only way to change entrada/saida; it recomputes the total.
func (t *Timesheet) SetClock(entrada, saida ClockTime) {
	t.Entrada = entrada
	t.Saida = saida
	t.TotalMinutos = WorkedMinutes(entrada, saida)
}

func (t *Timesheet) TotalHours() float64 { return float64(t.TotalMinutos) / 60 }
func (t *Timesheet) SaldoHours() float64 { return float64(t.SaldoMinutos) / 60 }

func (t *Timesheet) Collection() string { return CollectionTimesheets }
func (t *Timesheet) GetID() string      { return t.ID }
func (t *Timesheet) SetID(id string)    { t.ID = id }

func (t *Timesheet) Validate() error {
	if blank(t.Funcionario) {
		return invalid("funcionario is required")
	}
	if t.Data.IsZero() {
		return invalid("data is required")
	}
	if t.TotalMinutos != WorkedMinutes(t.Entrada, t.Saida) {
		return invalid("total_minutos does not match entrada/saida")
	}
	return nil
}

func (t *Timesheet) EmbeddingText() string {
	return fmt.Sprintf("Ponto %s em %s entrada %s saida %s total %.2fh mes %s",
		t.Funcionario, t.Data.Format("2006-01-02"), t.Entrada, t.Saida, t.TotalHours(), t.Mes)
}
