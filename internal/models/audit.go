package models

import "time"

// Audit é embutido em todas as entidades; os campos ficam "achatados" no JSON/BSON.
type Audit struct {
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
	CreatedBy string    `bson:"created_by,omitempty" json:"created_by,omitempty"`
	UpdatedBy string    `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// Touch stamps the record. The first call also sets the creation fields.
func (a *Audit) Touch(now time.Time, actor string) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
		a.CreatedBy = actor
	}
	a.UpdatedAt = now
	if actor != "" {
		a.UpdatedBy = actor
	}
}

func (a *Audit) AuditInfo() Audit { return *a }

// KeepCreation copies the creation stamp of the version being replaced.
func (a *Audit) KeepCreation(prev Audit) {
	a.CreatedAt, a.CreatedBy = prev.CreatedAt, prev.CreatedBy
}

func NewAudit() Audit {
	now := time.Now().UTC()
	return Audit{CreatedAt: now, UpdatedAt: now}
}

// Pagination segue o contrato page/per_page da API.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, perPage int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + int64(perPage) - 1) / int64(perPage),
	}
}

func (p Pagination) Offset() int64 {
	return int64(p.Page-1) * int64(p.PerPage)
}

type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
