package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Nomes das coleções persistidas.
const (
	CollectionCompanies     = "companies"
	CollectionFreightOrders = "freight_orders"
	CollectionTimesheets    = "timesheets"
	CollectionContacts      = "contacts"
	CollectionRoutes        = "routes"
	CollectionManifests     = "manifests"
	CollectionInvoices      = "invoices"
	CollectionCtes          = "ctes"
	CollectionDocuments     = "documents"
)

// Collections lists every collection a store has to know about.
var Collections = []string{
	CollectionCompanies,
	CollectionFreightOrders,
	CollectionTimesheets,
	CollectionContacts,
	CollectionRoutes,
	CollectionManifests,
	CollectionInvoices,
	CollectionCtes,
	CollectionDocuments,
}

var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Record is implemented by every persisted entity.
type Record interface {
	Collection() string
	GetID() string
	SetID(id string)
	Validate() error
	Touch(now time.Time, actor string)
}

// Embeddable records can be turned into text for the vector index.
type Embeddable interface {
	Record
	EmbeddingText() string
}

// Keyed records expose a natural unique key (field name in storage, value).
type Keyed interface {
	UniqueKey() (field, value string)
}

// NewID returns a time ordered UUID (v7) so ids sort by creation.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// New returns an empty record for a collection, or nil when unknown.
func New(collection string) Record {
	switch collection {
	case CollectionCompanies:
		return &Company{}
	case CollectionFreightOrders:
		return &FreightOrder{}
	case CollectionTimesheets:
		return &Timesheet{}
	case CollectionContacts:
		return &Contact{}
	case CollectionRoutes:
		return &Route{}
	case CollectionManifests:
		return &Manifest{}
	case CollectionInvoices:
		return &Invoice{}
	case CollectionCtes:
		return &Cte{}
	case CollectionDocuments:
		return &FileDocument{}
	}
	return nil
}
