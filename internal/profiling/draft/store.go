// Package draft is the persistence boundary for in-progress profiling
// records. One fixed slot holds the last-saved draft, a second slot remembers
// the previously chosen company identifier so it can pre-fill the next
// session. Saving overwrites; there is no multi-draft support.
package draft

import (
	"context"
	"time"

	"offsite/internal/profiling/models"
)

// Fixed slot keys shared by every backend.
const (
	DraftKey     = "offsite:profiling:draft"
	CompanyIDKey = "offsite:profiling:company_id"
)

// EnvelopeVersion is bumped when the persisted draft shape changes.
const EnvelopeVersion = 1

// Envelope wraps the persisted record with a version and timestamp so stale
// drafts from older sessions can be told apart.
type Envelope struct {
	Version int                     `json:"version"`
	SavedAt time.Time               `json:"savedAt"`
	Record  *models.ProfilingRecord `json:"record"`
}

// Store persists drafts and the remembered company identifier. Absent values
// surface as sentinel.ErrNotFound.
type Store interface {
	SaveDraft(ctx context.Context, record *models.ProfilingRecord) error
	LoadDraft(ctx context.Context) (*models.ProfilingRecord, error)
	DeleteDraft(ctx context.Context) error
	SaveCompanyID(ctx context.Context, companyID string) error
	LoadCompanyID(ctx context.Context) (string, error)
}
