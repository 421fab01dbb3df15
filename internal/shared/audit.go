package shared

import (
	"strings"
	"time"
)

// Actor identifies who performs a write. Services receive it explicitly.
type Actor struct {
	ID   string
	Name string
}

// SystemActor stamps writes made by seeders and background jobs.
var SystemActor = Actor{Name: "System"}

// Label is the value written into audit columns.
func (a Actor) Label() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return SystemActor.Name
}

// Audit is the created/last-modified quad carried by mutable entities.
type Audit struct {
	CreatedBy      string    `db:"created_by"`
	CreatedAt      time.Time `db:"created_at"`
	LastModifiedBy string    `db:"last_modified_by"`
	LastModifiedAt time.Time `db:"last_modified_at"`
}

// NewAudit stamps all four fields for a freshly created entity.
func NewAudit(actor Actor, now time.Time) Audit {
	label := actor.Label()
	return Audit{CreatedBy: label, CreatedAt: now, LastModifiedBy: label, LastModifiedAt: now}
}

// Touch re-stamps the last-modified pair. Created fields never change.
func (a *Audit) Touch(actor Actor, now time.Time) {
	a.LastModifiedBy = actor.Label()
	a.LastModifiedAt = now
}

// Clock returns the current time. Services hold one so tests can pin it.
type Clock func() time.Time

// UTCNow is the production clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}
