package usecase

import (
	"context"

	"github.com/leadpulse/leadpulse/internal/entity"
)

// RemoteData is what a bulk load brings back. Settings is nil when the
// user has no settings row yet, so the store knows it must seed one.
type RemoteData struct {
	Leads     []entity.Lead
	Templates []entity.Template
	Settings  *entity.Settings
}

// RemoteRepository is the row-store the optimistic state is mirrored
// to. Every call is scoped by the opaque user id. Implementations must
// return the authoritative record (server-assigned id included) from
// the insert calls.
type RemoteRepository interface {
	FetchAll(ctx context.Context, userID string) (*RemoteData, error)

	InsertLead(ctx context.Context, userID string, lead entity.Lead) (*entity.Lead, error)
	InsertLeads(ctx context.Context, userID string, leads []entity.Lead) ([]entity.Lead, error)
	UpdateLead(ctx context.Context, userID, id string, patch entity.LeadPatch) error
	DeleteLead(ctx context.Context, userID, id string) error

	InsertTemplate(ctx context.Context, userID string, tpl entity.Template) (*entity.Template, error)
	UpdateTemplate(ctx context.Context, userID, id string, patch entity.TemplatePatch) error
	DeleteTemplate(ctx context.Context, userID, id string) error

	UpsertSettings(ctx context.Context, userID string, patch entity.SettingsPatch) error
}

// SnapshotStore is the always-on local mirror. Load never fails: a
// missing or unreadable snapshot yields defaults.
type SnapshotStore interface {
	Load() *entity.AppData
	Save(data *entity.AppData) error
}
