// Package database is the remote persistence adapter: it translates
// between the entity shapes and the snake_case row representation,
// with every row scoped by the owning user id.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leadpulse/leadpulse/internal/entity"
	"github.com/leadpulse/leadpulse/internal/usecase"
)

type Repository struct {
	DB *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// FetchAll is the one-time bulk read at session start: leads newest
// first, templates oldest first, settings as a single optional row.
func (r *Repository) FetchAll(ctx context.Context, userID string) (*usecase.RemoteData, error) {
	leads, err := r.fetchLeads(ctx, userID)
	if err != nil {
		return nil, &usecase.TechnicalError{Code: "DB_ERROR", Message: fmt.Sprintf("fetch leads: %v", err)}
	}

	templates, err := r.fetchTemplates(ctx, userID)
	if err != nil {
		return nil, &usecase.TechnicalError{Code: "DB_ERROR", Message: fmt.Sprintf("fetch templates: %v", err)}
	}

	settings, err := r.fetchSettings(ctx, userID)
	if err != nil {
		return nil, &usecase.TechnicalError{Code: "DB_ERROR", Message: fmt.Sprintf("fetch settings: %v", err)}
	}

	return &usecase.RemoteData{Leads: leads, Templates: templates, Settings: settings}, nil
}

func (r *Repository) fetchSettings(ctx context.Context, userID string) (*entity.Settings, error) {
	query := `
		SELECT gemini_api_key, service_description, follow_up_days
		FROM settings
		WHERE user_id = $1
		LIMIT 1
	`

	var (
		apiKey      sql.NullString
		description sql.NullString
		days        sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&apiKey, &description, &days)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s := entity.Settings{
		GeminiAPIKey:       apiKey.String,
		ServiceDescription: description.String,
		FollowUpDays:       int(days.Int64),
	}
	if s.FollowUpDays == 0 {
		s.FollowUpDays = entity.DefaultFollowUpDays
	}
	return &s, nil
}

// UpsertSettings is a read-modify-write by existence check: Settings
// is a singleton per user with no natural creation hook, so the first
// write has to insert the row.
func (r *Repository) UpsertSettings(ctx context.Context, userID string, patch entity.SettingsPatch) error {
	var id string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM settings WHERE user_id = $1 LIMIT 1`, userID,
	).Scan(&id)

	if err == sql.ErrNoRows {
		merged := patch.Apply(entity.DefaultSettings())
		_, err := r.DB.ExecContext(ctx, `
			INSERT INTO settings (user_id, gemini_api_key, service_description, follow_up_days, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, userID, merged.GeminiAPIKey, merged.ServiceDescription, merged.FollowUpDays)
		return err
	}
	if err != nil {
		return err
	}

	set, args := settingsPatchColumns(patch)
	set = append(set, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE settings SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

func settingsPatchColumns(patch entity.SettingsPatch) ([]string, []interface{}) {
	var set []string
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.GeminiAPIKey != nil {
		add("gemini_api_key", *patch.GeminiAPIKey)
	}
	if patch.ServiceDescription != nil {
		add("service_description", *patch.ServiceDescription)
	}
	if patch.FollowUpDays != nil {
		add("follow_up_days", *patch.FollowUpDays)
	}
	return set, args
}
