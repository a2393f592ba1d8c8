package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leadpulse/leadpulse/internal/entity"
)

// added_at falls back to created_at for rows imported before the
// added_at column existed.
const leadColumns = `
	id, name, profile_url, platform, category, status, notes,
	COALESCE(added_at, created_at) AS added_at,
	dm_sent_at, follow_up_sent_at, replied_at, follow_up_due_date, last_dm_text
`

func (r *Repository) fetchLeads(ctx context.Context, userID string) ([]entity.Lead, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads
		WHERE user_id = $1
		ORDER BY COALESCE(added_at, created_at) DESC
	`, leadColumns)

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// InsertLead creates the row and returns the authoritative record,
// server-assigned id included.
func (r *Repository) InsertLead(ctx context.Context, userID string, lead entity.Lead) (*entity.Lead, error) {
	query := fmt.Sprintf(`
		INSERT INTO leads (user_id, name, profile_url, platform, category, status, notes, added_at,
			dm_sent_at, follow_up_sent_at, replied_at, follow_up_due_date, last_dm_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING %s
	`, leadColumns)

	row := r.DB.QueryRowContext(ctx, query,
		userID, lead.Name, lead.ProfileURL, string(lead.Platform), string(lead.Category),
		string(lead.Status), lead.Notes, lead.AddedAt,
		lead.DmSentAt, lead.FollowUpSentAt, lead.RepliedAt, lead.FollowUpDueDate,
		nullString(lead.LastDmText),
	)

	inserted, err := scanLead(row)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

// InsertLeads is the batch variant used by bulk import: one statement,
// one RETURNING set, so either the whole batch lands or none of it.
func (r *Repository) InsertLeads(ctx context.Context, userID string, leads []entity.Lead) ([]entity.Lead, error) {
	if len(leads) == 0 {
		return []entity.Lead{}, nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for _, lead := range leads {
		base := len(args)
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			userID, lead.Name, lead.ProfileURL, string(lead.Platform),
			string(lead.Category), string(lead.Status), lead.Notes, lead.AddedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO leads (user_id, name, profile_url, platform, category, status, notes, added_at)
		VALUES %s
		RETURNING %s
	`, strings.Join(placeholders, ", "), leadColumns)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inserted := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, lead)
	}
	return inserted, rows.Err()
}

// UpdateLead translates only the patched fields into column updates.
func (r *Repository) UpdateLead(ctx context.Context, userID, id string, patch entity.LeadPatch) error {
	set, args := leadPatchColumns(patch)
	if len(set) == 0 {
		return nil
	}

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(set, ", "), len(args)-1, len(args))

	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) DeleteLead(ctx context.Context, userID, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func leadPatchColumns(patch entity.LeadPatch) ([]string, []interface{}) {
	var set []string
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.ProfileURL != nil {
		add("profile_url", *patch.ProfileURL)
	}
	if patch.Platform != nil {
		add("platform", string(*patch.Platform))
	}
	if patch.Category != nil {
		add("category", string(*patch.Category))
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.DmSentAt != nil {
		add("dm_sent_at", *patch.DmSentAt)
	}
	if patch.FollowUpSentAt != nil {
		add("follow_up_sent_at", *patch.FollowUpSentAt)
	}
	if patch.RepliedAt != nil {
		add("replied_at", *patch.RepliedAt)
	}
	if patch.FollowUpDueDate != nil {
		add("follow_up_due_date", *patch.FollowUpDueDate)
	}
	if patch.LastDmText != nil {
		add("last_dm_text", *patch.LastDmText)
	}
	return set, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (entity.Lead, error) {
	var (
		lead       entity.Lead
		profileURL sql.NullString
		status     sql.NullString
		notes      sql.NullString
		dmSentAt   sql.NullTime
		fuSentAt   sql.NullTime
		repliedAt  sql.NullTime
		fuDueDate  sql.NullTime
		lastDmText sql.NullString
	)

	err := row.Scan(
		&lead.ID, &lead.Name, &profileURL, &lead.Platform, &lead.Category,
		&status, &notes, &lead.AddedAt,
		&dmSentAt, &fuSentAt, &repliedAt, &fuDueDate, &lastDmText,
	)
	if err != nil {
		return entity.Lead{}, err
	}

	lead.ProfileURL = profileURL.String
	lead.Notes = notes.String
	lead.Status = entity.LeadStatus(status.String)
	if lead.Status == "" {
		lead.Status = entity.StatusNew
	}
	if dmSentAt.Valid {
		t := dmSentAt.Time
		lead.DmSentAt = &t
	}
	if fuSentAt.Valid {
		t := fuSentAt.Time
		lead.FollowUpSentAt = &t
	}
	if repliedAt.Valid {
		t := repliedAt.Time
		lead.RepliedAt = &t
	}
	if fuDueDate.Valid {
		t := fuDueDate.Time
		lead.FollowUpDueDate = &t
	}
	lead.LastDmText = lastDmText.String

	return lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
