package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadpulse/leadpulse/internal/entity"
)

const templateColumns = `id, name, type, content, created_at`

func (r *Repository) fetchTemplates(ctx context.Context, userID string) ([]entity.Template, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM templates
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, templateColumns)

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []entity.Template{}
	for rows.Next() {
		var tpl entity.Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Type, &tpl.Content, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (r *Repository) InsertTemplate(ctx context.Context, userID string, tpl entity.Template) (*entity.Template, error) {
	query := fmt.Sprintf(`
		INSERT INTO templates (user_id, name, type, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, templateColumns)

	var inserted entity.Template
	err := r.DB.QueryRowContext(ctx, query,
		userID, tpl.Name, string(tpl.Type), tpl.Content, tpl.CreatedAt,
	).Scan(&inserted.ID, &inserted.Name, &inserted.Type, &inserted.Content, &inserted.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inserted, nil
}

func (r *Repository) UpdateTemplate(ctx context.Context, userID, id string, patch entity.TemplatePatch) error {
	var set []string
	var args []interface{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Type != nil {
		add("type", string(*patch.Type))
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id, userID)
	query := fmt.Sprintf("UPDATE templates SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(set, ", "), len(args)-1, len(args))

	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *Repository) DeleteTemplate(ctx context.Context, userID, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM templates WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
