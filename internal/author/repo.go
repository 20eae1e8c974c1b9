package author

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, a models.Author) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO authors (id, name) VALUES (?, ?)
	`, a.ID, a.Name)
	if err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Author, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name FROM authors WHERE id = ?
	`, id)

	var a models.Author
	if err := row.Scan(&a.ID, &a.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan author: %w", err)
	}
	return &a, nil
}

// GetByName is an exact-match lookup; authors are never merged by fuzzy
// name comparison.
func (r *Repo) GetByName(ctx context.Context, name string) (*models.Author, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name FROM authors WHERE name = ?
	`, name)

	var a models.Author
	if err := row.Scan(&a.ID, &a.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan author by name: %w", err)
	}
	return &a, nil
}

func (r *Repo) List(ctx context.Context, name string, limit, offset int) ([]models.Author, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var where string
	var args []any
	if strings.TrimSpace(name) != "" {
		where = " WHERE LOWER(name) LIKE ?"
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(name))+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name FROM authors`+where+` ORDER BY name ASC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	out := make([]models.Author, 0, limit)
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, 0, fmt.Errorf("scan author row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

// Works returns every work linked to the author through work_authors.
func (r *Repo) Works(ctx context.Context, authorID string) ([]models.Work, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT w.id, w.title, w.author, w.description, w.cover_url, w.updated_at
		FROM works w
		JOIN work_authors wa ON wa.work_id = w.id
		WHERE wa.author_id = ?
		ORDER BY w.title ASC
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("works by author: %w", err)
	}
	defer rows.Close()

	out := []models.Work{}
	for rows.Next() {
		var (
			w           models.Work
			author      sql.NullString
			description sql.NullString
			coverURL    sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.Title, &author, &description, &coverURL, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan work row: %w", err)
		}
		w.Author = author.String
		w.Description = description.String
		w.CoverURL = coverURL.String
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
