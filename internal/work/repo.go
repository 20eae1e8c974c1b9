package work

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

// Upsert writes a work keyed by its caller-supplied id: resubmitting the
// same id updates in place. Returns whether a new row was created.
func (r *Repo) Upsert(ctx context.Context, w models.Work) (bool, error) {
	var exists int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM works WHERE id = ?`, w.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check work: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO works (id, title, author, description, cover_url, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			description = excluded.description,
			cover_url = excluded.cover_url,
			updated_at = CURRENT_TIMESTAMP
	`, w.ID, w.Title, w.Author, w.Description, w.CoverURL)
	if err != nil {
		return false, fmt.Errorf("upsert work: %w", err)
	}
	return exists == 0, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Work, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, author, description, cover_url, updated_at
		FROM works WHERE id = ?
	`, id)

	w, err := scanWork(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get work: %w", err)
	}
	return w, nil
}

func (r *Repo) List(ctx context.Context, title string, limit, offset int) ([]models.Work, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var where string
	var args []any
	if strings.TrimSpace(title) != "" {
		where = " WHERE LOWER(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(title))+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM works`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count works: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, author, description, cover_url, updated_at
		FROM works`+where+`
		ORDER BY updated_at DESC
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list works: %w", err)
	}
	defer rows.Close()

	out := make([]models.Work, 0, limit)
	for rows.Next() {
		w, err := scanWork(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan work row: %w", err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

// Delete removes a work. Foreign keys cascade to its editions and
// work_authors rows.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete work: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Link associates a work with an author. Insert-or-ignore: relinking the
// same pair is a no-op.
func (r *Repo) Link(ctx context.Context, workID, authorID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO work_authors (work_id, author_id) VALUES (?, ?)
	`, workID, authorID)
	if err != nil {
		return fmt.Errorf("link work author: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWork(s scanner) (*models.Work, error) {
	var (
		w           models.Work
		author      sql.NullString
		description sql.NullString
		coverURL    sql.NullString
	)
	if err := s.Scan(&w.ID, &w.Title, &author, &description, &coverURL, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.Author = author.String
	w.Description = description.String
	w.CoverURL = coverURL.String
	return &w, nil
}
