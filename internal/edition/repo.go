package edition

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bookhub/pkg/apperr"
	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Input is a candidate edition as submitted by a caller. WorkID, Type,
// Format and at least one of ISBN/ASIN are required; everything else is
// optional.
type Input struct {
	ID             string   `json:"id"`
	WorkID         string   `json:"work_id"`
	Type           string   `json:"type"`
	Format         string   `json:"format"`
	ISBN           *string  `json:"isbn"`
	ASIN           *string  `json:"asin"`
	Narrator       *string  `json:"narrator"`
	Abridged       bool     `json:"abridged"`
	Explicit       bool     `json:"explicit"`
	PageCount      *int     `json:"page_count"`
	Runtime        *string  `json:"runtime"`
	ReleaseDate    *string  `json:"release_date"`
	Language       *string  `json:"language"`
	Publisher      *string  `json:"publisher"`
	SeriesName     *string  `json:"series_name"`
	SeriesPosition *float64 `json:"series_position"`
	Genres         []string `json:"genres"`
	Tags           []string `json:"tags"`
}

type UpsertResult struct {
	Edition models.Edition
	Created bool
}

func hasValue(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

func (in Input) validate() error {
	if strings.TrimSpace(in.WorkID) == "" {
		return apperr.Validation("work_id is required")
	}
	if strings.TrimSpace(in.Type) == "" {
		return apperr.Validation("type is required")
	}
	if strings.TrimSpace(in.Format) == "" {
		return apperr.Validation("format is required")
	}
	if !hasValue(in.ISBN) && !hasValue(in.ASIN) {
		return apperr.Validation("at least one of isbn or asin is required")
	}
	return nil
}

// findByKey locates an existing edition whose isbn or asin equals the
// candidate's. Each key only participates when the candidate actually
// carries it; an absent isbn must never match a stored NULL isbn.
func (r *Repo) findByKey(ctx context.Context, isbn, asin *string) (string, bool, error) {
	var conds []string
	var args []any
	if hasValue(isbn) {
		conds = append(conds, "(isbn IS NOT NULL AND isbn = ?)")
		args = append(args, strings.TrimSpace(*isbn))
	}
	if hasValue(asin) {
		conds = append(conds, "(asin IS NOT NULL AND asin = ?)")
		args = append(args, strings.TrimSpace(*asin))
	}
	if len(conds) == 0 {
		return "", false, nil
	}

	row := r.DB.QueryRowContext(ctx,
		`SELECT id FROM editions WHERE `+strings.Join(conds, " OR "), args...)

	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find edition by key: %w", err)
	}
	return id, true, nil
}

// Upsert reconciles a candidate edition against the (isbn, asin) dedup key:
// a match updates the existing row in place, otherwise a new row is created.
// The partial unique indexes on isbn/asin back this up under concurrency.
func (r *Repo) Upsert(ctx context.Context, in Input) (*UpsertResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	matchID, found, err := r.findByKey(ctx, in.ISBN, in.ASIN)
	if err != nil {
		return nil, err
	}

	id := matchID
	if found {
		_, err = r.DB.ExecContext(ctx, `
			UPDATE editions SET
				work_id = ?, type = ?, format = ?, isbn = ?, asin = ?,
				narrator = ?, abridged = ?, page_count = ?, runtime = ?,
				release_date = ?, language = ?, publisher = ?, series_name = ?,
				series_position = ?, explicit = ?, genres = ?, tags = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, in.WorkID, in.Type, in.Format, ns(in.ISBN), ns(in.ASIN),
			ns(in.Narrator), boolToInt(in.Abridged), ni(in.PageCount), ns(in.Runtime),
			ns(in.ReleaseDate), ns(in.Language), ns(in.Publisher), ns(in.SeriesName),
			nf(in.SeriesPosition), boolToInt(in.Explicit), joined(in.Genres), joined(in.Tags),
			id)
		if err != nil {
			return nil, fmt.Errorf("update edition: %w", err)
		}
	} else {
		id = strings.TrimSpace(in.ID)
		if id == "" {
			id = uuid.NewString()
		}
		_, err = r.DB.ExecContext(ctx, `
			INSERT INTO editions (
				id, work_id, type, format, isbn, asin, narrator, abridged,
				page_count, runtime, release_date, language, publisher,
				series_name, series_position, explicit, genres, tags, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, id, in.WorkID, in.Type, in.Format, ns(in.ISBN), ns(in.ASIN),
			ns(in.Narrator), boolToInt(in.Abridged), ni(in.PageCount), ns(in.Runtime),
			ns(in.ReleaseDate), ns(in.Language), ns(in.Publisher), ns(in.SeriesName),
			nf(in.SeriesPosition), boolToInt(in.Explicit), joined(in.Genres), joined(in.Tags))
		if err != nil {
			return nil, fmt.Errorf("insert edition: %w", err)
		}
	}

	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("edition %s vanished after write", id)
	}
	return &UpsertResult{Edition: *e, Created: !found}, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Edition, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT`+editionColumns+`FROM editions WHERE id = ?`, id)

	rec, err := scanRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get edition: %w", err)
	}
	e := Normalize(rec)
	return &e, nil
}

// Lookup fetches one edition by its natural key. At least one of isbn/asin
// must be provided.
func (r *Repo) Lookup(ctx context.Context, isbn, asin string) (*models.Edition, error) {
	var pi, pa *string
	if strings.TrimSpace(isbn) != "" {
		pi = &isbn
	}
	if strings.TrimSpace(asin) != "" {
		pa = &asin
	}
	if pi == nil && pa == nil {
		return nil, apperr.Validation("isbn or asin query parameter is required")
	}

	id, found, err := r.findByKey(ctx, pi, pa)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Discover runs the filtered, paginated edition query. Count and page are
// built from the identical predicate.
func (r *Repo) Discover(ctx context.Context, q DiscoverQuery) ([]models.Edition, int, error) {
	countSQL, countArgs := buildDiscoverSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("discover count: %w", err)
	}

	pageSQL, pageArgs := buildDiscoverSQL(q, false)
	rows, err := r.DB.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("discover query: %w", err)
	}
	defer rows.Close()

	out, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repo) ListByWork(ctx context.Context, workID string) ([]models.Edition, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT`+editionColumns+`FROM editions WHERE work_id = ? ORDER BY release_date DESC`, workID)
	if err != nil {
		return nil, fmt.Errorf("editions by work: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// ListByAuthor returns editions of every work linked to the author.
func (r *Repo) ListByAuthor(ctx context.Context, authorID string) ([]models.Edition, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT e.id, e.work_id, e.type, e.format, e.isbn, e.asin, e.narrator,
			e.abridged, e.page_count, e.runtime, e.release_date, e.language,
			e.publisher, e.series_name, e.series_position, e.explicit,
			e.genres, e.tags, e.updated_at
		FROM editions e
		JOIN work_authors wa ON wa.work_id = e.work_id
		WHERE wa.author_id = ?
		ORDER BY e.release_date DESC
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("editions by author: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (Row, error) {
	var rec Row
	err := s.Scan(
		&rec.ID, &rec.WorkID, &rec.Type, &rec.Format, &rec.ISBN, &rec.ASIN,
		&rec.Narrator, &rec.Abridged, &rec.PageCount, &rec.Runtime,
		&rec.ReleaseDate, &rec.Language, &rec.Publisher, &rec.SeriesName,
		&rec.SeriesPosition, &rec.Explicit, &rec.Genres, &rec.Tags, &rec.UpdatedAt,
	)
	return rec, err
}

func collect(rows *sql.Rows) ([]models.Edition, error) {
	out := []models.Edition{}
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edition row: %w", err)
		}
		out = append(out, Normalize(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// nullable bind helpers: empty/absent values are stored as NULL so the
// dedup key guards and absent-marker normalization stay honest.

func ns(p *string) any {
	if !hasValue(p) {
		return nil
	}
	return strings.TrimSpace(*p)
}

func ni(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nf(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func joined(list []string) any {
	if len(list) == 0 {
		return nil
	}
	return strings.Join(list, ",")
}
