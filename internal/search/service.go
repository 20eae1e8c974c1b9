package search

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookhub/internal/events"
	"bookhub/internal/metadata"
	"bookhub/pkg/apperr"
	"bookhub/pkg/models"
)

// Service is the search-with-fallback orchestrator: a local title query,
// and on a miss, at most one external lookup whose result is ingested into
// the catalog before the local query is re-run.
type Service struct {
	DB       *sql.DB
	Provider metadata.Provider
	Cooldown Cooldown
	Log      *IngestLog
	Hub      *events.Hub
}

func NewService(db *sql.DB, provider metadata.Provider, cooldown Cooldown, ingestLog *IngestLog, hub *events.Hub) *Service {
	return &Service{DB: db, Provider: provider, Cooldown: cooldown, Log: ingestLog, Hub: hub}
}

// Search returns up to limit works matching the query. Exact title matches
// rank first, then prefix matches, then substring matches.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Work, error) {
	query = strings.TrimSpace(query)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	local, err := s.queryLocal(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		return local, nil
	}

	if err := s.fallback(ctx, query); err != nil {
		return nil, err
	}

	return s.queryLocal(ctx, query, limit)
}

func (s *Service) queryLocal(ctx context.Context, query string, limit int) ([]models.Work, error) {
	lq := strings.ToLower(query)
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, author, description, cover_url, updated_at
		FROM works
		WHERE LOWER(title) LIKE ?
		ORDER BY CASE
			WHEN LOWER(title) = ? THEN 0
			WHEN LOWER(title) LIKE ? THEN 1
			ELSE 2
		END, rowid ASC
		LIMIT ?
	`, "%"+lq+"%", lq, lq+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("local search: %w", err)
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
			return nil, fmt.Errorf("scan search row: %w", err)
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

// fallback runs the external lookup and ingest. Invoked at most once per
// Search call, and per query string at most once per cooldown window.
func (s *Service) fallback(ctx context.Context, query string) error {
	if len([]rune(query)) < 2 {
		return apperr.Validation("query must be at least 2 characters")
	}

	key := strings.ToLower(query)
	if !s.Cooldown.Allow(key, time.Now()) {
		return apperr.RateLimited("external lookup for %q is cooling down, retry later", query)
	}

	vol, err := s.Provider.Search(ctx, query)
	if err != nil {
		// provider failures are presented to callers the same as an
		// empty provider result; the cause only goes to the log
		log.Printf("[search] provider %s failed for %q: %v", s.Provider.Name(), query, err)
		s.appendLog(ctx, query, ingestNotFound, nil)
		return apperr.Upstream("no external results", err)
	}
	if vol == nil {
		s.appendLog(ctx, query, ingestNotFound, nil)
		return apperr.NotFound("no external results for %q", query)
	}

	workID, err := s.ingest(ctx, vol)
	if err != nil {
		return fmt.Errorf("ingest external result: %w", err)
	}

	s.appendLog(ctx, query, ingestSuccess, &workID)
	s.Hub.Publish(events.Event{Type: "search.ingest", WorkID: workID, Query: query})
	log.Printf("[search] ingested %q from %s as work %s", vol.Title, s.Provider.Name(), workID)
	return nil
}

// ingest persists author, work, link and (when an ISBN is present) one
// edition inside a single transaction. The audit log row is written by the
// caller after commit as a best-effort trailing step.
func (s *Service) ingest(ctx context.Context, vol *metadata.Volume) (string, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	authorID := ""
	if strings.TrimSpace(vol.Author) != "" {
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM authors WHERE name = ?`, vol.Author).Scan(&authorID)
		if err == sql.ErrNoRows {
			authorID = uuid.NewString()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO authors (id, name) VALUES (?, ?)`, authorID, vol.Author); err != nil {
				return "", fmt.Errorf("insert author: %w", err)
			}
		} else if err != nil {
			return "", fmt.Errorf("find author: %w", err)
		}
	}

	workID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO works (id, title, author, description, cover_url, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, workID, vol.Title, vol.Author, vol.Description, vol.CoverURL); err != nil {
		return "", fmt.Errorf("insert work: %w", err)
	}

	if authorID != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO work_authors (work_id, author_id) VALUES (?, ?)
		`, workID, authorID); err != nil {
			return "", fmt.Errorf("link work author: %w", err)
		}
	}

	if strings.TrimSpace(vol.ISBN13) != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO editions (id, work_id, type, format, isbn, release_date, updated_at)
			VALUES (?, ?, 'print', 'unknown', ?, ?, CURRENT_TIMESTAMP)
		`, uuid.NewString(), workID, vol.ISBN13, nullStr(&vol.PublishedDate)); err != nil {
			return "", fmt.Errorf("insert edition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	return workID, nil
}

func (s *Service) appendLog(ctx context.Context, query, status string, workID *string) {
	if err := s.Log.Append(ctx, query, s.Provider.Name(), status, workID); err != nil {
		log.Printf("[search] ingest log write failed: %v", err)
	}
}
