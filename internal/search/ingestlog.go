package search

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/pkg/models"
)

const (
	ingestSuccess  = "success"
	ingestNotFound = "not_found"
)

// IngestLog is the append-only audit trail of external-fallback attempts.
// Rows are never updated or deleted.
type IngestLog struct {
	DB *sql.DB
}

func NewIngestLog(db *sql.DB) *IngestLog {
	return &IngestLog{DB: db}
}

func (l *IngestLog) Append(ctx context.Context, query, source, status string, workID *string) error {
	_, err := l.DB.ExecContext(ctx, `
		INSERT INTO external_ingests (query, source, status, work_id, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, query, source, status, nullStr(workID))
	if err != nil {
		return fmt.Errorf("append ingest log: %w", err)
	}
	return nil
}

// Recent returns the latest attempts, newest first.
func (l *IngestLog) Recent(ctx context.Context, limit int) ([]models.ExternalIngest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := l.DB.QueryContext(ctx, `
		SELECT id, query, source, status, work_id, created_at
		FROM external_ingests
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list ingest log: %w", err)
	}
	defer rows.Close()

	out := []models.ExternalIngest{}
	for rows.Next() {
		var (
			rec    models.ExternalIngest
			workID sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Source, &rec.Status, &workID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingest row: %w", err)
		}
		if workID.Valid {
			v := workID.String
			rec.WorkID = &v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func nullStr(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}
