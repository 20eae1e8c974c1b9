package models

import "time"

// ExternalIngest records one external-fallback attempt. Append-only.
type ExternalIngest struct {
	ID        int64     `json:"id"`
	Query     string    `json:"query"`
	Source    string    `json:"source"`
	Status    string    `json:"status"` // "success" or "not_found"
	WorkID    *string   `json:"work_id"`
	CreatedAt time.Time `json:"created_at"`
}
