package models

import "time"

type Work struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"` // denormalized display name; work_authors is canonical
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type WorkAuthor struct {
	WorkID   string `json:"work_id"`
	AuthorID string `json:"author_id"`
}
