package models

import "time"

// Edition is the caller-facing shape of one stored edition row after
// normalization. Optional fields are pointers so an unset value serializes
// as an explicit JSON null rather than disappearing from the payload.
type Edition struct {
	ID             string    `json:"id"`
	WorkID         string    `json:"work_id"`
	Type           string    `json:"type"`   // print / ebook / audiobook / open string
	Format         string    `json:"format"` // free text
	ISBN           *string   `json:"isbn"`
	ASIN           *string   `json:"asin"`
	Narrator       *string   `json:"narrator"`
	Abridged       bool      `json:"abridged"`
	Explicit       bool      `json:"explicit"`
	PageCount      *int      `json:"page_count"`
	Runtime        *string   `json:"runtime"` // normalized HH:MM:SS where possible
	ReleaseDate    *string   `json:"release_date"`
	Language       *string   `json:"language"`
	Publisher      *string   `json:"publisher"`
	SeriesName     *string   `json:"series_name"`
	SeriesPosition *float64  `json:"series_position"`
	Genres         []string  `json:"genres"`
	Tags           []string  `json:"tags"`
	UpdatedAt      time.Time `json:"updated_at"`
}
