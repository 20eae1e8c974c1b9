package edition

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bookhub/pkg/models"
)

// Row is one edition exactly as stored, before any field coercion.
type Row struct {
	ID             string
	WorkID         string
	Type           string
	Format         string
	ISBN           sql.NullString
	ASIN           sql.NullString
	Narrator       sql.NullString
	Abridged       int64
	PageCount      sql.NullInt64
	Runtime        sql.NullString
	ReleaseDate    sql.NullString
	Language       sql.NullString
	Publisher      sql.NullString
	SeriesName     sql.NullString
	SeriesPosition sql.NullFloat64
	Explicit       int64
	Genres         sql.NullString
	Tags           sql.NullString
	UpdatedAt      time.Time
}

var runtimePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})$`)

// NormalizeRuntime converts a stored runtime string into HH:MM:SS form.
// Already-shaped values pass through with the hour zero-padded; a bare
// integer is read as a total-seconds count; anything else is returned
// unchanged. Idempotent.
func NormalizeRuntime(s string) string {
	if m := runtimePattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s:%s", h, m[2], m[3])
	}
	if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
		return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return s
}

// SplitList splits a comma-joined stored value into trimmed segments.
// Empty or unset input yields an empty slice, never [""].
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nullableString(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

// Normalize converts a stored row into the caller-facing edition shape.
// Pure transform; normalizing twice yields the same value.
func Normalize(r Row) models.Edition {
	e := models.Edition{
		ID:          r.ID,
		WorkID:      r.WorkID,
		Type:        r.Type,
		Format:      r.Format,
		ISBN:        nullableString(r.ISBN),
		ASIN:        nullableString(r.ASIN),
		Narrator:    nullableString(r.Narrator),
		Abridged:    r.Abridged != 0,
		Explicit:    r.Explicit != 0,
		ReleaseDate: nullableString(r.ReleaseDate),
		Language:    nullableString(r.Language),
		Publisher:   nullableString(r.Publisher),
		SeriesName:  nullableString(r.SeriesName),
		Genres:      SplitList(r.Genres.String),
		Tags:        SplitList(r.Tags.String),
		UpdatedAt:   r.UpdatedAt,
	}
	if r.PageCount.Valid {
		n := int(r.PageCount.Int64)
		e.PageCount = &n
	}
	if r.SeriesPosition.Valid {
		p := r.SeriesPosition.Float64
		e.SeriesPosition = &p
	}
	if r.Runtime.Valid && r.Runtime.String != "" {
		rt := NormalizeRuntime(r.Runtime.String)
		e.Runtime = &rt
	}
	return e
}
