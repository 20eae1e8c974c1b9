package edition

import "strings"

// DiscoverQuery enumerates every recognized discovery filter together with
// its comparison semantics. Unknown query keys never reach this struct, so
// nothing outside this list can influence the generated SQL.
type DiscoverQuery struct {
	// exact-match equality
	Type       string
	Format     string
	Language   string
	Publisher  string
	SeriesName string

	// boolean; set only when the caller sent the parameter
	Explicit *bool
	Abridged *bool

	// substring match against the comma-joined stored value
	Genre string
	Tag   string

	Sort   string // validated against sortFields; falls back to release_date
	Order  string // "asc" or anything-else = desc
	Limit  int
	Offset int
}

// sortFields is the allow-list for ORDER BY. Anything not listed falls back
// to release_date so callers can never inject an arbitrary field.
var sortFields = map[string]bool{
	"release_date": true,
	"runtime":      true,
	"page_count":   true,
}

const editionColumns = `
	id, work_id, type, format, isbn, asin, narrator, abridged, page_count,
	runtime, release_date, language, publisher, series_name, series_position,
	explicit, genres, tags, updated_at
`

// buildDiscoverSQL builds either the COUNT(*) or the page SELECT for the
// same predicate, so pagination totals always agree with the returned slice.
func buildDiscoverSQL(q DiscoverQuery, countOnly bool) (string, []any) {
	sqlStr := `SELECT` + editionColumns + `FROM editions`
	if countOnly {
		sqlStr = `SELECT COUNT(*) FROM editions`
	}

	var where []string
	var args []any

	equals := []struct {
		col string
		val string
	}{
		{"type", q.Type},
		{"format", q.Format},
		{"language", q.Language},
		{"publisher", q.Publisher},
		{"series_name", q.SeriesName},
	}
	for _, eq := range equals {
		if strings.TrimSpace(eq.val) != "" {
			where = append(where, eq.col+" = ?")
			args = append(args, strings.TrimSpace(eq.val))
		}
	}

	if q.Explicit != nil {
		where = append(where, "explicit = ?")
		args = append(args, boolToInt(*q.Explicit))
	}
	if q.Abridged != nil {
		where = append(where, "abridged = ?")
		args = append(args, boolToInt(*q.Abridged))
	}

	if strings.TrimSpace(q.Genre) != "" {
		where = append(where, "LOWER(genres) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q.Genre))+"%")
	}
	if strings.TrimSpace(q.Tag) != "" {
		where = append(where, "LOWER(tags) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q.Tag))+"%")
	}

	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sort := q.Sort
		if !sortFields[sort] {
			sort = "release_date"
		}
		dir := "DESC"
		if strings.EqualFold(q.Order, "asc") {
			dir = "ASC"
		}
		sqlStr += " ORDER BY " + sort + " " + dir

		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		sqlStr += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
