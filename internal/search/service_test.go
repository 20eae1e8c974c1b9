package search

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookhub/internal/events"
	"bookhub/internal/metadata"
	"bookhub/pkg/apperr"
	"bookhub/pkg/database"
)

// fakeProvider is a scripted metadata.Provider: it returns its configured
// volume/error and counts how often it was called.
type fakeProvider struct {
	vol   *metadata.Volume
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(ctx context.Context, query string) (*metadata.Volume, error) {
	f.calls++
	return f.vol, f.err
}

func newTestService(t *testing.T, p metadata.Provider) (*Service, *sql.DB) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, p, NewMemoryCooldown(60*time.Second), NewIngestLog(db), events.NewHub())
	return svc, db
}

func seedWork(t *testing.T, db *sql.DB, id, title string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO works (id, title) VALUES (?, ?)`, id, title)
	require.NoError(t, err)
}

func TestSearchRanking(t *testing.T) {
	provider := &fakeProvider{}
	svc, db := newTestService(t, provider)

	seedWork(t, db, "w1", "The Dune Encyclopedia") // substring match
	seedWork(t, db, "w2", "Dune Messiah")          // prefix match
	seedWork(t, db, "w3", "Dune")                  // exact match
	seedWork(t, db, "w4", "Hyperion")              // no match

	items, err := svc.Search(context.Background(), "dune", 20)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "Dune", items[0].Title, "exact case-insensitive match ranks first")
	require.Equal(t, "Dune Messiah", items[1].Title, "prefix match ranks second")
	require.Equal(t, "The Dune Encyclopedia", items[2].Title, "substring match ranks third")

	require.Zero(t, provider.calls, "local hit never reaches the provider")
}

func TestSearchLimit(t *testing.T) {
	svc, db := newTestService(t, &fakeProvider{})

	seedWork(t, db, "w1", "Dune")
	seedWork(t, db, "w2", "Dune Messiah")

	items, err := svc.Search(context.Background(), "dune", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Dune", items[0].Title)
}

func TestFallbackShortQuery(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(t, provider)

	_, err := svc.Search(context.Background(), "x", 20)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
	require.Zero(t, provider.calls, "rejected before any external work")
}

func TestFallbackCooldown(t *testing.T) {
	provider := &fakeProvider{} // vol nil: provider has no match
	svc, db := newTestService(t, provider)

	_, err := svc.Search(context.Background(), "dune", 20)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
	require.Equal(t, 1, provider.calls)

	// identical query within the window: 429, no second external call
	_, err = svc.Search(context.Background(), "dune", 20)
	require.True(t, apperr.IsKind(err, apperr.KindRateLimited))
	require.Equal(t, 1, provider.calls)

	// case variants share the cooldown key
	_, err = svc.Search(context.Background(), "DUNE", 20)
	require.True(t, apperr.IsKind(err, apperr.KindRateLimited))
	require.Equal(t, 1, provider.calls)

	// the miss was logged exactly once
	logged, err := NewIngestLog(db).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.Equal(t, "not_found", logged[0].Status)
	require.Nil(t, logged[0].WorkID)
}

func TestFallbackProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	svc, db := newTestService(t, provider)

	_, err := svc.Search(context.Background(), "dune", 20)
	require.Error(t, err)
	// network failure is presented the same as provider-empty: 404
	require.True(t, apperr.IsKind(err, apperr.KindUpstream))

	logged, err := NewIngestLog(db).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.Equal(t, "not_found", logged[0].Status)
}

func TestFallbackIngestEndToEnd(t *testing.T) {
	provider := &fakeProvider{vol: &metadata.Volume{
		Title:         "The Martian",
		Author:        "Andy Weir",
		Description:   "An astronaut is stranded on Mars.",
		PublishedDate: "2014-02-11",
		ISBN13:        "9780804139201",
		CoverURL:      "http://example.com/cover.jpg",
	}}
	svc, db := newTestService(t, provider)
	ctx := context.Background()

	items, err := svc.Search(ctx, "the martian", 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "The Martian", items[0].Title)
	require.Equal(t, "Andy Weir", items[0].Author)
	require.Equal(t, 1, provider.calls)

	workID := items[0].ID

	var authorID string
	require.NoError(t, db.QueryRow(`SELECT id FROM authors WHERE name = 'Andy Weir'`).Scan(&authorID))

	var linked int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM work_authors WHERE work_id = ? AND author_id = ?`,
		workID, authorID).Scan(&linked))
	require.Equal(t, 1, linked)

	var isbn string
	require.NoError(t, db.QueryRow(
		`SELECT isbn FROM editions WHERE work_id = ?`, workID).Scan(&isbn))
	require.Equal(t, "9780804139201", isbn)

	logged, err := NewIngestLog(db).Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.Equal(t, "success", logged[0].Status)
	require.NotNil(t, logged[0].WorkID)
	require.Equal(t, workID, *logged[0].WorkID)

	// the follow-up identical search is now a pure local hit
	items, err = svc.Search(ctx, "the martian", 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, provider.calls, "no second external call")
}

func TestFallbackIngestWithoutISBN(t *testing.T) {
	provider := &fakeProvider{vol: &metadata.Volume{
		Title:  "Obscure Pamphlet",
		Author: "Nobody Famous",
	}}
	svc, db := newTestService(t, provider)

	items, err := svc.Search(context.Background(), "obscure pamphlet", 20)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// no ISBN means no edition row, but work and author still land
	var editions int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM editions`).Scan(&editions))
	require.Equal(t, 0, editions)
}

func TestMemoryCooldownWindow(t *testing.T) {
	cd := NewMemoryCooldown(time.Minute)
	base := time.Now()

	require.True(t, cd.Allow("dune", base))
	require.False(t, cd.Allow("dune", base.Add(30*time.Second)))
	require.True(t, cd.Allow("dune", base.Add(61*time.Second)))
	require.True(t, cd.Allow("hyperion", base), "distinct queries do not share a window")
}
