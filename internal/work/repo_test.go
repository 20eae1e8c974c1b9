package work

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"bookhub/pkg/database"
	"bookhub/pkg/models"
)

func newTestRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepo(db), db
}

func TestUpsertByCallerID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, models.Work{ID: "w1", Title: "The Martian"})
	require.NoError(t, err)
	require.True(t, created)

	// resubmitting the same id updates in place
	created, err = repo.Upsert(ctx, models.Work{ID: "w1", Title: "The Martian", Description: "stranded"})
	require.NoError(t, err)
	require.False(t, created)

	w, err := repo.GetByID(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, w)
	require.Equal(t, "stranded", w.Description)

	items, total, err := repo.List(ctx, "", 20, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)
}

func TestListTitleFilter(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, w := range []models.Work{
		{ID: "w1", Title: "Dune"},
		{ID: "w2", Title: "Dune Messiah"},
		{ID: "w3", Title: "Hyperion"},
	} {
		_, err := repo.Upsert(ctx, w)
		require.NoError(t, err)
	}

	items, total, err := repo.List(ctx, "dune", 20, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, items, 2)
}

func TestDeleteCascades(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.Work{ID: "w1", Title: "Doomed"})
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO authors (id, name) VALUES ('a1', 'Somebody')`)
	require.NoError(t, err)
	require.NoError(t, repo.Link(ctx, "w1", "a1"))
	_, err = db.Exec(`
		INSERT INTO editions (id, work_id, type, format, isbn)
		VALUES ('e1', 'w1', 'print', 'hardcover', 'isbn-1')
	`)
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, "w1")
	require.NoError(t, err)
	require.True(t, ok)

	var editions, links int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM editions`).Scan(&editions))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM work_authors`).Scan(&links))
	require.Equal(t, 0, editions, "work delete cascades to editions")
	require.Equal(t, 0, links, "work delete cascades to link rows")

	// the author itself survives
	var authors int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM authors`).Scan(&authors))
	require.Equal(t, 1, authors)

	ok, err = repo.Delete(ctx, "w1")
	require.NoError(t, err)
	require.False(t, ok, "second delete reports nothing removed")
}

func TestLinkInsertOrIgnore(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, models.Work{ID: "w1", Title: "Linked"})
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO authors (id, name) VALUES ('a1', 'Somebody')`)
	require.NoError(t, err)

	require.NoError(t, repo.Link(ctx, "w1", "a1"))
	require.NoError(t, repo.Link(ctx, "w1", "a1"), "relinking the same pair is a no-op")

	var links int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM work_authors`).Scan(&links))
	require.Equal(t, 1, links)
}
