package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestDocument(id, tenantID string) *rundown.Document {
	now := time.Now().UTC().Truncate(time.Second)
	return &rundown.Document{
		ID:         id,
		TenantID:   tenantID,
		Title:      "Evening News",
		StartTime:  "18:00:00",
		Tick:       0,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

func TestDocumentRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc := newTestDocument("d1", "tenant1")
	require.NoError(t, repo.Create(ctx, "tenant1", doc))

	retrieved, err := repo.Get(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, "Evening News", retrieved.Title)
	require.Equal(t, "18:00:00", retrieved.StartTime)
	require.False(t, retrieved.NumberingLocked)
	require.Empty(t, retrieved.Items)

	_, err = repo.Get(ctx, "tenant1", "nonexistent")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestDocumentRepository_TenantIsolation(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "tenant1", newTestDocument("d1", "tenant1")))

	_, err := repo.Get(ctx, "tenant2", "d1")
	require.Equal(t, repository.ErrNotFound, err)

	summaries, err := repo.List(ctx, "tenant2")
	require.NoError(t, err)
	require.Empty(t, summaries)
}

func TestDocumentRepository_GetLoadsItemsInOrder(t *testing.T) {
	db := NewTestDB(t)
	docs := NewDocumentRepository(db)
	items := NewItemRepository(db)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "tenant1", newTestDocument("d1", "tenant1")))
	require.NoError(t, items.Insert(ctx, "tenant1", "d1", &rundown.Item{ID: "b", Kind: rundown.KindRegular, Name: "Weather"}, 0))
	require.NoError(t, items.Insert(ctx, "tenant1", "d1", &rundown.Item{ID: "a", Kind: rundown.KindHeader, Name: "Part One"}, 0))

	doc, err := docs.Get(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	require.Equal(t, "a", doc.Items[0].ID)
	require.Equal(t, "b", doc.Items[1].ID)
}

func TestDocumentRepository_LockedNumbersRoundTrip(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc := newTestDocument("d1", "tenant1")
	require.NoError(t, repo.Create(ctx, "tenant1", doc))

	doc.NumberingLocked = true
	doc.LockedNumbers = map[string]string{"a": "1", "b": "1.1"}
	doc.Tick = 1
	require.NoError(t, repo.UpdateMeta(ctx, "tenant1", doc, 0))

	retrieved, err := repo.Get(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.True(t, retrieved.NumberingLocked)
	require.Equal(t, map[string]string{"a": "1", "b": "1.1"}, retrieved.LockedNumbers)
}

func TestDocumentRepository_UpdateMetaStaleTick(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc := newTestDocument("d1", "tenant1")
	require.NoError(t, repo.Create(ctx, "tenant1", doc))

	doc.Title = "Late News"
	doc.Tick = 5
	err := repo.UpdateMeta(ctx, "tenant1", doc, 4)
	require.Equal(t, repository.ErrConflict, err)

	missing := newTestDocument("ghost", "tenant1")
	err = repo.UpdateMeta(ctx, "tenant1", missing, 0)
	require.Equal(t, repository.ErrNotFound, err)
}

func TestDocumentRepository_IncrementTick(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, "tenant1", newTestDocument("d1", "tenant1")))

	tick, err := repo.IncrementTick(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, int64(1), tick)

	tick, err = repo.IncrementTick(ctx, "tenant1", "d1")
	require.NoError(t, err)
	require.Equal(t, int64(2), tick)

	_, err = repo.IncrementTick(ctx, "tenant1", "nonexistent")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestDocumentRepository_List(t *testing.T) {
	db := NewTestDB(t)
	docs := NewDocumentRepository(db)
	items := NewItemRepository(db)
	ctx := context.Background()

	d1 := newTestDocument("d1", "tenant1")
	d2 := newTestDocument("d2", "tenant1")
	d2.Title = "Morning Show"
	d2.CreatedAt = d1.CreatedAt.Add(time.Minute)
	require.NoError(t, docs.Create(ctx, "tenant1", d1))
	require.NoError(t, docs.Create(ctx, "tenant1", d2))
	require.NoError(t, items.Insert(ctx, "tenant1", "d1", &rundown.Item{ID: "a", Kind: rundown.KindRegular}, 0))

	summaries, err := docs.List(ctx, "tenant1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "d1", summaries[0].ID)
	require.Equal(t, 1, summaries[0].ItemCount)
	require.Equal(t, 0, summaries[1].ItemCount)
}

func TestDocumentRepository_DeleteCascades(t *testing.T) {
	db := NewTestDB(t)
	docs := NewDocumentRepository(db)
	items := NewItemRepository(db)
	ctx := context.Background()

	require.NoError(t, docs.Create(ctx, "tenant1", newTestDocument("d1", "tenant1")))
	require.NoError(t, items.Insert(ctx, "tenant1", "d1", &rundown.Item{ID: "a", Kind: rundown.KindRegular}, 0))

	require.NoError(t, docs.Delete(ctx, "tenant1", "d1"))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM items").Scan(&count))
	require.Equal(t, 0, count)

	err := docs.Delete(ctx, "tenant1", "d1")
	require.Equal(t, repository.ErrNotFound, err)
}
