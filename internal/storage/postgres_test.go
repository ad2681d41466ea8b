package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mocapboston/onboarding/internal/models"
)

func newTestDatabaseStore(t *testing.T) (*DatabaseStore, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	store := NewDatabaseStore(db)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store, db
}

// flags reads the two answer columns straight from the table
func flags(t *testing.T, db *gorm.DB, id string) (shareAnswer, galleryVisible bool) {
	t.Helper()
	row := db.Raw("SELECT share_answer, gallery_visible FROM sessions WHERE id = ?", id).Row()
	require.NoError(t, row.Scan(&shareAnswer, &galleryVisible))
	return shareAnswer, galleryVisible
}

func TestDatabaseStoreColumns(t *testing.T) {
	_, db := newTestDatabaseStore(t)

	for col := range models.AddToGalleryPatch().Columns() {
		assert.True(t, db.Migrator().HasColumn(&models.Session{}, col), "missing column %s", col)
	}
}

func TestDatabaseStoreGetSession(t *testing.T) {
	ctx := context.Background()
	store, db := newTestDatabaseStore(t)
	require.NoError(t, db.Create(&models.Session{ID: "abc123", GifID: "gif-abc", Processed: true}).Error)

	s, err := store.GetSession(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "gif-abc", s.GifID)
	assert.True(t, s.Processed)
	assert.False(t, s.ShareAnswer)

	_, err = store.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDatabaseStoreMergeSession(t *testing.T) {
	ctx := context.Background()

	t.Run("keep writes share_answer only", func(t *testing.T) {
		store, db := newTestDatabaseStore(t)
		require.NoError(t, db.Create(&models.Session{ID: "abc123", GifID: "gif-abc", Processed: true}).Error)

		require.NoError(t, store.MergeSession(ctx, "abc123", models.KeepPatch()))

		share, gallery := flags(t, db, "abc123")
		assert.True(t, share)
		assert.False(t, gallery)

		s, err := store.GetSession(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, "gif-abc", s.GifID)
	})

	t.Run("add writes both columns", func(t *testing.T) {
		store, db := newTestDatabaseStore(t)
		stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Create(&models.Session{ID: "abc123", Processed: true, UpdatedAt: stale}).Error)

		require.NoError(t, store.MergeSession(ctx, "abc123", models.AddToGalleryPatch()))

		share, gallery := flags(t, db, "abc123")
		assert.True(t, share)
		assert.True(t, gallery)

		s, err := store.GetSession(ctx, "abc123")
		require.NoError(t, err)
		assert.True(t, s.UpdatedAt.After(stale))
	})

	t.Run("never creates a row", func(t *testing.T) {
		store, db := newTestDatabaseStore(t)

		err := store.MergeSession(ctx, "ghost", models.AddToGalleryPatch())
		assert.ErrorIs(t, err, ErrSessionNotFound)

		var count int64
		require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestDatabaseStoreListGallery(t *testing.T) {
	ctx := context.Background()
	store, db := newTestDatabaseStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create([]*models.Session{
		{ID: "old001", Processed: true, GalleryVisible: true, UpdatedAt: base},
		{ID: "new001", Processed: true, GalleryVisible: true, UpdatedAt: base.Add(time.Hour)},
		{ID: "tie002", Processed: true, GalleryVisible: true, UpdatedAt: base.Add(30 * time.Minute)},
		{ID: "tie001", Processed: true, GalleryVisible: true, UpdatedAt: base.Add(30 * time.Minute)},
		{ID: "pend01", GalleryVisible: true, UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "priv01", Processed: true, ShareAnswer: true, UpdatedAt: base.Add(2 * time.Hour)},
	}).Error)

	ids := func(sessions []*models.Session) []string {
		var out []string
		for _, s := range sessions {
			out = append(out, s.ID)
		}
		return out
	}

	sessions, err := store.ListGallery(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"new001", "tie001", "tie002", "old001"}, ids(sessions))

	sessions, err = store.ListGallery(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"new001", "tie001"}, ids(sessions))
}

func TestDatabaseStorePing(t *testing.T) {
	store, _ := newTestDatabaseStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
