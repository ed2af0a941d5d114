package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

// setupInMemoryDB creates a new SQLiteAdapter used for testing
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	adapter, err := NewSQLiteAdapter(":memory:", Options{})
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func TestConfiguration_GetMissing(t *testing.T) {
	adapter := setupInMemoryDB(t)

	cfg, err := adapter.GetConfiguration(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestConfiguration_Upsert(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	first, err := adapter.UpsertConfiguration(ctx, domain.DefaultScoringConfiguration("analyst"))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.NotZero(t, first.ID)
	assert.Equal(t, 0.4, first.BioRelevanceWeight)

	changed := domain.DefaultScoringConfiguration("analyst")
	changed.BioRelevanceWeight = 0.2
	changed.CVSSWeight = 0.5
	changed.SoleSourceMultiplier = 2.5
	changed.UpdatedAt = time.Now().UTC()

	second, err := adapter.UpsertConfiguration(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "one row per user")
	assert.Equal(t, 0.2, second.BioRelevanceWeight)
	assert.Equal(t, 0.5, second.CVSSWeight)
	assert.Equal(t, 2.5, second.SoleSourceMultiplier)

	var count int64
	require.NoError(t, adapter.db.Model(&ConfigurationModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfiguration_EnsureDefaultKeepsExisting(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	custom := domain.DefaultScoringConfiguration("default")
	custom.SoleSourceMultiplier = 2.0
	_, err := adapter.UpsertConfiguration(ctx, custom)
	require.NoError(t, err)

	require.NoError(t, adapter.EnsureDefaultConfiguration(ctx, domain.DefaultScoringConfiguration("default")))

	stored, err := adapter.GetConfiguration(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, 2.0, stored.SoleSourceMultiplier)

	require.NoError(t, adapter.EnsureDefaultConfiguration(ctx, domain.DefaultScoringConfiguration("fresh")))
	fresh, err := adapter.GetConfiguration(ctx, "fresh")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, 1.5, fresh.SoleSourceMultiplier)
}

func TestComments_SaveListDelete(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()
	v1, v2 := int64(1), int64(2)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []domain.Comment{
		{Content: "first", Author: "a", CommentType: domain.CommentGeneral, CreatedAt: base},
		{Content: "second", Author: "a", VulnerabilityID: &v1, CommentType: domain.CommentVulnerability, CreatedAt: base.Add(time.Minute)},
		{Content: "third", Author: "AI Verification System", VulnerabilityID: &v2, CommentType: domain.CommentAction, Action: "verified", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range entries {
		require.NoError(t, adapter.SaveComment(ctx, &entries[i]))
		assert.NotZero(t, entries[i].ID)
	}

	all, err := adapter.ListComments(ctx, domain.CommentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Content, "newest first")
	assert.Equal(t, "first", all[2].Content)
	assert.Equal(t, "verified", all[0].Action)
	assert.Nil(t, all[2].VulnerabilityID)

	byVuln, err := adapter.ListComments(ctx, domain.CommentFilter{VulnerabilityID: &v1})
	require.NoError(t, err)
	require.Len(t, byVuln, 1)
	assert.Equal(t, "second", byVuln[0].Content)

	byType, err := adapter.ListComments(ctx, domain.CommentFilter{CommentType: domain.CommentAction})
	require.NoError(t, err)
	require.Len(t, byType, 1)

	limited, err := adapter.ListComments(ctx, domain.CommentFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, adapter.DeleteComment(ctx, entries[0].ID))
	assert.ErrorIs(t, adapter.DeleteComment(ctx, entries[0].ID), domain.ErrCommentNotFound)
}

func TestNewSQLiteAdapter_FileWithTracing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biowatch.db")

	adapter, err := NewSQLiteAdapter(path, Options{Tracing: true})
	require.NoError(t, err)

	_, err = adapter.UpsertConfiguration(context.Background(), domain.DefaultScoringConfiguration(""))
	require.NoError(t, err)
	require.NoError(t, adapter.Close())

	// Reopen and read back
	reopened, err := NewSQLiteAdapter(path, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	cfg, err := reopened.GetConfiguration(context.Background(), "default")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 0.3, cfg.CVSSWeight)
}
