package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franckalain/platecheck/internal/models"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetAnalysis(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	record := &models.AnalysisRecord{
		ID:                "rec-1",
		IsFood:            true,
		FoodName:          "Apple",
		EstimatedCalories: "95",
		HealthScore:       85,
		MimeType:          "image/jpeg",
		ImageSize:         2048,
	}
	require.NoError(t, db.SaveAnalysis(ctx, record))

	got, err := db.GetAnalysis(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Apple", got.FoodName)
	assert.Equal(t, "95", got.EstimatedCalories)
	assert.Equal(t, 85, got.HealthScore)
	assert.True(t, got.IsFood)
	assert.Equal(t, int64(2048), got.ImageSize)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetAnalysis_NotFound(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetAnalysis(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetRecentAnalyses_OrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"Oldest", "Middle", "Newest"} {
		require.NoError(t, db.SaveAnalysis(ctx, &models.AnalysisRecord{
			ID:        name,
			IsFood:    true,
			FoodName:  name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := db.GetRecentAnalyses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Newest", records[0].FoodName)
	assert.Equal(t, "Middle", records[1].FoodName)
}

func TestSaveAnalysis_NonFood(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveAnalysis(ctx, &models.AnalysisRecord{
		ID:       "rec-nf",
		IsFood:   false,
		MimeType: "image/png",
	}))

	got, err := db.GetAnalysis(ctx, "rec-nf")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsFood)
	assert.Empty(t, got.FoodName)
}
