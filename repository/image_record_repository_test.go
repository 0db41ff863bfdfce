package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/wastesortbackend/database"
	"github.com/camden-git/wastesortbackend/models"
)

func setupTestRepo(t *testing.T) (*ImageRecordRepository, *gorm.DB) {
	t.Helper()

	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	require.NoError(t, database.EnsureRecordTable(db))

	return NewImageRecordRepository(db, 5*time.Second), db
}

func testRecord(imageName, class, confidence string) *models.ImageRecord {
	return &models.ImageRecord{
		ImageName:       imageName,
		ArtifactPath:    "uploads/" + imageName,
		PredictedClass:  class,
		ConfidenceScore: decimal.RequireFromString(confidence),
		UploadDate:      "05/23/2025",
	}
}

func recordCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.ImageRecord{}).Count(&count).Error)
	return count
}

func TestPutThenGetReturnsEqualRecord(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	record := testRecord("1748000000-42-leaf.jpg", "Vegetation", "0.91")
	require.NoError(t, repo.Put(ctx, record))

	got, err := repo.Get(ctx, record.ImageName)
	require.NoError(t, err)

	assert.Equal(t, record.ImageName, got.ImageName)
	assert.Equal(t, record.ArtifactPath, got.ArtifactPath)
	assert.Equal(t, record.PredictedClass, got.PredictedClass)
	assert.True(t, record.ConfidenceScore.Equal(got.ConfidenceScore),
		"confidence should read back exactly as written, got %s", got.ConfidenceScore)
	assert.Equal(t, models.FeedbackUnset, got.UserLabelConfirmed)
	assert.Empty(t, got.UserLabelChoice)
	assert.Equal(t, record.UploadDate, got.UploadDate)
}

func TestGetMissingRecord(t *testing.T) {
	repo, _ := setupTestRepo(t)

	_, err := repo.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutRejectsInvalidRecords(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		record *models.ImageRecord
	}{
		{name: "empty image name", record: testRecord("", "Paper", "0.5")},
		{name: "unknown class", record: testRecord("a.jpg", "Unobtanium", "0.5")},
		{name: "confidence above one", record: testRecord("b.jpg", "Paper", "1.01")},
		{name: "confidence below zero", record: testRecord("c.jpg", "Paper", "-0.01")},
		{
			name: "empty upload date",
			record: &models.ImageRecord{
				ImageName:       "d.jpg",
				ArtifactPath:    "uploads/d.jpg",
				PredictedClass:  "Paper",
				ConfidenceScore: decimal.RequireFromString("0.5"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Put(ctx, tt.record)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	assert.Zero(t, recordCount(t, db), "rejected records must never reach the store")
}

func TestPutAcceptsConfidenceBounds(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testRecord("low.jpg", "Glass", "0")))
	require.NoError(t, repo.Put(ctx, testRecord("high.jpg", "Glass", "1")))
}

func TestUpdateFeedbackOnlyTouchesFeedbackFields(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	record := testRecord("1748000000-7-leaf.jpg", "Vegetation", "0.91")
	require.NoError(t, repo.Put(ctx, record))

	fields, err := repo.UpdateFeedback(ctx, record.ImageName, models.FeedbackRejected, "Paper")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackRejected, fields.UserLabelConfirmed)
	assert.Equal(t, "Paper", fields.UserLabelChoice)

	got, err := repo.Get(ctx, record.ImageName)
	require.NoError(t, err)

	assert.Equal(t, models.FeedbackRejected, got.UserLabelConfirmed)
	assert.Equal(t, "Paper", got.UserLabelChoice)

	// everything the prediction wrote stays untouched
	assert.Equal(t, record.ArtifactPath, got.ArtifactPath)
	assert.Equal(t, "Vegetation", got.PredictedClass)
	assert.True(t, record.ConfidenceScore.Equal(got.ConfidenceScore))
	assert.Equal(t, record.UploadDate, got.UploadDate)
}

func TestUpdateFeedbackIsIdempotentOverwrite(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	record := testRecord("again.jpg", "Metal", "0.6")
	require.NoError(t, repo.Put(ctx, record))

	_, err := repo.UpdateFeedback(ctx, record.ImageName, models.FeedbackRejected, "Glass")
	require.NoError(t, err)
	_, err = repo.UpdateFeedback(ctx, record.ImageName, models.FeedbackRejected, "Glass")
	require.NoError(t, err)

	got, err := repo.Get(ctx, record.ImageName)
	require.NoError(t, err)
	assert.Equal(t, "Glass", got.UserLabelChoice)
}

func TestUpdateFeedbackNeverUpserts(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpdateFeedback(ctx, "does-not-exist", models.FeedbackConfirmed, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, recordCount(t, db), "a failed feedback update must not create a record")
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	record := testRecord("gone.jpg", "Food", "0.3")
	require.NoError(t, repo.Put(ctx, record))

	require.NoError(t, repo.Delete(ctx, record.ImageName))
	require.NoError(t, repo.Delete(ctx, record.ImageName), "deleting an absent key is not an error")

	_, err := repo.Get(ctx, record.ImageName)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryByClass(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testRecord("1-1-bottle.jpg", "Plastic", "0.8")))
	require.NoError(t, repo.Put(ctx, testRecord("1-2-leaf.jpg", "Vegetation", "0.9")))
	require.NoError(t, repo.Put(ctx, testRecord("1-3-can.jpg", "Metal", "0.7")))

	records, err := repo.QueryByClass(ctx, "Plastic")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1-1-bottle.jpg", records[0].ImageName)

	records, err = repo.QueryByClass(ctx, "Cardboard")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryByClassNaturalOrder(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	// lexical order would put img-10 before img-2
	require.NoError(t, repo.Put(ctx, testRecord("img-10.jpg", "Paper", "0.5")))
	require.NoError(t, repo.Put(ctx, testRecord("img-2.jpg", "Paper", "0.5")))
	require.NoError(t, repo.Put(ctx, testRecord("img-1.jpg", "Paper", "0.5")))

	records, err := repo.QueryByClass(ctx, "Paper")
	require.NoError(t, err)
	require.Len(t, records, 3)

	names := []string{records[0].ImageName, records[1].ImageName, records[2].ImageName}
	assert.Equal(t, []string{"img-1.jpg", "img-2.jpg", "img-10.jpg"}, names)
}

func TestQueryByClassRejectsUnknownClass(t *testing.T) {
	repo, _ := setupTestRepo(t)

	_, err := repo.QueryByClass(context.Background(), "NotAClass")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExpiredDeadlineReportsUnavailable(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testRecord("slow.jpg", "Metal", "0.6")))

	// a timeout this short has expired before the driver runs anything
	hurried := NewImageRecordRepository(db, time.Nanosecond)

	err := hurried.Put(ctx, testRecord("late.jpg", "Metal", "0.6"))
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = hurried.Get(ctx, "slow.jpg")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDropThenOperationsReportSchemaConflict(t *testing.T) {
	repo, db := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testRecord("x.jpg", "Glass", "0.4")))
	require.NoError(t, repo.Drop(ctx))

	_, err := repo.Get(ctx, "x.jpg")
	assert.ErrorIs(t, err, ErrSchemaConflict)

	err = repo.Put(ctx, testRecord("y.jpg", "Glass", "0.4"))
	assert.ErrorIs(t, err, ErrSchemaConflict)

	// re-provisioning brings the store back
	require.NoError(t, database.EnsureRecordTable(db))
	require.NoError(t, repo.Put(ctx, testRecord("y.jpg", "Glass", "0.4")))
}
