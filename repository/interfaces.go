package repository

import (
	"context"

	"github.com/camden-git/wastesortbackend/models"
)

// ImageRecordRepositoryInterface defines the methods for image record data
// operations. Each call is atomic at single-record granularity; there are no
// multi-record transactions.
type ImageRecordRepositoryInterface interface {
	Put(ctx context.Context, record *models.ImageRecord) error
	Get(ctx context.Context, imageName string) (*models.ImageRecord, error)
	QueryByClass(ctx context.Context, predictedClass string) ([]models.ImageRecord, error)
	UpdateFeedback(ctx context.Context, imageName, confirmed, choice string) (*FeedbackFields, error)
	Delete(ctx context.Context, imageName string) error
	Drop(ctx context.Context) error
}
