package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/facette/natsort"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/camden-git/wastesortbackend/classifier"
	"github.com/camden-git/wastesortbackend/database"
	"github.com/camden-git/wastesortbackend/models"
)

var (
	confidenceMin = decimal.Zero
	confidenceMax = decimal.NewFromInt(1)
)

// FeedbackFields holds the two record fields a feedback update is allowed to
// touch, as written by UpdateFeedback.
type FeedbackFields struct {
	UserLabelConfirmed string `json:"user_label_confirmed"`
	UserLabelChoice    string `json:"user_label_choice"`
}

// ImageRecordRepository handles database operations for ImageRecord entities
type ImageRecordRepository struct {
	DB        *gorm.DB
	OpTimeout time.Duration
}

// NewImageRecordRepository creates a new instance of ImageRecordRepository.
// opTimeout bounds every store operation; on expiry the operation is reported
// as ErrUnavailable.
func NewImageRecordRepository(db *gorm.DB, opTimeout time.Duration) *ImageRecordRepository {
	return &ImageRecordRepository{DB: db, OpTimeout: opTimeout}
}

func (r *ImageRecordRepository) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.OpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.OpTimeout)
}

// ValidateRecord rejects malformed records before any store I/O.
func ValidateRecord(record *models.ImageRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidInput)
	}
	if record.ImageName == "" {
		return fmt.Errorf("%w: image_name is empty", ErrInvalidInput)
	}
	if !classifier.IsValidLabel(record.PredictedClass) {
		return fmt.Errorf("%w: predicted_class %q is not a known class", ErrInvalidInput, record.PredictedClass)
	}
	if record.ConfidenceScore.LessThan(confidenceMin) || record.ConfidenceScore.GreaterThan(confidenceMax) {
		return fmt.Errorf("%w: confidence_score %s is outside [0,1]", ErrInvalidInput, record.ConfidenceScore)
	}
	if record.UploadDate == "" {
		return fmt.Errorf("%w: upload_date is empty", ErrInvalidInput)
	}
	return nil
}

// Put writes the record keyed by its image name. The write is unconditional:
// ingestion always supplies a freshly generated identity, so an overwrite of
// the same key only happens on a retried ingestion attempt.
func (r *ImageRecordRepository) Put(ctx context.Context, record *models.ImageRecord) error {
	if err := ValidateRecord(record); err != nil {
		return err
	}

	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	if err := r.DB.WithContext(ctx).Save(record).Error; err != nil {
		log.Printf("repository: couldn't put record %s into %s: %v", record.ImageName, database.RecordTableName, err)
		return fmt.Errorf("failed to put record %s: %w", record.ImageName, classifyStoreError(err))
	}
	return nil
}

// Get retrieves a record by its image name.
func (r *ImageRecordRepository) Get(ctx context.Context, imageName string) (*models.ImageRecord, error) {
	if imageName == "" {
		return nil, fmt.Errorf("%w: image_name is empty", ErrInvalidInput)
	}

	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	var record models.ImageRecord
	err := r.DB.WithContext(ctx).Where("image_name = ?", imageName).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no record for %s: %w", imageName, ErrNotFound)
		}
		log.Printf("repository: couldn't get record %s from %s: %v", imageName, database.RecordTableName, err)
		return nil, fmt.Errorf("failed to get record %s: %w", imageName, classifyStoreError(err))
	}
	return &record, nil
}

// QueryByClass returns every record the model filed under predictedClass,
// in natural order of image name. The predicted_class column is indexed, so
// this never falls back to a full scan-and-filter.
func (r *ImageRecordRepository) QueryByClass(ctx context.Context, predictedClass string) ([]models.ImageRecord, error) {
	if !classifier.IsValidLabel(predictedClass) {
		return nil, fmt.Errorf("%w: predicted_class %q is not a known class", ErrInvalidInput, predictedClass)
	}

	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	var records []models.ImageRecord
	err := r.DB.WithContext(ctx).Where("predicted_class = ?", predictedClass).Find(&records).Error
	if err != nil {
		log.Printf("repository: couldn't query %s for class %s: %v", database.RecordTableName, predictedClass, err)
		return nil, fmt.Errorf("failed to query records for class %s: %w", predictedClass, classifyStoreError(err))
	}

	sortRecordsByName(records)
	return records, nil
}

func sortRecordsByName(records []models.ImageRecord) {
	names := make([]string, len(records))
	byName := make(map[string]models.ImageRecord, len(records))
	for i, rec := range records {
		names[i] = rec.ImageName
		byName[rec.ImageName] = rec
	}
	natsort.Sort(names)
	for i, name := range names {
		records[i] = byName[name]
	}
}

// UpdateFeedback sets the two human feedback fields on an existing record and
// returns the values written. It never touches any other column and never
// creates a record: a missing key is ErrNotFound, not an upsert.
func (r *ImageRecordRepository) UpdateFeedback(ctx context.Context, imageName, confirmed, choice string) (*FeedbackFields, error) {
	if imageName == "" {
		return nil, fmt.Errorf("%w: image_name is empty", ErrInvalidInput)
	}

	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	updates := map[string]interface{}{
		"user_label_confirmed": confirmed,
		"user_label_choice":    choice,
	}

	result := r.DB.WithContext(ctx).Model(&models.ImageRecord{}).
		Where("image_name = ?", imageName).
		Updates(updates)
	if result.Error != nil {
		log.Printf("repository: couldn't update feedback for %s in %s: %v", imageName, database.RecordTableName, result.Error)
		return nil, fmt.Errorf("failed to update feedback for %s: %w", imageName, classifyStoreError(result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("no record for %s: %w", imageName, ErrNotFound)
	}

	return &FeedbackFields{UserLabelConfirmed: confirmed, UserLabelChoice: choice}, nil
}

// Delete removes a record by its image name. Deleting a key that is already
// gone is not an error.
func (r *ImageRecordRepository) Delete(ctx context.Context, imageName string) error {
	if imageName == "" {
		return fmt.Errorf("%w: image_name is empty", ErrInvalidInput)
	}

	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	result := r.DB.WithContext(ctx).Where("image_name = ?", imageName).Delete(&models.ImageRecord{})
	if result.Error != nil {
		log.Printf("repository: couldn't delete record %s from %s: %v", imageName, database.RecordTableName, result.Error)
		return fmt.Errorf("failed to delete record %s: %w", imageName, classifyStoreError(result.Error))
	}
	return nil
}

// Drop removes the whole record table. Subsequent operations fail with
// ErrSchemaConflict until the table is provisioned again.
func (r *ImageRecordRepository) Drop(ctx context.Context) error {
	ctx, cancel := r.withDeadline(ctx)
	defer cancel()

	if err := database.DropRecordTable(r.DB.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to drop record store: %w", classifyStoreError(err))
	}
	return nil
}

// ensure the gorm implementation satisfies the interface
var _ ImageRecordRepositoryInterface = (*ImageRecordRepository)(nil)
