package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camden-git/wastesortbackend/classifier"
	"github.com/camden-git/wastesortbackend/identity"
	"github.com/camden-git/wastesortbackend/media"
	"github.com/camden-git/wastesortbackend/models"
	"github.com/camden-git/wastesortbackend/repository"
)

// layout for ImageRecord.UploadDate
const uploadDateLayout = "01/02/2006"

// IngestionResult is what a successful ingestion hands back to the caller.
type IngestionResult struct {
	ImageName      string          `json:"image_name"`
	PredictedClass string          `json:"predicted_class"`
	Confidence     decimal.Decimal `json:"confidence"`
}

// IngestionService runs the full upload pipeline: classify the image, mint an
// identity, persist the artifact, then create the record. Collaborators are
// injected so tests can substitute fakes for the scorer and both stores.
type IngestionService struct {
	classifier classifier.Classifier
	artifacts  media.Store
	records    repository.ImageRecordRepositoryInterface
	now        func() time.Time
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(c classifier.Classifier, artifacts media.Store, records repository.ImageRecordRepositoryInterface) *IngestionService {
	return &IngestionService{
		classifier: c,
		artifacts:  artifacts,
		records:    records,
		now:        time.Now,
	}
}

// Ingest classifies the uploaded bytes and persists the artifact and its
// record. Each step aborts the whole operation on failure. If the record
// write fails after the artifact was stored, the artifact is left in place
// and the error is ErrMetadataPersistFailed so the orphan can be found later;
// no rollback is attempted.
func (s *IngestionService) Ingest(ctx context.Context, originalFilename string, imageBytes []byte) (*IngestionResult, error) {
	if originalFilename == "" {
		return nil, fmt.Errorf("%w: original filename is empty", repository.ErrInvalidInput)
	}
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: image payload is empty", repository.ErrInvalidInput)
	}

	prediction, err := s.classifier.Classify(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	imageName := identity.Generate(originalFilename, issuedAt)

	artifactPath, err := s.artifacts.Save(media.AssetTypeUpload, "", imageName, bytes.NewReader(imageBytes))
	if err != nil {
		log.Printf("services: artifact save for %s failed: %v", imageName, err)
		return nil, fmt.Errorf("%w: %v", ErrArtifactPersistFailed, err)
	}

	record := &models.ImageRecord{
		ImageName:          imageName,
		ArtifactPath:       artifactPath,
		PredictedClass:     prediction.Class,
		ConfidenceScore:    prediction.Confidence,
		UserLabelConfirmed: models.FeedbackUnset,
		UserLabelChoice:    "",
		UploadDate:         issuedAt.Format(uploadDateLayout),
	}

	if err := s.records.Put(ctx, record); err != nil {
		// the artifact is already on disk with no record pointing at it
		log.Printf("services: record write for %s failed after artifact %s was stored: %v", imageName, artifactPath, err)
		return nil, fmt.Errorf("%w: %v", ErrMetadataPersistFailed, err)
	}

	return &IngestionResult{
		ImageName:      imageName,
		PredictedClass: prediction.Class,
		Confidence:     prediction.Confidence,
	}, nil
}
