package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/camden-git/wastesortbackend/classifier"
	"github.com/camden-git/wastesortbackend/models"
	"github.com/camden-git/wastesortbackend/repository"
)

// FeedbackService applies human label feedback to existing records. It only
// ever updates the two feedback fields; a submission for an identity that was
// never issued is rejected, never turned into a new record.
type FeedbackService struct {
	records repository.ImageRecordRepositoryInterface
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(records repository.ImageRecordRepositoryInterface) *FeedbackService {
	return &FeedbackService{records: records}
}

// SubmitFeedback validates and applies one feedback submission. confirmed must
// be "true" or "false" (any casing; the original frontend sends "True"/"False").
// choice must name a class from the closed label set when the prediction was
// rejected, and must be empty (or the frontend's "NA" placeholder) when it was
// confirmed. Re-submitting feedback for the same identity overwrites the
// previous answer.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, imageName, confirmed, choice string) (*repository.FeedbackFields, error) {
	if strings.TrimSpace(imageName) == "" {
		return nil, fmt.Errorf("%w: image_name is required", ErrInvalidFeedback)
	}

	normalized := strings.ToLower(strings.TrimSpace(confirmed))
	if normalized != models.FeedbackConfirmed && normalized != models.FeedbackRejected {
		return nil, fmt.Errorf("%w: user_label_confirmed must be \"true\" or \"false\", got %q", ErrInvalidFeedback, confirmed)
	}

	choice = strings.TrimSpace(choice)
	if normalized == models.FeedbackConfirmed {
		if choice == "NA" {
			choice = ""
		}
		if choice != "" {
			return nil, fmt.Errorf("%w: user_label_choice must be empty when the prediction is confirmed", ErrInvalidFeedback)
		}
	} else {
		if !classifier.IsValidLabel(choice) {
			return nil, fmt.Errorf("%w: user_label_choice %q is not a known class", ErrInvalidFeedback, choice)
		}
	}

	fields, err := s.records.UpdateFeedback(ctx, imageName, normalized, choice)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no record for %s", ErrUnknownImage, imageName)
		}
		return nil, err
	}

	return fields, nil
}
