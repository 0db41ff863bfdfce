package models

import "github.com/shopspring/decimal"

// Feedback tri-state values for ImageRecord.UserLabelConfirmed. A freshly
// ingested record carries FeedbackUnset until a human reviews the prediction.
const (
	FeedbackUnset     = ""
	FeedbackConfirmed = "true"
	FeedbackRejected  = "false"
)

// ImageRecord represents one classified upload in the database using GORM.
// It corresponds to the 'image_records' table, keyed by the generated
// image name. ConfidenceScore is kept as an exact decimal so the value read
// back always equals the value written, with no binary float drift.
type ImageRecord struct {
	ImageName       string          `gorm:"primaryKey" json:"image_name"`
	ArtifactPath    string          `gorm:"not null" json:"artifact_path"`
	PredictedClass  string          `gorm:"index;not null" json:"predicted_class"`
	// text affinity keeps sqlite from coercing the value into a binary
	// float on write
	ConfidenceScore decimal.Decimal `gorm:"type:text;not null" json:"confidence_score"`

	// human feedback, both empty until a reviewer responds
	UserLabelConfirmed string `gorm:"default:''" json:"user_label_confirmed"`
	UserLabelChoice    string `gorm:"default:''" json:"user_label_choice"`

	UploadDate string `gorm:"not null" json:"upload_date"` // immutable after creation
}

// TableName explicitly sets the table name for GORM.
func (ImageRecord) TableName() string {
	return "image_records"
}
