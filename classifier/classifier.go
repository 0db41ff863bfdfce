package classifier

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrClassificationFailed is returned when the external scorer cannot produce
// a usable prediction for an image.
var ErrClassificationFailed = errors.New("classification failed")

// Prediction is the scorer's answer for a single image.
type Prediction struct {
	Class      string
	Confidence decimal.Decimal
}

// Classifier scores raw image bytes against the waste category model.
// Implementations may be slow; callers pass a context to bound the wait.
type Classifier interface {
	Classify(ctx context.Context, imageBytes []byte) (Prediction, error)
}
