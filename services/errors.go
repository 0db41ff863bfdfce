package services

import "errors"

// Workflow-level failures. Handlers branch on these to choose status codes;
// ErrMetadataPersistFailed in particular marks the partial-failure case where
// an artifact was stored but its record was not (an orphan), so operators can
// reconcile instead of treating it as a generic fault.
var (
	ErrArtifactPersistFailed = errors.New("failed to persist image artifact")
	ErrMetadataPersistFailed = errors.New("failed to persist image record after artifact was stored")
	ErrUnknownImage          = errors.New("unknown image")
	ErrInvalidFeedback       = errors.New("invalid feedback submission")
)
