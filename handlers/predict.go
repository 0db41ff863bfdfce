package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/camden-git/wastesortbackend/classifier"
	"github.com/camden-git/wastesortbackend/repository"
	"github.com/camden-git/wastesortbackend/services"
)

// limit on uploaded image size
const maxUploadBytes = 32 << 20 // 32 MiB

type PredictHandler struct {
	Ingestion *services.IngestionService
}

// Predict accepts a multipart image upload, runs the ingestion pipeline, and
// returns the stored identity with the model's prediction. The response keeps
// the original frontend's field names.
func (ph *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required file field: file"})
		return
	}
	defer file.Close()

	// read one byte past the limit so oversize uploads are rejected instead
	// of silently truncated
	contents, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		log.Printf("Error reading upload %q: %v", header.Filename, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read uploaded file"})
		return
	}
	if len(contents) > maxUploadBytes {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Uploaded file exceeds the size limit"})
		return
	}

	// strip any client-supplied directory components
	originalFilename := filepath.Base(header.Filename)

	result, err := ph.Ingestion.Ingest(r.Context(), originalFilename, contents)
	if err != nil {
		status, message := ingestionErrorResponse(err)
		log.Printf("Error ingesting %q: %v", originalFilename, err)
		writeJSON(w, status, map[string]string{"error": message})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"image_name":      result.ImageName,
		"class_name":      result.PredictedClass,
		"predicted_class": result.PredictedClass,
		"confidence":      result.Confidence,
	})
}

// ingestionErrorResponse maps pipeline failures to a status and a stable,
// user-safe message. Internal detail stays in the logs.
func ingestionErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid upload: " + err.Error()
	case errors.Is(err, classifier.ErrClassificationFailed):
		return http.StatusInternalServerError, "Classification failed"
	case errors.Is(err, services.ErrArtifactPersistFailed):
		return http.StatusInternalServerError, "Failed to store uploaded image"
	case errors.Is(err, services.ErrMetadataPersistFailed):
		return http.StatusInternalServerError, "Image stored but its record could not be written"
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable, "Storage temporarily unavailable, retry later"
	default:
		return http.StatusInternalServerError, "Prediction failed"
	}
}
