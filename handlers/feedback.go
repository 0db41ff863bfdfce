package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/camden-git/wastesortbackend/repository"
	"github.com/camden-git/wastesortbackend/services"
)

type FeedbackHandler struct {
	Feedback *services.FeedbackService
}

// SaveFeedback applies a human label answer to a previously issued identity.
func (fh *FeedbackHandler) SaveFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageName          string `json:"image_name"`
		UserLabelConfirmed string `json:"user_label_confirmed"`
		UserLabelChoice    string `json:"user_label_choice"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	fields, err := fh.Feedback.SubmitFeedback(r.Context(), req.ImageName, req.UserLabelConfirmed, req.UserLabelChoice)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidFeedback):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, services.ErrUnknownImage):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No record for image_name " + req.ImageName})
		case errors.Is(err, repository.ErrUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Storage temporarily unavailable, retry later"})
		default:
			log.Printf("Error saving feedback for %q: %v", req.ImageName, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save feedback"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Feedback saved",
		"updated_fields": fields,
	})
}
