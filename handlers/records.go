package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/wastesortbackend/repository"
	"github.com/camden-git/wastesortbackend/services"
)

// RecordHandler exposes the administrative surface over the record store:
// point reads, class queries, deletes, the orphan scan, and dropping the
// whole store.
type RecordHandler struct {
	Records repository.ImageRecordRepositoryInterface
	Orphans *services.OrphanService
}

func (rh *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	imageName := chi.URLParam(r, "image_name")

	record, err := rh.Records.Get(r.Context(), imageName)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			WriteAPIError(w, http.StatusNotFound, "record_not_found", "No record for image_name "+imageName)
		case errors.Is(err, repository.ErrInvalidInput):
			WriteAPIError(w, http.StatusBadRequest, "invalid_image_name", err.Error())
		default:
			log.Printf("Error getting record %q: %v", imageName, err)
			WriteAPIError(w, storeErrorStatus(err), "store_error", "Failed to retrieve record")
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (rh *RecordHandler) QueryRecordsByClass(w http.ResponseWriter, r *http.Request) {
	class := r.URL.Query().Get("class")
	if class == "" {
		WriteAPIError(w, http.StatusBadRequest, "missing_class", "Query parameter 'class' is required")
		return
	}

	records, err := rh.Records.QueryByClass(r.Context(), class)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			WriteAPIError(w, http.StatusBadRequest, "invalid_class", err.Error())
			return
		}
		log.Printf("Error querying records for class %q: %v", class, err)
		WriteAPIError(w, storeErrorStatus(err), "store_error", "Failed to query records")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (rh *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	imageName := chi.URLParam(r, "image_name")

	if err := rh.Records.Delete(r.Context(), imageName); err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			WriteAPIError(w, http.StatusBadRequest, "invalid_image_name", err.Error())
			return
		}
		log.Printf("Error deleting record %q: %v", imageName, err)
		WriteAPIError(w, storeErrorStatus(err), "store_error", "Failed to delete record")
		return
	}

	// delete is idempotent; absent keys succeed too
	writeJSON(w, http.StatusNoContent, nil)
}

func (rh *RecordHandler) ListOrphans(w http.ResponseWriter, r *http.Request) {
	report, err := rh.Orphans.Scan()
	if err != nil {
		log.Printf("Error running orphan scan: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "orphan_scan_failed", "Failed to scan for orphans")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// DropStore removes the record table. Ingestion stays down until the service
// restarts and re-provisions, so this is strictly an administrative reset.
func (rh *RecordHandler) DropStore(w http.ResponseWriter, r *http.Request) {
	if err := rh.Records.Drop(r.Context()); err != nil {
		log.Printf("Error dropping record store: %v", err)
		WriteAPIError(w, storeErrorStatus(err), "store_error", "Failed to drop record store")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Record store dropped"})
}

func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, repository.ErrSchemaConflict):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
