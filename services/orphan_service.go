package services

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/camden-git/wastesortbackend/database"
	"github.com/camden-git/wastesortbackend/media"
)

// OrphanReport lists the two ways ingestion state can diverge: records whose
// artifact file is gone, and artifact files no record points at (the result of
// a record write failing after the artifact was stored).
type OrphanReport struct {
	MissingArtifacts  []database.ArtifactRef `json:"missing_artifacts"`
	OrphanedArtifacts []string               `json:"orphaned_artifacts"`
}

// OrphanService is the reconciliation pass over artifact storage and the
// record store.
type OrphanService struct {
	DB            *gorm.DB
	Artifacts     media.Store
	UploadsSubDir string // subdirectory name artifact paths are relative to
}

// NewOrphanService creates a new orphan scan service.
func NewOrphanService(db *gorm.DB, artifacts media.Store, uploadsSubDir string) *OrphanService {
	return &OrphanService{DB: db, Artifacts: artifacts, UploadsSubDir: uploadsSubDir}
}

// Scan cross-checks every record against artifact storage and every stored
// artifact against the records, and reports the mismatches. It never mutates
// either side.
func (s *OrphanService) Scan() (*OrphanReport, error) {
	refs, err := database.ListArtifactRefs(s.DB)
	if err != nil {
		return nil, fmt.Errorf("orphan scan failed to list records: %w", err)
	}

	report := &OrphanReport{
		MissingArtifacts:  []database.ArtifactRef{},
		OrphanedArtifacts: []string{},
	}

	referenced := make(map[string]bool, len(refs))
	for _, ref := range refs {
		referenced[ref.ArtifactPath] = true

		exists, err := s.Artifacts.Exists(ref.ArtifactPath)
		if err != nil {
			log.Printf("services: orphan scan couldn't stat artifact %s for record %s: %v", ref.ArtifactPath, ref.ImageName, err)
			return nil, fmt.Errorf("orphan scan failed to stat artifact %s: %w", ref.ArtifactPath, err)
		}
		if !exists {
			report.MissingArtifacts = append(report.MissingArtifacts, ref)
		}
	}

	uploadsDir, err := s.Artifacts.EnsureDir(media.AssetTypeUpload)
	if err != nil {
		return nil, fmt.Errorf("orphan scan failed to resolve uploads directory: %w", err)
	}

	entries, err := os.ReadDir(uploadsDir)
	if err != nil {
		return nil, fmt.Errorf("orphan scan failed to read uploads directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		relPath := path.Join(filepath.ToSlash(s.UploadsSubDir), entry.Name())
		if !referenced[relPath] {
			report.OrphanedArtifacts = append(report.OrphanedArtifacts, relPath)
		}
	}

	return report, nil
}
