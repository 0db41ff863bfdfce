package database

import (
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// ArtifactRef pairs a record's identity with the artifact it points at.
type ArtifactRef struct {
	ImageName    string `json:"image_name"`
	ArtifactPath string `json:"artifact_path"`
}

// ListArtifactRefs reads every record's identity and artifact locator using a
// plain SQL scan over the underlying connection. It exists for the orphan
// reconciliation pass, which only needs these two columns and should not drag
// full model loading through GORM for every row.
func ListArtifactRefs(db *gorm.DB) ([]ArtifactRef, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	queryBuilder := psql.Select("image_name", "artifact_path").
		From(RecordTableName).
		OrderBy("image_name")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for ListArtifactRefs: %w", err)
	}

	rows, err := sqlDB.Query(sqlStr, args...)
	if err != nil {
		log.Printf("database: artifact ref scan on %s failed: %v", RecordTableName, err)
		return nil, fmt.Errorf("failed to scan artifact refs: %w", err)
	}
	defer rows.Close()

	var refs []ArtifactRef
	for rows.Next() {
		var ref ArtifactRef
		if err := rows.Scan(&ref.ImageName, &ref.ArtifactPath); err != nil {
			return nil, fmt.Errorf("failed to scan artifact ref row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifact refs: %w", err)
	}

	return refs, nil
}
