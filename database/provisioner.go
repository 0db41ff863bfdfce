package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/camden-git/wastesortbackend/models"
)

// RecordTableName is the single table this service provisions.
var RecordTableName = models.ImageRecord{}.TableName()

// TableExists probes the catalog for the named table. A missing table is
// reported as (false, nil); any probe failure is returned as an error so
// callers never mistake an unreachable database for an absent table.
func TableExists(db *gorm.DB, tableName string) (bool, error) {
	var count int64
	err := db.Raw(
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", tableName,
	).Scan(&count).Error
	if err != nil {
		log.Printf("database: couldn't check for existence of table %s: %v", tableName, err)
		return false, fmt.Errorf("failed to check for table %s: %w", tableName, err)
	}
	return count > 0, nil
}

// CreateRecordTable creates the image record table with its primary key on
// image_name and the secondary index on predicted_class. Creating a table
// that already exists is an error; callers are expected to check TableExists
// first (or use EnsureRecordTable).
func CreateRecordTable(db *gorm.DB) error {
	if err := db.Migrator().CreateTable(&models.ImageRecord{}); err != nil {
		log.Printf("database: couldn't create table %s: %v", RecordTableName, err)
		return fmt.Errorf("failed to create table %s: %w", RecordTableName, err)
	}
	log.Printf("database: created table %s", RecordTableName)
	return nil
}

// EnsureRecordTable provisions the record table once at startup. When several
// processes race on boot, losing the create race is benign: the table exists
// either way.
func EnsureRecordTable(db *gorm.DB) error {
	exists, err := TableExists(db, RecordTableName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := CreateRecordTable(db); err != nil {
		if isAlreadyExistsErr(err) {
			log.Printf("database: table %s was created concurrently, continuing", RecordTableName)
			return nil
		}
		return err
	}
	return nil
}

// DropRecordTable removes the record table entirely. Any later store use must
// go back through CreateRecordTable.
func DropRecordTable(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&models.ImageRecord{}); err != nil {
		log.Printf("database: couldn't drop table %s: %v", RecordTableName, err)
		return fmt.Errorf("failed to drop table %s: %w", RecordTableName, err)
	}
	log.Printf("database: dropped table %s", RecordTableName)
	return nil
}

func isAlreadyExistsErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
