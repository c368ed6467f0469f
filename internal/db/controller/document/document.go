// Package document provides CRUD operations on the JSON documents that back
// the workforce service.
package document

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atlas-ops/atlas/internal/db/models"
)

const (
	kindQueryPattern   = "kind = ?"
	kindIDQueryPattern = "kind = ? AND id = ?"
)

var (
	// ErrDocumentNotFound is returned when a document is not found.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrKindEmpty is returned when a kind is empty.
	ErrKindEmpty = errors.New("document kind cannot be empty")
	// ErrIDEmpty is returned when a document id is empty.
	ErrIDEmpty = errors.New("document id cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func checkKey(db *gorm.DB, kind, id string) error {
	switch {
	case db == nil:
		return ErrDBNil
	case kind == "":
		return ErrKindEmpty
	case id == "":
		return ErrIDEmpty
	}

	return nil
}

// Get retrieves a document by kind and id.
func Get(db *gorm.DB, kind, id string) (*models.Document, error) {
	if err := checkKey(db, kind, id); err != nil {
		return nil, err
	}

	var doc models.Document
	result := db.Where(kindIDQueryPattern, kind, id).First(&doc)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, result.Error
	}

	return &doc, nil
}

// List retrieves all documents of a kind in insertion order.
func List(db *gorm.DB, kind string) ([]models.Document, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if kind == "" {
		return nil, ErrKindEmpty
	}

	var docs []models.Document
	result := db.Where(kindQueryPattern, kind).Order("seq, created_at, id").Find(&docs)
	if result.Error != nil {
		return nil, result.Error
	}

	return docs, nil
}

// Count returns the number of documents of a kind.
func Count(db *gorm.DB, kind string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}
	if kind == "" {
		return 0, ErrKindEmpty
	}

	var n int64
	if err := db.Model(&models.Document{}).Where(kindQueryPattern, kind).Count(&n).Error; err != nil {
		return 0, err
	}

	return n, nil
}

// Put creates or replaces a document (upsert operation). Seq and CreatedAt
// of an existing document are kept.
func Put(db *gorm.DB, kind, id string, payload []byte) (*models.Document, error) {
	if err := checkKey(db, kind, id); err != nil {
		return nil, err
	}

	var last int64
	if err := db.Model(&models.Document{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
		return nil, err
	}

	doc := &models.Document{
		Kind:    kind,
		ID:      id,
		Seq:     last + 1,
		Payload: datatypes.JSON(payload),
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{"payload": doc.Payload, "updated_at": time.Now()}),
	}).Create(doc)
	if result.Error != nil {
		return nil, result.Error
	}

	return doc, nil
}

// Delete deletes a document by kind and id.
func Delete(db *gorm.DB, kind, id string) error {
	if err := checkKey(db, kind, id); err != nil {
		return err
	}

	result := db.Where(kindIDQueryPattern, kind, id).Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}
