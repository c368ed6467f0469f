// Package models contains database model definitions.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document stores one aggregate of the console as JSON.
// Writes replace the whole entity.
type Document struct {
	// Kind names the collection, e.g. "user" or "active_project".
	Kind string `gorm:"primaryKey;size:64"`
	// ID is the entity id, unique within its kind.
	ID string `gorm:"primaryKey;size:191"`
	// Payload is the JSON encoding of the entity.
	Payload datatypes.JSON `gorm:"not null"`
	// Seq orders documents by first insert. Replacing a document keeps it.
	Seq int64 `gorm:"not null;default:0;index"`
	// CreatedAt is the time of the first insert (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the time of the last write (managed by GORM).
	UpdatedAt time.Time
}

// TableName implements gorm's schema.Tabler.
func (Document) TableName() string {
	return "documents"
}
