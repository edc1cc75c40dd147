package storage

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentRecord is the single relational table backing the sqlite document
// store driver. One row per entity, addressed by (collection, key), with an
// optimistic revision counter.
type DocumentRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Collection string         `gorm:"uniqueIndex:idx_documents_collection_key;index;not null" json:"collection"`
	Key        string         `gorm:"uniqueIndex:idx_documents_collection_key;not null" json:"key"`
	Rev        int64          `gorm:"not null;default:1" json:"rev"`
	Data       datatypes.JSON `gorm:"not null" json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName pins the table name.
func (DocumentRecord) TableName() string {
	return "documents"
}
