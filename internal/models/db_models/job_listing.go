package db_models

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// JobListing is a saved posting with an embedding of its description, used
// for similarity matching against a candidate's resume text.
type JobListing struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index;not null"`
	Title       string
	Company     string
	Location    string
	URL         string
	Description string

	Embedding pgvector.Vector `gorm:"type:vector(1536)"`

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
