package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a mutable text record owned by an entity and an author.
// Editing or deleting a note never touches the activities it produced;
// the timeline is an audit trail, not a live view of note state.
type Note struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	EntityType string `gorm:"size:50;not null;index:idx_note_entity" json:"entity_type"`
	EntityID   string `gorm:"type:uuid;not null;index:idx_note_entity" json:"entity_id"`

	Content string `gorm:"type:text;not null" json:"content"`

	AuthorID string `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// BeforeCreate hook to generate UUID
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Note model
func (Note) TableName() string {
	return "notes"
}

// IsEdited reports whether the note has been modified after creation
func (n *Note) IsEdited() bool {
	return n.UpdatedAt.After(n.CreatedAt)
}
