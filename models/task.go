package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task status constants
const (
	TaskStatusPending   = "PENDING"
	TaskStatusCompleted = "COMPLETED"
)

// Task is a follow-up item attached to a client
type Task struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Title   string     `gorm:"not null" json:"title"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Status  string     `gorm:"not null;default:PENDING;index" json:"status"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *string    `gorm:"type:uuid" json:"completed_by,omitempty"`

	CreatedByID string `gorm:"type:uuid;not null" json:"created_by_id"`
}

// BeforeCreate hook to generate UUID
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Task model
func (Task) TableName() string {
	return "tasks"
}

// IsCompleted checks if the task is completed
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}
