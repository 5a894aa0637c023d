package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Proficiency records a language test result for a client (IELTS, TOEFL, etc.)
type Proficiency struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`

	Exam     string     `gorm:"not null" json:"exam"`
	Score    string     `gorm:"not null" json:"score"`
	TestDate *time.Time `json:"test_date,omitempty"`

	CreatedByID string `gorm:"type:uuid;not null" json:"created_by_id"`
}

// BeforeCreate hook to generate UUID
func (p *Proficiency) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Proficiency model
func (Proficiency) TableName() string {
	return "proficiencies"
}

// Qualification records an academic qualification for a client
type Qualification struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`

	Degree      string `gorm:"not null" json:"degree"`
	Institution string `gorm:"not null" json:"institution"`
	Year        *int   `json:"year,omitempty"`

	CreatedByID string `gorm:"type:uuid;not null" json:"created_by_id"`
}

// BeforeCreate hook to generate UUID
func (q *Qualification) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Qualification model
func (Qualification) TableName() string {
	return "qualifications"
}
