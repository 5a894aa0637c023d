package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application status constants (shared by visa and college applications)
const (
	ApplicationStatusDraft     = "DRAFT"
	ApplicationStatusSubmitted = "SUBMITTED"
	ApplicationStatusApproved  = "APPROVED"
	ApplicationStatusRejected  = "REJECTED"
)

// VisaApplication tracks one visa application for a client
type VisaApplication struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	VisaType    string `gorm:"not null" json:"visa_type"`
	Country     string `gorm:"not null" json:"country"`
	Status      string `gorm:"not null;default:DRAFT" json:"status"`
	CreatedByID string `gorm:"type:uuid;not null" json:"created_by_id"`
}

// BeforeCreate hook to generate UUID
func (v *VisaApplication) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for VisaApplication model
func (VisaApplication) TableName() string {
	return "visa_applications"
}

// CollegeApplication tracks one college/program application for a client
type CollegeApplication struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientID string `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	College     string `gorm:"not null" json:"college"`
	Program     string `gorm:"not null" json:"program"`
	Status      string `gorm:"not null;default:DRAFT" json:"status"`
	CreatedByID string `gorm:"type:uuid;not null" json:"created_by_id"`
}

// BeforeCreate hook to generate UUID
func (a *CollegeApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CollegeApplication model
func (CollegeApplication) TableName() string {
	return "college_applications"
}

// IsValidApplicationStatus checks if the status is valid
func IsValidApplicationStatus(status string) bool {
	switch status {
	case ApplicationStatusDraft, ApplicationStatusSubmitted, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}
