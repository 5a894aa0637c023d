package services

import (
	"errors"
	"fmt"
	"time"
	"visa_flow_app_go/models"

	"gorm.io/gorm"
)

// ensureClientExists is shared by the client-owned record services
func ensureClientExists(tx *gorm.DB, clientID string) error {
	var client models.Client
	if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to fetch client: %w", err)
	}
	return nil
}

// CreateVisaApplication creates a visa application and records a
// VISA_APPLICATION_CREATED activity
func CreateVisaApplication(db *gorm.DB, clientID, visaType, country, actorID string) (*models.VisaApplication, error) {
	if visaType == "" || country == "" {
		return nil, fmt.Errorf("visa type and country are required")
	}

	application := &models.VisaApplication{
		ClientID:    clientID,
		VisaType:    visaType,
		Country:     country,
		Status:      models.ApplicationStatusDraft,
		CreatedByID: actorID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureClientExists(tx, clientID); err != nil {
			return err
		}
		if err := tx.Create(application).Error; err != nil {
			return fmt.Errorf("failed to create visa application: %w", err)
		}

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      clientID,
			ActivityType:  models.ActivityVisaApplicationCreated,
			Description:   fmt.Sprintf("Visa application created: %s (%s)", visaType, country),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.ApplicationMeta{VisaApplicationID: application.ID}); err != nil {
			return fmt.Errorf("failed to encode application metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return application, nil
}

// CreateCollegeApplication creates a college application and records a
// COLLEGE_APPLICATION_CREATED activity
func CreateCollegeApplication(db *gorm.DB, clientID, college, program, actorID string) (*models.CollegeApplication, error) {
	if college == "" || program == "" {
		return nil, fmt.Errorf("college and program are required")
	}

	application := &models.CollegeApplication{
		ClientID:    clientID,
		College:     college,
		Program:     program,
		Status:      models.ApplicationStatusDraft,
		CreatedByID: actorID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureClientExists(tx, clientID); err != nil {
			return err
		}
		if err := tx.Create(application).Error; err != nil {
			return fmt.Errorf("failed to create college application: %w", err)
		}

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      clientID,
			ActivityType:  models.ActivityCollegeApplicationCreated,
			Description:   fmt.Sprintf("College application created: %s - %s", college, program),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.ApplicationMeta{ApplicationID: application.ID}); err != nil {
			return fmt.Errorf("failed to encode application metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return application, nil
}

// CreateProficiency records a language test result and its
// PROFICIENCY_ADDED activity
func CreateProficiency(db *gorm.DB, clientID, exam, score string, testDate *time.Time, actorID string) (*models.Proficiency, error) {
	if exam == "" || score == "" {
		return nil, fmt.Errorf("exam and score are required")
	}

	proficiency := &models.Proficiency{
		ClientID:    clientID,
		Exam:        exam,
		Score:       score,
		TestDate:    testDate,
		CreatedByID: actorID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureClientExists(tx, clientID); err != nil {
			return err
		}
		if err := tx.Create(proficiency).Error; err != nil {
			return fmt.Errorf("failed to create proficiency: %w", err)
		}

		summary := fmt.Sprintf("%s: %s", exam, score)
		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      clientID,
			ActivityType:  models.ActivityProficiencyAdded,
			Description:   fmt.Sprintf("Proficiency added: %s", summary),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.RecordMeta{RecordID: proficiency.ID, Summary: summary}); err != nil {
			return fmt.Errorf("failed to encode record metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return proficiency, nil
}

// CreateQualification records an academic qualification and its
// QUALIFICATION_ADDED activity
func CreateQualification(db *gorm.DB, clientID, degree, institution string, year *int, actorID string) (*models.Qualification, error) {
	if degree == "" || institution == "" {
		return nil, fmt.Errorf("degree and institution are required")
	}

	qualification := &models.Qualification{
		ClientID:    clientID,
		Degree:      degree,
		Institution: institution,
		Year:        year,
		CreatedByID: actorID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ensureClientExists(tx, clientID); err != nil {
			return err
		}
		if err := tx.Create(qualification).Error; err != nil {
			return fmt.Errorf("failed to create qualification: %w", err)
		}

		summary := fmt.Sprintf("%s, %s", degree, institution)
		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      clientID,
			ActivityType:  models.ActivityQualificationAdded,
			Description:   fmt.Sprintf("Qualification added: %s", summary),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.RecordMeta{RecordID: qualification.ID, Summary: summary}); err != nil {
			return fmt.Errorf("failed to encode record metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return qualification, nil
}
