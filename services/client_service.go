package services

import (
	"errors"
	"fmt"
	"time"
	"visa_flow_app_go/models"

	"gorm.io/gorm"
)

// GetClientByID fetches a client with its assignee preloaded
func GetClientByID(db *gorm.DB, clientID string) (*models.Client, error) {
	var client models.Client
	err := db.Preload("AssignedTo").First(&client, "id = ?", clientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}
	return &client, nil
}

// ListClients returns clients ordered by most recently updated, optionally
// restricted to one stage
func ListClients(db *gorm.DB, stage string) ([]models.Client, error) {
	query := db.Preload("AssignedTo").Order("updated_at DESC")
	if stage != "" {
		canonical, ok := models.ParseStage(stage)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStage, stage)
		}
		query = query.Where("stage = ?", canonical)
	}
	var clients []models.Client
	err := query.Find(&clients).Error
	return clients, err
}

// CreateClient persists a new client. Stage defaults to LEAD.
func CreateClient(db *gorm.DB, client *models.Client) (*models.Client, error) {
	if client.Name == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if client.Stage != "" {
		canonical, ok := models.ParseStage(client.Stage)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStage, client.Stage)
		}
		client.Stage = canonical
	}
	if err := db.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// UpdateClientFields applies a partial update of plain profile fields and
// refreshes updated_at. Stage and assignment changes go through their
// dedicated services so they are audited.
func UpdateClientFields(db *gorm.DB, clientID string, fields map[string]interface{}) (*models.Client, error) {
	allowed := map[string]bool{"name": true, "email": true, "phone": true}
	updates := map[string]interface{}{}
	for key, value := range fields {
		if allowed[key] {
			updates[key] = value
		}
	}

	var client models.Client
	if err := db.First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now().UTC()
		if err := db.Model(&client).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update client: %w", err)
		}
	}

	return GetClientByID(db, clientID)
}

// SetProfilePicture stores the uploaded picture's storage key and records
// a PROFILE_PICTURE_UPLOADED activity
func SetProfilePicture(db *gorm.DB, clientID, storageKey, fileName, actorID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to fetch client: %w", err)
		}

		now := time.Now().UTC()
		if err := tx.Model(&client).Updates(map[string]interface{}{
			"profile_picture_key": storageKey,
			"updated_at":          now,
		}).Error; err != nil {
			return fmt.Errorf("failed to set profile picture: %w", err)
		}

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      clientID,
			ActivityType:  models.ActivityProfilePictureUploaded,
			Description:   "Profile picture uploaded",
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.DocumentMeta{StorageKey: storageKey, FileName: fileName}); err != nil {
			return fmt.Errorf("failed to encode document metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
}

// PassportUpdate carries the passport fields of a passport change
type PassportUpdate struct {
	Number  string
	Country string
	Expiry  *time.Time
}

// UpdatePassport updates a client's passport details and records a
// PASSPORT_UPDATED activity
func UpdatePassport(db *gorm.DB, clientID string, passport PassportUpdate, actorID string) error {
	if passport.Number == "" {
		return fmt.Errorf("passport number is required")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to fetch client: %w", err)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"passport_number":  passport.Number,
			"passport_country": passport.Country,
			"updated_at":       now,
		}
		if passport.Expiry != nil {
			updates["passport_expiry"] = *passport.Expiry
		}
		if err := tx.Model(&client).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update passport: %w", err)
		}

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      clientID,
			ActivityType:  models.ActivityPassportUpdated,
			Description:   fmt.Sprintf("Passport updated (%s)", passport.Country),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.PassportMeta{Country: passport.Country}); err != nil {
			return fmt.Errorf("failed to encode passport metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
}
