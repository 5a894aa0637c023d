package services

import (
	"errors"
	"fmt"
	"time"
	"visa_flow_app_go/models"

	"gorm.io/gorm"
)

// Stage transition errors
var (
	ErrClientNotFound    = errors.New("client not found")
	ErrInvalidStage      = errors.New("invalid stage")
	ErrInvalidTransition = errors.New("invalid stage transition")
)

// TransitionStage validates and applies a stage change for one client.
//
// From any non-terminal stage the only legal target is the next stage in
// pipeline order (LEAD -> FOLLOW_UP -> CLIENT -> CLOSE). From CLOSE the
// client may be reopened to any of the four stages. On success the stage
// write and the STAGE_CHANGED activity are committed together; on failure
// nothing is written.
func TransitionStage(db *gorm.DB, clientID, requestedStage, actorID string) (*models.Client, error) {
	canonical, ok := models.ParseStage(requestedStage)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStage, requestedStage)
	}

	var client models.Client
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to fetch client: %w", err)
		}

		from := client.Stage
		if from != models.StageClose {
			next, _ := models.NextStage(from)
			if canonical != next {
				return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, from, canonical)
			}
		}
		// From CLOSE every stage is a valid reopening target

		now := time.Now().UTC()
		client.Stage = canonical
		client.StageChangedAt = &now
		client.StageChangedBy = &actorID

		if err := tx.Model(&client).Updates(map[string]interface{}{
			"stage":            canonical,
			"stage_changed_at": now,
			"stage_changed_by": actorID,
			"updated_at":       now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update client stage: %w", err)
		}

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      client.ID,
			ActivityType:  models.ActivityStageChanged,
			Description:   fmt.Sprintf("Stage changed from %s to %s", models.StageLabel(from), models.StageLabel(canonical)),
			PerformedByID: actorID,
			CreatedAt:     now,
		}
		if err := activity.SetMeta(models.StageChangedMeta{From: from, To: canonical}); err != nil {
			return fmt.Errorf("failed to encode stage metadata: %w", err)
		}
		if _, err := RecordActivity(tx, activity); err != nil {
			return err
		}

		client.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &client, nil
}

// AssignClient changes the counselor a client is assigned to and records
// an ASSIGNED activity. Assignment and audit entry commit together.
func AssignClient(db *gorm.DB, clientID, assigneeID, actorID string) (*models.Client, error) {
	var client models.Client
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to fetch client: %w", err)
		}

		var assignee models.User
		if err := tx.First(&assignee, "id = ?", assigneeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("assignee not found")
			}
			return fmt.Errorf("failed to fetch assignee: %w", err)
		}

		now := time.Now().UTC()
		if err := tx.Model(&client).Updates(map[string]interface{}{
			"assigned_to_id": assigneeID,
			"updated_at":     now,
		}).Error; err != nil {
			return fmt.Errorf("failed to assign client: %w", err)
		}

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      client.ID,
			ActivityType:  models.ActivityAssigned,
			Description:   fmt.Sprintf("Assigned to %s", assignee.Name),
			PerformedByID: actorID,
			CreatedAt:     now,
		}
		if err := activity.SetMeta(models.AssignedMeta{AssignedToID: assignee.ID, AssignedToName: assignee.Name}); err != nil {
			return fmt.Errorf("failed to encode assignment metadata: %w", err)
		}
		if _, err := RecordActivity(tx, activity); err != nil {
			return err
		}

		client.AssignedToID = &assigneeID
		client.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &client, nil
}
