package services

import (
	"errors"
	"fmt"
	"time"
	"visa_flow_app_go/models"

	"gorm.io/gorm"
)

// Task errors
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
)

// CreateTask creates a task for a client and records a TASK_CREATED activity
func CreateTask(db *gorm.DB, clientID, title string, dueDate *time.Time, actorID string) (*models.Task, error) {
	if title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	task := &models.Task{
		ClientID:    clientID,
		Title:       title,
		DueDate:     dueDate,
		Status:      models.TaskStatusPending,
		CreatedByID: actorID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to fetch client: %w", err)
		}

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      clientID,
			ActivityType:  models.ActivityTaskCreated,
			Description:   fmt.Sprintf("Task created: %s", title),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.TaskMeta{TaskID: task.ID}); err != nil {
			return fmt.Errorf("failed to encode task metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// CompleteTask marks a task completed and records a TASK_COMPLETED activity
func CompleteTask(db *gorm.DB, taskID, actorID string) (*models.Task, error) {
	var task models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		if task.IsCompleted() {
			return ErrTaskAlreadyCompleted
		}

		now := time.Now().UTC()
		if err := tx.Model(&task).Updates(map[string]interface{}{
			"status":       models.TaskStatusCompleted,
			"completed_at": now,
			"completed_by": actorID,
		}).Error; err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		task.Status = models.TaskStatusCompleted
		task.CompletedAt = &now
		task.CompletedBy = &actorID

		activity := &models.Activity{
			EntityType:    models.EntityTypeClient,
			EntityID:      task.ClientID,
			ActivityType:  models.ActivityTaskCompleted,
			Description:   fmt.Sprintf("Task completed: %s", task.Title),
			PerformedByID: actorID,
		}
		if err := activity.SetMeta(models.TaskMeta{TaskID: task.ID}); err != nil {
			return fmt.Errorf("failed to encode task metadata: %w", err)
		}
		_, err := RecordActivity(tx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// GetTasksByClient lists a client's tasks, pending first then by due date
func GetTasksByClient(db *gorm.DB, clientID string) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Where("client_id = ?", clientID).
		Order("status DESC, due_date ASC, created_at DESC").
		Find(&tasks).Error
	return tasks, err
}
