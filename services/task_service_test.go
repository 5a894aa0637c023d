package services

import (
	"testing"
	"visa_flow_app_go/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateAndCompleteTask(t *testing.T) {
	db := setupStageTestDB()
	db.AutoMigrate(&models.Task{})
	client, user := createStageTestFixtures(db, models.StageClient)

	task, err := CreateTask(db, client.ID, "Collect bank statements", nil, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)

	completed, err := CompleteTask(db, task.ID, user.ID)
	assert.NoError(t, err)
	assert.True(t, completed.IsCompleted())
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, user.ID, *completed.CompletedBy)

	// Both steps audited
	var types []string
	db.Model(&models.Activity{}).
		Where("entity_id = ?", client.ID).
		Order("id ASC").
		Pluck("activity_type", &types)
	assert.Equal(t, []string{models.ActivityTaskCreated, models.ActivityTaskCompleted}, types)
}

func TestCompleteTask_AlreadyCompleted(t *testing.T) {
	db := setupStageTestDB()
	db.AutoMigrate(&models.Task{})
	client, user := createStageTestFixtures(db, models.StageClient)

	task, _ := CreateTask(db, client.ID, "Book biometrics", nil, user.ID)
	_, err := CompleteTask(db, task.ID, user.ID)
	assert.NoError(t, err)

	_, err = CompleteTask(db, task.ID, user.ID)
	assert.ErrorIs(t, err, ErrTaskAlreadyCompleted)
}

func TestCreateTask_ClientNotFound(t *testing.T) {
	db := setupStageTestDB()
	db.AutoMigrate(&models.Task{})
	_, user := createStageTestFixtures(db, models.StageLead)

	_, err := CreateTask(db, "ghost", "Anything", nil, user.ID)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestCreateTask_RequiresTitle(t *testing.T) {
	db := setupStageTestDB()
	db.AutoMigrate(&models.Task{})
	client, user := createStageTestFixtures(db, models.StageLead)

	_, err := CreateTask(db, client.ID, "", nil, user.ID)
	assert.Error(t, err)
}
