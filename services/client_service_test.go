package services

import (
	"testing"
	"visa_flow_app_go/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateClient_DefaultsToLead(t *testing.T) {
	db := setupStageTestDB()

	client, err := CreateClient(db, &models.Client{Name: "Amira Hassan"})
	assert.NoError(t, err)
	assert.Equal(t, models.StageLead, client.Stage)
	assert.NotEmpty(t, client.ID)
}

func TestCreateClient_NormalizesLegacyStage(t *testing.T) {
	db := setupStageTestDB()

	client, err := CreateClient(db, &models.Client{Name: "Boris", Stage: "FU"})
	assert.NoError(t, err)
	assert.Equal(t, models.StageFollowUp, client.Stage)
}

func TestCreateClient_RejectsUnknownStage(t *testing.T) {
	db := setupStageTestDB()

	_, err := CreateClient(db, &models.Client{Name: "X", Stage: "ARCHIVED"})
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestListClients_StageFilter(t *testing.T) {
	db := setupStageTestDB()
	CreateClient(db, &models.Client{Name: "Lead One"})
	CreateClient(db, &models.Client{Name: "Lead Two"})
	CreateClient(db, &models.Client{Name: "Signed", Stage: models.StageClient})

	clients, err := ListClients(db, models.StageLead)
	assert.NoError(t, err)
	assert.Len(t, clients, 2)

	all, err := ListClients(db, "")
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = ListClients(db, "NOPE")
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestUpdateClientFields_IgnoresUnknownKeys(t *testing.T) {
	db := setupStageTestDB()
	client, _ := CreateClient(db, &models.Client{Name: "Before"})

	updated, err := UpdateClientFields(db, client.ID, map[string]interface{}{
		"name":  "After",
		"stage": models.StageClose, // not updatable through this path
	})
	assert.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, models.StageLead, updated.Stage)
}

func TestSetProfilePicture(t *testing.T) {
	db := setupStageTestDB()
	client, user := createStageTestFixtures(db, models.StageLead)

	err := SetProfilePicture(db, client.ID, "clients/"+client.ID+"/profile", "me.jpg", user.ID)
	assert.NoError(t, err)

	var reloaded models.Client
	db.First(&reloaded, "id = ?", client.ID)
	assert.NotNil(t, reloaded.ProfilePictureKey)

	var activity models.Activity
	db.Where("entity_id = ? AND activity_type = ?", client.ID, models.ActivityProfilePictureUploaded).First(&activity)
	meta, _ := activity.DecodeMeta()
	assert.Equal(t, "me.jpg", meta.(*models.DocumentMeta).FileName)
}

func TestUpdatePassport(t *testing.T) {
	db := setupStageTestDB()
	client, user := createStageTestFixtures(db, models.StageClient)

	err := UpdatePassport(db, client.ID, PassportUpdate{Number: "K1234567", Country: "Egypt"}, user.ID)
	assert.NoError(t, err)

	var reloaded models.Client
	db.First(&reloaded, "id = ?", client.ID)
	assert.Equal(t, "K1234567", *reloaded.PassportNumber)
	assert.Equal(t, "Egypt", *reloaded.PassportCountry)

	var activity models.Activity
	db.Where("entity_id = ? AND activity_type = ?", client.ID, models.ActivityPassportUpdated).First(&activity)
	meta, _ := activity.DecodeMeta()
	assert.Equal(t, "Egypt", meta.(*models.PassportMeta).Country)
}

func TestUpdatePassport_RequiresNumber(t *testing.T) {
	db := setupStageTestDB()
	client, user := createStageTestFixtures(db, models.StageClient)

	err := UpdatePassport(db, client.ID, PassportUpdate{Country: "Egypt"}, user.ID)
	assert.Error(t, err)
}
