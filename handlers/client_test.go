package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"visa_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedClient(testDB *gorm.DB, stage string) *models.Client {
	client := &models.Client{Name: "Test Client", Email: "client@test.com", Stage: stage}
	testDB.Create(client)
	return client
}

func TestCreateClientHandler(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")

	_, c, rec := setupEcho(http.MethodPost, "/api/clients",
		jsonBody(`{"name": "Amira Hassan", "email": "amira@example.com"}`))
	authenticate(c, user)

	err := CreateClientHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var client models.Client
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))
	assert.Equal(t, models.StageLead, client.Stage)
	assert.NotEmpty(t, client.ID)
}

func TestCreateClientHandler_MissingName(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")

	_, c, rec := setupEcho(http.MethodPost, "/api/clients", jsonBody(`{"email": "x@example.com"}`))
	authenticate(c, user)

	err := CreateClientHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"name": ["This field is required."]}`, rec.Body.String())
}

func TestUpdateClientHandler_StageTransition(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")
	client := seedClient(testDB, models.StageLead)

	_, c, rec := setupEcho(http.MethodPatch, "/api/clients/"+client.ID,
		jsonBody(`{"stage": "FOLLOW_UP"}`))
	c.SetParamNames("id")
	c.SetParamValues(client.ID)
	authenticate(c, user)

	err := UpdateClientHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Client
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.StageFollowUp, updated.Stage)

	// Audited
	var count int64
	testDB.Model(&models.Activity{}).
		Where("entity_id = ? AND activity_type = ?", client.ID, models.ActivityStageChanged).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateClientHandler_IllegalTransition(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")
	client := seedClient(testDB, models.StageLead)

	_, c, rec := setupEcho(http.MethodPatch, "/api/clients/"+client.ID,
		jsonBody(`{"stage": "CLOSE"}`))
	c.SetParamNames("id")
	c.SetParamValues(client.ID)
	authenticate(c, user)

	err := UpdateClientHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// Field-keyed error so the form can attach it to the stage control
	assert.JSONEq(t, `{"stage": ["Cannot change stage from Lead to Close."]}`, rec.Body.String())

	var reloaded models.Client
	testDB.First(&reloaded, "id = ?", client.ID)
	assert.Equal(t, models.StageLead, reloaded.Stage)
}

func TestUpdateClientHandler_UnknownStage(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")
	client := seedClient(testDB, models.StageLead)

	_, c, rec := setupEcho(http.MethodPatch, "/api/clients/"+client.ID,
		jsonBody(`{"stage": "ARCHIVED"}`))
	c.SetParamNames("id")
	c.SetParamValues(client.ID)
	authenticate(c, user)

	err := UpdateClientHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"stage": ["Unknown stage."]}`, rec.Body.String())
}

func TestUpdateClientHandler_NotFound(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")

	_, c, rec := setupEcho(http.MethodPatch, "/api/clients/ghost",
		jsonBody(`{"stage": "FOLLOW_UP"}`))
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	authenticate(c, user)

	err := UpdateClientHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateClientHandler_PlainFields(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")
	client := seedClient(testDB, models.StageLead)

	_, c, rec := setupEcho(http.MethodPatch, "/api/clients/"+client.ID,
		jsonBody(`{"name": "Renamed", "phone": "+44 20 5550 100"}`))
	c.SetParamNames("id")
	c.SetParamValues(client.ID)
	authenticate(c, user)

	err := UpdateClientHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var reloaded models.Client
	testDB.First(&reloaded, "id = ?", client.ID)
	assert.Equal(t, "Renamed", reloaded.Name)
	assert.Equal(t, "+44 20 5550 100", *reloaded.Phone)
	// Stage untouched, no stage activity written
	assert.Equal(t, models.StageLead, reloaded.Stage)
}

func TestGetClientsHandler_StageFilter(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "c@test.com", "Str0ng!Passw0rd")
	seedClient(testDB, models.StageLead)
	testDB.Create(&models.Client{Name: "Second", Email: "second@test.com", Stage: models.StageClient})

	_, c, rec := setupEcho(http.MethodGet, "/api/clients?stage=CLIENT", nil)
	authenticate(c, user)

	err := GetClientsHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var clients []models.Client
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	assert.Len(t, clients, 1)
	assert.Equal(t, "Second", clients[0].Name)
}

func TestGetStagesHandler(t *testing.T) {
	setupTestDB(t)

	_, c, rec := setupEcho(http.MethodGet, "/api/stages", nil)
	err := GetStagesHandler(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var stages []map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stages))
	assert.Len(t, stages, 4)

	assert.Equal(t, "LEAD", stages[0]["stage"])
	assert.Equal(t, "Lead", stages[0]["label"])
	assert.Equal(t, "FOLLOW_UP", stages[0]["next"])

	// Terminal stage has no next
	assert.Equal(t, "CLOSE", stages[3]["stage"])
	assert.Nil(t, stages[3]["next"])
}
