package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"visa_flow_app_go/db"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/models"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CreateClientRequest is the payload for creating a client
type CreateClientRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
	Stage string  `json:"stage"`
}

// UpdateClientRequest is the partial-update payload for PATCH. Nil fields
// are left untouched. Stage and assignment changes are routed through
// their dedicated services so they are validated and audited.
type UpdateClientRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Stage        *string `json:"stage"`
	AssignedToID *string `json:"assigned_to_id"`
}

// GetClientsHandler lists clients, optionally filtered by stage
func GetClientsHandler(c echo.Context) error {
	clients, err := services.ListClients(db.DB, c.QueryParam("stage"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidStage) {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"stage": {"Unknown stage."},
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch clients",
		})
	}
	return c.JSON(http.StatusOK, clients)
}

// GetClientHandler returns a single client by ID
func GetClientHandler(c echo.Context) error {
	client, err := services.GetClientByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Client not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch client",
		})
	}
	return c.JSON(http.StatusOK, client)
}

// CreateClientHandler creates a new client record
func CreateClientHandler(c echo.Context) error {
	req := new(CreateClientRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"name": {"This field is required."},
		})
	}

	client := &models.Client{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Stage: req.Stage,
	}
	client, err := services.CreateClient(db.DB, client)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStage) {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"stage": {"Unknown stage."},
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create client",
		})
	}
	return c.JSON(http.StatusCreated, client)
}

// UpdateClientHandler applies a partial update to a client. A stage key
// drives the transition service; invalid transitions come back as a
// field-keyed 400 so the UI can attach the message to the stage control.
func UpdateClientHandler(c echo.Context) error {
	clientID := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	req := new(UpdateClientRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	var client *models.Client
	var err error

	if req.Stage != nil {
		client, err = services.TransitionStage(db.DB, clientID, *req.Stage, currentUser.ID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrClientNotFound):
				return c.JSON(http.StatusNotFound, map[string]string{
					"error": "Client not found",
				})
			case errors.Is(err, services.ErrInvalidStage):
				return c.JSON(http.StatusBadRequest, map[string][]string{
					"stage": {"Unknown stage."},
				})
			case errors.Is(err, services.ErrInvalidTransition):
				return c.JSON(http.StatusBadRequest, map[string][]string{
					"stage": {transitionErrorMessage(db.DB, clientID, *req.Stage)},
				})
			default:
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Failed to change stage",
				})
			}
		}
	}

	if req.AssignedToID != nil {
		client, err = services.AssignClient(db.DB, clientID, *req.AssignedToID, currentUser.ID)
		if err != nil {
			if errors.Is(err, services.ErrClientNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error": "Client not found",
				})
			}
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"assigned_to_id": {"Invalid assignee."},
			})
		}
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if len(fields) > 0 || client == nil {
		client, err = services.UpdateClientFields(db.DB, clientID, fields)
		if err != nil {
			if errors.Is(err, services.ErrClientNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error": "Client not found",
				})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to update client",
			})
		}
	}

	return c.JSON(http.StatusOK, client)
}

// transitionErrorMessage phrases the stage rule violation for the form field
func transitionErrorMessage(database *gorm.DB, clientID, requested string) string {
	var client models.Client
	if err := database.First(&client, "id = ?", clientID).Error; err != nil {
		return "Illegal stage transition."
	}
	canonical, ok := models.ParseStage(requested)
	if !ok {
		return "Unknown stage."
	}
	return fmt.Sprintf("Cannot change stage from %s to %s.",
		models.StageLabel(client.Stage), models.StageLabel(canonical))
}

// GetStagesHandler exposes the stage registry: identifier, display label,
// color tag, and the single legal next stage for each stage
func GetStagesHandler(c echo.Context) error {
	type stageInfo struct {
		Stage string  `json:"stage"`
		Label string  `json:"label"`
		Color string  `json:"color"`
		Next  *string `json:"next"`
	}

	stages := make([]stageInfo, 0, 4)
	for _, stage := range models.AllStages() {
		info := stageInfo{
			Stage: stage,
			Label: models.StageLabel(stage),
			Color: models.StageColor(stage),
		}
		if next, ok := models.NextStage(stage); ok {
			info.Next = &next
		}
		stages = append(stages, info)
	}
	return c.JSON(http.StatusOK, stages)
}
