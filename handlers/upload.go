package handlers

import (
	"errors"
	"net/http"
	"time"
	"visa_flow_app_go/db"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

// UpdatePassportRequest is the payload for updating passport details
type UpdatePassportRequest struct {
	Number  string `json:"number"`
	Country string `json:"country"`
	Expiry  string `json:"expiry"` // YYYY-MM-DD, optional
}

// UploadProfilePictureHandler stores a client's profile picture and
// records the upload on the timeline
func UploadProfilePictureHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)
	clientID := c.Param("id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"file": {"This field is required."},
		})
	}

	key := services.GenerateProfilePictureKey(clientID, fileHeader.Filename)
	uploadResult, err := services.Storage.Upload(c.Request().Context(), fileHeader, key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to store file",
		})
	}

	if err := services.SetProfilePicture(db.DB, clientID, uploadResult.Key, fileHeader.Filename, currentUser.ID); err != nil {
		// Clean up the stored file if the database write fails
		services.Storage.Delete(c.Request().Context(), uploadResult.Key)
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Client not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to save profile picture",
		})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"key": uploadResult.Key,
		"url": uploadResult.URL,
	})
}

// UpdatePassportHandler updates a client's passport details and records
// the change on the timeline
func UpdatePassportHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)
	clientID := c.Param("id")

	req := new(UpdatePassportRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if req.Number == "" {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"number": {"This field is required."},
		})
	}

	var expiry *time.Time
	if req.Expiry != "" {
		parsed, err := services.ParseDate(req.Expiry)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"expiry": {"Invalid date format (expected YYYY-MM-DD)."},
			})
		}
		expiry = &parsed
	}

	err := services.UpdatePassport(db.DB, clientID, services.PassportUpdate{
		Number:  req.Number,
		Country: req.Country,
		Expiry:  expiry,
	}, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Client not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update passport",
		})
	}

	client, err := services.GetClientByID(db.DB, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch client",
		})
	}
	return c.JSON(http.StatusOK, client)
}
