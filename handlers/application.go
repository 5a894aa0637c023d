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

// CreateVisaApplicationRequest is the payload for starting a visa application
type CreateVisaApplicationRequest struct {
	VisaType string `json:"visa_type"`
	Country  string `json:"country"`
}

// CreateCollegeApplicationRequest is the payload for starting a college application
type CreateCollegeApplicationRequest struct {
	College string `json:"college"`
	Program string `json:"program"`
}

// CreateProficiencyRequest is the payload for recording a language test result
type CreateProficiencyRequest struct {
	Exam     string `json:"exam"`
	Score    string `json:"score"`
	TestDate string `json:"test_date"` // YYYY-MM-DD, optional
}

// CreateQualificationRequest is the payload for recording a qualification
type CreateQualificationRequest struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        *int   `json:"year"`
}

// CreateVisaApplicationHandler starts a visa application for a client
func CreateVisaApplicationHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	req := new(CreateVisaApplicationRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.VisaType == "" || req.Country == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Visa type and country are required",
		})
	}

	application, err := services.CreateVisaApplication(db.DB, c.Param("id"), req.VisaType, req.Country, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Client not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create visa application"})
	}

	return c.JSON(http.StatusCreated, application)
}

// CreateCollegeApplicationHandler starts a college application for a client
func CreateCollegeApplicationHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	req := new(CreateCollegeApplicationRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.College == "" || req.Program == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "College and program are required",
		})
	}

	application, err := services.CreateCollegeApplication(db.DB, c.Param("id"), req.College, req.Program, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Client not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create college application"})
	}

	return c.JSON(http.StatusCreated, application)
}

// CreateProficiencyHandler records a language test result for a client
func CreateProficiencyHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	req := new(CreateProficiencyRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Exam == "" || req.Score == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Exam and score are required",
		})
	}

	var testDate *time.Time
	if req.TestDate != "" {
		parsed, err := services.ParseDate(req.TestDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string][]string{
				"test_date": {"Invalid date format (expected YYYY-MM-DD)."},
			})
		}
		testDate = &parsed
	}

	proficiency, err := services.CreateProficiency(db.DB, c.Param("id"), req.Exam, req.Score, testDate, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Client not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create proficiency"})
	}

	return c.JSON(http.StatusCreated, proficiency)
}

// CreateQualificationHandler records an academic qualification for a client
func CreateQualificationHandler(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	req := new(CreateQualificationRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Degree == "" || req.Institution == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Degree and institution are required",
		})
	}

	qualification, err := services.CreateQualification(db.DB, c.Param("id"), req.Degree, req.Institution, req.Year, currentUser.ID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Client not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create qualification"})
	}

	return c.JSON(http.StatusCreated, qualification)
}
