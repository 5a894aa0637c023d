package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"visa_flow_app_go/config"
	"visa_flow_app_go/db"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/models"
	"visa_flow_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests from each other
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	if services.Storage == nil {
		services.Storage = services.NewLocalStorage("tmp/test_uploads")
	}

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Client{},
		&models.Activity{},
		&models.Note{},
		&models.Reminder{},
		&models.Task{},
		&models.VisaApplication{},
		&models.CollegeApplication{},
		&models.Proficiency{},
		&models.Qualification{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("config", &config.Config{
		Environment: "test",
	})

	return e, c, rec
}

// seedUser creates an active user with the given password
func seedUser(t *testing.T, testDB *gorm.DB, email, password string) *models.User {
	hash, err := services.HashPassword(password)
	assert.NoError(t, err)
	user := &models.User{
		Name:     "Test Counselor",
		Email:    email,
		Password: hash,
		Role:     models.RoleCounselor,
		IsActive: true,
	}
	assert.NoError(t, testDB.Create(user).Error)
	return user
}

// authenticate puts the user into the request context the way RequireAuth does
func authenticate(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
