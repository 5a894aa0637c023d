package main

import (
	"log"
	"net/http"
	"time"
	"visa_flow_app_go/config"
	"visa_flow_app_go/db"
	"visa_flow_app_go/handlers"
	"visa_flow_app_go/middleware"
	"visa_flow_app_go/services"
	"visa_flow_app_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize file storage (R2 or local fallback)
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.POST("/api/login", handlers.LoginHandler, middleware.LoginRateLimiter.Middleware())

	// Protected routes (bearer token required)
	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.POST("/logout", handlers.LogoutHandler)
		api.GET("/me", handlers.GetCurrentUserHandler)

		// Stage registry
		api.GET("/stages", handlers.GetStagesHandler)

		// Clients
		api.GET("/clients", handlers.GetClientsHandler)
		api.POST("/clients", handlers.CreateClientHandler)
		api.GET("/clients/:id", handlers.GetClientHandler)
		api.PATCH("/clients/:id", handlers.UpdateClientHandler)

		// Client import
		api.GET("/clients/import/template", handlers.GetClientImportTemplateHandler)
		api.POST("/clients/import", handlers.ImportClientsHandler, middleware.ImportRateLimiter.Middleware())

		// Timeline
		api.GET("/timeline", handlers.GetTimelineHandler)
		api.GET("/timeline/grouped", handlers.GetGroupedTimelineHandler)

		// Notes and reminders
		api.GET("/notes", handlers.GetNotesHandler)
		api.POST("/notes", handlers.CreateNoteHandler)
		api.PUT("/notes/:id", handlers.UpdateNoteHandler)
		api.DELETE("/notes/:id", handlers.DeleteNoteHandler)
		api.GET("/reminders", handlers.GetRemindersHandler)
		api.POST("/reminders", handlers.CreateReminderHandler)

		// Tasks
		api.GET("/clients/:id/tasks", handlers.GetTasksHandler)
		api.POST("/clients/:id/tasks", handlers.CreateTaskHandler)
		api.POST("/tasks/:id/complete", handlers.CompleteTaskHandler)

		// Documents and profile
		api.POST("/clients/:id/profile-picture", handlers.UploadProfilePictureHandler)
		api.PUT("/clients/:id/passport", handlers.UpdatePassportHandler)

		// Applications and records
		api.POST("/clients/:id/visa-applications", handlers.CreateVisaApplicationHandler)
		api.POST("/clients/:id/college-applications", handlers.CreateCollegeApplicationHandler)
		api.POST("/clients/:id/proficiencies", handlers.CreateProficiencyHandler)
		api.POST("/clients/:id/qualifications", handlers.CreateQualificationHandler)
	}

	// Start background jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			// Clean up expired sessions
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}

			// Send due-reminder emails
			jobs.SendDueReminders(db.DB, cfg)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
