package handlers

import (
	"net/http"
	"visa_flow_app_go/db"
	"visa_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetClientImportTemplateHandler downloads the bulk-import spreadsheet template
func GetClientImportTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateClientImportTemplate()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to generate template",
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="client_import_template.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportClientsHandler creates clients in bulk from an uploaded .xlsx file
func ImportClientsHandler(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"file": {"This field is required."},
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Failed to read uploaded file",
		})
	}
	defer src.Close()

	result, err := services.ImportClientsFromExcel(db.DB, src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Could not parse spreadsheet",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_processed": result.TotalProcessed,
		"success_count":   result.SuccessCount,
		"failed_count":    result.FailedCount,
		"skipped_count":   result.SkippedCount,
		"errors":          result.Errors,
	})
}
