package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"visa_flow_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ImportResult contains the summary of the import process
type ImportResult struct {
	TotalProcessed int
	SuccessCount   int
	FailedCount    int
	SkippedCount   int
	Errors         []string
}

const importSheetName = "Clients"

// clientImportHeaders is the expected column layout of the import sheet
var clientImportHeaders = []string{"Name", "Email", "Phone", "Stage"}

// GenerateClientImportTemplate builds the Excel template for bulk lead import
func GenerateClientImportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", importSheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	for i, header := range clientImportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(importSheetName, cell, header)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(clientImportHeaders), 1)
	f.SetCellStyle(importSheetName, "A1", endCell, headerStyle)

	// Example row
	f.SetCellValue(importSheetName, "A2", "Jane Doe")
	f.SetCellValue(importSheetName, "B2", "jane@example.com")
	f.SetCellValue(importSheetName, "C2", "+1 555 0100")
	f.SetCellValue(importSheetName, "D2", models.StageLead)

	f.SetColWidth(importSheetName, "A", "D", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf, nil
}

// ImportClientsFromExcel reads an .xlsx sheet and creates one client per
// row. Rows with a missing name are skipped; rows with an unknown stage
// fail individually without aborting the rest of the import. The Stage
// column accepts both the canonical and the legacy two-letter encoding
// and defaults to LEAD when blank.
func ImportClientsFromExcel(db *gorm.DB, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := importSheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNum := i + 1

		name := cellAt(row, 0)
		email := cellAt(row, 1)
		phone := cellAt(row, 2)
		stageValue := cellAt(row, 3)

		if name == "" && email == "" {
			continue // blank row
		}
		result.TotalProcessed++

		if name == "" {
			result.SkippedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: name is required", rowNum))
			continue
		}

		stage := models.StageLead
		if stageValue != "" {
			canonical, ok := models.ParseStage(strings.ToUpper(stageValue))
			if !ok {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown stage %q", rowNum, stageValue))
				continue
			}
			stage = canonical
		}

		client := models.Client{
			Name:  name,
			Email: email,
			Stage: stage,
		}
		if phone != "" {
			client.Phone = &phone
		}

		if err := db.Create(&client).Error; err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.SuccessCount++
	}

	return result, nil
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
