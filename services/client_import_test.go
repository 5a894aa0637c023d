package services

import (
	"bytes"
	"testing"
	"visa_flow_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupImportTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Client{})
	return db
}

// buildImportSheet writes rows (after the header) into an in-memory xlsx
func buildImportSheet(t *testing.T, rows [][]string) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", "Clients")

	for i, header := range []string{"Name", "Email", "Phone", "Stage"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Clients", cell, header)
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue("Clients", cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)
	return buf
}

func TestGenerateClientImportTemplate(t *testing.T) {
	buf, err := GenerateClientImportTemplate()
	assert.NoError(t, err)
	assert.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Clients")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email", "Phone", "Stage"}, rows[0])
}

func TestImportClientsFromExcel(t *testing.T) {
	db := setupImportTestDB()

	buf := buildImportSheet(t, [][]string{
		{"Amira Hassan", "amira@example.com", "+20 100 555 01", "LEAD"},
		{"Boris Petrov", "boris@example.com", "", "FOLLOW_UP"},
		{"Chen Wei", "chen@example.com", "", ""}, // blank stage defaults to LEAD
	})

	result, err := ImportClientsFromExcel(db, buf)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Empty(t, result.Errors)

	var chen models.Client
	db.First(&chen, "email = ?", "chen@example.com")
	assert.Equal(t, models.StageLead, chen.Stage)

	var amira models.Client
	db.First(&amira, "email = ?", "amira@example.com")
	assert.Equal(t, "+20 100 555 01", *amira.Phone)
}

func TestImportClientsFromExcel_LegacyStageCodes(t *testing.T) {
	db := setupImportTestDB()

	buf := buildImportSheet(t, [][]string{
		{"Dana", "dana@example.com", "", "FU"},
		{"Emil", "emil@example.com", "", "ct"}, // lowercase legacy code
	})

	result, err := ImportClientsFromExcel(db, buf)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)

	var dana, emil models.Client
	db.First(&dana, "email = ?", "dana@example.com")
	db.First(&emil, "email = ?", "emil@example.com")
	assert.Equal(t, models.StageFollowUp, dana.Stage)
	assert.Equal(t, models.StageClient, emil.Stage)
}

func TestImportClientsFromExcel_RowErrors(t *testing.T) {
	db := setupImportTestDB()

	buf := buildImportSheet(t, [][]string{
		{"", "noname@example.com", "", ""},          // missing name: skipped
		{"Good Row", "good@example.com", "", ""},    // fine
		{"Bad Stage", "bad@example.com", "", "XX"},  // unknown stage: failed
		{"", "", "", ""},                            // fully blank: ignored
	})

	result, err := ImportClientsFromExcel(db, buf)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.TotalProcessed)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "name is required")
	assert.Contains(t, result.Errors[1], "unknown stage")

	var count int64
	db.Model(&models.Client{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestImportClientsFromExcel_NotASpreadsheet(t *testing.T) {
	db := setupImportTestDB()
	_, err := ImportClientsFromExcel(db, bytes.NewBufferString("not an xlsx"))
	assert.Error(t, err)
}
