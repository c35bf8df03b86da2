package dto

import (
	"github.com/oremi-app/oremi-backend/internal/models"
)

// BackupExport is the JSON backup file format.
type BackupExport struct {
	ExportedAt string          `json:"exportedAt"`
	Data       []models.Friend `json:"data"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
