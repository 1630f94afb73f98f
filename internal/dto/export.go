package dto

import (
	"time"

	"github.com/campushq/course-scheduler-api/internal/models"
)

// ExportScheduleRequest renders one schedule option to a downloadable file.
type ExportScheduleRequest struct {
	Format     string                `json:"format" validate:"required"`
	Option     models.ScheduleOption `json:"option"`
	SeasonCode string                `json:"season_code,omitempty"`
	Title      string                `json:"title,omitempty"`
}

// ExportScheduleResponse carries the signed download location.
type ExportScheduleResponse struct {
	ExportID    string              `json:"export_id"`
	Format      models.ExportFormat `json:"format"`
	DownloadURL string              `json:"download_url"`
	ExpiresAt   time.Time           `json:"expires_at"`
	SizeBytes   int                 `json:"size_bytes"`
}
