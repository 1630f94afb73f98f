package dto

import (
	"github.com/campushq/course-scheduler-api/internal/models"
)

// ConflictCheckRequest carries the sections of a proposed schedule.
type ConflictCheckRequest struct {
	Sections []models.Section `json:"sections" validate:"required,min=1"`
}

// ConflictCheckResponse reports detected conflicts for a set of sections.
type ConflictCheckResponse struct {
	SectionsChecked []string                  `json:"sections_checked"`
	Conflicts       []models.ScheduleConflict `json:"conflicts"`
	HasConflicts    bool                      `json:"has_conflicts"`
	HasErrors       bool                      `json:"has_errors"`
	TotalConflicts  int                       `json:"total_conflicts"`
	SeasonCode      string                    `json:"season_code"`
}

// OptimizeScheduleRequest asks for a better arrangement of an existing
// schedule built from the same courses.
type OptimizeScheduleRequest struct {
	Sections    []models.Section            `json:"sections" validate:"required,min=1"`
	Preferences *models.SchedulePreferences `json:"preferences,omitempty"`
}

// OptimizeScheduleResponse returns the best regenerated option alongside all
// candidates, with its load statistics and calendar projection.
type OptimizeScheduleResponse struct {
	OriginalSections    []string                `json:"original_sections"`
	OptimizedOption     *models.ScheduleOption  `json:"optimized_option"`
	AllOptions          []models.ScheduleOption `json:"all_options"`
	OptimizationApplied bool                    `json:"optimization_applied"`
	Explanation         string                  `json:"explanation,omitempty"`
	Summary             *models.ScheduleSummary `json:"summary,omitempty"`
	Weekly              *models.WeeklySchedule  `json:"weekly,omitempty"`
	SeasonCode          string                  `json:"season_code"`
}

// CourseSectionsResponse lists the sections of one course for a season.
type CourseSectionsResponse struct {
	CourseID         string           `json:"course_id"`
	SeasonCode       string           `json:"season_code"`
	Sections         []models.Section `json:"sections"`
	TotalCount       int              `json:"total_count"`
	ProcessingTimeMs int64            `json:"processing_time_ms"`
}

// ScheduleSummaryRequest carries sections for summarisation.
type ScheduleSummaryRequest struct {
	Sections []models.Section `json:"sections" validate:"required,min=1"`
}

// ScheduleSummaryResponse pairs load statistics with a weekly calendar view.
type ScheduleSummaryResponse struct {
	Summary models.ScheduleSummary `json:"summary"`
	Weekly  models.WeeklySchedule  `json:"weekly"`
}

// PreferenceCatalogResponse documents the accepted preference options and
// their defaults.
type PreferenceCatalogResponse struct {
	Preferences map[string]interface{} `json:"preferences"`
	Defaults    map[string]interface{} `json:"defaults"`
}
