package dto

import (
	"github.com/campushq/course-scheduler-api/internal/models"
)

// SearchCoursesRequest is a natural language or structured course search.
// UseAIParsing defaults to true when omitted.
type SearchCoursesRequest struct {
	UserQuery       string                    `json:"user_query,omitempty"`
	StructuredQuery *models.CourseSearchQuery `json:"structured_query,omitempty"`
	UseAIParsing    *bool                     `json:"use_ai_parsing,omitempty"`
	SeasonCode      string                    `json:"season_code,omitempty"`
	MaxResults      int                       `json:"max_results" validate:"omitempty,gte=1,lte=200"`
}

// AIParsingEnabled resolves the tri-state flag.
func (r SearchCoursesRequest) AIParsingEnabled() bool {
	return r.UseAIParsing == nil || *r.UseAIParsing
}

// SuggestionRequest asks for completions of a partial query.
type SuggestionRequest struct {
	PartialQuery string `json:"partial_query" validate:"required,min=1"`
	SeasonCode   string `json:"season_code,omitempty"`
	Limit        int    `json:"limit" validate:"omitempty,gte=1,lte=20"`
}

// CourseDetailResponse is a single course with its sections plus related
// courses from the same department.
type CourseDetailResponse struct {
	models.CourseWithSections
	SimilarCourses []models.Course `json:"similar_courses"`
	QueryTimeMs    int64           `json:"query_time_ms"`
}

// SeasonsResponse lists known academic seasons.
type SeasonsResponse struct {
	Seasons          []models.Season `json:"seasons"`
	CurrentSeason    string          `json:"current_season"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}

// FilterCode is a code/name pair for a filter option.
type FilterCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SearchFilterCatalog enumerates the supported search filter options.
type SearchFilterCatalog struct {
	Departments     []FilterCode `json:"departments"`
	Areas           []FilterCode `json:"areas"`
	Skills          []FilterCode `json:"skills"`
	TeachingMethods []string     `json:"teaching_methods"`
}

// SearchFiltersResponse wraps the filter catalog with versioning metadata.
type SearchFiltersResponse struct {
	Filters  SearchFilterCatalog    `json:"filters"`
	Metadata map[string]interface{} `json:"metadata"`
}
