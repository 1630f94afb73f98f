package models

import (
	"fmt"
	"strings"
)

// SearchFilter narrows a catalog query on a single field.
type SearchFilter struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
}

// CourseSearchQuery is a structured catalog query with filters and pagination.
type CourseSearchQuery struct {
	Query               string         `json:"query,omitempty"`
	Filters             []SearchFilter `json:"filters,omitempty"`
	SeasonCode          string         `json:"season_code,omitempty"`
	Limit               int            `json:"limit"`
	Offset              int            `json:"offset"`
	SortBy              string         `json:"sort_by,omitempty"`
	SortDirection       string         `json:"sort_direction,omitempty"`
	IncludeFullSections bool           `json:"include_full_sections"`
}

// CacheKey builds a deterministic cache key covering every field that changes
// the upstream query.
func (q CourseSearchQuery) CacheKey() string {
	var sb strings.Builder
	sb.WriteString("search:")
	sb.WriteString(q.SeasonCode)
	sb.WriteString(":")
	sb.WriteString(q.Query)
	for _, filter := range q.Filters {
		sb.WriteString("|")
		sb.WriteString(filter.Field)
		sb.WriteString("=")
		sb.WriteString(strings.Join(filter.Values, ","))
	}
	fmt.Fprintf(&sb, ":%d:%d", q.Limit, q.Offset)
	return sb.String()
}

// ParsedQuery is the structured interpretation of a natural-language search.
type ParsedQuery struct {
	OriginalQuery  string   `json:"original_query"`
	SubjectCodes   []string `json:"subject_codes,omitempty"`
	CourseCodes    []string `json:"course_codes,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	MinRating      *float64 `json:"min_rating,omitempty"`
	MaxWorkload    *float64 `json:"max_workload,omitempty"`
	NoFinalExam    bool     `json:"no_final_exam,omitempty"`
	NoFriday       bool     `json:"no_friday,omitempty"`
	Requirements   []string `json:"requirements,omitempty"`
	Interpretation string   `json:"interpretation,omitempty"`
}

// SearchResult is one scored course hit.
type SearchResult struct {
	CourseWithSections CourseWithSections  `json:"course_with_sections"`
	RelevanceScore     float64             `json:"relevance_score"`
	MatchReasons       []string            `json:"match_reasons,omitempty"`
	Highlights         map[string][]string `json:"highlights,omitempty"`
}

// SearchResponse is the complete paginated search result.
type SearchResponse struct {
	Results     []SearchResult         `json:"results"`
	TotalCount  int                    `json:"total_count"`
	HasMore     bool                   `json:"has_more"`
	NextOffset  *int                   `json:"next_offset,omitempty"`
	ParsedQuery *ParsedQuery           `json:"parsed_query,omitempty"`
	QueryTimeMs int64                  `json:"query_time_ms"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// SearchSuggestion is one autocomplete candidate.
type SearchSuggestion struct {
	Text     string                 `json:"text"`
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SuggestionResponse carries autocomplete candidates for a partial query.
type SuggestionResponse struct {
	Suggestions []SearchSuggestion     `json:"suggestions"`
	QueryTimeMs int64                  `json:"query_time_ms"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// FilterOption describes one filter control for catalog search UIs.
type FilterOption struct {
	Field    string   `json:"field"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
}
