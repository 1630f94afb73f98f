package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/dto"
	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

type searchCatalog interface {
	SearchCourses(ctx context.Context, query models.CourseSearchQuery) (*models.CourseSearchResult, error)
	GetCourseWithSections(ctx context.Context, courseID, seasonCode string) (*models.CourseWithSections, error)
	GetSeasons(ctx context.Context) ([]models.Season, error)
	ResolveSeason(seasonCode string) (string, error)
}

type searchAssistant interface {
	ParseSearchQuery(ctx context.Context, query, seasonCode string) models.ParsedQuery
	RankResults(ctx context.Context, query string, results []models.SearchResult, limit int) []models.SearchResult
	GenerateSuggestions(ctx context.Context, partialQuery string, limit int) []models.SearchSuggestion
	Enabled() bool
}

// SearchService orchestrates query sanitisation, AI parsing, catalog search
// and relevance ranking.
type SearchService struct {
	catalog   searchCatalog
	assistant searchAssistant
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SearchServiceConfig
}

// SearchServiceConfig bounds result sizes and cache lifetime.
type SearchServiceConfig struct {
	MaxResults      int
	SuggestionLimit int
	CacheTTL        time.Duration
}

// NewSearchService wires search dependencies.
func NewSearchService(
	catalog searchCatalog,
	assistant searchAssistant,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SearchServiceConfig,
) *SearchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &SearchService{
		catalog:   catalog,
		assistant: assistant,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Search executes a course search, parsing natural language queries through
// the AI assistant when enabled.
func (s *SearchService) Search(ctx context.Context, req dto.SearchCoursesRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid search payload")
	}
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog missing")
	}

	seasonCode := req.SeasonCode
	if req.StructuredQuery != nil && req.StructuredQuery.SeasonCode != "" {
		seasonCode = req.StructuredQuery.SeasonCode
	}
	seasonCode, err := s.catalog.ResolveSeason(seasonCode)
	if err != nil {
		return nil, err
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = s.cfg.MaxResults
	}
	sanitized := sanitizeQuery(req.UserQuery)

	var parsedQuery *models.ParsedQuery
	var searchQuery models.CourseSearchQuery
	switch {
	case req.StructuredQuery != nil:
		searchQuery = *req.StructuredQuery
		searchQuery.SeasonCode = seasonCode
		if searchQuery.Limit <= 0 {
			searchQuery.Limit = maxResults
		}
	case sanitized != "" && req.AIParsingEnabled() && s.aiEnabled():
		parsed := s.assistant.ParseSearchQuery(ctx, sanitized, seasonCode)
		parsedQuery = &parsed
		searchQuery = convertParsedQuery(parsed, seasonCode, maxResults)
	default:
		searchQuery = models.CourseSearchQuery{
			Query:      sanitized,
			SeasonCode: seasonCode,
			Limit:      maxResults,
		}
	}

	searchResult, err := s.searchCatalogCached(ctx, searchQuery)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(searchResult.Courses))
	for _, course := range searchResult.Courses {
		results = append(results, models.SearchResult{
			CourseWithSections: course,
			RelevanceScore:     1.0,
		})
	}
	if parsedQuery != nil {
		results = applyParsedFilters(results, *parsedQuery)
	}

	queryText := sanitized
	if queryText == "" {
		queryText = searchQuery.Query
	}
	if s.aiEnabled() && len(results) > 0 {
		results = s.assistant.RankResults(ctx, queryText, results, maxResults)
	} else if len(results) > maxResults {
		results = results[:maxResults]
	}

	var nextOffset *int
	if searchResult.HasMore {
		offset := searchQuery.Offset + len(results)
		nextOffset = &offset
	}

	response := &models.SearchResponse{
		Results:     results,
		TotalCount:  len(results),
		HasMore:     searchResult.HasMore,
		NextOffset:  nextOffset,
		ParsedQuery: parsedQuery,
		QueryTimeMs: time.Since(start).Milliseconds(),
		Metadata: map[string]interface{}{
			"season_code":   seasonCode,
			"filters_count": len(searchQuery.Filters),
			"ai_enabled":    s.aiEnabled(),
		},
	}

	s.logger.Info("course search completed",
		zap.String("season_code", seasonCode),
		zap.Int("results", len(results)),
		zap.Int64("elapsed_ms", response.QueryTimeMs))
	return response, nil
}

// CourseDetail loads one course with sections and similar courses from the
// same department.
func (s *SearchService) CourseDetail(ctx context.Context, courseID, seasonCode string) (*dto.CourseDetailResponse, error) {
	start := time.Now()
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog missing")
	}
	seasonCode, err := s.catalog.ResolveSeason(seasonCode)
	if err != nil {
		return nil, err
	}

	course, err := s.catalog.GetCourseWithSections(ctx, courseID, seasonCode)
	if err != nil {
		return nil, err
	}

	return &dto.CourseDetailResponse{
		CourseWithSections: *course,
		SimilarCourses:     s.similarCourses(ctx, course.Course, seasonCode),
		QueryTimeMs:        time.Since(start).Milliseconds(),
	}, nil
}

// Suggestions completes a partial search query.
func (s *SearchService) Suggestions(ctx context.Context, req dto.SuggestionRequest) (*models.SuggestionResponse, error) {
	start := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.SuggestionLimit
	}
	partial := sanitizeQuery(req.PartialQuery)

	var suggestions []models.SearchSuggestion
	if s.assistant != nil {
		suggestions = s.assistant.GenerateSuggestions(ctx, partial, limit)
	}
	if suggestions == nil {
		suggestions = []models.SearchSuggestion{}
	}

	return &models.SuggestionResponse{
		Suggestions: suggestions,
		QueryTimeMs: time.Since(start).Milliseconds(),
		Metadata: map[string]interface{}{
			"ai_enabled":    s.aiEnabled(),
			"partial_query": partial,
		},
	}, nil
}

// Seasons lists known academic seasons and resolves the current one.
func (s *SearchService) Seasons(ctx context.Context) (*dto.SeasonsResponse, error) {
	start := time.Now()
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog missing")
	}
	seasons, err := s.catalog.GetSeasons(ctx)
	if err != nil {
		return nil, err
	}

	current := ""
	for _, season := range seasons {
		if season.CurrentSeason {
			current = season.Code
			break
		}
	}
	if current == "" {
		current = models.CurrentSeasonCode(time.Now())
	}

	return &dto.SeasonsResponse{
		Seasons:          seasons,
		CurrentSeason:    current,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// Filters returns the static search filter catalog.
func (s *SearchService) Filters() *dto.SearchFiltersResponse {
	return &dto.SearchFiltersResponse{
		Filters: dto.SearchFilterCatalog{
			Departments: []dto.FilterCode{
				{Code: "CPSC", Name: "Computer Science"},
				{Code: "MATH", Name: "Mathematics"},
				{Code: "ENGL", Name: "English"},
				{Code: "HIST", Name: "History"},
				{Code: "ECON", Name: "Economics"},
			},
			Areas: []dto.FilterCode{
				{Code: "QR", Name: "Quantitative Reasoning"},
				{Code: "WR", Name: "Writing"},
				{Code: "SC", Name: "Science"},
				{Code: "HU", Name: "Humanities"},
				{Code: "SO", Name: "Social Science"},
			},
			Skills: []dto.FilterCode{
				{Code: "PROG", Name: "Programming"},
				{Code: "DATA", Name: "Data Analysis"},
				{Code: "RES", Name: "Research"},
				{Code: "COMM", Name: "Communication"},
			},
			TeachingMethods: []string{"In Person", "Online", "Hybrid", "Seminar", "Lecture"},
		},
		Metadata: map[string]interface{}{
			"last_updated": time.Now().UTC().Format(time.RFC3339),
			"version":      "1.0",
		},
	}
}

func (s *SearchService) aiEnabled() bool {
	return s.assistant != nil && s.assistant.Enabled()
}

func (s *SearchService) searchCatalogCached(ctx context.Context, query models.CourseSearchQuery) (*models.CourseSearchResult, error) {
	key := query.CacheKey()
	var cached models.CourseSearchResult
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	result, err := s.catalog.SearchCourses(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, result, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

func (s *SearchService) similarCourses(ctx context.Context, course models.Course, seasonCode string) []models.Course {
	if course.Department == nil || course.Department.Code == "" {
		return []models.Course{}
	}

	result, err := s.catalog.SearchCourses(ctx, models.CourseSearchQuery{
		Filters: []models.SearchFilter{
			{Field: "department", Operator: "in", Values: []string{course.Department.Code}},
		},
		SeasonCode: seasonCode,
		Limit:      6,
	})
	if err != nil {
		s.logger.Warn("similar course lookup failed",
			zap.String("course_id", course.ID),
			zap.Error(err))
		return []models.Course{}
	}

	similar := make([]models.Course, 0, 5)
	for _, hit := range result.Courses {
		if hit.Course.ID == course.ID {
			continue
		}
		if len(similar) == 5 {
			break
		}
		similar = append(similar, hit.Course)
	}
	return similar
}

// convertParsedQuery folds an AI-parsed query into a structured catalog
// search.
func convertParsedQuery(parsed models.ParsedQuery, seasonCode string, limit int) models.CourseSearchQuery {
	queryText := strings.Join(parsed.Keywords, " ")
	if queryText == "" {
		queryText = parsed.OriginalQuery
	}

	var filters []models.SearchFilter
	if len(parsed.SubjectCodes) > 0 {
		filters = append(filters, models.SearchFilter{
			Field:    "department",
			Operator: "in",
			Values:   parsed.SubjectCodes,
		})
	}
	for _, requirement := range parsed.Requirements {
		filters = append(filters, models.SearchFilter{
			Field:    "areas",
			Operator: "contains",
			Values:   []string{requirement},
		})
	}

	return models.CourseSearchQuery{
		Query:      queryText,
		Filters:    filters,
		SeasonCode: seasonCode,
		Limit:      limit,
	}
}

// applyParsedFilters enforces the parsed-query criteria the catalog cannot
// express: rating and workload bounds, final exam and Friday avoidance.
func applyParsedFilters(results []models.SearchResult, parsed models.ParsedQuery) []models.SearchResult {
	if parsed.MinRating == nil && parsed.MaxWorkload == nil && !parsed.NoFinalExam && !parsed.NoFriday {
		return results
	}

	kept := make([]models.SearchResult, 0, len(results))
	for _, result := range results {
		course := result.CourseWithSections
		if parsed.MinRating != nil {
			rating := averageProfessorRating(course.Course.Professors)
			if rating == nil || *rating < *parsed.MinRating {
				continue
			}
		}
		if parsed.MaxWorkload != nil {
			workload := averageProfessorWorkload(course.Course.Professors)
			if workload != nil && *workload > *parsed.MaxWorkload {
				continue
			}
		}
		if parsed.NoFinalExam && !anySectionMatches(course.Sections, sectionLacksFinal) {
			continue
		}
		if parsed.NoFriday && !anySectionMatches(course.Sections, sectionAvoidsFriday) {
			continue
		}
		kept = append(kept, result)
	}
	return kept
}

// anySectionMatches reports whether at least one section satisfies the
// predicate. Courses without fetched sections pass, there is nothing to
// disqualify them on.
func anySectionMatches(sections []models.Section, ok func(models.Section) bool) bool {
	if len(sections) == 0 {
		return true
	}
	for _, section := range sections {
		if ok(section) {
			return true
		}
	}
	return false
}

func sectionLacksFinal(section models.Section) bool {
	return section.FinalExam == nil || section.FinalExam.Date == ""
}

func sectionAvoidsFriday(section models.Section) bool {
	for _, meeting := range section.Meetings {
		for _, day := range meeting.DayTokens() {
			if day == models.DayFriday {
				return false
			}
		}
	}
	return true
}

var dangerousQueryChars = []string{"<", ">", "{", "}", "[", "]", "(", ")", ";", "'", "\""}

// sanitizeQuery strips characters with query-syntax meaning and collapses
// whitespace.
func sanitizeQuery(query string) string {
	sanitized := query
	for _, ch := range dangerousQueryChars {
		sanitized = strings.ReplaceAll(sanitized, ch, "")
	}
	return strings.Join(strings.Fields(sanitized), " ")
}
