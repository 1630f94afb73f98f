package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/course-scheduler-api/internal/dto"
	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

type searcherMock struct {
	searchResult   *models.SearchResponse
	searchErr      error
	detail         *dto.CourseDetailResponse
	detailErr      error
	suggestions    *models.SuggestionResponse
	suggestionsErr error
	seasons        *dto.SeasonsResponse
	seasonsErr     error
	filters        *dto.SearchFiltersResponse

	capturedSearch   dto.SearchCoursesRequest
	capturedCourseID string
	capturedSeason   string
}

func (m *searcherMock) Search(_ context.Context, req dto.SearchCoursesRequest) (*models.SearchResponse, error) {
	m.capturedSearch = req
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResult, nil
}

func (m *searcherMock) CourseDetail(_ context.Context, courseID, seasonCode string) (*dto.CourseDetailResponse, error) {
	m.capturedCourseID = courseID
	m.capturedSeason = seasonCode
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	return m.detail, nil
}

func (m *searcherMock) Suggestions(context.Context, dto.SuggestionRequest) (*models.SuggestionResponse, error) {
	if m.suggestionsErr != nil {
		return nil, m.suggestionsErr
	}
	return m.suggestions, nil
}

func (m *searcherMock) Seasons(context.Context) (*dto.SeasonsResponse, error) {
	if m.seasonsErr != nil {
		return nil, m.seasonsErr
	}
	return m.seasons, nil
}

func (m *searcherMock) Filters() *dto.SearchFiltersResponse {
	return m.filters
}

func TestSearchHandlerSearchSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searcherMock{searchResult: &models.SearchResponse{
		Results:    []models.SearchResult{},
		TotalCount: 4,
		Metadata:   map[string]interface{}{"season_code": "202503", "ai_enabled": true},
	}}
	handler := NewSearchHandler(search, idleAnalytics())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/search/courses",
		`{"user_query":"easy cs courses","season_code":"202503","max_results":25}`)

	handler.Search(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "easy cs courses", search.capturedSearch.UserQuery)
	assert.Equal(t, 25, search.capturedSearch.MaxResults)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, float64(4), envelope.Data["total_count"])
}

func TestSearchHandlerSearchInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSearchHandler(&searcherMock{}, idleAnalytics())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/search/courses", `{"user_query":`)

	handler.Search(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error["code"])
}

func TestSearchHandlerSearchServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searcherMock{searchErr: appErrors.Clone(appErrors.ErrCatalogUnavailable, "catalog down")}
	handler := NewSearchHandler(search, idleAnalytics())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/search/courses", `{"user_query":"algebra"}`)

	handler.Search(c)

	require.Equal(t, appErrors.ErrCatalogUnavailable.Status, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.ErrCatalogUnavailable.Code, envelope.Error["code"])
}

func TestSearchHandlerCourseDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searcherMock{detail: &dto.CourseDetailResponse{
		CourseWithSections: models.CourseWithSections{Course: models.Course{ID: "CPSC 223", Title: "Data Structures"}},
		SimilarCourses:     []models.Course{{ID: "CPSC 323"}},
	}}
	handler := NewSearchHandler(search, idleAnalytics())
	router := gin.New()
	router.GET("/search/courses/:courseId", handler.CourseDetail)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search/courses/CPSC%20223?season_code=202503", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CPSC 223", search.capturedCourseID)
	assert.Equal(t, "202503", search.capturedSeason)
}

func TestSearchHandlerCourseDetailNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searcherMock{detailErr: appErrors.Clone(appErrors.ErrCourseNotFound, "course CPSC 999 not found")}
	handler := NewSearchHandler(search, idleAnalytics())
	router := gin.New()
	router.GET("/search/courses/:courseId", handler.CourseDetail)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search/courses/CPSC%20999", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.ErrCourseNotFound.Code, envelope.Error["code"])
}

func TestSearchHandlerSuggestions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searcherMock{suggestions: &models.SuggestionResponse{
		Suggestions: []models.SearchSuggestion{{Text: "intro to ai", Type: "keyword"}},
	}}
	handler := NewSearchHandler(search, idleAnalytics())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/search/suggestions", `{"partial_query":"intro"}`)

	handler.Suggestions(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	suggestions, ok := envelope.Data["suggestions"].([]interface{})
	require.True(t, ok)
	require.Len(t, suggestions, 1)
}

func TestSearchHandlerSeasons(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searcherMock{seasons: &dto.SeasonsResponse{
		Seasons:       []models.Season{{Code: "202503", Year: 2025, Term: "fall"}},
		CurrentSeason: "202503",
	}}
	handler := NewSearchHandler(search, idleAnalytics())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/search/seasons", nil)

	handler.Seasons(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "202503", envelope.Data["current_season"])
}

func TestSearchHandlerFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	search := &searcherMock{filters: &dto.SearchFiltersResponse{
		Filters:  dto.SearchFilterCatalog{Departments: []dto.FilterCode{{Code: "CPSC", Name: "Computer Science"}}},
		Metadata: map[string]interface{}{"version": "1.0"},
	}}
	handler := NewSearchHandler(search, idleAnalytics())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/search/filters", nil)

	handler.Filters(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	metadata, ok := envelope.Data["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1.0", metadata["version"])
}
