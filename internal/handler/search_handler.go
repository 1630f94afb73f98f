package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/course-scheduler-api/internal/dto"
	"github.com/campushq/course-scheduler-api/internal/models"
	"github.com/campushq/course-scheduler-api/internal/service"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
	"github.com/campushq/course-scheduler-api/pkg/response"
)

// courseSearcher is the slice of the search service the handler needs.
type courseSearcher interface {
	Search(ctx context.Context, req dto.SearchCoursesRequest) (*models.SearchResponse, error)
	CourseDetail(ctx context.Context, courseID, seasonCode string) (*dto.CourseDetailResponse, error)
	Suggestions(ctx context.Context, req dto.SuggestionRequest) (*models.SuggestionResponse, error)
	Seasons(ctx context.Context) (*dto.SeasonsResponse, error)
	Filters() *dto.SearchFiltersResponse
}

// SearchHandler manages course discovery endpoints.
type SearchHandler struct {
	search    courseSearcher
	analytics *service.AnalyticsService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(search courseSearcher, analytics *service.AnalyticsService) *SearchHandler {
	return &SearchHandler{search: search, analytics: analytics}
}

// Search godoc
// @Summary Search courses by natural language or structured query
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body dto.SearchCoursesRequest true "Search request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /search/courses [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search payload"))
		return
	}

	start := time.Now()
	result, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	seasonCode, _ := result.Metadata["season_code"].(string)
	aiUsed, _ := result.Metadata["ai_enabled"].(bool)
	h.analytics.RecordSearch(service.SearchEvent{
		Query:       req.UserQuery,
		SeasonCode:  seasonCode,
		ResultCount: result.TotalCount,
		AIUsed:      aiUsed,
		Duration:    time.Since(start),
	})

	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// CourseDetail godoc
// @Summary Fetch one course with sections and similar courses
// @Tags Search
// @Produce json
// @Param courseId path string true "Course ID"
// @Param season_code query string false "Season code, defaults to the current season"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /search/courses/{courseId} [get]
func (h *SearchHandler) CourseDetail(c *gin.Context) {
	courseID := c.Param("courseId")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course id is required"))
		return
	}

	result, err := h.search.CourseDetail(c.Request.Context(), courseID, c.Query("season_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// Suggestions godoc
// @Summary Suggest search completions for a partial query
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body dto.SuggestionRequest true "Partial query"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /search/suggestions [post]
func (h *SearchHandler) Suggestions(c *gin.Context) {
	var req dto.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}

	result, err := h.search.Suggestions(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// Seasons godoc
// @Summary List known academic seasons
// @Tags Search
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /search/seasons [get]
func (h *SearchHandler) Seasons(c *gin.Context) {
	result, err := h.search.Seasons(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// Filters godoc
// @Summary List the static search filter catalog
// @Tags Search
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /search/filters [get]
func (h *SearchHandler) Filters(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.search.Filters(), nil, requestMeta(c))
}
