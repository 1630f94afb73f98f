package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/course-scheduler-api/internal/dto"
	"github.com/campushq/course-scheduler-api/internal/models"
	"github.com/campushq/course-scheduler-api/internal/service"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
	"github.com/campushq/course-scheduler-api/pkg/response"
)

const healthProbeTimeout = 5 * time.Second

// scheduleGenerator is the slice of the generator service the handler needs.
type scheduleGenerator interface {
	Generate(ctx context.Context, req models.ScheduleRequest) (*models.GeneratedSchedule, error)
}

// scheduleManager covers conflict checks, optimization and schedule views.
type scheduleManager interface {
	CheckConflicts(ctx context.Context, req dto.ConflictCheckRequest, seasonCode string) (*dto.ConflictCheckResponse, error)
	Optimize(ctx context.Context, req dto.OptimizeScheduleRequest, seasonCode string) (*dto.OptimizeScheduleResponse, error)
	Summarize(sections []models.Section) models.ScheduleSummary
	WeeklyView(sections []models.Section) models.WeeklySchedule
	PreferenceCatalog() *dto.PreferenceCatalogResponse
}

// sectionCatalog exposes the catalog operations the schedule routes rely on.
type sectionCatalog interface {
	GetCourseSections(ctx context.Context, courseID, seasonCode string) ([]models.Section, error)
	ResolveSeason(seasonCode string) (string, error)
	InvalidateSeason(ctx context.Context, seasonCode string) error
	HealthCheck(ctx context.Context) error
}

// ScheduleHandler manages schedule generation and inspection endpoints.
type ScheduleHandler struct {
	generator scheduleGenerator
	schedules scheduleManager
	catalog   sectionCatalog
	ai        *service.AIService
	cache     *service.CacheService
	analytics *service.AnalyticsService
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(
	generator scheduleGenerator,
	schedules scheduleManager,
	catalog sectionCatalog,
	ai *service.AIService,
	cache *service.CacheService,
	analytics *service.AnalyticsService,
) *ScheduleHandler {
	return &ScheduleHandler{
		generator: generator,
		schedules: schedules,
		catalog:   catalog,
		ai:        ai,
		cache:     cache,
		analytics: analytics,
	}
}

// Generate godoc
// @Summary Generate schedule options
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body models.ScheduleRequest true "Generation request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	start := time.Now()
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		h.analytics.RecordGeneration(service.GenerationEvent{
			SeasonCode:  req.SeasonCode,
			Status:      "failed",
			CourseCount: len(req.CourseIDs),
			Duration:    time.Since(start),
		})
		response.Error(c, err)
		return
	}

	sampled, _ := result.Metadata["sampling_used"].(bool)
	avgQuality, _ := result.Metadata["average_quality"].(float64)
	h.analytics.RecordGeneration(service.GenerationEvent{
		RequestID:      result.RequestID,
		SeasonCode:     result.SeasonCode,
		Status:         "success",
		CourseCount:    len(req.CourseIDs),
		OptionCount:    len(result.Options),
		Combinations:   result.TotalOptionsGenerated,
		SamplingUsed:   sampled,
		AverageQuality: avgQuality,
		Duration:       time.Since(start),
	})

	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// CourseSections godoc
// @Summary List parsed sections for a course
// @Tags Schedules
// @Produce json
// @Param courseId path string true "Course ID"
// @Param season_code query string false "Season code, defaults to the current season"
// @Param include_full query bool false "Include sections with no remaining seats"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/courses/{courseId}/sections [get]
func (h *ScheduleHandler) CourseSections(c *gin.Context) {
	courseID := c.Param("courseId")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course id is required"))
		return
	}

	seasonCode, err := h.catalog.ResolveSeason(c.Query("season_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	includeFull, _ := strconv.ParseBool(c.DefaultQuery("include_full", "false"))

	start := time.Now()
	sections, err := h.catalog.GetCourseSections(c.Request.Context(), courseID, seasonCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !includeFull {
		open := make([]models.Section, 0, len(sections))
		for _, section := range sections {
			if !section.IsFull() {
				open = append(open, section)
			}
		}
		sections = open
	}

	resp := dto.CourseSectionsResponse{
		CourseID:         courseID,
		SeasonCode:       seasonCode,
		Sections:         sections,
		TotalCount:       len(sections),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	response.JSON(c, http.StatusOK, resp, nil, requestMeta(c))
}

// Conflicts godoc
// @Summary Detect conflicts in a set of sections
// @Tags Schedules
// @Accept json
// @Produce json
// @Param season_code query string false "Season code, defaults to the current season"
// @Param payload body dto.ConflictCheckRequest true "Sections to inspect"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/conflicts [post]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict check payload"))
		return
	}

	result, err := h.schedules.CheckConflicts(c.Request.Context(), req, c.Query("season_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// Optimize godoc
// @Summary Re-optimize an existing schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param season_code query string false "Season code, defaults to the current season"
// @Param payload body dto.OptimizeScheduleRequest true "Current sections and preferences"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/optimize [post]
func (h *ScheduleHandler) Optimize(c *gin.Context) {
	var req dto.OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimize payload"))
		return
	}

	result, err := h.schedules.Optimize(c.Request.Context(), req, c.Query("season_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, requestMeta(c))
}

// Summary godoc
// @Summary Compute summary statistics and a weekly grid for sections
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleSummaryRequest true "Sections to summarize"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/summary [post]
func (h *ScheduleHandler) Summary(c *gin.Context) {
	var req dto.ScheduleSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid summary payload"))
		return
	}
	if len(req.Sections) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at least one section is required"))
		return
	}

	resp := dto.ScheduleSummaryResponse{
		Summary: h.schedules.Summarize(req.Sections),
		Weekly:  h.schedules.WeeklyView(req.Sections),
	}
	response.JSON(c, http.StatusOK, resp, nil, requestMeta(c))
}

// Preferences godoc
// @Summary List supported preferences and constraints
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules/preferences [get]
func (h *ScheduleHandler) Preferences(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.schedules.PreferenceCatalog(), nil, requestMeta(c))
}

// InvalidateCache godoc
// @Summary Drop cached catalog data for a season
// @Tags Schedules
// @Produce json
// @Param seasonCode path string true "Season code"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /schedules/cache/{seasonCode} [delete]
func (h *ScheduleHandler) InvalidateCache(c *gin.Context) {
	if err := h.catalog.InvalidateSeason(c.Request.Context(), c.Param("seasonCode")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Health godoc
// @Summary Report scheduler component health
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules/health [get]
func (h *ScheduleHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	status := "healthy"
	components := map[string]string{}

	if err := h.catalog.HealthCheck(ctx); err != nil {
		components["catalog"] = "unhealthy"
		status = "degraded"
	} else {
		components["catalog"] = "healthy"
	}

	if !h.cache.Enabled() {
		components["cache"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		components["cache"] = "unhealthy"
		status = "degraded"
	} else {
		components["cache"] = "healthy"
	}

	if !h.ai.Enabled() {
		components["ai"] = "disabled"
	} else if err := h.ai.HealthCheck(ctx); err != nil {
		components["ai"] = "unhealthy"
		status = "degraded"
	} else {
		components["ai"] = "healthy"
	}

	response.JSON(c, http.StatusOK, gin.H{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC(),
	}, nil, requestMeta(c))
}
