package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

type courseCatalog interface {
	SearchCourses(ctx context.Context, query models.CourseSearchQuery) (*models.CourseSearchResult, error)
	GetCourseDetail(ctx context.Context, courseID, seasonCode string) (*models.CourseWithSections, error)
	GetCourseSections(ctx context.Context, courseID, seasonCode string) ([]models.Section, error)
	GetSeasons(ctx context.Context) ([]models.Season, error)
}

// CatalogService fronts the course catalog with read-through caching and
// season code handling. Catalog reads are hot during schedule generation, so
// section lookups are cached per season and course.
type CatalogService struct {
	catalog courseCatalog
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     CatalogServiceConfig
}

// CatalogServiceConfig holds cache lifetimes for catalog lookups.
type CatalogServiceConfig struct {
	CacheTTL   time.Duration
	SeasonsTTL time.Duration
}

// NewCatalogService wires the catalog source and cache.
func NewCatalogService(catalog courseCatalog, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg CatalogServiceConfig) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.SeasonsTTL <= 0 {
		cfg.SeasonsTTL = 6 * time.Hour
	}
	return &CatalogService{catalog: catalog, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// GetCourseSections returns the sections of a course for a season, cached.
func (s *CatalogService) GetCourseSections(ctx context.Context, courseID, seasonCode string) ([]models.Section, error) {
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog source missing")
	}
	key := fmt.Sprintf("sections:%s:%s", seasonCode, courseID)
	var cached []models.Section
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	sections, err := s.catalog.GetCourseSections(ctx, courseID, seasonCode)
	s.metrics.ObserveCatalogRequest("course_sections", time.Since(start))
	if err != nil {
		return nil, err
	}
	s.persistCache(ctx, key, sections, s.cfg.CacheTTL)
	return sections, nil
}

// GetCourseWithSections returns full course detail including sections, cached.
func (s *CatalogService) GetCourseWithSections(ctx context.Context, courseID, seasonCode string) (*models.CourseWithSections, error) {
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog source missing")
	}
	key := fmt.Sprintf("course:%s:%s", seasonCode, courseID)
	var cached models.CourseWithSections
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	start := time.Now()
	course, err := s.catalog.GetCourseDetail(ctx, courseID, seasonCode)
	s.metrics.ObserveCatalogRequest("course_detail", time.Since(start))
	if err != nil {
		return nil, err
	}
	s.persistCache(ctx, key, course, s.cfg.CacheTTL)
	return course, nil
}

// SearchCourses queries the catalog directly. Result caching is handled one
// level up where the sanitised query string is known.
func (s *CatalogService) SearchCourses(ctx context.Context, query models.CourseSearchQuery) (*models.CourseSearchResult, error) {
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog source missing")
	}
	start := time.Now()
	result, err := s.catalog.SearchCourses(ctx, query)
	s.metrics.ObserveCatalogRequest("search_courses", time.Since(start))
	return result, err
}

// GetSeasons lists known academic seasons, cached.
func (s *CatalogService) GetSeasons(ctx context.Context) ([]models.Season, error) {
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "catalog source missing")
	}
	key := "seasons:all"
	var cached []models.Season
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	seasons, err := s.catalog.GetSeasons(ctx)
	s.metrics.ObserveCatalogRequest("seasons", time.Since(start))
	if err != nil {
		return nil, err
	}
	s.persistCache(ctx, key, seasons, s.cfg.SeasonsTTL)
	return seasons, nil
}

// ResolveSeason validates an explicit season code or falls back to the
// current one when empty.
func (s *CatalogService) ResolveSeason(seasonCode string) (string, error) {
	if seasonCode == "" {
		return models.CurrentSeasonCode(time.Now()), nil
	}
	if !models.ValidateSeasonCode(seasonCode) {
		return "", appErrors.Clone(appErrors.ErrInvalidSeason, fmt.Sprintf("invalid season code: %s", seasonCode))
	}
	return seasonCode, nil
}

// HealthCheck probes the upstream catalog directly, bypassing the cache so a
// stale entry cannot mask an outage.
func (s *CatalogService) HealthCheck(ctx context.Context) error {
	if s.catalog == nil {
		return appErrors.Clone(appErrors.ErrInternal, "catalog source missing")
	}
	if _, err := s.catalog.GetSeasons(ctx); err != nil {
		return err
	}
	return nil
}

// InvalidateSeason drops cached course and section entries for a season,
// used after upstream catalog refreshes.
func (s *CatalogService) InvalidateSeason(ctx context.Context, seasonCode string) error {
	if !models.ValidateSeasonCode(seasonCode) {
		return appErrors.Clone(appErrors.ErrInvalidSeason, fmt.Sprintf("invalid season code: %s", seasonCode))
	}
	patterns := []string{
		fmt.Sprintf("sections:%s:*", seasonCode),
		fmt.Sprintf("course:%s:*", seasonCode),
	}
	for _, pattern := range patterns {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			return err
		}
	}
	s.logger.Info("catalog cache invalidated", zap.String("season_code", seasonCode))
	return nil
}

func (s *CatalogService) persistCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
