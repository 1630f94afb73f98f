package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/pkg/jobs"
)

const (
	analyticsEventGeneration = "generation"
	analyticsEventSearch     = "search"
)

// GenerationEvent captures one schedule generation for usage logging.
type GenerationEvent struct {
	RequestID      string
	SeasonCode     string
	Status         string
	CourseCount    int
	OptionCount    int
	Combinations   int
	SamplingUsed   bool
	AverageQuality float64
	Duration       time.Duration
}

// SearchEvent captures one course search for usage logging.
type SearchEvent struct {
	Query       string
	SeasonCode  string
	ResultCount int
	AIUsed      bool
	Duration    time.Duration
}

// AnalyticsConfig sizes the background event queue.
type AnalyticsConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
}

// AnalyticsService records usage events off the request path. Events are
// logged and counted, never stored.
type AnalyticsService struct {
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool
}

// NewAnalyticsService builds the service and its backing queue.
func NewAnalyticsService(metrics *MetricsService, logger *zap.Logger, cfg AnalyticsConfig) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}
	s := &AnalyticsService{
		metrics: metrics,
		logger:  logger,
		enabled: cfg.Enabled,
	}
	s.queue = jobs.NewQueue("analytics", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: 1,
		Logger:     logger,
	})
	return s
}

// Enabled reports whether events are being recorded.
func (s *AnalyticsService) Enabled() bool {
	return s != nil && s.enabled && s.queue != nil
}

// Start boots the worker pool.
func (s *AnalyticsService) Start(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *AnalyticsService) Stop() {
	if !s.Enabled() {
		return
	}
	s.queue.Stop()
}

// RecordGeneration enqueues a generation event. Events are dropped when the
// queue is unavailable, analytics never block or fail a request.
func (s *AnalyticsService) RecordGeneration(event GenerationEvent) {
	s.record(analyticsEventGeneration, event.RequestID, event)
}

// RecordSearch enqueues a search event.
func (s *AnalyticsService) RecordSearch(event SearchEvent) {
	s.record(analyticsEventSearch, "", event)
}

func (s *AnalyticsService) record(kind, id string, payload interface{}) {
	if !s.Enabled() {
		return
	}
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: id, Type: kind, Payload: payload}); err != nil {
		s.logger.Debug("analytics event dropped", zap.String("kind", kind), zap.Error(err))
	}
}

func (s *AnalyticsService) handle(_ context.Context, job jobs.Job) error {
	switch job.Type {
	case analyticsEventGeneration:
		event, ok := job.Payload.(GenerationEvent)
		if !ok {
			return fmt.Errorf("unexpected generation payload %T", job.Payload)
		}
		s.metrics.RecordGeneration(event.Status, event.Duration, event.Combinations, event.SamplingUsed)
		s.logger.Info("schedule generation recorded",
			zap.String("request_id", event.RequestID),
			zap.String("season_code", event.SeasonCode),
			zap.String("status", event.Status),
			zap.Int("courses", event.CourseCount),
			zap.Int("options", event.OptionCount),
			zap.Int("combinations", event.Combinations),
			zap.Bool("sampling_used", event.SamplingUsed),
			zap.Float64("average_quality", event.AverageQuality),
			zap.Duration("duration", event.Duration))
	case analyticsEventSearch:
		event, ok := job.Payload.(SearchEvent)
		if !ok {
			return fmt.Errorf("unexpected search payload %T", job.Payload)
		}
		s.logger.Info("course search recorded",
			zap.String("query", event.Query),
			zap.String("season_code", event.SeasonCode),
			zap.Int("results", event.ResultCount),
			zap.Bool("ai_used", event.AIUsed),
			zap.Duration("duration", event.Duration))
	default:
		return fmt.Errorf("unknown analytics event %q", job.Type)
	}
	return nil
}
