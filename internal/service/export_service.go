package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/dto"
	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
	"github.com/campushq/course-scheduler-api/pkg/export"
	"github.com/campushq/course-scheduler-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix       string
	CleanupAfter    time.Duration
	CleanupInterval time.Duration
}

// ScheduleDownload aggregates resolved download data.
type ScheduleDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// ExportService renders schedule options to downloadable artifacts and
// signs their download URLs.
type ExportService struct {
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CleanupAfter <= 0 {
		cfg.CleanupAfter = 72 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Export renders the schedule option, stores the artifact, and returns a
// signed download URL.
func (s *ExportService) Export(ctx context.Context, req dto.ExportScheduleRequest) (*dto.ExportScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	format := models.ExportFormat(strings.ToLower(req.Format))
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidExportFormat, fmt.Sprintf("unsupported export format: %s", req.Format))
	}
	if len(req.Option.Sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule option has no sections")
	}
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export storage not configured")
	}

	dataset, title := buildScheduleDataset(req.Option, req.SeasonCode, req.Title)

	var payload []byte
	var err error
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}

	exportID := uuid.NewString()
	relPath, err := s.storage.Save(buildExportFilename(exportID, req.SeasonCode, format), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}

	s.metrics.RecordExport(string(format))
	s.logger.Info("schedule export stored",
		zap.String("export_id", exportID),
		zap.String("format", string(format)),
		zap.Int("size_bytes", len(payload)))

	return &dto.ExportScheduleResponse{
		ExportID:    exportID,
		Format:      format,
		DownloadURL: fmt.Sprintf("%s/schedules/export/%s/download", prefix, token),
		ExpiresAt:   expiresAt,
		SizeBytes:   len(payload),
	}, nil
}

// ResolveDownload validates the token and opens the stored artifact.
func (s *ExportService) ResolveDownload(token string) (*ScheduleDownload, error) {
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "export storage not configured")
	}
	exportID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrExportNotFound, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		s.logger.Warn("export artifact missing", zap.String("export_id", exportID), zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrExportNotFound, "export artifact no longer available")
	}
	return &ScheduleDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    formatFromPath(relPath),
		ExpiresAt: expiresAt,
	}, nil
}

// CleanupExpired removes artifacts older than the retention window.
func (s *ExportService) CleanupExpired() ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	return s.storage.CleanupOlderThan(s.cfg.CleanupAfter)
}

// StartCleanup sweeps once immediately, then periodically until the context
// is canceled.
func (s *ExportService) StartCleanup(ctx context.Context) {
	s.runCleanup()
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runCleanup()
			}
		}
	}()
}

func (s *ExportService) runCleanup() {
	deleted, err := s.CleanupExpired()
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
}

func buildExportFilename(exportID, seasonCode string, format models.ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("schedules/%s/schedule_%s_%s.%s", exportID, sanitizeFilename(seasonCode), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func formatFromPath(relPath string) models.ExportFormat {
	ext := strings.TrimPrefix(filepath.Ext(relPath), ".")
	format := models.ExportFormat(strings.ToLower(ext))
	if !format.Valid() {
		return models.ExportFormat(ext)
	}
	return format
}

// buildScheduleDataset flattens a schedule option into one table row per
// section meeting.
func buildScheduleDataset(option models.ScheduleOption, seasonCode, title string) (export.Dataset, string) {
	headers := []string{"Course", "Section", "Days", "Time", "Location", "Professor"}
	rows := make([]map[string]string, 0, len(option.Sections))
	for _, section := range option.Sections {
		professor := professorNames(section.Professors)
		if len(section.Meetings) == 0 {
			rows = append(rows, map[string]string{
				"Course":    section.CourseID,
				"Section":   section.Section,
				"Days":      "",
				"Time":      "",
				"Location":  "",
				"Professor": professor,
			})
			continue
		}
		for _, meeting := range section.Meetings {
			rows = append(rows, map[string]string{
				"Course":    section.CourseID,
				"Section":   section.Section,
				"Days":      meeting.Days,
				"Time":      meetingTimes(meeting),
				"Location":  deref(meeting.Location),
				"Professor": professor,
			})
		}
	}

	meta := make([]string, 0, 4)
	if seasonCode != "" {
		meta = append(meta, fmt.Sprintf("Season: %s", seasonCode))
	}
	meta = append(meta,
		fmt.Sprintf("Total Credits: %.1f", option.TotalCredits),
		fmt.Sprintf("Quality Score: %.0f/100", option.QualityScore),
		fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))

	if title == "" {
		title = "Course Schedule"
		if seasonCode != "" {
			title = fmt.Sprintf("Course Schedule %s", seasonCode)
		}
	}
	return export.Dataset{Headers: headers, Rows: rows, Meta: meta}, title
}

func meetingTimes(meeting models.Meeting) string {
	parts := make([]string, 0, len(meeting.Timeslots))
	for _, slot := range meeting.Timeslots {
		parts = append(parts, fmt.Sprintf("%s-%s", slot.StartTime, slot.EndTime))
	}
	return strings.Join(parts, ", ")
}

func professorNames(profs []models.Professor) string {
	names := make([]string, 0, len(profs))
	for _, prof := range profs {
		if prof.Name != "" {
			names = append(names, prof.Name)
		}
	}
	return strings.Join(names, ", ")
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
