package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/dto"
	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

type scheduleOptimizer interface {
	Generate(ctx context.Context, req models.ScheduleRequest) (*models.GeneratedSchedule, error)
	DetectConflicts(sections []models.Section) []models.ScheduleConflict
}

type scheduleExplainer interface {
	ExplainSchedule(ctx context.Context, option models.ScheduleOption) string
}

// ScheduleService layers conflict checks, optimisation and calendar views on
// top of the generator.
type ScheduleService struct {
	generator scheduleOptimizer
	explainer scheduleExplainer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(generator scheduleOptimizer, explainer scheduleExplainer, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{generator: generator, explainer: explainer, validator: validate, logger: logger}
}

// CheckConflicts runs conflict detection across a set of sections.
func (s *ScheduleService) CheckConflicts(ctx context.Context, req dto.ConflictCheckRequest, seasonCode string) (*dto.ConflictCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	if s.generator == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "schedule generator missing")
	}

	conflicts := s.generator.DetectConflicts(req.Sections)
	if conflicts == nil {
		conflicts = []models.ScheduleConflict{}
	}

	checked := make([]string, 0, len(req.Sections))
	for _, section := range req.Sections {
		checked = append(checked, section.ID)
	}

	hasErrors := false
	for _, conflict := range conflicts {
		if conflict.Severity == models.SeverityError {
			hasErrors = true
			break
		}
	}

	s.logger.Info("conflict check completed",
		zap.Int("sections", len(req.Sections)),
		zap.Int("conflicts", len(conflicts)))
	return &dto.ConflictCheckResponse{
		SectionsChecked: checked,
		Conflicts:       conflicts,
		HasConflicts:    len(conflicts) > 0,
		HasErrors:       hasErrors,
		TotalConflicts:  len(conflicts),
		SeasonCode:      seasonCode,
	}, nil
}

// Optimize regenerates schedules for the courses in an existing schedule and
// returns the best arrangement found.
func (s *ScheduleService) Optimize(ctx context.Context, req dto.OptimizeScheduleRequest, seasonCode string) (*dto.OptimizeScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize payload")
	}
	if s.generator == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "schedule generator missing")
	}

	current := models.ScheduleOption{Sections: req.Sections}
	courseIDs := current.CourseIDs()

	result, err := s.generator.Generate(ctx, models.ScheduleRequest{
		CourseIDs:   courseIDs,
		SeasonCode:  seasonCode,
		Constraints: &models.ScheduleConstraints{},
		Preferences: req.Preferences,
		MaxOptions:  10,
	})
	if err != nil {
		return nil, err
	}

	var best *models.ScheduleOption
	if len(result.Options) > 0 {
		best = &result.Options[0]
	}

	explanation := ""
	var summary *models.ScheduleSummary
	var weekly *models.WeeklySchedule
	if best != nil {
		if s.explainer != nil {
			explanation = s.explainer.ExplainSchedule(ctx, *best)
		}
		stats := s.Summarize(best.Sections)
		view := s.WeeklyView(best.Sections)
		summary = &stats
		weekly = &view
	}

	return &dto.OptimizeScheduleResponse{
		OriginalSections:    current.SectionIDs(),
		OptimizedOption:     best,
		AllOptions:          result.Options,
		OptimizationApplied: req.Preferences != nil,
		Explanation:         explanation,
		Summary:             summary,
		Weekly:              weekly,
		SeasonCode:          seasonCode,
	}, nil
}

// Summarize computes load statistics for the sections of one schedule.
func (s *ScheduleService) Summarize(sections []models.Section) models.ScheduleSummary {
	summary := models.ScheduleSummary{
		TotalSections: len(sections),
		MeetingDays:   []string{},
	}
	if len(sections) == 0 {
		return summary
	}

	seenDays := make(map[string]struct{})
	totalMinutes := 0.0
	for _, section := range sections {
		summary.TotalCredits += section.CreditValue()
		for _, meeting := range section.Meetings {
			days := meeting.DayTokens()
			for _, day := range days {
				seenDays[day] = struct{}{}
			}
			for _, slot := range meeting.Timeslots {
				start, startOK := models.ParseClock(slot.StartTime)
				end, endOK := models.ParseClock(slot.EndTime)
				if !startOK || !endOK || end <= start {
					continue
				}
				totalMinutes += float64((end - start) * len(days))
			}
		}
	}

	summary.MeetingDays = sortDaysCanonical(seenDays)
	summary.DaysPerWeek = len(summary.MeetingDays)
	summary.HoursPerWeek = roundTo1(totalMinutes / 60)
	return summary
}

// WeeklyView projects sections onto a weekly calendar.
func (s *ScheduleService) WeeklyView(sections []models.Section) models.WeeklySchedule {
	weekly := models.WeeklySchedule{
		TimeBlocks: []models.TimeBlock{},
		DailyHours: make(map[string]float64),
		FreeDays:   []string{},
	}

	for _, section := range sections {
		for _, meeting := range section.Meetings {
			location := ""
			if meeting.Location != nil {
				location = *meeting.Location
			}
			for _, day := range meeting.DayTokens() {
				for _, slot := range meeting.Timeslots {
					start, startOK := models.ParseClock(slot.StartTime)
					end, endOK := models.ParseClock(slot.EndTime)
					if !startOK || !endOK || end <= start {
						continue
					}
					weekly.TimeBlocks = append(weekly.TimeBlocks, models.TimeBlock{
						Day:       day,
						StartTime: slot.StartTime,
						EndTime:   slot.EndTime,
						CourseID:  section.CourseID,
						SectionID: section.ID,
						Location:  location,
					})
					hours := float64(end-start) / 60
					weekly.DailyHours[day] += hours
					weekly.TotalWeeklyHours += hours
				}
			}
		}
	}

	sort.SliceStable(weekly.TimeBlocks, func(i, j int) bool {
		a, b := weekly.TimeBlocks[i], weekly.TimeBlocks[j]
		if a.Day != b.Day {
			return dayRank(a.Day) < dayRank(b.Day)
		}
		return a.StartTime < b.StartTime
	})

	weekly.TotalWeeklyHours = roundTo1(weekly.TotalWeeklyHours)
	for day, hours := range weekly.DailyHours {
		weekly.DailyHours[day] = roundTo1(hours)
	}

	busiest := ""
	busiestHours := 0.0
	for _, day := range models.Weekdays {
		hours, ok := weekly.DailyHours[day]
		if !ok {
			weekly.FreeDays = append(weekly.FreeDays, day)
			continue
		}
		if hours > busiestHours {
			busiestHours = hours
			busiest = day
		}
	}
	if busiest != "" {
		weekly.BusiestDay = &busiest
	}
	return weekly
}

// PreferenceCatalog documents the accepted preference options and defaults.
func (s *ScheduleService) PreferenceCatalog() *dto.PreferenceCatalogResponse {
	return &dto.PreferenceCatalogResponse{
		Preferences: map[string]interface{}{
			"time_preferences": map[string]interface{}{
				"no_early_morning": map[string]interface{}{
					"description": "Avoid classes before 9:00 AM",
					"type":        "boolean",
				},
				"no_late_evening": map[string]interface{}{
					"description": "Avoid classes after 8:00 PM",
					"type":        "boolean",
				},
				"preferred_days": map[string]interface{}{
					"description": "Preferred days of week for classes",
					"type":        "array",
					"options":     []string{"M", "T", "W", "TH", "F"},
				},
			},
			"workload_preferences": map[string]interface{}{
				"min_credits": map[string]interface{}{
					"description": "Minimum number of credits",
					"type":        "number",
					"min":         0,
					"max":         25,
				},
				"max_credits": map[string]interface{}{
					"description": "Maximum number of credits",
					"type":        "number",
					"min":         0,
					"max":         25,
				},
			},
			"professor_preferences": map[string]interface{}{
				"preferred_professors": map[string]interface{}{
					"description": "Preferred professor names",
					"type":        "array",
				},
				"avoided_professors": map[string]interface{}{
					"description": "Professors to avoid",
					"type":        "array",
				},
			},
			"quality_weights": map[string]interface{}{
				"workload_weight": map[string]interface{}{
					"description": "Importance of workload balance (0-1)",
					"type":        "number",
					"min":         0,
					"max":         1,
					"default":     0.3,
				},
				"rating_weight": map[string]interface{}{
					"description": "Importance of course ratings (0-1)",
					"type":        "number",
					"min":         0,
					"max":         1,
					"default":     0.3,
				},
				"time_preference_weight": map[string]interface{}{
					"description": "Importance of time preferences (0-1)",
					"type":        "number",
					"min":         0,
					"max":         1,
					"default":     0.2,
				},
				"professor_weight": map[string]interface{}{
					"description": "Importance of professor preferences (0-1)",
					"type":        "number",
					"min":         0,
					"max":         1,
					"default":     0.2,
				},
			},
		},
		Defaults: map[string]interface{}{
			"min_credits":            12,
			"max_credits":            20,
			"no_early_morning":       false,
			"no_late_evening":        false,
			"workload_weight":        0.3,
			"rating_weight":          0.3,
			"time_preference_weight": 0.2,
			"professor_weight":       0.2,
		},
	}
}

func sortDaysCanonical(seen map[string]struct{}) []string {
	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.SliceStable(days, func(i, j int) bool {
		return dayRank(days[i]) < dayRank(days[j])
	})
	return days
}

func dayRank(day string) int {
	for i, known := range models.AllDays {
		if known == day {
			return i
		}
	}
	return len(models.AllDays)
}

func roundTo1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
