package models

import "math"

// ConflictType classifies a detected incompatibility between two sections.
type ConflictType string

const (
	ConflictTime          ConflictType = "time"
	ConflictFinalExam     ConflictType = "final_exam"
	ConflictSameProfessor ConflictType = "same_professor"
)

// ConflictSeverity separates disqualifying conflicts from informational ones.
type ConflictSeverity string

const (
	SeverityError   ConflictSeverity = "error"
	SeverityWarning ConflictSeverity = "warning"
)

// ScheduleConflict records an incompatibility between two sections in a combination.
type ScheduleConflict struct {
	Section1ID string           `json:"section1_id"`
	Section2ID string           `json:"section2_id"`
	Type       ConflictType     `json:"conflict_type"`
	Details    string           `json:"details"`
	Severity   ConflictSeverity `json:"severity"`
}

// ScheduleConstraints are hard filters used to reject sections, never to score them.
type ScheduleConstraints struct {
	MinCredits      *float64 `json:"min_credits,omitempty"`
	MaxCredits      *float64 `json:"max_credits,omitempty"`
	MaxGapMinutes   *int     `json:"max_gap_minutes,omitempty"`
	NoEarlyMorning  bool     `json:"no_early_morning"`
	NoLateEvening   bool     `json:"no_late_evening"`
	PreferredDays   []string `json:"preferred_days,omitempty"`
	AvoidTimes      []string `json:"avoid_times,omitempty"`
	BreakHours      []string `json:"break_hours,omitempty"`
	MinQualityScore *float64 `json:"min_quality_score,omitempty"`
}

// SchedulePreferences weight the scoring dimensions. Weights must sum to 1.0
// within a 0.01 tolerance to take effect.
type SchedulePreferences struct {
	WorkloadWeight       float64  `json:"workload_weight"`
	RatingWeight         float64  `json:"rating_weight"`
	TimePreferenceWeight float64  `json:"time_preference_weight"`
	ProfessorWeight      float64  `json:"professor_weight"`
	PreferredProfessors  []string `json:"preferred_professors,omitempty"`
	AvoidedProfessors    []string `json:"avoided_professors,omitempty"`
	PreferredTimeBlocks  []string `json:"preferred_time_blocks,omitempty"`
	AvoidTimeBlocks      []string `json:"avoid_time_blocks,omitempty"`
}

// ValidateWeights reports whether the four weights sum to 1.0 within tolerance.
func (p SchedulePreferences) ValidateWeights() bool {
	total := p.WorkloadWeight + p.RatingWeight + p.TimePreferenceWeight + p.ProfessorWeight
	return math.Abs(total-1.0) < 0.01
}

// DefaultSchedulePreferences returns the documented default weighting.
func DefaultSchedulePreferences() SchedulePreferences {
	return SchedulePreferences{
		WorkloadWeight:       0.3,
		RatingWeight:         0.3,
		TimePreferenceWeight: 0.2,
		ProfessorWeight:      0.2,
	}
}

// ScheduleRequest is the generation input after transport-level validation.
type ScheduleRequest struct {
	CourseIDs           []string             `json:"course_ids" validate:"required,min=1,dive,required"`
	SeasonCode          string               `json:"season_code" validate:"required"`
	Constraints         *ScheduleConstraints `json:"constraints,omitempty"`
	Preferences         *SchedulePreferences `json:"preferences,omitempty"`
	MaxOptions          int                  `json:"max_options" validate:"omitempty,gte=1,lte=20"`
	IncludeFullSections bool                 `json:"include_full_sections"`
	AllowConflicts      bool                 `json:"allow_conflicts"`
}

// ScheduleOption is one candidate schedule with its score and conflict summary.
type ScheduleOption struct {
	Sections     []Section              `json:"sections"`
	TotalCredits float64                `json:"total_credits"`
	QualityScore float64                `json:"quality_score"`
	Conflicts    []string               `json:"conflicts"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// SectionIDs lists the section ids in this option.
func (o ScheduleOption) SectionIDs() []string {
	ids := make([]string, 0, len(o.Sections))
	for _, section := range o.Sections {
		ids = append(ids, section.ID)
	}
	return ids
}

// CourseIDs lists the distinct course ids in this option, preserving section order.
func (o ScheduleOption) CourseIDs() []string {
	seen := make(map[string]bool, len(o.Sections))
	ids := make([]string, 0, len(o.Sections))
	for _, section := range o.Sections {
		if !seen[section.CourseID] {
			seen[section.CourseID] = true
			ids = append(ids, section.CourseID)
		}
	}
	return ids
}

// GeneratedSchedule is the full generation response.
type GeneratedSchedule struct {
	RequestID             string                 `json:"request_id"`
	SeasonCode            string                 `json:"season_code"`
	Options               []ScheduleOption       `json:"options"`
	TotalOptionsGenerated int                    `json:"total_options_generated"`
	ProcessingTimeMs      int64                  `json:"processing_time_ms"`
	Metadata              map[string]interface{} `json:"metadata"`
}

// HasConflicts reports whether any selected option carries conflicts.
func (g GeneratedSchedule) HasConflicts() bool {
	for _, option := range g.Options {
		if len(option.Conflicts) > 0 {
			return true
		}
	}
	return false
}

// ScheduleQuality breaks a quality score into its component dimensions.
type ScheduleQuality struct {
	WorkloadScore         float64 `json:"workload_score"`
	ProfessorScore        float64 `json:"professor_score"`
	TimeDistributionScore float64 `json:"time_distribution_score"`
	BalanceScore          float64 `json:"balance_score"`
	OverallScore          float64 `json:"overall_score"`
}

// Grade maps the overall score onto a letter grade.
func (q ScheduleQuality) Grade() string {
	switch {
	case q.OverallScore >= 90:
		return "A"
	case q.OverallScore >= 80:
		return "B"
	case q.OverallScore >= 70:
		return "C"
	case q.OverallScore >= 60:
		return "D"
	default:
		return "F"
	}
}

// ScheduleStats aggregates quality statistics over a batch of generated options.
type ScheduleStats struct {
	TotalSchedules         int      `json:"total_schedules"`
	SchedulesWithConflicts int      `json:"schedules_with_conflicts"`
	SchedulesNoConflicts   int      `json:"schedules_without_conflicts"`
	AverageQualityScore    float64  `json:"average_quality_score"`
	BestQualityScore       float64  `json:"best_quality_score"`
	WorstQualityScore      float64  `json:"worst_quality_score"`
	CommonConflicts        []string `json:"common_conflicts"`
}

// ScheduleSummary holds per-schedule load statistics for display.
type ScheduleSummary struct {
	TotalCredits  float64  `json:"total_credits"`
	TotalSections int      `json:"total_sections"`
	DaysPerWeek   int      `json:"days_per_week"`
	HoursPerWeek  float64  `json:"hours_per_week"`
	MeetingDays   []string `json:"meeting_days"`
}

// TimeBlock is a single cell in the weekly calendar view.
type TimeBlock struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	CourseID  string `json:"course_id,omitempty"`
	SectionID string `json:"section_id,omitempty"`
	Location  string `json:"location,omitempty"`
	Available bool   `json:"available"`
}

// WeeklySchedule is the calendar projection of one schedule option.
type WeeklySchedule struct {
	TimeBlocks       []TimeBlock        `json:"time_blocks"`
	TotalWeeklyHours float64            `json:"total_weekly_hours"`
	DailyHours       map[string]float64 `json:"daily_hours"`
	BusiestDay       *string            `json:"busiest_day,omitempty"`
	FreeDays         []string           `json:"free_days"`
}

// HasGapDays reports whether any weekday has no scheduled classes.
func (w WeeklySchedule) HasGapDays() bool {
	return len(w.FreeDays) > 0
}
