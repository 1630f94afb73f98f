package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

type sectionCatalog interface {
	GetCourseSections(ctx context.Context, courseID, seasonCode string) ([]models.Section, error)
}

// ScheduleGeneratorService enumerates section combinations for a set of
// courses, rejects those violating hard constraints, scores the survivors and
// returns the best options.
type ScheduleGeneratorService struct {
	catalog   sectionCatalog
	rng       *rand.Rand
	rngMu     sync.Mutex
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleGeneratorConfig
}

// ScheduleGeneratorConfig governs combination enumeration and option selection.
type ScheduleGeneratorConfig struct {
	MaxCombinations  int
	MaxCourses       int
	MaxOptionsCap    int
	QualityThreshold float64
}

// NewScheduleGeneratorService wires generator dependencies. A nil rng falls
// back to a time-seeded source; tests inject a fixed seed for reproducible
// sampling.
func NewScheduleGeneratorService(
	catalog sectionCatalog,
	rng *rand.Rand,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.MaxCombinations <= 0 {
		cfg.MaxCombinations = 1000
	}
	if cfg.MaxCourses <= 0 {
		cfg.MaxCourses = 10
	}
	if cfg.MaxOptionsCap <= 0 {
		cfg.MaxOptionsCap = 20
	}
	return &ScheduleGeneratorService{
		catalog:   catalog,
		rng:       rng,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate fetches available sections for the requested courses and runs the
// generation pipeline. Courses whose catalog lookup fails are skipped with a
// warning; they surface through the no-sections validation afterwards.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req models.ScheduleRequest) (*models.GeneratedSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	if len(req.CourseIDs) > s.cfg.MaxCourses {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("too many courses requested: %d exceeds limit of %d", len(req.CourseIDs), s.cfg.MaxCourses))
	}
	if !models.ValidateSeasonCode(req.SeasonCode) {
		return nil, appErrors.Clone(appErrors.ErrInvalidSeason, fmt.Sprintf("invalid season code: %s", req.SeasonCode))
	}
	if s.catalog == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "section catalog missing")
	}

	available := make(map[string][]models.Section, len(req.CourseIDs))
	for _, courseID := range req.CourseIDs {
		if _, ok := available[courseID]; ok {
			continue
		}
		sections, err := s.catalog.GetCourseSections(ctx, courseID, req.SeasonCode)
		if err != nil {
			s.logger.Warn("failed to fetch sections for course",
				zap.String("course_id", courseID),
				zap.String("season_code", req.SeasonCode),
				zap.Error(err))
			continue
		}
		if len(sections) == 0 {
			continue
		}
		available[courseID] = sections
	}

	return s.GenerateWithSections(ctx, req, available)
}

// GenerateWithSections runs the generation pipeline against a pre-fetched
// section pool: validate, filter, enumerate, detect conflicts, score, rank.
func (s *ScheduleGeneratorService) GenerateWithSections(ctx context.Context, req models.ScheduleRequest, available map[string][]models.Section) (*models.GeneratedSchedule, error) {
	start := time.Now()
	requestID := "schedule_" + uuid.NewString()

	maxOptions := req.MaxOptions
	if maxOptions <= 0 {
		maxOptions = 5
	}
	if maxOptions > s.cfg.MaxOptionsCap {
		maxOptions = s.cfg.MaxOptionsCap
	}

	courseIDs := dedupeCourseIDs(req.CourseIDs)
	s.logger.Info("generating schedules",
		zap.String("request_id", requestID),
		zap.Int("courses", len(courseIDs)),
		zap.String("season_code", req.SeasonCode))

	if err := validateSectionPool(courseIDs, available); err != nil {
		return nil, err
	}
	if err := validateCreditBounds(req.Constraints); err != nil {
		return nil, err
	}

	filtered := filterSections(available, req.Constraints, req.IncludeFullSections)
	if err := validateSectionPool(courseIDs, filtered); err != nil {
		return nil, err
	}

	combinations, sampled := s.enumerateCombinations(courseIDs, filtered)
	s.logger.Info("enumerated combinations",
		zap.String("request_id", requestID),
		zap.Int("combinations", len(combinations)),
		zap.Bool("sampled", sampled))
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGenerationFailed.Code, appErrors.ErrGenerationFailed.Status, "schedule generation aborted")
	}

	kept := make([]candidateSchedule, 0, len(combinations))
	for _, sections := range combinations {
		conflicts := s.DetectConflicts(sections)
		if hasErrorConflicts(conflicts) && !req.AllowConflicts {
			continue
		}
		kept = append(kept, candidateSchedule{sections: sections, conflicts: conflicts})
	}

	options := make([]models.ScheduleOption, 0, len(kept))
	for _, cand := range kept {
		options = append(options, s.buildOption(cand, req.Preferences))
	}
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGenerationFailed.Code, appErrors.ErrGenerationFailed.Status, "schedule generation aborted")
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].QualityScore > options[j].QualityScore
	})

	validCount := len(options)
	selected := options
	if len(selected) > maxOptions {
		selected = selected[:maxOptions]
	}
	selected = s.applyQualityThreshold(selected, req.Constraints)

	result := &models.GeneratedSchedule{
		RequestID:             requestID,
		SeasonCode:            req.SeasonCode,
		Options:               selected,
		TotalOptionsGenerated: len(combinations),
		ProcessingTimeMs:      time.Since(start).Milliseconds(),
		Metadata: map[string]interface{}{
			"courses_requested":        req.CourseIDs,
			"valid_schedules_found":    validCount,
			"schedules_with_conflicts": countWithConflicts(selected),
			"average_quality":          averageQuality(selected),
			"constraints_applied":      req.Constraints != nil,
			"preferences_applied":      req.Preferences != nil,
			"sampling_used":            sampled,
		},
	}

	s.logger.Info("schedule generation completed",
		zap.String("request_id", requestID),
		zap.Int("options", len(selected)),
		zap.Int("valid_schedules", validCount),
		zap.Int64("elapsed_ms", result.ProcessingTimeMs))
	return result, nil
}

// DetectConflicts reports time overlaps, final exam collisions and shared
// professors within a set of sections.
func (s *ScheduleGeneratorService) DetectConflicts(sections []models.Section) []models.ScheduleConflict {
	conflicts := detectTimeConflicts(sections)
	conflicts = append(conflicts, detectFinalExamConflicts(sections)...)
	conflicts = append(conflicts, detectProfessorConflicts(sections)...)
	return conflicts
}

type candidateSchedule struct {
	sections  []models.Section
	conflicts []models.ScheduleConflict
}

func (s *ScheduleGeneratorService) buildOption(cand candidateSchedule, prefs *models.SchedulePreferences) models.ScheduleOption {
	details := make([]string, 0, len(cand.conflicts))
	for _, conflict := range cand.conflicts {
		details = append(details, conflict.Details)
	}
	return models.ScheduleOption{
		Sections:     cand.sections,
		TotalCredits: totalCredits(cand.sections),
		QualityScore: s.scoreSchedule(cand.sections, cand.conflicts, prefs),
		Conflicts:    details,
		Metadata: map[string]interface{}{
			"generation_time": time.Now().UTC().Format(time.RFC3339),
			"course_count":    len(cand.sections),
			"has_conflicts":   len(cand.conflicts) > 0,
		},
	}
}

// enumerateCombinations builds the cartesian product of the per-course section
// pools, preserving request course order. When the product exceeds
// MaxCombinations it falls back to uniform random sampling.
func (s *ScheduleGeneratorService) enumerateCombinations(courseIDs []string, filtered map[string][]models.Section) ([][]models.Section, bool) {
	pools := make([][]models.Section, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		pool := filtered[courseID]
		if len(pool) == 0 {
			return nil, false
		}
		pools = append(pools, pool)
	}
	if len(pools) == 0 {
		return nil, false
	}

	limit := s.cfg.MaxCombinations
	total := 1
	for _, pool := range pools {
		total *= len(pool)
		if total > limit*10 {
			// Sample size plateaus at the limit past this point.
			total = limit * 10
			break
		}
	}

	if total <= limit {
		return productCombinations(pools, total), false
	}

	sampleSize := total / 10
	if sampleSize > limit {
		sampleSize = limit
	}
	if sampleSize < 1 {
		sampleSize = 1
	}
	s.logger.Warn("combination space too large, sampling",
		zap.Int("limit", limit),
		zap.Int("sample_size", sampleSize))
	return s.sampleCombinations(pools, sampleSize), true
}

func productCombinations(pools [][]models.Section, total int) [][]models.Section {
	combos := make([][]models.Section, 0, total)
	indices := make([]int, len(pools))
	for {
		combo := make([]models.Section, len(pools))
		for i, pool := range pools {
			combo[i] = pool[indices[i]]
		}
		combos = append(combos, combo)

		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(pools[pos]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return combos
		}
	}
}

func (s *ScheduleGeneratorService) sampleCombinations(pools [][]models.Section, sampleSize int) [][]models.Section {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	combos := make([][]models.Section, 0, sampleSize)
	for n := 0; n < sampleSize; n++ {
		combo := make([]models.Section, len(pools))
		for i, pool := range pools {
			combo[i] = pool[s.rng.Intn(len(pool))]
		}
		combos = append(combos, combo)
	}
	return combos
}

func validateSectionPool(courseIDs []string, available map[string][]models.Section) error {
	var missing []string
	for _, courseID := range courseIDs {
		if len(available[courseID]) == 0 {
			missing = append(missing, courseID)
		}
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrNoSectionsAvailable, fmt.Sprintf("no available sections for courses: %s", strings.Join(missing, ", ")))
	}
	return nil
}

func validateCreditBounds(constraints *models.ScheduleConstraints) error {
	if constraints == nil || constraints.MinCredits == nil || constraints.MaxCredits == nil {
		return nil
	}
	if *constraints.MinCredits > *constraints.MaxCredits {
		return appErrors.Clone(appErrors.ErrInvalidCreditConstraints, "minimum credits cannot be greater than maximum credits")
	}
	return nil
}

// filterSections drops full sections and constraint violators. Courses whose
// sections are all rejected disappear from the returned map.
func filterSections(available map[string][]models.Section, constraints *models.ScheduleConstraints, includeFull bool) map[string][]models.Section {
	filtered := make(map[string][]models.Section, len(available))
	for courseID, sections := range available {
		keep := make([]models.Section, 0, len(sections))
		for _, section := range sections {
			if !includeFull && section.IsFull() {
				continue
			}
			if constraints != nil && violatesConstraints(section, constraints) {
				continue
			}
			keep = append(keep, section)
		}
		if len(keep) > 0 {
			filtered[courseID] = keep
		}
	}
	return filtered
}

// violatesConstraints rejects a section when any of its scheduled meetings
// breaks a hard constraint. Sections without meetings never violate.
func violatesConstraints(section models.Section, constraints *models.ScheduleConstraints) bool {
	for _, meeting := range section.Meetings {
		if len(meeting.Timeslots) == 0 {
			continue
		}
		if len(constraints.PreferredDays) > 0 && !meetsPreferredDays(meeting, constraints.PreferredDays) {
			return true
		}
		for _, slot := range meeting.Timeslots {
			if constraints.NoEarlyMorning {
				if start, ok := models.ParseClock(slot.StartTime); ok && start < 9*60 {
					return true
				}
			}
			if constraints.NoLateEvening {
				if end, ok := models.ParseClock(slot.EndTime); ok && end > 20*60 {
					return true
				}
			}
		}
	}
	return false
}

func meetsPreferredDays(meeting models.Meeting, preferred []string) bool {
	for _, day := range meeting.DayTokens() {
		for _, want := range preferred {
			if strings.EqualFold(day, want) {
				return true
			}
		}
	}
	return false
}

func detectTimeConflicts(sections []models.Section) []models.ScheduleConflict {
	var conflicts []models.ScheduleConflict
	for i := 0; i < len(sections); i++ {
		for j := i + 1; j < len(sections); j++ {
			if sectionsOverlap(sections[i], sections[j]) {
				conflicts = append(conflicts, models.ScheduleConflict{
					Section1ID: sections[i].ID,
					Section2ID: sections[j].ID,
					Type:       models.ConflictTime,
					Details:    fmt.Sprintf("Time conflict between %s and %s", sections[i].CourseID, sections[j].CourseID),
					Severity:   models.SeverityError,
				})
			}
		}
	}
	return conflicts
}

// sectionsOverlap reports whether any meeting pair shares a day and has
// overlapping timeslots. A section pair yields at most one time conflict.
func sectionsOverlap(a, b models.Section) bool {
	for _, ma := range a.Meetings {
		for _, mb := range b.Meetings {
			if !models.DaysIntersect(ma.Days, mb.Days) {
				continue
			}
			for _, ta := range ma.Timeslots {
				for _, tb := range mb.Timeslots {
					if models.TimeslotsOverlap(ta, tb) {
						return true
					}
				}
			}
		}
	}
	return false
}

func detectFinalExamConflicts(sections []models.Section) []models.ScheduleConflict {
	byDate := make(map[string][]models.Section)
	var dates []string
	for _, section := range sections {
		if section.FinalExam == nil || section.FinalExam.Date == "" {
			continue
		}
		date := section.FinalExam.Date
		if _, ok := byDate[date]; !ok {
			dates = append(dates, date)
		}
		byDate[date] = append(byDate[date], section)
	}

	var conflicts []models.ScheduleConflict
	for _, date := range dates {
		group := byDate[date]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				conflicts = append(conflicts, models.ScheduleConflict{
					Section1ID: group[i].ID,
					Section2ID: group[j].ID,
					Type:       models.ConflictFinalExam,
					Details:    fmt.Sprintf("Final exam conflict on %s", date),
					Severity:   models.SeverityError,
				})
			}
		}
	}
	return conflicts
}

// detectProfessorConflicts flags schedules carrying multiple sections taught
// by the same professor. One warning per professor regardless of how many
// sections are involved.
func detectProfessorConflicts(sections []models.Section) []models.ScheduleConflict {
	sectionsByProf := make(map[int][]string)
	var profIDs []int
	for _, section := range sections {
		for _, prof := range section.Professors {
			if prof.ID == nil {
				continue
			}
			id := *prof.ID
			ids := sectionsByProf[id]
			if containsString(ids, section.ID) {
				continue
			}
			if len(ids) == 0 {
				profIDs = append(profIDs, id)
			}
			sectionsByProf[id] = append(ids, section.ID)
		}
	}

	var conflicts []models.ScheduleConflict
	for _, id := range profIDs {
		ids := sectionsByProf[id]
		if len(ids) < 2 {
			continue
		}
		conflicts = append(conflicts, models.ScheduleConflict{
			Section1ID: ids[0],
			Section2ID: ids[1],
			Type:       models.ConflictSameProfessor,
			Details:    fmt.Sprintf("Multiple sections with same professor (ID: %d)", id),
			Severity:   models.SeverityWarning,
		})
	}
	return conflicts
}

// scoreSchedule computes the quality score: a conflict-penalised base,
// optionally blended 70/30 with the preference score, plus balance and time
// distribution bonuses, clamped to [0, 100].
func (s *ScheduleGeneratorService) scoreSchedule(sections []models.Section, conflicts []models.ScheduleConflict, prefs *models.SchedulePreferences) float64 {
	base := 100.0
	for _, conflict := range conflicts {
		switch conflict.Severity {
		case models.SeverityError:
			base -= 25
		case models.SeverityWarning:
			base -= 10
		}
	}

	final := base
	if prefs != nil {
		final = base*0.7 + s.preferenceScore(sections, prefs)*0.3
	}
	final += workloadBalanceBonus(sections)
	final += timeDistributionBonus(sections)
	return math.Max(0, math.Min(100, final))
}

func (s *ScheduleGeneratorService) preferenceScore(sections []models.Section, prefs *models.SchedulePreferences) float64 {
	if !prefs.ValidateWeights() {
		s.logger.Warn("preference weights do not sum to 1.0, using neutral score")
		return 50.0
	}
	return professorPreferenceScore(sections, prefs)*prefs.ProfessorWeight +
		timePreferenceScore(sections)*prefs.TimePreferenceWeight +
		workloadScore(sections)*prefs.WorkloadWeight +
		ratingScore(sections)*prefs.RatingWeight
}

// professorPreferenceScore averages per-section professor scores. A preferred
// professor pins a section to 100, an avoided one to 0, otherwise ratings set
// the score. Sections without professors are excluded from the average.
func professorPreferenceScore(sections []models.Section, prefs *models.SchedulePreferences) float64 {
	total := 0.0
	counted := 0
	for _, section := range sections {
		if len(section.Professors) == 0 {
			continue
		}
		score := 50.0
		switch {
		case anyProfessorNamed(section.Professors, prefs.PreferredProfessors):
			score = 100.0
		case anyProfessorNamed(section.Professors, prefs.AvoidedProfessors):
			score = 0.0
		default:
			for _, prof := range section.Professors {
				if prof.Rating != nil && *prof.Rating > 0 {
					score = *prof.Rating / 5.0 * 100.0
				}
			}
		}
		total += score
		counted++
	}
	if counted == 0 {
		return 50.0
	}
	return total / float64(counted)
}

func anyProfessorNamed(profs []models.Professor, names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, prof := range profs {
		for _, name := range names {
			if prof.Name == name {
				return true
			}
		}
	}
	return false
}

// timePreferenceScore starts from 75 and deducts 10 per timeslot starting
// before 08:00 or ending after 21:00, floored at 0.
func timePreferenceScore(sections []models.Section) float64 {
	score := 75.0
	for _, section := range sections {
		for _, meeting := range section.Meetings {
			for _, slot := range meeting.Timeslots {
				start, startOK := models.ParseClock(slot.StartTime)
				end, endOK := models.ParseClock(slot.EndTime)
				if startOK && start < 8*60 {
					score -= 10
				} else if endOK && end > 21*60 {
					score -= 10
				}
			}
		}
	}
	return math.Max(0, score)
}

func workloadScore(sections []models.Section) float64 {
	credits := totalCredits(sections)
	switch {
	case credits >= 12 && credits <= 18:
		return 100.0
	case credits < 12:
		return 50.0
	default:
		return math.Max(0, 100.0-(credits-18)*5)
	}
}

func ratingScore(sections []models.Section) float64 {
	total := 0.0
	count := 0
	for _, section := range sections {
		for _, prof := range section.Professors {
			if prof.Rating != nil && *prof.Rating > 0 {
				total += *prof.Rating / 5.0 * 100.0
				count++
			}
		}
	}
	if count == 0 {
		return 50.0
	}
	return total / float64(count)
}

// workloadBalanceBonus spreads each section's credits evenly across its
// meeting days and rewards low variance in the per-day totals.
func workloadBalanceBonus(sections []models.Section) float64 {
	daily := make(map[string]float64)
	for _, section := range sections {
		credits := section.CreditValue()
		if credits <= 0 || len(section.Meetings) == 0 {
			continue
		}
		days := sectionDayTokens(section)
		if len(days) == 0 {
			continue
		}
		perDay := credits / float64(len(days))
		for _, day := range days {
			daily[day] += perDay
		}
	}
	if len(daily) == 0 {
		return 0
	}

	values := make([]float64, 0, len(daily))
	for _, v := range daily {
		values = append(values, v)
	}
	stdDev := stat.PopStdDev(values, nil)
	return math.Max(0, 10-stdDev)
}

func sectionDayTokens(section models.Section) []string {
	var days []string
	seen := make(map[string]struct{})
	for _, meeting := range section.Meetings {
		for _, day := range meeting.DayTokens() {
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	return days
}

// timeDistributionBonus rewards schedules whose meetings span several time
// blocks of the day, two points per distinct block up to ten.
func timeDistributionBonus(sections []models.Section) float64 {
	blocks := make(map[string]struct{})
	for _, section := range sections {
		for _, meeting := range section.Meetings {
			for _, slot := range meeting.Timeslots {
				start, ok := models.ParseClock(slot.StartTime)
				if !ok {
					continue
				}
				blocks[models.TimeBlockOf(start)] = struct{}{}
			}
		}
	}
	if len(blocks) == 0 {
		return 0
	}
	return math.Min(float64(len(blocks))*2, 10)
}

func (s *ScheduleGeneratorService) applyQualityThreshold(options []models.ScheduleOption, constraints *models.ScheduleConstraints) []models.ScheduleOption {
	threshold := s.cfg.QualityThreshold
	if constraints != nil && constraints.MinQualityScore != nil {
		threshold = *constraints.MinQualityScore
	}
	if threshold <= 0 {
		return options
	}
	kept := make([]models.ScheduleOption, 0, len(options))
	for _, option := range options {
		if option.QualityScore >= threshold {
			kept = append(kept, option)
		}
	}
	return kept
}

func hasErrorConflicts(conflicts []models.ScheduleConflict) bool {
	for _, conflict := range conflicts {
		if conflict.Severity == models.SeverityError {
			return true
		}
	}
	return false
}

func countWithConflicts(options []models.ScheduleOption) int {
	count := 0
	for _, option := range options {
		if len(option.Conflicts) > 0 {
			count++
		}
	}
	return count
}

func averageQuality(options []models.ScheduleOption) float64 {
	if len(options) == 0 {
		return 0
	}
	total := 0.0
	for _, option := range options {
		total += option.QualityScore
	}
	return total / float64(len(options))
}

func totalCredits(sections []models.Section) float64 {
	total := 0.0
	for _, section := range sections {
		total += section.CreditValue()
	}
	return total
}

func dedupeCourseIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
