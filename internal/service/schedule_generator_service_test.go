package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

func TestScheduleGeneratorServiceGenerateWithSectionsSuccess(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	available := map[string][]models.Section{
		"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
		"MATH 120": {genSection("math-1", "MATH 120", 3, "TTH", "13:00", "14:15")},
	}

	result, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
		CourseIDs:  []string{"CPSC 223", "MATH 120"},
		SeasonCode: "202503",
	}, available)
	require.NoError(t, err)

	require.Len(t, result.Options, 1)
	option := result.Options[0]
	assert.Equal(t, 6.0, option.TotalCredits)
	assert.Empty(t, option.Conflicts)
	assert.InDelta(t, 100.0, option.QualityScore, 0.001)
	assert.Equal(t, 1, result.TotalOptionsGenerated)
	assert.Equal(t, "202503", result.SeasonCode)
	assert.True(t, strings.HasPrefix(result.RequestID, "schedule_"))

	assert.Equal(t, false, result.Metadata["sampling_used"])
	assert.Equal(t, 1, result.Metadata["valid_schedules_found"])
	assert.Equal(t, 0, result.Metadata["schedules_with_conflicts"])
	assert.Equal(t, false, result.Metadata["constraints_applied"])
	assert.Equal(t, false, result.Metadata["preferences_applied"])
	assert.InDelta(t, 100.0, result.Metadata["average_quality"].(float64), 0.001)
}

func TestScheduleGeneratorServiceGenerateValidation(t *testing.T) {
	catalog := &catalogSectionsStub{sections: map[string][]models.Section{
		"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
	}}
	service := newGeneratorFixture(catalog, 0, ScheduleGeneratorConfig{MaxCourses: 2})

	cases := []struct {
		name string
		req  models.ScheduleRequest
		code string
	}{
		{
			name: "missing course ids",
			req:  models.ScheduleRequest{SeasonCode: "202503"},
			code: appErrors.ErrValidation.Code,
		},
		{
			name: "missing season code",
			req:  models.ScheduleRequest{CourseIDs: []string{"CPSC 223"}},
			code: appErrors.ErrValidation.Code,
		},
		{
			name: "max options above cap",
			req:  models.ScheduleRequest{CourseIDs: []string{"CPSC 223"}, SeasonCode: "202503", MaxOptions: 25},
			code: appErrors.ErrValidation.Code,
		},
		{
			name: "too many courses",
			req:  models.ScheduleRequest{CourseIDs: []string{"A", "B", "C"}, SeasonCode: "202503"},
			code: appErrors.ErrValidation.Code,
		},
		{
			name: "invalid season code",
			req:  models.ScheduleRequest{CourseIDs: []string{"CPSC 223"}, SeasonCode: "9999"},
			code: appErrors.ErrInvalidSeason.Code,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Generate(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, appErrors.FromError(err).Code)
		})
	}
}

func TestScheduleGeneratorServiceMissingSectionsBeforeCreditBounds(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	minCredits, maxCredits := 20.0, 10.0

	_, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
		CourseIDs:   []string{"CPSC 223"},
		SeasonCode:  "202503",
		Constraints: &models.ScheduleConstraints{MinCredits: &minCredits, MaxCredits: &maxCredits},
	}, map[string][]models.Section{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoSectionsAvailable.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "CPSC 223")
}

func TestScheduleGeneratorServiceCreditBoundsRejected(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	minCredits, maxCredits := 15.0, 12.0
	available := map[string][]models.Section{
		"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
	}

	_, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
		CourseIDs:   []string{"CPSC 223"},
		SeasonCode:  "202503",
		Constraints: &models.ScheduleConstraints{MinCredits: &minCredits, MaxCredits: &maxCredits},
	}, available)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCreditConstraints.Code, appErrors.FromError(err).Code)
}

func TestScheduleGeneratorServiceFullSections(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	full := genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")
	full.Capacity = intPtr(30)
	full.Enrolled = intPtr(30)
	available := map[string][]models.Section{"CPSC 223": {full}}

	_, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
		CourseIDs:  []string{"CPSC 223"},
		SeasonCode: "202503",
	}, available)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoSectionsAvailable.Code, appErrors.FromError(err).Code)

	result, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
		CourseIDs:           []string{"CPSC 223"},
		SeasonCode:          "202503",
		IncludeFullSections: true,
	}, available)
	require.NoError(t, err)
	assert.Len(t, result.Options, 1)
}

func TestScheduleGeneratorServiceConstraintFilters(t *testing.T) {
	cases := []struct {
		name        string
		constraints models.ScheduleConstraints
		sections    []models.Section
		wantID      string
	}{
		{
			name:        "no early morning",
			constraints: models.ScheduleConstraints{NoEarlyMorning: true},
			sections: []models.Section{
				genSection("early", "CPSC 223", 3, "MWF", "08:30", "09:45"),
				genSection("late", "CPSC 223", 3, "MWF", "10:00", "11:15"),
			},
			wantID: "late",
		},
		{
			name:        "no late evening",
			constraints: models.ScheduleConstraints{NoLateEvening: true},
			sections: []models.Section{
				genSection("evening", "CPSC 223", 3, "MWF", "19:30", "20:45"),
				genSection("afternoon", "CPSC 223", 3, "MWF", "15:00", "16:15"),
			},
			wantID: "afternoon",
		},
		{
			name:        "preferred days",
			constraints: models.ScheduleConstraints{PreferredDays: []string{"M", "W", "F"}},
			sections: []models.Section{
				genSection("tth", "CPSC 223", 3, "TTH", "09:00", "10:15"),
				genSection("mwf", "CPSC 223", 3, "MWF", "09:00", "10:15"),
			},
			wantID: "mwf",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
			result, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
				CourseIDs:   []string{"CPSC 223"},
				SeasonCode:  "202503",
				Constraints: &tc.constraints,
			}, map[string][]models.Section{"CPSC 223": tc.sections})
			require.NoError(t, err)
			require.Len(t, result.Options, 1)
			require.Len(t, result.Options[0].Sections, 1)
			assert.Equal(t, tc.wantID, result.Options[0].Sections[0].ID)
		})
	}
}

func TestScheduleGeneratorServiceDetectConflicts(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})

	first := genSection("sec-1", "CPSC 223", 3, "MWF", "09:00", "10:15")
	first.Professors = []models.Professor{{ID: intPtr(7), Name: "Kim"}}
	first.FinalExam = &models.FinalExam{Date: "2025-12-15"}
	second := genSection("sec-2", "MATH 120", 3, "MWF", "10:00", "11:15")
	second.Professors = []models.Professor{{ID: intPtr(7), Name: "Kim"}}
	second.FinalExam = &models.FinalExam{Date: "2025-12-15"}

	conflicts := service.DetectConflicts([]models.Section{first, second})
	require.Len(t, conflicts, 3)

	byType := map[models.ConflictType]models.ScheduleConflict{}
	for _, conflict := range conflicts {
		byType[conflict.Type] = conflict
	}
	assert.Equal(t, models.SeverityError, byType[models.ConflictTime].Severity)
	assert.Equal(t, models.SeverityError, byType[models.ConflictFinalExam].Severity)
	assert.Equal(t, models.SeverityWarning, byType[models.ConflictSameProfessor].Severity)
	assert.Contains(t, byType[models.ConflictFinalExam].Details, "2025-12-15")
}

func TestScheduleGeneratorServiceTouchingSlotsDoNotConflict(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	conflicts := service.DetectConflicts([]models.Section{
		genSection("sec-1", "CPSC 223", 3, "MWF", "09:00", "10:15"),
		genSection("sec-2", "MATH 120", 3, "MWF", "10:15", "11:30"),
	})
	assert.Empty(t, conflicts)
}

func TestScheduleGeneratorServiceAllowConflicts(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	available := map[string][]models.Section{
		"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
		"MATH 120": {genSection("math-1", "MATH 120", 3, "MWF", "09:30", "10:45")},
	}
	req := models.ScheduleRequest{CourseIDs: []string{"CPSC 223", "MATH 120"}, SeasonCode: "202503"}

	result, err := service.GenerateWithSections(context.Background(), req, available)
	require.NoError(t, err)
	assert.Empty(t, result.Options)
	assert.Equal(t, 1, result.TotalOptionsGenerated)
	assert.Equal(t, 0, result.Metadata["valid_schedules_found"])

	req.AllowConflicts = true
	result, err = service.GenerateWithSections(context.Background(), req, available)
	require.NoError(t, err)
	require.Len(t, result.Options, 1)
	option := result.Options[0]
	require.Len(t, option.Conflicts, 1)
	assert.Contains(t, option.Conflicts[0], "Time conflict")
	assert.InDelta(t, 87.0, option.QualityScore, 0.001)
	assert.True(t, result.HasConflicts())
}

func TestScheduleGeneratorServicePreferenceScoring(t *testing.T) {
	single := func(prof models.Professor) map[string][]models.Section {
		section := genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")
		section.Professors = []models.Professor{prof}
		return map[string][]models.Section{"CPSC 223": {section}}
	}

	cases := []struct {
		name      string
		prefs     models.SchedulePreferences
		available map[string][]models.Section
		want      float64
	}{
		{
			name:      "invalid weights fall back to neutral",
			prefs:     models.SchedulePreferences{WorkloadWeight: 0.5, RatingWeight: 0.5, TimePreferenceWeight: 0.5, ProfessorWeight: 0.5},
			available: single(models.Professor{Name: "Kim"}),
			want:      97.0,
		},
		{
			name:      "avoided professor zeroes the preference score",
			prefs:     models.SchedulePreferences{ProfessorWeight: 1.0, AvoidedProfessors: []string{"Kim"}},
			available: single(models.Professor{Name: "Kim"}),
			want:      82.0,
		},
		{
			name:      "preferred professor maxes the preference score",
			prefs:     models.SchedulePreferences{ProfessorWeight: 1.0, PreferredProfessors: []string{"Kim"}},
			available: single(models.Professor{Name: "Kim"}),
			want:      100.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
			prefs := tc.prefs
			result, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
				CourseIDs:   []string{"CPSC 223"},
				SeasonCode:  "202503",
				Preferences: &prefs,
			}, tc.available)
			require.NoError(t, err)
			require.Len(t, result.Options, 1)
			assert.InDelta(t, tc.want, result.Options[0].QualityScore, 0.001)
			assert.Equal(t, true, result.Metadata["preferences_applied"])
		})
	}
}

func TestScheduleGeneratorServiceRankingAndTruncation(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	rated := func(id string, rating float64) models.Section {
		section := genSection(id, "CPSC 223", 3, "MWF", "09:00", "10:15")
		section.Professors = []models.Professor{{Name: "Prof " + id, Rating: &rating}}
		return section
	}
	available := map[string][]models.Section{
		"CPSC 223": {rated("low", 1.0), rated("high", 4.0), rated("mid", 2.0)},
	}

	result, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
		CourseIDs:   []string{"CPSC 223"},
		SeasonCode:  "202503",
		MaxOptions:  2,
		Preferences: &models.SchedulePreferences{RatingWeight: 1.0},
	}, available)
	require.NoError(t, err)

	require.Len(t, result.Options, 2)
	assert.Equal(t, "high", result.Options[0].Sections[0].ID)
	assert.Equal(t, "mid", result.Options[1].Sections[0].ID)
	assert.Equal(t, 3, result.TotalOptionsGenerated)
	assert.Equal(t, 3, result.Metadata["valid_schedules_found"])
}

func TestScheduleGeneratorServiceQualityThreshold(t *testing.T) {
	available := map[string][]models.Section{
		"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
		"MATH 120": {genSection("math-1", "MATH 120", 3, "MWF", "09:30", "10:45")},
	}

	t.Run("config threshold drops low scores", func(t *testing.T) {
		service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{QualityThreshold: 90})
		result, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
			CourseIDs:      []string{"CPSC 223", "MATH 120"},
			SeasonCode:     "202503",
			AllowConflicts: true,
		}, available)
		require.NoError(t, err)
		assert.Empty(t, result.Options)
		assert.Equal(t, 1, result.TotalOptionsGenerated)
	})

	t.Run("request threshold overrides config", func(t *testing.T) {
		service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{QualityThreshold: 90})
		minQuality := 80.0
		result, err := service.GenerateWithSections(context.Background(), models.ScheduleRequest{
			CourseIDs:      []string{"CPSC 223", "MATH 120"},
			SeasonCode:     "202503",
			AllowConflicts: true,
			Constraints:    &models.ScheduleConstraints{MinQualityScore: &minQuality},
		}, available)
		require.NoError(t, err)
		assert.Len(t, result.Options, 1)
	})
}

func TestScheduleGeneratorServiceSamplingIsSeeded(t *testing.T) {
	pool := func(courseID, days, start, end string) []models.Section {
		sections := make([]models.Section, 0, 15)
		for i := 1; i <= 15; i++ {
			sections = append(sections, genSection(fmt.Sprintf("%s-%d", courseID, i), courseID, 3, days, start, end))
		}
		return sections
	}
	available := map[string][]models.Section{
		"CPSC 223": pool("cpsc", "MWF", "09:00", "10:15"),
		"MATH 120": pool("math", "TTH", "13:00", "14:15"),
	}
	req := models.ScheduleRequest{CourseIDs: []string{"CPSC 223", "MATH 120"}, SeasonCode: "202503"}

	run := func() *models.GeneratedSchedule {
		service := newGeneratorFixture(nil, 7, ScheduleGeneratorConfig{MaxCombinations: 10})
		result, err := service.GenerateWithSections(context.Background(), req, available)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()
	assert.Equal(t, true, first.Metadata["sampling_used"])
	assert.Equal(t, 10, first.TotalOptionsGenerated)
	require.Equal(t, len(first.Options), len(second.Options))
	for i := range first.Options {
		assert.Equal(t, first.Options[i].SectionIDs(), second.Options[i].SectionIDs())
	}
}

func TestScheduleGeneratorServiceCanceledContext(t *testing.T) {
	service := newGeneratorFixture(nil, 0, ScheduleGeneratorConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.GenerateWithSections(ctx, models.ScheduleRequest{
		CourseIDs:  []string{"CPSC 223"},
		SeasonCode: "202503",
	}, map[string][]models.Section{
		"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGenerationFailed.Code, appErrors.FromError(err).Code)
}

func TestScheduleGeneratorServiceGenerateFetchesSections(t *testing.T) {
	catalog := &catalogSectionsStub{
		sections: map[string][]models.Section{
			"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
			"MATH 120": {genSection("math-1", "MATH 120", 3, "TTH", "13:00", "14:15")},
		},
	}
	service := newGeneratorFixture(catalog, 0, ScheduleGeneratorConfig{})

	result, err := service.Generate(context.Background(), models.ScheduleRequest{
		CourseIDs:  []string{"CPSC 223", "MATH 120", "CPSC 223"},
		SeasonCode: "202503",
	})
	require.NoError(t, err)
	require.Len(t, result.Options, 1)
	assert.Len(t, result.Options[0].Sections, 2)
	assert.Equal(t, 1, catalog.calls["CPSC 223"], "duplicate course ids should be fetched once")
}

func TestScheduleGeneratorServiceGenerateSurfacesMissingCourses(t *testing.T) {
	catalog := &catalogSectionsStub{
		sections: map[string][]models.Section{
			"CPSC 223": {genSection("cpsc-1", "CPSC 223", 3, "MWF", "09:00", "10:15")},
		},
		errs: map[string]error{
			"MATH 120": appErrors.Clone(appErrors.ErrCatalogUnavailable, "catalog down"),
		},
	}
	service := newGeneratorFixture(catalog, 0, ScheduleGeneratorConfig{})

	_, err := service.Generate(context.Background(), models.ScheduleRequest{
		CourseIDs:  []string{"CPSC 223", "MATH 120"},
		SeasonCode: "202503",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoSectionsAvailable.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "MATH 120")
}

// --- Fixtures ---

func newGeneratorFixture(catalog sectionCatalog, seed int64, cfg ScheduleGeneratorConfig) *ScheduleGeneratorService {
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	return NewScheduleGeneratorService(catalog, rng, validator.New(), zap.NewNop(), cfg)
}

func genSection(id, courseID string, credits float64, days, start, end string) models.Section {
	return models.Section{
		ID:         id,
		CourseID:   courseID,
		Section:    "01",
		SeasonCode: "202503",
		Credits:    &credits,
		Meetings: []models.Meeting{{
			Days:      days,
			Timeslots: []models.Timeslot{{StartTime: start, EndTime: end}},
		}},
	}
}

type catalogSectionsStub struct {
	sections map[string][]models.Section
	errs     map[string]error
	calls    map[string]int
}

func (s *catalogSectionsStub) GetCourseSections(ctx context.Context, courseID, seasonCode string) ([]models.Section, error) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[courseID]++
	if err := s.errs[courseID]; err != nil {
		return nil, err
	}
	return s.sections[courseID], nil
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
