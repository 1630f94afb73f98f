package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

func TestAIServiceParseSearchQueryDisabled(t *testing.T) {
	service := NewAIService(nil, zap.NewNop(), AIServiceConfig{})

	parsed := service.ParseSearchQuery(context.Background(), "Easy CS Courses", "202503")
	assert.Equal(t, "Easy CS Courses", parsed.OriginalQuery)
	assert.Equal(t, []string{"easy", "cs", "courses"}, parsed.Keywords)
	assert.Empty(t, parsed.Interpretation)
}

func TestAIServiceParseSearchQuerySuccess(t *testing.T) {
	gen := &textGeneratorStub{response: "```json\n" + `{
		"subject_codes": ["CPSC"],
		"min_rating": 4.0,
		"no_final_exam": true,
		"keywords": ["intro", "easy"],
		"interpretation": "Looking for easy intro CS courses"
	}` + "\n```"}
	service := newAIFixture(gen)

	parsed := service.ParseSearchQuery(context.Background(), "easy cs intro", "202503")
	assert.Equal(t, []string{"CPSC"}, parsed.SubjectCodes)
	require.NotNil(t, parsed.MinRating)
	assert.Equal(t, 4.0, *parsed.MinRating)
	assert.True(t, parsed.NoFinalExam)
	assert.Equal(t, []string{"intro", "easy"}, parsed.Keywords)
	assert.Equal(t, "Looking for easy intro CS courses", parsed.Interpretation)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Query: easy cs intro")
	assert.Contains(t, gen.prompts[0], "Season: 202503")
}

func TestAIServiceParseSearchQueryFallbacks(t *testing.T) {
	t.Run("generator error", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{err: errors.New("model overloaded")})
		parsed := service.ParseSearchQuery(context.Background(), "hard math", "202503")
		assert.Equal(t, []string{"hard", "math"}, parsed.Keywords)
		assert.Equal(t, "Searching for: hard math", parsed.Interpretation)
	})

	t.Run("invalid json", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{response: "I could not parse that"})
		parsed := service.ParseSearchQuery(context.Background(), "hard math", "202503")
		assert.Equal(t, []string{"hard", "math"}, parsed.Keywords)
		assert.Equal(t, "Searching for: hard math", parsed.Interpretation)
	})

	t.Run("empty keywords keep structured fields", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{response: `{"subject_codes": ["MATH"], "keywords": []}`})
		parsed := service.ParseSearchQuery(context.Background(), "hard math", "202503")
		assert.Equal(t, []string{"MATH"}, parsed.SubjectCodes)
		assert.Equal(t, []string{"hard", "math"}, parsed.Keywords)
	})
}

func TestAIServiceRankResultsDisabled(t *testing.T) {
	service := NewAIService(nil, zap.NewNop(), AIServiceConfig{})
	results := searchResultsFixture("1", "2", "3")

	ranked := service.RankResults(context.Background(), "algorithms", results, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "1", ranked[0].CourseWithSections.Course.ID)
}

func TestAIServiceRankResultsReorders(t *testing.T) {
	gen := &textGeneratorStub{response: `{
		"rankings": [
			{"course_id": "2", "score": 0.9, "reason": "strong match"},
			{"course_id": 1, "score": 1.5}
		]
	}`}
	service := newAIFixture(gen)
	results := searchResultsFixture("1", "2", "3")

	ranked := service.RankResults(context.Background(), "algorithms", results, 5)
	require.Len(t, ranked, 2, "unranked results should be dropped")
	assert.Equal(t, "1", ranked[0].CourseWithSections.Course.ID)
	assert.Equal(t, 1.0, ranked[0].RelevanceScore, "scores above 1 are clamped")
	assert.Equal(t, "2", ranked[1].CourseWithSections.Course.ID)
	assert.Equal(t, 0.9, ranked[1].RelevanceScore)
	assert.Contains(t, ranked[1].MatchReasons, "strong match")
}

func TestAIServiceRankResultsKeepsOrderOnFailure(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{response: "no rankings here"})
		ranked := service.RankResults(context.Background(), "algorithms", searchResultsFixture("1", "2", "3"), 2)
		require.Len(t, ranked, 2)
		assert.Equal(t, "1", ranked[0].CourseWithSections.Course.ID)
		assert.Equal(t, "2", ranked[1].CourseWithSections.Course.ID)
	})

	t.Run("no ids matched", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{response: `{"rankings": [{"course_id": "999", "score": 0.5}]}`})
		ranked := service.RankResults(context.Background(), "algorithms", searchResultsFixture("1", "2"), 5)
		require.Len(t, ranked, 2)
		assert.Equal(t, "1", ranked[0].CourseWithSections.Course.ID)
	})
}

func TestAIServiceGenerateSuggestions(t *testing.T) {
	t.Run("disabled uses static completions", func(t *testing.T) {
		service := NewAIService(nil, zap.NewNop(), AIServiceConfig{})
		suggestions := service.GenerateSuggestions(context.Background(), "intro", 2)
		require.Len(t, suggestions, 2)
		assert.Equal(t, "intro computer science", suggestions[0].Text)
		assert.Equal(t, "course", suggestions[0].Type)
	})

	t.Run("enabled uses generated completions", func(t *testing.T) {
		gen := &textGeneratorStub{response: `{"suggestions": ["intro to ai", "intro to algorithms"]}`}
		service := newAIFixture(gen)
		suggestions := service.GenerateSuggestions(context.Background(), "intro", 1)
		require.Len(t, suggestions, 1)
		assert.Equal(t, "intro to ai", suggestions[0].Text)
		assert.Equal(t, "keyword", suggestions[0].Type)
		assert.Equal(t, "ai_generated", suggestions[0].Metadata["source"])
	})
}

func TestAIServiceExplainSchedule(t *testing.T) {
	option := models.ScheduleOption{
		Sections: []models.Section{
			genSection("sec-1", "CPSC 223", 3, "MWF", "09:00", "10:15"),
			genSection("sec-2", "MATH 120", 3, "TTH", "13:00", "14:15"),
		},
		QualityScore: 87.5,
	}

	t.Run("disabled", func(t *testing.T) {
		service := NewAIService(nil, zap.NewNop(), AIServiceConfig{})
		assert.Equal(t, "Schedule with 2 courses", service.ExplainSchedule(context.Background(), option))
	})

	t.Run("generator error", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{err: errors.New("model overloaded")})
		assert.Equal(t, "Schedule with 2 courses and quality score 88/100", service.ExplainSchedule(context.Background(), option))
	})

	t.Run("success trims whitespace", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{response: "  A balanced morning and afternoon split.\n"})
		assert.Equal(t, "A balanced morning and afternoon split.", service.ExplainSchedule(context.Background(), option))
	})
}

func TestAIServiceHealthCheck(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		service := NewAIService(nil, zap.NewNop(), AIServiceConfig{})
		err := service.HealthCheck(context.Background())
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrAIUnavailable.Code, appErrors.FromError(err).Code)
	})

	t.Run("enabled", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{response: `{"status": "healthy"}`})
		assert.NoError(t, service.HealthCheck(context.Background()))
	})

	t.Run("generator failure", func(t *testing.T) {
		service := newAIFixture(&textGeneratorStub{err: errors.New("quota exceeded")})
		assert.Error(t, service.HealthCheck(context.Background()))
	})
}

func TestStripJSONFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripJSONFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripJSONFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripJSONFences(`{"a": 1}`))
}

// --- Fixtures ---

func newAIFixture(gen textGenerator) *AIService {
	return NewAIService(gen, zap.NewNop(), AIServiceConfig{Enabled: true})
}

type textGeneratorStub struct {
	response string
	err      error
	prompts  []string
}

func (s *textGeneratorStub) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func searchResultsFixture(ids ...string) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, models.SearchResult{
			CourseWithSections: models.CourseWithSections{
				Course: models.Course{ID: id, Title: "Course " + id},
			},
			RelevanceScore: 1.0,
		})
	}
	return results
}
