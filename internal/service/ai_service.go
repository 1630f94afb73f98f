package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/models"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

const parseQueryPrompt = `You are a course search assistant for Yale University.
Parse natural language queries into structured search filters.

Output JSON with these fields (all optional):
{
  "subject_codes": ["CPSC", "MATH"],  // Department codes
  "min_rating": 4.0,                   // Minimum average rating (1-5)
  "max_workload": 15.0,                // Maximum hours/week
  "no_final_exam": true,               // Exclude courses with finals
  "no_friday": true,                   // Exclude Friday classes
  "requirements": ["QR", "WR"],        // Distribution requirements
  "keywords": ["intro", "easy"],       // Keywords for description
  "interpretation": "Looking for..."   // Human explanation
}

Common subjects: CPSC (CS), MATH, ECON, PSYC, HIST, ENGL, CHEM, PHYS, BIOL, etc.
Workload: "easy" = <10, "moderate" = 10-15, "challenging" = >15
Rating: "highly rated" = >4.0, "good" = >3.5`

const rankCoursesPrompt = `You are ranking courses by relevance to a student's query.
Return JSON with course ids in order of relevance with scores. Echo each
course_id exactly as given.

Output format:
{
  "rankings": [
    {"course_id": "12345", "score": 0.95, "reason": "Perfect match..."},
    {"course_id": "12346", "score": 0.85, "reason": "Good match..."}
  ]
}

Consider:
- Query keywords vs course title/description
- Professor reputation (if mentioned)
- Ratings and workload preferences
- Course level (intro vs advanced)`

const suggestionsPrompt = `You are completing a student's course search query.
Given a partial query, suggest likely full queries.

Output JSON:
{
  "suggestions": ["partial query completed one way", "another way"]
}

Keep suggestions short and course-related.`

// AIService wraps a text generator with course-domain prompts. Every method
// degrades to a deterministic fallback instead of failing, so callers never
// need an error path for AI unavailability.
type AIService struct {
	gen    textGenerator
	logger *zap.Logger
	cfg    AIServiceConfig
}

// AIServiceConfig controls AI feature availability and call deadlines.
type AIServiceConfig struct {
	Enabled bool
	Timeout time.Duration
}

// NewAIService wires the text generator. A nil generator leaves the service
// in fallback-only mode.
func NewAIService(gen textGenerator, logger *zap.Logger, cfg AIServiceConfig) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &AIService{gen: gen, logger: logger, cfg: cfg}
}

// Enabled reports whether AI-backed features are active.
func (s *AIService) Enabled() bool {
	return s != nil && s.cfg.Enabled && s.gen != nil
}

// ParseSearchQuery turns a natural language query into structured search
// parameters. On any failure it falls back to a keyword split of the query.
func (s *AIService) ParseSearchQuery(ctx context.Context, query, seasonCode string) models.ParsedQuery {
	fallback := models.ParsedQuery{
		OriginalQuery: query,
		Keywords:      strings.Fields(strings.ToLower(query)),
	}
	if !s.Enabled() {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	prompt := parseQueryPrompt + "\n\n" + fmt.Sprintf("Query: %s\nSeason: %s", query, seasonCode)
	raw, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("query parsing failed, using keyword fallback", zap.Error(err))
		fallback.Interpretation = "Searching for: " + query
		return fallback
	}

	var parsed struct {
		SubjectCodes   []string `json:"subject_codes"`
		CourseCodes    []string `json:"course_codes"`
		Keywords       []string `json:"keywords"`
		MinRating      *float64 `json:"min_rating"`
		MaxWorkload    *float64 `json:"max_workload"`
		NoFinalExam    bool     `json:"no_final_exam"`
		NoFriday       bool     `json:"no_friday"`
		Requirements   []string `json:"requirements"`
		Interpretation string   `json:"interpretation"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &parsed); err != nil {
		s.logger.Warn("query parse response was not valid json", zap.Error(err))
		fallback.Interpretation = "Searching for: " + query
		return fallback
	}

	keywords := parsed.Keywords
	if len(keywords) == 0 {
		keywords = fallback.Keywords
	}
	return models.ParsedQuery{
		OriginalQuery:  query,
		SubjectCodes:   parsed.SubjectCodes,
		CourseCodes:    parsed.CourseCodes,
		Keywords:       keywords,
		MinRating:      parsed.MinRating,
		MaxWorkload:    parsed.MaxWorkload,
		NoFinalExam:    parsed.NoFinalExam,
		NoFriday:       parsed.NoFriday,
		Requirements:   parsed.Requirements,
		Interpretation: parsed.Interpretation,
	}
}

// RankResults reorders search results by relevance to the query. Results the
// model does not rank are dropped; on any failure the original order is kept
// and truncated to limit.
func (s *AIService) RankResults(ctx context.Context, query string, results []models.SearchResult, limit int) []models.SearchResult {
	if limit <= 0 {
		limit = len(results)
	}
	if !s.Enabled() || len(results) == 0 {
		return truncateResults(results, limit)
	}

	summaries := make([]rankingSummary, 0, len(results))
	for _, result := range results {
		if len(summaries) == 100 {
			break
		}
		summaries = append(summaries, newRankingSummary(result.CourseWithSections))
	}
	payload, err := json.Marshal(summaries)
	if err != nil {
		s.logger.Warn("failed to encode courses for ranking", zap.Error(err))
		return truncateResults(results, limit)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	prompt := rankCoursesPrompt + "\n\n" + fmt.Sprintf("Query: %s\n\nCourses:\n%s", query, payload)
	raw, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("course ranking failed, keeping catalog order", zap.Error(err))
		return truncateResults(results, limit)
	}

	var parsed struct {
		Rankings []struct {
			CourseID flexibleID `json:"course_id"`
			Score    float64    `json:"score"`
			Reason   string     `json:"reason"`
		} `json:"rankings"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &parsed); err != nil || len(parsed.Rankings) == 0 {
		s.logger.Warn("ranking response was not usable", zap.Error(err))
		return truncateResults(results, limit)
	}

	type rankEntry struct {
		score  float64
		reason string
	}
	scores := make(map[string]rankEntry, len(parsed.Rankings))
	for _, ranking := range parsed.Rankings {
		scores[string(ranking.CourseID)] = rankEntry{score: ranking.Score, reason: ranking.Reason}
	}

	ranked := make([]models.SearchResult, 0, len(results))
	for _, result := range results {
		entry, ok := scores[result.CourseWithSections.Course.ID]
		if !ok {
			continue
		}
		result.RelevanceScore = clampUnit(entry.score)
		if entry.reason != "" {
			result.MatchReasons = append(result.MatchReasons, entry.reason)
		}
		ranked = append(ranked, result)
	}
	if len(ranked) == 0 {
		return truncateResults(results, limit)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})
	return truncateResults(ranked, limit)
}

// GenerateSuggestions completes a partial search query. Falls back to static
// subject-flavoured completions.
func (s *AIService) GenerateSuggestions(ctx context.Context, partialQuery string, limit int) []models.SearchSuggestion {
	if limit <= 0 {
		limit = 10
	}

	if s.Enabled() {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		prompt := suggestionsPrompt + "\n\n" + "Partial query: " + partialQuery
		raw, err := s.gen.GenerateText(ctx, prompt)
		if err == nil {
			var parsed struct {
				Suggestions []string `json:"suggestions"`
			}
			if err := json.Unmarshal([]byte(stripJSONFences(raw)), &parsed); err == nil && len(parsed.Suggestions) > 0 {
				suggestions := make([]models.SearchSuggestion, 0, len(parsed.Suggestions))
				for _, text := range parsed.Suggestions {
					if len(suggestions) == limit {
						break
					}
					suggestions = append(suggestions, models.SearchSuggestion{
						Text:     text,
						Type:     "keyword",
						Metadata: map[string]interface{}{"source": "ai_generated"},
					})
				}
				return suggestions
			}
		}
		s.logger.Warn("suggestion generation failed, using static fallback", zap.Error(err))
	}

	static := []models.SearchSuggestion{
		{Text: partialQuery + " computer science", Type: "course"},
		{Text: partialQuery + " mathematics", Type: "course"},
		{Text: partialQuery + " engineering", Type: "course"},
	}
	if len(static) > limit {
		static = static[:limit]
	}
	return static
}

// ExplainSchedule produces a short natural language summary of a schedule
// option.
func (s *AIService) ExplainSchedule(ctx context.Context, option models.ScheduleOption) string {
	courseCount := len(option.CourseIDs())
	if !s.Enabled() {
		return fmt.Sprintf("Schedule with %d courses", courseCount)
	}

	type sectionSummary struct {
		CourseID   string   `json:"course_id"`
		Section    string   `json:"section"`
		Credits    float64  `json:"credits"`
		Professors []string `json:"professors,omitempty"`
	}
	summaries := make([]sectionSummary, 0, len(option.Sections))
	for _, section := range option.Sections {
		names := make([]string, 0, len(section.Professors))
		for _, prof := range section.Professors {
			names = append(names, prof.Name)
		}
		summaries = append(summaries, sectionSummary{
			CourseID:   section.CourseID,
			Section:    section.Section,
			Credits:    section.CreditValue(),
			Professors: names,
		})
	}
	payload, _ := json.Marshal(summaries)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Generate a 2-sentence explanation of this course schedule.
Focus on why it's a good/bad choice and any notable features.

Schedule:
- Sections: %s
- Quality Score: %.1f/100
- Conflicts: %d
- Total Credits: %.1f

Be concise and helpful.`, payload, option.QualityScore, len(option.Conflicts), option.TotalCredits)

	raw, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("schedule explanation failed, using fallback", zap.Error(err))
		return fmt.Sprintf("Schedule with %d courses and quality score %.0f/100", courseCount, option.QualityScore)
	}
	return strings.TrimSpace(raw)
}

// HealthCheck performs a minimal round trip against the generator.
func (s *AIService) HealthCheck(ctx context.Context) error {
	if !s.Enabled() {
		return appErrors.Clone(appErrors.ErrAIUnavailable, "ai features disabled")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if _, err := s.gen.GenerateText(ctx, `Respond with JSON: {"status": "healthy"}`); err != nil {
		return err
	}
	return nil
}

type rankingSummary struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Professors  []string `json:"professors,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Workload    *float64 `json:"workload,omitempty"`
}

func newRankingSummary(course models.CourseWithSections) rankingSummary {
	description := ""
	if course.Course.Description != nil {
		description = *course.Course.Description
		if len(description) > 200 {
			description = description[:200]
		}
	}
	names := make([]string, 0, len(course.Course.Professors))
	for _, prof := range course.Course.Professors {
		names = append(names, prof.Name)
	}
	return rankingSummary{
		ID:          course.Course.ID,
		Code:        course.Course.CourseCode,
		Title:       course.Course.Title,
		Description: description,
		Professors:  names,
		Rating:      averageProfessorRating(course.Course.Professors),
		Workload:    averageProfessorWorkload(course.Course.Professors),
	}
}

func averageProfessorRating(profs []models.Professor) *float64 {
	total := 0.0
	count := 0
	for _, prof := range profs {
		if prof.Rating != nil && *prof.Rating > 0 {
			total += *prof.Rating
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

func averageProfessorWorkload(profs []models.Professor) *float64 {
	total := 0.0
	count := 0
	for _, prof := range profs {
		if prof.Workload != nil && *prof.Workload > 0 {
			total += *prof.Workload
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

// flexibleID accepts both string and numeric JSON ids, since language models
// do not reliably preserve id types.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = flexibleID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexibleID(num.String())
		return nil
	}
	return fmt.Errorf("course_id must be a string or number")
}

// stripJSONFences removes markdown code fences models often wrap JSON in.
func stripJSONFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func truncateResults(results []models.SearchResult, limit int) []models.SearchResult {
	if limit >= 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
