package repository

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"go.uber.org/zap"

	"github.com/campushq/course-scheduler-api/internal/models"
	"github.com/campushq/course-scheduler-api/pkg/config"
	appErrors "github.com/campushq/course-scheduler-api/pkg/errors"
)

const searchCoursesQuery = `
query SearchCourses($query: String, $seasonCode: String, $limit: Int, $offset: Int) {
  courses(query: $query, seasonCode: $seasonCode, limit: $limit, offset: $offset) {
    pageInfo {
      hasNextPage
      hasPreviousPage
      startCursor
      endCursor
    }
    edges {
      node {
        id
        title
        description
        credits
        courseCode
        department {
          code
          name
        }
        areas {
          code
          name
        }
        skills {
          code
          name
        }
        professors {
          id
          name
          email
          oci
          evaluations {
            workload
            rating
          }
        }
        requirements {
          code
          name
        }
        syllabusUrl
        sections(seasonCode: $seasonCode) {
          id
          section
          crn
          seasonCode
          teachingMethod
          credits
          capacity
          enrolled
          waitlist
          meetings {
            days
            location
            timeslots {
              startTime
              endTime
            }
            startDate
            endDate
          }
          professors {
            id
            name
            email
            oci
            evaluations {
              workload
              rating
            }
          }
          notes
          finalExam {
            date
            startTime
            endTime
            location
          }
        }
      }
    }
  }
}`

const courseDetailQuery = `
query GetCourse($courseId: ID!, $seasonCode: String) {
  course(id: $courseId) {
    id
    title
    description
    credits
    courseCode
    department {
      code
      name
    }
    areas {
      code
      name
    }
    skills {
      code
      name
    }
    professors {
      id
      name
      email
      oci
      evaluations {
        workload
        rating
      }
    }
    requirements {
      code
      name
    }
    syllabusUrl
    sections(seasonCode: $seasonCode) {
      id
      section
      crn
      seasonCode
      teachingMethod
      credits
      capacity
      enrolled
      waitlist
      meetings {
        days
        location
        timeslots {
          startTime
          endTime
        }
        startDate
        endDate
      }
      professors {
        id
        name
        email
        oci
        evaluations {
          workload
          rating
        }
      }
      notes
      syllabusUrl
      finalExam {
        date
        startTime
        endTime
        location
      }
    }
  }
}`

const seasonsQuery = `
query GetSeasons {
  seasons {
    code
    year
    term
    startDate
    endDate
    currentSeason
  }
}`

const courseSectionsQuery = `
query GetCourseSections($courseId: ID!, $seasonCode: String) {
  course(id: $courseId) {
    id
    credits
    sections(seasonCode: $seasonCode) {
      id
      section
      crn
      seasonCode
      teachingMethod
      credits
      capacity
      enrolled
      waitlist
      meetings {
        days
        location
        timeslots {
          startTime
          endTime
        }
        startDate
        endDate
      }
      professors {
        id
        name
        email
        oci
        evaluations {
          workload
          rating
        }
      }
      notes
      finalExam {
        date
        startTime
        endTime
        location
      }
    }
  }
}`

// CatalogRepository talks to the upstream course catalog GraphQL API and
// converts its payloads into domain models. Individual malformed records are
// logged and skipped rather than failing the whole request.
type CatalogRepository struct {
	client  *graphql.Client
	retries int
	logger  *zap.Logger
}

// NewCatalogRepository constructs the repository from catalog configuration.
func NewCatalogRepository(cfg config.CatalogConfig, logger *zap.Logger) *CatalogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	client := graphql.NewClient(cfg.BaseURL, graphql.WithHTTPClient(httpClient))

	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	return &CatalogRepository{client: client, retries: retries, logger: logger}
}

type labeledNode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type evaluationNode struct {
	Workload *float64 `json:"workload"`
	Rating   *float64 `json:"rating"`
}

type professorNode struct {
	ID          *int            `json:"id"`
	Name        string          `json:"name"`
	Email       *string         `json:"email"`
	OCI         *float64        `json:"oci"`
	Evaluations *evaluationNode `json:"evaluations"`
}

type timeslotNode struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type meetingNode struct {
	Days      string         `json:"days"`
	Location  *string        `json:"location"`
	Timeslots []timeslotNode `json:"timeslots"`
	StartDate *string        `json:"startDate"`
	EndDate   *string        `json:"endDate"`
}

type finalExamNode struct {
	Date      string  `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Location  *string `json:"location"`
}

type sectionNode struct {
	ID             string          `json:"id"`
	Section        string          `json:"section"`
	CRN            *int            `json:"crn"`
	SeasonCode     string          `json:"seasonCode"`
	TeachingMethod *string         `json:"teachingMethod"`
	Credits        *float64        `json:"credits"`
	Capacity       *int            `json:"capacity"`
	Enrolled       *int            `json:"enrolled"`
	Waitlist       *int            `json:"waitlist"`
	Meetings       []meetingNode   `json:"meetings"`
	Professors     []professorNode `json:"professors"`
	Notes          *string         `json:"notes"`
	SyllabusURL    *string         `json:"syllabusUrl"`
	FinalExam      *finalExamNode  `json:"finalExam"`
}

type courseNode struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  *string         `json:"description"`
	Credits      *float64        `json:"credits"`
	CourseCode   string          `json:"courseCode"`
	Department   *labeledNode    `json:"department"`
	Areas        []labeledNode   `json:"areas"`
	Skills       []labeledNode   `json:"skills"`
	Professors   []professorNode `json:"professors"`
	Requirements []labeledNode   `json:"requirements"`
	SyllabusURL  *string         `json:"syllabusUrl"`
	Sections     []sectionNode   `json:"sections"`
}

type pageInfoNode struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

type seasonNode struct {
	Code          string  `json:"code"`
	Year          int     `json:"year"`
	Term          string  `json:"term"`
	StartDate     *string `json:"startDate"`
	EndDate       *string `json:"endDate"`
	CurrentSeason bool    `json:"currentSeason"`
}

// SearchCourses executes a catalog search and returns parsed courses with sections.
func (r *CatalogRepository) SearchCourses(ctx context.Context, query models.CourseSearchQuery) (*models.CourseSearchResult, error) {
	req := graphql.NewRequest(searchCoursesQuery)
	req.Var("query", buildQueryString(query.Query, query.Filters))
	req.Var("seasonCode", query.SeasonCode)
	req.Var("limit", query.Limit)
	req.Var("offset", query.Offset)

	var resp struct {
		Courses struct {
			PageInfo pageInfoNode `json:"pageInfo"`
			Edges    []struct {
				Node courseNode `json:"node"`
			} `json:"edges"`
		} `json:"courses"`
	}

	if err := r.run(ctx, req, &resp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCatalogUnavailable.Code, appErrors.ErrCatalogUnavailable.Status, "course search failed")
	}

	courses := make([]models.CourseWithSections, 0, len(resp.Courses.Edges))
	for _, edge := range resp.Courses.Edges {
		parsed := r.parseCourseNode(edge.Node)
		if parsed != nil {
			courses = append(courses, *parsed)
		}
	}

	result := &models.CourseSearchResult{
		Courses:    courses,
		TotalCount: len(courses),
		HasMore:    resp.Courses.PageInfo.HasNextPage,
	}
	if result.HasMore {
		next := query.Offset + query.Limit
		result.NextOffset = &next
	}

	return result, nil
}

// GetCourseDetail fetches one course with its sections for a season.
func (r *CatalogRepository) GetCourseDetail(ctx context.Context, courseID, seasonCode string) (*models.CourseWithSections, error) {
	req := graphql.NewRequest(courseDetailQuery)
	req.Var("courseId", courseID)
	req.Var("seasonCode", seasonCode)

	var resp struct {
		Course *courseNode `json:"course"`
	}

	if err := r.run(ctx, req, &resp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCatalogUnavailable.Code, appErrors.ErrCatalogUnavailable.Status, "course detail lookup failed")
	}
	if resp.Course == nil || resp.Course.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, "course "+courseID+" not found")
	}

	parsed := r.parseCourseNode(*resp.Course)
	if parsed == nil {
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, "course "+courseID+" not found")
	}

	return parsed, nil
}

// GetCourseSections fetches the sections offered for a course in a season.
func (r *CatalogRepository) GetCourseSections(ctx context.Context, courseID, seasonCode string) ([]models.Section, error) {
	req := graphql.NewRequest(courseSectionsQuery)
	req.Var("courseId", courseID)
	req.Var("seasonCode", seasonCode)

	var resp struct {
		Course *struct {
			ID       string        `json:"id"`
			Credits  *float64      `json:"credits"`
			Sections []sectionNode `json:"sections"`
		} `json:"course"`
	}

	if err := r.run(ctx, req, &resp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCatalogUnavailable.Code, appErrors.ErrCatalogUnavailable.Status, "section lookup failed")
	}
	if resp.Course == nil || resp.Course.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrCourseNotFound, "course "+courseID+" not found")
	}

	sections := make([]models.Section, 0, len(resp.Course.Sections))
	for _, node := range resp.Course.Sections {
		section := r.parseSectionNode(node, courseID, resp.Course.Credits)
		if section != nil {
			sections = append(sections, *section)
		}
	}

	return sections, nil
}

// GetSeasons lists the academic seasons known to the catalog.
func (r *CatalogRepository) GetSeasons(ctx context.Context) ([]models.Season, error) {
	req := graphql.NewRequest(seasonsQuery)

	var resp struct {
		Seasons []seasonNode `json:"seasons"`
	}

	if err := r.run(ctx, req, &resp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCatalogUnavailable.Code, appErrors.ErrCatalogUnavailable.Status, "season lookup failed")
	}

	seasons := make([]models.Season, 0, len(resp.Seasons))
	for _, node := range resp.Seasons {
		seasons = append(seasons, models.Season{
			Code:          node.Code,
			Year:          node.Year,
			Term:          node.Term,
			StartDate:     node.StartDate,
			EndDate:       node.EndDate,
			CurrentSeason: node.CurrentSeason,
		})
	}

	return seasons, nil
}

const catalogRetryDelay = 500 * time.Millisecond

// run executes a request with bounded retries for transient upstream failures.
func (r *CatalogRepository) run(ctx context.Context, req *graphql.Request, resp interface{}) error {
	var err error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = r.client.Run(ctx, req, resp); err == nil {
			return nil
		}
		if attempt < r.retries {
			r.logger.Warn("catalog request failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(catalogRetryDelay):
			}
		}
	}
	return err
}

func (r *CatalogRepository) parseCourseNode(node courseNode) *models.CourseWithSections {
	if node.ID == "" {
		r.logger.Warn("skipping course without id", zap.String("title", node.Title))
		return nil
	}

	course := models.Course{
		ID:           node.ID,
		Title:        node.Title,
		Description:  node.Description,
		Credits:      node.Credits,
		CourseCode:   node.CourseCode,
		Areas:        labelNames(node.Areas),
		Skills:       labelNames(node.Skills),
		Professors:   parseProfessorNodes(node.Professors),
		Requirements: labelNames(node.Requirements),
		SyllabusURL:  node.SyllabusURL,
	}
	if node.Department != nil {
		course.Department = &models.Department{Code: node.Department.Code, Name: node.Department.Name}
	}

	sections := make([]models.Section, 0, len(node.Sections))
	for _, sn := range node.Sections {
		section := r.parseSectionNode(sn, node.ID, node.Credits)
		if section != nil {
			sections = append(sections, *section)
		}
	}

	return &models.CourseWithSections{Course: course, Sections: sections}
}

// parseSectionNode converts one section record; sections missing an id are
// dropped. Credits fall back to the parent course when absent on the section.
func (r *CatalogRepository) parseSectionNode(node sectionNode, courseID string, courseCredits *float64) *models.Section {
	if node.ID == "" {
		r.logger.Warn("skipping section without id", zap.String("course_id", courseID))
		return nil
	}

	credits := node.Credits
	if credits == nil {
		credits = courseCredits
	}

	section := models.Section{
		ID:             node.ID,
		CourseID:       courseID,
		Section:        node.Section,
		CRN:            node.CRN,
		SeasonCode:     node.SeasonCode,
		TeachingMethod: node.TeachingMethod,
		Credits:        credits,
		Capacity:       node.Capacity,
		Enrolled:       node.Enrolled,
		Waitlist:       node.Waitlist,
		Professors:     parseProfessorNodes(node.Professors),
		Notes:          node.Notes,
		SyllabusURL:    node.SyllabusURL,
	}

	for _, mn := range node.Meetings {
		meeting := r.parseMeetingNode(mn)
		if meeting != nil {
			section.Meetings = append(section.Meetings, *meeting)
		}
	}

	if node.FinalExam != nil && node.FinalExam.Date != "" {
		section.FinalExam = &models.FinalExam{
			Date:      node.FinalExam.Date,
			StartTime: normalizeClockPtr(node.FinalExam.StartTime),
			EndTime:   normalizeClockPtr(node.FinalExam.EndTime),
			Location:  node.FinalExam.Location,
		}
	}

	return &section
}

func (r *CatalogRepository) parseMeetingNode(node meetingNode) *models.Meeting {
	meeting := models.Meeting{
		Days:      node.Days,
		Location:  node.Location,
		StartDate: node.StartDate,
		EndDate:   node.EndDate,
	}

	for _, tn := range node.Timeslots {
		start, okStart := models.ParseClock(tn.StartTime)
		end, okEnd := models.ParseClock(tn.EndTime)
		if !okStart || !okEnd {
			r.logger.Warn("skipping timeslot with malformed times",
				zap.String("start", tn.StartTime),
				zap.String("end", tn.EndTime))
			continue
		}
		meeting.Timeslots = append(meeting.Timeslots, models.Timeslot{
			StartTime: models.FormatClock(start),
			EndTime:   models.FormatClock(end),
		})
	}

	return &meeting
}

func parseProfessorNodes(nodes []professorNode) []models.Professor {
	if len(nodes) == 0 {
		return nil
	}
	professors := make([]models.Professor, 0, len(nodes))
	for _, node := range nodes {
		prof := models.Professor{
			ID:    node.ID,
			Name:  node.Name,
			Email: node.Email,
			OCI:   node.OCI,
		}
		if node.Evaluations != nil {
			prof.Rating = node.Evaluations.Rating
			prof.Workload = node.Evaluations.Workload
			prof.Evaluations = &models.Evaluation{
				Workload: node.Evaluations.Workload,
				Rating:   node.Evaluations.Rating,
			}
		}
		professors = append(professors, prof)
	}
	return professors
}

func labelNames(nodes []labeledNode) []string {
	if len(nodes) == 0 {
		return nil
	}
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if node.Name != "" {
			names = append(names, node.Name)
		}
	}
	return names
}

func normalizeClockPtr(clock *string) *string {
	if clock == nil {
		return nil
	}
	minutes, ok := models.ParseClock(*clock)
	if !ok {
		return clock
	}
	normalized := models.FormatClock(minutes)
	return &normalized
}

// buildQueryString augments the free-text query with filter directives the
// upstream search understands, e.g. "department:(CPSC,MATH)" or "area:QR".
func buildQueryString(query string, filters []models.SearchFilter) string {
	parts := make([]string, 0, 1+len(filters))
	if query != "" {
		parts = append(parts, query)
	}

	for _, filter := range filters {
		if len(filter.Values) == 0 {
			continue
		}
		switch {
		case filter.Field == "department" && filter.Operator == "in":
			parts = append(parts, "department:("+strings.Join(filter.Values, ",")+")")
		case filter.Field == "areas" && filter.Operator == "contains":
			parts = append(parts, "area:"+filter.Values[0])
		case filter.Field == "skills" && filter.Operator == "contains":
			parts = append(parts, "skill:"+filter.Values[0])
		}
	}

	return strings.Join(parts, " ")
}
