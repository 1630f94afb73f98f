package models

// Timeslot is a single start/end pair within a meeting, using "HH:MM" clock strings.
type Timeslot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// StartMinutes returns the start time as minutes since midnight.
func (t Timeslot) StartMinutes() (int, bool) {
	return ParseClock(t.StartTime)
}

// EndMinutes returns the end time as minutes since midnight.
func (t Timeslot) EndMinutes() (int, bool) {
	return ParseClock(t.EndTime)
}

// Meeting is a recurring weekly time block tied to a day-set such as "MWF" or "TTH".
type Meeting struct {
	Timeslots []Timeslot `json:"timeslots"`
	Days      string     `json:"days"`
	Location  *string    `json:"location,omitempty"`
	StartDate *string    `json:"start_date,omitempty"`
	EndDate   *string    `json:"end_date,omitempty"`
}

// DayTokens expands the day-set into canonical day tokens.
func (m Meeting) DayTokens() []string {
	return ParseDays(m.Days)
}

// Evaluation carries aggregated course feedback statistics on a 0-5 scale.
type Evaluation struct {
	Workload *float64 `json:"workload,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
}

// Professor identifies an instructor with optional evaluation data.
type Professor struct {
	ID          *int        `json:"id,omitempty"`
	Name        string      `json:"name"`
	Email       *string     `json:"email,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
	Workload    *float64    `json:"workload,omitempty"`
	Evaluations *Evaluation `json:"evaluations,omitempty"`
	OCI         *float64    `json:"oci,omitempty"`
}

// FinalExam is the exam window attached to a section.
type FinalExam struct {
	Date      string  `json:"date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Location  *string `json:"location,omitempty"`
}

// Department identifies the owning academic department.
type Department struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Course holds catalog-level course information.
type Course struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  *string                `json:"description,omitempty"`
	Credits      *float64               `json:"credits,omitempty"`
	CourseCode   string                 `json:"course_code,omitempty"`
	Department   *Department            `json:"department,omitempty"`
	Areas        []string               `json:"areas,omitempty"`
	Skills       []string               `json:"skills,omitempty"`
	Professors   []Professor            `json:"professors,omitempty"`
	Requirements []string               `json:"requirements,omitempty"`
	SyllabusURL  *string                `json:"syllabus_url,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

// Section is one offered instance of a course in a season.
type Section struct {
	ID             string                 `json:"id"`
	CourseID       string                 `json:"course_id"`
	Section        string                 `json:"section"`
	CRN            *int                   `json:"crn,omitempty"`
	SeasonCode     string                 `json:"season_code"`
	TeachingMethod *string                `json:"teaching_method,omitempty"`
	Credits        *float64               `json:"credits,omitempty"`
	Capacity       *int                   `json:"capacity,omitempty"`
	Enrolled       *int                   `json:"enrolled,omitempty"`
	Waitlist       *int                   `json:"waitlist,omitempty"`
	Meetings       []Meeting              `json:"meetings,omitempty"`
	Professors     []Professor            `json:"professors,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
	SyllabusURL    *string                `json:"syllabus_url,omitempty"`
	FinalExam      *FinalExam             `json:"final_exam,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
}

// IsFull reports whether the section has reached its enrollment capacity.
// Sections with unknown or zero capacity/enrollment are never considered full.
func (s Section) IsFull() bool {
	if s.Capacity == nil || *s.Capacity <= 0 {
		return false
	}
	if s.Enrolled == nil || *s.Enrolled <= 0 {
		return false
	}
	return *s.Enrolled >= *s.Capacity
}

// CreditValue returns the section's credits, treating missing data as zero.
func (s Section) CreditValue() float64 {
	if s.Credits == nil {
		return 0
	}
	return *s.Credits
}

// CourseWithSections pairs a course with its fetched sections.
type CourseWithSections struct {
	Course   Course    `json:"course"`
	Sections []Section `json:"sections"`
}

// AvailableSections returns sections that still have open seats.
func (c CourseWithSections) AvailableSections() []Section {
	available := make([]Section, 0, len(c.Sections))
	for _, section := range c.Sections {
		if !section.IsFull() {
			available = append(available, section)
		}
	}
	return available
}

// CourseSearchResult is the catalog layer's paginated course listing.
type CourseSearchResult struct {
	Courses    []CourseWithSections `json:"courses"`
	TotalCount int                  `json:"total_count"`
	HasMore    bool                 `json:"has_more"`
	NextOffset *int                 `json:"next_offset,omitempty"`
}

// PageInfo mirrors the upstream GraphQL pagination block.
type PageInfo struct {
	HasNextPage     bool    `json:"has_next_page"`
	HasPreviousPage bool    `json:"has_previous_page"`
	StartCursor     *string `json:"start_cursor,omitempty"`
	EndCursor       *string `json:"end_cursor,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
