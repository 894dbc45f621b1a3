package plan

// StudyPlan is the root aggregate: a multi-day schedule with goals,
// concepts, formulas and tips. Exactly one plan is held at a time.
type StudyPlan struct {
	OverallGoal    string          `json:"overallGoal"`
	TotalStudyDays int             `json:"totalStudyDays"`
	HoursPerDay    float64         `json:"hoursPerDay"`
	KeyConcepts    []CoreConcept   `json:"keyConcepts"`
	DailyBreakdown []DailySchedule `json:"dailyBreakdown"`
	KeyFormulas    []KeyFormula    `json:"keyFormulas,omitempty"`
	GeneralTips    []string        `json:"generalTips,omitempty"`

	DifficultyLevel         string   `json:"difficultyLevel,omitempty"`
	EstimatedCompletionTime float64  `json:"estimatedCompletionTime,omitempty"`
	Prerequisites           []string `json:"prerequisites,omitempty"`
}

// CoreConcept is a concept the learner should master.
type CoreConcept struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
}

// DailySchedule is one scheduled day. Day is 1-based but not necessarily
// contiguous with its index in DailyBreakdown. Items order is the
// presentation and navigation order within the day.
type DailySchedule struct {
	Day           int         `json:"day"`
	DaySummary    string      `json:"daySummary,omitempty"`
	FocusArea     string      `json:"focusArea,omitempty"`
	LearningGoals []string    `json:"learningGoals,omitempty"`
	ReviewTopics  []string    `json:"reviewTopics,omitempty"`
	Items         []StudyItem `json:"items"`
}

// StudyItem is one study activity within a day.
type StudyItem struct {
	Topic              string     `json:"topic"`
	Details            string     `json:"details"`
	DurationMinutes    int        `json:"durationMinutes,omitempty"`
	EstimatedTimeHours float64    `json:"estimatedTimeHours,omitempty"`
	Resources          []Resource `json:"resources,omitempty"`
	LearningObjectives []string   `json:"learningObjectives,omitempty"`
	Priority           Priority   `json:"priority,omitempty"`
	IsCompleted        bool       `json:"isCompleted,omitempty"`
	IsSummary          bool       `json:"isSummary,omitempty"`
}

// Resource is a study resource. On the wire it may also be a bare string.
type Resource struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// KeyFormula is the canonical formula record. Legacy field layouts are
// folded into it by UnmarshalJSON.
type KeyFormula struct {
	Name        string            `json:"formula_name"`
	Equation    string            `json:"formula,omitempty"`
	Description string            `json:"usage_context,omitempty"`
	Variables   map[string]string `json:"variables,omitempty"`
	Examples    []string          `json:"examples,omitempty"`
}

// Priority of a study item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// SummaryTopic is the topic name of the per-day summary item.
const SummaryTopic = "Summary"

// DefaultFormulaName is used when a formula arrives without any name.
const DefaultFormulaName = "Formula"

// Label returns the day number used in task ids for the day at index i:
// its Day field, or i+1 when Day is unset.
func (p *StudyPlan) Label(i int) int {
	if p == nil || i < 0 || i >= len(p.DailyBreakdown) {
		return i + 1
	}
	if d := p.DailyBreakdown[i].Day; d != 0 {
		return d
	}
	return i + 1
}

// DayIndexByLabel returns the index of the day whose label is label.
func (p *StudyPlan) DayIndexByLabel(label int) (int, bool) {
	if p == nil {
		return 0, false
	}
	for i := range p.DailyBreakdown {
		if p.Label(i) == label {
			return i, true
		}
	}
	return 0, false
}

// HasSummaryItem reports whether the day already carries a "Summary" item.
func (d DailySchedule) HasSummaryItem() bool {
	for _, it := range d.Items {
		if it.Topic == SummaryTopic {
			return true
		}
	}
	return false
}

// SummaryItem synthesizes the summary leaf for a day. ok is false when the
// day has no summary text or already embeds a summary item.
func (d DailySchedule) SummaryItem() (StudyItem, bool) {
	if d.DaySummary == "" || d.HasSummaryItem() {
		return StudyItem{}, false
	}
	objectives := d.LearningGoals
	if objectives == nil {
		objectives = []string{}
	}
	return StudyItem{
		Topic:              SummaryTopic,
		Details:            d.DaySummary,
		LearningObjectives: objectives,
		IsSummary:          true,
	}, true
}

// TotalMinutes sums the scheduled minutes of the day's items.
func (d DailySchedule) TotalMinutes() int {
	total := 0
	for _, it := range d.Items {
		switch {
		case it.DurationMinutes > 0:
			total += it.DurationMinutes
		case it.EstimatedTimeHours > 0:
			total += int(it.EstimatedTimeHours * 60)
		}
	}
	return total
}
