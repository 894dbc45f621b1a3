package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// backendPlan is the snake_case layout produced by the structuring agent
// before it is adapted for the client.
type backendPlan struct {
	OverallGoal             string            `json:"overall_goal"`
	TotalStudyDay           int               `json:"total_study_day"`
	HourPerDay              float64           `json:"hour_per_day"`
	CoreConcepts            []backendConcept  `json:"core_concepts"`
	DailySchedule           []backendDay      `json:"daily_schedule"`
	GeneralTip              []string          `json:"general_tip"`
	KeyFormulas             []KeyFormula      `json:"key_formulas"`
	Prerequisites           []string          `json:"prerequisites"`
	DifficultyLevel         string            `json:"difficulty_level"`
	EstimatedCompletionTime float64           `json:"estimated_completion_time"`
}

type backendConcept struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

type backendDay struct {
	Day           int           `json:"day"`
	FocusArea     string        `json:"focus_area"`
	StudyItem     []backendItem `json:"study_item"`
	Summary       string        `json:"summary"`
	LearningGoals []string      `json:"learning_goals"`
	ReviewTopics  []string      `json:"review_topics"`
}

type backendItem struct {
	Topic              string     `json:"topic"`
	Description        string     `json:"description"`
	DurationMinutes    *int       `json:"duration_minutes"`
	Resource           []Resource `json:"resource"`
	IsCompleted        bool       `json:"is_completed"`
	LearningObjectives []string   `json:"learning_objectives"`
	Priority           Priority   `json:"priority"`
}

const (
	defaultFocusArea    = "Day Study"
	defaultTopic        = "Study topic"
	defaultItemDuration = 60
)

// FromStructured decodes a structured plan in either the client layout
// (camelCase) or the structuring agent's snake_case layout. A plan that
// arrives as a JSON-encoded string is unwrapped first.
func FromStructured(raw json.RawMessage) (*StudyPlan, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("structured plan: %w", ErrEmptyPlan)
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode structured plan string: %w", err)
		}
		return FromStructured(json.RawMessage(inner))
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode structured plan: %w", err)
	}
	_, hasGoal := keys["overall_goal"]
	_, hasSchedule := keys["daily_schedule"]
	if !hasGoal && !hasSchedule {
		return Decode(raw)
	}

	var bp backendPlan
	if err := json.Unmarshal(raw, &bp); err != nil {
		return nil, fmt.Errorf("decode backend plan: %w", err)
	}
	return bp.toPlan(), nil
}

func (bp backendPlan) toPlan() *StudyPlan {
	p := &StudyPlan{
		OverallGoal:             bp.OverallGoal,
		TotalStudyDays:          bp.TotalStudyDay,
		HoursPerDay:             bp.HourPerDay,
		KeyConcepts:             make([]CoreConcept, 0, len(bp.CoreConcepts)),
		GeneralTips:             bp.GeneralTip,
		KeyFormulas:             bp.KeyFormulas,
		Prerequisites:           bp.Prerequisites,
		DifficultyLevel:         bp.DifficultyLevel,
		EstimatedCompletionTime: bp.EstimatedCompletionTime,
	}
	if p.TotalStudyDays == 0 {
		p.TotalStudyDays = 1
	}
	if p.HoursPerDay == 0 {
		p.HoursPerDay = 2
	}

	for _, c := range bp.CoreConcepts {
		p.KeyConcepts = append(p.KeyConcepts, CoreConcept{Concept: c.Name, Explanation: c.Explanation})
	}

	if bp.DailySchedule != nil {
		p.DailyBreakdown = make([]DailySchedule, 0, len(bp.DailySchedule))
	}
	for i, d := range bp.DailySchedule {
		day := DailySchedule{
			Day:           d.Day,
			DaySummary:    d.Summary,
			FocusArea:     firstNonEmpty(d.FocusArea, defaultFocusArea),
			LearningGoals: d.LearningGoals,
			ReviewTopics:  d.ReviewTopics,
			Items:         make([]StudyItem, 0, len(d.StudyItem)),
		}
		if day.Day == 0 {
			day.Day = i + 1
		}
		for _, it := range d.StudyItem {
			day.Items = append(day.Items, it.toItem())
		}
		p.DailyBreakdown = append(p.DailyBreakdown, day)
	}
	return p
}

func (it backendItem) toItem() StudyItem {
	minutes := defaultItemDuration
	if it.DurationMinutes != nil {
		minutes = *it.DurationMinutes
	}
	prio := it.Priority
	if prio == "" {
		prio = PriorityMedium
	}
	return StudyItem{
		Topic:              firstNonEmpty(it.Topic, defaultTopic),
		Details:            it.Description,
		DurationMinutes:    minutes,
		EstimatedTimeHours: float64(minutes) / 60,
		Resources:          it.Resource,
		LearningObjectives: it.LearningObjectives,
		Priority:           prio,
		IsCompleted:        it.IsCompleted,
	}
}
