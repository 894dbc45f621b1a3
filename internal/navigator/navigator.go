// Package navigator tracks the active day and topic within a study plan.
package navigator

import "github.com/abhisek/intellistudy/internal/plan"

// Navigator holds a (day, topic) index pair over a plan's daily schedule.
// Navigation is bounded by len(DailyBreakdown); TotalStudyDays is only a
// display value. Moves saturate at the bounds and never wrap around.
//
// A Navigator is not safe for concurrent use.
type Navigator struct {
	plan  *plan.StudyPlan
	day   int
	topic int
}

// New returns a navigator positioned at (0, 0) over p. p may be nil.
func New(p *plan.StudyPlan) *Navigator {
	return &Navigator{plan: p}
}

// Reset points the navigator at p. Indices return to (0, 0) when the plan
// reference changes.
func (n *Navigator) Reset(p *plan.StudyPlan) {
	if p == n.plan {
		return
	}
	n.plan = p
	n.day, n.topic = 0, 0
}

// Plan returns the plan being navigated.
func (n *Navigator) Plan() *plan.StudyPlan { return n.plan }

// DayIndex returns the 0-based active day index.
func (n *Navigator) DayIndex() int { return n.day }

// TopicIndex returns the 0-based active topic index. It equals
// len(items) when the day's synthesized summary is selected.
func (n *Navigator) TopicIndex() int { return n.topic }

func (n *Navigator) days() int {
	if n.plan == nil {
		return 0
	}
	return len(n.plan.DailyBreakdown)
}

// CurrentDay returns the active day.
func (n *Navigator) CurrentDay() (*plan.DailySchedule, bool) {
	if n.day < 0 || n.day >= n.days() {
		return nil, false
	}
	return &n.plan.DailyBreakdown[n.day], true
}

// CurrentTopic returns the active study item. When the summary slot is
// selected it returns the day's synthesized summary item.
func (n *Navigator) CurrentTopic() (*plan.StudyItem, bool) {
	day, ok := n.CurrentDay()
	if !ok {
		return nil, false
	}
	if n.topic >= 0 && n.topic < len(day.Items) {
		return &day.Items[n.topic], true
	}
	if n.topic == len(day.Items) {
		if item, ok := day.SummaryItem(); ok {
			return &item, true
		}
	}
	return nil, false
}

// SetDay moves to day i, clamped to the schedule, and resets the topic.
func (n *Navigator) SetDay(i int) {
	days := n.days()
	if days == 0 {
		return
	}
	n.day = clamp(i, 0, days-1)
	n.topic = 0
}

// SetTopic moves to topic i of the current day, clamped to its items.
func (n *Navigator) SetTopic(i int) {
	day, ok := n.CurrentDay()
	if !ok {
		return
	}
	n.topic = clamp(i, 0, max(len(day.Items)-1, 0))
}

// NextDay advances one day, saturating at the last day.
func (n *Navigator) NextDay() {
	if n.days() == 0 || n.day >= n.days()-1 {
		return
	}
	n.SetDay(n.day + 1)
}

// PrevDay goes back one day, saturating at the first day.
func (n *Navigator) PrevDay() {
	if n.days() == 0 || n.day <= 0 {
		return
	}
	n.SetDay(n.day - 1)
}

// NextTopic advances one topic within the day, saturating at the last.
func (n *Navigator) NextTopic() {
	if _, ok := n.CurrentDay(); !ok || n.OnSummary() {
		return
	}
	n.SetTopic(n.topic + 1)
}

// PrevTopic goes back one topic within the day, saturating at the first.
func (n *Navigator) PrevTopic() {
	if _, ok := n.CurrentDay(); !ok {
		return
	}
	n.SetTopic(n.topic - 1)
}

// Select applies a task tree target. The day is clamped first, then the
// topic within it. A topic equal to len(items) selects the summary slot
// when the day has a synthesized summary.
func (n *Navigator) Select(dayIndex, topicIndex int) {
	if n.days() == 0 {
		return
	}
	n.SetDay(dayIndex)
	day, _ := n.CurrentDay()
	if topicIndex == len(day.Items) {
		if _, ok := day.SummaryItem(); ok {
			n.topic = topicIndex
			return
		}
	}
	n.SetTopic(topicIndex)
}

// OnSummary reports whether the synthesized summary slot is selected.
func (n *Navigator) OnSummary() bool {
	day, ok := n.CurrentDay()
	if !ok || n.topic != len(day.Items) {
		return false
	}
	_, ok = day.SummaryItem()
	return ok
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
