package tasktree

import (
	"reflect"
	"testing"

	"github.com/abhisek/intellistudy/internal/navigator"
	"github.com/abhisek/intellistudy/internal/plan"
)

func leaves(n Node) []string {
	var out []string
	for _, c := range n.Children {
		out = append(out, c.Label)
	}
	return out
}

func TestSummaryDedup(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{{
		Day:        1,
		DaySummary: "wrap up",
		Items:      []plan.StudyItem{{Topic: "Intro"}, {Topic: "Summary"}},
	}}}

	tree := Project(p)
	if len(tree) != 1 {
		t.Fatalf("days = %d, want 1", len(tree))
	}
	if got := leaves(tree[0]); !reflect.DeepEqual(got, []string{"Intro", "Summary"}) {
		t.Errorf("leaves = %v", got)
	}
	if tree[0].Children[1].Kind != KindTopic {
		t.Error("embedded summary should stay a regular topic")
	}
}

func TestSummarySynthesis(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{{
		Day:           1,
		DaySummary:    "wrap up",
		LearningGoals: []string{"recall"},
		Items:         []plan.StudyItem{{Topic: "Intro"}},
	}}}

	tree := Project(p)
	if got := leaves(tree[0]); !reflect.DeepEqual(got, []string{"Intro", "Summary"}) {
		t.Fatalf("leaves = %v", got)
	}

	sum := tree[0].Children[1]
	if sum.ID != "day-1-summary" || sum.Kind != KindSummary {
		t.Errorf("summary node = %+v", sum)
	}
	if !sum.Item.IsSummary || sum.Item.Details != "wrap up" {
		t.Errorf("summary item = %+v", sum.Item)
	}
	if !reflect.DeepEqual(sum.Item.LearningObjectives, []string{"recall"}) {
		t.Errorf("objectives = %v", sum.Item.LearningObjectives)
	}
}

func TestSummaryObjectivesDefaultEmpty(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{{DaySummary: "wrap up"}}}
	sum := Project(p)[0].Children[0]
	if sum.Item.LearningObjectives == nil || len(sum.Item.LearningObjectives) != 0 {
		t.Errorf("objectives = %#v, want empty slice", sum.Item.LearningObjectives)
	}
}

func TestProjectIDs(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{
		{Day: 1, FocusArea: "Basics", Items: []plan.StudyItem{{Topic: "A"}, {Topic: "B", IsCompleted: true}}},
		{Items: []plan.StudyItem{{Topic: "C"}}}, // no day number: label falls back to index+1
		{Day: 5, DaySummary: "s"},
	}}

	var ids []string
	for _, n := range Flatten(Project(p)) {
		ids = append(ids, n.ID)
	}
	want := []string{
		"day-1", "day-1-topic-1", "day-1-topic-2",
		"day-2", "day-2-topic-1",
		"day-5", "day-5-summary",
	}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v\nwant  %v", ids, want)
	}

	tree := Project(p)
	if tree[0].Label != "Day 1: Basics" || tree[1].Label != "Day 2" {
		t.Errorf("day labels = %q, %q", tree[0].Label, tree[1].Label)
	}
	if !tree[0].Children[1].Completed {
		t.Error("item completion should seed the leaf")
	}
	if tree[0].Completed {
		t.Error("day nodes are never completed")
	}
}

func TestToggleDoesNotMutate(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{
		{Day: 1, Items: []plan.StudyItem{{Topic: "A"}, {Topic: "B"}}},
	}}
	orig := Project(p)

	toggled := Toggle(orig, "day-1-topic-2")
	if orig[0].Children[1].Completed {
		t.Error("input tree was mutated")
	}
	if !toggled[0].Children[1].Completed {
		t.Error("leaf not toggled")
	}
	if toggled[0].Children[0].Completed {
		t.Error("unrelated leaf toggled")
	}

	back := Toggle(toggled, "day-1-topic-2")
	if back[0].Children[1].Completed {
		t.Error("second toggle should clear completion")
	}

	if same := Toggle(orig, "day-9-topic-1"); !reflect.DeepEqual(same, orig) {
		t.Error("unknown id should produce an equal tree")
	}
	if same := Toggle(orig, "day-1"); same[0].Completed {
		t.Error("day nodes cannot be completed")
	}
}

func TestResolveSelection(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{
		{Day: 1, Items: []plan.StudyItem{{Topic: "A"}}},
		{Day: 2, DaySummary: "s", Items: []plan.StudyItem{{Topic: "B"}, {Topic: "C"}}},
	}}

	tests := []struct {
		id     string
		want   Target
		wantOK bool
	}{
		{"day-1", Target{0, 0}, true},
		{"day-2-topic-1", Target{1, 0}, true},
		{"day-2-topic-2", Target{1, 1}, true},
		{"day-2-summary", Target{1, 2}, true},
		{"day-", Target{}, false},
		{"day-x", Target{}, false},
		{"day-0", Target{}, false},
		{"day-1-topic-0", Target{}, false},
		{"day-1-topic", Target{}, false},
		{"day-1-lesson-1", Target{}, false},
		{"week-1", Target{}, false},
		{"", Target{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := NewResolver(p).Resolve(tt.id)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Resolve(%q) = %+v, %v; want %+v, %v", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestResolveNonContiguousLabels(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{
		{Day: 3, Items: []plan.StudyItem{{Topic: "A"}}},
	}}
	got, ok := ResolveSelection(p, "day-3-topic-1")
	if !ok || got != (Target{0, 0}) {
		t.Errorf("got %+v, %v", got, ok)
	}
}

func TestSelectionDrivesNavigator(t *testing.T) {
	p := &plan.StudyPlan{
		OverallGoal:    "goal",
		TotalStudyDays: 2,
		DailyBreakdown: []plan.DailySchedule{
			{Day: 1, Items: []plan.StudyItem{{Topic: "A", Details: "..."}}},
			{Day: 2, Items: []plan.StudyItem{{Topic: "B", Details: "..."}}},
		},
	}
	nav := navigator.New(p)

	target, ok := NewResolver(p).Resolve("day-2-topic-1")
	if !ok {
		t.Fatal("resolve failed")
	}
	nav.Select(target.DayIndex, target.TopicIndex)

	if nav.DayIndex() != 1 || nav.TopicIndex() != 0 {
		t.Errorf("position = (%d,%d), want (1,0)", nav.DayIndex(), nav.TopicIndex())
	}
	topic, ok := nav.CurrentTopic()
	if !ok || topic.Topic != "B" {
		t.Errorf("CurrentTopic = %+v, %v", topic, ok)
	}
}

func TestCompletionHelpers(t *testing.T) {
	p := &plan.StudyPlan{DailyBreakdown: []plan.DailySchedule{
		{Day: 1, DaySummary: "s", Items: []plan.StudyItem{{Topic: "A"}, {Topic: "B"}}},
	}}
	tree := ApplyCompletion(Project(p), map[string]bool{
		"day-1-topic-1": true,
		"day-1-summary": true,
		"day-1":         true,
		"day-7-topic-1": true,
	})

	done, total := Progress(tree)
	if done != 2 || total != 3 {
		t.Errorf("Progress = %d/%d, want 2/3", done, total)
	}
	if tree[0].Completed {
		t.Error("day node should ignore completion")
	}

	want := map[string]bool{"day-1-topic-1": true, "day-1-topic-2": false, "day-1-summary": true}
	if got := Completed(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("Completed = %v", got)
	}

	if n, ok := Find(tree, "day-1-topic-2"); !ok || n.Label != "B" {
		t.Errorf("Find = %+v, %v", n, ok)
	}
}

func TestProjectNil(t *testing.T) {
	if got := Project(nil); len(got) != 0 {
		t.Errorf("Project(nil) = %v", got)
	}
}
