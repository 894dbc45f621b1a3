// Package tasktree projects a study plan into a two-level checklist of
// days and their topics, and maps checklist ids back to navigation targets.
package tasktree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/intellistudy/internal/plan"
)

// Kind is the role of a node in the tree.
type Kind int

const (
	KindDay Kind = iota
	KindTopic
	KindSummary
)

func (k Kind) String() string {
	switch k {
	case KindDay:
		return "day"
	case KindTopic:
		return "topic"
	case KindSummary:
		return "summary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one entry of the checklist. Day nodes carry children and are
// never completed. Leaf nodes carry the study item they stand for.
type Node struct {
	ID         string
	Label      string
	Completed  bool
	Kind       Kind
	DayIndex   int
	TopicIndex int
	FocusArea  string
	Item       *plan.StudyItem
	Children   []Node
}

// IsLeaf reports whether the node is a topic or summary entry.
func (n Node) IsLeaf() bool { return n.Kind != KindDay }

// Target is a navigation position derived from a node id.
type Target struct {
	DayIndex   int
	TopicIndex int
}

// DayID returns the id of the day node with the given label.
func DayID(label int) string { return fmt.Sprintf("day-%d", label) }

// TopicID returns the id of the j-th (1-based) topic of a day.
func TopicID(label, j int) string { return fmt.Sprintf("day-%d-topic-%d", label, j) }

// SummaryID returns the id of a day's synthesized summary.
func SummaryID(label int) string { return fmt.Sprintf("day-%d-summary", label) }

// Project builds the tree for p. A summary leaf is appended to a day when
// it has summary text and none of its items is already named "Summary".
// Item completion flags seed leaf completion.
func Project(p *plan.StudyPlan) []Node {
	if p == nil {
		return []Node{}
	}

	tree := make([]Node, 0, len(p.DailyBreakdown))
	for i := range p.DailyBreakdown {
		day := &p.DailyBreakdown[i]
		label := p.Label(i)

		dayNode := Node{
			ID:        DayID(label),
			Label:     dayLabel(label, day.FocusArea),
			Kind:      KindDay,
			DayIndex:  i,
			FocusArea: day.FocusArea,
			Children:  make([]Node, 0, len(day.Items)+1),
		}

		for j := range day.Items {
			item := &day.Items[j]
			dayNode.Children = append(dayNode.Children, Node{
				ID:         TopicID(label, j+1),
				Label:      item.Topic,
				Completed:  item.IsCompleted,
				Kind:       KindTopic,
				DayIndex:   i,
				TopicIndex: j,
				FocusArea:  day.FocusArea,
				Item:       item,
			})
		}

		if summary, ok := day.SummaryItem(); ok {
			dayNode.Children = append(dayNode.Children, Node{
				ID:         SummaryID(label),
				Label:      plan.SummaryTopic,
				Kind:       KindSummary,
				DayIndex:   i,
				TopicIndex: len(day.Items),
				FocusArea:  day.FocusArea,
				Item:       &summary,
			})
		}

		tree = append(tree, dayNode)
	}
	return tree
}

func dayLabel(label int, focus string) string {
	if focus == "" {
		return fmt.Sprintf("Day %d", label)
	}
	return fmt.Sprintf("Day %d: %s", label, focus)
}

// Toggle returns a copy of tree with the completion of the leaf matching
// id flipped. An unknown id or a day id yields an equal copy. tree is not
// modified.
func Toggle(tree []Node, id string) []Node {
	out := make([]Node, len(tree))
	for i, n := range tree {
		if n.ID == id && n.IsLeaf() {
			n.Completed = !n.Completed
		}
		if n.Children != nil {
			n.Children = Toggle(n.Children, id)
		}
		out[i] = n
	}
	return out
}

// Find returns the node with the given id.
func Find(tree []Node, id string) (Node, bool) {
	for _, n := range tree {
		if n.ID == id {
			return n, true
		}
		if found, ok := Find(n.Children, id); ok {
			return found, true
		}
	}
	return Node{}, false
}

// Flatten lists nodes in display order: each day followed by its leaves.
func Flatten(tree []Node) []Node {
	var out []Node
	for _, n := range tree {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}

// ApplyCompletion returns a copy of tree with leaf completion taken from
// done. Leaves absent from done keep their current state.
func ApplyCompletion(tree []Node, done map[string]bool) []Node {
	out := make([]Node, len(tree))
	for i, n := range tree {
		if v, ok := done[n.ID]; ok && n.IsLeaf() {
			n.Completed = v
		}
		if n.Children != nil {
			n.Children = ApplyCompletion(n.Children, done)
		}
		out[i] = n
	}
	return out
}

// Completed returns the completion state of every leaf keyed by id.
func Completed(tree []Node) map[string]bool {
	out := make(map[string]bool)
	for _, n := range Flatten(tree) {
		if n.IsLeaf() {
			out[n.ID] = n.Completed
		}
	}
	return out
}

// Progress counts completed leaves and all leaves.
func Progress(tree []Node) (done, total int) {
	for _, n := range Flatten(tree) {
		if !n.IsLeaf() {
			continue
		}
		total++
		if n.Completed {
			done++
		}
	}
	return done, total
}

// ParseID splits a node id into its day label, kind and 1-based topic
// number. Topic is 0 for day and summary ids.
func ParseID(id string) (label int, kind Kind, topic int, ok bool) {
	rest, found := strings.CutPrefix(id, "day-")
	if !found {
		return 0, 0, 0, false
	}

	parts := strings.Split(rest, "-")
	label, err := strconv.Atoi(parts[0])
	if err != nil || label < 1 {
		return 0, 0, 0, false
	}

	switch {
	case len(parts) == 1:
		return label, KindDay, 0, true
	case len(parts) == 2 && parts[1] == "summary":
		return label, KindSummary, 0, true
	case len(parts) == 3 && parts[1] == "topic":
		t, err := strconv.Atoi(parts[2])
		if err != nil || t < 1 {
			return 0, 0, 0, false
		}
		return label, KindTopic, t, true
	}
	return 0, 0, 0, false
}

// ResolveSelection maps a node id to a navigation target:
//
//	day-{d}           -> (d-1, 0)
//	day-{d}-topic-{t} -> (d-1, t-1)
//	day-{d}-summary   -> (d-1, len(items))
//
// Malformed ids report false. When p has a day whose label is d but sits
// at another index, that index is used instead of d-1. The item count of
// a summary target is taken from p; without p it is 0.
func ResolveSelection(p *plan.StudyPlan, id string) (Target, bool) {
	label, kind, topic, ok := ParseID(id)
	if !ok {
		return Target{}, false
	}

	t := Target{DayIndex: label - 1}
	if i, found := p.DayIndexByLabel(label); found {
		t.DayIndex = i
	}
	switch kind {
	case KindTopic:
		t.TopicIndex = topic - 1
	case KindSummary:
		if p != nil && t.DayIndex < len(p.DailyBreakdown) {
			t.TopicIndex = len(p.DailyBreakdown[t.DayIndex].Items)
		}
	}
	return t, true
}

// Resolver binds ResolveSelection to a plan.
type Resolver struct {
	plan *plan.StudyPlan
}

// NewResolver returns a Resolver for p.
func NewResolver(p *plan.StudyPlan) *Resolver {
	return &Resolver{plan: p}
}

// Resolve maps id to a navigation target.
func (r *Resolver) Resolve(id string) (Target, bool) {
	return ResolveSelection(r.plan, id)
}
