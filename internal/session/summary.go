package session

import "github.com/abhisek/intellistudy/internal/tasktree"

// DayProgress is the completion of one scheduled day.
type DayProgress struct {
	ID        string
	Label     string
	Done      int
	Total     int
	Completed bool
}

// Summary holds the progress figures shown in the study header and by
// the show command.
type Summary struct {
	Goal     string
	Days     int
	Done     int
	Total    int
	Fraction float64
	PerDay   []DayProgress
}

// Summary builds the progress summary of the loaded plan.
func (s *Session) Summary() *Summary {
	sum := BuildSummary(s.tree)
	if s.plan != nil {
		sum.Goal = s.plan.OverallGoal
	}
	return sum
}

// BuildSummary computes per-day and overall completion from a task tree.
func BuildSummary(tree []tasktree.Node) *Summary {
	sum := &Summary{Days: len(tree)}
	for _, day := range tree {
		done, total := tasktree.Progress(day.Children)
		sum.PerDay = append(sum.PerDay, DayProgress{
			ID:        day.ID,
			Label:     day.Label,
			Done:      done,
			Total:     total,
			Completed: total > 0 && done == total,
		})
		sum.Done += done
		sum.Total += total
	}
	if sum.Total > 0 {
		sum.Fraction = float64(sum.Done) / float64(sum.Total)
	}
	return sum
}
