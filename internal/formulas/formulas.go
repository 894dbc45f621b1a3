// Package formulas turns a plan's key formulas and core concepts into one
// uniform display list.
package formulas

import (
	"fmt"

	"github.com/abhisek/intellistudy/internal/plan"
)

// DefaultConceptName is used for a concept without a name.
const DefaultConceptName = "Concept"

// Item is one display entry: a formula or a key concept.
type Item struct {
	ID           string
	Name         string
	Equation     string
	Description  string
	Variables    map[string]string
	Examples     []string
	IsKeyConcept bool
}

// Project lists formulas first, then concepts, each group in source order.
// A plan without formulas or concepts yields an empty slice.
func Project(p *plan.StudyPlan) []Item {
	if p == nil {
		return []Item{}
	}

	items := make([]Item, 0, len(p.KeyFormulas)+len(p.KeyConcepts))
	for i, f := range p.KeyFormulas {
		name := f.Name
		if name == "" {
			name = plan.DefaultFormulaName
		}
		items = append(items, Item{
			ID:          fmt.Sprintf("formula-%d", i),
			Name:        name,
			Equation:    f.Equation,
			Description: f.Description,
			Variables:   f.Variables,
			Examples:    f.Examples,
		})
	}
	for i, c := range p.KeyConcepts {
		name := c.Concept
		if name == "" {
			name = DefaultConceptName
		}
		items = append(items, Item{
			ID:           fmt.Sprintf("concept-%d", i),
			Name:         name,
			Description:  c.Explanation,
			IsKeyConcept: true,
		})
	}
	return items
}

// Split returns the formulas and the concepts of items.
func Split(items []Item) (formulas, concepts []Item) {
	for _, it := range items {
		if it.IsKeyConcept {
			concepts = append(concepts, it)
		} else {
			formulas = append(formulas, it)
		}
	}
	return formulas, concepts
}
