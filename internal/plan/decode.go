package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// UnmarshalJSON accepts a resource either as an object or as a bare string.
// A bare string becomes the title, and also the URL when it is an absolute
// http(s) link.
func (r *Resource) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode resource string: %w", err)
		}
		*r = Resource{Title: s}
		if isHTTPURL(s) {
			r.URL = s
		}
		return nil
	}

	type rawResource Resource
	var raw rawResource
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode resource: %w", err)
	}
	*r = Resource(raw)
	if r.Title == "" && r.URL != "" {
		r.Title = r.URL
	}
	return nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// legacyFormula lists every key a formula has been sent under.
type legacyFormula struct {
	FormulaName  string            `json:"formula_name"`
	Name         string            `json:"name"`
	Formula      string            `json:"formula"`
	Description  string            `json:"description"`
	UsageContext string            `json:"usage_context"`
	Variables    map[string]string `json:"variables"`
	Examples     []string          `json:"examples"`
}

// UnmarshalJSON folds the formula layouts seen upstream into KeyFormula.
//
// The name comes from formula_name, then name, then DefaultFormulaName.
// The equation is formula, or description when formula is absent. The
// description is usage_context, or description when it was not already
// used as the equation.
func (f *KeyFormula) UnmarshalJSON(data []byte) error {
	var raw legacyFormula
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode formula: %w", err)
	}
	*f = raw.normalize()
	return nil
}

func (raw legacyFormula) normalize() KeyFormula {
	f := KeyFormula{
		Name:      firstNonEmpty(raw.FormulaName, raw.Name, DefaultFormulaName),
		Variables: raw.Variables,
		Examples:  raw.Examples,
	}

	descUsed := false
	if strings.TrimSpace(raw.Formula) != "" {
		f.Equation = raw.Formula
	} else if raw.Description != "" {
		f.Equation = raw.Description
		descUsed = true
	}

	switch {
	case raw.UsageContext != "":
		f.Description = raw.UsageContext
	case !descUsed:
		f.Description = raw.Description
	}
	return f
}

// UnmarshalJSON drops unknown priority values instead of failing the plan.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*p = ""
		return nil
	}
	switch v := Priority(strings.ToLower(strings.TrimSpace(s))); v {
	case PriorityLow, PriorityMedium, PriorityHigh:
		*p = v
	default:
		*p = ""
	}
	return nil
}

// Decode parses a camelCase plan document.
func Decode(data []byte) (*StudyPlan, error) {
	var p StudyPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode study plan: %w", err)
	}
	return &p, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
