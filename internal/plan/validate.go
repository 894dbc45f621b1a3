package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	// ErrEmptyPlan is returned when a plan document is missing entirely.
	ErrEmptyPlan = errors.New("plan is empty")

	// ErrMissingField is returned when a required plan field is absent.
	ErrMissingField = errors.New("required field missing")
)

// Validate checks the fields a structured plan must carry to be usable.
func Validate(p *StudyPlan) error {
	if p == nil {
		return ErrEmptyPlan
	}
	if p.OverallGoal == "" {
		return fmt.Errorf("overallGoal: %w", ErrMissingField)
	}
	if p.DailyBreakdown == nil {
		return fmt.Errorf("dailyBreakdown: %w", ErrMissingField)
	}
	return nil
}

// SchemaDefinition is the JSON Schema of the client plan layout.
func SchemaDefinition() map[string]any {
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}

	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":              str,
			"details":            str,
			"durationMinutes":    map[string]any{"type": "number", "minimum": 0},
			"learningObjectives": strList,
			"isCompleted":        map[string]any{"type": "boolean"},
			"resources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"anyOf": []any{
						str,
						map[string]any{"type": "object", "properties": map[string]any{"title": str}},
					},
				},
			},
		},
		"required": []any{"topic"},
	}

	day := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"day":           map[string]any{"type": "integer"},
			"daySummary":    str,
			"focusArea":     str,
			"learningGoals": strList,
			"items":         map[string]any{"type": []any{"array", "null"}, "items": item},
		},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overallGoal":    map[string]any{"type": "string", "minLength": 1},
			"totalStudyDays": map[string]any{"type": "integer", "minimum": 0},
			"hoursPerDay":    map[string]any{"type": "number", "minimum": 0},
			"keyConcepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"concept": str, "explanation": str},
				},
			},
			"dailyBreakdown": map[string]any{"type": "array", "items": day},
			"keyFormulas":    map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			"generalTips":    strList,
		},
		"required": []any{"overallGoal", "dailyBreakdown"},
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

const schemaURL = "schema://study-plan.json"

func planSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		defBytes, err := json.Marshal(SchemaDefinition())
		if err != nil {
			compileErr = fmt.Errorf("marshal plan schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse plan schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add plan schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// ValidateDocument checks a client-layout plan document against the plan
// schema before it is decoded.
func ValidateDocument(raw []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid plan JSON: %w", err)
	}
	if doc == nil {
		return ErrEmptyPlan
	}
	sch, err := planSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("plan does not match schema: %w", err)
	}
	return nil
}
