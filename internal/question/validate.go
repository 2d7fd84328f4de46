package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// datasetSchema is the structural shape of a dataset file.
var datasetSchema = map[string]any{
	"type": "object",
	"additionalProperties": map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":       map[string]any{"type": "string", "minLength": 1},
				"question": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 2,
				},
				"optionMeanings": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"answer":      map[string]any{"type": "string"},
				"explanation": map[string]any{"type": "string"},
				"translation": map[string]any{"type": "string"},
				"source":      map[string]any{"type": "string"},
			},
			"required": []any{"id", "question", "options", "answer"},
		},
	},
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		// The compiler wants a JSON-decoded value, so round-trip the literal.
		defBytes, err := json.Marshal(datasetSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://eiken-dataset.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(url)
	})
	return compiledSchema, compileErr
}

// validateShape checks a decoded JSON document against the dataset schema.
func validateShape(doc any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile dataset schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("dataset schema validation failed: %w", err)
	}
	return nil
}

// validateCatalog performs the semantic checks the schema cannot express.
// Returns a combined error describing all problems found, or nil if valid.
func validateCatalog(byGrade map[string][]Question) error {
	var errs []string

	grades := make([]string, 0, len(byGrade))
	for g := range byGrade {
		grades = append(grades, g)
	}
	slices.Sort(grades)

	for _, grade := range grades {
		if grade == ReviewGrade {
			errs = append(errs, fmt.Sprintf("grade %q is reserved", grade))
		}
		seen := make(map[string]bool, len(byGrade[grade]))
		for i, q := range byGrade[grade] {
			prefix := fmt.Sprintf("grade %q question %d", grade, i)
			if q.ID == "" {
				errs = append(errs, prefix+": empty id")
				continue
			}
			prefix = fmt.Sprintf("grade %q question %q", grade, q.ID)
			if id := CanonicalID(q.ID); seen[id] {
				errs = append(errs, fmt.Sprintf("%s: duplicate id", prefix))
			} else {
				seen[id] = true
			}

			if len(q.Options) < 2 {
				errs = append(errs, fmt.Sprintf("%s: needs at least 2 options, got %d", prefix, len(q.Options)))
			}
			if !slices.Contains(q.Options, q.Answer) {
				errs = append(errs, fmt.Sprintf("%s: answer %q is not one of the options", prefix, q.Answer))
			}
			if len(q.OptionMeanings) > 0 && len(q.OptionMeanings) != len(q.Options) {
				errs = append(errs, fmt.Sprintf("%s: %d option meanings for %d options", prefix, len(q.OptionMeanings), len(q.Options)))
			}
			if dup := firstDuplicate(q.Options); dup != "" {
				errs = append(errs, fmt.Sprintf("%s: duplicate option %q", prefix, dup))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("question dataset validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func firstDuplicate(items []string) string {
	seen := make(map[string]bool, len(items))
	for _, s := range items {
		if seen[s] {
			return s
		}
		seen[s] = true
	}
	return ""
}
