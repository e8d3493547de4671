package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/utils"
)

// TemplateStep is one operation of a pre-authored cleaning recipe.
type TemplateStep struct {
	Op         OpKind    `json:"operation" yaml:"operation"`
	Parameters Params    `json:"parameters" yaml:"parameters,omitempty"`
	CreatedAt  time.Time `json:"timestamp" yaml:"timestamp,omitempty"`
}

// Template is a fixed, reusable cleaning recipe applied across many
// independently loaded datasets.
type Template struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description,omitempty"`
	Steps       []TemplateStep `json:"steps" yaml:"steps"`
	Created     time.Time      `json:"created" yaml:"created,omitempty"`
}

// NewTemplate creates an empty template.
func NewTemplate(name, description string) *Template {
	return &Template{Name: name, Description: description, Created: time.Now()}
}

// AddStep appends an operation to the recipe.
func (t *Template) AddStep(op OpKind, params Params) {
	if params == nil {
		params = Params{}
	}
	t.Steps = append(t.Steps, TemplateStep{Op: op, Parameters: params, CreatedAt: time.Now()})
}

// Apply runs the recipe against one dataset through the same dispatch
// as pipeline execution, so template and pipeline steps cannot
// diverge. Failing steps add an error line to the log and the recipe
// continues with the prior dataset.
func (t *Template) Apply(ds *dataset.Dataset) (*dataset.Dataset, []string) {
	result := ds
	var log []string
	for _, step := range t.Steps {
		next, summary, err := ApplyOp(result, step.Op, step.Parameters)
		if err != nil {
			log = append(log, fmt.Sprintf("Error in %s: %v", step.Op, err))
			continue
		}
		result = next
		log = append(log, summary)
	}
	return result, log
}

// SaveTemplate writes a recipe as YAML.
func SaveTemplate(t *Template, path string) error {
	b, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal template %q: %w", t.Name, err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("save template %q: %w", t.Name, err)
	}
	return nil
}

// LoadTemplate reads a YAML recipe.
func LoadTemplate(path string) (*Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	var t Template
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if t.Name == "" {
		return nil, fmt.Errorf("parse template: missing name")
	}
	return &t, nil
}

// PredefinedTemplates returns the stock cleaning recipes.
func PredefinedTemplates() map[string]*Template {
	out := map[string]*Template{}

	basic := NewTemplate("Basic Cleaning", "Remove duplicates, drop high missing columns, strip whitespace")
	basic.AddStep(OpRemoveDuplicates, nil)
	basic.AddStep(OpDropHighMissing, Params{"threshold": 0.8})
	basic.AddStep(OpCleanText, nil)
	out["basic"] = basic

	standard := NewTemplate("Standard Cleaning", "Comprehensive cleaning with imputation")
	standard.AddStep(OpRemoveDuplicates, nil)
	standard.AddStep(OpDropHighMissing, Params{"threshold": 0.95})
	standard.AddStep(OpCleanText, nil)
	standard.AddStep(OpAutoClean, nil)
	out["standard"] = standard

	text := NewTemplate("Text Cleaning", "Clean and standardize text columns")
	text.AddStep(OpCleanText, Params{"lowercase": true})
	text.AddStep(OpRemoveDuplicates, nil)
	out["text"] = text

	numeric := NewTemplate("Numeric Cleaning", "Handle missing values and outliers in numeric data")
	numeric.AddStep(OpDropHighMissing, Params{"threshold": 0.5})
	numeric.AddStep(OpFillNA, Params{"value": "0"})
	out["numeric"] = numeric

	return out
}
