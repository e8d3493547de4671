package pipeline

import (
	"fmt"
	"sort"
	"time"
)

// Manager owns a set of pipelines for one session.
type Manager struct {
	pipelines map[string]*Pipeline
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{pipelines: map[string]*Pipeline{}}
}

// Create registers a new empty pipeline.
func (m *Manager) Create(name, description string) *Pipeline {
	p := NewPipeline(name, description)
	m.pipelines[p.ID] = p
	return p
}

// Add registers an existing pipeline (e.g. one loaded from disk).
func (m *Manager) Add(p *Pipeline) { m.pipelines[p.ID] = p }

// Get returns a pipeline by id.
func (m *Manager) Get(id string) (*Pipeline, bool) {
	p, ok := m.pipelines[id]
	return p, ok
}

// Delete removes a pipeline.
func (m *Manager) Delete(id string) bool {
	if _, ok := m.pipelines[id]; !ok {
		return false
	}
	delete(m.pipelines, id)
	return true
}

// Summary is a pipeline listing entry.
type Summary struct {
	ID           string    `json:"pipeline_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	StepCount    int       `json:"steps_count"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

// List summarizes all pipelines, ordered by creation time then name.
func (m *Manager) List() []Summary {
	out := make([]Summary, 0, len(m.pipelines))
	for _, p := range m.pipelines {
		out = append(out, Summary{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			StepCount:    len(p.Steps),
			Created:      p.Created,
			LastModified: p.LastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Duplicate deep-copies a pipeline's steps under a fresh identifier.
// Execution history does not carry over.
func (m *Manager) Duplicate(id, newName string) (*Pipeline, error) {
	original, ok := m.pipelines[id]
	if !ok {
		return nil, fmt.Errorf("pipeline %q not found", id)
	}
	dup := m.Create(newName, original.Description)
	for _, step := range original.Steps {
		params := make(Params, len(step.Parameters))
		for k, v := range step.Parameters {
			params[k] = v
		}
		dup.AddStep(step.Name, step.Op, params)
	}
	return dup, nil
}

// Predefined returns the stock pipelines for common tasks, registered
// with the manager.
func (m *Manager) Predefined() map[string]*Pipeline {
	out := map[string]*Pipeline{}

	basic := m.Create("Basic Data Cleaning", "Standard cleaning workflow for most datasets")
	basic.AddStep("Remove Duplicates", OpRemoveDuplicates, nil)
	basic.AddStep("Auto Clean", OpAutoClean, nil)
	out["basic"] = basic

	mlPrep := m.Create("ML Preparation", "Prepare data for machine learning")
	mlPrep.AddStep("Remove Duplicates", OpRemoveDuplicates, nil)
	mlPrep.AddStep("Detect Anomalies", OpAnomalyDetection, Params{"contamination": 0.1})
	out["ml_prep"] = mlPrep

	advanced := m.Create("Advanced Cleaning", "Comprehensive cleaning with outlier detection")
	advanced.AddStep("Remove Duplicates", OpRemoveDuplicates, nil)
	advanced.AddStep("Auto Clean", OpAutoClean, nil)
	advanced.AddStep("Detect Anomalies", OpAnomalyDetection, Params{"contamination": 0.1})
	out["advanced"] = advanced

	return out
}
