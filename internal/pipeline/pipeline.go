// Package pipeline holds the execution engine: ordered operation
// invocations applied to a dataset with per-step failure isolation,
// plus the batch-template facility sharing the same dispatch.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// maxExecutionHistory bounds the reports retained per pipeline.
const maxExecutionHistory = 10

// Step is one operation invocation inside a pipeline. Immutable once
// recorded.
type Step struct {
	ID         string    `json:"step_id"`
	Name       string    `json:"name"`
	Op         OpKind    `json:"operation"`
	Parameters Params    `json:"parameters"`
	CreatedAt  time.Time `json:"timestamp"`
}

// Pipeline is a named, re-runnable sequence of steps with a bounded
// execution-history log.
type Pipeline struct {
	ID           string    `json:"pipeline_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Steps        []*Step   `json:"steps"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
	History      []*Report `json:"execution_history"`
}

// NewPipeline creates an empty pipeline with a fresh identifier.
func NewPipeline(name, description string) *Pipeline {
	now := time.Now()
	return &Pipeline{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		Created:      now,
		LastModified: now,
	}
}

// AddStep appends a step and returns it.
func (p *Pipeline) AddStep(name string, op OpKind, params Params) *Step {
	if params == nil {
		params = Params{}
	}
	step := &Step{
		ID:         uuid.NewString(),
		Name:       name,
		Op:         op,
		Parameters: params,
		CreatedAt:  time.Now(),
	}
	p.Steps = append(p.Steps, step)
	p.LastModified = time.Now()
	return step
}

// RemoveStep deletes the step with the given id.
func (p *Pipeline) RemoveStep(stepID string) bool {
	for i, s := range p.Steps {
		if s.ID == stepID {
			p.Steps = append(p.Steps[:i], p.Steps[i+1:]...)
			p.LastModified = time.Now()
			return true
		}
	}
	return false
}

// ReorderSteps rearranges steps to match the given id order; unknown
// ids are skipped and ids absent from the list drop their steps.
func (p *Pipeline) ReorderSteps(stepIDs []string) {
	byID := make(map[string]*Step, len(p.Steps))
	for _, s := range p.Steps {
		byID[s.ID] = s
	}
	next := make([]*Step, 0, len(stepIDs))
	for _, id := range stepIDs {
		if s, ok := byID[id]; ok {
			next = append(next, s)
		}
	}
	p.Steps = next
	p.LastModified = time.Now()
}

// StepLog is the recorded outcome of one executed step.
type StepLog struct {
	Step      string `json:"step"`
	Operation OpKind `json:"operation"`
	Result    string `json:"result"`
	Status    string `json:"status"` // success | error
}

// StepError is one entry of a report's aggregate error list.
type StepError struct {
	Step      string `json:"step"`
	Operation OpKind `json:"operation"`
	Error     string `json:"error"`
}

// Shape is a dataset's row and column count.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Report describes one pipeline run.
type Report struct {
	PipelineID      string      `json:"pipeline_id"`
	PipelineName    string      `json:"pipeline_name"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	DurationSeconds float64     `json:"duration_seconds"`
	TotalSteps      int         `json:"total_steps"`
	SuccessfulSteps int         `json:"successful_steps"`
	FailedSteps     int         `json:"failed_steps"`
	Log             []StepLog   `json:"execution_log"`
	Errors          []StepError `json:"errors"`
	InputShape      Shape       `json:"input_shape"`
	OutputShape     Shape       `json:"output_shape"`
}

// Execute runs the steps strictly in sequence. A failing step records
// its error and execution continues with the dataset from before that
// step; the run as a whole never fails. The report is appended to the
// pipeline's bounded execution history.
func (p *Pipeline) Execute(ds *dataset.Dataset) (*dataset.Dataset, *Report) {
	rep := &Report{
		PipelineID:   p.ID,
		PipelineName: p.Name,
		StartTime:    time.Now(),
		TotalSteps:   len(p.Steps),
		InputShape:   Shape{Rows: ds.Rows(), Cols: ds.Cols()},
	}

	result := ds
	for _, step := range p.Steps {
		next, summary, err := ApplyOp(result, step.Op, step.Parameters)
		if err != nil {
			rep.Errors = append(rep.Errors, StepError{Step: step.Name, Operation: step.Op, Error: err.Error()})
			rep.Log = append(rep.Log, StepLog{Step: step.Name, Operation: step.Op, Result: "Error: " + err.Error(), Status: "error"})
			continue
		}
		result = next
		rep.Log = append(rep.Log, StepLog{Step: step.Name, Operation: step.Op, Result: summary, Status: "success"})
	}

	rep.EndTime = time.Now()
	rep.DurationSeconds = rep.EndTime.Sub(rep.StartTime).Seconds()
	rep.FailedSteps = len(rep.Errors)
	rep.SuccessfulSteps = rep.TotalSteps - rep.FailedSteps
	rep.OutputShape = Shape{Rows: result.Rows(), Cols: result.Cols()}

	p.History = append(p.History, rep)
	if len(p.History) > maxExecutionHistory {
		p.History = p.History[len(p.History)-maxExecutionHistory:]
	}
	return result, rep
}
