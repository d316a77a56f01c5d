package probe

// Step names a section of a probe run.
type Step string

const (
	StepCount      Step = "count"
	StepData       Step = "data"
	StepFallback   Step = "fallback"
	StepReferences Step = "references"
)

type CountResult struct {
	Total int
	// Known is false when the count query failed or the server did not
	// report a total.
	Known bool
	Err   error
}

type DataResult struct {
	Records []map[string]any
	Err     error
}

// Empty reports whether the query succeeded without returning rows.
func (d *DataResult) Empty() bool {
	return d.Err == nil && len(d.Records) == 0
}

type ReferenceResult struct {
	Checked []string
	Found   []string
	Missing []string
	Err     error
}

// Report collects the outcome of every attempted step.
type Report struct {
	Count CountResult
	Data  DataResult
	// Fallback is nil when the data probe returned rows.
	Fallback *DataResult
	// References is nil unless the reference probe ran.
	References *ReferenceResult

	Warnings []string
}

// Steps returns the attempted steps in order.
func (r *Report) Steps() []Step {
	steps := []Step{StepCount, StepData}
	if r.Fallback != nil {
		steps = append(steps, StepFallback)
	}
	if r.References != nil {
		steps = append(steps, StepReferences)
	}
	return steps
}
