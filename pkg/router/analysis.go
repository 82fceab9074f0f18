package router

// TaskType categorizes what kind of work a task description asks for.
type TaskType string

const (
	TaskSimpleQuestion  TaskType = "simple_question"
	TaskComplexAnalysis TaskType = "complex_analysis"
	TaskCreativeWriting TaskType = "creative_writing"
	TaskTechnical       TaskType = "technical"
	TaskClassification  TaskType = "classification"
	TaskOther           TaskType = "other"
)

// Complexity grades how demanding a task is.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Priority expresses what the caller wants optimized for.
type Priority string

const (
	PrioritySpeed   Priority = "speed"
	PriorityQuality Priority = "quality"
	PriorityBalance Priority = "balance"
)

// Capability tags a requirement of a task or a characteristic of a model.
// The two sides share one vocabulary so the selector can match them.
type Capability string

const (
	CapSpeed           Capability = "speed"
	CapAccuracy        Capability = "accuracy"
	CapCreativity      Capability = "creativity"
	CapReasoning       Capability = "reasoning"
	CapClassification  Capability = "classification"
	CapCreativeWriting Capability = "creative_writing"
	CapAnalysis        Capability = "analysis"
)

// AnalysisSource records which path produced a TaskAnalysis.
type AnalysisSource string

const (
	SourceClassifier AnalysisSource = "classifier"
	SourceHeuristic  AnalysisSource = "heuristic"
)

// TaskAnalysis is the structured classification of a task description.
// Constructed once per request and never mutated afterwards.
type TaskAnalysis struct {
	TaskType        TaskType       `json:"task_type"`
	Complexity      Complexity     `json:"complexity"`
	Requirements    []Capability   `json:"requirements"`
	EstimatedTokens int            `json:"estimated_tokens"`
	Priority        Priority       `json:"priority"`
	Source          AnalysisSource `json:"source"`
}

// Requires reports whether the analysis carries the given capability tag.
func (a *TaskAnalysis) Requires(c Capability) bool {
	for _, r := range a.Requirements {
		if r == c {
			return true
		}
	}
	return false
}

func validTaskType(t TaskType) bool {
	switch t {
	case TaskSimpleQuestion, TaskComplexAnalysis, TaskCreativeWriting,
		TaskTechnical, TaskClassification, TaskOther:
		return true
	}
	return false
}

func validComplexity(c Complexity) bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

func validPriority(p Priority) bool {
	switch p {
	case PrioritySpeed, PriorityQuality, PriorityBalance:
		return true
	}
	return false
}
