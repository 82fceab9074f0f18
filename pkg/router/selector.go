package router

import (
	"sort"
)

// ConfigurationError reports an unusable setup, such as an empty catalog.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Scored pairs a catalog descriptor with its score for one analysis.
type Scored struct {
	Model ModelDescriptor `json:"model"`
	Score int             `json:"score"`
}

// Selection is the outcome of scoring a catalog against an analysis.
type Selection struct {
	Model      ModelDescriptor `json:"model"`
	Score      int             `json:"score"`
	Confidence float64         `json:"confidence"`
	Candidates []Scored        `json:"candidates,omitempty"`
}

// confidenceDivisor normalizes the winning score into a confidence value.
// Fixed on purpose: the maximum attainable score varies with the matched
// criteria, and downstream consumers expect the historical scale.
const confidenceDivisor = 10.0

// SelectModel scores every catalog entry against the analysis and returns
// the best one. Pure function: no I/O, catalog never mutated. Ties go to
// the earlier catalog entry, so catalog order is a preference ranking.
func SelectModel(analysis *TaskAnalysis, catalog []ModelDescriptor) (*Selection, error) {
	if analysis == nil {
		return nil, &ConfigurationError{Reason: "nil analysis"}
	}
	if len(catalog) == 0 {
		return nil, &ConfigurationError{Reason: "model catalog is empty"}
	}

	candidates := make([]Scored, 0, len(catalog))
	for _, d := range catalog {
		candidates = append(candidates, Scored{Model: d, Score: scoreModel(analysis, d)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	best := candidates[0]
	return &Selection{
		Model:      best.Model,
		Score:      best.Score,
		Confidence: float64(best.Score) / confidenceDivisor,
		Candidates: candidates,
	}, nil
}

// scoreModel applies the additive criteria. Each matching criterion adds
// points independently; a descriptor may earn several.
func scoreModel(a *TaskAnalysis, d ModelDescriptor) int {
	score := 0

	if a.Complexity == ComplexityLow && d.Has(CapSpeed) {
		score += 3
	}
	if a.Complexity == ComplexityHigh && d.Has(CapReasoning) {
		score += 3
	}

	if a.TaskType == TaskCreativeWriting && d.Has(CapCreativeWriting) {
		score += 2
	}
	if a.TaskType == TaskClassification && d.Has(CapClassification) {
		score += 2
	}
	if a.TaskType == TaskComplexAnalysis && d.Has(CapAnalysis) {
		score += 2
	}

	if a.Priority == PrioritySpeed && d.SpeedTier == SpeedFast {
		score += 1
	}
	if a.Priority == PriorityQuality && d.CostTier == CostMedium {
		score += 1
	}

	return score
}
