package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/adapter"
	"github.com/bluelilygithub/curam-ai-gateway/pkg/config"
)

// Classifier produces a TaskAnalysis for a task description. The primary
// path asks a text model to classify; any failure there falls back to a
// deterministic local heuristic, so Classify never fails outward.
type Classifier struct {
	adapters map[string]adapter.Adapter
	cfg      config.ClassifierConfig
	debug    bool
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithDebug enables debug logging.
func WithDebug(debug bool) ClassifierOption {
	return func(c *Classifier) {
		c.debug = debug
	}
}

// NewClassifier creates a classifier backed by the given adapters.
func NewClassifier(adapters map[string]adapter.Adapter, cfg config.ClassifierConfig, opts ...ClassifierOption) *Classifier {
	c := &Classifier{adapters: adapters, cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify analyzes a task description. It always returns a complete
// TaskAnalysis; the Source field records which path produced it.
func (c *Classifier) Classify(ctx context.Context, taskText string) *TaskAnalysis {
	analysis, err := c.classifyRemote(ctx, taskText)
	if err == nil {
		return analysis
	}
	if c.debug {
		log.Printf("[classifier] remote classification failed, using heuristic: %v", err)
	}
	return FallbackAnalysis(taskText)
}

func (c *Classifier) classifyRemote(ctx context.Context, taskText string) (*TaskAnalysis, error) {
	adapterName := strings.TrimSpace(c.cfg.Adapter)
	model := strings.TrimSpace(c.cfg.Model)
	if adapterName == "" || model == "" {
		return nil, fmt.Errorf("no classifier model configured")
	}

	adapterImpl, ok := c.adapters[adapterName]
	if !ok || adapterImpl == nil {
		return nil, fmt.Errorf("classifier adapter %q not available", adapterName)
	}

	art, err := adapterImpl.Generate(ctx, model, buildClassifierPrompt(taskText))
	if err != nil {
		return nil, err
	}
	if art == nil || art.Content == "" {
		return nil, fmt.Errorf("classifier returned empty response")
	}

	analysis, err := parseAnalysis(art.Content)
	if err != nil {
		return nil, err
	}

	analysis.Source = SourceClassifier
	return analysis, nil
}

func buildClassifierPrompt(taskText string) string {
	var sb strings.Builder
	sb.WriteString("You are a task classifier. Analyze the task below.\n")
	sb.WriteString("Return ONLY JSON with these fields:\n")
	sb.WriteString(`{"task_type":"simple_question|complex_analysis|creative_writing|technical|classification|other",`)
	sb.WriteString(`"complexity":"low|medium|high",`)
	sb.WriteString(`"requirements":["speed"|"accuracy"|"creativity"|"reasoning"|"classification"],`)
	sb.WriteString(`"estimated_tokens":<int>,`)
	sb.WriteString(`"priority":"speed|quality|balance"}`)
	sb.WriteString("\n\nTask:\n")
	sb.WriteString(taskText)
	return sb.String()
}

// rawAnalysis mirrors the JSON shape the classifier model is asked for.
type rawAnalysis struct {
	TaskType        string   `json:"task_type"`
	Complexity      string   `json:"complexity"`
	Requirements    []string `json:"requirements"`
	EstimatedTokens int      `json:"estimated_tokens"`
	Priority        string   `json:"priority"`
}

func parseAnalysis(content string) (*TaskAnalysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, err
	}

	analysis := &TaskAnalysis{
		TaskType:        TaskType(raw.TaskType),
		Complexity:      Complexity(raw.Complexity),
		EstimatedTokens: raw.EstimatedTokens,
		Priority:        Priority(raw.Priority),
	}
	if !validTaskType(analysis.TaskType) {
		return nil, fmt.Errorf("invalid task_type %q", raw.TaskType)
	}
	if !validComplexity(analysis.Complexity) {
		return nil, fmt.Errorf("invalid complexity %q", raw.Complexity)
	}
	if !validPriority(analysis.Priority) {
		return nil, fmt.Errorf("invalid priority %q", raw.Priority)
	}
	if analysis.EstimatedTokens < 0 {
		return nil, fmt.Errorf("negative estimated_tokens")
	}
	if len(raw.Requirements) == 0 {
		return nil, fmt.Errorf("missing requirements")
	}
	for _, r := range raw.Requirements {
		analysis.Requirements = append(analysis.Requirements, Capability(r))
	}

	return analysis, nil
}

// FallbackAnalysis computes a deterministic TaskAnalysis from the text
// alone. Canonical thresholds: complexity flips at 50 and 200 characters,
// task type at 100. The type and complexity scales are intentionally
// independent, so a 150-character task is medium complexity yet already
// classed as complex_analysis.
func FallbackAnalysis(taskText string) *TaskAnalysis {
	analysis := &TaskAnalysis{
		Complexity: ComplexityLow,
		TaskType:   TaskSimpleQuestion,
		Priority:   PriorityBalance,
		Source:     SourceHeuristic,
	}

	length := len(taskText)
	if length > 200 {
		analysis.Complexity = ComplexityHigh
	} else if length > 50 {
		analysis.Complexity = ComplexityMedium
	}
	if length > 100 {
		analysis.TaskType = TaskComplexAnalysis
	}

	if strings.Contains(taskText, "creative") {
		analysis.Requirements = []Capability{CapCreativity}
	} else {
		analysis.Requirements = []Capability{CapAccuracy}
	}

	analysis.EstimatedTokens = (length + 3) / 4

	return analysis
}
