package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Request describes one inference invocation.
type Request struct {
	Model string
	Input string
	// Context is the passage for question-answering tasks; ignored by
	// the other task kinds.
	Context string
	Task    TaskKind
}

// Outcome classifies how one attempt ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeTransient Outcome = "transient"
	OutcomeFatal     Outcome = "fatal"
)

// Attempt records one network call inside an invocation. Kept only for
// the duration of the dispatch and surfaced on the Result.
type Attempt struct {
	Number  int           `json:"number"`
	Outcome Outcome       `json:"outcome"`
	Wait    time.Duration `json:"wait,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Result is the terminal state of one invocation: either Parsed/Raw are
// populated and Err is nil, or Err carries the last observed error.
type Result struct {
	Model    string          `json:"model"`
	Parsed   string          `json:"parsed,omitempty"`
	Raw      json.RawMessage `json:"raw,omitempty"`
	Attempts []Attempt       `json:"attempts,omitempty"`
	Err      error           `json:"-"`
}

// Succeeded reports whether the invocation produced a response.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// ErrorMessage returns the failure text, empty on success.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

const (
	defaultMaxAttempts = 3
	defaultBatchPause  = 2500 * time.Millisecond
)

// Invoker drives the bounded-retry state machine over a Transport.
type Invoker struct {
	transport   Transport
	sleep       SleepFunc
	maxAttempts int
	batchPause  time.Duration
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithMaxAttempts sets the attempt budget per invocation.
func WithMaxAttempts(n int) Option {
	return func(iv *Invoker) {
		if n > 0 {
			iv.maxAttempts = n
		}
	}
}

// WithSleep injects the wait capability.
func WithSleep(fn SleepFunc) Option {
	return func(iv *Invoker) {
		if fn != nil {
			iv.sleep = fn
		}
	}
}

// WithBatchPause sets the pause between sequential batches.
func WithBatchPause(d time.Duration) Option {
	return func(iv *Invoker) {
		if d >= 0 {
			iv.batchPause = d
		}
	}
}

// NewInvoker creates an invoker over the given transport.
func NewInvoker(transport Transport, opts ...Option) *Invoker {
	iv := &Invoker{
		transport:   transport,
		sleep:       sleepWithContext,
		maxAttempts: defaultMaxAttempts,
		batchPause:  defaultBatchPause,
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Invoke runs the request through the retry state machine. Transient
// failures wait their classified backoff and consume an attempt; fatal
// failures stop immediately. The result always carries the attempt log.
func (iv *Invoker) Invoke(ctx context.Context, req Request) Result {
	result := Result{Model: req.Model}

	body, err := buildBody(req)
	if err != nil {
		result.Err = fmt.Errorf("build request for %s: %w", req.Model, err)
		return result
	}

	for attempt := 1; attempt <= iv.maxAttempts; attempt++ {
		raw, err := iv.transport.Query(ctx, req.Model, body)
		if err == nil {
			result.Raw = raw
			result.Parsed = parsePayload(req.Task, raw)
			result.Err = nil
			result.Attempts = append(result.Attempts, Attempt{
				Number:  attempt,
				Outcome: OutcomeSuccess,
			})
			return result
		}

		result.Err = err
		wait, transient := backoffFor(err)
		if !transient {
			result.Attempts = append(result.Attempts, Attempt{
				Number:  attempt,
				Outcome: OutcomeFatal,
				Error:   err.Error(),
			})
			return result
		}

		result.Attempts = append(result.Attempts, Attempt{
			Number:  attempt,
			Outcome: OutcomeTransient,
			Wait:    wait,
			Error:   err.Error(),
		})

		if attempt == iv.maxAttempts {
			break
		}
		if serr := iv.sleep(ctx, wait); serr != nil {
			result.Err = serr
			return result
		}
	}

	return result
}

// buildBody shapes the request payload per task kind.
func buildBody(req Request) ([]byte, error) {
	switch req.Task {
	case TextGeneration:
		return json.Marshal(map[string]any{
			"inputs": req.Input,
			"parameters": map[string]any{
				"max_new_tokens":   250,
				"temperature":      0.7,
				"return_full_text": false,
			},
		})
	case Summarization:
		return json.Marshal(map[string]any{
			"inputs": req.Input,
			"parameters": map[string]any{
				"max_length": 150,
				"min_length": 30,
			},
		})
	case QuestionAnswering:
		return json.Marshal(map[string]any{
			"inputs": map[string]string{
				"question": req.Input,
				"context":  req.Context,
			},
		})
	default:
		return json.Marshal(map[string]any{"inputs": req.Input})
	}
}
