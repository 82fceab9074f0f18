package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/adapter"
)

// TaskKind selects the request and response shape for an inference call.
type TaskKind string

const (
	TextGeneration     TaskKind = "text-generation"
	TextClassification TaskKind = "text-classification"
	QuestionAnswering  TaskKind = "question-answering"
	Summarization      TaskKind = "summarization"
	FillMask           TaskKind = "fill-mask"
)

// Transport issues one raw inference call. Implementations translate
// vendor failures into *adapter.VendorError so the invoker can classify
// outcomes without inspecting payload text.
type Transport interface {
	Query(ctx context.Context, modelID string, body []byte) (json.RawMessage, error)
}

// Backoff schedule per transient condition. A model still warming up is
// given the longest wait; a 429 slightly more than a payload-level
// rate-limit notice, which tends to clear sooner.
const (
	waitModelLoading       = 12 * time.Second
	waitRateLimited429     = 11 * time.Second
	waitRateLimitedPayload = 8 * time.Second
	waitServiceUnavailable = 6 * time.Second
)

// backoffFor maps a classified vendor error to the wait before the next
// attempt. The second return is false when the error is fatal.
func backoffFor(err error) (time.Duration, bool) {
	if !adapter.IsTransient(err) {
		return 0, false
	}
	var verr *adapter.VendorError
	if !errors.As(err, &verr) {
		return 0, false
	}
	switch verr.Kind {
	case adapter.KindModelLoading:
		return waitModelLoading, true
	case adapter.KindRateLimited:
		if verr.Status == http.StatusTooManyRequests {
			return waitRateLimited429, true
		}
		return waitRateLimitedPayload, true
	case adapter.KindServiceUnavailable:
		return waitServiceUnavailable, true
	}
	return 0, false
}

// SleepFunc is the injected wait capability. Tests swap it for a recorder
// so the retry state machine runs without real timers.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
