package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parsePayload extracts the task-relevant text from a clean response.
// Every branch degrades to stringifying rather than failing: a success
// at the transport level is never turned back into an error here.
func parsePayload(task TaskKind, raw json.RawMessage) string {
	switch task {
	case TextGeneration:
		return parseTextGeneration(raw)
	case TextClassification:
		return firstElementField(raw, "label")
	case QuestionAnswering:
		return firstElementField(raw, "answer")
	case Summarization:
		return firstElementField(raw, "summary_text")
	case FillMask:
		return parseFillMask(raw)
	default:
		return stringify(raw)
	}
}

func parseTextGeneration(raw json.RawMessage) string {
	var elements []map[string]any
	if err := json.Unmarshal(raw, &elements); err != nil || len(elements) == 0 {
		return stringify(raw)
	}
	if text, ok := elements[0]["generated_text"].(string); ok {
		return text
	}
	if text, ok := elements[0]["text"].(string); ok {
		return text
	}
	return stringifyValue(elements[0])
}

// firstElementField returns the named field of the first element. Some
// endpoints nest the element list one level deeper; both shapes occur.
func firstElementField(raw json.RawMessage, field string) string {
	var elements []map[string]any
	if err := json.Unmarshal(raw, &elements); err != nil || len(elements) == 0 {
		var nested [][]map[string]any
		if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
			elements = nested[0]
		} else {
			var object map[string]any
			if err := json.Unmarshal(raw, &object); err == nil {
				elements = []map[string]any{object}
			}
		}
	}
	if len(elements) == 0 {
		return stringify(raw)
	}
	if value, ok := elements[0][field].(string); ok {
		return value
	}
	return stringifyValue(elements[0])
}

func parseFillMask(raw json.RawMessage) string {
	var candidates []struct {
		TokenStr string  `json:"token_str"`
		Score    float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &candidates); err != nil || len(candidates) == 0 {
		return stringify(raw)
	}

	rendered := make([]string, 0, len(candidates))
	for _, c := range candidates {
		rendered = append(rendered, fmt.Sprintf("%s (%.1f%%)", strings.TrimSpace(c.TokenStr), c.Score*100))
	}
	return strings.Join(rendered, ", ")
}

func stringify(raw json.RawMessage) string {
	return strings.TrimSpace(string(raw))
}

func stringifyValue(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}
