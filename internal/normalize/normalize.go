// Package normalize turns the free-form text returned by the inference model
// into a validated analysis verdict. Models routinely wrap their JSON in prose
// or Markdown code fences, so extraction is a prioritized list of strategies
// rather than a single parse.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/franckalain/platecheck/internal/models"
)

// ErrMalformedResponse means no JSON value could be recovered from the model
// output, or the recovered value does not have the expected verdict shape.
var ErrMalformedResponse = errors.New("model did not return valid JSON")

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*\n(.*?)\n\\s*```")

// Extract recovers a JSON value from raw model output. Strategies are tried
// in order and the first one that yields parseable JSON wins:
//
//  1. the whole text is JSON
//  2. the interior of a fenced code block (``` or ```json) is JSON
//  3. the span from the first '{' to the last '}' is JSON
//
// Strategy 3 is deliberately coarse: with multiple brace groups in the text it
// spans all of them, matching how the service has always behaved.
func Extract(text string) (json.RawMessage, error) {
	for _, strategy := range []func(string) (json.RawMessage, bool){
		extractDirect,
		extractFenced,
		extractBraceSpan,
	} {
		if raw, ok := strategy(text); ok {
			return raw, nil
		}
	}
	return nil, ErrMalformedResponse
}

func extractDirect(text string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if !json.Valid([]byte(trimmed)) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

func extractFenced(text string) (json.RawMessage, bool) {
	m := fencedBlock.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return extractDirect(m[1])
}

func extractBraceSpan(text string) (json.RawMessage, bool) {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last <= first {
		return nil, false
	}
	return extractDirect(text[first : last+1])
}

// Normalize extracts a JSON verdict from raw model output and validates its
// shape. The returned raw message is the extracted JSON untouched, suitable
// for passing straight through to the client; the struct is the decoded view
// used for history and broadcasting.
func Normalize(text string) (*models.AnalysisResult, json.RawMessage, error) {
	raw, err := Extract(text)
	if err != nil {
		return nil, nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nil, fmt.Errorf("%w: not a JSON object", ErrMalformedResponse)
	}

	isFood, ok := fields["isFood"].(bool)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing or non-boolean \"isFood\"", ErrMalformedResponse)
	}

	result := &models.AnalysisResult{IsFood: isFood}
	if !isFood {
		return result, raw, nil
	}

	name, ok := fields["foodName"].(string)
	if !ok || name == "" {
		return nil, nil, fmt.Errorf("%w: missing or empty \"foodName\"", ErrMalformedResponse)
	}
	calories, ok := fields["estimatedCalories"].(string)
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing or non-string \"estimatedCalories\"", ErrMalformedResponse)
	}
	score, ok := fields["healthScore"].(float64)
	if !ok || score != float64(int(score)) {
		return nil, nil, fmt.Errorf("%w: missing or non-integer \"healthScore\"", ErrMalformedResponse)
	}

	result.FoodName = name
	result.EstimatedCalories = calories
	result.HealthScore = int(score)
	return result, raw, nil
}
