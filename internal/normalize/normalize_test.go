package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PureJSON(t *testing.T) {
	input := `{"isFood": true, "foodName": "Apple", "estimatedCalories": "95", "healthScore": 85}`

	raw, err := Extract(input)

	require.NoError(t, err)
	assert.Equal(t, input, string(raw))
}

func TestExtract_PureJSONWithSurroundingWhitespace(t *testing.T) {
	raw, err := Extract("\n  {\"isFood\": false}\n")

	require.NoError(t, err)
	assert.Equal(t, `{"isFood": false}`, string(raw))
}

func TestExtract_FencedBlock(t *testing.T) {
	input := "Sure! Here is the analysis you asked for:\n```json\n{\"isFood\": false}\n```\nLet me know if you need anything else."

	raw, err := Extract(input)

	require.NoError(t, err)
	assert.Equal(t, `{"isFood": false}`, string(raw))
}

func TestExtract_FencedBlockWithoutLanguageTag(t *testing.T) {
	input := "```\n{\"isFood\": true, \"foodName\": \"Pizza\", \"estimatedCalories\": \"285\", \"healthScore\": 40}\n```"

	raw, err := Extract(input)

	require.NoError(t, err)
	assert.JSONEq(t, `{"isFood": true, "foodName": "Pizza", "estimatedCalories": "285", "healthScore": 40}`, string(raw))
}

func TestExtract_ProseAroundBareObject(t *testing.T) {
	input := `The image shows food. {"isFood": true, "foodName": "Ramen", "estimatedCalories": "450", "healthScore": 55} Hope that helps!`

	raw, err := Extract(input)

	require.NoError(t, err)
	assert.JSONEq(t, `{"isFood": true, "foodName": "Ramen", "estimatedCalories": "450", "healthScore": 55}`, string(raw))
}

func TestExtract_NoBraces(t *testing.T) {
	for _, input := range []string{
		"I cannot analyze this image.",
		"no opening brace here }",
		"{ no closing brace here",
		"",
	} {
		_, err := Extract(input)
		assert.ErrorIs(t, err, ErrMalformedResponse, "input %q", input)
	}
}

// Two disjoint objects: the brace strategy spans from the first '{' to the
// last '}', which covers both objects and the prose between them. That span
// is not valid JSON, so extraction fails as a whole. This coarse behavior is
// intentional; there is no precise bracket matcher.
func TestExtract_TwoDisjointObjectsFails(t *testing.T) {
	_, err := Extract(`first {"a": 1} and second {"b": 2} done`)

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestExtractBraceSpan_UsesFirstAndLastBrace(t *testing.T) {
	raw, ok := extractBraceSpan(`noise {"outer": {"inner": 1}} noise`)

	require.True(t, ok)
	assert.Equal(t, `{"outer": {"inner": 1}}`, string(raw))
}

func TestExtractBraceSpan_SpansDisjointGroups(t *testing.T) {
	// The candidate span runs from the first '{' to the last '}'; with two
	// disjoint groups it covers both and fails to parse.
	_, ok := extractBraceSpan(`{"a": 1} text {"b": 2}`)

	assert.False(t, ok)
}

func TestExtractBraceSpan_ClosingBeforeOpening(t *testing.T) {
	_, ok := extractBraceSpan(`} backwards {`)

	assert.False(t, ok)
}

func TestNormalize_FoodVerdict(t *testing.T) {
	result, raw, err := Normalize("```json\n{\"isFood\": true, \"foodName\": \"Apple\", \"estimatedCalories\": \"95\", \"healthScore\": 85}\n```")

	require.NoError(t, err)
	assert.True(t, result.IsFood)
	assert.Equal(t, "Apple", result.FoodName)
	assert.Equal(t, "95", result.EstimatedCalories)
	assert.Equal(t, 85, result.HealthScore)
	assert.JSONEq(t, `{"isFood": true, "foodName": "Apple", "estimatedCalories": "95", "healthScore": 85}`, string(raw))
}

func TestNormalize_NonFoodVerdict(t *testing.T) {
	result, raw, err := Normalize(`{"isFood": false}`)

	require.NoError(t, err)
	assert.False(t, result.IsFood)
	assert.Equal(t, `{"isFood": false}`, string(raw))
}

func TestNormalize_RejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"not an object":          `[1, 2, 3]`,
		"missing isFood":         `{"foodName": "Apple"}`,
		"non-boolean isFood":     `{"isFood": "yes"}`,
		"food without name":      `{"isFood": true, "estimatedCalories": "95", "healthScore": 85}`,
		"empty food name":        `{"isFood": true, "foodName": "", "estimatedCalories": "95", "healthScore": 85}`,
		"numeric calories":       `{"isFood": true, "foodName": "Apple", "estimatedCalories": 95, "healthScore": 85}`,
		"missing health score":   `{"isFood": true, "foodName": "Apple", "estimatedCalories": "95"}`,
		"fractional healthScore": `{"isFood": true, "foodName": "Apple", "estimatedCalories": "95", "healthScore": 85.5}`,
	}

	for name, input := range cases {
		_, _, err := Normalize(input)
		assert.ErrorIs(t, err, ErrMalformedResponse, name)
	}
}

func TestNormalize_PassesExtraFieldsThrough(t *testing.T) {
	// The model sometimes volunteers extra fields; they survive in the raw
	// payload untouched.
	_, raw, err := Normalize(`{"isFood": true, "foodName": "Salad", "estimatedCalories": "150", "healthScore": 90, "note": "very fresh"}`)

	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "very fresh", fields["note"])
}

func TestNormalize_ExtractFailurePropagates(t *testing.T) {
	_, _, err := Normalize("the model refused to answer")

	assert.True(t, errors.Is(err, ErrMalformedResponse))
}
