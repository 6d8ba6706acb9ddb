package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRulesTable(t *testing.T) {
	tests := []struct {
		name       string
		score, age int
		result     AssessmentResult
		rule       string
		factor     float64 // 0 means no limits attached
		exclusions int
	}{
		{"low risk approved", 10, 30, ResultApproved, RuleLowRisk, 0.8, 0},
		{"boundary 29 still low", 29, 30, ResultApproved, RuleLowRisk, 0.8, 0},
		{"moderate risk approved", 40, 30, ResultApproved, RuleModerateRisk, 1.0, 0},
		{"elevated risk referred", 60, 30, ResultReviewRequired, RuleElevatedRisk, 1.5, 1},
		{"high risk referred", 75, 30, ResultReviewRequired, RuleHighRisk, 2.0, 2},
		{"boundary 84 still high", 84, 30, ResultReviewRequired, RuleHighRisk, 2.0, 2},
		{"severe risk declined", 85, 30, ResultDeclined, RuleSevereRisk, 2.0, 2},
		{"under minimum age declined", 10, 10, ResultDeclined, RuleMinimumAge, 0, 0},
		{"over maximum age referred", 10, 86, ResultReviewRequired, RuleMaximumAge, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateRules(tt.score, tt.age)

			assert.Equal(t, tt.result, got.Result)
			require.Len(t, got.RulesApplied, 1)
			assert.Equal(t, tt.rule, got.RulesApplied[0])
			assert.Len(t, got.Exclusions, tt.exclusions)

			if tt.factor == 0 {
				assert.Nil(t, got.Limits)
			} else {
				require.NotNil(t, got.Limits)
				assert.Equal(t, tt.factor, got.Limits.PremiumFactor)
			}
		})
	}
}

func TestEvaluateRulesAgePrecedence(t *testing.T) {
	// A ten-year-old with a pristine score is still declined; age rules win.
	got := EvaluateRules(10, 10)
	assert.Equal(t, ResultDeclined, got.Result)
	assert.Equal(t, []string{RuleMinimumAge}, got.RulesApplied)

	// An 86-year-old with a pristine score is referred, not approved.
	got = EvaluateRules(10, 86)
	assert.Equal(t, ResultReviewRequired, got.Result)
	assert.Equal(t, []string{RuleMaximumAge}, got.RulesApplied)
}

func TestEvaluateRulesAgeExemptions(t *testing.T) {
	// Age zero skips the minimum-age decline: this is the premium
	// calculator's score-only evaluation path.
	got := EvaluateRules(10, 0)
	assert.Equal(t, ResultApproved, got.Result)
	assert.Equal(t, []string{RuleLowRisk}, got.RulesApplied)

	// Unknown age likewise falls through to the score rows.
	got = EvaluateRules(40, AgeUnknown)
	assert.Equal(t, ResultApproved, got.Result)
	assert.Equal(t, []string{RuleModerateRisk}, got.RulesApplied)
}

func TestEvaluateRulesIsPure(t *testing.T) {
	first := EvaluateRules(60, 45)
	second := EvaluateRules(60, 45)
	assert.Equal(t, first, second)
}
