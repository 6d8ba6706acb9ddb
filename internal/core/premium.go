package core

import (
	"math"
	"strings"
)

// PremiumBreakdown itemizes how a final premium was reached.
type PremiumBreakdown struct {
	BasePremium        float64 `json:"base_premium" bson:"base_premium"`
	PremiumFactor      float64 `json:"premium_factor" bson:"premium_factor"`
	CoverageMultiplier float64 `json:"coverage_multiplier" bson:"coverage_multiplier"`
	RiskAdjustment     float64 `json:"risk_adjustment" bson:"risk_adjustment"`
	CoverageAdjustment float64 `json:"coverage_adjustment" bson:"coverage_adjustment"`
	FinalPremium       float64 `json:"final_premium" bson:"final_premium"`
}

// CoverageMultiplier maps a coverage level to its premium multiplier.
// Matching is case-insensitive and unrecognized levels default to 1.0.
func CoverageMultiplier(coverage CoverageLevel) float64 {
	switch CoverageLevel(strings.ToLower(string(coverage))) {
	case CoverageBasic:
		return 0.8
	case CoverageStandard:
		return 1.0
	case CoveragePremium:
		return 1.5
	default:
		return 1.0
	}
}

// CalculatePremium prices an application from its base premium, risk score
// and chosen coverage level.
//
// The premium factor is taken from the rule table evaluated with age=0,
// which skips the age rows entirely: premium pricing is driven by risk score
// alone, while age-based declines are enforced separately at decision time.
// This mirrors the behavior the rest of the platform already depends on.
//
// RiskAdjustment and CoverageAdjustment are each rounded deltas from the
// preceding step, so they need not sum exactly to FinalPremium - BasePremium.
func CalculatePremium(basePremium float64, riskScore int, coverage CoverageLevel) PremiumBreakdown {
	outcome := EvaluateRules(riskScore, 0)

	factor := 1.0
	if outcome.Limits != nil {
		factor = outcome.Limits.PremiumFactor
	}
	multiplier := CoverageMultiplier(coverage)

	riskAdjusted := basePremium * factor
	final := riskAdjusted * multiplier

	return PremiumBreakdown{
		BasePremium:        basePremium,
		PremiumFactor:      factor,
		CoverageMultiplier: multiplier,
		RiskAdjustment:     math.Round(riskAdjusted - basePremium),
		CoverageAdjustment: math.Round(final - riskAdjusted),
		FinalPremium:       math.Round(final),
	}
}
