package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoverageMultiplier(t *testing.T) {
	assert.Equal(t, 0.8, CoverageMultiplier(CoverageBasic))
	assert.Equal(t, 1.0, CoverageMultiplier(CoverageStandard))
	assert.Equal(t, 1.5, CoverageMultiplier(CoveragePremium))

	// Case-insensitive match
	assert.Equal(t, 1.5, CoverageMultiplier(CoverageLevel("PREMIUM")))
	assert.Equal(t, 0.8, CoverageMultiplier(CoverageLevel("Basic")))

	// Unrecognized levels default to 1.0
	assert.Equal(t, 1.0, CoverageMultiplier(CoverageLevel("platinum")))
	assert.Equal(t, 1.0, CoverageMultiplier(CoverageLevel("")))
}

func TestCalculatePremium(t *testing.T) {
	t.Run("low risk standard coverage", func(t *testing.T) {
		got := CalculatePremium(1500, 25, CoverageStandard)

		assert.Equal(t, 1500.0, got.BasePremium)
		assert.Equal(t, 0.8, got.PremiumFactor)
		assert.Equal(t, 1.0, got.CoverageMultiplier)
		// 1500 * 0.8 * 1.0
		assert.Equal(t, 1200.0, got.FinalPremium)
		assert.Equal(t, -300.0, got.RiskAdjustment)
		assert.Equal(t, 0.0, got.CoverageAdjustment)
	})

	t.Run("high risk premium coverage", func(t *testing.T) {
		got := CalculatePremium(1500, 75, CoveragePremium)

		assert.Equal(t, 2.0, got.PremiumFactor)
		assert.Equal(t, 1.5, got.CoverageMultiplier)
		// 1500 * 2.0 * 1.5
		assert.Equal(t, 4500.0, got.FinalPremium)
		assert.Equal(t, 1500.0, got.RiskAdjustment)
		assert.Equal(t, 1500.0, got.CoverageAdjustment)
	})

	t.Run("moderate risk basic coverage", func(t *testing.T) {
		got := CalculatePremium(1500, 40, CoverageBasic)

		assert.Equal(t, 1.0, got.PremiumFactor)
		assert.Equal(t, 0.8, got.CoverageMultiplier)
		assert.Equal(t, 1200.0, got.FinalPremium)
	})

	t.Run("age rules never affect pricing", func(t *testing.T) {
		// Pricing evaluates the rule table with age zero, so a score that
		// would be declined on age grounds still prices on its score row.
		got := CalculatePremium(1000, 10, CoverageStandard)
		assert.Equal(t, 0.8, got.PremiumFactor)
		assert.Equal(t, 800.0, got.FinalPremium)
	})

	t.Run("declined severe scores price at the restricted factor", func(t *testing.T) {
		got := CalculatePremium(1000, 90, CoverageStandard)
		assert.Equal(t, 2.0, got.PremiumFactor)
		assert.Equal(t, 2000.0, got.FinalPremium)
	})

	t.Run("final premium is rounded", func(t *testing.T) {
		// 999 * 0.8 = 799.2 -> 799; adjustment rounds the delta
		got := CalculatePremium(999, 10, CoverageStandard)
		assert.Equal(t, 799.0, got.FinalPremium)
		assert.Equal(t, -200.0, got.RiskAdjustment)
	})
}
