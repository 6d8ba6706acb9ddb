package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoringNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestEstimateAge(t *testing.T) {
	tests := []struct {
		name string
		dob  string
		want int
	}{
		{"empty dob", "", AgeUnknown},
		{"unparseable dob", "15/06/1990", AgeUnknown},
		{"birthday already passed", "1990-01-10", 36},
		{"birthday today", "1990-06-15", 36},
		{"birthday not yet reached", "1990-12-01", 35},
		{"same month, later day", "1990-06-20", 35},
		{"future dob passes through", "2030-01-01", -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateAge(tt.dob, scoringNow))
		})
	}
}

func TestAgeRisk(t *testing.T) {
	tests := []struct {
		age  int
		want int
	}{
		{AgeUnknown, 20},
		{10, 50},
		{17, 50},
		{18, 35},
		{24, 35},
		{25, 15},
		{39, 15},
		{40, 25},
		{59, 25},
		{60, 40},
		{74, 40},
		{75, 70},
		{90, 70},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, AgeRisk(tt.age), "age %d", tt.age)
	}
}

func TestHealthRisk(t *testing.T) {
	t.Run("empty history and conditions yield flat base", func(t *testing.T) {
		assert.Equal(t, 5, HealthRisk("", "", ""))
		// Medications are not consulted when both fields are empty
		assert.Equal(t, 5, HealthRisk("  ", "", "aspirin, insulin, statins"))
	})

	t.Run("condition keywords are additive", func(t *testing.T) {
		assert.Equal(t, 20, HealthRisk("none", "diabetes", ""))
		assert.Equal(t, 50, HealthRisk("none", "diabetes and heart disease", ""))
		// hypertension and its synonym count once
		assert.Equal(t, 15, HealthRisk("none", "hypertension, high blood pressure", ""))
	})

	t.Run("history keywords stack with conditions", func(t *testing.T) {
		// surgery 5 + hospitalization 10 + chronic 15 = 30
		assert.Equal(t, 30, HealthRisk("surgery, hospitalization, chronic pain", "", ""))
	})

	t.Run("medication count capped at 15", func(t *testing.T) {
		// 2 meds x3 = 6 on top of asthma 10
		assert.Equal(t, 16, HealthRisk("none", "asthma", "a, b"))
		// 10 meds would be 30, capped at 15
		assert.Equal(t, 25, HealthRisk("none", "asthma", "a,b,c,d,e,f,g,h,i,j"))
	})

	t.Run("total capped at 50", func(t *testing.T) {
		got := HealthRisk(
			"surgery hospitalization chronic",
			"diabetes cancer heart stroke kidney liver",
			"a,b,c,d,e,f",
		)
		assert.Equal(t, 50, got)
	})

	t.Run("monotonic in added condition keywords", func(t *testing.T) {
		conditions := []string{
			"diabetes",
			"diabetes asthma",
			"diabetes asthma kidney",
			"diabetes asthma kidney cancer",
		}
		prev := 0
		for _, c := range conditions {
			got := HealthRisk("none", c, "")
			assert.GreaterOrEqual(t, got, prev, c)
			assert.LessOrEqual(t, got, 50, c)
			prev = got
		}
	})
}

func TestLifestyleRisk(t *testing.T) {
	assert.Equal(t, 20, LifestyleRisk(ProductLineMotor))
	assert.Equal(t, 15, LifestyleRisk(ProductLineLife))
	assert.Equal(t, 10, LifestyleRisk(ProductLineHealth))
	assert.Equal(t, 15, LifestyleRisk(ProductLine("travel")))
}

func TestClaimHistoryRisk(t *testing.T) {
	// '7' is char code 55; 55 % 20 = 15
	assert.Equal(t, 15, ClaimHistoryRisk("7"))
	assert.Equal(t, 0, ClaimHistoryRisk(""))

	// Deterministic
	assert.Equal(t, ClaimHistoryRisk("customer-42"), ClaimHistoryRisk("customer-42"))

	// Always in [0, 20)
	for _, id := range []string{"a", "zz", "customer-1", "b2c3d4"} {
		got := ClaimHistoryRisk(id)
		assert.GreaterOrEqual(t, got, 0)
		assert.Less(t, got, 20)
	}
}

func TestCalculateRiskScore(t *testing.T) {
	t.Run("motor applicant aged 30 with clean record", func(t *testing.T) {
		in := RiskInput{
			CustomerID:  "7",
			DateOfBirth: "1996-01-10", // age 30 at scoringNow
			ProductLine: ProductLineMotor,
		}

		got := CalculateRiskScore(in, scoringNow)

		require.Equal(t, 30, got.Age)
		assert.Equal(t, 15, got.Components.AgeRisk)
		assert.Equal(t, 5, got.Components.HealthRisk)
		assert.Equal(t, 20, got.Components.LifestyleRisk)
		assert.Equal(t, 15, got.Components.ClaimHistoryRisk)
		// round(15*0.25 + 5*0.35 + 20*0.20 + 15*0.20) = round(12.5) = 13
		assert.Equal(t, 13, got.Score)
	})

	t.Run("missing dob uses the unknown bucket", func(t *testing.T) {
		in := RiskInput{CustomerID: "x", ProductLine: ProductLineHealth}

		got := CalculateRiskScore(in, scoringNow)

		assert.Equal(t, AgeUnknown, got.Age)
		assert.Equal(t, 20, got.Components.AgeRisk)
	})

	t.Run("score stays within range for documented inputs", func(t *testing.T) {
		in := RiskInput{
			CustomerID:            "high-risk-customer",
			DateOfBirth:           "1948-01-01",
			ProductLine:           ProductLineMotor,
			MedicalHistory:        "surgery hospitalization chronic",
			PreExistingConditions: "diabetes cancer heart stroke",
			CurrentMedications:    "a,b,c,d,e,f,g",
		}

		got := CalculateRiskScore(in, scoringNow)
		assert.GreaterOrEqual(t, got.Score, 0)
		assert.LessOrEqual(t, got.Score, 100)
	})
}
