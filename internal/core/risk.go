package core

import (
	"math"
	"strings"
	"time"
)

// AgeUnknown is the sentinel returned when a date of birth is absent or
// unparseable. The engine never rejects bad input; unknown ages fall into a
// default risk bucket instead.
const AgeUnknown = -1

const dobLayout = "2006-01-02"

// RiskComponents is the per-factor breakdown behind a risk score. Values are
// snapshotted into the application and assessment at scoring time and never
// recomputed.
type RiskComponents struct {
	AgeRisk          int `json:"age_risk" bson:"age_risk"`
	HealthRisk       int `json:"health_risk" bson:"health_risk"`
	LifestyleRisk    int `json:"lifestyle_risk" bson:"lifestyle_risk"`
	ClaimHistoryRisk int `json:"claim_history_risk" bson:"claim_history_risk"`
}

// RiskScore is the aggregate output of the scoring pass.
type RiskScore struct {
	Score      int            `json:"score"` // 0-100, higher = riskier
	Components RiskComponents `json:"components"`
	Age        int            `json:"age"` // AgeUnknown when DOB was absent
}

// RiskInput carries the raw application fields the assessors read.
type RiskInput struct {
	CustomerID            string
	DateOfBirth           string // YYYY-MM-DD, may be empty
	ProductLine           ProductLine
	MedicalHistory        string
	PreExistingConditions string
	CurrentMedications    string
}

// EstimateAge derives a whole-year age from a YYYY-MM-DD date of birth,
// decrementing when the birthday has not yet occurred this year. Empty or
// unparseable input yields AgeUnknown. Implausible dates are passed through
// untouched; a future DOB produces a negative age and callers must tolerate
// it.
func EstimateAge(dob string, now time.Time) int {
	if dob == "" {
		return AgeUnknown
	}
	birth, err := time.Parse(dobLayout, dob)
	if err != nil {
		return AgeUnknown
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeRisk buckets an estimated age into a 0-100 risk contribution.
func AgeRisk(age int) int {
	if age == AgeUnknown {
		return 20
	}
	switch {
	case age < 18:
		return 50
	case age <= 24:
		return 35
	case age <= 39:
		return 15
	case age <= 59:
		return 25
	case age <= 74:
		return 40
	default:
		return 70
	}
}

// conditionPoints are additive keyword scores over pre-existing conditions.
// Keywords may overlap and double count; that matches the upstream scoring
// semantics we need parity with.
var conditionPoints = []struct {
	keywords []string
	points   int
}{
	{[]string{"diabetes"}, 20},
	{[]string{"hypertension", "high blood pressure"}, 15},
	{[]string{"heart", "cardiac"}, 30},
	{[]string{"cancer"}, 35},
	{[]string{"stroke"}, 25},
	{[]string{"asthma"}, 10},
	{[]string{"kidney"}, 20},
	{[]string{"liver"}, 20},
}

var historyPoints = []struct {
	keyword string
	points  int
}{
	{"surgery", 5},
	{"hospitalization", 10},
	{"chronic", 15},
}

const (
	healthRiskBase      = 5
	healthRiskCap       = 50
	medicationPointsCap = 15
)

// HealthRisk scans the free-text medical fields for risk keywords. When both
// history and conditions are empty the risk is a flat base of 5 and the
// medications field is not consulted. The total is capped at 50.
func HealthRisk(medicalHistory, preExisting, medications string) int {
	if strings.TrimSpace(medicalHistory) == "" && strings.TrimSpace(preExisting) == "" {
		return healthRiskBase
	}

	risk := 0
	conditions := strings.ToLower(preExisting)
	for _, cp := range conditionPoints {
		for _, kw := range cp.keywords {
			if strings.Contains(conditions, kw) {
				risk += cp.points
				break
			}
		}
	}

	history := strings.ToLower(medicalHistory)
	for _, hp := range historyPoints {
		if strings.Contains(history, hp.keyword) {
			risk += hp.points
		}
	}

	if meds := strings.TrimSpace(medications); meds != "" {
		count := len(strings.Split(meds, ","))
		risk += min(count*3, medicationPointsCap)
	}

	return min(risk, healthRiskCap)
}

// LifestyleRisk maps the product line to a fixed contribution. Unrecognized
// lines fall through to a default rather than erroring.
func LifestyleRisk(line ProductLine) int {
	switch line {
	case ProductLineMotor:
		return 20
	case ProductLineLife:
		return 15
	case ProductLineHealth:
		return 10
	default:
		return 15
	}
}

// ClaimHistoryRisk is a deterministic stand-in for a real claims lookup: the
// sum of the customer ID's character codes mod 20. Preserved verbatim so
// scores stay comparable across systems until a claims store exists.
func ClaimHistoryRisk(customerID string) int {
	sum := 0
	for _, r := range customerID {
		sum += int(r)
	}
	return sum % 20
}

// Component weights for the aggregate score.
const (
	weightAge       = 0.25
	weightHealth    = 0.35
	weightLifestyle = 0.20
	weightClaims    = 0.20
)

// CalculateRiskScore runs all four assessors and folds them into a single
// weighted score, rounded half away from zero. Pure and side-effect free;
// safe to call concurrently.
func CalculateRiskScore(in RiskInput, now time.Time) RiskScore {
	age := EstimateAge(in.DateOfBirth, now)
	components := RiskComponents{
		AgeRisk:          AgeRisk(age),
		HealthRisk:       HealthRisk(in.MedicalHistory, in.PreExistingConditions, in.CurrentMedications),
		LifestyleRisk:    LifestyleRisk(in.ProductLine),
		ClaimHistoryRisk: ClaimHistoryRisk(in.CustomerID),
	}

	weighted := float64(components.AgeRisk)*weightAge +
		float64(components.HealthRisk)*weightHealth +
		float64(components.LifestyleRisk)*weightLifestyle +
		float64(components.ClaimHistoryRisk)*weightClaims

	return RiskScore{
		Score:      int(math.Round(weighted)),
		Components: components,
		Age:        age,
	}
}
