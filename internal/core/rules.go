package core

// AssessmentResult is the outcome of the underwriting rule table.
type AssessmentResult string

const (
	ResultApproved       AssessmentResult = "APPROVED"
	ResultDeclined       AssessmentResult = "DECLINED"
	ResultReviewRequired AssessmentResult = "REVIEW_REQUIRED"
)

// CoverageTier classifies the coverage terms attached to a rule outcome.
type CoverageTier string

const (
	CoverageTierStandard   CoverageTier = "STANDARD"
	CoverageTierLimited    CoverageTier = "LIMITED"
	CoverageTierRestricted CoverageTier = "RESTRICTED"
)

// Rule tags recorded on assessments so a reviewer can see which row of the
// decision table fired.
const (
	RuleMinimumAge   = "MINIMUM_AGE"
	RuleMaximumAge   = "MAXIMUM_AGE"
	RuleLowRisk      = "LOW_RISK"
	RuleModerateRisk = "MODERATE_RISK"
	RuleElevatedRisk = "ELEVATED_RISK"
	RuleSevereRisk   = "SEVERE_RISK"
	RuleHighRisk     = "HIGH_RISK"
)

// CoverageLimits carries the tier and premium factor a rule outcome allows.
type CoverageLimits struct {
	Tier          CoverageTier `json:"tier" bson:"tier"`
	PremiumFactor float64      `json:"premium_factor" bson:"premium_factor"`
}

// RuleOutcome is the full result of evaluating the decision table.
type RuleOutcome struct {
	Result       AssessmentResult `json:"result" bson:"result"`
	Reason       string           `json:"reason" bson:"reason"`
	RulesApplied []string         `json:"rules_applied" bson:"rules_applied"`
	Exclusions   []string         `json:"exclusions" bson:"exclusions"`
	Limits       *CoverageLimits  `json:"limits,omitempty" bson:"limits,omitempty"`
}

const (
	exclusionHighRiskActivities   = "High-risk activities"
	exclusionHazardousOccupations = "Hazardous occupations"
)

// EvaluateRules walks the underwriting decision table in order and returns
// the first matching row. Age rules take precedence over score rules
// regardless of the score. Pure function: identical inputs always yield an
// identical outcome, and no input combination is an error.
//
// Age zero is skipped by the minimum-age rule: the premium calculator
// deliberately re-evaluates the table with age=0 to derive a premium factor
// without tripping age-based declines (see CalculatePremium). The unknown
// sentinel is likewise exempt; a missing DOB contributes default risk
// instead of a refusal.
func EvaluateRules(riskScore, age int) RuleOutcome {
	switch {
	case age != AgeUnknown && age != 0 && age < 18:
		return RuleOutcome{
			Result:       ResultDeclined,
			Reason:       "Applicant is under the minimum insurable age",
			RulesApplied: []string{RuleMinimumAge},
		}

	case age > 85:
		return RuleOutcome{
			Result:       ResultReviewRequired,
			Reason:       "Applicant age exceeds the standard age limit",
			RulesApplied: []string{RuleMaximumAge},
		}

	case riskScore < 30:
		return RuleOutcome{
			Result:       ResultApproved,
			Reason:       "Low risk profile",
			RulesApplied: []string{RuleLowRisk},
			Limits:       &CoverageLimits{Tier: CoverageTierStandard, PremiumFactor: 0.8},
		}

	case riskScore < 50:
		return RuleOutcome{
			Result:       ResultApproved,
			Reason:       "Moderate risk profile",
			RulesApplied: []string{RuleModerateRisk},
			Limits:       &CoverageLimits{Tier: CoverageTierStandard, PremiumFactor: 1.0},
		}

	case riskScore < 70:
		return RuleOutcome{
			Result:       ResultReviewRequired,
			Reason:       "Elevated risk profile requires manual review",
			RulesApplied: []string{RuleElevatedRisk},
			Exclusions:   []string{exclusionHighRiskActivities},
			Limits:       &CoverageLimits{Tier: CoverageTierLimited, PremiumFactor: 1.5},
		}

	case riskScore >= 85:
		return RuleOutcome{
			Result:       ResultDeclined,
			Reason:       "Risk score exceeds the insurable threshold",
			RulesApplied: []string{RuleSevereRisk},
			Exclusions:   []string{exclusionHighRiskActivities, exclusionHazardousOccupations},
			Limits:       &CoverageLimits{Tier: CoverageTierRestricted, PremiumFactor: 2.0},
		}

	default: // 70 <= riskScore < 85
		return RuleOutcome{
			Result:       ResultReviewRequired,
			Reason:       "High risk profile requires senior underwriter review",
			RulesApplied: []string{RuleHighRisk},
			Exclusions:   []string{exclusionHighRiskActivities, exclusionHazardousOccupations},
			Limits:       &CoverageLimits{Tier: CoverageTierRestricted, PremiumFactor: 2.0},
		}
	}
}
