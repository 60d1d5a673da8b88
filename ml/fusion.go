package ml

import (
	"github.com/Juggy247/Security-Scanner-Project/scanner"
)

// DefaultWeight is the classifier's share of the combined score.
const DefaultWeight = 0.3

// MLLabel is the classifier's categorical reading of its own probability.
type MLLabel string

const (
	MLPhishing   MLLabel = "PHISHING"
	MLLegitimate MLLabel = "LEGITIMATE"
)

// EnhancedVerdict fuses the heuristic verdict with the classifier
// probability. The heuristic issue breakdown is carried through unchanged so
// callers see both readings side by side.
type EnhancedVerdict struct {
	Label         scanner.VerdictLabel `json:"verdict"`
	Message       string               `json:"verdict_message"`
	CombinedScore float64              `json:"combined_score"`

	TraditionalVerdict scanner.VerdictLabel                 `json:"traditional_verdict"`
	TraditionalScore   float64                              `json:"traditional_score"`
	TotalIssues        int                                  `json:"total_issues"`
	Issues             map[scanner.Severity][]scanner.Issue `json:"issues"`
	Counts             scanner.SeverityCounts               `json:"issue_counts"`

	MLVerdict MLLabel `json:"ml_verdict"`
	MLScore   float64 `json:"ml_score"`

	MethodsAgree    bool   `json:"methods_agree"`
	ConfidenceLevel string `json:"confidence_level"`
}

// TraditionalScore maps the heuristic verdict onto the classifier's scale.
func TraditionalScore(label scanner.VerdictLabel) float64 {
	switch label {
	case scanner.VerdictSuspicious:
		return 1.0
	case scanner.VerdictPotentiallySuspicious:
		return 0.5
	default:
		return 0.0
	}
}

// EnhanceVerdict combines the heuristic verdict for r with the classifier
// probability. weight is the classifier's share; values outside (0, 1] fall
// back to DefaultWeight.
func EnhanceVerdict(r *scanner.Report, probability, weight float64) EnhancedVerdict {
	if weight <= 0 || weight > 1 {
		weight = DefaultWeight
	}

	verdict := scanner.ComputeVerdict(r)
	trad := TraditionalScore(verdict.Label)
	combined := (1-weight)*trad + weight*probability

	label, message := decideCombined(combined)

	mlVerdict := MLLegitimate
	if probability > 0.5 {
		mlVerdict = MLPhishing
	}

	return EnhancedVerdict{
		Label:         label,
		Message:       message,
		CombinedScore: combined,

		TraditionalVerdict: verdict.Label,
		TraditionalScore:   trad,
		TotalIssues:        verdict.TotalIssues,
		Issues:             verdict.Issues,
		Counts:             verdict.Counts,

		MLVerdict: mlVerdict,
		MLScore:   probability,

		MethodsAgree:    (trad > 0.5) == (probability > 0.5),
		ConfidenceLevel: confidenceLevel(trad, probability),
	}
}

func decideCombined(score float64) (scanner.VerdictLabel, string) {
	switch {
	case score >= 0.7:
		return scanner.VerdictSuspicious, "This website shows critical security issues"
	case score >= 0.4:
		return scanner.VerdictPotentiallySuspicious, "This website shows warning signs - proceed with caution"
	default:
		return scanner.VerdictSafe, "This website appears legitimate and secure"
	}
}

// confidenceLevel reflects how closely the two methods agree in magnitude.
func confidenceLevel(trad, ml float64) string {
	gap := trad - ml
	if gap < 0 {
		gap = -gap
	}
	switch {
	case gap < 0.3:
		return "high"
	case gap < 0.5:
		return "medium"
	default:
		return "low"
	}
}
