package scanner

// VerdictLabel is the categorical output of the decision table.
type VerdictLabel string

const (
	VerdictSafe                  VerdictLabel = "SAFE"
	VerdictSafeMinor             VerdictLabel = "SAFE_MINOR"
	VerdictPotentiallySuspicious VerdictLabel = "POTENTIALLY_SUSPICIOUS"
	VerdictSuspicious            VerdictLabel = "SUSPICIOUS"
)

// SeverityCounts tallies issues per severity. The verdict is a pure function
// of these four counts.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// Verdict is the final assessment derived from a Report.
type Verdict struct {
	Label       VerdictLabel         `json:"verdict"`
	Message     string               `json:"verdict_message"`
	TotalIssues int                  `json:"total_issues"`
	Issues      map[Severity][]Issue `json:"issues"`
	Counts      SeverityCounts       `json:"issue_counts"`
}

// ComputeVerdict derives the verdict for a Report: collect issues, tally per
// severity, apply the decision table. Idempotent for an unchanged Report.
func ComputeVerdict(r *Report) Verdict {
	issues := CollectIssues(r)

	grouped := map[Severity][]Issue{
		SeverityCritical: {},
		SeverityHigh:     {},
		SeverityMedium:   {},
		SeverityLow:      {},
	}
	for _, issue := range issues {
		grouped[issue.Severity] = append(grouped[issue.Severity], issue)
	}

	counts := SeverityCounts{
		Critical: len(grouped[SeverityCritical]),
		High:     len(grouped[SeverityHigh]),
		Medium:   len(grouped[SeverityMedium]),
		Low:      len(grouped[SeverityLow]),
	}

	label, message := decide(counts)
	return Verdict{
		Label:       label,
		Message:     message,
		TotalIssues: counts.Total(),
		Issues:      grouped,
		Counts:      counts,
	}
}

// decide applies the decision table. Rule order is load-bearing: earlier
// rules take precedence.
func decide(c SeverityCounts) (VerdictLabel, string) {
	switch {
	case c.Critical > 0:
		return VerdictSuspicious, "This website shows critical security issues and should NOT be trusted"
	case c.High >= 2:
		return VerdictSuspicious, "This website shows multiple high-risk indicators"
	case c.High == 1 && c.Medium >= 2:
		return VerdictSuspicious, "This website shows concerning security issues"
	case c.High == 1 || c.Medium >= 3:
		return VerdictPotentiallySuspicious, "This website shows some warning signs - proceed with caution"
	case c.Medium > 0 || c.Low > 0:
		return VerdictSafeMinor, "This website appears safe but has minor security improvements needed"
	default:
		return VerdictSafe, "This website appears to be legitimate and secure"
	}
}
