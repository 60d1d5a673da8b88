package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Juggy247/Security-Scanner-Project/scanner"
)

func suspiciousReport() *scanner.Report {
	r := scanner.NewReport("http://paypal-verify.example.tk/")
	r.RobotsAllowed = true
	r.HTTPS = &scanner.HTTPSResult{Enforced: false}
	r.Blacklist = &scanner.BlacklistResult{Listed: true}
	return r
}

func cleanReport() *scanner.Report {
	r := scanner.NewReport("https://example.com/")
	r.RobotsAllowed = true
	r.HTTPS = &scanner.HTTPSResult{Enforced: true}
	return r
}

func TestTraditionalScore(t *testing.T) {
	assert.Equal(t, 1.0, TraditionalScore(scanner.VerdictSuspicious))
	assert.Equal(t, 0.5, TraditionalScore(scanner.VerdictPotentiallySuspicious))
	assert.Equal(t, 0.0, TraditionalScore(scanner.VerdictSafeMinor))
	assert.Equal(t, 0.0, TraditionalScore(scanner.VerdictSafe))
}

func TestEnhanceVerdictBothSuspicious(t *testing.T) {
	got := EnhanceVerdict(suspiciousReport(), 0.8, 0.3)

	assert.InDelta(t, 0.94, got.CombinedScore, 1e-9)
	assert.Equal(t, scanner.VerdictSuspicious, got.Label)
	assert.Equal(t, scanner.VerdictSuspicious, got.TraditionalVerdict)
	assert.Equal(t, 1.0, got.TraditionalScore)
	assert.Equal(t, MLPhishing, got.MLVerdict)
	assert.Equal(t, 0.8, got.MLScore)
	assert.True(t, got.MethodsAgree)
	assert.Equal(t, "high", got.ConfidenceLevel)
}

func TestEnhanceVerdictDisagreement(t *testing.T) {
	// Heuristics say suspicious, classifier says clean.
	got := EnhanceVerdict(suspiciousReport(), 0.1, 0.3)

	assert.InDelta(t, 0.73, got.CombinedScore, 1e-9)
	assert.Equal(t, scanner.VerdictSuspicious, got.Label)
	assert.False(t, got.MethodsAgree)
	assert.Equal(t, "low", got.ConfidenceLevel)
}

func TestEnhanceVerdictCleanSite(t *testing.T) {
	got := EnhanceVerdict(cleanReport(), 0.1, 0.3)

	assert.InDelta(t, 0.03, got.CombinedScore, 1e-9)
	assert.Equal(t, scanner.VerdictSafe, got.Label)
	assert.Equal(t, MLLegitimate, got.MLVerdict)
	assert.True(t, got.MethodsAgree)
	assert.Equal(t, "high", got.ConfidenceLevel)
}

func TestEnhanceVerdictClassifierCanTipClean(t *testing.T) {
	// Clean heuristics with a very confident classifier reach the caution
	// band only when the weight is high enough.
	low := EnhanceVerdict(cleanReport(), 1.0, 0.3)
	assert.Equal(t, scanner.VerdictSafe, low.Label)

	high := EnhanceVerdict(cleanReport(), 1.0, 0.5)
	assert.Equal(t, scanner.VerdictPotentiallySuspicious, high.Label)
}

func TestEnhanceVerdictThresholds(t *testing.T) {
	r := cleanReport()
	tests := []struct {
		probability float64
		weight      float64
		want        scanner.VerdictLabel
	}{
		{0.7, 1.0, scanner.VerdictSuspicious},
		{0.69, 1.0, scanner.VerdictPotentiallySuspicious},
		{0.4, 1.0, scanner.VerdictPotentiallySuspicious},
		{0.39, 1.0, scanner.VerdictSafe},
	}
	for _, tt := range tests {
		got := EnhanceVerdict(r, tt.probability, tt.weight)
		assert.Equal(t, tt.want, got.Label, "p=%v w=%v", tt.probability, tt.weight)
	}
}

func TestEnhanceVerdictInvalidWeightFallsBack(t *testing.T) {
	got := EnhanceVerdict(suspiciousReport(), 0.8, -1)
	assert.InDelta(t, 0.94, got.CombinedScore, 1e-9)

	got = EnhanceVerdict(suspiciousReport(), 0.8, 2)
	assert.InDelta(t, 0.94, got.CombinedScore, 1e-9)
}

func TestEnhanceVerdictConfidenceBands(t *testing.T) {
	tests := []struct {
		trad, ml float64
		want     string
	}{
		{1.0, 0.8, "high"},
		{1.0, 0.6, "medium"},
		{1.0, 0.4, "low"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, confidenceLevel(tt.trad, tt.ml), "trad=%v ml=%v", tt.trad, tt.ml)
	}
}

func TestEnhanceVerdictCarriesIssueBreakdown(t *testing.T) {
	got := EnhanceVerdict(suspiciousReport(), 0.8, 0.3)
	assert.Equal(t, 2, got.TotalIssues)
	assert.Equal(t, 2, got.Counts.Critical)
	assert.Len(t, got.Issues[scanner.SeverityCritical], 2)
}
