package scanner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueTypes(issues []Issue) []string {
	types := make([]string, len(issues))
	for i, issue := range issues {
		types[i] = issue.Type
	}
	return types
}

func TestCollectIssuesEmptyReport(t *testing.T) {
	r := NewReport("https://example.com")
	r.RobotsAllowed = true

	assert.Empty(t, CollectIssues(r))
}

func TestCollectIssuesSkipsUnavailableChecks(t *testing.T) {
	r := NewReport("https://example.com")
	r.RobotsAllowed = true
	r.SSL = &TLSResult{Available: false, Err: "dial timeout"}
	r.Forms = &FormsResult{Available: false}
	r.FormRedirects = &FormRedirectsResult{Available: false}

	assert.Empty(t, CollectIssues(r))
}

func TestCollectIssuesInvalidCertificate(t *testing.T) {
	r := NewReport("https://example.com")
	r.RobotsAllowed = true
	r.SSL = &TLSResult{Available: true, Valid: false, Err: "certificate expired"}

	issues := CollectIssues(r)
	require.Len(t, issues, 1)
	assert.Equal(t, "Invalid SSL Certificate", issues[0].Type)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.Contains(t, issues[0].Description, "certificate expired")
}

func TestCollectIssuesOrderedBySeverityRules(t *testing.T) {
	r := NewReport("http://paypal-verify.example.tk")
	r.RobotsAllowed = true
	r.HTTPS = &HTTPSResult{Enforced: false}
	r.Homograph = &HomographResult{Suspicious: true, Patterns: []string{"Contains '0' (looks like 'o')"}}
	r.BrandImpersonation = &BrandResult{Impersonation: true, SuspectedBrand: "paypal", Keywords: []string{"verify"}}
	r.SuspiciousTLD = &TLDResult{TLD: "tk", Suspicious: true}
	r.DomainAge = &AgeResult{Available: true, DaysOld: 12, IsNew: true, IsVeryNew: true}
	r.Headers = &HeadersResult{Missing: []string{
		"Strict-Transport-Security", "X-Frame-Options", "X-Content-Type-Options",
		"Content-Security-Policy", "Referrer-Policy",
	}}

	issues := CollectIssues(r)
	assert.Equal(t, []string{
		"No HTTPS",
		"Homograph Attack",
		"Potential Brand Impersonation",
		"Suspicious TLD",
		"Recently Registered Domain",
		"Missing Security Headers",
	}, issueTypes(issues))
}

func TestCollectIssuesHeaderSummaryTruncated(t *testing.T) {
	r := NewReport("https://example.com")
	r.RobotsAllowed = true
	r.Headers = &HeadersResult{Missing: []string{
		"Strict-Transport-Security", "X-Frame-Options", "X-Content-Type-Options",
		"Content-Security-Policy", "Referrer-Policy",
	}}

	issues := CollectIssues(r)
	require.Len(t, issues, 1)
	assert.Equal(t,
		"Missing 5 security header(s): Strict-Transport-Security, X-Frame-Options, X-Content-Type-Options",
		issues[0].Description)
}

func TestCollectIssuesOneFormRedirectIssue(t *testing.T) {
	r := NewReport("https://example.com")
	r.RobotsAllowed = true
	r.FormRedirects = &FormRedirectsResult{Available: true, External: []FormRedirect{
		{FormIndex: 0, ExternalDomain: "collector.evil.example"},
		{FormIndex: 1, ExternalDomain: "other.evil.example"},
	}}

	issues := CollectIssues(r)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Description, "collector.evil.example")
	assert.NotContains(t, issues[0].Description, "other.evil.example")
}

func TestCollectIssuesDomainAgeUnknown(t *testing.T) {
	r := NewReport("https://example.com")
	r.RobotsAllowed = true
	r.DomainAge = &AgeResult{Available: false, Err: "whois timeout"}

	issues := CollectIssues(r)
	require.Len(t, issues, 1)
	assert.Equal(t, "Domain Age Unknown", issues[0].Type)
	assert.Equal(t, SeverityMedium, issues[0].Severity)
}

func TestCollectIssuesRobotsBypassed(t *testing.T) {
	r := NewReport("https://example.com")
	r.RobotsAllowed = false
	r.RobotsBypassed = true

	issues := CollectIssues(r)
	require.Len(t, issues, 1)
	assert.Equal(t, "Robots.txt Restriction", issues[0].Type)
	assert.Equal(t, SeverityLow, issues[0].Severity)
}

func TestComputeVerdictSerializationIdempotent(t *testing.T) {
	r := NewReport("http://login.secure.paypal-confirm.example.tk")
	r.RobotsAllowed = true
	r.HTTPS = &HTTPSResult{Enforced: false}
	r.Homograph = &HomographResult{Suspicious: true, Patterns: []string{"Contains '1' (looks like 'l')"}}
	r.SuspiciousTLD = &TLDResult{TLD: "tk", Suspicious: true}
	r.DomainAge = &AgeResult{Available: false, Err: "whois timeout"}
	r.Headers = &HeadersResult{Missing: []string{"X-Frame-Options"}}

	first, err := json.Marshal(ComputeVerdict(r))
	require.NoError(t, err)
	for range 10 {
		next, err := json.Marshal(ComputeVerdict(r))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(next))
	}
}
