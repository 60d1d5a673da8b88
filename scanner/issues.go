package scanner

import (
	"fmt"
	"strings"
)

// Severity orders issues by descending urgency.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Issue is a pure derived view of one check outcome. Issues are never stored
// and never mutated; re-deriving them from an unchanged Report yields the
// same list.
type Issue struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Risk        string   `json:"risk"`
	Severity    Severity `json:"severity"`
}

// CollectIssues maps every populated check slot through its fixed rule.
// Unpopulated or unavailable slots contribute nothing: a check that could
// not run is not evidence against the site.
func CollectIssues(r *Report) []Issue {
	rules := []func(*Report) []Issue{
		httpsIssues,
		sslIssues,
		blacklistIssues,
		homographIssues,
		formRedirectIssues,
		brandImpersonationIssues,
		tldIssues,
		domainLengthIssues,
		domainAgeIssues,
		domainTitleIssues,
		subdomainIssues,
		formSecurityIssues,
		securityHeaderIssues,
		robotsIssues,
	}

	var issues []Issue
	for _, rule := range rules {
		issues = append(issues, rule(r)...)
	}
	return issues
}

func httpsIssues(r *Report) []Issue {
	if r.HTTPS == nil || r.HTTPS.Enforced {
		return nil
	}
	return []Issue{{
		Type:        "No HTTPS",
		Description: "Website does not use HTTPS encryption",
		Risk:        "Data transmitted in plain text can be intercepted",
		Severity:    SeverityCritical,
	}}
}

func sslIssues(r *Report) []Issue {
	// An unavailable handshake is not a finding; only a completed handshake
	// with a certificate that failed verification is.
	if r.SSL == nil || !r.SSL.Available || r.SSL.Valid {
		return nil
	}
	detail := r.SSL.Err
	if detail == "" {
		detail = "Unknown error"
	}
	return []Issue{{
		Type:        "Invalid SSL Certificate",
		Description: fmt.Sprintf("SSL certificate is not valid: %s", detail),
		Risk:        "Cannot verify website identity",
		Severity:    SeverityCritical,
	}}
}

func blacklistIssues(r *Report) []Issue {
	if r.Blacklist == nil || !r.Blacklist.Listed {
		return nil
	}
	return []Issue{{
		Type:        "Blacklisted Domain",
		Description: "Domain appears in malicious site databases",
		Risk:        "Known malicious or phishing site",
		Severity:    SeverityCritical,
	}}
}

func homographIssues(r *Report) []Issue {
	if r.Homograph == nil || !r.Homograph.Suspicious {
		return nil
	}
	return []Issue{{
		Type:        "Homograph Attack",
		Description: fmt.Sprintf("Suspicious characters detected: %s", strings.Join(r.Homograph.Patterns, ", ")),
		Risk:        "Domain may be impersonating legitimate site",
		Severity:    SeverityCritical,
	}}
}

func formRedirectIssues(r *Report) []Issue {
	if r.FormRedirects == nil || len(r.FormRedirects.External) == 0 {
		return nil
	}
	// One issue regardless of how many forms leak.
	first := r.FormRedirects.External[0]
	return []Issue{{
		Type:        "External Form Redirect",
		Description: fmt.Sprintf("Form submits to external domain: %s", first.ExternalDomain),
		Risk:        "Your data may be sent to malicious third party",
		Severity:    SeverityCritical,
	}}
}

func brandImpersonationIssues(r *Report) []Issue {
	if r.BrandImpersonation == nil || !r.BrandImpersonation.Impersonation {
		return nil
	}
	return []Issue{{
		Type: "Potential Brand Impersonation",
		Description: fmt.Sprintf("Domain contains '%s' with suspicious keywords: %s",
			r.BrandImpersonation.SuspectedBrand, strings.Join(r.BrandImpersonation.Keywords, ", ")),
		Risk:     "May be fake site impersonating legitimate brand",
		Severity: SeverityHigh,
	}}
}

func tldIssues(r *Report) []Issue {
	if r.SuspiciousTLD == nil || !r.SuspiciousTLD.Suspicious {
		return nil
	}
	return []Issue{{
		Type:        "Suspicious TLD",
		Description: fmt.Sprintf("Domain uses high-risk TLD: .%s", r.SuspiciousTLD.TLD),
		Risk:        "TLD commonly used in phishing attacks",
		Severity:    SeverityHigh,
	}}
}

func domainLengthIssues(r *Report) []Issue {
	if r.DomainLength == nil || !r.DomainLength.Suspicious {
		return nil
	}
	return []Issue{{
		Type:        "Suspicious Domain Length",
		Description: fmt.Sprintf("Domain is unusually long (%d characters)", r.DomainLength.Length),
		Risk:        "Phishing sites often use long domains to hide real intent",
		Severity:    SeverityHigh,
	}}
}

func domainAgeIssues(r *Report) []Issue {
	if r.DomainAge == nil {
		return nil
	}
	if r.DomainAge.Available && r.DomainAge.IsNew {
		return []Issue{{
			Type:        "Recently Registered Domain",
			Description: fmt.Sprintf("Domain registered only %d days ago", r.DomainAge.DaysOld),
			Risk:        "New domains are higher risk for scams",
			Severity:    SeverityMedium,
		}}
	}
	if !r.DomainAge.Available {
		return []Issue{{
			Type:        "Domain Age Unknown",
			Description: "Cannot verify when domain was registered",
			Risk:        "Unable to assess domain history",
			Severity:    SeverityMedium,
		}}
	}
	return nil
}

func domainTitleIssues(r *Report) []Issue {
	if r.DomainInTitle == nil || r.DomainInTitle.InTitle {
		return nil
	}
	return []Issue{{
		Type:        "Domain Not in Page Title",
		Description: "Website's domain name doesn't appear in page title",
		Risk:        "Legitimate sites usually include their name in the title",
		Severity:    SeverityMedium,
	}}
}

func subdomainIssues(r *Report) []Issue {
	if r.SubdomainDepth == nil || !r.SubdomainDepth.Suspicious {
		return nil
	}
	return []Issue{{
		Type:        "Deep Subdomain Nesting",
		Description: fmt.Sprintf("Domain has %d levels of subdomains", r.SubdomainDepth.Depth),
		Risk:        "Phishing sites often use subdomains to appear legitimate",
		Severity:    SeverityMedium,
	}}
}

func formSecurityIssues(r *Report) []Issue {
	if r.Forms == nil || len(r.Forms.Insecure) == 0 {
		return nil
	}
	return []Issue{{
		Type:        "Insecure Forms",
		Description: fmt.Sprintf("Found %d form(s) with security issues", len(r.Forms.Insecure)),
		Risk:        "Forms may transmit data insecurely",
		Severity:    SeverityMedium,
	}}
}

func securityHeaderIssues(r *Report) []Issue {
	if r.Headers == nil || len(r.Headers.Missing) == 0 {
		return nil
	}
	shown := r.Headers.Missing
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return []Issue{{
		Type: "Missing Security Headers",
		Description: fmt.Sprintf("Missing %d security header(s): %s",
			len(r.Headers.Missing), strings.Join(shown, ", ")),
		Risk:     "Reduced protection against attacks",
		Severity: SeverityLow,
	}}
}

func robotsIssues(r *Report) []Issue {
	if r.RobotsAllowed || !r.RobotsBypassed {
		return nil
	}
	return []Issue{{
		Type:        "Robots.txt Restriction",
		Description: "Site blocks automated scanning",
		Risk:        "May be hiding from search engines",
		Severity:    SeverityLow,
	}}
}
