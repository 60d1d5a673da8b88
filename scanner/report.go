// Package scanner is the multi-signal assessment engine: it fetches a target
// once, runs the independent heuristic checks over the fetched document and
// the domain, and aggregates the outcomes into a severity-classified verdict.
package scanner

import (
	"time"

	"github.com/google/uuid"
)

// Report is the result of one scan invocation. Every check owns exactly one
// slot; a slot is written at most once, by the goroutine running that check.
// A degraded check still fills its slot (Available=false plus the error)
// instead of leaving it nil, so a nil slot means the check never ran.
type Report struct {
	ScanID    string    `json:"scan_id"`
	URL       string    `json:"url"`
	FinalURL  string    `json:"final_url,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`

	RobotsAllowed  bool   `json:"robots_allowed"`
	RobotsBypassed bool   `json:"robots_bypassed"`
	Title          string `json:"title,omitempty"`

	HTTPS   *HTTPSResult   `json:"https,omitempty"`
	SSL     *TLSResult     `json:"ssl,omitempty"`
	Headers *HeadersResult `json:"headers,omitempty"`
	Forms   *FormsResult   `json:"forms,omitempty"`

	DomainAge          *AgeResult           `json:"domain_age,omitempty"`
	Blacklist          *BlacklistResult     `json:"blacklist,omitempty"`
	Homograph          *HomographResult     `json:"homograph,omitempty"`
	DomainInTitle      *TitleResult         `json:"domain_in_title,omitempty"`
	FormRedirects      *FormRedirectsResult `json:"form_redirects,omitempty"`
	DomainLength       *LengthResult        `json:"domain_length,omitempty"`
	SuspiciousTLD      *TLDResult           `json:"suspicious_tld,omitempty"`
	SubdomainDepth     *DepthResult         `json:"subdomain_depth,omitempty"`
	BrandImpersonation *BrandResult         `json:"brand_impersonation,omitempty"`
}

func NewReport(url string) *Report {
	return &Report{
		ScanID:    uuid.NewString(),
		URL:       url,
		ScannedAt: time.Now().UTC(),
	}
}

// HTTPSResult is the final-scheme check outcome.
type HTTPSResult struct {
	Enforced          bool `json:"https_enforced"`
	RedirectedToHTTPS bool `json:"redirected_to_https"`
}

// TLSResult is the live handshake check outcome. Available=false means the
// handshake could not be attempted or timed out; Valid=false means the
// handshake completed but the certificate failed verification. Only the
// latter is a finding.
type TLSResult struct {
	Available bool   `json:"available"`
	Valid     bool   `json:"valid"`
	Expires   string `json:"expires,omitempty"`
	Issuer    string `json:"issuer,omitempty"`
	DaysLeft  int    `json:"days_left,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Cipher    string `json:"cipher,omitempty"`
	Err       string `json:"error,omitempty"`
}

type HeadersResult struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

type InsecureForm struct {
	Type   string `json:"type"`
	Method string `json:"method"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

type FormsResult struct {
	Available bool           `json:"available"`
	Insecure  []InsecureForm `json:"insecure"`
}

type AgeResult struct {
	Available    bool    `json:"available"`
	CreationDate string  `json:"creation_date,omitempty"`
	DaysOld      int     `json:"days_old,omitempty"`
	YearsOld     float64 `json:"years_old,omitempty"`
	IsNew        bool    `json:"is_new"`
	IsVeryNew    bool    `json:"is_very_new"`
	AgeCategory  string  `json:"age_category,omitempty"`
	Err          string  `json:"error,omitempty"`
}

type BlacklistResult struct {
	Listed  bool     `json:"is_blacklisted"`
	Sources []string `json:"blacklist_sources"`
	Err     string   `json:"error,omitempty"`
}

type HomographResult struct {
	Suspicious bool     `json:"is_suspicious"`
	Patterns   []string `json:"patterns_found"`
	Domain     string   `json:"domain"`
}

type TitleResult struct {
	InTitle       bool   `json:"domain_in_title"`
	DomainChecked string `json:"domain_checked,omitempty"`
	Title         string `json:"title,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type FormRedirect struct {
	FormIndex      int    `json:"form_index"`
	Method         string `json:"method"`
	Action         string `json:"action"`
	ExternalDomain string `json:"external_domain"`
	BaseDomain     string `json:"base_domain"`
}

type FormRedirectsResult struct {
	Available bool           `json:"available"`
	External  []FormRedirect `json:"external"`
}

type LengthResult struct {
	Length           int    `json:"length"`
	FullDomainLength int    `json:"full_domain_length"`
	Suspicious       bool   `json:"is_suspicious"`
	RiskLevel        string `json:"risk_level"`
}

type TLDResult struct {
	TLD        string `json:"tld"`
	Suspicious bool   `json:"is_suspicious"`
	Reason     string `json:"reason,omitempty"`
	RiskLevel  string `json:"risk_level,omitempty"`
	Err        string `json:"error,omitempty"`
}

type DepthResult struct {
	Depth      int      `json:"depth"`
	Parts      []string `json:"parts"`
	Suspicious bool     `json:"is_suspicious"`
	FullDomain string   `json:"full_domain"`
}

type BrandResult struct {
	Impersonation  bool     `json:"potential_impersonation"`
	SuspectedBrand string   `json:"suspected_brand,omitempty"`
	Keywords       []string `json:"suspicious_keywords,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	Err            string   `json:"error,omitempty"`
}
