// Package ml holds the boundary to the statistical phishing classifier:
// feature extraction from scans, the prediction client, and the fusion of
// classifier probability with the heuristic verdict.
package ml

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Juggy247/Security-Scanner-Project/scanner"
)

// FeatureVector is the fixed-schema numeric input to the classifier. Field
// order matches the order used at training time and must never change;
// missing signals take the documented defaults instead of being omitted.
type FeatureVector struct {
	// Lexical URL features.
	URLLength           float64 `json:"url_length"`
	DomainLength        float64 `json:"domain_length"`
	PathLength          float64 `json:"path_length"`
	HasIPAddress        float64 `json:"has_ip_address"`
	NumDots             float64 `json:"num_dots"`
	NumHyphens          float64 `json:"num_hyphens"`
	NumUnderscores      float64 `json:"num_underscores"`
	NumSlashes          float64 `json:"num_slashes"`
	NumQuestionMarks    float64 `json:"num_question_marks"`
	NumAmpersands       float64 `json:"num_ampersands"`
	NumEquals           float64 `json:"num_equals"`
	NumAtSymbols        float64 `json:"num_at_symbols"`
	HasHTTPS            float64 `json:"has_https"`
	HasPort             float64 `json:"has_port"`
	HasDoubleSlashPath  float64 `json:"has_double_slash_in_path"`
	HasSuspiciousTLD    float64 `json:"has_suspicious_tld"`
	DigitRatio          float64 `json:"digit_ratio"`
	SpecialCharRatio    float64 `json:"special_char_ratio"`

	// Scan-report features; defaults apply when no report is available.
	DomainAgeDays          float64 `json:"domain_age_days"`
	IsNewDomain            float64 `json:"is_new_domain"`
	IsVeryNewDomain        float64 `json:"is_very_new_domain"`
	HTTPSEnforced          float64 `json:"https_enforced"`
	RedirectedToHTTPS      float64 `json:"redirected_to_https"`
	SSLValid               float64 `json:"ssl_valid"`
	IsBlacklisted          float64 `json:"is_blacklisted"`
	HomographSuspicious    float64 `json:"homograph_suspicious"`
	HomographPatternsCount float64 `json:"homograph_patterns_count"`
	DomainInTitle          float64 `json:"domain_in_title"`
	NumMissingHeaders      float64 `json:"num_missing_headers"`
	NumPresentHeaders      float64 `json:"num_present_headers"`
	NumInsecureForms       float64 `json:"num_insecure_forms"`
	NumExternalRedirects   float64 `json:"num_external_form_redirects"`
	DomainLengthSuspicious float64 `json:"domain_length_suspicious"`
	TLDSuspicious          float64 `json:"tld_suspicious"`
	SubdomainDepth         float64 `json:"subdomain_depth"`
	SubdomainSuspicious    float64 `json:"subdomain_suspicious"`
	BrandImpersonation     float64 `json:"brand_impersonation"`
	NumSuspiciousKeywords  float64 `json:"num_suspicious_keywords"`
}

// FeatureNames returns the stable training-time feature order.
func FeatureNames() []string {
	return []string{
		"url_length", "domain_length", "path_length", "has_ip_address",
		"num_dots", "num_hyphens", "num_underscores", "num_slashes",
		"num_question_marks", "num_ampersands", "num_equals", "num_at_symbols",
		"has_https", "has_port", "has_double_slash_in_path", "has_suspicious_tld",
		"digit_ratio", "special_char_ratio",
		"domain_age_days", "is_new_domain", "is_very_new_domain",
		"https_enforced", "redirected_to_https", "ssl_valid", "is_blacklisted",
		"homograph_suspicious", "homograph_patterns_count", "domain_in_title",
		"num_missing_headers", "num_present_headers", "num_insecure_forms",
		"num_external_form_redirects", "domain_length_suspicious",
		"tld_suspicious", "subdomain_depth", "subdomain_suspicious",
		"brand_impersonation", "num_suspicious_keywords",
	}
}

// Values returns the vector in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.URLLength, v.DomainLength, v.PathLength, v.HasIPAddress,
		v.NumDots, v.NumHyphens, v.NumUnderscores, v.NumSlashes,
		v.NumQuestionMarks, v.NumAmpersands, v.NumEquals, v.NumAtSymbols,
		v.HasHTTPS, v.HasPort, v.HasDoubleSlashPath, v.HasSuspiciousTLD,
		v.DigitRatio, v.SpecialCharRatio,
		v.DomainAgeDays, v.IsNewDomain, v.IsVeryNewDomain,
		v.HTTPSEnforced, v.RedirectedToHTTPS, v.SSLValid, v.IsBlacklisted,
		v.HomographSuspicious, v.HomographPatternsCount, v.DomainInTitle,
		v.NumMissingHeaders, v.NumPresentHeaders, v.NumInsecureForms,
		v.NumExternalRedirects, v.DomainLengthSuspicious,
		v.TLDSuspicious, v.SubdomainDepth, v.SubdomainSuspicious,
		v.BrandImpersonation, v.NumSuspiciousKeywords,
	}
}

var ipPattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// Frozen at training time; independent of the live TLD registry so a
// registry edit cannot shift the feature distribution under the model.
var trainingTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".zip", ".mov"}

// ExtractURLFeatures builds the lexical half of the vector from a bare URL,
// with report-based fields at their no-report defaults. Used for quick
// URL-only predictions.
func ExtractURLFeatures(rawURL string) FeatureVector {
	v := FeatureVector{
		DomainAgeDays:     -1,
		NumMissingHeaders: 5, // all hardening headers assumed missing
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		u = &url.URL{}
	}
	domain := u.Host
	path := u.Path

	v.URLLength = float64(len(rawURL))
	v.DomainLength = float64(len(domain))
	v.PathLength = float64(len(path))
	v.HasIPAddress = boolFeature(ipPattern.MatchString(domain))
	v.NumDots = float64(strings.Count(domain, "."))
	v.NumHyphens = float64(strings.Count(domain, "-"))
	v.NumUnderscores = float64(strings.Count(domain, "_"))
	v.NumSlashes = float64(strings.Count(rawURL, "/"))
	v.NumQuestionMarks = float64(strings.Count(rawURL, "?"))
	v.NumAmpersands = float64(strings.Count(rawURL, "&"))
	v.NumEquals = float64(strings.Count(rawURL, "="))
	v.NumAtSymbols = float64(strings.Count(rawURL, "@"))
	v.HasHTTPS = boolFeature(u.Scheme == "https")
	v.HasPort = boolFeature(u.Port() != "")
	v.HasDoubleSlashPath = boolFeature(strings.Contains(path, "//"))
	v.HasSuspiciousTLD = boolFeature(hasTrainingTLD(domain))
	v.DigitRatio = digitRatio(rawURL)
	v.SpecialCharRatio = specialCharRatio(rawURL)

	return v
}

// ExtractFeatures builds the full vector from a URL and its scan report.
func ExtractFeatures(rawURL string, r *scanner.Report) FeatureVector {
	v := ExtractURLFeatures(rawURL)
	if r == nil {
		return v
	}

	if r.DomainAge != nil && r.DomainAge.Available {
		v.DomainAgeDays = float64(r.DomainAge.DaysOld)
		v.IsNewDomain = boolFeature(r.DomainAge.IsNew)
		v.IsVeryNewDomain = boolFeature(r.DomainAge.IsVeryNew)
	}
	if r.HTTPS != nil {
		v.HTTPSEnforced = boolFeature(r.HTTPS.Enforced)
		v.RedirectedToHTTPS = boolFeature(r.HTTPS.RedirectedToHTTPS)
	}
	if r.SSL != nil {
		v.SSLValid = boolFeature(r.SSL.Valid)
	}
	if r.Blacklist != nil {
		v.IsBlacklisted = boolFeature(r.Blacklist.Listed)
	}
	if r.Homograph != nil {
		v.HomographSuspicious = boolFeature(r.Homograph.Suspicious)
		v.HomographPatternsCount = float64(len(r.Homograph.Patterns))
	}
	if r.DomainInTitle != nil {
		v.DomainInTitle = boolFeature(r.DomainInTitle.InTitle)
	}
	if r.Headers != nil {
		v.NumMissingHeaders = float64(len(r.Headers.Missing))
		v.NumPresentHeaders = float64(len(r.Headers.Present))
	}
	if r.Forms != nil {
		v.NumInsecureForms = float64(len(r.Forms.Insecure))
	}
	if r.FormRedirects != nil {
		v.NumExternalRedirects = float64(len(r.FormRedirects.External))
	}
	if r.DomainLength != nil {
		v.DomainLengthSuspicious = boolFeature(r.DomainLength.Suspicious)
	}
	if r.SuspiciousTLD != nil {
		v.TLDSuspicious = boolFeature(r.SuspiciousTLD.Suspicious)
	}
	if r.SubdomainDepth != nil {
		v.SubdomainDepth = float64(r.SubdomainDepth.Depth)
		v.SubdomainSuspicious = boolFeature(r.SubdomainDepth.Suspicious)
	}
	if r.BrandImpersonation != nil {
		v.BrandImpersonation = boolFeature(r.BrandImpersonation.Impersonation)
		v.NumSuspiciousKeywords = float64(len(r.BrandImpersonation.Keywords))
	}
	return v
}

func hasTrainingTLD(domain string) bool {
	for _, tld := range trainingTLDs {
		if strings.HasSuffix(domain, tld) {
			return true
		}
	}
	return false
}

func digitRatio(text string) float64 {
	if text == "" {
		return 0
	}
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(text))
}

func specialCharRatio(text string) float64 {
	if text == "" {
		return 0
	}
	special := 0
	for _, r := range text {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			special++
		}
	}
	return float64(special) / float64(len(text))
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
