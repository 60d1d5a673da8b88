package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"go.uber.org/zap"

	"github.com/Juggy247/Security-Scanner-Project/registry"
)

// Checks is the check library. Every method is a pure function over its
// inputs and the injected registries; a failing lookup degrades the result,
// it never fails the scan.
type Checks struct {
	reg registry.Registry
	age AgeLookup
	tls TLSProber
	log *zap.Logger
}

func NewChecks(reg registry.Registry, age AgeLookup, tls TLSProber, log *zap.Logger) *Checks {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checks{reg: reg, age: age, tls: tls, log: log}
}

//
// DOMAIN AGE (WHOIS)
//

// ErrAgeUnavailable means the WHOIS record carries no creation date, often
// because of WHOIS privacy protection.
var ErrAgeUnavailable = errors.New("creation date not available in WHOIS data")

// AgeLookup is the consumed domain-age collaborator.
type AgeLookup interface {
	CreationDate(ctx context.Context, domain string) (time.Time, error)
}

// WhoisAgeLookup resolves the creation date over live WHOIS.
type WhoisAgeLookup struct {
	Timeout time.Duration
}

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

func (w *WhoisAgeLookup) CreationDate(ctx context.Context, domain string) (time.Time, error) {
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	client := whois.NewClient()
	client.SetTimeout(timeout)

	raw, err := client.Whois(domain)
	if err != nil {
		return time.Time{}, fmt.Errorf("whois lookup failed: %w", err)
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil || parsed.Domain == nil {
		// Subdomain records often have no WHOIS of their own; fall back to
		// the parent domain (e.g. login.example.com -> example.com).
		if parts := strings.Split(domain, "."); len(parts) > 2 {
			return w.CreationDate(ctx, strings.Join(parts[1:], "."))
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("whois parsing failed: %w", err)
		}
		return time.Time{}, ErrAgeUnavailable
	}

	createdStr := strings.TrimSpace(parsed.Domain.CreatedDate)
	if createdStr == "" {
		return time.Time{}, ErrAgeUnavailable
	}
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, createdStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrAgeUnavailable
}

// CheckDomainAge classifies how recently the domain was registered:
// under 30 days is very new, under 180 days is new. An unavailable lookup
// fails open.
func (c *Checks) CheckDomainAge(ctx context.Context, domain string) *AgeResult {
	lookupDomain := stripWWW(stripPort(domain))

	created, err := c.age.CreationDate(ctx, lookupDomain)
	if err != nil {
		c.log.Debug("domain age unavailable", zap.String("domain", lookupDomain), zap.Error(err))
		return &AgeResult{Available: false, Err: err.Error()}
	}

	daysOld := int(time.Since(created).Hours() / 24)
	isVeryNew := daysOld < 30
	isNew := daysOld < 180

	category := "Established (Low Risk)"
	if isVeryNew {
		category = "Very New (High Risk)"
	} else if isNew {
		category = "New (Medium Risk)"
	}

	return &AgeResult{
		Available:    true,
		CreationDate: created.Format("2006-01-02"),
		DaysOld:      daysOld,
		YearsOld:     math.Round(float64(daysOld)/365.25*10) / 10,
		IsNew:        isNew,
		IsVeryNew:    isVeryNew,
		AgeCategory:  category,
	}
}

//
// REGISTRY-BACKED CHECKS
//

// CheckBlacklist consults the blacklist registry. An unreachable registry
// degrades to not-blacklisted with the error attached.
func (c *Checks) CheckBlacklist(ctx context.Context, domain string) *BlacklistResult {
	listed, sources, err := c.reg.Blacklist.IsBlacklisted(ctx, stripPort(domain))
	if err != nil {
		c.log.Warn("blacklist lookup failed", zap.String("domain", domain), zap.Error(err))
		return &BlacklistResult{Listed: false, Sources: []string{}, Err: err.Error()}
	}
	if sources == nil {
		sources = []string{}
	}
	return &BlacklistResult{Listed: listed, Sources: sources}
}

// CheckSuspiciousTLD flags domains under high-abuse TLDs.
func (c *Checks) CheckSuspiciousTLD(ctx context.Context, domain string) *TLDResult {
	parts := strings.Split(stripPort(domain), ".")
	tld := strings.ToLower(parts[len(parts)-1])

	tlds, err := c.reg.TLDs.SuspiciousTLDs(ctx)
	if err != nil {
		c.log.Warn("tld lookup failed", zap.String("domain", domain), zap.Error(err))
		return &TLDResult{TLD: tld, Suspicious: false, Err: err.Error()}
	}

	suspicious := false
	for _, s := range tlds {
		if s == tld {
			suspicious = true
			break
		}
	}

	result := &TLDResult{TLD: tld, Suspicious: suspicious}
	if suspicious {
		if details, err := c.reg.TLDs.TLDDetails(ctx, tld); err == nil && details != nil {
			result.Reason = details.Reason
			result.RiskLevel = details.RiskLevel
		}
	}
	return result
}

// CheckBrandImpersonation fires only when BOTH a protected brand name and a
// suspicious keyword occur in the domain; a brand match alone is legitimate
// (paypal.com contains "paypal").
func (c *Checks) CheckBrandImpersonation(ctx context.Context, domain string) *BrandResult {
	domainLower := strings.ToLower(stripPort(domain))

	brands, err := c.reg.Brands.Brands(ctx)
	if err != nil {
		c.log.Warn("brand lookup failed", zap.String("domain", domain), zap.Error(err))
		return &BrandResult{Impersonation: false, Err: err.Error()}
	}

	var foundBrands []string
	for _, brand := range brands {
		if strings.Contains(domainLower, brand) {
			foundBrands = append(foundBrands, brand)
		}
	}
	if len(foundBrands) == 0 {
		return &BrandResult{Impersonation: false}
	}

	keywords, err := c.reg.Keywords.Keywords(ctx)
	if err != nil {
		c.log.Warn("keyword lookup failed", zap.String("domain", domain), zap.Error(err))
		return &BrandResult{Impersonation: false, Err: err.Error()}
	}

	var foundKeywords []string
	for _, kw := range keywords {
		if strings.Contains(domainLower, kw) {
			foundKeywords = append(foundKeywords, kw)
		}
	}

	return &BrandResult{
		Impersonation:  len(foundKeywords) > 0,
		SuspectedBrand: foundBrands[0],
		Keywords:       foundKeywords,
		Domain:         domain,
	}
}

//
// LEXICAL CHECKS
//

// Confusable two-character sequences that render like a single different
// character. Ordered so repeated runs report patterns identically.
var lookalikePairs = []struct {
	fake string
	real string
}{
	{"rn", "m"},
	{"vv", "w"},
	{"cl", "d"},
	{"0", "o"},
	{"1", "l"},
}

// CheckHomograph collects every confusable-character signal in the domain:
// lookalike sequences, mixed Latin/Cyrillic scripts, excessive hyphens and
// non-ASCII characters. All matched reasons are reported, not just the first.
func (c *Checks) CheckHomograph(domain string) *HomographResult {
	domain = stripPort(domain)
	patterns := []string{}
	domainLower := strings.ToLower(domain)

	for _, pair := range lookalikePairs {
		if strings.Contains(domainLower, pair.fake) {
			patterns = append(patterns, fmt.Sprintf("Contains '%s' (looks like '%s')", pair.fake, pair.real))
		}
	}

	hasCyrillic, hasLatin, hasNonASCII := false, false, false
	hyphens := 0
	for _, r := range domain {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			hasCyrillic = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLatin = true
		case r == '-':
			hyphens++
		}
		if r > unicode.MaxASCII {
			hasNonASCII = true
		}
	}

	if hasCyrillic && hasLatin {
		patterns = append(patterns, "Mixed Latin and Cyrillic characters")
	}
	if hyphens > 3 {
		patterns = append(patterns, fmt.Sprintf("Excessive hyphens (%d)", hyphens))
	}
	if hasNonASCII {
		patterns = append(patterns, "Contains non-ASCII characters")
	}

	return &HomographResult{
		Suspicious: len(patterns) > 0,
		Patterns:   patterns,
		Domain:     domain,
	}
}

// CheckDomainLength measures the domain excluding the final label (TLD).
// Over 30 characters is very high risk, over 20 high; over 15 is noted but
// not flagged.
func (c *Checks) CheckDomainLength(domain string) *LengthResult {
	domain = stripPort(domain)
	parts := strings.Split(domain, ".")
	withoutTLD := strings.Join(parts[:len(parts)-1], ".")
	length := len(withoutTLD)

	var riskLevel string
	var suspicious bool
	switch {
	case length > 30:
		riskLevel, suspicious = "very_high", true
	case length > 20:
		riskLevel, suspicious = "high", true
	case length > 15:
		riskLevel, suspicious = "medium", false
	default:
		riskLevel, suspicious = "low", false
	}

	return &LengthResult{
		Length:           length,
		FullDomainLength: len(domain),
		Suspicious:       suspicious,
		RiskLevel:        riskLevel,
	}
}

// CheckSubdomainDepth counts labels beyond the registrable domain;
// more than two levels of subdomains is a phishing pattern.
func (c *Checks) CheckSubdomainDepth(domain string) *DepthResult {
	domain = stripPort(domain)
	parts := strings.Split(domain, ".")
	depth := len(parts) - 2

	return &DepthResult{
		Depth:      depth,
		Parts:      parts,
		Suspicious: depth > 2,
		FullDomain: domain,
	}
}

var commonSubdomains = map[string]bool{
	"www": true, "www2": true, "mail": true, "ftp": true, "webmail": true,
}

// CheckDomainInTitle verifies the site's own name appears in its page title;
// legitimate sites almost always mention themselves.
func (c *Checks) CheckDomainInTitle(domain, title string) *TitleResult {
	if title == "" {
		return &TitleResult{InTitle: false, Reason: "No title found"}
	}

	parts := strings.Split(stripPort(domain), ".")
	main := parts[0]
	if len(parts) <= 1 {
		main = domain
	}
	if commonSubdomains[main] && len(parts) > 2 {
		main = parts[1]
	}

	return &TitleResult{
		InTitle:       strings.Contains(strings.ToLower(title), strings.ToLower(main)),
		DomainChecked: main,
		Title:         title,
	}
}

func stripPort(domain string) string {
	if i := strings.IndexByte(domain, ':'); i >= 0 {
		return domain[:i]
	}
	return domain
}

func stripWWW(domain string) string {
	return strings.TrimPrefix(domain, "www.")
}
