package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juggy247/Security-Scanner-Project/registry"
)

type fakeAgeLookup struct {
	created time.Time
	err     error
}

func (f fakeAgeLookup) CreationDate(context.Context, string) (time.Time, error) {
	return f.created, f.err
}

type failingBlacklist struct{}

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, []string, error) {
	return false, nil, errors.New("backend down")
}

func seededChecks(t *testing.T) *Checks {
	t.Helper()
	return NewChecks(registry.FromStore(registry.NewSeededMemory()), nil, nil, nil)
}

func checksWithAge(t *testing.T, age AgeLookup) *Checks {
	t.Helper()
	return NewChecks(registry.FromStore(registry.NewSeededMemory()), age, nil, nil)
}

func TestCheckDomainAgeCategories(t *testing.T) {
	tests := []struct {
		name      string
		daysAgo   int
		isNew     bool
		isVeryNew bool
		category  string
	}{
		{"registered yesterday", 1, true, true, "Very New (High Risk)"},
		{"just under very-new cutoff", 29, true, true, "Very New (High Risk)"},
		{"exactly thirty days", 30, true, false, "New (Medium Risk)"},
		{"just under new cutoff", 179, true, false, "New (Medium Risk)"},
		{"exactly 180 days", 180, false, false, "Established (Low Risk)"},
		{"years old", 3000, false, false, "Established (Low Risk)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := time.Now().Add(-time.Duration(tt.daysAgo)*24*time.Hour - time.Hour)
			c := checksWithAge(t, fakeAgeLookup{created: created})

			got := c.CheckDomainAge(context.Background(), "example.com")
			require.True(t, got.Available)
			assert.Equal(t, tt.isNew, got.IsNew)
			assert.Equal(t, tt.isVeryNew, got.IsVeryNew)
			assert.Equal(t, tt.category, got.AgeCategory)
		})
	}
}

func TestCheckDomainAgeUnavailable(t *testing.T) {
	c := checksWithAge(t, fakeAgeLookup{err: ErrAgeUnavailable})

	got := c.CheckDomainAge(context.Background(), "example.com")
	assert.False(t, got.Available)
	assert.Equal(t, ErrAgeUnavailable.Error(), got.Err)
	assert.False(t, got.IsNew)
}

func TestCheckDomainAgeStripsWWWAndPort(t *testing.T) {
	lookup := &recordingAgeLookup{created: time.Now().Add(-400 * 24 * time.Hour)}
	c := checksWithAge(t, lookup)

	c.CheckDomainAge(context.Background(), "www.example.com:8443")
	assert.Equal(t, "example.com", lookup.asked)
}

type recordingAgeLookup struct {
	created time.Time
	asked   string
}

func (r *recordingAgeLookup) CreationDate(_ context.Context, domain string) (time.Time, error) {
	r.asked = domain
	return r.created, nil
}

func TestCheckBlacklist(t *testing.T) {
	store := registry.NewSeededMemory()
	now := time.Now().UTC()
	require.NoError(t, store.AddBlacklisted(context.Background(), registry.BlacklistEntry{
		Domain: "evil.example.com", Source: "manual", AddedAt: now, UpdatedAt: now, Active: true,
	}))
	c := NewChecks(registry.FromStore(store), nil, nil, nil)

	listed := c.CheckBlacklist(context.Background(), "evil.example.com")
	assert.True(t, listed.Listed)
	assert.Equal(t, []string{"manual"}, listed.Sources)

	clean := c.CheckBlacklist(context.Background(), "example.com")
	assert.False(t, clean.Listed)
	assert.Empty(t, clean.Sources)
}

func TestCheckBlacklistFailsOpen(t *testing.T) {
	reg := registry.FromStore(registry.NewSeededMemory())
	reg.Blacklist = failingBlacklist{}
	c := NewChecks(reg, nil, nil, nil)

	got := c.CheckBlacklist(context.Background(), "example.com")
	assert.False(t, got.Listed)
	assert.Equal(t, "backend down", got.Err)
}

func TestCheckSuspiciousTLD(t *testing.T) {
	c := seededChecks(t)

	flagged := c.CheckSuspiciousTLD(context.Background(), "login.example.tk")
	assert.True(t, flagged.Suspicious)
	assert.Equal(t, "tk", flagged.TLD)
	assert.Equal(t, "critical", flagged.RiskLevel)
	assert.NotEmpty(t, flagged.Reason)

	clean := c.CheckSuspiciousTLD(context.Background(), "example.com")
	assert.False(t, clean.Suspicious)
	assert.Equal(t, "com", clean.TLD)
	assert.Empty(t, clean.RiskLevel)
}

func TestCheckBrandImpersonation(t *testing.T) {
	c := seededChecks(t)

	tests := []struct {
		name          string
		domain        string
		impersonation bool
		brand         string
	}{
		{"legitimate brand domain", "paypal.com", false, "paypal"},
		{"brand plus keyword", "paypal-verify.com", true, "paypal"},
		{"brand plus keyword in subdomain", "secure.paypal-login.example.com", true, "paypal"},
		{"keyword without brand", "verify-account.example.com", false, ""},
		{"no brand no keyword", "example.com", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CheckBrandImpersonation(context.Background(), tt.domain)
			assert.Equal(t, tt.impersonation, got.Impersonation)
			if tt.impersonation {
				assert.Equal(t, tt.brand, got.SuspectedBrand)
				assert.NotEmpty(t, got.Keywords)
			}
		})
	}
}

func TestCheckHomograph(t *testing.T) {
	c := seededChecks(t)

	tests := []struct {
		name       string
		domain     string
		suspicious bool
		patterns   []string
	}{
		{"clean domain", "example.xyz", false, []string{}},
		{"rn looks like m", "rnicrosoft.com", true, []string{"Contains 'rn' (looks like 'm')"}},
		{"zero for o", "g00gle.com", true, []string{"Contains '0' (looks like 'o')"}},
		{"excessive hyphens", "a-b-c-d-e.com", true, []string{"Excessive hyphens (4)"}},
		{"non-ascii", "exämple.com", true, []string{"Contains non-ASCII characters"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CheckHomograph(tt.domain)
			assert.Equal(t, tt.suspicious, got.Suspicious)
			assert.Equal(t, tt.patterns, got.Patterns)
		})
	}
}

func TestCheckHomographMixedScripts(t *testing.T) {
	c := seededChecks(t)

	// "а" and "р" are Cyrillic despite rendering like Latin.
	got := c.CheckHomograph("раypal.com")
	assert.True(t, got.Suspicious)
	assert.Contains(t, got.Patterns, "Mixed Latin and Cyrillic characters")
	assert.Contains(t, got.Patterns, "Contains non-ASCII characters")
}

func TestCheckHomographDeterministicOrder(t *testing.T) {
	c := seededChecks(t)

	first := c.CheckHomograph("rn0-a-b-c-d.com")
	for range 20 {
		assert.Equal(t, first.Patterns, c.CheckHomograph("rn0-a-b-c-d.com").Patterns)
	}
}

func TestCheckDomainLength(t *testing.T) {
	c := seededChecks(t)

	tests := []struct {
		name       string
		domain     string
		length     int
		suspicious bool
		risk       string
	}{
		{"short", "example.com", 7, false, "low"},
		{"twenty noted not flagged", "abcdefghijklmnopqrst.com", 20, false, "medium"},
		{"twenty-one flagged", "abcdefghijklmnopqrstu.com", 21, true, "high"},
		{"thirty-one flagged very high", "abcdefghijklmnopqrstuvwxyzabcde.com", 31, true, "very_high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CheckDomainLength(tt.domain)
			assert.Equal(t, tt.length, got.Length)
			assert.Equal(t, tt.suspicious, got.Suspicious)
			assert.Equal(t, tt.risk, got.RiskLevel)
		})
	}
}

func TestCheckSubdomainDepth(t *testing.T) {
	c := seededChecks(t)

	tests := []struct {
		domain     string
		depth      int
		suspicious bool
	}{
		{"example.com", 0, false},
		{"www.example.com", 1, false},
		{"a.b.example.com", 2, false},
		{"a.b.c.example.com", 3, true},
	}
	for _, tt := range tests {
		got := c.CheckSubdomainDepth(tt.domain)
		assert.Equal(t, tt.depth, got.Depth, tt.domain)
		assert.Equal(t, tt.suspicious, got.Suspicious, tt.domain)
	}
}

func TestCheckDomainInTitle(t *testing.T) {
	c := seededChecks(t)

	tests := []struct {
		name    string
		domain  string
		title   string
		inTitle bool
		checked string
	}{
		{"name in title", "example.com", "Example - Home", true, "example"},
		{"name missing", "example.com", "Totally Different Site", false, "example"},
		{"www skipped", "www.example.com", "Example shop", true, "example"},
		{"case insensitive", "EXAMPLE.com", "welcome to example", true, "EXAMPLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CheckDomainInTitle(tt.domain, tt.title)
			assert.Equal(t, tt.inTitle, got.InTitle)
			assert.Equal(t, tt.checked, got.DomainChecked)
		})
	}
}

func TestCheckDomainInTitleNoTitle(t *testing.T) {
	c := seededChecks(t)

	got := c.CheckDomainInTitle("example.com", "")
	assert.False(t, got.InTitle)
	assert.Equal(t, "No title found", got.Reason)
}
