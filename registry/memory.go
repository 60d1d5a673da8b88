package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store. It backs tests and single-node deployments
// where the registries are managed through seed files rather than a database.
type Memory struct {
	mu        sync.RWMutex
	tlds      map[string]TLDEntry
	brands    map[string]BrandEntry
	keywords  map[string]KeywordEntry
	blacklist map[string]BlacklistEntry
}

func NewMemory() *Memory {
	return &Memory{
		tlds:      make(map[string]TLDEntry),
		brands:    make(map[string]BrandEntry),
		keywords:  make(map[string]KeywordEntry),
		blacklist: make(map[string]BlacklistEntry),
	}
}

// NewSeededMemory returns a Memory store preloaded with the default risk
// registries: the high-abuse TLD list, widely impersonated brands and the
// phishing keyword set.
func NewSeededMemory() *Memory {
	m := NewMemory()
	now := time.Now()

	seedTLDs := []TLDEntry{
		{TLD: "tk", RiskLevel: "critical", Reason: "Free domain, 72% abuse rate"},
		{TLD: "ml", RiskLevel: "critical", Reason: "Free domain, 68% abuse rate"},
		{TLD: "ga", RiskLevel: "critical", Reason: "Free domain, 65% abuse rate"},
		{TLD: "cf", RiskLevel: "critical", Reason: "Free domain, 60% abuse rate"},
		{TLD: "gq", RiskLevel: "critical", Reason: "Free domain, 58% abuse rate"},
		{TLD: "zip", RiskLevel: "high", Reason: "Confused with file format"},
		{TLD: "mov", RiskLevel: "high", Reason: "Confused with video format"},
		{TLD: "xyz", RiskLevel: "medium", Reason: "Cheap domain"},
		{TLD: "top", RiskLevel: "medium", Reason: "Cheap domain"},
		{TLD: "click", RiskLevel: "medium", Reason: "Clickbait abuse"},
	}
	for _, e := range seedTLDs {
		e.AddedBy = "seed"
		e.AddedAt, e.UpdatedAt, e.Active = now, now, true
		m.tlds[e.TLD] = e
	}

	seedBrands := map[string]string{
		"paypal":    "payment",
		"stripe":    "payment",
		"google":    "technology",
		"microsoft": "technology",
		"apple":     "technology",
		"amazon":    "ecommerce",
		"facebook":  "social_media",
		"instagram": "social_media",
		"netflix":   "entertainment",
	}
	for name, cat := range seedBrands {
		m.brands[name] = BrandEntry{Name: name, Category: cat, AddedBy: "seed", AddedAt: now, UpdatedAt: now, Active: true}
	}

	seedKeywords := map[string]string{
		"verify":  "action_words",
		"confirm": "action_words",
		"update":  "action_words",
		"login":   "action_words",
		"signin":  "action_words",
		"secure":  "trust_words",
		"official": "trust_words",
		"account": "service_words",
		"banking": "service_words",
		"payment": "service_words",
		"wallet":  "service_words",
	}
	for kw, cat := range seedKeywords {
		m.keywords[kw] = KeywordEntry{Keyword: kw, Category: cat, RiskLevel: "medium", AddedAt: now, UpdatedAt: now, Active: true}
	}

	return m
}

func (m *Memory) Close() error { return nil }

//
// LOOKUPS
//

func (m *Memory) SuspiciousTLDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.tlds))
	for tld, e := range m.tlds {
		if e.Active {
			out = append(out, tld)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) TLDDetails(ctx context.Context, tld string) (*TLDEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.tlds[normalizeTLD(tld)]
	if !ok {
		return nil, nil
	}
	cp := e
	return &cp, nil
}

func (m *Memory) Brands(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.brands))
	for name, e := range m.brands {
		if e.Active {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Keywords(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.keywords))
	for kw, e := range m.keywords {
		if e.Active {
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) IsBlacklisted(ctx context.Context, domain string) (bool, []string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.blacklist[strings.ToLower(domain)]
	if !ok || !e.Active {
		return false, nil, nil
	}
	return true, []string{e.Source}, nil
}

//
// MANAGEMENT
//

func (m *Memory) AddTLD(ctx context.Context, e TLDEntry) error {
	e.TLD = normalizeTLD(e.TLD)
	if e.TLD == "" {
		return fmt.Errorf("registry: empty tld")
	}
	if e.RiskLevel == "" {
		e.RiskLevel = "medium"
	}
	if !riskLevels[e.RiskLevel] {
		return fmt.Errorf("registry: invalid risk level %q", e.RiskLevel)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tlds[e.TLD]; ok {
		return ErrExists
	}
	stampNew(&e.AddedAt, &e.UpdatedAt)
	e.Active = true
	m.tlds[e.TLD] = e
	return nil
}

func (m *Memory) UpdateTLD(ctx context.Context, tld string, u TLDUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tlds[normalizeTLD(tld)]
	if !ok {
		return ErrNotFound
	}
	if u.RiskLevel != nil {
		e.RiskLevel = *u.RiskLevel
	}
	if u.Reason != nil {
		e.Reason = *u.Reason
	}
	if u.Active != nil {
		e.Active = *u.Active
	}
	e.UpdatedAt = time.Now()
	m.tlds[e.TLD] = e
	return nil
}

func (m *Memory) RemoveTLD(ctx context.Context, tld string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalizeTLD(tld)
	if _, ok := m.tlds[key]; !ok {
		return ErrNotFound
	}
	delete(m.tlds, key)
	return nil
}

func (m *Memory) AddBrand(ctx context.Context, e BrandEntry) error {
	e.Name = strings.ToLower(strings.TrimSpace(e.Name))
	if e.Name == "" {
		return fmt.Errorf("registry: empty brand name")
	}
	if e.Category == "" {
		e.Category = "general"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.brands[e.Name]; ok {
		return ErrExists
	}
	stampNew(&e.AddedAt, &e.UpdatedAt)
	e.Active = true
	m.brands[e.Name] = e
	return nil
}

func (m *Memory) UpdateBrand(ctx context.Context, name string, u BrandUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.brands[strings.ToLower(name)]
	if !ok {
		return ErrNotFound
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.Active != nil {
		e.Active = *u.Active
	}
	e.UpdatedAt = time.Now()
	m.brands[e.Name] = e
	return nil
}

func (m *Memory) RemoveBrand(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(name)
	if _, ok := m.brands[key]; !ok {
		return ErrNotFound
	}
	delete(m.brands, key)
	return nil
}

func (m *Memory) AddKeyword(ctx context.Context, e KeywordEntry) error {
	e.Keyword = strings.ToLower(strings.TrimSpace(e.Keyword))
	if e.Keyword == "" {
		return fmt.Errorf("registry: empty keyword")
	}
	if e.Category == "" {
		e.Category = "action_words"
	}
	if e.RiskLevel == "" {
		e.RiskLevel = "medium"
	}
	if !riskLevels[e.RiskLevel] {
		return fmt.Errorf("registry: invalid risk level %q", e.RiskLevel)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keywords[e.Keyword]; ok {
		return ErrExists
	}
	stampNew(&e.AddedAt, &e.UpdatedAt)
	e.Active = true
	m.keywords[e.Keyword] = e
	return nil
}

func (m *Memory) UpdateKeyword(ctx context.Context, keyword string, u KeywordUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.keywords[strings.ToLower(keyword)]
	if !ok {
		return ErrNotFound
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.RiskLevel != nil {
		e.RiskLevel = *u.RiskLevel
	}
	if u.Active != nil {
		e.Active = *u.Active
	}
	e.UpdatedAt = time.Now()
	m.keywords[e.Keyword] = e
	return nil
}

func (m *Memory) RemoveKeyword(ctx context.Context, keyword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(keyword)
	if _, ok := m.keywords[key]; !ok {
		return ErrNotFound
	}
	delete(m.keywords, key)
	return nil
}

func (m *Memory) AddBlacklisted(ctx context.Context, e BlacklistEntry) error {
	e.Domain = strings.ToLower(strings.TrimSpace(e.Domain))
	if e.Domain == "" {
		return fmt.Errorf("registry: empty domain")
	}
	if e.Source == "" {
		e.Source = "manual"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blacklist[e.Domain]; ok {
		return ErrExists
	}
	stampNew(&e.AddedAt, &e.UpdatedAt)
	e.Active = true
	m.blacklist[e.Domain] = e
	return nil
}

func (m *Memory) UpdateBlacklisted(ctx context.Context, domain string, u BlacklistUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.blacklist[strings.ToLower(domain)]
	if !ok {
		return ErrNotFound
	}
	if u.Source != nil {
		e.Source = *u.Source
	}
	if u.Reason != nil {
		e.Reason = *u.Reason
	}
	if u.Active != nil {
		e.Active = *u.Active
	}
	e.UpdatedAt = time.Now()
	m.blacklist[e.Domain] = e
	return nil
}

func (m *Memory) RemoveBlacklisted(ctx context.Context, domain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(domain)
	if _, ok := m.blacklist[key]; !ok {
		return ErrNotFound
	}
	delete(m.blacklist, key)
	return nil
}

//
// SEED IMPORT
//

// ImportStats reports the outcome of a seed import. Errors counts entries
// that failed validation; duplicates land in Skipped.
type ImportStats struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

type seedFile struct {
	TLDs      []TLDEntry       `json:"tlds"`
	Brands    []BrandEntry     `json:"brands"`
	Keywords  []KeywordEntry   `json:"keywords"`
	Blacklist []BlacklistEntry `json:"blacklist"`
}

// Import loads registry entries from a JSON seed document into any Store.
func Import(ctx context.Context, s Store, data []byte) (ImportStats, error) {
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return ImportStats{}, fmt.Errorf("registry: invalid seed file: %w", err)
	}

	var stats ImportStats
	tally := func(err error) {
		switch {
		case err == nil:
			stats.Added++
		case errors.Is(err, ErrExists):
			stats.Skipped++
		default:
			stats.Errors++
		}
	}

	for _, e := range seed.TLDs {
		tally(s.AddTLD(ctx, e))
	}
	for _, e := range seed.Brands {
		tally(s.AddBrand(ctx, e))
	}
	for _, e := range seed.Keywords {
		tally(s.AddKeyword(ctx, e))
	}
	for _, e := range seed.Blacklist {
		tally(s.AddBlacklisted(ctx, e))
	}
	return stats, nil
}

func normalizeTLD(tld string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tld)), ".")
}

func stampNew(added, updated *time.Time) {
	now := time.Now()
	*added, *updated = now, now
}
