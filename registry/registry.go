// Package registry holds the risk registries the scanner checks consult:
// suspicious TLDs, protected brand names, phishing keywords and the domain
// blacklist. Checks receive narrow read interfaces; management operations go
// through validated update requests.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrExists   = errors.New("registry: entry already exists")
	ErrNotFound = errors.New("registry: entry not found")
)

// TLDStore answers suspicious-TLD lookups.
type TLDStore interface {
	SuspiciousTLDs(ctx context.Context) ([]string, error)
	TLDDetails(ctx context.Context, tld string) (*TLDEntry, error)
}

// BrandStore lists protected brand names (lowercase).
type BrandStore interface {
	Brands(ctx context.Context) ([]string, error)
}

// KeywordStore lists phishing keywords (lowercase).
type KeywordStore interface {
	Keywords(ctx context.Context) ([]string, error)
}

// BlacklistStore answers domain blacklist lookups.
type BlacklistStore interface {
	IsBlacklisted(ctx context.Context, domain string) (bool, []string, error)
}

// Registry bundles the four stores injected into the check library. A single
// backend usually implements all four, but each check only sees the store it
// needs.
type Registry struct {
	TLDs      TLDStore
	Brands    BrandStore
	Keywords  KeywordStore
	Blacklist BlacklistStore
}

// FromStore wires every slot of a Registry to one backend.
func FromStore(s Store) Registry {
	return Registry{TLDs: s, Brands: s, Keywords: s, Blacklist: s}
}

// Store is a full registry backend: the four read interfaces plus the
// management surface and an explicit close lifecycle.
type Store interface {
	TLDStore
	BrandStore
	KeywordStore
	BlacklistStore

	AddTLD(ctx context.Context, e TLDEntry) error
	UpdateTLD(ctx context.Context, tld string, u TLDUpdate) error
	RemoveTLD(ctx context.Context, tld string) error

	AddBrand(ctx context.Context, e BrandEntry) error
	UpdateBrand(ctx context.Context, name string, u BrandUpdate) error
	RemoveBrand(ctx context.Context, name string) error

	AddKeyword(ctx context.Context, e KeywordEntry) error
	UpdateKeyword(ctx context.Context, keyword string, u KeywordUpdate) error
	RemoveKeyword(ctx context.Context, keyword string) error

	AddBlacklisted(ctx context.Context, e BlacklistEntry) error
	UpdateBlacklisted(ctx context.Context, domain string, u BlacklistUpdate) error
	RemoveBlacklisted(ctx context.Context, domain string) error

	Close() error
}

type TLDEntry struct {
	TLD       string    `json:"tld"`
	RiskLevel string    `json:"risk_level"`
	Reason    string    `json:"reason,omitempty"`
	AddedBy   string    `json:"added_by,omitempty"`
	AddedAt   time.Time `json:"added_date"`
	UpdatedAt time.Time `json:"last_updated"`
	Active    bool      `json:"is_active"`
}

type BrandEntry struct {
	Name      string    `json:"brand_name"`
	Category  string    `json:"category"`
	AddedBy   string    `json:"added_by,omitempty"`
	AddedAt   time.Time `json:"added_date"`
	UpdatedAt time.Time `json:"last_updated"`
	Active    bool      `json:"is_active"`
}

type KeywordEntry struct {
	Keyword   string    `json:"keyword"`
	Category  string    `json:"category"`
	RiskLevel string    `json:"risk_level"`
	AddedAt   time.Time `json:"added_date"`
	UpdatedAt time.Time `json:"last_updated"`
	Active    bool      `json:"is_active"`
}

type BlacklistEntry struct {
	Domain    string    `json:"domain"`
	Source    string    `json:"source"`
	Reason    string    `json:"reason,omitempty"`
	AddedBy   string    `json:"added_by,omitempty"`
	AddedAt   time.Time `json:"added_date"`
	UpdatedAt time.Time `json:"last_updated"`
	Active    bool      `json:"is_active"`
}

var riskLevels = map[string]bool{
	"low":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
}

// TLDUpdate is the validated update request for a TLD entry. Nil fields are
// left untouched.
type TLDUpdate struct {
	RiskLevel *string
	Reason    *string
	Active    *bool
}

func (u TLDUpdate) Validate() error {
	if u.RiskLevel == nil && u.Reason == nil && u.Active == nil {
		return errors.New("registry: empty tld update")
	}
	if u.RiskLevel != nil && !riskLevels[*u.RiskLevel] {
		return fmt.Errorf("registry: invalid risk level %q", *u.RiskLevel)
	}
	return nil
}

type BrandUpdate struct {
	Category *string
	Active   *bool
}

func (u BrandUpdate) Validate() error {
	if u.Category == nil && u.Active == nil {
		return errors.New("registry: empty brand update")
	}
	if u.Category != nil && *u.Category == "" {
		return errors.New("registry: brand category must not be empty")
	}
	return nil
}

type KeywordUpdate struct {
	Category  *string
	RiskLevel *string
	Active    *bool
}

func (u KeywordUpdate) Validate() error {
	if u.Category == nil && u.RiskLevel == nil && u.Active == nil {
		return errors.New("registry: empty keyword update")
	}
	if u.RiskLevel != nil && !riskLevels[*u.RiskLevel] {
		return fmt.Errorf("registry: invalid risk level %q", *u.RiskLevel)
	}
	return nil
}

type BlacklistUpdate struct {
	Source *string
	Reason *string
	Active *bool
}

func (u BlacklistUpdate) Validate() error {
	if u.Source == nil && u.Reason == nil && u.Active == nil {
		return errors.New("registry: empty blacklist update")
	}
	return nil
}
