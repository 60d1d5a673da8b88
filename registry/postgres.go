package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a pgx-backed Store for deployments that share registries
// across scanner instances. The tables are intentionally minimal; schema
// evolution is out of scope here.
type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("registry: ping postgres: %w", err)
	}

	p := &Postgres{Pool: pool}
	if err := p.ensureTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}

func (p *Postgres) ensureTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS suspicious_tlds (
			tld TEXT PRIMARY KEY,
			risk_level TEXT NOT NULL DEFAULT 'medium',
			reason TEXT NOT NULL DEFAULT '',
			added_by TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS brands (
			brand_name TEXT PRIMARY KEY,
			category TEXT NOT NULL DEFAULT 'general',
			added_by TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS suspicious_keywords (
			keyword TEXT PRIMARY KEY,
			category TEXT NOT NULL DEFAULT 'action_words',
			risk_level TEXT NOT NULL DEFAULT 'medium',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS blacklisted_domains (
			domain TEXT PRIMARY KEY,
			source TEXT NOT NULL DEFAULT 'manual',
			reason TEXT NOT NULL DEFAULT '',
			added_by TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("registry: create tables: %w", err)
		}
	}
	return nil
}

//
// LOOKUPS
//

func (p *Postgres) SuspiciousTLDs(ctx context.Context) ([]string, error) {
	rows, err := p.Pool.Query(ctx, `SELECT tld FROM suspicious_tlds WHERE is_active ORDER BY tld`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStrings(rows)
}

func (p *Postgres) TLDDetails(ctx context.Context, tld string) (*TLDEntry, error) {
	var e TLDEntry
	err := p.Pool.QueryRow(ctx, `
		SELECT tld, risk_level, reason, added_by, added_at, updated_at, is_active
		FROM suspicious_tlds WHERE tld = $1
	`, normalizeTLD(tld)).Scan(&e.TLD, &e.RiskLevel, &e.Reason, &e.AddedBy, &e.AddedAt, &e.UpdatedAt, &e.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (p *Postgres) Brands(ctx context.Context) ([]string, error) {
	rows, err := p.Pool.Query(ctx, `SELECT brand_name FROM brands WHERE is_active ORDER BY brand_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStrings(rows)
}

func (p *Postgres) Keywords(ctx context.Context) ([]string, error) {
	rows, err := p.Pool.Query(ctx, `SELECT keyword FROM suspicious_keywords WHERE is_active ORDER BY keyword`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStrings(rows)
}

func (p *Postgres) IsBlacklisted(ctx context.Context, domain string) (bool, []string, error) {
	var source string
	err := p.Pool.QueryRow(ctx, `
		SELECT source FROM blacklisted_domains WHERE domain = $1 AND is_active
	`, strings.ToLower(domain)).Scan(&source)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, []string{source}, nil
}

//
// MANAGEMENT
//

func (p *Postgres) AddTLD(ctx context.Context, e TLDEntry) error {
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
	tag, err := p.Pool.Exec(ctx, `
		INSERT INTO suspicious_tlds (tld, risk_level, reason, added_by)
		VALUES ($1, $2, $3, $4) ON CONFLICT (tld) DO NOTHING
	`, e.TLD, e.RiskLevel, e.Reason, e.AddedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (p *Postgres) UpdateTLD(ctx context.Context, tld string, u TLDUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	tag, err := p.Pool.Exec(ctx, `
		UPDATE suspicious_tlds SET
			risk_level = COALESCE($2, risk_level),
			reason = COALESCE($3, reason),
			is_active = COALESCE($4, is_active),
			updated_at = now()
		WHERE tld = $1
	`, normalizeTLD(tld), u.RiskLevel, u.Reason, u.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RemoveTLD(ctx context.Context, tld string) error {
	return p.deleteBy(ctx, `DELETE FROM suspicious_tlds WHERE tld = $1`, normalizeTLD(tld))
}

func (p *Postgres) AddBrand(ctx context.Context, e BrandEntry) error {
	e.Name = strings.ToLower(strings.TrimSpace(e.Name))
	if e.Name == "" {
		return fmt.Errorf("registry: empty brand name")
	}
	if e.Category == "" {
		e.Category = "general"
	}
	tag, err := p.Pool.Exec(ctx, `
		INSERT INTO brands (brand_name, category, added_by)
		VALUES ($1, $2, $3) ON CONFLICT (brand_name) DO NOTHING
	`, e.Name, e.Category, e.AddedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (p *Postgres) UpdateBrand(ctx context.Context, name string, u BrandUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	tag, err := p.Pool.Exec(ctx, `
		UPDATE brands SET
			category = COALESCE($2, category),
			is_active = COALESCE($3, is_active),
			updated_at = now()
		WHERE brand_name = $1
	`, strings.ToLower(name), u.Category, u.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RemoveBrand(ctx context.Context, name string) error {
	return p.deleteBy(ctx, `DELETE FROM brands WHERE brand_name = $1`, strings.ToLower(name))
}

func (p *Postgres) AddKeyword(ctx context.Context, e KeywordEntry) error {
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
	tag, err := p.Pool.Exec(ctx, `
		INSERT INTO suspicious_keywords (keyword, category, risk_level)
		VALUES ($1, $2, $3) ON CONFLICT (keyword) DO NOTHING
	`, e.Keyword, e.Category, e.RiskLevel)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (p *Postgres) UpdateKeyword(ctx context.Context, keyword string, u KeywordUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	tag, err := p.Pool.Exec(ctx, `
		UPDATE suspicious_keywords SET
			category = COALESCE($2, category),
			risk_level = COALESCE($3, risk_level),
			is_active = COALESCE($4, is_active),
			updated_at = now()
		WHERE keyword = $1
	`, strings.ToLower(keyword), u.Category, u.RiskLevel, u.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RemoveKeyword(ctx context.Context, keyword string) error {
	return p.deleteBy(ctx, `DELETE FROM suspicious_keywords WHERE keyword = $1`, strings.ToLower(keyword))
}

func (p *Postgres) AddBlacklisted(ctx context.Context, e BlacklistEntry) error {
	e.Domain = strings.ToLower(strings.TrimSpace(e.Domain))
	if e.Domain == "" {
		return fmt.Errorf("registry: empty domain")
	}
	if e.Source == "" {
		e.Source = "manual"
	}
	tag, err := p.Pool.Exec(ctx, `
		INSERT INTO blacklisted_domains (domain, source, reason, added_by)
		VALUES ($1, $2, $3, $4) ON CONFLICT (domain) DO NOTHING
	`, e.Domain, e.Source, e.Reason, e.AddedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (p *Postgres) UpdateBlacklisted(ctx context.Context, domain string, u BlacklistUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	tag, err := p.Pool.Exec(ctx, `
		UPDATE blacklisted_domains SET
			source = COALESCE($2, source),
			reason = COALESCE($3, reason),
			is_active = COALESCE($4, is_active),
			updated_at = now()
		WHERE domain = $1
	`, strings.ToLower(domain), u.Source, u.Reason, u.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RemoveBlacklisted(ctx context.Context, domain string) error {
	return p.deleteBy(ctx, `DELETE FROM blacklisted_domains WHERE domain = $1`, strings.ToLower(domain))
}

func (p *Postgres) deleteBy(ctx context.Context, query, key string) error {
	tag, err := p.Pool.Exec(ctx, query, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectStrings(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
