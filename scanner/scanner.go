package scanner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config tunes the orchestrator. Zero values fall back to the defaults
// below.
type Config struct {
	BypassRobots bool
	CheckTimeout time.Duration
	ScanBudget   time.Duration
	WorkerLimit  int
}

func (c Config) withDefaults() Config {
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 8 * time.Second
	}
	if c.ScanBudget <= 0 {
		c.ScanBudget = 45 * time.Second
	}
	if c.WorkerLimit <= 0 {
		c.WorkerLimit = 6
	}
	return c
}

// Scanner sequences a scan: policy gate, single fetch, parse, then the
// check library over the shared read-only document.
type Scanner struct {
	fetcher Fetcher
	checks  *Checks
	cfg     Config
	log     *zap.Logger
}

func New(cfg Config, fetcher Fetcher, checks *Checks, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		fetcher: fetcher,
		checks:  checks,
		cfg:     cfg.withDefaults(),
		log:     log,
	}
}

// Scan fetches the target exactly once and runs every check against the
// fetched document. Check failures degrade their own slot only; a partial
// Report is a valid aggregator input. The returned Report always carries the
// outcome, including the failure reason when the scan aborts early.
func (s *Scanner) Scan(ctx context.Context, rawURL string) *Report {
	report := NewReport(rawURL)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ScanBudget)
	defer cancel()

	report.RobotsAllowed = s.robotsAllowed(ctx, rawURL)
	if !report.RobotsAllowed {
		if !s.cfg.BypassRobots {
			report.Error = ErrPolicyBlocked.Error() + " (enable bypass_robots to override)"
			s.log.Info("scan blocked by robots policy", zap.String("url", rawURL))
			return report
		}
		report.RobotsBypassed = true
		s.log.Warn("bypassing robots.txt restrictions", zap.String("url", rawURL))
	}

	res, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		report.Error = err.Error()
		s.log.Warn("fetch failed", zap.String("url", rawURL), zap.Error(err))
		return report
	}
	report.FinalURL = res.FinalURL

	doc, err := ParseDocument(res.Body)
	if err != nil {
		// Document checks degrade; domain and transport checks proceed.
		doc = nil
		s.log.Warn("document parse failed", zap.String("url", rawURL), zap.Error(err))
	}
	if doc != nil {
		report.Title = doc.Title
	}

	domain := hostOf(res.FinalURL)
	if domain == "" {
		domain = hostOf(rawURL)
	}
	s.log.Info("scanning", zap.String("domain", domain), zap.String("scan_id", report.ScanID))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.WorkerLimit)

	run := func(name string, fn func(ctx context.Context)) {
		g.Go(func() error {
			cctx, ccancel := context.WithTimeout(ctx, s.cfg.CheckTimeout)
			defer ccancel()
			defer func() {
				// A panicking check is a defect; contain it to its slot.
				if rec := recover(); rec != nil {
					s.log.Error("check panicked", zap.String("check", name), zap.Any("panic", rec))
				}
			}()
			fn(cctx)
			return nil
		})
	}

	// Each closure writes exactly one pre-reserved slot, so no locking is
	// needed around the Report.
	run("https", func(cctx context.Context) {
		report.HTTPS = s.checks.CheckHTTPSFinal(rawURL, res.FinalURL)
	})
	run("ssl", func(cctx context.Context) {
		report.SSL = s.checks.CheckTLS(cctx, domain)
	})
	run("headers", func(cctx context.Context) {
		report.Headers = s.checks.CheckHeaders(res.Header)
	})
	run("forms", func(cctx context.Context) {
		report.Forms = s.checks.CheckForms(doc, res.FinalURL)
	})
	run("domain_age", func(cctx context.Context) {
		report.DomainAge = s.checks.CheckDomainAge(cctx, domain)
	})
	run("blacklist", func(cctx context.Context) {
		report.Blacklist = s.checks.CheckBlacklist(cctx, domain)
	})
	run("homograph", func(cctx context.Context) {
		report.Homograph = s.checks.CheckHomograph(domain)
	})
	run("domain_in_title", func(cctx context.Context) {
		report.DomainInTitle = s.checks.CheckDomainInTitle(domain, report.Title)
	})
	run("form_redirects", func(cctx context.Context) {
		report.FormRedirects = s.checks.CheckFormRedirects(doc, res.FinalURL)
	})
	run("domain_length", func(cctx context.Context) {
		report.DomainLength = s.checks.CheckDomainLength(domain)
	})
	run("suspicious_tld", func(cctx context.Context) {
		report.SuspiciousTLD = s.checks.CheckSuspiciousTLD(cctx, domain)
	})
	run("subdomain_depth", func(cctx context.Context) {
		report.SubdomainDepth = s.checks.CheckSubdomainDepth(domain)
	})
	run("brand_impersonation", func(cctx context.Context) {
		report.BrandImpersonation = s.checks.CheckBrandImpersonation(cctx, domain)
	})

	_ = g.Wait()

	report.Success = true
	s.log.Info("scan completed", zap.String("domain", domain), zap.String("scan_id", report.ScanID))
	return report
}
