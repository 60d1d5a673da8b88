package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// ErrPolicyBlocked means robots.txt disallows the scan and no bypass was
// requested. This is the only early-abort path before any check runs.
var ErrPolicyBlocked = errors.New("scanning not allowed by robots.txt")

// robotsAllowed checks the target host's robots.txt. A missing or broken
// robots.txt allows the scan; only an explicit disallow blocks it.
func (s *Scanner) robotsAllowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	res, err := s.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		s.log.Debug("robots.txt not available, allowing scan",
			zap.String("url", robotsURL), zap.Error(err))
		return true
	}

	robots, err := robotstxt.FromBytes(res.Body)
	if err != nil {
		s.log.Debug("robots.txt unparseable, allowing scan", zap.String("url", robotsURL))
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return robots.TestAgent(path, "*")
}
