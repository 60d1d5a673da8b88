package scanner

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

//
// HTTPS FINAL SCHEME
//

// CheckHTTPSFinal judges the scheme after all redirects: a site only counts
// as HTTPS-enforced when it ends up on https.
func (c *Checks) CheckHTTPSFinal(originalURL, finalURL string) *HTTPSResult {
	origScheme := schemeOf(originalURL)
	finalScheme := schemeOf(finalURL)
	return &HTTPSResult{
		Enforced:          finalScheme == "https",
		RedirectedToHTTPS: origScheme == "http" && finalScheme == "https",
	}
}

//
// TLS HANDSHAKE
//

// TLSState is the outcome of a live handshake against port 443.
type TLSState struct {
	Valid    bool
	Expiry   time.Time
	Issuer   string
	Protocol string
	Cipher   string
	Err      string
}

// TLSProber is the consumed TLS-handshake collaborator.
type TLSProber interface {
	Handshake(ctx context.Context, host string, port int) (*TLSState, error)
}

// DialTLSProber performs a verified handshake. A certificate that fails
// verification yields Valid=false (a finding); a connection that cannot be
// made at all is an error (the check degrades to unavailable).
type DialTLSProber struct {
	Timeout time.Duration
}

func (p *DialTLSProber) Handshake(ctx context.Context, host string, port int) (*TLSState, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config:    &tls.Config{ServerName: host},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err == nil {
		defer conn.Close()
		state := conn.(*tls.Conn).ConnectionState()
		if len(state.PeerCertificates) == 0 {
			return nil, errors.New("no peer certificates presented")
		}
		cert := state.PeerCertificates[0]
		return &TLSState{
			Valid:    true,
			Expiry:   cert.NotAfter,
			Issuer:   issuerName(cert),
			Protocol: tlsVersionName(state.Version),
			Cipher:   tls.CipherSuiteName(state.CipherSuite),
		}, nil
	}

	if !isCertError(err) {
		return nil, err
	}

	// Handshake completed but verification failed. Redial insecurely so the
	// report still carries the offending certificate's details.
	state := &TLSState{Valid: false, Err: err.Error()}
	insecure := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config:    &tls.Config{ServerName: host, InsecureSkipVerify: true},
	}
	if conn, redialErr := insecure.DialContext(ctx, "tcp", addr); redialErr == nil {
		defer conn.Close()
		cs := conn.(*tls.Conn).ConnectionState()
		if len(cs.PeerCertificates) > 0 {
			cert := cs.PeerCertificates[0]
			state.Expiry = cert.NotAfter
			state.Issuer = issuerName(cert)
		}
		state.Protocol = tlsVersionName(cs.Version)
		state.Cipher = tls.CipherSuiteName(cs.CipherSuite)
	}
	return state, nil
}

func isCertError(err error) bool {
	var (
		certVerify  *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostname    x509.HostnameError
		invalid     x509.CertificateInvalidError
	)
	return errors.As(err, &certVerify) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostname) ||
		errors.As(err, &invalid)
}

func issuerName(cert *x509.Certificate) string {
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	if cert.Issuer.CommonName != "" {
		return cert.Issuer.CommonName
	}
	return "Unknown"
}

func tlsVersionName(v uint16) string {
	switch v {
	case tls.VersionTLS13:
		return "TLS1.3"
	case tls.VersionTLS12:
		return "TLS1.2"
	default:
		return "weak"
	}
}

// CheckTLS runs the live handshake check for the report.
func (c *Checks) CheckTLS(ctx context.Context, domain string) *TLSResult {
	host := stripPort(domain)

	state, err := c.tls.Handshake(ctx, host, 443)
	if err != nil {
		c.log.Debug("tls handshake unavailable", zap.String("host", host), zap.Error(err))
		return &TLSResult{Available: false, Valid: false, Err: err.Error()}
	}

	result := &TLSResult{
		Available: true,
		Valid:     state.Valid,
		Issuer:    state.Issuer,
		Protocol:  state.Protocol,
		Cipher:    state.Cipher,
		Err:       state.Err,
	}
	if !state.Expiry.IsZero() {
		result.Expires = state.Expiry.Format(time.RFC3339)
		result.DaysLeft = int(time.Until(state.Expiry).Hours() / 24)
	}
	return result
}

//
// SECURITY HEADERS
//

var hardeningHeaders = []string{
	"Strict-Transport-Security",
	"X-Frame-Options",
	"X-Content-Type-Options",
	"Content-Security-Policy",
	"Referrer-Policy",
}

// CheckHeaders reports which hardening headers the response carries. No
// severity is computed here; that belongs to the aggregator.
func (c *Checks) CheckHeaders(header http.Header) *HeadersResult {
	present := []string{}
	missing := []string{}
	for _, h := range hardeningHeaders {
		if header.Get(h) != "" {
			present = append(present, h)
		} else {
			missing = append(missing, h)
		}
	}
	return &HeadersResult{Present: present, Missing: missing}
}

//
// FORMS
//

// CheckForms flags POST forms that would carry user data over plain HTTP,
// either because the page itself is HTTP or the action resolves to an HTTP
// URL.
func (c *Checks) CheckForms(doc *Document, baseURL string) *FormsResult {
	if doc == nil {
		return &FormsResult{Available: false, Insecure: []InsecureForm{}}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return &FormsResult{Available: false, Insecure: []InsecureForm{}}
	}

	insecure := []InsecureForm{}
	for _, form := range doc.Forms {
		if form.Method != http.MethodPost {
			continue
		}
		actionURL := resolveAction(base, form.Action)

		var reason string
		switch {
		case base.Scheme != "https":
			reason = "form on HTTP page"
		case schemeOf(actionURL) != "https":
			reason = "action over HTTP"
		default:
			continue
		}
		insecure = append(insecure, InsecureForm{
			Type:   "insecure_post",
			Method: form.Method,
			Action: actionURL,
			Reason: reason,
		})
	}
	return &FormsResult{Available: true, Insecure: insecure}
}

// CheckFormRedirects resolves each form action against the page URL and
// flags forms that submit to a different host.
func (c *Checks) CheckFormRedirects(doc *Document, baseURL string) *FormRedirectsResult {
	if doc == nil {
		return &FormRedirectsResult{Available: false, External: []FormRedirect{}}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return &FormRedirectsResult{Available: false, External: []FormRedirect{}}
	}
	baseHost := base.Host

	external := []FormRedirect{}
	for i, form := range doc.Forms {
		actionURL := resolveAction(base, form.Action)
		actionHost := hostOf(actionURL)
		if actionHost != "" && actionHost != baseHost {
			external = append(external, FormRedirect{
				FormIndex:      i,
				Method:         form.Method,
				Action:         actionURL,
				ExternalDomain: actionHost,
				BaseDomain:     baseHost,
			})
		}
	}
	return &FormRedirectsResult{Available: true, External: external}
}

func resolveAction(base *url.URL, action string) string {
	ref, err := url.Parse(action)
	if err != nil {
		return action
	}
	return base.ResolveReference(ref).String()
}

func schemeOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Scheme
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
