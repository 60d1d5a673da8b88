package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juggy247/Security-Scanner-Project/ml"
	"github.com/Juggy247/Security-Scanner-Project/scanner"
)

type stubRunner struct {
	report *scanner.Report
}

func (s stubRunner) Scan(context.Context, string) *scanner.Report {
	return s.report
}

func suspiciousReport() *scanner.Report {
	r := scanner.NewReport("http://paypal-verify.example.tk/")
	r.Success = true
	r.RobotsAllowed = true
	r.HTTPS = &scanner.HTTPSResult{Enforced: false}
	r.Blacklist = &scanner.BlacklistResult{Listed: true}
	return r
}

func postScan(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestScanHandler(t *testing.T) {
	s := NewServer(stubRunner{report: suspiciousReport()}, nil, 0.3, nil)

	rec := postScan(t, s.ScanHandler, `{"url":"http://paypal-verify.example.tk/"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `"verdict":"SUSPICIOUS"`)
	assert.Contains(t, body, `"total_issues":2`)
	assert.Contains(t, body, `"scan_id"`)
}

func TestScanHandlerRequiresURL(t *testing.T) {
	s := NewServer(stubRunner{report: suspiciousReport()}, nil, 0.3, nil)

	rec := postScan(t, s.ScanHandler, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "url required")
}

func TestScanHandlerMethodNotAllowed(t *testing.T) {
	s := NewServer(stubRunner{report: suspiciousReport()}, nil, 0.3, nil)

	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	rec := httptest.NewRecorder()
	s.ScanHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestScanHandlerFailedScanOmitsVerdict(t *testing.T) {
	failed := scanner.NewReport("http://unreachable.example/")
	failed.Error = "fetch failed: connection refused"
	s := NewServer(stubRunner{report: failed}, nil, 0.3, nil)

	rec := postScan(t, s.ScanHandler, `{"url":"http://unreachable.example/"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"success":false`)
	assert.Contains(t, body, "connection refused")
}

func TestEnhancedScanHandler(t *testing.T) {
	s := NewServer(stubRunner{report: suspiciousReport()}, ml.StaticClassifier{Probability: 0.8}, 0.3, nil)

	rec := postScan(t, s.EnhancedScanHandler, `{"url":"http://paypal-verify.example.tk/"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"verdict":"SUSPICIOUS"`)
	assert.Contains(t, body, `"combined_score":0.94`)
	assert.Contains(t, body, `"ml_verdict":"PHISHING"`)
	assert.Contains(t, body, `"methods_agree":true`)
	assert.Contains(t, body, `"confidence_level":"high"`)
}

func TestEnhancedScanHandlerNoClassifierFallsBack(t *testing.T) {
	s := NewServer(stubRunner{report: suspiciousReport()}, nil, 0.3, nil)

	rec := postScan(t, s.EnhancedScanHandler, `{"url":"http://paypal-verify.example.tk/"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Heuristic score stands in for the classifier, so both scores agree.
	body := rec.Body.String()
	assert.Contains(t, body, `"traditional_score":1`)
	assert.Contains(t, body, `"ml_score":1`)
	assert.Contains(t, body, `"methods_agree":true`)
}

type failingClassifier struct{}

func (failingClassifier) Predict(context.Context, ml.FeatureVector) (float64, error) {
	return 0, context.DeadlineExceeded
}

func TestEnhancedScanHandlerClassifierFailureDegrades(t *testing.T) {
	s := NewServer(stubRunner{report: suspiciousReport()}, failingClassifier{}, 0.3, nil)

	rec := postScan(t, s.EnhancedScanHandler, `{"url":"http://paypal-verify.example.tk/"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ml_score":1`)
}
