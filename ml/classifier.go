package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Classifier scores a feature vector as a phishing probability in [0, 1].
type Classifier interface {
	Predict(ctx context.Context, fv FeatureVector) (float64, error)
}

// HTTPClassifier calls a model-serving endpoint over HTTP. The request body
// carries the feature names alongside the values so the server can reject a
// schema mismatch instead of silently mis-scoring.
type HTTPClassifier struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPClassifier(endpoint string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClassifier{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	FeatureNames []string  `json:"feature_names"`
	Features     []float64 `json:"features"`
}

type predictResponse struct {
	PhishingProbability float64 `json:"phishing_probability"`
}

func (c *HTTPClassifier) Predict(ctx context.Context, fv FeatureVector) (float64, error) {
	body, err := json.Marshal(predictRequest{
		FeatureNames: FeatureNames(),
		Features:     fv.Values(),
	})
	if err != nil {
		return 0, fmt.Errorf("encoding predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, raw)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding predict response: %w", err)
	}
	if out.PhishingProbability < 0 || out.PhishingProbability > 1 {
		return 0, fmt.Errorf("classifier probability out of range: %f", out.PhishingProbability)
	}
	return out.PhishingProbability, nil
}

// StaticClassifier always returns the same probability. Useful for tests and
// for running the enhanced pipeline without a model server.
type StaticClassifier struct {
	Probability float64
}

func (s StaticClassifier) Predict(context.Context, FeatureVector) (float64, error) {
	return s.Probability, nil
}
