// Package web exposes the scan pipeline over HTTP.
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Juggy247/Security-Scanner-Project/ml"
	"github.com/Juggy247/Security-Scanner-Project/scanner"
)

// ScanRunner runs one scan. Satisfied by *scanner.Scanner.
type ScanRunner interface {
	Scan(ctx context.Context, rawURL string) *scanner.Report
}

type Server struct {
	scans      ScanRunner
	classifier ml.Classifier
	mlWeight   float64
	log        *zap.Logger
}

func NewServer(scans ScanRunner, classifier ml.Classifier, mlWeight float64, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{scans: scans, classifier: classifier, mlWeight: mlWeight, log: log}
}

// Routes registers the handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/scan", s.ScanHandler)
	mux.HandleFunc("/scan/enhanced", s.EnhancedScanHandler)
}

type scanRequest struct {
	URL string `json:"url"`
}

type scanResponse struct {
	Report  *scanner.Report `json:"report"`
	Verdict scanner.Verdict `json:"verdict"`
}

type enhancedScanResponse struct {
	Report  *scanner.Report    `json:"report"`
	Verdict ml.EnhancedVerdict `json:"verdict"`
}

func (s *Server) ScanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req scanRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.URL == "" {
		http.Error(w, "url required", http.StatusBadRequest)
		return
	}

	report := s.scans.Scan(r.Context(), req.URL)
	resp := scanResponse{Report: report}
	if report.Success {
		resp.Verdict = scanner.ComputeVerdict(report)
	}

	s.writeJSON(w, resp)
}

// EnhancedScanHandler runs the scan and fuses the heuristic verdict with the
// classifier. A classifier failure degrades to the heuristic score alone
// rather than failing the request.
func (s *Server) EnhancedScanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req scanRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.URL == "" {
		http.Error(w, "url required", http.StatusBadRequest)
		return
	}

	report := s.scans.Scan(r.Context(), req.URL)
	if !report.Success {
		s.writeJSON(w, scanResponse{Report: report})
		return
	}

	probability := ml.TraditionalScore(scanner.ComputeVerdict(report).Label)
	if s.classifier != nil {
		fv := ml.ExtractFeatures(req.URL, report)
		p, err := s.classifier.Predict(r.Context(), fv)
		if err != nil {
			s.log.Warn("classifier unavailable, using heuristic score",
				zap.String("url", req.URL), zap.Error(err))
		} else {
			probability = p
		}
	}

	s.writeJSON(w, enhancedScanResponse{
		Report:  report,
		Verdict: ml.EnhanceVerdict(report, probability, s.mlWeight),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}
