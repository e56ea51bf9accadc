package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ppiankov/hubconn/internal/analyzer"
	"github.com/ppiankov/hubconn/internal/models"
	"github.com/ppiankov/hubconn/internal/pipeline"
)

// analyzeRequest is the body of POST /v1/analyze
type analyzeRequest struct {
	Name    string             `json:"name"`
	Legs    []models.FlightLeg `json:"legs"`
	Options analyzer.Options   `json:"options"`
}

// diffRequest is the body of POST /v1/compare and POST /v1/flights.
// Options are ignored by /v1/flights.
type diffRequest struct {
	Before  snapshotBody     `json:"before"`
	After   snapshotBody     `json:"after"`
	Options analyzer.Options `json:"options"`
}

type snapshotBody struct {
	Name string             `json:"name"`
	Legs []models.FlightLeg `json:"legs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	snap, err := snapshotFrom(req.Name, "request", req.Legs)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_leg", err.Error())
		return
	}

	report, err := s.pipeline(req.Options).Analyze(r.Context(), snap)
	if err != nil {
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if !s.decode(w, r, &req) {
		return
	}

	before, after, ok := diffSnapshots(w, req)
	if !ok {
		return
	}

	report, err := s.pipeline(req.Options).Compare(r.Context(), before, after)
	if err != nil {
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if !s.decode(w, r, &req) {
		return
	}

	before, after, ok := diffSnapshots(w, req)
	if !ok {
		return
	}

	report, err := s.pipeline(analyzer.Options{}).Flights(r.Context(), before, after)
	if err != nil {
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) pipeline(opts analyzer.Options) *pipeline.Pipeline {
	options := []pipeline.Option{pipeline.WithVersion(s.version)}
	if s.cache != nil {
		options = append(options, pipeline.WithCache(s.cache))
	}
	return pipeline.New(opts, options...)
}

// decode reads a size-limited JSON body into dst, writing the error response
// itself when it returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "invalid_body", "request body is required")
		default:
			writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		}
		return false
	}
	return true
}

func diffSnapshots(w http.ResponseWriter, req diffRequest) (*models.Snapshot, *models.Snapshot, bool) {
	before, err := snapshotFrom(req.Before.Name, "before", req.Before.Legs)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_leg", "before: "+err.Error())
		return nil, nil, false
	}
	after, err := snapshotFrom(req.After.Name, "after", req.After.Legs)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_leg", "after: "+err.Error())
		return nil, nil, false
	}
	return before, after, true
}

func snapshotFrom(name, fallback string, legs []models.FlightLeg) (*models.Snapshot, error) {
	for i, leg := range legs {
		if err := leg.Validate(); err != nil {
			return nil, fmt.Errorf("legs[%d]: %w", i, err)
		}
	}
	if name == "" {
		name = fallback
	}
	return models.NewSnapshot(name, legs), nil
}
