package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/regionroute/pkg/buildinfo"
	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/pipeline"
	"github.com/matzehuels/regionroute/pkg/vcell"
)

// statusClientClosed is the non-standard status logged when the client
// went away before the route was ready.
const statusClientClosed = 499

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// GraphInfo is the body of GET /v1/graph.
type GraphInfo struct {
	Fingerprint string      `json:"fingerprint"`
	Nodes       int         `json:"nodes"`
	Edges       int         `json:"edges"`
	Cells       int         `json:"cells"`
	Resolution  int         `json:"resolution"`
	Occupied    int         `json:"occupied"`
	Bounds      [4]float64  `json:"bounds"` // min lat, min lon, max lat, max lon
	Decompose   vcell.Stats `json:"decompose"`
	Skeleton    string      `json:"skeleton"`
	Mode        string      `json:"mode"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	b := s.eng.Index.Bounds()
	cfg := s.eng.Router.Config()
	writeJSON(w, http.StatusOK, GraphInfo{
		Fingerprint: s.eng.Fingerprint,
		Nodes:       s.eng.Stats.NodeCount,
		Edges:       s.eng.Stats.EdgeCount,
		Cells:       len(s.eng.Cells),
		Resolution:  s.eng.Index.Resolution(),
		Occupied:    s.eng.Index.Occupied(),
		Bounds:      [4]float64{b.MinLat(), b.MinLon(), b.MaxLat(), b.MaxLon()},
		Decompose:   s.eng.Stats.Decompose,
		Skeleton:    string(cfg.Skeleton),
		Mode:        s.opts.Mode,
	})
}

// handleCells returns the cells as GeoJSON. With ?bbox=minLat,minLon,maxLat,maxLon
// only cells whose bounding box meets the box are returned; ?outer=true adds
// outer faces.
func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cells := s.eng.Cells
	if raw := q.Get("bbox"); raw != "" {
		box, err := parseBBox(raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		cells = nil
		for _, c := range s.eng.Index.Candidates(box) {
			if c.BBox().Intersects(box) {
				cells = append(cells, c)
			}
		}
	}
	outer, _ := strconv.ParseBool(q.Get("outer"))
	data, err := pipeline.CellsGeoJSON(cells, outer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req pipeline.RouteRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := s.routeContext(r.Context())
	defer cancel()

	res, err := s.runner.Route(ctx, s.eng, req, s.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "geojson" {
		data, err := res.GeoJSON()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []pipeline.RouteRequest
	if !s.decode(w, r, &reqs) {
		return
	}
	if len(reqs) > MaxBatch {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "batch of %d exceeds limit %d", len(reqs), MaxBatch))
		return
	}
	ctx, cancel := s.routeContext(r.Context())
	defer cancel()

	results, err := s.runner.RouteBatch(ctx, s.eng, reqs, s.opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) routeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// decode reads a JSON body into v and writes the error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

// fail maps err to a status code and writes the error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "id", RequestID(r.Context()), "status", status, "err", err)
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeError(w, r, status, code, errors.UserMessage(err))
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return statusClientClosed
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCoordinate, errors.ErrCodeInvalidPolygon,
		errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeNoRoute:
		return http.StatusNotFound
	case errors.ErrCodePrecondition, errors.ErrCodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// parseBBox parses "minLat,minLon,maxLat,maxLon".
func parseBBox(s string) (geo.BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.BBox{}, errors.New(errors.ErrCodeInvalidInput, "bbox needs 4 values, got %d", len(parts))
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.BBox{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "bbox value %d", i)
		}
		v[i] = f
	}
	for _, p := range [][2]float64{{v[0], v[1]}, {v[2], v[3]}} {
		if err := errors.ValidateLatLon(p[0], p[1]); err != nil {
			return geo.BBox{}, err
		}
	}
	if v[0] > v[2] || v[1] > v[3] {
		return geo.BBox{}, errors.New(errors.ErrCodeInvalidInput, "bbox minimum exceeds maximum")
	}
	return geo.NewBBox(v[0], v[2], v[1], v[3]), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code, RequestID: RequestID(r.Context())})
}
