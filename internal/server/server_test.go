package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/matzehuels/regionroute/pkg/cache"
	"github.com/matzehuels/regionroute/pkg/errors"
	"github.com/matzehuels/regionroute/pkg/geo"
	"github.com/matzehuels/regionroute/pkg/observability"
	"github.com/matzehuels/regionroute/pkg/pipeline"
	"github.com/matzehuels/regionroute/pkg/roadgraph"
)

// newTestServer prepares a 5x5 grid (0.01 degree spacing, 60s per edge,
// node id = row*5+col) and serves it.
func newTestServer(t *testing.T, options ...Option) *httptest.Server {
	t.Helper()
	const n = 5
	g := roadgraph.New()
	id := func(r, c int) roadgraph.NodeID { return roadgraph.NodeID(r*n + c) }
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if err := g.AddNode(roadgraph.Node{ID: id(r, c), Lat: float64(r) * 0.01, Lon: float64(c) * 0.01}); err != nil {
				t.Fatal(err)
			}
		}
	}
	eid := 0
	add := func(a, b roadgraph.NodeID) {
		if err := g.AddEdge(roadgraph.Edge{ID: roadgraph.EdgeID(eid), Base: a, Adj: b, Distance: 1000, Time: 60}); err != nil {
			t.Fatal(err)
		}
		eid++
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if c+1 < n {
				add(id(r, c), id(r, c+1))
			}
			if r+1 < n {
				add(id(r, c), id(r+1, c))
			}
		}
	}

	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	opts := pipeline.Options{Logger: logger}
	eng, err := runner.Prepare(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(New(runner, eng, opts, logger, options...).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func bandRequest() pipeline.RouteRequest {
	return pipeline.RouteRequest{
		Points: []geo.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.04}},
		ROI: []geo.Point{
			{Lat: 0.015, Lon: 0.005}, {Lat: 0.015, Lon: 0.035},
			{Lat: 0.025, Lon: 0.035}, {Lat: 0.025, Lon: 0.005},
		},
	}
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"uuid kept", "0b6f6d3e-6c4a-4c7e-9a57-3f3c2b7c1d2e", true},
		{"garbage replaced", "<script>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
			req.Header.Set(RequestIDHeader, tt.header)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			got := resp.Header.Get(RequestIDHeader)
			if (got == tt.header) != tt.keep {
				t.Errorf("request id = %q, sent %q", got, tt.header)
			}
		})
	}
}

func TestGraph(t *testing.T) {
	ts := newTestServer(t)
	var info GraphInfo
	decodeBody(t, get(t, ts.URL+"/v1/graph"), &info)
	if info.Nodes != 25 || info.Edges != 40 || info.Cells != 17 {
		t.Errorf("got %d nodes, %d edges, %d cells; want 25, 40, 17", info.Nodes, info.Edges, info.Cells)
	}
	if info.Skeleton != "cells" || info.Mode != "through" || info.Resolution != pipeline.DefaultResolution {
		t.Errorf("unexpected settings %+v", info)
	}
	if len(info.Fingerprint) != 64 {
		t.Errorf("fingerprint %q", info.Fingerprint)
	}
}

func TestCells(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 16},
		{"with outer", "?outer=true", 17},
		{"bbox", "?bbox=0.001,0.001,0.009,0.009", 1},
		{"bbox outside", "?bbox=1,1,2,2", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+"/v1/cells"+tt.query)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
				t.Errorf("content type %q", ct)
			}
			var fc struct {
				Features []json.RawMessage `json:"features"`
			}
			decodeBody(t, resp, &fc)
			if len(fc.Features) != tt.want {
				t.Errorf("got %d features, want %d", len(fc.Features), tt.want)
			}
		})
	}
}

func TestRoute(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/route", bandRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res pipeline.RouteResult
	decodeBody(t, resp, &res)
	if !res.Found || res.Path == nil {
		t.Fatalf("no route: %+v", res)
	}
	if diff := cmp.Diff([]roadgraph.NodeID{0, 5, 6, 7, 8, 9, 4}, res.Path.Nodes); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if len(res.Alternatives) != 3 {
		t.Errorf("got %d alternatives, want 3", len(res.Alternatives))
	}
}

func TestRouteGeoJSON(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/route?format=geojson", bandRequest())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	decodeBody(t, resp, &fc)
	if fc.Type != "FeatureCollection" || len(fc.Features) != 5 {
		t.Errorf("got %s with %d features, want FeatureCollection with 5", fc.Type, len(fc.Features))
	}
}

func TestRouteErrors(t *testing.T) {
	ts := newTestServer(t)
	three := bandRequest()
	three.Points = append(three.Points, geo.Point{Lat: 0.04, Lon: 0.04})
	noROI := bandRequest()
	noROI.ROI = nil
	badCoord := bandRequest()
	badCoord.Points[0].Lat = 91

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"broken json", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"points":[],"via":[]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing roi", noROI, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad coordinate", badCoord, http.StatusBadRequest, "INVALID_COORDINATE"},
		{"via points", three, http.StatusNotImplemented, "UNSUPPORTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/route", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body errorBody
			decodeBody(t, resp, &body)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (%s)", body.Code, tt.wantCode, body.Error)
			}
			if body.RequestID == "" {
				t.Error("error body lacks request id")
			}
		})
	}
}

func TestRoutingErrorsOutsideRoute(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name       string
		resp       func() *http.Response
		wantStatus int
	}{
		{"bad bbox", func() *http.Response { return get(t, ts.URL+"/v1/cells?bbox=1,2,3") }, http.StatusBadRequest},
		{"inverted bbox", func() *http.Response { return get(t, ts.URL+"/v1/cells?bbox=2,2,1,1") }, http.StatusBadRequest},
		{"wrong method", func() *http.Response { return get(t, ts.URL+"/v1/route") }, http.StatusMethodNotAllowed},
		{"unknown path", func() *http.Response { return get(t, ts.URL+"/v2/route") }, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp().StatusCode; got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestBatch(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts.URL+"/v1/route/batch", []pipeline.RouteRequest{bandRequest(), bandRequest()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var results []pipeline.RouteResult
	decodeBody(t, resp, &results)
	if len(results) != 2 || !results[0].Found || !results[1].Found {
		t.Errorf("unexpected results %+v", results)
	}

	big := make([]pipeline.RouteRequest, MaxBatch+1)
	for i := range big {
		big[i] = bandRequest()
	}
	if got := post(t, ts.URL+"/v1/route/batch", big).StatusCode; got != http.StatusBadRequest {
		t.Errorf("oversized batch status = %d, want 400", got)
	}
}

func TestRouteTimeout(t *testing.T) {
	ts := newTestServer(t, WithTimeout(time.Nanosecond))
	resp := post(t, ts.URL+"/v1/route", bandRequest())
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusGatewayTimeout)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidPolygon, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodePrecondition, "x"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeInvariantViolation, "x"), http.StatusUnprocessableEntity},
		{errors.NotImplemented("via points"), http.StatusNotImplemented},
		{fmt.Errorf("request 3: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{context.Canceled, statusClientClosed},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

type recordingHooks struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, method, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, fmt.Sprintf("%s %s %d", method, path, status))
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	get(t, ts.URL+"/healthz")
	post(t, ts.URL+"/v1/route", "{")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	want := []string{"GET /healthz", "GET /healthz 200", "POST /v1/route", "POST /v1/route 400"}
	if diff := cmp.Diff(want, hooks.events); diff != "" {
		t.Errorf("hook events mismatch (-want +got):\n%s", diff)
	}
}
