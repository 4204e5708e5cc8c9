package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
	"github.com/matzehuels/topograph/pkg/view"
)

func testSnapshot() topology.Snapshot {
	return topology.Snapshot{
		Nodes: []topology.GraphNode{{ID: "a", IsPrimary: true}, {ID: "b"}, {ID: "c"}},
		Edges: []topology.GraphEdge{
			{ID: "a-b", Source: "a", Target: "b", Kind: topology.EdgeUnidirectional},
			{ID: "a-c", Source: "a", Target: "c", Kind: topology.EdgeUnidirectional},
		},
	}
}

func newTestServer(t *testing.T, load bool) (*httptest.Server, *view.Controller) {
	t.Helper()
	ctrl := view.NewController()
	if load {
		if err := ctrl.Update(context.Background(), testSnapshot(), "h"); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	ts := httptest.NewServer(New(Config{Controller: ctrl}).Handler())
	t.Cleanup(ts.Close)
	return ts, ctrl
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func openViewer(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/api/viewers", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/viewers status = %d, want 201", resp.StatusCode)
	}
	return decode[map[string]string](t, resp)["id"]
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := decode[map[string]any](t, resp)["status"]; got != "ok" {
		t.Errorf("status field = %v, want ok", got)
	}
}

func TestTopologyNoSnapshot(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp := do(t, http.MethodGet, ts.URL+"/api/topology", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	body := decode[errorResponse](t, resp)
	if body.Error.Code != "NO_SNAPSHOT" {
		t.Errorf("code = %q, want NO_SNAPSHOT", body.Error.Code)
	}
}

func TestTopology(t *testing.T) {
	ts, _ := newTestServer(t, true)
	resp := do(t, http.MethodGet, ts.URL+"/api/topology", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Nodes []struct {
			ID       string `json:"id"`
			Type     string `json:"type"`
			Position struct{ X, Y float64 }
		} `json:"nodes"`
		Edges []struct {
			ID string `json:"id"`
		} `json:"edges"`
		Roots []string `json:"roots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Nodes) != 3 || len(body.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges, want 3, 2", len(body.Nodes), len(body.Edges))
	}
	if len(body.Roots) != 1 || body.Roots[0] != "a" {
		t.Errorf("roots = %v, want [a]", body.Roots)
	}
	if body.Nodes[0].Type != "replTopoNode" {
		t.Errorf("node type = %q, want replTopoNode", body.Nodes[0].Type)
	}
}

func TestStatus(t *testing.T) {
	ts, _ := newTestServer(t, true)
	openViewer(t, ts)
	st := decode[view.Status](t, do(t, http.MethodGet, ts.URL+"/api/status", ""))
	if st.Version != 1 || st.Nodes != 3 || st.Viewers != 1 {
		t.Errorf("status = %+v, want version 1, 3 nodes, 1 viewer", st)
	}
}

func TestViewerHover(t *testing.T) {
	ts, _ := newTestServer(t, true)
	id := openViewer(t, ts)
	base := ts.URL + "/api/viewers/" + id

	resp := do(t, http.MethodPut, base+"/hover", `{"nodeId":"b"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT hover status = %d, want 200", resp.StatusCode)
	}
	st := decode[highlight.State](t, resp)
	if st.Focus != "b" {
		t.Errorf("focus = %q, want b", st.Focus)
	}
	if got := st.Nodes["c"].Opacity; got != highlight.OpacityDimmed {
		t.Errorf("c opacity = %v, want %v", got, highlight.OpacityDimmed)
	}
	if got := st.Nodes["a"].Opacity; got != highlight.OpacityFull {
		t.Errorf("a opacity = %v, want %v", got, highlight.OpacityFull)
	}

	got := decode[highlight.State](t, do(t, http.MethodGet, base+"/state", ""))
	if got.Focus != "b" {
		t.Errorf("GET state focus = %q, want b", got.Focus)
	}

	resp = do(t, http.MethodDelete, base+"/hover", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE hover status = %d, want 200", resp.StatusCode)
	}
	if st := decode[highlight.State](t, resp); st.Focused() {
		t.Errorf("focus after leave = %q, want none", st.Focus)
	}
}

func TestViewerStaleFocus(t *testing.T) {
	ts, _ := newTestServer(t, true)
	id := openViewer(t, ts)
	base := ts.URL + "/api/viewers/" + id

	do(t, http.MethodPut, base+"/hover", `{"nodeId":"a"}`)
	resp := do(t, http.MethodPut, base+"/hover", `{"nodeId":"gone"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	body := decode[errorResponse](t, resp)
	if body.Error.Code != "STALE_FOCUS_NODE" {
		t.Errorf("code = %q, want STALE_FOCUS_NODE", body.Error.Code)
	}
	if body.State == nil || body.State.Focus != "a" {
		t.Errorf("state = %+v, want unchanged focus a", body.State)
	}
}

func TestViewerBadRequests(t *testing.T) {
	ts, _ := newTestServer(t, true)
	id := openViewer(t, ts)
	base := ts.URL + "/api/viewers/" + id

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		status int
		code   string
	}{
		{"malformed body", http.MethodPut, base + "/hover", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty node id", http.MethodPut, base + "/hover", `{"nodeId":""}`, http.StatusBadRequest, "INVALID_NODE_ID"},
		{"unknown viewer state", http.MethodGet, ts.URL + "/api/viewers/nope/state", "", http.StatusNotFound, "VIEWER_NOT_FOUND"},
		{"unknown viewer hover", http.MethodPut, ts.URL + "/api/viewers/nope/hover", `{"nodeId":"a"}`, http.StatusNotFound, "VIEWER_NOT_FOUND"},
		{"unknown viewer close", http.MethodDelete, ts.URL + "/api/viewers/nope", "", http.StatusNotFound, "VIEWER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decode[errorResponse](t, resp).Error.Code; got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestViewerClose(t *testing.T) {
	ts, ctrl := newTestServer(t, true)
	id := openViewer(t, ts)

	resp := do(t, http.MethodDelete, ts.URL+"/api/viewers/"+id, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if n := ctrl.Status().Viewers; n != 0 {
		t.Errorf("viewers = %d, want 0", n)
	}
}

func TestSnapshotResetsViewers(t *testing.T) {
	ts, ctrl := newTestServer(t, true)
	id := openViewer(t, ts)
	base := ts.URL + "/api/viewers/" + id
	do(t, http.MethodPut, base+"/hover", `{"nodeId":"b"}`)

	next := topology.Snapshot{Nodes: []topology.GraphNode{{ID: "x"}}}
	if err := ctrl.Update(context.Background(), next, "h2"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	st := decode[highlight.State](t, do(t, http.MethodGet, base+"/state", ""))
	if st.Focused() {
		t.Errorf("focus after update = %q, want none", st.Focus)
	}
	if _, ok := st.Nodes["x"]; !ok {
		t.Errorf("state nodes = %v, want x", st.Nodes)
	}
}

func TestTopologySVG(t *testing.T) {
	ts, _ := newTestServer(t, true)
	id := openViewer(t, ts)
	do(t, http.MethodPut, ts.URL+"/api/viewers/"+id+"/hover", `{"nodeId":"b"}`)

	resp := do(t, http.MethodGet, ts.URL+"/api/topology.svg?viewer="+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
}

type countingRunner struct{ runs atomic.Int32 }

func (r *countingRunner) Run(ctx context.Context) error {
	r.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

type failingRunner struct{}

func (failingRunner) Run(context.Context) error { return errors.New("boom") }

func TestServeStopsOnCancel(t *testing.T) {
	r := &countingRunner{}
	srv := New(Config{Addr: "127.0.0.1:0", Controller: view.NewController(), Runners: []Runner{r}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if r.runs.Load() != 1 {
		t.Errorf("runner started %d times, want 1", r.runs.Load())
	}
}

func TestServeRunnerFailure(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0", Controller: view.NewController(), Runners: []Runner{failingRunner{}}})

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	select {
	case err := <-done:
		if err == nil || err.Error() != "boom" {
			t.Errorf("Serve() = %v, want boom", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after runner failure")
	}
}
