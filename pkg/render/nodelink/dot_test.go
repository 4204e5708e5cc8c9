package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/topograph/pkg/topology"
	"github.com/matzehuels/topograph/pkg/topology/highlight"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

func buildLayout(t *testing.T) *layout.Result {
	t.Helper()
	res, err := layout.Build(topology.Snapshot{
		Nodes: []topology.GraphNode{
			{ID: "primary", IsPrimary: true, ReplicaIDs: []topology.NodeID{"relay"}},
			{ID: "relay", ReplicaIDs: []topology.NodeID{"leaf"}, Host: "relay.db", Source: "primary", ReplicationRunning: true},
			{ID: "leaf"},
		},
		Edges: []topology.GraphEdge{
			{ID: "primary-relay", Source: "primary", Target: "relay", Kind: topology.EdgeBidirectional},
			{ID: "relay-leaf", Source: "relay", Target: "leaf", Kind: topology.EdgeUnidirectional},
		},
	})
	if err != nil {
		t.Fatalf("layout.Build: %v", err)
	}
	return res
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(buildLayout(t), nil, Options{})

	for _, want := range []string{
		`digraph G {`,
		`"primary" [label="primary", pos="0,0!"`,
		`fillcolor="` + ColorPrimarySource + `"`,
		`fillcolor="` + ColorReplicationSource + `"`,
		`fillcolor="` + ColorReplica + `"`,
		`"primary" -> "relay" [id="primary-relay"`,
		`dir=both`,
		`"relay" -> "leaf" [id="relay-leaf", color="#fafafa", penwidth=1, arrowhead=vee]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTHighlight(t *testing.T) {
	res := buildLayout(t)
	st, err := highlight.Compute("relay", res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	dot := ToDOT(res, &st, Options{Transparent: true})
	if !strings.Contains(dot, `bgcolor="transparent"`) {
		t.Error("transparent background not applied")
	}
	if !strings.Contains(dot, `penwidth=3`) {
		t.Errorf("on-path bidirectional edge not thickened:\n%s", dot)
	}

	other := ToDOT(res, &highlight.State{}, Options{})
	if !strings.Contains(other, `penwidth=2`) {
		t.Error("empty state should fall back to base styles")
	}
}

func TestToDOTDetailedLabel(t *testing.T) {
	dot := ToDOT(buildLayout(t), nil, Options{Detailed: true})
	if !strings.Contains(dot, `relay.db\nsource: primary (running)`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestWithAlpha(t *testing.T) {
	tests := []struct {
		color   string
		opacity float64
		want    string
	}{
		{"#FF0072", 1, "#FF0072"},
		{"#FF0072", 0.25, "#ff007240"},
		{"#fafafa", 0, "#fafafa00"},
		{"red", 0.5, "red"},
	}
	for _, tt := range tests {
		if got := withAlpha(tt.color, tt.opacity); got != tt.want {
			t.Errorf("withAlpha(%q, %v) = %q, want %q", tt.color, tt.opacity, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", got)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("input without viewBox should be unchanged")
	}
}
