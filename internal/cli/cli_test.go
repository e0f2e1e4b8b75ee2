package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/config"
	"github.com/matzehuels/costgraph/pkg/cost"
	errs "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/integrations/pipelines"
	"github.com/matzehuels/costgraph/pkg/pipeline"
)

const testPaths = `[
	{
		"startNode": {"name": "Ingest", "region": "us-east-1", "state": "active", "type": "Lambda", "memoryMb": 512},
		"endNode": {"name": "Lake", "region": "us-east-1", "state": "active", "type": "S3"},
		"relationshipType": "FLOWS_TO",
		"relationshipProperties": {"cost": 12.5, "protocol": "https"}
	},
	{
		"startNode": {"name": "Lake", "region": "us-east-1", "state": "active", "type": "S3"},
		"endNode": {"name": "Warehouse", "region": "eu-west-1", "state": "active", "type": "Redshift"},
		"relationshipProperties": {"cost": null}
	}
]`

const testCosts = `[
	{"region": "eu-west-1", "totalCost": 1500, "costBreakdown": {"compute": 1000, "storage": 500}},
	{"region": "us-east-1", "totalCost": 1200, "costBreakdown": {"compute": 800, "storage": 400}}
]`

func testSnapshot(t *testing.T) *pipelines.Snapshot {
	t.Helper()
	paths, err := graph.ReadPaths(strings.NewReader(testPaths))
	if err != nil {
		t.Fatalf("ReadPaths: %v", err)
	}
	records, err := cost.ReadRecords(strings.NewReader(testCosts))
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	return &pipelines.Snapshot{Paths: paths, Costs: records}
}

type fakeSource struct {
	snap      *pipelines.Snapshot
	err       error
	calls     int
	refreshed bool
}

func (f *fakeSource) Load(_ context.Context, name, provider string, refresh bool) (*pipelines.Snapshot, error) {
	f.calls++
	f.refreshed = f.refreshed || refresh
	if f.err != nil {
		return nil, f.err
	}
	s := *f.snap
	s.Pipeline, s.Provider = name, provider
	return &s, nil
}

// testCLI isolates config and cache directories and serves data from src.
func testCLI(t *testing.T, src pipeline.Source) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, key := range []string{config.EnvAPIBaseURL, config.EnvRedisAddr, config.EnvRedisDB, config.EnvMongoURI, config.EnvCacheTTL, config.EnvServerAddr} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.newSource = func(cache.Cache, *config.Config) pipeline.Source { return src }
	return c, &logs
}

func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var out, stderr bytes.Buffer
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c, _ := testCLI(t, nil)
	root := c.RootCommand()

	for _, name := range []string{"graph", "cost", "watch", "pipelines", "history", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestGraphCommand(t *testing.T) {
	src := &fakeSource{snap: testSnapshot(t)}
	c, _ := testCLI(t, src)

	out, err := run(t, c, "graph", "Smart Grid Analytics Platform", "-p", "GCP", "--no-cache")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	for _, want := range []string{"Smart Grid Analytics Platform (GCP)", "3 nodes", "2 edges", "Network Regions (GCP)", "us-east-1", "eu-west-1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
}

func TestGraphCommandWritesJSON(t *testing.T) {
	c, _ := testCLI(t, &fakeSource{snap: testSnapshot(t)})
	path := filepath.Join(t.TempDir(), "view.json")

	if _, err := run(t, c, "graph", "demo", "-o", path, "--no-cache"); err != nil {
		t.Fatalf("graph: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var view struct {
		Pipeline string   `json:"pipeline"`
		Provider string   `json:"provider"`
		Legend   []string `json:"legend"`
		Graph    struct {
			Nodes []json.RawMessage `json:"nodes"`
		} `json:"graph"`
	}
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Pipeline != "demo" || view.Provider != errs.ProviderAWS {
		t.Errorf("view = %s (%s)", view.Pipeline, view.Provider)
	}
	if len(view.Graph.Nodes) != 3 || len(view.Legend) != 2 {
		t.Errorf("nodes = %d, legend = %v", len(view.Graph.Nodes), view.Legend)
	}
}

func TestGraphCommandFromFiles(t *testing.T) {
	src := &fakeSource{err: errs.New(errs.ErrCodeFetchFailed, "should not be called")}
	c, _ := testCLI(t, src)

	dir := t.TempDir()
	paths := filepath.Join(dir, "paths.json")
	if err := os.WriteFile(paths, []byte(testPaths), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, c, "graph", "demo", "--paths", paths, "--no-cache")
	if err != nil {
		t.Fatalf("graph --paths: %v", err)
	}
	if !strings.Contains(out, "3 nodes") {
		t.Errorf("output = %s", out)
	}
	if src.calls != 0 {
		t.Error("reading files should not hit the API")
	}
}

func TestGraphCommandEmpty(t *testing.T) {
	c, _ := testCLI(t, &fakeSource{snap: &pipelines.Snapshot{}})

	out, err := run(t, c, "graph", "demo", "--no-cache")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, "no data") {
		t.Errorf("empty graph output = %s", out)
	}
}

func TestGraphCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		src      *fakeSource
		wantCode errs.Code
	}{
		{
			name:     "unknown provider",
			args:     []string{"graph", "demo", "-p", "aws"},
			src:      &fakeSource{snap: &pipelines.Snapshot{}},
			wantCode: errs.ErrCodeInvalidProvider,
		},
		{
			name:     "bad format",
			args:     []string{"graph", "demo", "-o", "x.png", "-f", "png"},
			src:      &fakeSource{snap: &pipelines.Snapshot{}},
			wantCode: errs.ErrCodeInvalidFormat,
		},
		{
			name:     "fetch failure",
			args:     []string{"graph", "demo"},
			src:      &fakeSource{err: errs.New(errs.ErrCodeFetchFailed, pipelines.FetchFailedMessage)},
			wantCode: errs.ErrCodeFetchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testCLI(t, tt.src)
			_, err := run(t, c, append(tt.args, "--no-cache")...)
			if !errs.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestCostCommand(t *testing.T) {
	c, _ := testCLI(t, &fakeSource{snap: testSnapshot(t)})

	out, err := run(t, c, "cost", "demo", "--no-cache")
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	for _, want := range []string{"us-east-1", cost.BestOptionLabel, "$1,200.00", "$1,500.00", "+25.0%", "Service Comparison", "compute", "Cost Trend"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "us-east-1") > strings.Index(out, "eu-west-1") {
		t.Error("cheapest region should be listed first")
	}
}

func TestCostCommandJSON(t *testing.T) {
	c, _ := testCLI(t, &fakeSource{snap: testSnapshot(t)})

	out, err := run(t, c, "cost", "demo", "--json", "--no-cache")
	if err != nil {
		t.Fatalf("cost --json: %v", err)
	}
	var agg cost.Aggregation
	if err := json.Unmarshal([]byte(out), &agg); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(agg.Ranked) != 2 || !agg.Ranked[0].BestOption || agg.Ranked[0].Region != "us-east-1" {
		t.Errorf("ranked = %+v", agg.Ranked)
	}
	if len(agg.Trend) != cost.TrendMonths {
		t.Errorf("trend points = %d", len(agg.Trend))
	}
}

func TestCostCommandMalformed(t *testing.T) {
	snap := testSnapshot(t)
	snap.Costs = append(snap.Costs, cost.Record{Region: "ap-south-1"})
	c, _ := testCLI(t, &fakeSource{snap: snap})

	_, err := run(t, c, "cost", "demo", "--no-cache")
	if !errs.Is(err, errs.ErrCodeMalformedRecord) {
		t.Errorf("error = %v, want MALFORMED_RECORD", err)
	}
}

func TestPipelinesCommand(t *testing.T) {
	c, _ := testCLI(t, nil)

	out, err := run(t, c, "pipelines")
	if err != nil {
		t.Fatalf("pipelines: %v", err)
	}
	for _, p := range config.DefaultPipelines() {
		if !strings.Contains(out, p.Name) {
			t.Errorf("catalogue missing %q", p.Name)
		}
	}
}

func TestHistoryCommand(t *testing.T) {
	c, _ := testCLI(t, nil)

	out, err := run(t, c, "history", "demo", "--no-cache")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "not persisted") || !strings.Contains(out, "no data") {
		t.Errorf("history output = %s", out)
	}

	if _, err := run(t, c, "history", "demo", "--limit=-1"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("negative limit error = %v", err)
	}
}

func TestInvalidAPIFlag(t *testing.T) {
	c, _ := testCLI(t, nil)

	if _, err := run(t, c, "pipelines", "--api", "not a url"); err == nil {
		t.Error("invalid --api should fail")
	}
}

func TestRetryPolicy(t *testing.T) {
	if p := retryPolicy(1); p.Attempts != 1 {
		t.Errorf("retryPolicy(1).Attempts = %d", p.Attempts)
	}
	if p := retryPolicy(4); p.Attempts != 4 || p.Delay == 0 {
		t.Errorf("retryPolicy(4) = %+v", p)
	}
}

func TestKeyerPrefix(t *testing.T) {
	cfg := config.Default()
	if got := keyer(cfg).HTTPKey("pipelines:", "k"); got != "http:pipelines::k" {
		t.Errorf("unprefixed key = %s", got)
	}
	cfg.Cache.Prefix = "team-a:"
	if got := keyer(cfg).HTTPKey("pipelines:", "k"); got != "team-a:http:pipelines::k" {
		t.Errorf("prefixed key = %s", got)
	}
}
