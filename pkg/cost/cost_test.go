package cost

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/costgraph/pkg/errors"
)

func mustRecords(t *testing.T, src string) []Record {
	t.Helper()
	var records []Record
	if err := json.Unmarshal([]byte(src), &records); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return records
}

func fixed(v float64) func() float64 { return func() float64 { return v } }

func TestAggregateScenario(t *testing.T) {
	records := mustRecords(t, `[
		{"region": "eu-west", "totalCost": 120, "costBreakdown": {"compute": 70, "storage": 50}},
		{"region": "us-east", "totalCost": 100, "costBreakdown": {"compute": 60, "storage": 40}}
	]`)

	agg, err := Aggregate(records, Options{Rand: fixed(0.5)})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if got := agg.Regions(); !reflect.DeepEqual(got, []string{"us-east", "eu-west"}) {
		t.Errorf("Regions() = %v", got)
	}
	best, ok := agg.Best()
	if !ok || best.Region != "us-east" || best.Badge() != BestOptionLabel {
		t.Errorf("Best() = %+v, %v", best, ok)
	}
	if agg.Ranked[1].Badge() != "" {
		t.Error("only the cheapest region carries the badge")
	}

	if len(agg.ServiceRows) != 2 {
		t.Fatalf("service rows = %d, want 2", len(agg.ServiceRows))
	}
	wantRows := []struct {
		service      string
		usEast, euWt float64
	}{
		{"compute", 60, 70},
		{"storage", 40, 50},
	}
	for i, w := range wantRows {
		row := agg.ServiceRows[i]
		if row.Service != w.service {
			t.Errorf("row %d service = %q, want %q", i, row.Service, w.service)
		}
		if got := row.Amount("us-east"); got == nil || *got != w.usEast {
			t.Errorf("%s us-east = %v, want %v", w.service, got, w.usEast)
		}
		if got := row.Amount("eu-west"); got == nil || *got != w.euWt {
			t.Errorf("%s eu-west = %v, want %v", w.service, got, w.euWt)
		}
	}

	want := []Difference{{Name: "eu-west", Value: "20.0", ActualCost: 120}}
	if len(agg.Differences) != 1 {
		t.Fatalf("differences = %+v", agg.Differences)
	}
	d := agg.Differences[0]
	if d.Name != want[0].Name || d.Value != want[0].Value || d.ActualCost != want[0].ActualCost {
		t.Errorf("difference = %+v, want %+v", d, want[0])
	}
	if d.Percent == nil || *d.Percent != 20 {
		t.Errorf("Percent = %v, want 20", d.Percent)
	}

	if agg.Summary != (Summary{BestRegion: "us-east", Lowest: 100, Highest: 120, Spread: 20, Regions: 2}) {
		t.Errorf("Summary = %+v", agg.Summary)
	}
}

func TestRankingIsStable(t *testing.T) {
	records := []Record{
		{Region: "A", TotalCost: Amount(10)},
		{Region: "B", TotalCost: Amount(10)},
		{Region: "C", TotalCost: Amount(5)},
	}

	agg, err := Aggregate(records, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if got := agg.Regions(); !reflect.DeepEqual(got, []string{"C", "A", "B"}) {
		t.Errorf("Regions() = %v, want [C A B]", got)
	}
	for i, r := range agg.Ranked {
		if r.Rank != i {
			t.Errorf("%s rank = %d, want %d", r.Region, r.Rank, i)
		}
	}
}

func TestDifferencesSeries(t *testing.T) {
	records := []Record{
		{Region: "cheap", TotalCost: Amount(50)},
		{Region: "x", TotalCost: Amount(100)},
		{Region: "y", TotalCost: Amount(100)},
	}

	agg, err := Aggregate(records, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(agg.Differences) != 2 {
		t.Fatalf("differences = %d, want 2", len(agg.Differences))
	}
	for _, d := range agg.Differences {
		if d.Value != "100.0" || d.ActualCost != 100 {
			t.Errorf("difference = %+v, want 100.0 / 100", d)
		}
		if FormatPercent(d) != "+100.0%" {
			t.Errorf("FormatPercent = %q", FormatPercent(d))
		}
	}
}

func TestDifferencesZeroBest(t *testing.T) {
	records := []Record{
		{Region: "free", TotalCost: Amount(0)},
		{Region: "paid", TotalCost: Amount(10)},
	}

	agg, err := Aggregate(records, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	d := agg.Differences[0]
	if d.Percent != nil || d.Value != NotApplicable {
		t.Errorf("difference = %+v, want n/a", d)
	}
	if FormatPercent(d) != NotApplicable {
		t.Errorf("FormatPercent = %q", FormatPercent(d))
	}
}

func TestDifferenceRounding(t *testing.T) {
	records := []Record{
		{Region: "a", TotalCost: Amount(3)},
		{Region: "b", TotalCost: Amount(4)},
	}

	agg, err := Aggregate(records, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	d := agg.Differences[0]
	if d.Value != "33.3" || *d.Percent != 33.3 {
		t.Errorf("difference = %q / %v, want 33.3", d.Value, *d.Percent)
	}
}

func TestAggregateMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"missing region", `[{"totalCost": 1}]`, "record 0: missing region"},
		{"null region", `[{"region": "a", "totalCost": 1}, {"region": null, "totalCost": 1}]`, "record 1: missing region"},
		{"empty region", `[{"region": "", "totalCost": 1}]`, "missing region"},
		{"missing total", `[{"region": "a"}]`, "missing totalCost"},
		{"null total", `[{"region": "a", "totalCost": null}]`, "missing totalCost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(mustRecords(t, tt.src), Options{})
			if !errs.Is(err, errs.ErrCodeMalformedRecord) {
				t.Fatalf("err = %v, want MALFORMED_RECORD", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("err = %v, want mention of %q", err, tt.msg)
			}
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	for _, records := range [][]Record{nil, {}} {
		agg, err := Aggregate(records, Options{})
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		if !agg.IsEmpty() || len(agg.Trend) != 0 || len(agg.ServiceRows) != 0 {
			t.Errorf("Aggregate(%v) = %+v, want empty", records, agg)
		}
		if _, ok := agg.Best(); ok {
			t.Error("Best() on empty aggregation reported ok")
		}
	}
}

func TestServiceRowsFromBestRegion(t *testing.T) {
	records := mustRecords(t, `[
		{"region": "pricey", "totalCost": 200, "costBreakdown": {"gpu": 150, "compute": 50}},
		{"region": "cheap", "totalCost": 80, "costBreakdown": {"compute": 50, "network": 30}}
	]`)

	agg, err := Aggregate(records, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	var services []string
	for _, r := range agg.ServiceRows {
		services = append(services, r.Service)
	}
	if !reflect.DeepEqual(services, []string{"compute", "network"}) {
		t.Errorf("services = %v, want cheapest region's keys", services)
	}
	if agg.ServiceRows[1].Amount("pricey") != nil {
		t.Error("missing cell should be nil, not zero")
	}

	out, err := json.Marshal(agg.ServiceRows[1])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"service":"network","cheap":30}` {
		t.Errorf("row JSON = %s", out)
	}

	union, err := Aggregate(records, Options{UnionServices: true})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	services = services[:0]
	for _, r := range union.ServiceRows {
		services = append(services, r.Service)
	}
	if !reflect.DeepEqual(services, []string{"compute", "network", "gpu"}) {
		t.Errorf("union services = %v", services)
	}
}

func TestTrend(t *testing.T) {
	records := []Record{
		{Region: "a", TotalCost: Amount(100)},
		{Region: "b", TotalCost: Amount(200)},
	}
	now := func() time.Time { return time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC) }

	agg, err := Aggregate(records, Options{Rand: fixed(0.5), Now: now})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(agg.Trend) != TrendMonths {
		t.Fatalf("trend points = %d, want %d", len(agg.Trend), TrendMonths)
	}

	var months []string
	for _, p := range agg.Trend {
		months = append(months, p.Month)
		if v, _ := p.Value("a"); v != 100 {
			t.Errorf("%s a = %v, want 100", p.Month, v)
		}
		if v, _ := p.Value("b"); v != 200 {
			t.Errorf("%s b = %v, want 200", p.Month, v)
		}
	}
	want := []string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}
	if !reflect.DeepEqual(months, want) {
		t.Errorf("months = %v, want %v", months, want)
	}
}

func TestTrendJitterBounds(t *testing.T) {
	records := []Record{{Region: "a", TotalCost: Amount(123.45)}}

	for _, r := range []float64{0, 0.999999} {
		agg, err := Aggregate(records, Options{Rand: fixed(r)})
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		for _, p := range agg.Trend {
			v, _ := p.Value("a")
			if v < 123.45*0.95-0.01 || v > 123.45*1.05+0.01 {
				t.Errorf("trend value %v outside jitter bounds", v)
			}
			if math.Round(v*100)/100 != v {
				t.Errorf("trend value %v not rounded to cents", v)
			}
		}
	}
}

func TestBreakdownJSON(t *testing.T) {
	var b Breakdown
	if err := json.Unmarshal([]byte(`{"storage": 1.5, "compute": 2, "skip": null}`), &b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := b.Services(); !reflect.DeepEqual(got, []string{"storage", "compute"}) {
		t.Errorf("Services() = %v", got)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"storage":1.5,"compute":2}` {
		t.Errorf("Marshal = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"compute": "lots"}`), &b); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12.5, "$12.50"},
		{1234.567, "$1,234.57"},
		{-3, "-$3.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.in); got != tt.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadRecordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cost.json")
	if err := os.WriteFile(path, []byte(`[{"region": "a", "totalCost": 3, "pathDetails": [{"name": "Ingest", "id": 7}]}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := ReadRecordsFile(path)
	if err != nil {
		t.Fatalf("ReadRecordsFile: %v", err)
	}
	if len(records) != 1 || records[0].Region != "a" || records[0].Total() != 3 {
		t.Errorf("records = %+v", records)
	}

	empty, err := ReadRecords(strings.NewReader("null"))
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("ReadRecords(null) = %v, %v", empty, err)
	}
	if _, err := ReadRecordsFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestRankedJSON(t *testing.T) {
	agg, err := Aggregate([]Record{
		{Region: "b", TotalCost: Amount(2)},
		{Region: "a", TotalCost: Amount(1)},
	}, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	data, err := json.Marshal(agg.Ranked)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got []Ranked
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 2 || got[1].Region != "b" || got[1].Rank != 1 || !got[0].BestOption {
		t.Errorf("decoded = %+v", got)
	}
}
