// Package cost derives the comparison views shown next to a pipeline graph
// from per-region cost records: a ranking of regions, a per-service table,
// the percentage difference of each region from the cheapest one, and a
// synthetic twelve-month trend.
//
// # Usage
//
//	agg, err := cost.Aggregate(records, cost.Options{})
//	if err != nil {
//	    return err
//	}
//	best, _ := agg.Best()
//	fmt.Println(best.Region, cost.FormatUSD(best.Total()))
//
// # Trend Data
//
// The trend is not historical data. Each point is the region's current total
// scaled by a random factor in [0.95, 1.05). Supply [Options.Rand] and
// [Options.Now] for reproducible output.
package cost

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	errs "github.com/matzehuels/costgraph/pkg/errors"
)

// BestOptionLabel marks the cheapest region.
const BestOptionLabel = "Best Option"

// TrendMonths is the number of points in [Aggregation.Trend].
const TrendMonths = 12

// Options controls aggregation.
type Options struct {
	// UnionServices builds the service table from every region's services in
	// first-seen order instead of only the cheapest region's.
	UnionServices bool

	// Rand returns values in [0, 1) for trend jitter. Defaults to math/rand/v2.
	Rand func() float64

	// Now anchors the trend's last month. Defaults to time.Now.
	Now func() time.Time
}

// Aggregation holds every view derived from one set of cost records.
type Aggregation struct {
	Ranked      []Ranked     `json:"ranked"`
	ServiceRows []ServiceRow `json:"serviceComparison"`
	Differences []Difference `json:"percentageDifferences"`
	Trend       []TrendPoint `json:"trend"`
	Summary     Summary      `json:"summary"`
}

// Ranked is a record with its position in ascending total cost order.
type Ranked struct {
	Record
	Rank       int  `json:"rank"`
	BestOption bool `json:"bestOption"`
}

// Badge returns [BestOptionLabel] for the cheapest region and "" otherwise.
func (r Ranked) Badge() string {
	if r.BestOption {
		return BestOptionLabel
	}
	return ""
}

// UnmarshalJSON decodes the record together with its rank fields.
func (r *Ranked) UnmarshalJSON(data []byte) error {
	if err := r.Record.UnmarshalJSON(data); err != nil {
		return err
	}
	var meta struct {
		Rank       int  `json:"rank"`
		BestOption bool `json:"bestOption"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	r.Rank, r.BestOption = meta.Rank, meta.BestOption
	return nil
}

// Summary condenses the ranking.
type Summary struct {
	BestRegion string  `json:"bestRegion"`
	Lowest     float64 `json:"lowest"`
	Highest    float64 `json:"highest"`
	Spread     float64 `json:"spread"`
	Regions    int     `json:"regions"`
}

// Aggregate validates records and derives all comparison views.
//
// Every record must have a non-empty region and a total cost; the first
// record that does not fails the whole call with a MALFORMED_RECORD error.
// An empty or nil input yields an empty aggregation.
func Aggregate(records []Record, opts Options) (*Aggregation, error) {
	agg := &Aggregation{
		Ranked:      []Ranked{},
		ServiceRows: []ServiceRow{},
		Differences: []Difference{},
		Trend:       []TrendPoint{},
	}
	if len(records) == 0 {
		return agg, nil
	}
	if err := validate(records); err != nil {
		return nil, err
	}

	agg.Ranked = rank(records)
	agg.ServiceRows = serviceRows(agg.Ranked, opts.UnionServices)
	agg.Differences = differences(agg.Ranked)
	agg.Trend = trend(agg.Ranked, opts)
	agg.Summary = summarize(agg.Ranked)
	return agg, nil
}

// Best returns the cheapest region.
func (a *Aggregation) Best() (Ranked, bool) {
	if a == nil || len(a.Ranked) == 0 {
		return Ranked{}, false
	}
	return a.Ranked[0], true
}

// Regions returns region names in ranked order.
func (a *Aggregation) Regions() []string {
	out := make([]string, len(a.Ranked))
	for i, r := range a.Ranked {
		out[i] = r.Region
	}
	return out
}

// IsEmpty reports whether there is nothing to show.
func (a *Aggregation) IsEmpty() bool {
	return a == nil || len(a.Ranked) == 0
}

func validate(records []Record) error {
	for i, r := range records {
		if r.Region == "" {
			return errs.New(errs.ErrCodeMalformedRecord, "cost record %d: missing region", i)
		}
		if r.TotalCost == nil {
			return errs.New(errs.ErrCodeMalformedRecord, "cost record %d (%s): missing totalCost", i, r.Region)
		}
	}
	return nil
}

func rank(records []Record) []Ranked {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		switch {
		case a.Total() < b.Total():
			return -1
		case a.Total() > b.Total():
			return 1
		}
		return 0
	})

	out := make([]Ranked, len(sorted))
	for i, r := range sorted {
		out[i] = Ranked{Record: r, Rank: i, BestOption: i == 0}
	}
	return out
}

func summarize(ranked []Ranked) Summary {
	lo, hi := ranked[0].Total(), ranked[len(ranked)-1].Total()
	return Summary{
		BestRegion: ranked[0].Region,
		Lowest:     lo,
		Highest:    hi,
		Spread:     hi - lo,
		Regions:    len(ranked),
	}
}

// =============================================================================
// Differences
// =============================================================================

// Difference is how much more a region costs than the cheapest one.
// Percent is nil when the cheapest total is zero.
type Difference struct {
	Name       string   `json:"name"`
	Value      string   `json:"value"`
	Percent    *float64 `json:"percent"`
	ActualCost float64  `json:"actualCost"`
}

// NotApplicable is the Value of a difference with no defined percentage.
const NotApplicable = "n/a"

func differences(ranked []Ranked) []Difference {
	out := make([]Difference, 0, len(ranked)-1)
	best := ranked[0].Total()
	for _, r := range ranked[1:] {
		d := Difference{Name: r.Region, Value: NotApplicable, ActualCost: r.Total()}
		if best != 0 {
			pct := (r.Total() - best) / best * 100
			rounded := math.Round(pct*10) / 10
			d.Percent = &rounded
			d.Value = strconv.FormatFloat(pct, 'f', 1, 64)
		}
		out = append(out, d)
	}
	return out
}

// =============================================================================
// Trend
// =============================================================================

// TrendPoint is one month of the synthetic trend, with a value per region in
// ranked order.
type TrendPoint struct {
	Month  string        `json:"month"`
	Values []RegionValue `json:"values"`
}

// RegionValue is a region's amount at one trend point.
type RegionValue struct {
	Region string  `json:"region"`
	Amount float64 `json:"amount"`
}

// Value returns the amount for region.
func (p TrendPoint) Value(region string) (float64, bool) {
	for _, v := range p.Values {
		if v.Region == region {
			return v.Amount, true
		}
	}
	return 0, false
}

func trend(ranked []Ranked, opts Options) []TrendPoint {
	random := opts.Rand
	if random == nil {
		random = rand.Float64
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	t := now()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())

	out := make([]TrendPoint, TrendMonths)
	for i := range TrendMonths {
		month := first.AddDate(0, i-(TrendMonths-1), 0)
		p := TrendPoint{Month: month.Format("Jan"), Values: make([]RegionValue, len(ranked))}
		for j, r := range ranked {
			jitter := 0.95 + random()*0.1
			p.Values[j] = RegionValue{Region: r.Region, Amount: round2(r.Total() * jitter)}
		}
		out[i] = p
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
