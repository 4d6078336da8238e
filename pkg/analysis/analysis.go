// Package analysis computes the reasoning premium: how much more the
// reasoning models of a catalog cost, on average, than its base models.
package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/jdgilhuly/premium_tracker/pkg/catalog"
)

// CollapseThreshold is the premium ratio below which the reasoning premium
// is considered to be collapsing toward base-model pricing.
const CollapseThreshold = 3.0

// ErrZeroBase is returned by ComputeRatio when the base average is zero.
var ErrZeroBase = errors.New("base price average is zero")

// ProviderAnalysis is the per-provider premium breakdown.
type ProviderAnalysis struct {
	AvgBasePrice      float64 `json:"avg_base_price"`
	AvgReasoningPrice float64 `json:"avg_reasoning_price"`
	PremiumRatio      float64 `json:"premium_ratio"`
}

// Summary is the premium computed over every provider's prices combined.
type Summary struct {
	OverallBaseAvg      float64 `json:"overall_base_avg"`
	OverallReasoningAvg float64 `json:"overall_reasoning_avg"`
	OverallPremiumRatio float64 `json:"overall_premium_ratio"`
	CollapseThreshold   float64 `json:"collapse_threshold"`
	PremiumCollapsing   bool    `json:"premium_collapsing"`
}

// Report is the full analysis of one run. Summary is nil when the catalog
// has no base prices or no reasoning prices at all.
type Report struct {
	Timestamp time.Time                   `json:"timestamp"`
	Providers map[string]ProviderAnalysis `json:"providers"`
	Summary   *Summary                    `json:"summary"`
}

// reportJSON mirrors Report on the wire, where an absent summary is {}.
type reportJSON struct {
	Timestamp time.Time                   `json:"timestamp"`
	Providers map[string]ProviderAnalysis `json:"providers"`
	Summary   json.RawMessage             `json:"summary"`
}

var emptyObject = json.RawMessage("{}")

// MarshalJSON encodes a nil Summary as an empty object.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Timestamp: r.Timestamp.UTC(),
		Providers: r.Providers,
		Summary:   emptyObject,
	}
	if out.Providers == nil {
		out.Providers = map[string]ProviderAnalysis{}
	}
	if r.Summary != nil {
		data, err := json.Marshal(r.Summary)
		if err != nil {
			return nil, err
		}
		out.Summary = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an empty or null summary object as a nil Summary.
func (r *Report) UnmarshalJSON(data []byte) error {
	var in reportJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	r.Timestamp = in.Timestamp
	r.Providers = in.Providers
	r.Summary = nil

	raw := bytes.TrimSpace(in.Summary)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || isEmptyObject(raw) {
		return nil
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	r.Summary = &s
	return nil
}

func isEmptyObject(raw []byte) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return len(m) == 0
}

// Averages holds a catalog slice partitioned by the reasoning flag. The
// Has* fields are false when a partition is empty, in which case the
// matching mean is zero and must not be used as a divisor.
type Averages struct {
	BasePrices      []float64
	ReasoningPrices []float64

	Base         float64
	Reasoning    float64
	HasBase      bool
	HasReasoning bool
}

// Complete reports whether both partitions have at least one price.
func (a Averages) Complete() bool {
	return a.HasBase && a.HasReasoning
}

// Aggregate partitions model prices by the reasoning flag and averages each
// partition.
func Aggregate(models []catalog.Model) Averages {
	var a Averages
	for _, m := range models {
		if m.Reasoning {
			a.ReasoningPrices = append(a.ReasoningPrices, m.PricePerMillion)
		} else {
			a.BasePrices = append(a.BasePrices, m.PricePerMillion)
		}
	}
	a.Base, a.HasBase = mean(a.BasePrices)
	a.Reasoning, a.HasReasoning = mean(a.ReasoningPrices)
	return a
}

// ComputeRatio returns avgReasoning / avgBase.
func ComputeRatio(avgReasoning, avgBase float64) (float64, error) {
	if avgBase == 0 {
		return 0, ErrZeroBase
	}
	return avgReasoning / avgBase, nil
}

// IsCollapsing reports whether ratio is below CollapseThreshold.
func IsCollapsing(ratio float64) bool {
	return ratio < CollapseThreshold
}

// Round2 rounds x to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Analyze builds a Report for cat. Providers lacking either base or
// reasoning models are left out of Providers, but their prices still count
// toward the overall summary. A zero base average is treated like a missing
// partition.
func Analyze(cat catalog.Catalog, now time.Time) *Report {
	rep := &Report{
		Timestamp: now.UTC(),
		Providers: make(map[string]ProviderAnalysis, len(cat.Providers)),
	}

	var all []catalog.Model
	for _, p := range cat.Providers {
		all = append(all, p.Models...)

		avg := Aggregate(p.Models)
		if !avg.Complete() {
			continue
		}
		ratio, err := ComputeRatio(avg.Reasoning, avg.Base)
		if err != nil {
			continue
		}
		rep.Providers[p.Name] = ProviderAnalysis{
			AvgBasePrice:      Round2(avg.Base),
			AvgReasoningPrice: Round2(avg.Reasoning),
			PremiumRatio:      Round2(ratio),
		}
	}

	overall := Aggregate(all)
	if !overall.Complete() {
		return rep
	}
	ratio, err := ComputeRatio(overall.Reasoning, overall.Base)
	if err != nil {
		return rep
	}

	rounded := Round2(ratio)
	rep.Summary = &Summary{
		OverallBaseAvg:      Round2(overall.Base),
		OverallReasoningAvg: Round2(overall.Reasoning),
		OverallPremiumRatio: rounded,
		CollapseThreshold:   CollapseThreshold,
		PremiumCollapsing:   IsCollapsing(rounded),
	}
	return rep
}

func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), true
}
