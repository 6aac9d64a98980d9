// Package anomaly filters and summarizes the historical anomaly catalog.
// Deviations arrive precomputed on each record.
package anomaly

import (
	"time"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
)

const recentWindow = 24 * time.Hour

type Summary struct {
	Total             int     `json:"total"`
	Critical          int     `json:"critical"`
	High              int     `json:"high"`
	Medium            int     `json:"medium"`
	Low               int     `json:"low"`
	AverageConfidence float64 `json:"average_confidence"`
	RecentAnomalies   int     `json:"recent_anomalies"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type Patterns struct {
	MostCommonType       string      `json:"most_common_type"`
	MostAffectedLocation string      `json:"most_affected_location"`
	TimeDistribution     []HourCount `json:"time_distribution"`
}

type Report struct {
	Anomalies  []Record `json:"anomalies"`
	Summary    Summary  `json:"summary"`
	Patterns   Patterns `json:"patterns"`
	Confidence float64  `json:"confidence"`
}

type Detector struct {
	catalog *catalog.Catalog
	records []Record
}

func NewDetector(c *catalog.Catalog, records []Record) *Detector {
	return &Detector{catalog: c, records: append([]Record(nil), records...)}
}

// Detect filters by state and district and summarizes the matches
// relative to now. An empty filter matches every record.
func (d *Detector) Detect(stateID, districtID string, now time.Time) Report {
	matched := []Record{}
	for _, r := range d.records {
		if stateID != "" && r.StateID != stateID {
			continue
		}
		if districtID != "" && r.DistrictID != districtID {
			continue
		}
		matched = append(matched, r)
	}

	report := Report{
		Anomalies: matched,
		Summary:   Summary{Total: len(matched)},
		Patterns:  Patterns{TimeDistribution: HourHistogram(matched)},
	}
	if len(matched) == 0 {
		return report
	}

	cutoff := now.Add(-recentWindow)
	var confSum float64
	types := make([]string, 0, len(matched))
	states := make([]string, 0, len(matched))
	for _, r := range matched {
		switch r.Severity {
		case catalog.RiskCritical:
			report.Summary.Critical++
		case catalog.RiskHigh:
			report.Summary.High++
		case catalog.RiskMedium:
			report.Summary.Medium++
		case catalog.RiskLow:
			report.Summary.Low++
		}
		if r.DetectedAt.After(cutoff) {
			report.Summary.RecentAnomalies++
		}
		confSum += r.Confidence
		types = append(types, r.Type)
		states = append(states, r.StateID)
	}
	report.Summary.AverageConfidence = confSum / float64(len(matched))
	report.Confidence = report.Summary.AverageConfidence
	report.Patterns.MostCommonType = mode(types)
	report.Patterns.MostAffectedLocation = d.catalog.LocationName(mode(states), "")
	return report
}

// HourHistogram counts detections per UTC hour, omitting empty hours.
func HourHistogram(records []Record) []HourCount {
	var slots [24]int
	for _, r := range records {
		slots[r.DetectedAt.UTC().Hour()]++
	}
	out := []HourCount{}
	for h, n := range slots {
		if n > 0 {
			out = append(out, HourCount{Hour: h, Count: n})
		}
	}
	return out
}

// mode returns the most frequent value. Ties go to the value seen first.
func mode(values []string) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := ""
	for _, v := range values {
		if best == "" || counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
