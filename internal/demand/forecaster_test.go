package demand

import (
	"math"
	"testing"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/risk"
)

func newForecaster(t *testing.T, rnd risk.Source) *Forecaster {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return NewForecaster(c, nil, rnd)
}

func TestForecastNationalWeek(t *testing.T) {
	r := newForecaster(t, risk.Fixed(0.5)).Forecast("", "", risk.OneWeek)

	want := map[string]struct{ capacity, demand, surplus int }{
		"icuBeds":      {1000, 1250, -250},
		"ventilators":  {272, 340, -68},
		"medicines":    {12000, 15000, -3000},
		"medicalStaff": {360, 450, -90},
		"ambulances":   {68, 85, -17},
		"testingKits":  {20000, 25000, -5000},
	}
	if len(r.Predictions) != len(want) {
		t.Fatalf("got %d predictions", len(r.Predictions))
	}
	for _, p := range r.Predictions {
		w := want[p.Resource]
		if p.CurrentCapacity != w.capacity || p.PredictedDemand != w.demand || p.Surplus != w.surplus {
			t.Errorf("%s = %+v, want %+v", p.Resource, p, w)
		}
		if math.Abs(p.Confidence-0.85) > 1e-9 {
			t.Errorf("%s confidence = %v, want 0.85 from fixed source", p.Resource, p.Confidence)
		}
		if p.CriticalPeriod != "Week 1-2" {
			t.Errorf("CriticalPeriod = %q", p.CriticalPeriod)
		}
	}
	if r.Summary.CriticalShortages != 6 || len(r.Recommendations) != 6 {
		t.Errorf("shortages = %d, recommendations = %d", r.Summary.CriticalShortages, len(r.Recommendations))
	}
	if r.Summary.HighestDemand == nil || r.Summary.HighestDemand.Resource != "testingKits" {
		t.Errorf("HighestDemand = %+v", r.Summary.HighestDemand)
	}
	if r.Summary.OverallSurplus != -8425 {
		t.Errorf("OverallSurplus = %d, want -8425", r.Summary.OverallSurplus)
	}
	if r.Location != catalog.NationalLevel {
		t.Errorf("Location = %q", r.Location)
	}
}

func TestRecommendationPriority(t *testing.T) {
	r := newForecaster(t, risk.Fixed(0)).Forecast("", "", risk.OneWeek)

	byResource := map[string]Recommendation{}
	for _, rec := range r.Recommendations {
		byResource[rec.Resource] = rec
	}
	icu := byResource["icuBeds"]
	if icu.Priority != "critical" || icu.Timeline != "immediate" {
		t.Errorf("icuBeds = %+v", icu)
	}
	if icu.Action != "Increase icuBeds capacity by 250 units" {
		t.Errorf("Action = %q", icu.Action)
	}
	amb := byResource["ambulances"]
	if amb.Priority != "high" || amb.Timeline != "1-2 weeks" {
		t.Errorf("ambulances = %+v", amb)
	}
	// -100 exactly is not below the critical threshold
	if got := Recommend(Prediction{Resource: "x", Surplus: -100}); got.Priority != "high" {
		t.Errorf("Priority at -100 = %s, want high", got.Priority)
	}
}

func TestForecastMonthMatchesFormula(t *testing.T) {
	f := newForecaster(t, risk.NewSeeded(7))
	c, _ := catalog.Default()

	for _, id := range []string{"", "as", "mn", "zz"} {
		locMult := 1.0
		if loc, ok := c.Resolve(id, ""); ok {
			locMult = LocationMultiplier(loc)
		}
		r := f.Forecast(id, "", risk.OneMonth)
		for i, b := range DefaultBaseDemand() {
			p := r.Predictions[i]
			want := int(math.Round(b.Demand * 1.4 * locMult))
			if p.PredictedDemand != want {
				t.Errorf("%s/%s demand = %d, want %d", id, b.Resource, p.PredictedDemand, want)
			}
			if p.Confidence < 0.75 || p.Confidence > 0.95 {
				t.Errorf("confidence %v out of range", p.Confidence)
			}
			if p.CriticalPeriod != "Week 3-4" {
				t.Errorf("CriticalPeriod = %q", p.CriticalPeriod)
			}
		}
	}
}

func TestForecastHighRiskStateHasSurplus(t *testing.T) {
	r := newForecaster(t, risk.Fixed(0.5)).Forecast("mn", "", risk.OneMonth)
	icu := r.Predictions[0]
	// 1250 * 1.4 * (3091545 / 1e8 * 1.2)
	if icu.PredictedDemand != 65 || icu.Surplus != 935 {
		t.Errorf("icuBeds = %+v", icu)
	}
	if r.Summary.CriticalShortages != 0 || len(r.Recommendations) != 0 {
		t.Errorf("expected no shortages, got %d", r.Summary.CriticalShortages)
	}
	if r.Recommendations == nil {
		t.Error("Recommendations should be empty, not nil")
	}
}

func TestConfidenceBoundsWithGlobalSource(t *testing.T) {
	f := newForecaster(t, nil)
	for i := 0; i < 200; i++ {
		r := f.Forecast("", "", risk.ThreeMonths)
		for _, p := range r.Predictions {
			if p.Confidence < 0.75 || p.Confidence > 0.95 {
				t.Fatalf("confidence %v out of range", p.Confidence)
			}
		}
	}
}
