package outbreak

import (
	"math"
	"testing"

	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/risk"
)

const eps = 1e-9

func newEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return NewEngine(c, nil)
}

func TestPredictNational(t *testing.T) {
	r := newEngine(t).Predict("", "", risk.OneWeek)

	if len(r.Predictions) != 3 {
		t.Fatalf("got %d predictions, want 3", len(r.Predictions))
	}
	wantOrder := []string{"Dengue", "Influenza", "Gastroenteritis"}
	for i, name := range wantOrder {
		if r.Predictions[i].Disease != name {
			t.Errorf("prediction %d = %s, want %s", i, r.Predictions[i].Disease, name)
		}
		if r.Predictions[i].Location != catalog.NationalLevel {
			t.Errorf("location = %q", r.Predictions[i].Location)
		}
	}
	if r.Summary.EstimatedTotalCases != 2700 {
		t.Errorf("EstimatedTotalCases = %d, want 2700", r.Summary.EstimatedTotalCases)
	}
	if r.Summary.HighRiskOutbreaks != 1 {
		t.Errorf("HighRiskOutbreaks = %d, want 1", r.Summary.HighRiskOutbreaks)
	}
	if math.Abs(r.Summary.AverageConfidence-0.75) > eps {
		t.Errorf("AverageConfidence = %v, want 0.75", r.Summary.AverageConfidence)
	}
	if r.Summary.MostLikelyOutbreak == nil || r.Summary.MostLikelyOutbreak.Disease != "Dengue" {
		t.Errorf("MostLikelyOutbreak = %+v", r.Summary.MostLikelyOutbreak)
	}
}

func TestPredictHighRiskStateMonthClampsProbability(t *testing.T) {
	r := newEngine(t).Predict("mn", "", risk.OneMonth)

	dengue := r.Predictions[0]
	if dengue.Disease != "Dengue" || dengue.Probability != 1.0 {
		t.Fatalf("Dengue = %+v, want clamped probability 1.0", dengue)
	}
	if dengue.EstimatedCases != 1375 {
		t.Errorf("Dengue cases = %d, want 1375", dengue.EstimatedCases)
	}
	if dengue.Confidence != 0.85 {
		t.Errorf("confidence must not be adjusted, got %v", dengue.Confidence)
	}
	if dengue.Location != "Manipur" {
		t.Errorf("Location = %q", dengue.Location)
	}
	if math.Abs(r.Predictions[1].Probability-0.858) > eps {
		t.Errorf("Influenza probability = %v, want 0.858", r.Predictions[1].Probability)
	}
	if r.Summary.HighRiskOutbreaks != 2 {
		t.Errorf("HighRiskOutbreaks = %d, want 2", r.Summary.HighRiskOutbreaks)
	}

	var sum int
	for _, p := range r.Predictions {
		sum += p.EstimatedCases
		if p.Probability < 0 || p.Probability > 1 {
			t.Errorf("%s probability %v out of range", p.Disease, p.Probability)
		}
	}
	if sum != r.Summary.EstimatedTotalCases {
		t.Errorf("summary cases %d != sum %d", r.Summary.EstimatedTotalCases, sum)
	}
}

func TestPredictUnknownStateIsNational(t *testing.T) {
	e := newEngine(t)
	national := e.Predict("", "", risk.ThreeMonths)
	unknown := e.Predict("zz", "", risk.ThreeMonths)
	for i := range national.Predictions {
		if national.Predictions[i].Probability != unknown.Predictions[i].Probability {
			t.Errorf("unknown state changed probability for %s", national.Predictions[i].Disease)
		}
	}
	if unknown.Predictions[0].Location != "Unknown State" {
		t.Errorf("Location = %q", unknown.Predictions[0].Location)
	}
}

func TestLocationMultiplier(t *testing.T) {
	tests := map[catalog.RiskLevel]float64{
		catalog.RiskHigh:     1.1,
		catalog.RiskMedium:   1.0,
		catalog.RiskLow:      0.8,
		catalog.RiskCritical: 0.8,
	}
	for level, want := range tests {
		if got := LocationMultiplier(level); got != want {
			t.Errorf("LocationMultiplier(%s) = %v, want %v", level, got, want)
		}
	}
}

func TestPredictStableTies(t *testing.T) {
	c, err := catalog.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	profiles := []Profile{
		{Disease: "A", Probability: 0.5, Confidence: 0.6, EstimatedCases: 10},
		{Disease: "B", Probability: 0.9, Confidence: 0.6, EstimatedCases: 10},
		{Disease: "C", Probability: 0.5, Confidence: 0.6, EstimatedCases: 10},
	}
	r := NewEngine(c, profiles).Predict("", "", risk.OneWeek)
	got := []string{r.Predictions[0].Disease, r.Predictions[1].Disease, r.Predictions[2].Disease}
	want := []string{"B", "A", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestPredictLowRiskDistrict(t *testing.T) {
	c, err := catalog.New([]catalog.State{{
		Location: catalog.Location{ID: "hs", Name: "Hillstate", Population: 1000, RiskLevel: catalog.RiskHigh},
		Districts: []catalog.District{{
			Location: catalog.Location{ID: "hs-vale", Name: "Vale", Population: 100, RiskLevel: catalog.RiskLow},
		}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	r := NewEngine(c, nil).Predict("hs", "hs-vale", risk.OneWeek)
	if r.Predictions[0].EstimatedCases != 1000 {
		t.Errorf("Dengue cases = %d, want 1000 from the district's low level", r.Predictions[0].EstimatedCases)
	}
	if r.Predictions[0].Location != "Vale, Hillstate" {
		t.Errorf("Location = %q", r.Predictions[0].Location)
	}
}
