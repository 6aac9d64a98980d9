package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 9, 9, 8, 0, 0, 0, time.UTC)

func newTestLedger() *Ledger {
	var n int
	return New(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("res-%d", n)
		}),
	)
}

func icuRequest(quantity, allocated float64) CreateRequest {
	return CreateRequest{
		Name:      "ICU Beds",
		Type:      string(TypeFacility),
		Quantity:  N(quantity),
		Allocated: N(allocated),
		Location:  "Guwahati, Assam",
		StateID:   "as",
	}
}

func checkInvariant(t *testing.T, r Resource) {
	t.Helper()
	if r.Allocated < 0 || r.Allocated > r.Quantity {
		t.Fatalf("%s allocated %v outside [0, %v]", r.ID, r.Allocated, r.Quantity)
	}
	if want := math.Max(0, r.Quantity-r.Allocated); r.Available != want {
		t.Fatalf("%s available = %v, want %v", r.ID, r.Available, want)
	}
}

func TestCreateThenMergeSumsQuantities(t *testing.T) {
	l := newTestLedger()

	first, merged, err := l.Create(icuRequest(10, 4))
	if err != nil || merged {
		t.Fatalf("first create: merged=%v err=%v", merged, err)
	}
	if first.Available != 6 || first.Status != StatusAvailable {
		t.Errorf("first = %+v", first)
	}

	req := icuRequest(5, 2)
	req.Name = "  icu beds "
	second, merged, err := l.Create(req)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !merged {
		t.Fatal("expected merge on matching identity")
	}
	if second.ID != first.ID {
		t.Errorf("merged id = %s, want %s", second.ID, first.ID)
	}
	if second.Quantity != 15 || second.Allocated != 6 || second.Available != 9 {
		t.Errorf("merged = q%v a%v av%v, want 15/6/9", second.Quantity, second.Allocated, second.Available)
	}
	if second.Name != "icu beds" {
		t.Errorf("incoming name should overwrite casing, got %q", second.Name)
	}
	if l.Len() != 1 {
		t.Errorf("Len = %d, want 1", l.Len())
	}
}

func TestMergeCapsAllocatedAtNewQuantity(t *testing.T) {
	l := newTestLedger()
	if _, _, err := l.Create(icuRequest(10, 10)); err != nil {
		t.Fatal(err)
	}
	res, _, err := l.Create(icuRequest(2, 8))
	if err != nil {
		t.Fatal(err)
	}
	if res.Quantity != 12 || res.Allocated != 12 || res.Available != 0 {
		t.Errorf("res = %+v", res)
	}
}

func TestDistrictIsPartOfIdentity(t *testing.T) {
	l := newTestLedger()
	if _, _, err := l.Create(icuRequest(10, 0)); err != nil {
		t.Fatal(err)
	}
	req := icuRequest(10, 0)
	req.DistrictID = "as-guwahati"
	_, merged, err := l.Create(req)
	if err != nil {
		t.Fatal(err)
	}
	if merged {
		t.Error("a district record must not merge into a state-level record")
	}
	req.DistrictID = " as-guwahati "
	if _, merged, _ := l.Create(req); !merged {
		t.Error("trimmed district id should match")
	}
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}
}

func TestBlankDistrictDoesNotMatchMissingDistrict(t *testing.T) {
	l := newTestLedger()
	if _, _, err := l.Create(icuRequest(10, 0)); err != nil {
		t.Fatal(err)
	}

	req := icuRequest(5, 0)
	req.DistrictID = "  "
	res, merged, err := l.Create(req)
	if err != nil {
		t.Fatal(err)
	}
	if merged {
		t.Error("a blank district id must not merge into a record without one")
	}
	if res.DistrictID != "  " {
		t.Errorf("DistrictID = %q, want the blank id kept", res.DistrictID)
	}

	req.DistrictID = " "
	if _, merged, _ := l.Create(req); !merged {
		t.Error("blank district ids should match each other")
	}
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		edit func(*CreateRequest)
	}{
		{"missing name", func(r *CreateRequest) { r.Name = " " }},
		{"missing type", func(r *CreateRequest) { r.Type = "" }},
		{"missing quantity", func(r *CreateRequest) { r.Quantity = Number{} }},
		{"null quantity", func(r *CreateRequest) { r.Quantity = Number{Set: true, Blank: true} }},
		{"missing location", func(r *CreateRequest) { r.Location = "" }},
		{"missing state", func(r *CreateRequest) { r.StateID = "" }},
		{"negative quantity", func(r *CreateRequest) { r.Quantity = N(-1) }},
		{"infinite quantity", func(r *CreateRequest) { r.Quantity = N(math.Inf(1)) }},
		{"nan allocated", func(r *CreateRequest) { r.Allocated = N(math.NaN()) }},
		{"negative allocated", func(r *CreateRequest) { r.Allocated = N(-2) }},
		{"unknown type", func(r *CreateRequest) { r.Type = "vehicle" }},
		{"unknown status", func(r *CreateRequest) { r.Status = "lost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger()
			req := icuRequest(10, 1)
			tt.edit(&req)
			if _, _, err := l.Create(req); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
			if l.Len() != 0 {
				t.Error("failed create must not leave a record")
			}
		})
	}
}

func TestCreateAcceptsZeroQuantity(t *testing.T) {
	l := newTestLedger()
	res, _, err := l.Create(icuRequest(0, 0))
	if err != nil {
		t.Fatalf("zero quantity rejected: %v", err)
	}
	if res.Quantity != 0 || res.Available != 0 {
		t.Errorf("res = %+v", res)
	}
}

func TestCreateClampsAllocatedAndDefaultsIt(t *testing.T) {
	l := newTestLedger()
	res, _, err := l.Create(icuRequest(5, 9))
	if err != nil {
		t.Fatal(err)
	}
	if res.Allocated != 5 || res.Available != 0 {
		t.Errorf("res = %+v", res)
	}

	req := icuRequest(7, 0)
	req.Name = "Ventilators"
	req.Allocated = Number{}
	res, _, err = l.Create(req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Allocated != 0 || res.Available != 7 {
		t.Errorf("res = %+v", res)
	}
}

func TestCreateRequestFromLooseJSON(t *testing.T) {
	l := newTestLedger()
	body := `{"name":"Oxygen","type":"equipment","quantity":"40","allocated":"",
		"location":"Imphal, Manipur","state_id":"mn","district_id":null}`
	var req CreateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	res, _, err := l.Create(req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Quantity != 40 || res.Allocated != 0 || res.DistrictID != "" {
		t.Errorf("res = %+v", res)
	}

	var bad CreateRequest
	if err := json.Unmarshal([]byte(`{"name":"x","type":"equipment","quantity":"lots","location":"y","state_id":"mn"}`), &bad); err != nil {
		t.Fatal(err)
	}
	if _, _, err := l.Create(bad); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in    string
		blank bool
		value float64
		nan   bool
	}{
		{`12`, false, 12, false},
		{`0`, false, 0, false},
		{`" 7.5 "`, false, 7.5, false},
		{`""`, true, 0, false},
		{`null`, true, 0, false},
		{`false`, true, 0, false},
		{`true`, false, 1, false},
		{`"abc"`, false, 0, true},
		{`"NaN"`, false, 0, true},
		{`[1]`, false, 0, true},
	}
	for _, tt := range tests {
		var n Number
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if !n.Set || n.Blank != tt.blank {
			t.Errorf("Unmarshal(%s) = %+v", tt.in, n)
		}
		if tt.nan {
			if !math.IsNaN(n.Value) {
				t.Errorf("Unmarshal(%s) value = %v, want NaN", tt.in, n.Value)
			}
		} else if n.Value != tt.value {
			t.Errorf("Unmarshal(%s) value = %v, want %v", tt.in, n.Value, tt.value)
		}
	}
}

func TestUpdateClampsAllocated(t *testing.T) {
	l := newTestLedger()
	res, _, _ := l.Create(icuRequest(10, 0))

	got, err := l.Update(res.ID, UpdateRequest{Allocated: N(20)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Allocated != 10 || got.Available != 0 {
		t.Errorf("got = %+v, want allocated 10 available 0", got)
	}

	got, err = l.Update(res.ID, UpdateRequest{Allocated: N(-5)})
	if err != nil {
		t.Fatalf("negative allocated must not fail: %v", err)
	}
	if got.Allocated != 0 || got.Available != 10 {
		t.Errorf("got = %+v, want allocated reset to 0", got)
	}

	got, err = l.Update(res.ID, UpdateRequest{Allocated: N(math.NaN())})
	if err != nil || got.Allocated != 0 {
		t.Errorf("NaN allocated: got %+v err %v", got, err)
	}
}

func TestUpdateQuantityShrinksAllocation(t *testing.T) {
	l := newTestLedger()
	res, _, _ := l.Create(icuRequest(10, 8))

	got, err := l.Update(res.ID, UpdateRequest{Quantity: N(5)})
	if err != nil {
		t.Fatal(err)
	}
	if got.Quantity != 5 || got.Allocated != 5 || got.Available != 0 {
		t.Errorf("got = %+v", got)
	}
}

func TestUpdateRejectsBadQuantityWithoutSideEffects(t *testing.T) {
	l := newTestLedger()
	res, _, _ := l.Create(icuRequest(10, 3))
	name := "Renamed"

	for _, q := range []Number{N(-1), N(math.NaN()), N(math.Inf(1))} {
		if _, err := l.Update(res.ID, UpdateRequest{Quantity: q, Name: &name}); !errors.Is(err, ErrValidation) {
			t.Errorf("quantity %v: err = %v, want ErrValidation", q.Value, err)
		}
	}
	got, _ := l.Get(res.ID)
	if got.Name != "ICU Beds" || got.Quantity != 10 {
		t.Errorf("record changed after failed update: %+v", got)
	}
}

func TestUpdateFields(t *testing.T) {
	l := newTestLedger()
	res, _, _ := l.Create(icuRequest(10, 3))

	status := string(StatusMaintenance)
	district := "as-dibrugarh"
	got, err := l.Update(res.ID, UpdateRequest{Status: &status, DistrictID: &district})
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusMaintenance || got.DistrictID != "as-dibrugarh" || got.Allocated != 3 {
		t.Errorf("got = %+v", got)
	}

	bad := "broken"
	if _, err := l.Update(res.ID, UpdateRequest{Status: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := l.Update("missing", UpdateRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInvariantAcrossAllocateReleaseSequence(t *testing.T) {
	l := newTestLedger()
	res, _, _ := l.Create(icuRequest(50, 0))
	checkInvariant(t, res)

	rnd := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		cur, _ := l.Get(res.ID)
		var req UpdateRequest
		switch rnd.IntN(3) {
		case 0: // allocate
			req.Allocated = N(cur.Allocated + float64(rnd.IntN(20)))
		case 1: // release
			req.Allocated = N(cur.Allocated - float64(rnd.IntN(20)))
		default:
			req.Quantity = N(float64(rnd.IntN(80)))
		}
		got, err := l.Update(res.ID, req)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		checkInvariant(t, got)
	}
}

func TestDelete(t *testing.T) {
	l := newTestLedger()
	res, _, _ := l.Create(icuRequest(10, 0))

	if _, err := l.Delete(res.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := l.Get(res.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if _, err := l.Delete(res.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: %v", err)
	}
	// no tombstone: the identity is free again
	if _, merged, _ := l.Create(icuRequest(1, 0)); merged {
		t.Error("deleted record must not be merged into")
	}
}

func TestQueryFiltersAndSummary(t *testing.T) {
	l := newTestLedger()
	seed, err := DefaultSeed()
	if err != nil {
		t.Fatalf("DefaultSeed: %v", err)
	}
	if err := l.Restore(seed); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	all, err := l.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if all.Summary.Total != 12 || all.Summary.InUse != 1 || all.Summary.Available != 11 {
		t.Errorf("summary = %+v", all.Summary)
	}
	for _, r := range all.Resources {
		checkInvariant(t, r)
	}
	if all.Resources[0].ID != "res-as-icu-1" || all.Resources[0].Available != 30 {
		t.Errorf("first = %+v", all.Resources[0])
	}

	mn, _ := l.Query(Filter{StateID: "mn", Type: TypeFacility})
	if mn.Summary.Total != 1 || mn.Resources[0].ID != "res-mn-beds-1" {
		t.Errorf("mn facilities = %+v", mn.Resources)
	}
	if math.Abs(mn.Summary.UtilizationRate-420.0/500.0) > 1e-9 {
		t.Errorf("UtilizationRate = %v", mn.Summary.UtilizationRate)
	}

	one, err := l.Query(Filter{ID: "res-ml-doc-1", StateID: "ignored"})
	if err != nil || len(one.Resources) != 1 {
		t.Errorf("id lookup = %+v, %v", one, err)
	}
	if _, err := l.Query(Filter{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	none, _ := l.Query(Filter{StateID: "zz"})
	if none.Resources == nil || none.Summary != (Summary{}) {
		t.Errorf("empty query = %+v", none)
	}
}

func TestSummarizeGuardsZeroQuantity(t *testing.T) {
	s := Summarize([]Resource{
		{Quantity: 0, Allocated: 0, Available: 0, Status: StatusMaintenance},
		{Quantity: 4, Allocated: 2, Available: 2, Status: StatusAvailable},
	})
	if s.UtilizationRate != 0.25 {
		t.Errorf("UtilizationRate = %v, want 0.25", s.UtilizationRate)
	}
	if s.CriticalShortages != 1 || s.Maintenance != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestRestoreRepairsAndValidates(t *testing.T) {
	l := newTestLedger()
	err := l.Restore([]Resource{{ID: "a", Name: "A", Type: TypeMedicine, Quantity: 5, Allocated: 9, Available: 100, StateID: "as"}})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := l.Get("a")
	if got.Allocated != 5 || got.Available != 0 || got.Status != StatusAvailable {
		t.Errorf("got = %+v", got)
	}

	if err := l.Restore([]Resource{{ID: "a", Type: TypeMedicine}, {ID: "a", Type: TypeMedicine}}); !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate ids: err = %v", err)
	}
	if l.Len() != 1 {
		t.Error("failed restore must keep previous contents")
	}
}

func TestConcurrentCreatesMergeAtomically(t *testing.T) {
	l := New()
	const workers = 64

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, _, err := l.Create(icuRequest(2, 1)); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			res, err := l.Query(Filter{})
			if err != nil {
				t.Error(err)
				return
			}
			for _, r := range res.Resources {
				if r.Available != math.Max(0, r.Quantity-r.Allocated) {
					t.Errorf("torn read: %+v", r)
				}
			}
		}()
	}
	wg.Wait()

	res, _ := l.Query(Filter{})
	if len(res.Resources) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Resources))
	}
	r := res.Resources[0]
	if r.Quantity != 2*workers || r.Allocated != workers || r.Available != workers {
		t.Errorf("final = %+v", r)
	}
}
