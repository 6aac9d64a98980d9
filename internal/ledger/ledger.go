// Package ledger is the authoritative in-memory inventory of allocatable
// health resources. Every mutation keeps available equal to
// max(0, quantity - allocated).
package ledger

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("resource not found")
)

type Ledger struct {
	mu    sync.RWMutex
	byID  map[string]Resource
	order []string

	now   func() time.Time
	newID func() string
}

type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides uuid-based record ids.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		byID:  make(map[string]Resource),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func computeAvailable(quantity, allocated float64) float64 {
	return math.Max(0, quantity-allocated)
}

// normalizeDistrict trims a district id. A whitespace-only id is kept
// as given so it stays distinct from a record with no district.
func normalizeDistrict(districtID string) string {
	if t := strings.TrimSpace(districtID); t != "" {
		return t
	}
	return districtID
}

// identity is the merge key. An empty district only matches another
// empty district; a blank but present one matches other blank ones.
func identity(name, stateID, districtID string) string {
	district := "\x00"
	if districtID != "" {
		district = "\x01" + strings.TrimSpace(districtID)
	}
	return cases.Lower(language.Und).String(strings.TrimSpace(name)) + "\x00" +
		strings.TrimSpace(stateID) + "\x00" + district
}

// Create adds a resource, or merges it into the record sharing its
// (name, state, district) identity. merged reports which happened.
func (l *Ledger) Create(req CreateRequest) (res Resource, merged bool, err error) {
	required := []struct {
		field string
		blank bool
	}{
		{"name", strings.TrimSpace(req.Name) == ""},
		{"type", req.Type == ""},
		{"quantity", !req.Quantity.Set || req.Quantity.Blank},
		{"location", req.Location == ""},
		{"state_id", strings.TrimSpace(req.StateID) == ""},
	}
	for _, r := range required {
		if r.blank {
			return Resource{}, false, fmt.Errorf("%w: missing required field: %s", ErrValidation, r.field)
		}
	}
	if !req.Quantity.valid() {
		return Resource{}, false, fmt.Errorf("%w: invalid quantity", ErrValidation)
	}
	allocated := req.Allocated
	if !allocated.Set || allocated.Blank {
		allocated = N(0)
	}
	if !allocated.valid() {
		return Resource{}, false, fmt.Errorf("%w: invalid allocated value", ErrValidation)
	}
	if !ResourceType(req.Type).Valid() {
		return Resource{}, false, fmt.Errorf("%w: unknown resource type %q", ErrValidation, req.Type)
	}
	if req.Status != "" && !Status(req.Status).Valid() {
		return Resource{}, false, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}

	key := identity(req.Name, req.StateID, req.DistrictID)
	now := l.now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range l.order {
		existing := l.byID[id]
		if identity(existing.Name, existing.StateID, existing.DistrictID) != key {
			continue
		}
		existing.Quantity += req.Quantity.Value
		existing.Allocated = math.Min(existing.Allocated+allocated.Value, existing.Quantity)
		existing.Available = computeAvailable(existing.Quantity, existing.Allocated)
		existing.Name = strings.TrimSpace(req.Name)
		existing.Type = ResourceType(req.Type)
		existing.Location = req.Location
		if req.Status != "" {
			existing.Status = Status(req.Status)
		}
		existing.LastUpdated = now
		l.byID[id] = existing
		return existing, true, nil
	}

	q := req.Quantity.Value
	a := math.Min(allocated.Value, q)
	res = Resource{
		ID:          l.newID(),
		Name:        strings.TrimSpace(req.Name),
		Type:        ResourceType(req.Type),
		Quantity:    q,
		Allocated:   a,
		Available:   computeAvailable(q, a),
		Location:    req.Location,
		StateID:     strings.TrimSpace(req.StateID),
		DistrictID:  normalizeDistrict(req.DistrictID),
		Status:      StatusAvailable,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if req.Status != "" {
		res.Status = Status(req.Status)
	}
	l.byID[res.ID] = res
	l.order = append(l.order, res.ID)
	return res, false, nil
}

// Update applies a partial edit. An invalid or negative allocation is
// reset to 0 and any allocation is clamped to the quantity; only an
// invalid quantity fails.
func (l *Ledger) Update(id string, req UpdateRequest) (Resource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.byID[id]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	quantity := cur.Quantity
	if req.Quantity.Set {
		if !req.Quantity.valid() {
			return Resource{}, fmt.Errorf("%w: invalid quantity", ErrValidation)
		}
		quantity = req.Quantity.Value
	}
	allocated := cur.Allocated
	if req.Allocated.Set {
		allocated = req.Allocated.Value
		if !req.Allocated.valid() {
			allocated = 0
		}
	}
	allocated = math.Min(allocated, quantity)

	next := cur
	if err := applyFields(&next, req); err != nil {
		return Resource{}, err
	}
	next.Quantity = quantity
	next.Allocated = allocated
	next.Available = computeAvailable(quantity, allocated)
	next.LastUpdated = l.now().UTC()

	l.byID[id] = next
	return next, nil
}

func applyFields(r *Resource, req UpdateRequest) error {
	nonEmpty := func(field string, v *string, dst *string) error {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		if s == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrValidation, field)
		}
		*dst = s
		return nil
	}
	if err := nonEmpty("name", req.Name, &r.Name); err != nil {
		return err
	}
	if err := nonEmpty("location", req.Location, &r.Location); err != nil {
		return err
	}
	if err := nonEmpty("state_id", req.StateID, &r.StateID); err != nil {
		return err
	}
	if req.DistrictID != nil {
		r.DistrictID = normalizeDistrict(*req.DistrictID)
	}
	if req.Type != nil {
		t := ResourceType(*req.Type)
		if !t.Valid() {
			return fmt.Errorf("%w: unknown resource type %q", ErrValidation, *req.Type)
		}
		r.Type = t
	}
	if req.Status != nil {
		s := Status(*req.Status)
		if !s.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
		r.Status = s
	}
	return nil
}

// Delete removes the record and returns it.
func (l *Ledger) Delete(id string) (Resource, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, ok := l.byID[id]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(l.byID, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return res, nil
}

func (l *Ledger) Get(id string) (Resource, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	res, ok := l.byID[id]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return res, nil
}

// Query returns the matching records in insertion order with their
// aggregate summary. A filter id turns it into a single-record lookup.
func (l *Ledger) Query(f Filter) (Result, error) {
	if f.ID != "" {
		res, err := l.Get(f.ID)
		if err != nil {
			return Result{}, err
		}
		rs := []Resource{res}
		return Result{Resources: rs, Summary: Summarize(rs)}, nil
	}

	l.mu.RLock()
	rs := []Resource{}
	for _, id := range l.order {
		r := l.byID[id]
		if f.StateID != "" && r.StateID != f.StateID {
			continue
		}
		if f.DistrictID != "" && r.DistrictID != f.DistrictID {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		rs = append(rs, r)
	}
	l.mu.RUnlock()

	return Result{Resources: rs, Summary: Summarize(rs)}, nil
}

// Summarize aggregates a record set. Utilization is the mean of
// allocated/quantity, with a zero quantity read as 1.
func Summarize(rs []Resource) Summary {
	s := Summary{Total: len(rs)}
	var util float64
	for _, r := range rs {
		switch r.Status {
		case StatusAvailable:
			s.Available++
		case StatusInUse:
			s.InUse++
		case StatusMaintenance:
			s.Maintenance++
		}
		s.TotalQuantity += r.Quantity
		s.TotalAllocated += r.Allocated
		s.TotalAvailable += r.Available
		if r.Available == 0 {
			s.CriticalShortages++
		}
		denom := r.Quantity
		if denom == 0 {
			denom = 1
		}
		util += r.Allocated / denom
	}
	if len(rs) > 0 {
		s.UtilizationRate = util / float64(len(rs))
	}
	return s
}

// Snapshot copies every record in insertion order.
func (l *Ledger) Snapshot() []Resource {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Resource, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Restore replaces the ledger contents. Records are validated, allocated
// is clamped and available recomputed, so a stale or hand-edited snapshot
// cannot break the invariant.
func (l *Ledger) Restore(rs []Resource) error {
	byID := make(map[string]Resource, len(rs))
	order := make([]string, 0, len(rs))
	now := l.now().UTC()
	for _, r := range rs {
		if r.ID == "" {
			return fmt.Errorf("%w: record without id", ErrValidation)
		}
		if _, dup := byID[r.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrValidation, r.ID)
		}
		if math.IsNaN(r.Quantity) || math.IsInf(r.Quantity, 0) || r.Quantity < 0 {
			return fmt.Errorf("%w: %s invalid quantity", ErrValidation, r.ID)
		}
		if !r.Type.Valid() {
			return fmt.Errorf("%w: %s unknown resource type %q", ErrValidation, r.ID, r.Type)
		}
		if r.Status == "" {
			r.Status = StatusAvailable
		}
		if !r.Status.Valid() {
			return fmt.Errorf("%w: %s unknown status %q", ErrValidation, r.ID, r.Status)
		}
		if math.IsNaN(r.Allocated) || r.Allocated < 0 {
			r.Allocated = 0
		}
		r.Allocated = math.Min(r.Allocated, r.Quantity)
		r.Available = computeAvailable(r.Quantity, r.Allocated)
		if r.LastUpdated.IsZero() {
			r.LastUpdated = now
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = r.LastUpdated
		}
		byID[r.ID] = r
		order = append(order, r.ID)
	}

	l.mu.Lock()
	l.byID = byID
	l.order = order
	l.mu.Unlock()
	return nil
}
