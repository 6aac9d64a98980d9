package ledger

import "time"

type ResourceType string

const (
	TypeMedicalStaff ResourceType = "medical_staff"
	TypeEquipment    ResourceType = "equipment"
	TypeMedicine     ResourceType = "medicine"
	TypeFacility     ResourceType = "facility"
)

func (t ResourceType) Valid() bool {
	switch t {
	case TypeMedicalStaff, TypeEquipment, TypeMedicine, TypeFacility:
		return true
	}
	return false
}

type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in_use"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance:
		return true
	}
	return false
}

// Resource is one allocatable pool. Available is always derived from
// Quantity and Allocated.
type Resource struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Type        ResourceType `yaml:"type" json:"type"`
	Quantity    float64      `yaml:"quantity" json:"quantity"`
	Allocated   float64      `yaml:"allocated" json:"allocated"`
	Available   float64      `yaml:"available" json:"available"`
	Location    string       `yaml:"location" json:"location"`
	StateID     string       `yaml:"state_id" json:"state_id"`
	DistrictID  string       `yaml:"district_id,omitempty" json:"district_id,omitempty"`
	Status      Status       `yaml:"status" json:"status"`
	CreatedAt   time.Time    `yaml:"created_at,omitempty" json:"created_at"`
	LastUpdated time.Time    `yaml:"last_updated" json:"last_updated"`
}

// CreateRequest is the field set accepted by Create. Empty strings count
// as missing.
type CreateRequest struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Quantity   Number `json:"quantity"`
	Allocated  Number `json:"allocated"`
	Location   string `json:"location"`
	StateID    string `json:"state_id"`
	DistrictID string `json:"district_id"`
	Status     string `json:"status"`
}

// UpdateRequest carries a partial edit. Nil fields and unset numbers keep
// the current value.
type UpdateRequest struct {
	Name       *string `json:"name"`
	Type       *string `json:"type"`
	Quantity   Number  `json:"quantity"`
	Allocated  Number  `json:"allocated"`
	Location   *string `json:"location"`
	StateID    *string `json:"state_id"`
	DistrictID *string `json:"district_id"`
	Status     *string `json:"status"`
}

// Filter narrows Query. Empty fields match everything.
type Filter struct {
	ID         string
	StateID    string
	DistrictID string
	Type       ResourceType
	Status     Status
}

type Summary struct {
	Total             int     `json:"total"`
	Available         int     `json:"available"`
	InUse             int     `json:"in_use"`
	Maintenance       int     `json:"maintenance"`
	TotalQuantity     float64 `json:"total_quantity"`
	TotalAllocated    float64 `json:"total_allocated"`
	TotalAvailable    float64 `json:"total_available"`
	UtilizationRate   float64 `json:"utilization_rate"`
	CriticalShortages int     `json:"critical_shortages"`
}

type Result struct {
	Resources []Resource `json:"resources"`
	Summary   Summary    `json:"summary"`
}
