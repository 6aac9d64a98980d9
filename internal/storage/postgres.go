package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/RegionalHealth/RH-Backend/internal/anomaly"
	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/db"
	"github.com/RegionalHealth/RH-Backend/internal/ledger"
)

const Schema = "health"

type ResourceRow struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Position    int       `gorm:"index"`
	Name        string    `gorm:"size:255"`
	Type        string    `gorm:"size:32"`
	Quantity    float64
	Allocated   float64
	Available   float64
	Location    string `gorm:"size:255"`
	StateID     string `gorm:"index;size:64"`
	DistrictID  string `gorm:"index;size:64"`
	Status      string `gorm:"size:32"`
	CreatedAt   time.Time
	LastUpdated time.Time
}

func (ResourceRow) TableName() string { return Schema + ".resources" }

type AnomalyRow struct {
	ID             string `gorm:"primaryKey;size:64"`
	Position       int    `gorm:"index"`
	Type           string `gorm:"size:64"`
	Description    string
	Location       string `gorm:"size:255"`
	StateID        string `gorm:"index;size:64"`
	DistrictID     string `gorm:"index;size:64"`
	Severity       string `gorm:"size:16"`
	Confidence     float64
	DetectedAt     time.Time
	Baseline       float64
	Current        float64
	Deviation      float64
	PossibleCauses pq.StringArray `gorm:"type:text[]"`
}

func (AnomalyRow) TableName() string { return Schema + ".anomalies" }

// Postgres stores the ledger as one row per resource. Saves replace the
// whole table inside a transaction.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres ensures the schema and tables exist.
func NewPostgres(gdb *gorm.DB) (*Postgres, error) {
	if err := db.EnsureSchema(gdb, Schema); err != nil {
		return nil, fmt.Errorf("ensuring %s schema: %w", Schema, err)
	}
	if err := gdb.AutoMigrate(&ResourceRow{}, &AnomalyRow{}); err != nil {
		return nil, fmt.Errorf("migrating %s tables: %w", Schema, err)
	}
	return &Postgres{db: gdb}, nil
}

func (p *Postgres) LoadResources(ctx context.Context) ([]ledger.Resource, error) {
	var rows []ResourceRow
	if err := p.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}
	out := make([]ledger.Resource, 0, len(rows))
	for _, r := range rows {
		out = append(out, resourceFromRow(r))
	}
	return out, nil
}

func (p *Postgres) SaveResources(ctx context.Context, resources []ledger.Resource) error {
	rows := make([]ResourceRow, 0, len(resources))
	for i, r := range resources {
		rows = append(rows, ResourceRowFrom(i, r))
	}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ResourceRow{}).Error; err != nil {
			return fmt.Errorf("clearing resources: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("inserting resources: %w", err)
		}
		return nil
	})
}

// LoadAnomalies returns the stored anomaly catalog in insertion order.
func (p *Postgres) LoadAnomalies(ctx context.Context) ([]anomaly.Record, error) {
	var rows []AnomalyRow
	if err := p.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading anomalies: %w", err)
	}
	out := make([]anomaly.Record, 0, len(rows))
	for _, r := range rows {
		rec := anomalyFromRow(r)
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *Postgres) SaveAnomalies(ctx context.Context, records []anomaly.Record) error {
	rows := make([]AnomalyRow, 0, len(records))
	for i, r := range records {
		rows = append(rows, AnomalyRowFrom(i, r))
	}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&AnomalyRow{}).Error; err != nil {
			return fmt.Errorf("clearing anomalies: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

func ResourceRowFrom(pos int, r ledger.Resource) ResourceRow {
	return ResourceRow{
		ID:          r.ID,
		Position:    pos,
		Name:        r.Name,
		Type:        string(r.Type),
		Quantity:    r.Quantity,
		Allocated:   r.Allocated,
		Available:   r.Available,
		Location:    r.Location,
		StateID:     r.StateID,
		DistrictID:  r.DistrictID,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		LastUpdated: r.LastUpdated,
	}
}

func resourceFromRow(r ResourceRow) ledger.Resource {
	return ledger.Resource{
		ID:          r.ID,
		Name:        r.Name,
		Type:        ledger.ResourceType(r.Type),
		Quantity:    r.Quantity,
		Allocated:   r.Allocated,
		Available:   r.Available,
		Location:    r.Location,
		StateID:     r.StateID,
		DistrictID:  r.DistrictID,
		Status:      ledger.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		LastUpdated: r.LastUpdated,
	}
}

func AnomalyRowFrom(pos int, r anomaly.Record) AnomalyRow {
	return AnomalyRow{
		ID:             r.ID,
		Position:       pos,
		Type:           r.Type,
		Description:    r.Description,
		Location:       r.Location,
		StateID:        r.StateID,
		DistrictID:     r.DistrictID,
		Severity:       string(r.Severity),
		Confidence:     r.Confidence,
		DetectedAt:     r.DetectedAt,
		Baseline:       r.Metrics.Baseline,
		Current:        r.Metrics.Current,
		Deviation:      r.Metrics.Deviation,
		PossibleCauses: pq.StringArray(r.PossibleCauses),
	}
}

func anomalyFromRow(r AnomalyRow) anomaly.Record {
	return anomaly.Record{
		ID:          r.ID,
		Type:        r.Type,
		Description: r.Description,
		Location:    r.Location,
		StateID:     r.StateID,
		DistrictID:  r.DistrictID,
		Severity:    catalog.RiskLevel(r.Severity),
		Confidence:  r.Confidence,
		DetectedAt:  r.DetectedAt.UTC(),
		Metrics: anomaly.Metrics{
			Baseline:  r.Baseline,
			Current:   r.Current,
			Deviation: r.Deviation,
		},
		PossibleCauses: []string(r.PossibleCauses),
	}
}
