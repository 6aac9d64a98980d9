package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/lib/pq"

	"github.com/RegionalHealth/RH-Backend/internal/anomaly"
	"github.com/RegionalHealth/RH-Backend/internal/ledger"
)

var (
	dsn         = flag.String("dsn", "", "Postgres DSN (default: env DATABASE_URL)")
	dryRun      = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm     = flag.Bool("confirm", false, "Required to perform destructive replace")
	advisoryKey = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key. 0 = disabled")
)

const ddl = `
CREATE SCHEMA IF NOT EXISTS health;
CREATE TABLE IF NOT EXISTS health.resources (
	id           varchar(64) PRIMARY KEY,
	position     bigint,
	name         varchar(255),
	type         varchar(32),
	quantity     numeric,
	allocated    numeric,
	available    numeric,
	location     varchar(255),
	state_id     varchar(64),
	district_id  varchar(64),
	status       varchar(32),
	created_at   timestamptz,
	last_updated timestamptz
);
CREATE TABLE IF NOT EXISTS health.anomalies (
	id              varchar(64) PRIMARY KEY,
	position        bigint,
	type            varchar(64),
	description     text,
	location        varchar(255),
	state_id        varchar(64),
	district_id     varchar(64),
	severity        varchar(16),
	confidence      numeric,
	detected_at     timestamptz,
	baseline        numeric,
	"current"       numeric,
	deviation       numeric,
	possible_causes text[]
);`

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}

	resources, err := loadResources()
	if err != nil {
		fatalf("resource seed: %v", err)
	}
	anomalies, err := anomaly.Default()
	if err != nil {
		fatalf("anomaly seed: %v", err)
	}

	fmt.Printf("Loaded %d resources and %d anomalies from embedded seeds\n", len(resources), len(anomalies))

	if *dryRun {
		printPlan(resources, anomalies)
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}
	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		fatalf("ensure tables: %v", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM health.resources`); err != nil {
		fatalf("wipe resources: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM health.anomalies`); err != nil {
		fatalf("wipe anomalies: %v", err)
	}
	if err := insertResources(ctx, tx, resources); err != nil {
		fatalf("insert resources: %v", err)
	}
	if err := insertAnomalies(ctx, tx, anomalies); err != nil {
		fatalf("insert anomalies: %v", err)
	}

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}
	fmt.Printf("Seeded %d resources and %d anomalies\n", len(resources), len(anomalies))
}

// loadResources runs the seed through a ledger so derived fields and
// timestamps match what the server would store.
func loadResources() ([]ledger.Resource, error) {
	seed, err := ledger.DefaultSeed()
	if err != nil {
		return nil, err
	}
	l := ledger.New()
	if err := l.Restore(seed); err != nil {
		return nil, err
	}
	return l.Snapshot(), nil
}

func insertResources(ctx context.Context, tx *sql.Tx, rs []ledger.Resource) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO health.resources
			(id, position, name, type, quantity, allocated, available, location, state_id, district_id, status, created_at, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range rs {
		if _, err := stmt.ExecContext(ctx, r.ID, i, r.Name, string(r.Type), r.Quantity, r.Allocated, r.Available,
			r.Location, r.StateID, r.DistrictID, string(r.Status), r.CreatedAt, r.LastUpdated); err != nil {
			return fmt.Errorf("%s: %w", r.ID, err)
		}
	}
	return nil
}

func insertAnomalies(ctx context.Context, tx *sql.Tx, recs []anomaly.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO health.anomalies
			(id, position, type, description, location, state_id, district_id, severity, confidence, detected_at, baseline, "current", deviation, possible_causes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, a := range recs {
		if _, err := stmt.ExecContext(ctx, a.ID, i, a.Type, a.Description, a.Location, a.StateID, a.DistrictID,
			string(a.Severity), a.Confidence, a.DetectedAt, a.Metrics.Baseline, a.Metrics.Current, a.Metrics.Deviation,
			pq.Array(a.PossibleCauses)); err != nil {
			return fmt.Errorf("%s: %w", a.ID, err)
		}
	}
	return nil
}

func printPlan(rs []ledger.Resource, recs []anomaly.Record) {
	fmt.Println("Resources:")
	for _, r := range rs {
		fmt.Printf("  %-16s %-28s %-14s qty=%-6g alloc=%-6g avail=%g\n", r.ID, r.Name, r.Type, r.Quantity, r.Allocated, r.Available)
	}
	fmt.Println("Anomalies:")
	for _, a := range recs {
		fmt.Printf("  %-12s %-18s %-8s %s\n", a.ID, a.Type, a.Severity, a.Location)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
