package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RegionalHealth/RH-Backend/internal/analytics"
	"github.com/RegionalHealth/RH-Backend/internal/anomaly"
	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/config"
	"github.com/RegionalHealth/RH-Backend/internal/ledger"
	"github.com/RegionalHealth/RH-Backend/internal/metrics"
	"github.com/RegionalHealth/RH-Backend/internal/middleware"
	"github.com/RegionalHealth/RH-Backend/internal/storage"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[config] %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cat, err := catalog.Default()
	if err != nil {
		log.Fatalf("[catalog] %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.NewPrometheus(reg)

	store, pg, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[storage] %v", err)
	}

	svc := ledger.NewService(ledger.New(), store, prom)
	var seed []ledger.Resource
	if cfg.SeedLedger {
		if seed, err = ledger.DefaultSeed(); err != nil {
			log.Fatalf("[ledger] %v", err)
		}
	}
	if err := svc.Load(ctx, seed); err != nil {
		log.Fatalf("[ledger] %v", err)
	}

	anomalies, err := loadAnomalies(ctx, pg)
	if err != nil {
		log.Fatalf("[anomaly] %v", err)
	}

	an, err := analytics.NewService(cat, anomalies, analytics.WithRecorder(prom))
	if err != nil {
		log.Fatalf("[analytics] %v", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(prom))
	r.Get("/", RootHandler)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Mount("/locations", catalog.SetupRoutes(cat))
		r.Mount("/analytics", analytics.SetupRoutes(an))
		r.Mount("/resources", ledger.SetupRoutes(svc, middleware.AdminToken(cfg.AdminTokenHash)))
	})

	if cfg.AdminTokenHash == "" {
		log.Println("[config] ADMIN_TOKEN_HASH not set; resource writes are unauthenticated")
	}
	log.Printf("Server listening on port :%s...", cfg.Port)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// loadAnomalies prefers the postgres anomaly table and falls back to the
// embedded catalog when it is empty or not configured.
func loadAnomalies(ctx context.Context, pg *storage.Postgres) ([]anomaly.Record, error) {
	if pg != nil {
		recs, err := pg.LoadAnomalies(ctx)
		if err != nil {
			return nil, err
		}
		if len(recs) > 0 {
			log.Printf("[anomaly] loaded %d anomalies from postgres", len(recs))
			return recs, nil
		}
	}
	return anomaly.Default()
}
