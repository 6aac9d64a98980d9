package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RegionalHealth/RH-Backend/internal/analytics"
	"github.com/RegionalHealth/RH-Backend/internal/anomaly"
	"github.com/RegionalHealth/RH-Backend/internal/catalog"
	"github.com/RegionalHealth/RH-Backend/internal/risk"
)

type options struct {
	state    string
	district string
	horizon  string
	seed     uint64
}

func main() {
	_ = godotenv.Load(".env.local")
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "healthctl",
		Short: "Run the health analytics engines against the embedded catalog",
	}
	root.PersistentFlags().StringVar(&opts.state, "state", "", "state id filter")
	root.PersistentFlags().StringVar(&opts.district, "district", "", "district id filter")
	root.PersistentFlags().StringVar(&opts.horizon, "horizon", string(risk.OneWeek), "forecast window: 1week, 1month or 3months")
	root.PersistentFlags().Uint64Var(&opts.seed, "seed", 0, "seed for reproducible output (0 = random)")

	root.AddCommand(
		analysisCmd(out, opts, "risk", "Score and rank locations", analytics.KindRiskAssessment),
		analysisCmd(out, opts, "outbreaks", "Predict disease outbreaks", analytics.KindPredictions),
		analysisCmd(out, opts, "demand", "Forecast resource demand", analytics.KindResourceDemand),
		analysisCmd(out, opts, "simulate", "Simulate intervention archetypes", analytics.KindSimulation),
		analysisCmd(out, opts, "anomalies", "Summarize detected anomalies", analytics.KindAnomalies),
	)
	return root
}

func analysisCmd(out io.Writer, opts *options, use, short string, kind analytics.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), out, opts, kind)
		},
	}
}

func run(ctx context.Context, out io.Writer, opts *options, kind analytics.Kind) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	records, err := anomaly.Default()
	if err != nil {
		return fmt.Errorf("loading anomalies: %w", err)
	}

	var svcOpts []analytics.Option
	if opts.seed != 0 {
		svcOpts = append(svcOpts, analytics.WithSource(risk.NewSeeded(opts.seed)))
	}
	svc, err := analytics.NewService(c, records, svcOpts...)
	if err != nil {
		return err
	}

	env, err := svc.Run(ctx, kind, analytics.Query{
		StateID:    opts.state,
		DistrictID: opts.district,
		Horizon:    risk.Horizon(opts.horizon),
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
