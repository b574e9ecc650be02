package main

import (
	"fmt"
	"math/rand"
	"net/http"

	"github.com/cuemby/ecs/pkg/ecslog"
	"github.com/cuemby/ecs/pkg/world"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a demo world for a fixed number of ticks",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("config", "", "Path to a world config YAML file (optional)")
	runCmd.Flags().Int("entities", 1000, "Number of demo entities to create")
	runCmd.Flags().Int("ticks", 120, "Number of update ticks to run")
	runCmd.Flags().Float64("dt", 1.0/60, "Fixed delta time per tick, in seconds")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics at http://<addr>/metrics while running (disabled if empty)")
}

func runRun(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	numEntities, _ := cmd.Flags().GetInt("entities")
	ticks, _ := cmd.Flags().GetInt("ticks")
	dt, _ := cmd.Flags().GetFloat64("dt")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	logger := ecslog.WithComponent("ecsbench")

	if metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		logger.Info().Str("addr", metricsAddr).Msg("metrics endpoint: http://" + metricsAddr + "/metrics")
	}

	cfg := world.DefaultConfig()
	if configPath != "" {
		loaded, err := world.LoadConfigYAML(configPath)
		if err != nil {
			return fmt.Errorf("failed to load world config: %w", err)
		}
		cfg = loaded
	}

	w := world.New(cfg)
	movement := newMovementProcess(w)
	w.RegisterProcess(movement)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < numEntities; i++ {
		id := world.CreateEntityWith2(w,
			Position{X: 0, Y: 0},
			Velocity{DX: rng.Float64()*2 - 1, DY: rng.Float64()*2 - 1},
		)
		world.AddComponent(w, id, Tag{UUID: uuid.NewString()})
	}

	logger.Info().
		Int("entities", numEntities).
		Int("ticks", ticks).
		Float64("dt", dt).
		Msg("starting run")

	for tick := 0; tick < ticks; tick++ {
		w.Update(dt)
	}

	logger.Info().
		Int("liveEntities", len(w.ActiveList())).
		Msg("run complete")

	return nil
}
