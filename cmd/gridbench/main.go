package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridworks/broadphase/internal/bench"
	"github.com/gridworks/broadphase/internal/config"
	"github.com/gridworks/broadphase/internal/persist"
	"github.com/gridworks/broadphase/internal/scenario"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to bench.toml (optional)")
	scenarioDir := flag.String("scenarios", "", "scenario directory override")
	flag.Parse()

	// 1. Load config: flag, then env, then defaults.
	path := *cfgPath
	if path == "" {
		path = os.Getenv("GRIDBENCH_CONFIG")
	}
	var cfg *config.Config
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Defaults()
	}
	if *scenarioDir != "" {
		cfg.Bench.ScenarioDir = *scenarioDir
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Optional result store
	var repo *persist.RunRepo
	if cfg.Database.DSN != "" {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		repo = persist.NewRunRepo(db)
		log.Info("bench results will be persisted")
	}

	// 4. Load scenarios
	eng := scenario.NewEngine(log)
	defer eng.Close()

	scenarios, err := eng.LoadDir(cfg.Bench.ScenarioDir)
	if err != nil {
		return fmt.Errorf("load scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios found in %s", cfg.Bench.ScenarioDir)
	}
	log.Info("scenarios loaded",
		zap.String("dir", cfg.Bench.ScenarioDir),
		zap.Int("count", len(scenarios)),
	)

	// 5. Run them
	runner := bench.NewRunner(log)
	for _, sc := range scenarios {
		if cfg.Bench.Ticks > 0 {
			sc.Ticks = cfg.Bench.Ticks
		}
		summary, err := runner.Run(ctx, sc)
		if err != nil {
			return fmt.Errorf("run %s: %w", sc.Name, err)
		}
		printSummary(summary)

		if repo != nil {
			id, err := repo.InsertRun(ctx, summary)
			if err != nil {
				return fmt.Errorf("persist %s: %w", sc.Name, err)
			}
			log.Info("bench run stored", zap.String("run_id", id.String()))
		}
	}
	return nil
}

func printSummary(s *bench.Summary) {
	fmt.Printf("\n  %s  (%d entities, %d ticks, %d queries)\n",
		s.Scenario, s.Entities, s.Ticks, s.Queries)
	fmt.Printf("    mean %8.2fµs   p50 %8.2fµs   p95 %8.2fµs   p99 %8.2fµs   max %8.2fµs\n",
		s.MeanMicros, s.P50Micros, s.P95Micros, s.P99Micros, s.MaxMicros)
	fmt.Printf("    avg results %.1f   aoi enter %d / leave %d   elapsed %s\n",
		s.AvgResults, s.EnterEvents, s.LeaveEvents, s.Elapsed)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
