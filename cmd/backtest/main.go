package main

import (
	"context"
	"flag"
	"log"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/backtest"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/recorder"
	"main/internal/results"
	"main/internal/sim"
	"main/internal/strategy"
	"main/pkg/conn"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON run config")
	journalDir := flag.String("journal-dir", "", "Override journal directory")
	speed := flag.Float64("speed", -1, "Override playback speed (1=real-time, 0=no pacing)")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *journalDir != "" {
		loaded.Playback.Dir = *journalDir
		loaded.File.Journal.Dir = *journalDir
	}
	if *speed >= 0 {
		loaded.Playback.Speed = *speed
	}

	if loaded.File.Profiler.Enabled {
		stop, err := startProfiler(loaded.File.Profiler)
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		cancel()
	}()

	if err := run(ctx, loaded); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func run(ctx context.Context, loaded ops.Loaded) error {
	rt, err := strategy.New(strategy.NewMomentum(loaded.MomentumConfig), loaded.Runtime)
	if err != nil {
		return err
	}
	defer rt.Close()

	playback, err := recorder.NewPlayback(loaded.Playback)
	if err != nil {
		return err
	}
	exchange := sim.New(loaded.Exchange)
	metrics := obs.NewMetrics()
	runner := backtest.NewRunner(rt, exchange, playback, metrics, 0)

	logs.Infof("replaying journal %s with strategy %s", loaded.Playback.Dir, loaded.StrategyName)
	started := time.Now()
	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)
	logs.Infof("replay finished in %s", elapsed)
	logs.Info(report.String())

	result := results.Build(
		loaded.Playback.Dir,
		loaded.StrategyName,
		loaded.File.Strategy.Options,
		report,
		metrics.Snapshot(),
		elapsed,
	)
	return persist(ctx, loaded.File.Results, result)
}

func persist(ctx context.Context, cfg ops.ResultsConfig, result results.RunResult) error {
	if cfg.JSONPath != "" {
		if err := results.WriteFile(cfg.JSONPath, result); err != nil {
			return err
		}
		logs.Infof("wrote run result to %s", cfg.JSONPath)
	}
	if cfg.Postgres.Database == "" {
		return nil
	}

	client, err := conn.New(conn.Option{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	store, err := results.NewStore(client)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, &result); err != nil {
		return err
	}
	logs.Infof("saved run result %d to postgres", result.ID)
	return nil
}

func startProfiler(cfg ops.ProfilerConfig) (func(), error) {
	server := cfg.ServerAddress
	if server == "" {
		server = "http://localhost:4040"
	}
	app := cfg.AppName
	if app == "" {
		app = "backtest"
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: app,
		ServerAddress:   server,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = profiler.Stop() }, nil
}
