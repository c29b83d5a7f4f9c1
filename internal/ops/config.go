// Package ops loads and validates the JSON run configuration.
package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"main/internal/book"
	"main/internal/recorder"
	"main/internal/sim"
	"main/internal/strategy"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Journal  JournalConfig  `json:"journal"`
	Strategy StrategyConfig `json:"strategy"`
	Runtime  RuntimeConfig  `json:"runtime"`
	Exchange ExchangeConfig `json:"exchange"`
	Results  ResultsConfig  `json:"results"`
	Profiler ProfilerConfig `json:"profiler"`
}

// JournalConfig locates the recorded event journal to replay.
type JournalConfig struct {
	Dir        string  `json:"dir"`
	FilePrefix string  `json:"filePrefix"`
	Speed      float64 `json:"speed"`
	NoChecksum bool    `json:"noChecksum"`
}

// StrategyConfig names the strategy and carries its raw option string.
type StrategyConfig struct {
	Name    string `json:"name"`
	Options string `json:"options"`
}

// RuntimeConfig configures the dispatcher around the strategy.
type RuntimeConfig struct {
	LogSignals     bool   `json:"logSignals"`
	SignalLogPath  string `json:"signalLogPath"`
	MetricsEnabled bool   `json:"metricsEnabled"`
	SessionOpen    int64  `json:"sessionOpen"`
	SessionClose   int64  `json:"sessionClose"`
}

// ExchangeConfig configures the simulated exchange.
type ExchangeConfig struct {
	LongSaleValidation bool `json:"longSaleValidation"`
}

// ResultsConfig controls run-result persistence. An empty JSONPath skips
// the file; Postgres is used only when a database name is set.
type ResultsConfig struct {
	JSONPath string         `json:"jsonPath"`
	Postgres PostgresConfig `json:"postgres"`
}

// PostgresConfig carries run-result store connection settings.
type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslMode"`
}

// ProfilerConfig enables the pyroscope profiler.
type ProfilerConfig struct {
	Enabled       bool   `json:"enabled"`
	ServerAddress string `json:"serverAddress"`
	AppName       string `json:"appName"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	File           FileConfig
	Playback       recorder.PlaybackConfig
	Runtime        strategy.Config
	Exchange       sim.Config
	StrategyName   string
	MomentumConfig strategy.MomentumConfig
}

const defaultStrategyName = "momentum"

// Load reads a JSON config file and resolves every section. Malformed
// strategy options fail here, before any event is replayed.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return Resolve(cfg)
}

// Resolve validates a parsed config and builds the component configs.
func Resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Journal.Dir == "" {
		return Loaded{}, fmt.Errorf("config: journal.dir is empty")
	}
	if cfg.Journal.Speed < 0 {
		return Loaded{}, fmt.Errorf("config: journal.speed must be >= 0")
	}
	if cfg.Runtime.SessionClose != 0 && cfg.Runtime.SessionClose <= cfg.Runtime.SessionOpen {
		return Loaded{}, fmt.Errorf("config: session close %d is not after open %d",
			cfg.Runtime.SessionClose, cfg.Runtime.SessionOpen)
	}

	name := cfg.Strategy.Name
	if name == "" {
		name = defaultStrategyName
	}
	if name != defaultStrategyName {
		return Loaded{}, fmt.Errorf("config: unknown strategy %q", name)
	}

	opts, err := strategy.ParseOptions(cfg.Strategy.Options)
	if err != nil {
		return Loaded{}, fmt.Errorf("config: strategy options: %w", err)
	}
	momentum := strategy.DefaultMomentumConfig()
	if err := momentum.Apply(opts); err != nil {
		return Loaded{}, fmt.Errorf("config: strategy options: %w", err)
	}

	return Loaded{
		File: cfg,
		Playback: recorder.PlaybackConfig{
			Dir:             cfg.Journal.Dir,
			FilePrefix:      cfg.Journal.FilePrefix,
			Speed:           cfg.Journal.Speed,
			DisableChecksum: cfg.Journal.NoChecksum,
		},
		Runtime: strategy.Config{
			LogSignals:     cfg.Runtime.LogSignals,
			SignalLogPath:  cfg.Runtime.SignalLogPath,
			MetricsEnabled: cfg.Runtime.MetricsEnabled,
			Session: book.Session{
				Open:  cfg.Runtime.SessionOpen,
				Close: cfg.Runtime.SessionClose,
			},
		},
		Exchange: sim.Config{
			LongSaleValidation: cfg.Exchange.LongSaleValidation,
		},
		StrategyName:   name,
		MomentumConfig: momentum,
	}, nil
}
