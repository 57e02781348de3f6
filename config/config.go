package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"colorslide/model"
)

// FileName is the config file looked up in the data directory.
const FileName = "colorslide.config"

// PruneExportsID is the schedule ID of the export-history retention task.
const PruneExportsID = "prune-exports"

type Config struct {
	DataDir         string               `json:"data_dir"`
	ListenAddr      string               `json:"listen_addr"`
	AssetsDir       string               `json:"assets_dir,omitempty"`
	AssetsURL       string               `json:"assets_url,omitempty"`
	ProductName     string               `json:"product_name"`
	ExportRetention Duration             `json:"export_retention"`
	FetchTimeout    Duration             `json:"fetch_timeout"`
	Schedules       []model.Schedule     `json:"schedules,omitempty"`
	LastRun         map[string]time.Time `json:"last_run,omitempty"`
}

func Default() Config {
	return Config{
		DataDir:         ".",
		ListenAddr:      ":8080",
		AssetsDir:       "public",
		ProductName:     "ColorSlide",
		ExportRetention: Duration(30 * 24 * time.Hour),
		FetchTimeout:    Duration(10 * time.Second),
		Schedules: []model.Schedule{{
			ID:      PruneExportsID,
			Name:    "Prune export history",
			Enabled: true,
			Type:    model.ScheduleInterval,
			Every:   "1h",
		}},
		LastRun: make(map[string]time.Time),
	}
}

func Load(dataDir string) (Config, error) {
	cfgPath := filepath.Join(dataDir, FileName)

	f, err := os.Open(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", cfgPath, err)
	}

	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.AssetsDir == "" && cfg.AssetsURL == "" {
		cfg.AssetsDir = def.AssetsDir
	}
	if cfg.ProductName == "" {
		cfg.ProductName = def.ProductName
	}
	if cfg.ExportRetention <= 0 {
		cfg.ExportRetention = def.ExportRetention
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.Schedules == nil {
		cfg.Schedules = def.Schedules
	}
	if cfg.LastRun == nil {
		cfg.LastRun = make(map[string]time.Time)
	}

	return cfg, nil
}

func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, FileName)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}

// Duration reads and writes as a Go duration string ("720h").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"720h\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
