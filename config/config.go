// Package config loads the demo binary's runtime.Config from YAML. Nothing
// under the runtime's core packages imports this package; a library
// caller builds a runtime.Config by hand or with runtime.DefaultConfig,
// the same way the reference platform's flow engine never required its
// embedding service to go through config.Load.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	streamforgeerrors "github.com/streamforge/streamforge/errors"
	"github.com/streamforge/streamforge/runtime"
	"github.com/streamforge/streamforge/scheduler"
)

// fileFormat is the on-disk YAML shape; it exists separately from
// runtime.Config because the file encodes the scheduling policy and
// metrics interval as strings/milliseconds, not as the Go types the core
// runtime uses internally.
type fileFormat struct {
	NumWorkers           int    `yaml:"num_workers"`
	DefaultQueueCapacity int    `yaml:"default_queue_capacity"`
	SchedulingPolicy     string `yaml:"scheduling_policy"`
	EnableMetrics        bool   `yaml:"enable_metrics"`
	MetricsIntervalMS    int    `yaml:"metrics_interval_ms"`
}

// Load reads a runtime.Config from a YAML file at path, layering it over
// runtime.DefaultConfig for any field the file omits. A missing file is
// not an error: it returns the defaults, matching the reference
// platform's config loader treating an absent file as "use the defaults"
// rather than a startup failure.
func Load(path string) (runtime.Config, error) {
	cfg := runtime.DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, streamforgeerrors.WrapInvalid(err, "config", "Load", "read file")
	}

	var raw fileFormat
	raw.NumWorkers = cfg.NumWorkers
	raw.DefaultQueueCapacity = cfg.DefaultQueueCapacity
	raw.EnableMetrics = cfg.EnableMetrics
	raw.MetricsIntervalMS = int(cfg.MetricsInterval / time.Millisecond)

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, streamforgeerrors.WrapInvalid(err, "config", "Load", "parse yaml")
	}

	policy, err := parsePolicy(raw.SchedulingPolicy)
	if err != nil {
		return cfg, err
	}

	cfg.NumWorkers = raw.NumWorkers
	cfg.DefaultQueueCapacity = raw.DefaultQueueCapacity
	cfg.SchedulingPolicy = policy
	cfg.EnableMetrics = raw.EnableMetrics
	cfg.MetricsInterval = time.Duration(raw.MetricsIntervalMS) * time.Millisecond

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parsePolicy(name string) (scheduler.Policy, error) {
	switch name {
	case "", "round_robin":
		return scheduler.PolicyRoundRobin, nil
	case "work_stealing":
		return scheduler.PolicyWorkStealing, nil
	case "priority":
		return scheduler.PolicyPriority, nil
	case "load_aware":
		return scheduler.PolicyLoadAware, nil
	default:
		return 0, streamforgeerrors.WrapInvalid(streamforgeerrors.ErrInvalidConfig, "config", "parsePolicy", "unknown scheduling_policy "+name)
	}
}

// Validate checks that every field of cfg holds a usable value. NumWorkers
// of exactly 0 is the valid "auto-detect hardware concurrency" sentinel;
// only a negative value is rejected.
func Validate(cfg runtime.Config) error {
	if cfg.NumWorkers < 0 {
		return streamforgeerrors.WrapInvalid(streamforgeerrors.ErrInvalidConfig, "config", "Validate", "num_workers must be >= 0")
	}
	if cfg.DefaultQueueCapacity < 1 {
		return streamforgeerrors.WrapInvalid(streamforgeerrors.ErrInvalidConfig, "config", "Validate", "default_queue_capacity must be >= 1")
	}
	if cfg.EnableMetrics && cfg.MetricsInterval < time.Millisecond {
		return streamforgeerrors.WrapInvalid(streamforgeerrors.ErrInvalidConfig, "config", "Validate", "metrics_interval must be >= 1ms when enable_metrics is set")
	}
	return nil
}
