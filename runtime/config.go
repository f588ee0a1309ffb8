package runtime

import (
	"time"

	"github.com/streamforge/streamforge/scheduler"
)

// Config holds every knob the runtime coordinator reads at Init. It is a
// plain struct with no YAML tags: the core runtime has no configuration
// file format of its own. See the config package for a YAML loader that
// builds one of these for the demo binary.
type Config struct {
	NumWorkers           int
	DefaultQueueCapacity int
	SchedulingPolicy     scheduler.Policy
	EnableMetrics        bool
	MetricsInterval      time.Duration
}

// DefaultConfig returns the runtime's out-of-the-box configuration. A
// NumWorkers of 0 means "auto": the runtime resolves it to the host's
// detected hardware concurrency at Init, falling back to 4 if that can't
// be determined.
func DefaultConfig() Config {
	return Config{
		NumWorkers:           0,
		DefaultQueueCapacity: 4096,
		SchedulingPolicy:     scheduler.PolicyRoundRobin,
		EnableMetrics:        true,
		MetricsInterval:      time.Second,
	}
}
