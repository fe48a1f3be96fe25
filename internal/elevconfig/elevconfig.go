package elevconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"

	"github.com/szymonmasternak/elevator-bank/internal/logger"
)

var Log = logger.GetLogger()

// Timing holds every duration the simulation polls or sleeps on. Values are
// decoded from YAML as nanosecond integers, matching time.Duration.
type Timing struct {
	// Minimum time the door stays open at a serviced floor.
	DoorOpenDuration time.Duration `yaml:"DoorOpenDuration"`

	// Travel delay incurred for each one-floor move.
	TravelDuration time.Duration `yaml:"TravelDuration"`

	// Interval between checks of the door force flags while the door is open.
	DoorPollInterval time.Duration `yaml:"DoorPollInterval"`

	// Upper bound on how long a held force-open keeps the door open past its
	// dwell before the unit raises an alarm and closes anyway.
	ForceOpenTimeout time.Duration `yaml:"ForceOpenTimeout"`

	// Backoff before the dispatcher retries an unroutable head request.
	DispatchRetryInterval time.Duration `yaml:"DispatchRetryInterval"`
}

func DefaultTiming() Timing {
	return Timing{
		DoorOpenDuration:      3 * time.Second,
		TravelDuration:        1 * time.Second,
		DoorPollInterval:      20 * time.Millisecond,
		ForceOpenTimeout:      10 * time.Second,
		DispatchRetryInterval: 100 * time.Millisecond,
	}
}

// Validate rejects any non-positive duration. A zero poll or retry interval
// would turn the polling loops into busy spins.
func (t Timing) Validate() error {
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"DoorOpenDuration", t.DoorOpenDuration},
		{"TravelDuration", t.TravelDuration},
		{"DoorPollInterval", t.DoorPollInterval},
		{"ForceOpenTimeout", t.ForceOpenTimeout},
		{"DispatchRetryInterval", t.DispatchRetryInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("elevconfig: %v must be positive, got %v", d.name, d.value)
		}
	}
	return nil
}

// Load reads a Timing from a YAML file. Fields left out of the file keep
// their default values. An unreadable, undecodable or non-positive-duration
// file is an error; an empty path just returns the defaults.
func Load(path string) (Timing, error) {
	timing := DefaultTiming()
	if path == "" {
		return timing, nil
	}

	file, err := os.Open(path)
	if err != nil {
		Log.Error().Msgf("Error reading timing config %v", path)
		return timing, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&timing); err != nil {
		Log.Error().Msgf("Error decoding timing config %v", path)
		return timing, err
	}
	if err := timing.Validate(); err != nil {
		Log.Error().Msgf("Error validating timing config %v: %v", path, err)
		return DefaultTiming(), err
	}
	return timing, nil
}
