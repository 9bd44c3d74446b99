package sim

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/physics"
)

// Config configures the simulation loop.
type Config struct {
	// Fixed step in seconds.
	TimeStep float64 `json:"time_step"`

	// Simulated seconds per wall-clock second. Zero runs unthrottled.
	RealTimeFactor float64 `json:"real_time_factor"`

	// Simulated seconds before Run returns. Zero runs until cancelled.
	Duration float64 `json:"duration"`

	// Capacity of the command hand-off queue.
	InboxSize int `json:"inbox_size"`

	Body  physics.Params `json:"body"`
	Gains command.Gains  `json:"gains"`
}

// DefaultConfig returns a 60 Hz real-time configuration.
func DefaultConfig() Config {
	return Config{
		TimeStep:       1.0 / 60.0,
		RealTimeFactor: 1.0,
		InboxSize:      64,
		Body:           physics.DefaultParams(),
		Gains:          command.DefaultGains(),
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error
	if c.TimeStep <= 0 {
		err = multierr.Append(err, fmt.Errorf("time step must be positive, got %v", c.TimeStep))
	}
	if c.RealTimeFactor < 0 {
		err = multierr.Append(err, fmt.Errorf("real time factor must not be negative, got %v", c.RealTimeFactor))
	}
	if c.Duration < 0 {
		err = multierr.Append(err, fmt.Errorf("duration must not be negative, got %v", c.Duration))
	}
	if c.InboxSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("inbox size must be positive, got %d", c.InboxSize))
	}
	if bodyErr := c.Body.Validate(); bodyErr != nil {
		err = multierr.Append(err, fmt.Errorf("body: %w", bodyErr))
	}
	return err
}
