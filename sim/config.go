package sim

import "fmt"

// TicketMode selects how process ticket counts are maintained.
type TicketMode string

const (
	// TicketsAutomatic recomputes tickets from priority and wait time before every draw.
	TicketsAutomatic TicketMode = "automatic"
	// TicketsManual keeps caller-supplied counts; only ticket transfer changes them.
	TicketsManual TicketMode = "manual"
)

// validTicketModes is shared by Config.Validate and NewTicketPolicy.
var validTicketModes = map[TicketMode]bool{"": true, TicketsAutomatic: true, TicketsManual: true}

// IsValidTicketMode returns true if name is a recognized ticket mode.
// Empty string is valid and means automatic.
func IsValidTicketMode(name string) bool {
	return validTicketModes[TicketMode(name)]
}

// Config groups the construction-time parameters of a Simulator.
type Config struct {
	Quantum    int        `yaml:"quantum"`     // max consecutive cycles before re-lottery (>= 1)
	Speed      float64    `yaml:"speed"`       // cycles per second for paced runners; ignored by the engine
	TicketMode TicketMode `yaml:"ticket_mode"` // "automatic" (default) or "manual"
	Pool       int        `yaml:"pool"`        // 0 = direct mode, > 0 = fixed global ticket pool
}

// DefaultConfig returns the configuration used when the caller sets nothing.
func DefaultConfig() Config {
	return Config{Quantum: 2, Speed: 1.0, TicketMode: TicketsAutomatic}
}

// PoolMode reports whether draws use a fixed global ticket pool.
func (c Config) PoolMode() bool {
	return c.Pool > 0
}

// Manual reports whether tickets are caller-supplied.
func (c Config) Manual() bool {
	return c.TicketMode == TicketsManual
}

// Validate checks parameter ranges. It never coerces values.
func (c Config) Validate() error {
	if c.Quantum < 1 {
		return fmt.Errorf("quantum must be >= 1, got %d: %w", c.Quantum, ErrConfiguration)
	}
	if !validTicketModes[c.TicketMode] {
		return fmt.Errorf("unknown ticket mode %q: %w", c.TicketMode, ErrConfiguration)
	}
	if c.Pool < 0 {
		return fmt.Errorf("ticket pool must be non-negative, got %d: %w", c.Pool, ErrConfiguration)
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed must be non-negative, got %f: %w", c.Speed, ErrConfiguration)
	}
	return nil
}
