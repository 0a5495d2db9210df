// Package layout runs the iterative force simulation that turns a built
// graph into stable, readable positions.
//
// Forces are modeled as a list of pure functions force(node, ctx) → (dvx, dvy)
// whose contributions are summed before a single velocity update per tick,
// so no force depends on mutation order. The engine cools a global alpha
// scalar toward a floor, periodically reheating so anchor- or pin-induced
// local equilibria don't freeze an unconverged layout permanently.
package layout

import (
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/starmap/pkg/errors"
)

// Config holds the tunable physics constants for the simulation.
// All strength values are multiplied by the current alpha each tick.
type Config struct {
	// Cooling schedule. Defaults follow d3-force conventions.
	AlphaMin       float64 `toml:"alpha_min"`       // cooling floor
	AlphaDecay     float64 `toml:"alpha_decay"`     // per-tick decay fraction
	AlphaReheat    float64 `toml:"alpha_reheat"`    // bump applied on reheat
	ReheatInterval int     `toml:"reheat_interval"` // ticks between reheat checks
	VelocityDecay  float64 `toml:"velocity_decay"`  // friction applied after summing

	// Pairwise repulsion.
	Repulsion       float64 `toml:"repulsion"`        // base strength per node pair
	ContainerFactor float64 `toml:"container_factor"` // extra repulsion for centers

	// Link springs. Rest length depends on the link's role.
	LinkStrength  float64 `toml:"link_strength"`
	LinkDistance  float64 `toml:"link_distance"`  // default rest length
	SpokeDistance float64 `toml:"spoke_distance"` // center–spoke rest length
	HubDistance   float64 `toml:"hub_distance"`   // center–center rest length

	// Global recentering, scaled by log(distance from the visual center).
	CenterGravity float64 `toml:"center_gravity"`

	// Cohesion toward the centroid of connected non-anchor neighbors.
	Cohesion float64 `toml:"cohesion"`

	// Star-mode radial containment of spokes around their owning center.
	RadialStrength float64 `toml:"radial_strength"`
	RadialDistance float64 `toml:"radial_distance"`

	// Anchor gravity, normalized by each node's anchor count.
	AnchorGravity float64 `toml:"anchor_gravity"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		AlphaMin:       0.001,
		AlphaDecay:     0.0228,
		AlphaReheat:    0.1,
		ReheatInterval: 300,
		VelocityDecay:  0.25,

		Repulsion:       80,
		ContainerFactor: 2.5,

		LinkStrength:  0.1,
		LinkDistance:  60,
		SpokeDistance: 40,
		HubDistance:   120,

		CenterGravity: 0.05,
		Cohesion:      0.03,

		RadialStrength: 0.08,
		RadialDistance: 80,

		AnchorGravity: 0.05,
	}
}

// LoadConfig reads a TOML physics config from path, applied on top of the
// defaults. Missing keys keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load layout config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config for values that would destabilize the
// simulation.
func (c Config) Validate() error {
	if c.AlphaMin <= 0 || c.AlphaMin >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_min must be in (0, 1), got %v", c.AlphaMin)
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_decay must be in (0, 1), got %v", c.AlphaDecay)
	}
	if c.VelocityDecay < 0 || c.VelocityDecay >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "velocity_decay must be in [0, 1), got %v", c.VelocityDecay)
	}
	if c.ReheatInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "reheat_interval must be positive, got %d", c.ReheatInterval)
	}
	return nil
}
