// Package config holds the YAML-decoded launch configuration for the
// simulator, mirroring the teacher's utils/config package.
package config

import "gopkg.in/yaml.v2"

// ControlStep describes the simulator's fixed-step clock.
type ControlStep struct {
	StepTime      float64 `yaml:"step_time"`      // seconds of simulated time per tick
	RealtimeFactor float64 `yaml:"realtime_factor"` // simulation-seconds per wall-clock-second
}

// Control groups the simulator's run-time control parameters.
type Control struct {
	Step ControlStep `yaml:"step"`
}

// Input locates the scenario file and the lanelet map the simulator loads
// at startup. Both are read via the injected provider interfaces (§6);
// this config only carries their filesystem locations.
type Input struct {
	ScenarioFile string `yaml:"scenario_file"`
	MapFile      string `yaml:"map_file"`
}

// RPC groups the listener configuration for the RPC/telemetry surface.
type RPC struct {
	Listen string `yaml:"listen"` // e.g. ":8080"
}

// Config is the root of the YAML configuration file.
type Config struct {
	Input   Input   `yaml:"input"`
	Control Control `yaml:"control"`
	RPC     RPC     `yaml:"rpc"`
}

// Default returns a Config with the conservative defaults the simulator
// falls back to when a field is left unset in the file.
func Default() Config {
	return Config{
		Control: Control{
			Step: ControlStep{
				StepTime:       0.05,
				RealtimeFactor: 1.0,
			},
		},
		RPC: RPC{
			Listen: ":8080",
		},
	}
}

// applyDefaults fills zero-valued fields of c with the defaults. Used after
// yaml.UnmarshalStrict so an omitted `rpc.listen` etc. still has a sane value.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Control.Step.StepTime == 0 {
		c.Control.Step.StepTime = d.Control.Step.StepTime
	}
	if c.Control.Step.RealtimeFactor == 0 {
		c.Control.Step.RealtimeFactor = d.Control.Step.RealtimeFactor
	}
	if c.RPC.Listen == "" {
		c.RPC.Listen = d.RPC.Listen
	}
}

// Load decodes YAML bytes into a Config, applying defaults for unset fields.
func Load(data []byte) (Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, err
	}
	c.applyDefaults()
	return c, nil
}
