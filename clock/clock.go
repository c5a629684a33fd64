// Package clock tracks the simulator's monotonic simulation time (§3
// "Simulation clock"), advanced one fixed step at a time by the C7 loop.
package clock

import (
	"fmt"

	"github.com/openscenario-sim/oscsim/internal/config"
)

// Clock is (current_time, step_time, realtime_factor) from §3. Step sets
// T to Tick*StepTime, so T does not decrease while StepTime is unchanged.
type Clock struct {
	StepTime       float64 // seconds of simulated time advanced per tick
	RealtimeFactor float64 // simulation-seconds per wall-clock-second

	T    float64 // current simulation time, seconds
	Tick int64   // number of completed ticks since Init
}

// New creates a Clock from the configured step time and realtime factor.
func New(step config.ControlStep) *Clock {
	c := &Clock{StepTime: step.StepTime, RealtimeFactor: step.RealtimeFactor}
	c.Init()
	return c
}

// Init resets the clock to t=0, tick=0.
func (c *Clock) Init() {
	c.T = 0
	c.Tick = 0
}

// Step increments Tick and recomputes T as Tick*StepTime; it is called once
// per simulation tick, after scenario evaluation and kinematic integration
// (§4.7 step 5). With a fixed StepTime, current_time is non-decreasing
// (§8 property 5).
func (c *Clock) Step() {
	c.Tick++
	c.T = float64(c.Tick) * c.StepTime
}

// WallClockPeriod returns how long the driver should sleep between ticks to
// honor the configured real-time factor.
func (c *Clock) WallClockPeriod() float64 {
	if c.RealtimeFactor <= 0 {
		return 0
	}
	return c.StepTime / c.RealtimeFactor
}

// String renders the current simulation time as HH:MM:SS.
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
