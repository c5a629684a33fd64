// Package trafficlight implements the per-intersection traffic light
// module (C4): two independent phases (color, arrow) cycling through a
// ring of (state, duration) pairs, advanced once per tick.
package trafficlight

import "git.fiblab.net/general/common/v2/mathutil"

// PhaseState is a single traffic-light state; color and arrow phases each
// carry their own small vocabulary, so this is left as a plain string
// (e.g. "green", "yellow", "red", "left-arrow-green").
type PhaseState string

// PhaseStep is one (state, duration) entry of a phase ring.
type PhaseStep struct {
	State    PhaseState
	Duration float64 // seconds
}

// Phase is a cyclic ring of steps with an elapsed-time cursor and a
// change-flag set whenever the active step advances this tick (§3, §4.4).
type Phase struct {
	Steps   []PhaseStep
	step    int
	elapsed float64
	Changed bool
}

// NewPhase builds a phase ring starting at its first step.
func NewPhase(steps []PhaseStep) *Phase {
	return &Phase{Steps: steps}
}

// State returns the phase's current state, or "" if the ring is empty.
func (p *Phase) State() PhaseState {
	if len(p.Steps) == 0 {
		return ""
	}
	return p.Steps[p.step].State
}

// RemainingTime is the time left until the next scheduled transition.
func (p *Phase) RemainingTime() float64 {
	if len(p.Steps) == 0 {
		return mathutil.INF
	}
	return p.Steps[p.step].Duration - p.elapsed
}

// clearChanged resets the change-flag; called at tick start (§4.4).
func (p *Phase) clearChanged() { p.Changed = false }

// advance steps the phase cursor forward by dt, cycling through Steps and
// setting Changed when the active step transitions (§4.4).
func (p *Phase) advance(dt float64) {
	if len(p.Steps) == 0 {
		return
	}
	p.elapsed += dt
	for p.elapsed >= p.Steps[p.step].Duration {
		p.elapsed -= p.Steps[p.step].Duration
		p.step = (p.step + 1) % len(p.Steps)
		p.Changed = true
	}
}

// set forces an external override: set the state and clear the cursor,
// with Changed becoming true for this tick (§4.4 setColor/setArrow).
func (p *Phase) set(state PhaseState) {
	for i, step := range p.Steps {
		if step.State == state {
			p.step = i
			p.elapsed = 0
			p.Changed = true
			return
		}
	}
	// state absent from the ring: install a standing single-step ring.
	p.Steps = []PhaseStep{{State: state, Duration: mathutil.INF}}
	p.step = 0
	p.elapsed = 0
	p.Changed = true
}

// Light is a single traffic light (§3): independent color and arrow
// phases.
type Light struct {
	ID    string
	Color *Phase
	Arrow *Phase
}

// New creates a light with the given color and arrow phase rings.
func New(id string, colorSteps, arrowSteps []PhaseStep) *Light {
	return &Light{ID: id, Color: NewPhase(colorSteps), Arrow: NewPhase(arrowSteps)}
}

// ClearChanged resets both phases' change-flags. Called by the simulation
// loop at the very start of a tick, before RPC requests (which may call
// SetColor/SetArrow) are drained, so an override's Changed flag survives
// through this tick's Update (§4.4).
func (l *Light) ClearChanged() {
	l.Color.clearChanged()
	l.Arrow.clearChanged()
}

// Update advances both phases by dt (§4.4).
func (l *Light) Update(dt float64) {
	l.Color.advance(dt)
	l.Arrow.advance(dt)
}

// SetColor forces the color phase to state immediately.
func (l *Light) SetColor(state PhaseState) { l.Color.set(state) }

// SetArrow forces the arrow phase to state immediately.
func (l *Light) SetArrow(state PhaseState) { l.Arrow.set(state) }
