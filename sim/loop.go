// Package sim implements the fixed-step simulation scheduler (C7): the
// loop that drains inbound RPC requests, advances the story tree, then
// the traffic lights and entities, once per tick (§4.7).
package sim

import (
	"context"
	"sync"

	"github.com/openscenario-sim/oscsim/clock"
	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/openscenario-sim/oscsim/scope"
	"github.com/openscenario-sim/oscsim/story"
	"github.com/openscenario-sim/oscsim/trafficlight"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "sim")

// requestQueueSize bounds the inbound RPC request queue (§5 "Shared
// resources": a bounded request queue drained by the simulation thread at
// step boundaries).
const requestQueueSize = 256

// request is one inbound RPC request queued for application at the next
// tick boundary.
type request struct {
	apply  func(*Loop) (any, error)
	result chan<- outcome
}

type outcome struct {
	value any
	err   error
}

// Snapshot is the per-tick telemetry payload published to subscribers
// (§4.7 step 4, §12 "stand-still and speed statistics surfaced over
// telemetry").
type Snapshot struct {
	Time     float64                     `json:"time"`
	Tick     int64                       `json:"tick"`
	Entities map[string]EntitySnapshot   `json:"entities"`
	Lights   map[string]LightSnapshot    `json:"lights"`
	Lanelets map[int32]entity.LaneStats  `json:"lanelets"`
	Ended    bool                        `json:"ended"`
}

// EntitySnapshot is the subset of an entity's dynamic state telemetry
// exposes.
type EntitySnapshot struct {
	Positioned         bool    `json:"positioned"`
	X                  float64 `json:"x"`
	Y                  float64 `json:"y"`
	Z                  float64 `json:"z"`
	Yaw                float64 `json:"yaw"`
	SpeedMps           float64 `json:"speed_mps"`
	AccelMps2          float64 `json:"accel_mps2"`
	StandStillDuration float64 `json:"stand_still_duration"`
	ActionStatus       string  `json:"action_status"`
}

// LightSnapshot is a traffic light's current state plus its per-tick
// change flags.
type LightSnapshot struct {
	Color        string `json:"color"`
	Arrow        string `json:"arrow"`
	ColorChanged bool   `json:"color_changed"`
	ArrowChanged bool   `json:"arrow_changed"`
}

// Loop is the C7 fixed-step scheduler: it owns the simulation clock and
// drives C1 (read-only), C2/C3 (entities), C4 (traffic lights) and C6
// (the story tree) together each tick.
type Loop struct {
	mu sync.Mutex

	Clock      *clock.Clock
	Network    *lanelet.Network
	Entities   *entity.Manager
	Lights     *trafficlight.Manager
	Env        *scope.Environment
	Storyboard *story.Storyboard
	EvalCtx    *story.EvalContext

	requests chan request

	Ended   bool
	fatal   error

	subMu       sync.Mutex
	subscribers []chan Snapshot
}

// New wires the loaded map, entity registry, traffic lights and story
// tree into a runnable Loop (§4.7, data-flow diagram of §2).
func New(c *clock.Clock, n *lanelet.Network, entities *entity.Manager, lights *trafficlight.Manager, env *scope.Environment, sb *story.Storyboard, ec *story.EvalContext) *Loop {
	return &Loop{
		Clock:      c,
		Network:    n,
		Entities:   entities,
		Lights:     lights,
		Env:        env,
		Storyboard: sb,
		EvalCtx:    ec,
		requests:   make(chan request, requestQueueSize),
	}
}

// Enqueue submits apply for application at the start of the next tick
// (§4.7 step 1, §5 "Ordering guarantees": requests observed before tick
// start apply in FIFO order). It blocks until applied or ctx is done,
// returning ExecutionFailedError on a missed deadline (§5 "Cancellation &
// timeouts", default 1s — callers set that on ctx).
func (l *Loop) Enqueue(ctx context.Context, apply func(*Loop) (any, error)) (any, error) {
	result := make(chan outcome, 1)
	select {
	case l.requests <- request{apply: apply, result: result}:
	case <-ctx.Done():
		return nil, executionFailed("request queue full or simulator shutting down")
	}
	select {
	case r := <-result:
		return r.value, r.err
	case <-ctx.Done():
		return nil, executionFailed("request not applied before deadline")
	}
}

// drainRequests applies every request queued before this tick's drain, in
// FIFO order (§4.7 step 1).
func (l *Loop) drainRequests() {
	for {
		select {
		case req := <-l.requests:
			v, err := req.apply(l)
			req.result <- outcome{value: v, err: err}
		default:
			return
		}
	}
}

// UpdateFrame advances the simulation exactly one tick (§4.7):
//  1. drain inbound RPC requests
//  2. advance the story tree (C6)
//  3. advance traffic lights (C4) and entities (C2/C3) concurrently
//  4. publish telemetry
//  5. advance the clock
//
// Safe to call concurrently with itself and with Enqueue; at most one
// tick runs at a time.
func (l *Loop) UpdateFrame() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Ended {
		return l.fatal
	}

	// Changed-flags are cleared before requests are drained so a
	// setColor/setArrow override applied via RPC this tick keeps its
	// Changed flag true through this tick's Update (§4.4).
	l.Lights.ClearChanged()
	l.drainRequests()

	l.EvalCtx.SetNow(l.Clock.T)
	if err := l.Storyboard.Step(l.EvalCtx); err != nil {
		l.Ended = true
		l.fatal = err
		log.Warnf("scenario evaluation stopped: %v", err)
		return err
	}
	if l.Storyboard.Ended {
		l.Ended = true
		log.Infof("stop trigger fired at t=%s", l.Clock)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.Lights.UpdateFrame(l.Clock.StepTime)
	}()
	go func() {
		defer wg.Done()
		l.Entities.UpdateFrame(l.Network, l.Clock.StepTime)
	}()
	wg.Wait()

	l.publish()
	l.Clock.Step()
	return nil
}

// buildSnapshot captures the telemetry-visible subset of simulation state
// after a tick's integration (§4.7 step 4, §12).
func (l *Loop) buildSnapshot() Snapshot {
	snap := Snapshot{
		Time:     l.Clock.T,
		Tick:     l.Clock.Tick,
		Entities: make(map[string]EntitySnapshot),
		Lights:   make(map[string]LightSnapshot),
		Lanelets: l.Entities.LaneletStats(),
		Ended:    l.Ended,
	}
	for _, name := range l.Entities.Names() {
		e := l.Entities.Get(name)
		if e == nil {
			continue
		}
		es := EntitySnapshot{
			Positioned:         e.HasPosition(),
			SpeedMps:           e.Status.SpeedMps,
			AccelMps2:          e.Status.AccelMps2,
			StandStillDuration: e.Status.StandStillDuration,
			ActionStatus:       e.Status.ActionStatus,
		}
		if pose, ok := e.WorldPosition(l.Network); ok {
			es.X, es.Y, es.Z, es.Yaw = pose.Position.X, pose.Position.Y, pose.Position.Z, pose.Yaw
		}
		snap.Entities[name] = es
	}
	for _, id := range l.Lights.IDs() {
		lgt := l.Lights.Get(id)
		if lgt == nil {
			continue
		}
		snap.Lights[id] = LightSnapshot{
			Color:        string(lgt.Color.State()),
			Arrow:        string(lgt.Arrow.State()),
			ColorChanged: lgt.Color.Changed,
			ArrowChanged: lgt.Arrow.Changed,
		}
	}
	return snap
}

// Subscribe registers a telemetry channel that receives a Snapshot after
// every tick. The returned func unregisters it. Sends are non-blocking: a
// slow subscriber drops frames rather than stalling the simulation thread.
func (l *Loop) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)
	l.subMu.Lock()
	l.subscribers = append(l.subscribers, ch)
	l.subMu.Unlock()

	unsub := func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		for i, s := range l.subscribers {
			if s == ch {
				l.subscribers = append(l.subscribers[:i], l.subscribers[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, unsub
}

func (l *Loop) publish() {
	snap := l.buildSnapshot()
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, ch := range l.subscribers {
		select {
		case ch <- snap:
		default:
			log.Debugf("telemetry subscriber backpressured, dropping tick %d", snap.Tick)
		}
	}
}
