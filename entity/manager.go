package entity

import (
	"fmt"
	"sync"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "entity")

// TrafficSink is a circular zone that despawns any entity entering it
// (§3 GLOSSARY, §4.3).
type TrafficSink struct {
	Center   geometry.Point
	Radius   float64
	Callback func(name string)
}

// LaneStats is a lanelet's aggregated traffic state (§12 supplemented
// feature): how many entities currently occupy it and their smoothed mean
// speed, analogous to the teacher's Lane.GetPressure/VehicleCount.
type LaneStats struct {
	VehicleCount int
	MeanSpeedMps float64
}

// laneStatsSmoothing is the exponential-smoothing factor applied to
// mean speed each tick, the same role as the teacher's own smoothed
// pressure statistic.
const laneStatsSmoothing = 0.3

// Manager is the registry of named entities (C3): spawn/despawn, per-tick
// update and traffic-sink eviction.
type Manager struct {
	mu sync.Mutex

	data  map[string]*Entity
	order []string // insertion order, iterated each tick

	despawnQueue map[string]struct{}

	sinks []TrafficSink

	laneStats map[int32]*LaneStats
}

// NewManager creates an empty entity registry.
func NewManager() *Manager {
	return &Manager{
		data:         make(map[string]*Entity),
		despawnQueue: make(map[string]struct{}),
		laneStats:    make(map[int32]*LaneStats),
	}
}

// Spawn inserts a new entity; duplicate names fail (§4.3).
func (m *Manager) Spawn(isEgo bool, name string, kind Kind, box BoundingBox, limits PerformanceLimits) (*Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[name]; exists {
		return nil, fmt.Errorf("entity %q already exists", name)
	}
	e := &Entity{Name: name, IsEgo: isEgo, Kind: kind, Box: box, Limits: limits}
	m.data[name] = e
	m.order = append(m.order, name)
	log.Infof("spawned entity %s", name)
	return e, nil
}

// Get returns the entity with the given name, or nil if absent.
func (m *Manager) Get(name string) *Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[name]
}

// Despawn queues name for removal; actual deletion happens when the next
// UpdateFrame call drains the queue at its start, to avoid iterator
// invalidation (§4.3).
func (m *Manager) Despawn(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.despawnQueue[name] = struct{}{}
}

// AddTrafficSink registers a despawn zone.
func (m *Manager) AddTrafficSink(sink TrafficSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, sink)
}

// Names returns the entities currently registered, in insertion order.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// UpdateFrame drains despawns queued by the *previous* tick, iterates
// entities in insertion order to integrate their kinematics, then runs
// traffic sinks. A despawn queued this tick (by RPC or a sink) is not
// deleted until the next call to UpdateFrame, so telemetry built from this
// tick's registry still observes the entity, and it is gone only once the
// next tick's drain runs before that tick's own telemetry (§4.3, §8
// testable property 6).
func (m *Manager) UpdateFrame(n *lanelet.Network, dt float64) {
	m.drainDespawnQueue()

	m.mu.Lock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	m.mu.Unlock()

	for _, name := range names {
		m.mu.Lock()
		e := m.data[name]
		m.mu.Unlock()
		if e == nil {
			continue
		}
		e.Update(n, dt)
	}

	m.runTrafficSinks(n)
	m.updateLaneStats()
}

// updateLaneStats recomputes per-lanelet vehicle counts and exponentially
// smooths mean speed toward this tick's instantaneous average (§12
// supplemented feature), read-only diagnostics with no effect on
// kinematics or traffic-light phase selection (spec §4.4 keeps fixed-phase
// cycling).
func (m *Manager) updateLaneStats() {
	m.mu.Lock()
	names := make([]string, len(m.order))
	copy(names, m.order)
	m.mu.Unlock()

	counts := make(map[int32]int)
	speedSums := make(map[int32]float64)
	for _, name := range names {
		e := m.Get(name)
		if e == nil || e.Status.Frame != FrameLane {
			continue
		}
		id := e.Status.LanePos.LaneletID
		counts[id]++
		speedSums[id] += e.Status.SpeedMps
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[int32]struct{}, len(counts))
	for id, count := range counts {
		seen[id] = struct{}{}
		instant := speedSums[id] / float64(count)
		stat, ok := m.laneStats[id]
		if !ok {
			stat = &LaneStats{}
			m.laneStats[id] = stat
		}
		stat.VehicleCount = count
		stat.MeanSpeedMps += (instant - stat.MeanSpeedMps) * laneStatsSmoothing
	}
	for id, stat := range m.laneStats {
		if _, ok := seen[id]; ok {
			continue
		}
		stat.VehicleCount = 0
		stat.MeanSpeedMps += (0 - stat.MeanSpeedMps) * laneStatsSmoothing
	}
}

// LaneletStats returns a snapshot of every lanelet's current traffic
// statistics the manager has observed (§12 supplemented feature).
func (m *Manager) LaneletStats() map[int32]LaneStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int32]LaneStats, len(m.laneStats))
	for id, stat := range m.laneStats {
		out[id] = *stat
	}
	return out
}

func (m *Manager) drainDespawnQueue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.despawnQueue) == 0 {
		return
	}
	newOrder := m.order[:0:0]
	for _, name := range m.order {
		if _, queued := m.despawnQueue[name]; queued {
			delete(m.data, name)
			log.Infof("despawned entity %s", name)
			continue
		}
		newOrder = append(newOrder, name)
	}
	m.order = newOrder
	m.despawnQueue = make(map[string]struct{})
}

func (m *Manager) runTrafficSinks(n *lanelet.Network) {
	m.mu.Lock()
	sinks := make([]TrafficSink, len(m.sinks))
	copy(sinks, m.sinks)
	names := make([]string, len(m.order))
	copy(names, m.order)
	m.mu.Unlock()

	for _, name := range names {
		e := m.Get(name)
		if e == nil {
			continue
		}
		pose, ok := e.WorldPosition(n)
		if !ok {
			continue
		}
		for _, sink := range sinks {
			dx := pose.Position.X - sink.Center.X
			dy := pose.Position.Y - sink.Center.Y
			if dx*dx+dy*dy <= sink.Radius*sink.Radius {
				sink.Callback(name)
			}
		}
	}
}
