package trafficlight

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "trafficlight")

// Manager owns every Light in the map, advancing them together each tick.
type Manager struct {
	lights map[string]*Light
}

// NewManager creates an empty traffic-light registry.
func NewManager() *Manager {
	return &Manager{lights: make(map[string]*Light)}
}

// Add registers a light, keyed by its ID.
func (m *Manager) Add(l *Light) {
	m.lights[l.ID] = l
}

// Get returns the light with the given id, or nil if absent.
func (m *Manager) Get(id string) *Light {
	return m.lights[id]
}

// IDs returns every registered light's id, for telemetry iteration.
func (m *Manager) IDs() []string {
	ids := make([]string, 0, len(m.lights))
	for id := range m.lights {
		ids = append(ids, id)
	}
	return ids
}

// ClearChanged clears every light's change-flags; called at tick start,
// before RPC overrides are applied (§4.4).
func (m *Manager) ClearChanged() {
	for _, l := range m.lights {
		l.ClearChanged()
	}
}

// UpdateFrame advances every light by dt (§4.7 step 3).
func (m *Manager) UpdateFrame(dt float64) {
	for _, l := range m.lights {
		l.Update(dt)
	}
}
