package entity

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{ lanelets []lanelet.RawLanelet }

func (f *fakeProvider) Lanelets() ([]lanelet.RawLanelet, error) { return f.lanelets, nil }

func testNetwork(t *testing.T) *lanelet.Network {
	t.Helper()
	p := &fakeProvider{lanelets: []lanelet.RawLanelet{
		{
			ID:         100,
			Centerline: []geometry.Point{{X: 0, Y: 0}, {X: 50, Y: 0}},
			LeftBound:  []geometry.Point{{X: 0, Y: 1.5}, {X: 50, Y: 1.5}},
			RightBound: []geometry.Point{{X: 0, Y: -1.5}, {X: 50, Y: -1.5}},
		},
	}}
	n, err := lanelet.Load(p)
	require.NoError(t, err)
	return n
}

// TestSpeedTargetConvergesScenarioS1 grounds end-to-end scenario S1: ego
// spawned at rest on lanelet 100, target speed 10 continuous, after 4s of
// 0.05s ticks |v-10| < 0.01 and s ~= 24.5m.
func TestSpeedTargetConvergesScenarioS1(t *testing.T) {
	n := testNetwork(t)
	m := NewManager()
	e, err := m.Spawn(true, "ego", KindVehicle, BoundingBox{Length: 4, Width: 2},
		PerformanceLimits{MaxSpeed: 20, MaxAccel: 3, MaxDecel: 5})
	require.NoError(t, err)
	e.TeleportLane(lanelet.LaneletPosition{LaneletID: 100, S: 0})
	e.Status.Target = TargetSpeed{Value: 10, Continuous: true}

	dt := 0.05
	for i := 0; i < 80; i++ {
		e.Update(n, dt)
	}
	require.InDelta(t, 10.0, e.Status.SpeedMps, 0.01)
	require.InDelta(t, 24.5, e.Status.LanePos.S, 2.0)
}

func TestStandStillTimerResetsOnMotion(t *testing.T) {
	n := testNetwork(t)
	e := &Entity{Limits: PerformanceLimits{MaxSpeed: 10, MaxAccel: 3, MaxDecel: 5}}
	e.TeleportLane(lanelet.LaneletPosition{LaneletID: 100, S: 0})

	e.Update(n, 1.0)
	require.Greater(t, e.Status.StandStillDuration, 0.0)

	e.Status.Target = TargetSpeed{Value: 5, Continuous: true}
	e.Update(n, 1.0)
	require.Equal(t, 0.0, e.Status.StandStillDuration)
}

func TestDespawnDeferredToNextTick(t *testing.T) {
	n := testNetwork(t)
	m := NewManager()
	_, err := m.Spawn(false, "npc", KindVehicle, BoundingBox{Length: 4, Width: 2}, PerformanceLimits{MaxSpeed: 10, MaxAccel: 1, MaxDecel: 1})
	require.NoError(t, err)

	m.Despawn("npc")
	// still observable for the tick the despawn was requested in.
	require.NotNil(t, m.Get("npc"))

	m.UpdateFrame(n, 0.1)
	require.Nil(t, m.Get("npc"))
}

func TestSpawnDuplicateNameFails(t *testing.T) {
	m := NewManager()
	_, err := m.Spawn(false, "dup", KindVehicle, BoundingBox{}, PerformanceLimits{})
	require.NoError(t, err)
	_, err = m.Spawn(false, "dup", KindVehicle, BoundingBox{}, PerformanceLimits{})
	require.Error(t, err)
}

func TestRequireTeleportedFailsBeforePosition(t *testing.T) {
	e := &Entity{Name: "ghost"}
	err := e.RequireTeleported()
	require.Error(t, err)
	require.Contains(t, err.Error(), "position not specified by Teleport Action")
}

func TestRelativePoseReturnsNaNWhenUnpositioned(t *testing.T) {
	n := testNetwork(t)
	a := &Entity{Name: "a"}
	a.TeleportLane(lanelet.LaneletPosition{LaneletID: 100, S: 10})
	b := &Entity{Name: "b"} // never positioned

	rel := RelativePose(n, a, b)
	require.True(t, rel.Position.X != rel.Position.X) // NaN != NaN
}

func TestTrafficSinkDespawnsOnEntry(t *testing.T) {
	n := testNetwork(t)
	m := NewManager()
	e, err := m.Spawn(false, "wanderer", KindVehicle, BoundingBox{Length: 4, Width: 2}, PerformanceLimits{MaxSpeed: 10, MaxAccel: 1, MaxDecel: 1})
	require.NoError(t, err)
	e.TeleportLane(lanelet.LaneletPosition{LaneletID: 100, S: 10})

	m.AddTrafficSink(TrafficSink{
		Center: geometry.Point{X: 10, Y: 0},
		Radius: 1,
		Callback: func(name string) { m.Despawn(name) },
	})

	m.UpdateFrame(n, 0.1)
	require.NotNil(t, m.Get("wanderer")) // deferred to next tick

	m.UpdateFrame(n, 0.1)
	require.Nil(t, m.Get("wanderer"))
}

func TestLaneletStatsCountsAndSmoothsSpeed(t *testing.T) {
	n := testNetwork(t)
	m := NewManager()
	a, err := m.Spawn(true, "a", KindVehicle, BoundingBox{Length: 4, Width: 2}, PerformanceLimits{MaxSpeed: 20, MaxAccel: 3, MaxDecel: 5})
	require.NoError(t, err)
	a.TeleportLane(lanelet.LaneletPosition{LaneletID: 100, S: 0})
	a.Status.SpeedMps = 10

	b, err := m.Spawn(false, "b", KindVehicle, BoundingBox{Length: 4, Width: 2}, PerformanceLimits{MaxSpeed: 20, MaxAccel: 3, MaxDecel: 5})
	require.NoError(t, err)
	b.TeleportLane(lanelet.LaneletPosition{LaneletID: 100, S: 5})
	b.Status.SpeedMps = 10

	m.UpdateFrame(n, 0.0)
	stats := m.LaneletStats()
	require.Equal(t, 2, stats[100].VehicleCount)
	require.InDelta(t, 3.0, stats[100].MeanSpeedMps, 1e-9) // first tick: smoothed toward 10 by factor 0.3

	m.Despawn("a")
	m.Despawn("b")
	m.UpdateFrame(n, 0.0)
	require.Equal(t, 0, m.LaneletStats()[100].VehicleCount)
}
