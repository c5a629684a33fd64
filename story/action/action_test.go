package action

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct{ raw []lanelet.RawLanelet }

func (p fakeProvider) Lanelets() ([]lanelet.RawLanelet, error) { return p.raw, nil }

func straightCenterline(x0 float64, length float64) []geometry.Point {
	return []geometry.Point{{X: x0, Y: 0}, {X: x0 + length, Y: 0}}
}

func testContext(t *testing.T) (*entity.Manager, *lanelet.Network) {
	t.Helper()
	net, err := lanelet.Load(fakeProvider{raw: []lanelet.RawLanelet{
		{
			ID:         100,
			Centerline: straightCenterline(0, 50),
			LeftBound:  []geometry.Point{{X: 0, Y: 1.5}, {X: 50, Y: 1.5}},
			RightBound: []geometry.Point{{X: 0, Y: -1.5}, {X: 50, Y: -1.5}},
		},
	}})
	require.NoError(t, err)
	mgr := entity.NewManager()
	return mgr, net
}

type ctx struct {
	mgr *entity.Manager
	net *lanelet.Network
}

func (c ctx) Entity(name string) (*entity.Entity, bool) {
	e := c.mgr.Get(name)
	return e, e != nil
}
func (c ctx) Network() *lanelet.Network { return c.net }

func TestTeleportSetsWorldFrame(t *testing.T) {
	mgr, net := testContext(t)
	_, err := mgr.Spawn(false, "car1", entity.KindVehicle, entity.BoundingBox{Length: 4, Width: 2}, entity.PerformanceLimits{MaxSpeed: 20, MaxAccel: 3, MaxDecel: 5})
	require.NoError(t, err)
	c := ctx{mgr, net}

	a := Teleport{Entity: "car1", Pose: &lanelet.Pose{Position: geometry.Point{X: 5, Y: 5}}}
	done, err := a.Apply(c)
	require.NoError(t, err)
	require.True(t, done)

	e := mgr.Get("car1")
	require.True(t, e.HasPosition())
	pose, ok := e.WorldPosition(net)
	require.True(t, ok)
	require.Equal(t, 5.0, pose.Position.X)
}

func TestSpeedStepSnapsImmediately(t *testing.T) {
	mgr, net := testContext(t)
	_, err := mgr.Spawn(false, "car1", entity.KindVehicle, entity.BoundingBox{Length: 4, Width: 2}, entity.PerformanceLimits{MaxSpeed: 20, MaxAccel: 3, MaxDecel: 5})
	require.NoError(t, err)
	c := ctx{mgr, net}

	a := Speed{Entity: "car1", Shape: ShapeStep, TargetKind: TargetAbsolute, Value: 15}
	done, err := a.Apply(c)
	require.NoError(t, err)
	require.True(t, done)

	e := mgr.Get("car1")
	require.Equal(t, 15.0, e.Status.SpeedMps)
	require.False(t, e.Status.Target.Continuous)
}

func TestSpeedLinearInstallsContinuousTarget(t *testing.T) {
	mgr, net := testContext(t)
	_, err := mgr.Spawn(false, "car1", entity.KindVehicle, entity.BoundingBox{Length: 4, Width: 2}, entity.PerformanceLimits{MaxSpeed: 20, MaxAccel: 3, MaxDecel: 5})
	require.NoError(t, err)
	c := ctx{mgr, net}

	a := Speed{Entity: "car1", Shape: ShapeLinear, TargetKind: TargetAbsolute, Value: 10}
	_, err2 := a.Apply(c)
	require.NoError(t, err2)

	e := mgr.Get("car1")
	require.True(t, e.Status.Target.Continuous)
	require.Equal(t, 10.0, e.Status.Target.Value)
}

func TestAssignRouteSetsChain(t *testing.T) {
	mgr, net := testContext(t)
	_, err := mgr.Spawn(false, "car1", entity.KindVehicle, entity.BoundingBox{Length: 4, Width: 2}, entity.PerformanceLimits{MaxSpeed: 20, MaxAccel: 3, MaxDecel: 5})
	require.NoError(t, err)
	c := ctx{mgr, net}

	a := AssignRoute{Entity: "car1", LaneletIDs: []int32{100}}
	done, err := a.Apply(c)
	require.NoError(t, err)
	require.True(t, done)

	e := mgr.Get("car1")
	require.Equal(t, []int32{100}, e.Status.RouteLaneletIDs)
}

func TestTeleportUnknownEntityFails(t *testing.T) {
	mgr, net := testContext(t)
	c := ctx{mgr, net}
	_, err := (Teleport{Entity: "ghost"}).Apply(c)
	require.Error(t, err)
}
