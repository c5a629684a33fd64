package lanelet

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/require"
)

// fakeProvider implements Provider with a hand-built two-lanelet straight
// road, grounding scenario S2 of the testable-properties section.
type fakeProvider struct {
	lanelets []RawLanelet
}

func (f *fakeProvider) Lanelets() ([]RawLanelet, error) { return f.lanelets, nil }

func straightCenterline(startX float64, length float64) []geometry.Point {
	return []geometry.Point{
		{X: startX, Y: 0},
		{X: startX + length, Y: 0},
	}
}

func twoLaneletNetwork(t *testing.T) *Network {
	t.Helper()
	p := &fakeProvider{lanelets: []RawLanelet{
		{
			ID:           100,
			Centerline:   straightCenterline(0, 40),
			LeftBound:    []geometry.Point{{X: 0, Y: 1.5}, {X: 40, Y: 1.5}},
			RightBound:   []geometry.Point{{X: 0, Y: -1.5}, {X: 40, Y: -1.5}},
			FollowingIDs: []Connection{{ID: 200, Turn: TurnStraight}},
		},
		{
			ID:          200,
			Centerline:  straightCenterline(40, 40),
			LeftBound:   []geometry.Point{{X: 40, Y: 1.5}, {X: 80, Y: 1.5}},
			RightBound:  []geometry.Point{{X: 40, Y: -1.5}, {X: 80, Y: -1.5}},
			PreviousIDs: []Connection{{ID: 100, Turn: TurnStraight}},
		},
	}}
	n, err := Load(p)
	require.NoError(t, err)
	return n
}

func TestRouteSumIdentity(t *testing.T) {
	n := twoLaneletNetwork(t)

	route := n.Route(100, 200)
	require.Equal(t, []int32{100, 200}, route)

	sum := 0.0
	for _, id := range route {
		sum += n.Get(id).Length()
	}

	dist, ok := n.LongitudinalDistance(
		LaneletPosition{LaneletID: 100, S: 0},
		LaneletPosition{LaneletID: 200, S: n.Get(200).Length()},
	)
	require.True(t, ok)
	require.InDelta(t, sum, dist, 1e-6)
}

func TestLongitudinalDistanceScenarioS2(t *testing.T) {
	n := twoLaneletNetwork(t)
	dist, ok := n.LongitudinalDistance(
		LaneletPosition{LaneletID: 100, S: 35},
		LaneletPosition{LaneletID: 200, S: 10},
	)
	require.True(t, ok)
	require.InDelta(t, 15.0, dist, 1e-6)
}

func TestLongitudinalDistanceUnreachable(t *testing.T) {
	n := twoLaneletNetwork(t)
	_, ok := n.LongitudinalDistance(
		LaneletPosition{LaneletID: 200, S: 0},
		LaneletPosition{LaneletID: 100, S: 10},
	)
	require.False(t, ok)
}

func TestLongitudinalDistanceSameLaneletBackwards(t *testing.T) {
	n := twoLaneletNetwork(t)
	_, ok := n.LongitudinalDistance(
		LaneletPosition{LaneletID: 100, S: 30},
		LaneletPosition{LaneletID: 100, S: 10},
	)
	require.False(t, ok)
}

func TestLaneChangeCurvatureBound(t *testing.T) {
	n := twoLaneletNetwork(t)
	from := Pose{Position: geometry.Point{X: 0, Y: -1.5}, Yaw: 0}
	curve, s, ok := n.LaneChangeTrajectory(from, 100)
	require.True(t, ok)
	require.Less(t, curve.MaxCurvature(), maxCurvatureBound)
	require.GreaterOrEqual(t, s, 0.0)
}

func TestToMapPoseAppliesLateralOffset(t *testing.T) {
	n := twoLaneletNetwork(t)
	pose, ok := n.ToMapPose(LaneletPosition{LaneletID: 100, S: 20, Offset: 1.0})
	require.True(t, ok)
	// straight centerline along +X: left normal is +Y, so offset moves +Y.
	require.InDelta(t, 20.0, pose.Position.X, 1e-6)
	require.InDelta(t, 1.0, pose.Position.Y, 1e-6)
}

func TestTangentVectorIsUnit(t *testing.T) {
	n := twoLaneletNetwork(t)
	tv, ok := n.TangentVector(100, 10)
	require.True(t, ok)
	mag := math.Hypot(tv.X, tv.Y)
	require.InDelta(t, 1.0, mag, 1e-6)
}

func TestSynthesizeCenterlineWhenAbsent(t *testing.T) {
	p := &fakeProvider{lanelets: []RawLanelet{
		{
			ID:         300,
			LeftBound:  []geometry.Point{{X: 0, Y: 1.5}, {X: 10, Y: 1.5}},
			RightBound: []geometry.Point{{X: 0, Y: -1.5}, {X: 10, Y: -1.5}},
		},
	}}
	n, err := Load(p)
	require.NoError(t, err)
	l := n.Get(300)
	require.GreaterOrEqual(t, len(l.Centerline), 2)
	require.InDelta(t, 10.0, l.Length(), 1e-6)
}

func TestIsInLanelet(t *testing.T) {
	n := twoLaneletNetwork(t)
	require.True(t, n.IsInLanelet(100, 0))
	require.True(t, n.IsInLanelet(100, 40))
	require.False(t, n.IsInLanelet(100, -1))
	require.False(t, n.IsInLanelet(100, 41))
}
