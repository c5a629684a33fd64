// Package entity implements per-entity kinematic state (C2) and the
// entity registry that owns it (C3): spawn/despawn, per-tick update and
// traffic-sink eviction.
package entity

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/lanelet"
)

// Kind is the entity category (§3).
type Kind int

const (
	KindUnspecified Kind = iota
	KindVehicle
	KindPedestrian
)

// CoordinateFrame tags which of Pose/LaneletPosition on Status is live.
type CoordinateFrame int

const (
	FrameUnset CoordinateFrame = iota
	FrameWorld
	FrameLane
)

// BoundingBox is an oriented 2D rectangle, centered on the entity origin.
type BoundingBox struct {
	Length float64
	Width  float64
}

// PerformanceLimits are the static kinematic limits of an entity (§3).
type PerformanceLimits struct {
	MaxSpeed float64
	MaxAccel float64
	MaxDecel float64
}

// TargetSpeed is the speed-planning directive an Action installs (§4.2).
type TargetSpeed struct {
	Value      float64
	Continuous bool
}

// LaneChangeState tracks an in-progress Hermite lane-change curve (§4.2
// step 4).
type LaneChangeState struct {
	Active        bool
	Curve         *lanelet.HermiteCurve
	Param         float64 // curve_parameter in [0, 1]
	ArcLength     float64
	TargetLanelet int32
	TargetS       float64
}

// AcquirePositionState tracks an in-progress AcquirePositionAction/
// requestAcquirePosition target: a route has been assigned and the entity
// is being watched for arrival at (TargetLanelet, TargetS, TargetOffset)
// (§4.6 "AcquirePositionAction", §6 "requestAcquirePosition").
type AcquirePositionState struct {
	Active        bool
	TargetLanelet int32
	TargetS       float64
	TargetOffset  float64
}

// Status is an entity's dynamic state (§3).
type Status struct {
	Frame CoordinateFrame

	WorldPose lanelet.Pose
	LanePos   lanelet.LaneletPosition

	SpeedMps float64
	AccelMps2 float64
	ActionStatus string

	LaneChange LaneChangeState

	// AcquireTarget is set by requestAcquirePosition (§6) so kinematic
	// integration can detect arrival and bring the entity to a stop at the
	// requested lane position, mirroring AcquirePositionAction's own
	// routed/arrival tracking.
	AcquireTarget AcquirePositionState

	StandStillDuration float64

	Target TargetSpeed
	// RouteLaneletIDs is the ordered lanelet chain a RoutingAction
	// assigned, consumed by lane-follow advance (§4.2 step 3, §12
	// supplement for AssignRouteAction).
	RouteLaneletIDs []int32
}

// SensorAttachment records an attachDetectionSensor/attachLidarSensor RPC
// request (§6) against this entity. The core does not simulate sensor
// returns; it is the external controller's declared intent to receive
// them over its own telemetry channel.
type SensorAttachment struct {
	Kind string         // "detection" or "lidar"
	Spec map[string]any // opaque sensor configuration, as submitted over RPC
}

// Entity is a simulated vehicle or pedestrian (§3).
type Entity struct {
	Name   string
	IsEgo  bool
	Kind   Kind
	Box    BoundingBox
	Limits PerformanceLimits

	Status  Status
	Sensors []SensorAttachment

	// positioned is false until the entity's first Teleport/spawn status
	// establishes a valid position (§4.2 error behavior).
	positioned bool
}

// HasPosition reports whether the entity has ever had a position set.
func (e *Entity) HasPosition() bool { return e.positioned }

// markPositioned is called by any write that establishes a valid pose.
func (e *Entity) markPositioned() { e.positioned = true }

// WorldPosition resolves the entity's current world pose regardless of
// which coordinate frame Status carries, using the lanelet network to
// convert a lane-frame position.
func (e *Entity) WorldPosition(n *lanelet.Network) (lanelet.Pose, bool) {
	if !e.positioned {
		return lanelet.Pose{}, false
	}
	if lc := e.Status.LaneChange; lc.Active && lc.Curve != nil {
		return lanelet.Pose{Position: lc.Curve.Eval(lc.Param), Yaw: lc.Curve.Yaw(lc.Param)}, true
	}
	switch e.Status.Frame {
	case FrameWorld:
		return e.Status.WorldPose, true
	case FrameLane:
		return n.ToMapPose(e.Status.LanePos)
	default:
		return lanelet.Pose{}, false
	}
}

// Teleport sets an entity's world pose immediately, with no kinematics
// (§6 GLOSSARY "Teleport"), establishing FrameWorld as the live frame.
func (e *Entity) Teleport(pose lanelet.Pose) {
	e.Status.Frame = FrameWorld
	e.Status.WorldPose = pose
	e.markPositioned()
}

// TeleportLane sets an entity's lanelet position immediately, establishing
// FrameLane as the live frame.
func (e *Entity) TeleportLane(pos lanelet.LaneletPosition) {
	e.Status.Frame = FrameLane
	e.Status.LanePos = pos
	e.markPositioned()
}

// RequireTeleported returns SemanticError "position not specified by
// Teleport Action" when the entity has never been positioned (§4.2, S6).
func (e *Entity) RequireTeleported() error {
	if !e.positioned {
		return errPositionNotSet(e.Name)
	}
	return nil
}

// nanPose is the sentinel returned for relative-pose queries on entities
// missing position data; callers MUST NOT replace it with a default
// (§4.2, §7).
func nanPose() lanelet.Pose {
	return lanelet.Pose{Position: geometry.Point{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}}
}
