// Package lanelet implements the HD-map geometry and topology queries a
// scenario runs against: lanelet loading, centerline interpolation, route
// search, coordinate conversion, stop-line intersection and lane-change
// curve synthesis.
package lanelet

import "git.fiblab.net/general/common/v2/geometry"

// TurnDirection classifies a lanelet's turn relative to its junction, used
// to pick the "straight" successor/predecessor when one exists.
type TurnDirection int

const (
	TurnUnspecified TurnDirection = iota
	TurnStraight
	TurnLeft
	TurnRight
)

// RegulatoryElementType enumerates the regulatory elements lanelet2 attaches
// to a lanelet that the core reads.
type RegulatoryElementType int

const (
	RegulatoryUnspecified RegulatoryElementType = iota
	RegulatoryStopSign
	RegulatoryRightOfWay
	RegulatoryTrafficLight
)

// RegulatoryElement attaches a traffic-control meaning to a lanelet.
type RegulatoryElement struct {
	Type RegulatoryElementType
	// StopLine is the two-point line segment a stop_sign regulatory
	// element applies to, in map frame.
	StopLine []geometry.Point
	// RefID names the traffic light this element refers to, when
	// Type == RegulatoryTrafficLight.
	RefID string
}

// Connection is a graph edge to a neighboring lanelet.
type Connection struct {
	ID   int32
	Turn TurnDirection
}

// Lanelet is a directed, drivable road ribbon: a node of the lanelet graph.
type Lanelet struct {
	ID int32

	Turn      TurnDirection
	SpeedMax  float64 // m/s, the regulated speed of this lanelet
	LeftBound []geometry.Point
	RightBound []geometry.Point

	// Centerline is the resampled polyline this lanelet's geometry
	// queries interpolate over. Always has >= 2 points (§3 invariant).
	Centerline       []geometry.Point
	centerlineLength []float64        // accumulated Euclidean length per point
	spline           *natural2DSpline // built once at load time

	Following  []Connection
	Previous   []Connection
	Left       []Connection
	Right      []Connection
	Conflicting []Connection

	RegulatoryElements []RegulatoryElement
}

// Length is the arc length of the lanelet's centerline.
func (l *Lanelet) Length() float64 {
	if len(l.centerlineLength) == 0 {
		return 0
	}
	return l.centerlineLength[len(l.centerlineLength)-1]
}

// Pose is a world-frame position plus yaw, pitch and roll (radians).
type Pose struct {
	Position geometry.Point
	Roll     float64
	Pitch    float64
	Yaw      float64
}

// LaneletPosition is (lanelet_id, s, offset, rpy), §3.
type LaneletPosition struct {
	LaneletID int32
	S         float64
	Offset    float64
	Roll      float64
	Pitch     float64
	Yaw       float64
}
