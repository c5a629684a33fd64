package lanelet

import "git.fiblab.net/general/common/v2/geometry"

// RawLanelet is the lanelet data an external map provider yields for one
// lanelet, before the network resolves graph edges and resamples
// centerlines. Mirrors the OSM/lanelet2 fields named in §6.
type RawLanelet struct {
	ID         int32
	Turn       TurnDirection
	SpeedMax   float64
	LeftBound  []geometry.Point
	RightBound []geometry.Point
	// Centerline is optional; when empty the network synthesizes one by
	// resampling the bounds (§4.1 resampling policy).
	Centerline []geometry.Point

	FollowingIDs  []Connection
	PreviousIDs   []Connection
	LeftIDs       []Connection
	RightIDs      []Connection
	ConflictingIDs []Connection

	RegulatoryElements []RegulatoryElement
}

// Provider is the injected collaborator that loads a lanelet2-extended OSM
// map. The core never parses OSM itself (§6); it only consumes the decoded
// lanelets this interface returns.
type Provider interface {
	Lanelets() ([]RawLanelet, error)
}
