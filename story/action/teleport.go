package action

import "github.com/openscenario-sim/oscsim/lanelet"

// Teleport sets an entity's position immediately with no kinematics and
// establishes its coordinate frame (§4.6, GLOSSARY "Teleport"). Exactly
// one of Pose/Lane is set.
type Teleport struct {
	Entity string
	Pose   *lanelet.Pose
	Lane   *lanelet.LaneletPosition
}

func (a Teleport) Apply(ctx Context) (bool, error) {
	e, err := lookup(ctx, a.Entity)
	if err != nil {
		return false, err
	}
	switch {
	case a.Pose != nil:
		e.Teleport(*a.Pose)
	case a.Lane != nil:
		e.TeleportLane(*a.Lane)
	}
	return true, nil
}
