// Package action implements the storyboard Actions that mutate entity
// state (§4.6): TeleportAction, SpeedAction, LaneChangeAction,
// AcquirePositionAction and RoutingAction/AssignRouteAction.
package action

import (
	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/lanelet"
)

// Context is the mutable view of simulation state an Action applies
// against. story.EvalContext implements it.
type Context interface {
	Entity(name string) (*entity.Entity, bool)
	Network() *lanelet.Network
}

// Action applies one tick's worth of work and reports whether it has run
// to completion (§4.6 "natural end").
type Action interface {
	Apply(ctx Context) (done bool, err error)
}

func lookup(ctx Context, name string) (*entity.Entity, error) {
	e, ok := ctx.Entity(name)
	if !ok {
		return nil, entityNotFound(name)
	}
	return e, nil
}
