package action

// AcquirePosition drives an entity toward a target lanelet position by
// assigning the route to it on first application, then tracking arrival
// (§4.6 "AcquirePositionAction").
type AcquirePosition struct {
	Entity        string
	TargetLanelet int32
	TargetS       float64

	routed bool
}

func (a *AcquirePosition) Apply(ctx Context) (bool, error) {
	e, err := lookup(ctx, a.Entity)
	if err != nil {
		return false, err
	}
	if !a.routed {
		route := ctx.Network().Route(e.Status.LanePos.LaneletID, a.TargetLanelet)
		if len(route) == 0 {
			return false, noRouteFound(a.Entity, a.TargetLanelet)
		}
		e.Status.RouteLaneletIDs = route
		a.routed = true
	}
	if e.Status.LanePos.LaneletID == a.TargetLanelet && e.Status.LanePos.S >= a.TargetS {
		return true, nil
	}
	return false, nil
}
