package action

// AssignRoute fixes the lanelet chain a follower controller must traverse
// (§4.6 "RoutingAction/AssignRouteAction", §3 Entity.RouteLaneletIDs).
type AssignRoute struct {
	Entity     string
	LaneletIDs []int32
}

func (a AssignRoute) Apply(ctx Context) (bool, error) {
	e, err := lookup(ctx, a.Entity)
	if err != nil {
		return false, err
	}
	e.Status.RouteLaneletIDs = a.LaneletIDs
	return true, nil
}
