package story

import (
	"fmt"
	"strconv"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/openscenario-sim/oscsim/story/action"
	"github.com/openscenario-sim/oscsim/story/condition"
	"github.com/openscenario-sim/oscsim/xmlnode"
)

// SyntaxError reports a malformed or unsupported scenario element (§7):
// the loader must reject these at load time, never silently skip them.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return e.Msg }

func errUnsupportedElement(name string) error {
	return &SyntaxError{Msg: fmt.Sprintf("unsupported element: %q", name)}
}

func errMissingAttribute(element, attr string) error {
	return &SyntaxError{Msg: fmt.Sprintf("%s: missing attribute %q", element, attr)}
}

// Load builds a Storyboard from the "Storyboard" element of a parsed
// OpenSCENARIO document (§4.6). Unsupported actions/conditions fail the
// whole load with a SyntaxError.
func Load(root xmlnode.Node) (*Storyboard, error) {
	sb := root.Child("Storyboard")
	if sb == nil {
		return nil, &SyntaxError{Msg: "missing Storyboard element"}
	}

	init, err := loadInit(sb.Child("Init"))
	if err != nil {
		return nil, err
	}

	var stories []*Story
	for _, sNode := range sb.Children("Story") {
		st, err := loadStory(sNode)
		if err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}

	var stop *Trigger
	if stopNode := sb.Child("StopTrigger"); stopNode != nil {
		t, err := loadTrigger(stopNode)
		if err != nil {
			return nil, err
		}
		stop = &t
	}

	return &Storyboard{Init: init, Stories: stories, StopTrigger: stop}, nil
}

func loadInit(node xmlnode.Node) ([]*ActionNode, error) {
	if node == nil {
		return nil, nil
	}
	var out []*ActionNode
	for _, group := range node.Children("InitActions") {
		for _, actNode := range group.Children("Private") {
			for _, pa := range actNode.Children("PrivateAction") {
				impl, err := loadActionImpl(pa)
				if err != nil {
					return nil, err
				}
				out = append(out, &ActionNode{Base: Base{Name: "", StartTrigger: AlwaysTrue}, Impl: impl})
			}
		}
	}
	return out, nil
}

func loadStory(node xmlnode.Node) (*Story, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, err
	}
	var acts []*Act
	for _, actNode := range node.Children("Act") {
		a, err := loadAct(actNode)
		if err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	trig, err := loadStartTrigger(node)
	if err != nil {
		return nil, err
	}
	return &Story{Base: Base{Name: name, StartTrigger: trig}, Acts: acts}, nil
}

func loadAct(node xmlnode.Node) (*Act, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, err
	}
	var groups []*ManeuverGroup
	for _, g := range node.Children("ManeuverGroup") {
		mg, err := loadManeuverGroup(g)
		if err != nil {
			return nil, err
		}
		groups = append(groups, mg)
	}
	trig, err := loadStartTrigger(node)
	if err != nil {
		return nil, err
	}
	return &Act{Base: Base{Name: name, StartTrigger: trig}, ManeuverGroups: groups}, nil
}

func loadManeuverGroup(node xmlnode.Node) (*ManeuverGroup, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, err
	}
	maxCount := 1
	if v, ok := node.Attribute("maximumExecutionCount"); ok {
		maxCount, err = strconv.Atoi(v)
		if err != nil {
			return nil, &SyntaxError{Msg: fmt.Sprintf("ManeuverGroup %q: bad maximumExecutionCount %q", name, v)}
		}
	}
	var maneuvers []*Maneuver
	for _, m := range node.Children("Maneuver") {
		mv, err := loadManeuver(m)
		if err != nil {
			return nil, err
		}
		maneuvers = append(maneuvers, mv)
	}
	trig, err := loadStartTrigger(node)
	if err != nil {
		return nil, err
	}
	return &ManeuverGroup{Base: Base{Name: name, StartTrigger: trig}, Maneuvers: maneuvers, MaximumExecutionCount: maxCount}, nil
}

func loadManeuver(node xmlnode.Node) (*Maneuver, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, err
	}
	var events []*Event
	for _, e := range node.Children("Event") {
		ev, err := loadEvent(e)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return &Maneuver{Base: Base{Name: name, StartTrigger: AlwaysTrue}, Events: events}, nil
}

func loadEvent(node xmlnode.Node) (*Event, error) {
	name, err := requireName(node)
	if err != nil {
		return nil, err
	}
	prio := PriorityParallel
	if v, ok := node.Attribute("priority"); ok {
		switch v {
		case "overwrite":
			prio = PriorityOverwrite
		case "skip":
			prio = PrioritySkip
		case "parallel":
			prio = PriorityParallel
		default:
			return nil, &SyntaxError{Msg: fmt.Sprintf("Event %q: unknown priority %q", name, v)}
		}
	}
	var actions []*ActionNode
	for _, actNode := range node.Children("Action") {
		for _, pa := range actNode.Children("PrivateAction") {
			impl, err := loadActionImpl(pa)
			if err != nil {
				return nil, err
			}
			actionName, _ := actNode.Attribute("name")
			actions = append(actions, &ActionNode{Base: Base{Name: actionName, StartTrigger: AlwaysTrue}, Impl: impl})
		}
	}
	trig, err := loadStartTrigger(node)
	if err != nil {
		return nil, err
	}
	return &Event{Base: Base{Name: name, StartTrigger: trig}, Priority: prio, Actions: actions}, nil
}

func requireName(node xmlnode.Node) (string, error) {
	name, ok := node.Attribute("name")
	if !ok {
		return "", errMissingAttribute(node.Name(), "name")
	}
	return name, nil
}

func loadStartTrigger(node xmlnode.Node) (Trigger, error) {
	start := node.Child("StartTrigger")
	if start == nil {
		return AlwaysTrue, nil
	}
	return loadTrigger(start)
}

// loadTrigger parses a Trigger/StartTrigger/StopTrigger element: OR across
// ConditionGroup children, AND within a ConditionGroup's Conditions (§4.6).
func loadTrigger(node xmlnode.Node) (Trigger, error) {
	var groups [][]condition.Condition
	for _, cg := range node.Children("ConditionGroup") {
		var conds []condition.Condition
		for _, c := range cg.Children("Condition") {
			cond, err := loadCondition(c)
			if err != nil {
				return Trigger{}, err
			}
			conds = append(conds, cond)
		}
		groups = append(groups, conds)
	}
	return Trigger{Groups: groups}, nil
}

func loadCondition(node xmlnode.Node) (condition.Condition, error) {
	rule, err := attrRule(node, "rule", condition.GreaterThan)
	if err != nil {
		return nil, err
	}

	if byEntity := node.Child("ByEntityCondition"); byEntity != nil {
		return loadByEntityCondition(byEntity, rule)
	}
	if byValue := node.Child("ByValueCondition"); byValue != nil {
		return loadByValueCondition(byValue, rule)
	}
	name, _ := node.Attribute("name")
	return nil, errUnsupportedElement("Condition " + name)
}

func loadByEntityCondition(node xmlnode.Node, rule condition.Rule) (condition.Condition, error) {
	triggerEntity, ok := node.Attribute("triggeringEntity")
	if !ok {
		return nil, errMissingAttribute("ByEntityCondition", "triggeringEntity")
	}

	if n := node.Child("ReachPositionCondition"); n != nil {
		target, err := attrPoint(n, "x", "y", "z")
		if err != nil {
			return nil, err
		}
		tol, err := attrFloat(n, "tolerance")
		if err != nil {
			return nil, err
		}
		return condition.ReachPosition{Entity: triggerEntity, Target: target, Tolerance: tol}, nil
	}
	if n := node.Child("DistanceCondition"); n != nil {
		target, err := attrPoint(n, "x", "y", "z")
		if err != nil {
			return nil, err
		}
		v, err := attrFloat(n, "value")
		if err != nil {
			return nil, err
		}
		return condition.Distance{Entity: triggerEntity, Target: target, Value: v, Rule: rule}, nil
	}
	if n := node.Child("RelativeDistanceCondition"); n != nil {
		ref, ok := n.Attribute("entityRef")
		if !ok {
			return nil, errMissingAttribute("RelativeDistanceCondition", "entityRef")
		}
		v, err := attrFloat(n, "value")
		if err != nil {
			return nil, err
		}
		return condition.RelativeDistance{Entity: triggerEntity, RefEntity: ref, Value: v, Rule: rule}, nil
	}
	if n := node.Child("TimeHeadwayCondition"); n != nil {
		ref, ok := n.Attribute("entityRef")
		if !ok {
			return nil, errMissingAttribute("TimeHeadwayCondition", "entityRef")
		}
		v, err := attrFloat(n, "value")
		if err != nil {
			return nil, err
		}
		return condition.TimeHeadway{Entity: triggerEntity, RefEntity: ref, Value: v, Rule: rule}, nil
	}
	if n := node.Child("StandStillCondition"); n != nil {
		d, err := attrFloat(n, "duration")
		if err != nil {
			return nil, err
		}
		return condition.StandStill{Entity: triggerEntity, Duration: d}, nil
	}
	if n := node.Child("AccelerationCondition"); n != nil {
		v, err := attrFloat(n, "value")
		if err != nil {
			return nil, err
		}
		return condition.Acceleration{Entity: triggerEntity, Value: v, Rule: rule}, nil
	}
	if n := node.Child("SpeedCondition"); n != nil {
		v, err := attrFloat(n, "value")
		if err != nil {
			return nil, err
		}
		return condition.Speed{Entity: triggerEntity, Value: v, Rule: rule}, nil
	}
	if n := node.Child("CollisionCondition"); n != nil {
		ref, ok := n.Attribute("entityRef")
		if !ok {
			return nil, errMissingAttribute("CollisionCondition", "entityRef")
		}
		return condition.Collision{Entity: triggerEntity, RefEntity: ref}, nil
	}
	if n := node.Child("TraveledDistanceCondition"); n != nil {
		return nil, errUnsupportedElement("TraveledDistanceCondition")
	}
	return nil, errUnsupportedElement("ByEntityCondition")
}

func loadByValueCondition(node xmlnode.Node, rule condition.Rule) (condition.Condition, error) {
	if n := node.Child("SimulationTimeCondition"); n != nil {
		v, err := attrFloat(n, "value")
		if err != nil {
			return nil, err
		}
		return condition.SimulationTime{Value: v, Rule: rule}, nil
	}
	if n := node.Child("ParameterCondition"); n != nil {
		name, ok := n.Attribute("parameterRef")
		if !ok {
			return nil, errMissingAttribute("ParameterCondition", "parameterRef")
		}
		v, err := attrFloat(n, "value")
		if err != nil {
			return nil, err
		}
		return condition.Parameter{Name: name, Value: v, Rule: rule}, nil
	}
	if n := node.Child("StoryboardElementStateCondition"); n != nil {
		ref, ok := n.Attribute("storyboardElementRef")
		if !ok {
			return nil, errMissingAttribute("StoryboardElementStateCondition", "storyboardElementRef")
		}
		stateStr, ok := n.Attribute("state")
		if !ok {
			return nil, errMissingAttribute("StoryboardElementStateCondition", "state")
		}
		state, err := parseElementState(stateStr)
		if err != nil {
			return nil, err
		}
		return condition.StoryboardElementState{Element: ref, State: state}, nil
	}
	if n := node.Child("TraversedCondition"); n != nil {
		ref, ok := n.Attribute("storyboardElementRef")
		if !ok {
			return nil, errMissingAttribute("TraversedCondition", "storyboardElementRef")
		}
		return condition.Traversed{Element: ref}, nil
	}
	return nil, errUnsupportedElement("ByValueCondition")
}

func parseElementState(s string) (condition.ElementState, error) {
	switch s {
	case "standbyState":
		return condition.ElementStandby, nil
	case "startTransition":
		return condition.ElementStartTransition, nil
	case "runningState":
		return condition.ElementRunning, nil
	case "endTransition":
		return condition.ElementEndTransition, nil
	case "stopTransition":
		return condition.ElementStopTransition, nil
	case "completeState":
		return condition.ElementComplete, nil
	default:
		return 0, &SyntaxError{Msg: fmt.Sprintf("unknown storyboard element state %q", s)}
	}
}

// loadActionImpl dispatches the single supported-action child of a
// PrivateAction element (§4.6 "Actions (subset implemented in core)").
// Any other action type is rejected at load time.
func loadActionImpl(node xmlnode.Node) (action.Action, error) {
	entityName, _ := node.Attribute("entityRef")

	if n := node.Child("TeleportAction"); n != nil {
		if pos := n.Child("Position"); pos != nil {
			if lanePos := pos.Child("LanePosition"); lanePos != nil {
				lp, err := parseLanePosition(lanePos)
				if err != nil {
					return nil, err
				}
				return action.Teleport{Entity: entityName, Lane: &lp}, nil
			}
			if worldPos := pos.Child("WorldPosition"); worldPos != nil {
				p, err := parseWorldPosition(worldPos)
				if err != nil {
					return nil, err
				}
				return action.Teleport{Entity: entityName, Pose: &p}, nil
			}
		}
		return nil, &SyntaxError{Msg: "TeleportAction: missing Position"}
	}
	if n := node.Child("LongitudinalAction"); n != nil {
		if sa := n.Child("SpeedAction"); sa != nil {
			return loadSpeedAction(entityName, sa)
		}
		return nil, errUnsupportedElement("LongitudinalAction (only SpeedAction supported)")
	}
	if n := node.Child("LateralAction"); n != nil {
		if lc := n.Child("LaneChangeAction"); lc != nil {
			target, err := attrInt32(lc, "toLaneletId")
			if err != nil {
				return nil, err
			}
			return &action.LaneChange{Entity: entityName, TargetLanelet: target}, nil
		}
		return nil, errUnsupportedElement("LateralAction (only LaneChangeAction supported)")
	}
	if n := node.Child("RoutingAction"); n != nil {
		if ar := n.Child("AssignRouteAction"); ar != nil {
			var ids []int32
			for _, w := range ar.Children("Waypoint") {
				id, err := attrInt32(w, "laneletId")
				if err != nil {
					return nil, err
				}
				ids = append(ids, id)
			}
			return action.AssignRoute{Entity: entityName, LaneletIDs: ids}, nil
		}
		if ap := n.Child("AcquirePositionAction"); ap != nil {
			pos := ap.Child("Position")
			var lanePos xmlnode.Node
			if pos != nil {
				lanePos = pos.Child("LanePosition")
			}
			if lanePos == nil {
				return nil, &SyntaxError{Msg: "AcquirePositionAction: only LanePosition targets supported"}
			}
			lp, err := parseLanePosition(lanePos)
			if err != nil {
				return nil, err
			}
			return &action.AcquirePosition{Entity: entityName, TargetLanelet: lp.LaneletID, TargetS: lp.S}, nil
		}
		return nil, errUnsupportedElement("RoutingAction (only AssignRouteAction/AcquirePositionAction supported)")
	}
	return nil, errUnsupportedElement(node.Name())
}

func loadSpeedAction(entityName string, node xmlnode.Node) (action.Action, error) {
	dyn := node.Child("SpeedActionDynamics")
	shape := action.ShapeStep
	if dyn != nil {
		if v, ok := dyn.Attribute("dynamicsShape"); ok {
			var err error
			shape, err = parseShape(v)
			if err != nil {
				return nil, err
			}
		}
	}
	target := node.Child("SpeedActionTarget")
	if target == nil {
		return nil, &SyntaxError{Msg: "SpeedAction: missing SpeedActionTarget"}
	}
	if abs := target.Child("AbsoluteTargetSpeed"); abs != nil {
		v, err := attrFloat(abs, "value")
		if err != nil {
			return nil, err
		}
		return action.Speed{Entity: entityName, Shape: shape, TargetKind: action.TargetAbsolute, Value: v}, nil
	}
	if rel := target.Child("RelativeTargetSpeed"); rel != nil {
		ref, ok := rel.Attribute("entityRef")
		if !ok {
			return nil, errMissingAttribute("RelativeTargetSpeed", "entityRef")
		}
		v, err := attrFloat(rel, "value")
		if err != nil {
			return nil, err
		}
		return action.Speed{Entity: entityName, Shape: shape, TargetKind: action.TargetRelativeToEntity, Value: v, RefEntity: ref}, nil
	}
	return nil, &SyntaxError{Msg: "SpeedActionTarget: missing Absolute/RelativeTargetSpeed"}
}

func parseShape(s string) (action.SpeedActionDynamicsShape, error) {
	switch s {
	case "step":
		return action.ShapeStep, nil
	case "linear":
		return action.ShapeLinear, nil
	case "sinusoidal":
		return action.ShapeSinusoidal, nil
	case "cubic":
		return action.ShapeCubic, nil
	default:
		return 0, &SyntaxError{Msg: fmt.Sprintf("unknown dynamicsShape %q", s)}
	}
}

func parseLanePosition(n xmlnode.Node) (lanelet.LaneletPosition, error) {
	id, err := attrInt32(n, "laneId")
	if err != nil {
		return lanelet.LaneletPosition{}, err
	}
	s, err := attrFloat(n, "s")
	if err != nil {
		return lanelet.LaneletPosition{}, err
	}
	offset := 0.0
	if v, ok := n.Attribute("offset"); ok {
		offset, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return lanelet.LaneletPosition{}, &SyntaxError{Msg: "LanePosition: bad offset"}
		}
	}
	return lanelet.LaneletPosition{LaneletID: id, S: s, Offset: offset}, nil
}

func parseWorldPosition(n xmlnode.Node) (lanelet.Pose, error) {
	x, err := attrFloat(n, "x")
	if err != nil {
		return lanelet.Pose{}, err
	}
	y, err := attrFloat(n, "y")
	if err != nil {
		return lanelet.Pose{}, err
	}
	z := 0.0
	if v, ok := n.Attribute("z"); ok {
		z, _ = strconv.ParseFloat(v, 64)
	}
	h := 0.0
	if v, ok := n.Attribute("h"); ok {
		h, _ = strconv.ParseFloat(v, 64)
	}
	return lanelet.Pose{Position: geometry.Point{X: x, Y: y, Z: z}, Yaw: h}, nil
}

func attrFloat(n xmlnode.Node, attr string) (float64, error) {
	v, ok := n.Attribute(attr)
	if !ok {
		return 0, errMissingAttribute(n.Name(), attr)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &SyntaxError{Msg: fmt.Sprintf("%s: bad %s %q", n.Name(), attr, v)}
	}
	return f, nil
}

func attrInt32(n xmlnode.Node, attr string) (int32, error) {
	v, ok := n.Attribute(attr)
	if !ok {
		return 0, errMissingAttribute(n.Name(), attr)
	}
	i, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, &SyntaxError{Msg: fmt.Sprintf("%s: bad %s %q", n.Name(), attr, v)}
	}
	return int32(i), nil
}

func attrPoint(n xmlnode.Node, xAttr, yAttr, zAttr string) (geometry.Point, error) {
	x, err := attrFloat(n, xAttr)
	if err != nil {
		return geometry.Point{}, err
	}
	y, err := attrFloat(n, yAttr)
	if err != nil {
		return geometry.Point{}, err
	}
	z := 0.0
	if v, ok := n.Attribute(zAttr); ok {
		z, _ = strconv.ParseFloat(v, 64)
	}
	return geometry.Point{X: x, Y: y, Z: z}, nil
}

func attrRule(n xmlnode.Node, attr string, def condition.Rule) (condition.Rule, error) {
	v, ok := n.Attribute(attr)
	if !ok {
		return def, nil
	}
	switch v {
	case "lessThan":
		return condition.LessThan, nil
	case "greaterThan":
		return condition.GreaterThan, nil
	case "equalTo":
		return condition.EqualTo, nil
	default:
		return 0, &SyntaxError{Msg: fmt.Sprintf("%s: unknown rule %q", n.Name(), v)}
	}
}
