package story

import (
	"testing"

	"github.com/openscenario-sim/oscsim/xmlnode"
	"github.com/stretchr/testify/require"
)

// fakeNode is a minimal in-memory xmlnode.Node for load tests.
type fakeNode struct {
	name     string
	attrs    map[string]string
	children map[string][]*fakeNode
}

func newNode(name string, attrs map[string]string, children ...*fakeNode) *fakeNode {
	n := &fakeNode{name: name, attrs: attrs, children: make(map[string][]*fakeNode)}
	for _, c := range children {
		n.children[c.name] = append(n.children[c.name], c)
	}
	return n
}

func (n *fakeNode) Name() string { return n.name }

func (n *fakeNode) Child(name string) xmlnode.Node {
	cs := n.children[name]
	if len(cs) == 0 {
		return nil
	}
	return cs[0]
}

func (n *fakeNode) Children(name string) []xmlnode.Node {
	cs := n.children[name]
	out := make([]xmlnode.Node, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func (n *fakeNode) Attribute(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func attrs(kv ...string) map[string]string {
	m := make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func teleportPrivateAction(entity string, laneID, s string) *fakeNode {
	return newNode("PrivateAction", attrs("entityRef", entity),
		newNode("TeleportAction", nil,
			newNode("Position", nil,
				newNode("LanePosition", attrs("laneId", laneID, "s", s)))))
}

func TestLoadParsesSpeedActionEvent(t *testing.T) {
	action := newNode("Action", attrs("name", "a1"),
		newNode("PrivateAction", attrs("entityRef", "ego"),
			newNode("LongitudinalAction", nil,
				newNode("SpeedAction", nil,
					newNode("SpeedActionDynamics", attrs("dynamicsShape", "linear")),
					newNode("SpeedActionTarget", nil,
						newNode("AbsoluteTargetSpeed", attrs("value", "10")))))))
	ev := newNode("Event", attrs("name", "ev1"), action)

	loaded, err := loadEvent(ev)
	require.NoError(t, err)
	require.Equal(t, "ev1", loaded.Name)
	require.Len(t, loaded.Actions, 1)
}

func TestLoadRejectsUnsupportedAction(t *testing.T) {
	pa := newNode("PrivateAction", attrs("entityRef", "ego"),
		newNode("VisibilityAction", attrs("graphics", "true")))
	_, err := loadActionImpl(pa)
	require.Error(t, err)
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
}

func TestLoadTeleportLaneAction(t *testing.T) {
	impl, err := loadActionImpl(teleportPrivateAction("ego", "100", "5"))
	require.NoError(t, err)
	require.NotNil(t, impl)
}

func TestLoadRejectsMissingName(t *testing.T) {
	ev := newNode("Event", attrs())
	_, err := loadEvent(ev)
	require.Error(t, err)
}

func TestLoadSimulationTimeStopTrigger(t *testing.T) {
	storyboard := newNode("Storyboard", nil,
		newNode("Init", nil),
		newNode("StopTrigger", nil,
			newNode("ConditionGroup", nil,
				newNode("Condition", attrs("rule", "greaterThan"),
					newNode("ByValueCondition", nil,
						newNode("SimulationTimeCondition", attrs("value", "10")))))))
	root := newNode("OpenSCENARIO", nil, storyboard)

	sb, err := Load(root)
	require.NoError(t, err)
	require.NotNil(t, sb.StopTrigger)
}
