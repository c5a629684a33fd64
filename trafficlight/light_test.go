package trafficlight

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestColorCycleScenarioS4 grounds scenario S4: green(30)->yellow(3)->red(27),
// step_time 0.1; after 30.0s of ticks, color == yellow and changed == true
// for that tick only.
func TestColorCycleScenarioS4(t *testing.T) {
	l := New("tl0",
		[]PhaseStep{
			{State: "green", Duration: 30},
			{State: "yellow", Duration: 3},
			{State: "red", Duration: 27},
		},
		nil,
	)

	const dt = 0.1
	ticks := int(30.0 / dt)
	var changedAtTransition bool
	for i := 0; i < ticks; i++ {
		l.ClearChanged()
		l.Update(dt)
		if i == ticks-1 {
			changedAtTransition = l.Color.Changed
		} else if l.Color.Changed {
			t.Fatalf("unexpected color change at tick %d", i)
		}
	}
	require.Equal(t, PhaseState("yellow"), l.Color.State())
	require.True(t, changedAtTransition)

	l.ClearChanged()
	l.Update(dt)
	require.False(t, l.Color.Changed)
}

func TestSetColorOverrideSurvivesUpdate(t *testing.T) {
	l := New("tl1", []PhaseStep{{State: "green", Duration: 30}, {State: "red", Duration: 30}}, nil)
	l.ClearChanged() // simulate tick-start clear, before the RPC override below
	l.SetColor("red")
	require.True(t, l.Color.Changed)
	l.Update(0.1) // C4 advance later in the same tick must not clear it
	require.True(t, l.Color.Changed)
	require.Equal(t, PhaseState("red"), l.Color.State())
}

func TestColorAndArrowAreIndependent(t *testing.T) {
	l := New("tl2",
		[]PhaseStep{{State: "green", Duration: 10}},
		[]PhaseStep{{State: "off", Duration: 5}, {State: "left", Duration: 5}},
	)
	l.ClearChanged()
	l.Update(6)
	require.Equal(t, PhaseState("green"), l.Color.State())
	require.False(t, l.Color.Changed)
	require.Equal(t, PhaseState("left"), l.Arrow.State())
	require.True(t, l.Arrow.Changed)
}
