package clock

import (
	"testing"

	"github.com/openscenario-sim/oscsim/internal/config"
	"github.com/stretchr/testify/require"
)

func TestClockStepIsMonotonic(t *testing.T) {
	c := New(config.ControlStep{StepTime: 0.05, RealtimeFactor: 1.0})
	require.Equal(t, 0.0, c.T)

	for i := 1; i <= 20; i++ {
		c.Step()
		require.InDelta(t, float64(i)*0.05, c.T, 1e-9)
	}
	require.Equal(t, int64(20), c.Tick)
}

func TestClockWallClockPeriod(t *testing.T) {
	c := New(config.ControlStep{StepTime: 0.1, RealtimeFactor: 2.0})
	require.InDelta(t, 0.05, c.WallClockPeriod(), 1e-9)

	c2 := New(config.ControlStep{StepTime: 0.1, RealtimeFactor: 0})
	require.Equal(t, 0.0, c2.WallClockPeriod())
}

func TestClockString(t *testing.T) {
	c := New(config.ControlStep{StepTime: 1, RealtimeFactor: 1})
	for i := 0; i < 3725; i++ {
		c.Step()
	}
	require.Equal(t, "01:02:05", c.String())
}
