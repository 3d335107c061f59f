package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorlab/internal/config"
	"motorlab/internal/metrics"
	"motorlab/internal/sim"
)

// tunedConfig is the benchmark setup: a PI loop stiff enough to settle the
// default motor inside the horizon.
func tunedConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Gains = config.GainsConfig{Kp: 60, Ki: 120, Kd: 0}
	return cfg
}

func fuzzyConfig() *config.Config {
	cfg := tunedConfig()
	cfg.Controller = "fuzzy"
	cfg.Fuzzy = config.FuzzyConfig{
		ErrorSpan: 1, RateSpan: 10,
		DeltaKpSpan: 30, DeltaKiSpan: 60, DeltaKdSpan: 2,
		Max: config.GainsConfig{Kp: 200, Ki: 400, Kd: 20},
	}
	return cfg
}

func runSetup(t *testing.T, cfg *config.Config) *sim.Record {
	t.Helper()
	setup, err := Build(cfg)
	require.NoError(t, err)
	rec, err := setup.Loop().Run(context.Background(), sim.State{0, 0}, setup.SimConfig)
	require.NoError(t, err)
	return rec
}

func TestStepResponseQuality(t *testing.T) {
	cfg := tunedConfig()
	rec := runSetup(t, cfg)

	m := metrics.Evaluate(rec, 1, metrics.Options{})

	require.False(t, m.Diverged)
	require.True(t, m.RiseDefined)
	assert.Less(t, m.RiseTime, 1.0, "rise time")
	require.True(t, m.SettlingDefined)
	assert.Less(t, m.SettlingTime, 3.0, "settling time")
	require.True(t, m.OvershootDefined)
	assert.GreaterOrEqual(t, m.OvershootPct, 0.0)
	assert.Less(t, m.OvershootPct, 30.0, "overshoot")
	require.True(t, m.SteadyStateDefined)
	assert.Less(t, m.SteadyStateError, 0.02, "steady-state error")
}

func TestFuzzyReducesOvershoot(t *testing.T) {
	comp, setup, err := BuildComparison(fuzzyConfig())
	require.NoError(t, err)

	records, err := comp.Run(context.Background(), sim.State{0, 0}, setup.SimConfig)
	require.NoError(t, err)
	require.Len(t, records, 2)

	classical := metrics.Evaluate(records[0], 1, metrics.Options{})
	fuzzy := metrics.Evaluate(records[1], 1, metrics.Options{})

	require.False(t, classical.Diverged)
	require.False(t, fuzzy.Diverged)
	require.True(t, classical.OvershootDefined)
	require.True(t, fuzzy.OvershootDefined)

	assert.Less(t, fuzzy.OvershootPct, classical.OvershootPct,
		"gain adaptation should damp the overshoot")

	require.True(t, fuzzy.SettlingDefined)
	assert.Less(t, fuzzy.SettlingTime, 3.0)
	require.True(t, fuzzy.SteadyStateDefined)
	assert.Less(t, fuzzy.SteadyStateError, 0.02)
}

// Reruns of an identical setup must be bit-identical.
func TestRunDeterminism(t *testing.T) {
	cfg := fuzzyConfig()

	a := runSetup(t, cfg)
	b := runSetup(t, cfg)

	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		if a.Outputs[i] != b.Outputs[i] || a.Controls[i] != b.Controls[i] {
			t.Fatalf("records differ at step %d: %v vs %v", i, a.Outputs[i], b.Outputs[i])
		}
	}
}

func TestZeroAmplitudeReference(t *testing.T) {
	cfg := tunedConfig()
	cfg.Reference.Amplitude = 0

	rec := runSetup(t, cfg)
	m := metrics.Evaluate(rec, 0, metrics.Options{})

	assert.False(t, m.RiseDefined, "rise is undefined for a zero target")
	require.True(t, m.OvershootDefined)
	assert.Zero(t, m.OvershootPct)
	require.True(t, m.SteadyStateDefined)
	assert.InDelta(t, 0, m.SteadyStateError, 1e-9)
}

func TestLoadTorqueSteadyState(t *testing.T) {
	cfg := tunedConfig()
	cfg.Plant.LoadTorque = 0.02
	cfg.Horizon = 8

	rec := runSetup(t, cfg)
	m := metrics.Evaluate(rec, 1, metrics.Options{})

	require.False(t, m.Diverged)
	require.True(t, m.SteadyStateDefined)
	assert.Less(t, m.SteadyStateError, 0.02, "integral action must reject a constant load")
}

func TestBuildValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Gains.Kp = -1
	_, err := Build(cfg)
	assert.Error(t, err, "negative gains must fail before the run starts")

	cfg = config.DefaultConfig()
	cfg.Plant.Inductance = 0
	_, err = Build(cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Controller = "bang-bang"
	_, err = Build(cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Reference.Type = "square"
	_, err = Build(cfg)
	assert.Error(t, err)
}

func TestIntegratorFactory(t *testing.T) {
	for _, name := range []string{"euler", "rk4", ""} {
		factory, err := IntegratorFactory(name)
		require.NoError(t, err, name)
		assert.NotNil(t, factory())
	}

	_, err := IntegratorFactory("leapfrog")
	assert.Error(t, err)
}

func TestControllerFactoryFreshState(t *testing.T) {
	cfg := tunedConfig()
	factory, err := ControllerFactory("pid", cfg)
	require.NoError(t, err)

	a := factory()
	b := factory()
	require.NotSame(t, a, b)

	// Identical drive must give identical outputs: no state leaks between
	// controllers handed out by the same factory.
	var ua, ub float64
	for i := 0; i < 3; i++ {
		ua = a.Compute(1, 0, 0.01)
	}
	for i := 0; i < 3; i++ {
		ub = b.Compute(1, 0, 0.01)
	}
	assert.Equal(t, ua, ub)
}

func TestBuildReference(t *testing.T) {
	ref, err := BuildReference(config.ReferenceConfig{Type: "ramp", Amplitude: 2, RiseTime: 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ref(2), 1e-12)

	ref, err = BuildReference(config.ReferenceConfig{Type: "sine", Amplitude: 1, Frequency: 0.25})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ref(1), 1e-12)
}
