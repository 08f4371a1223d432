package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/perlin-wireframe/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_MatchesReferenceDemo(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts := cfg.SamplerOptions()
	assert.Equal(t, 64, opts.Grid.USections)
	assert.Equal(t, 64, opts.Grid.VSections)
	assert.Equal(t, 2.0, opts.Amplitude)
	assert.Equal(t, 0.3, opts.TimeScale)
	assert.InDelta(t, 1.0/60, opts.TimeStep, 1e-15)
	assert.Equal(t, 3, cfg.Noise.Octaves)
}

func TestLoad_EmptyPathWithoutEnv(t *testing.T) {
	t.Setenv("PERLIN_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg, "без пути и переменной окружения конфиг не загружается")

	cfg, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
demo:
  u_sections: 32
  frame_rate: 30
noise:
  backend: seeded
  octaves: 5
  seed: 7
display:
  backend: terminal
server:
  rest_port: 9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Demo.USections)
	assert.Equal(t, 64, cfg.Demo.VSections, "незаданные поля остаются по умолчанию")
	assert.Equal(t, "seeded", cfg.Noise.Backend)
	assert.Equal(t, 5, cfg.Noise.Octaves)
	assert.Equal(t, int64(7), cfg.Noise.Seed)
	assert.Equal(t, "terminal", cfg.Display.Backend)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
	assert.InDelta(t, 1.0/30, cfg.SamplerOptions().TimeStep, 1e-15)
}

func TestValidate_EmptyNoiseBackendMeansImproved(t *testing.T) {
	cfg := Default()
	cfg.Noise.Backend = ""
	require.NoError(t, cfg.Validate(), "пустой бэкенд принимается так же, как в noise.NewField")

	_, err := noise.NewField(cfg.Noise.Backend, cfg.Noise.Octaves, cfg.Noise.Seed)
	require.NoError(t, err)
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "demo:\n  v_sections: 16\n")
	t.Setenv("PERLIN_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Demo.VSections)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"отрицательные октавы": "noise:\n  octaves: -1\n",
		"слишком много октав":  "noise:\n  octaves: 1100\n",
		"нулевая сетка":        "demo:\n  u_sections: 0\n",
		"неизвестный бэкенд":   "noise:\n  backend: simplex\n",
		"неизвестный дисплей":  "display:\n  backend: egl\n",
		"нулевая частота":      "demo:\n  frame_rate: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(writeConfig(t, "demo: [oops"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestPorts_EnvFallback(t *testing.T) {
	var s ServerConfig
	t.Setenv("PERLIN_REST_PORT", "")
	t.Setenv("PERLIN_METRICS_PORT", "")
	assert.Equal(t, 8088, s.GetRESTPort())
	assert.Equal(t, 2112, s.GetMetricsPort())

	t.Setenv("PERLIN_METRICS_PORT", "9100")
	assert.Equal(t, 9100, s.GetMetricsPort())

	t.Setenv("PERLIN_REST_PORT", "bogus")
	assert.Equal(t, 8088, s.GetRESTPort())
}
