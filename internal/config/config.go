package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/perlin-wireframe/internal/heightfield"
	"github.com/annel0/perlin-wireframe/internal/noise"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig оборачивает все ошибки валидации.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config корневая структура конфигурации демо.
type Config struct {
	Demo      DemoConfig      `yaml:"demo"`
	Noise     NoiseConfig     `yaml:"noise"`
	Display   DisplayConfig   `yaml:"display"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// DemoConfig параметры сетки и анимации.
type DemoConfig struct {
	USections int     `yaml:"u_sections"`
	VSections int     `yaml:"v_sections"`
	Amplitude float64 `yaml:"amplitude"`
	TimeScale float64 `yaml:"time_scale"`
	FrameRate int     `yaml:"frame_rate"`
	Workers   int     `yaml:"workers"`
	// MaxFrames — 0 означает без ограничения
	MaxFrames int `yaml:"max_frames"`
}

// NoiseConfig выбирает бэкенд шума.
type NoiseConfig struct {
	Backend string `yaml:"backend"`
	Octaves int    `yaml:"octaves"`
	Seed    int64  `yaml:"seed"`
}

// DisplayConfig описывает поверхность вывода.
type DisplayConfig struct {
	Backend string `yaml:"backend"` // headless | terminal
	Width   int    `yaml:"width"`   // 0 — весь терминал
	Height  int    `yaml:"height"`
}

type ServerConfig struct {
	Enabled     bool `yaml:"enabled"`
	RESTPort    int  `yaml:"rest_port"`
	MetricsPort int  `yaml:"metrics_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает параметры эталонного демо.
func Default() *Config {
	opts := heightfield.DefaultOptions()
	return &Config{
		Demo: DemoConfig{
			USections: opts.Grid.USections,
			VSections: opts.Grid.VSections,
			Amplitude: opts.Amplitude,
			TimeScale: opts.TimeScale,
			FrameRate: 60,
		},
		Noise: NoiseConfig{
			Backend: noise.BackendImproved,
			Octaves: 3,
		},
		Display: DisplayConfig{
			Backend: "headless",
		},
		Server: ServerConfig{
			Enabled: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "perlin-wireframe",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// GetRESTPort возвращает REST порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "PERLIN_REST_PORT", 8088)
}

// GetMetricsPort возвращает порт Prometheus метрик с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "PERLIN_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// SamplerOptions переводит конфигурацию в параметры семплера.
func (c *Config) SamplerOptions() heightfield.Options {
	return heightfield.Options{
		Grid: heightfield.Grid{
			USections: c.Demo.USections,
			VSections: c.Demo.VSections,
		},
		Amplitude: c.Demo.Amplitude,
		TimeScale: c.Demo.TimeScale,
		TimeStep:  1.0 / float64(c.Demo.FrameRate),
		Workers:   c.Demo.Workers,
	}
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c *Config) Validate() error {
	if c.Demo.USections <= 0 || c.Demo.VSections <= 0 {
		return fmt.Errorf("%w: demo.u_sections/v_sections must be positive", ErrInvalidConfig)
	}
	if c.Demo.FrameRate <= 0 {
		return fmt.Errorf("%w: demo.frame_rate must be positive", ErrInvalidConfig)
	}
	if c.Demo.Workers < 0 {
		return fmt.Errorf("%w: demo.workers must not be negative", ErrInvalidConfig)
	}
	if c.Demo.MaxFrames < 0 {
		return fmt.Errorf("%w: demo.max_frames must not be negative", ErrInvalidConfig)
	}
	if err := noise.ValidateOctaves(c.Noise.Octaves); err != nil {
		return fmt.Errorf("%w: noise.octaves: %v", ErrInvalidConfig, err)
	}
	switch c.Noise.Backend {
	case "", noise.BackendImproved, noise.BackendSeeded:
	default:
		return fmt.Errorf("%w: noise.backend %q", ErrInvalidConfig, c.Noise.Backend)
	}
	switch c.Display.Backend {
	case "headless", "terminal":
	default:
		return fmt.Errorf("%w: display.backend %q", ErrInvalidConfig, c.Display.Backend)
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		return fmt.Errorf("%w: display size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений Default.
// Если path == "", пытается прочитать из ENV PERLIN_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("PERLIN_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault возвращает конфиг из файла или Default, если файл не задан.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return Default(), nil
	}
	return cfg, nil
}
