package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/annel0/perlin-wireframe/internal/api"
	"github.com/annel0/perlin-wireframe/internal/app"
	"github.com/annel0/perlin-wireframe/internal/config"
	"github.com/annel0/perlin-wireframe/internal/display"
	"github.com/annel0/perlin-wireframe/internal/heightfield"
	"github.com/annel0/perlin-wireframe/internal/logging"
	"github.com/annel0/perlin-wireframe/internal/metrics"
	"github.com/annel0/perlin-wireframe/internal/noise"
	"github.com/annel0/perlin-wireframe/internal/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или PERLIN_CONFIG)")
	displayFlag := flag.String("display", "", "поверхность вывода: headless | terminal")
	framesFlag := flag.Int("frames", -1, "лимит кадров, 0 — без ограничения")
	flag.Parse()

	if err := logging.InitDefaultLogger("demo"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}

	err := run(*configPath, *displayFlag, *framesFlag)
	if err != nil {
		logging.Error("❌ %v", err)
	}
	logging.CloseDefaultLogger()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, displayOverride string, framesOverride int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}
	if displayOverride != "" {
		cfg.Display.Backend = displayOverride
	}
	if framesOverride >= 0 {
		cfg.Demo.MaxFrames = framesOverride
	}
	if cfg.Demo.Workers == 0 {
		cfg.Demo.Workers = metrics.DefaultWorkers()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Default().SetConsoleLevel(level)

	runID := uuid.NewString()
	logging.Info("🌊 Запуск Perlin wireframe демо, run=%s", runID)
	logging.Info("📐 Сетка %dx%d, октавы %d, бэкенд %s, %d fps",
		cfg.Demo.USections, cfg.Demo.VSections, cfg.Noise.Octaves, cfg.Noise.Backend, cfg.Demo.FrameRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("инициализация телеметрии: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	field, err := noise.NewField(cfg.Noise.Backend, cfg.Noise.Octaves, cfg.Noise.Seed)
	if err != nil {
		return err
	}
	sampler, err := heightfield.NewSampler(field, cfg.SamplerOptions())
	if err != nil {
		return err
	}

	// Headless всегда хранит последний кадр для REST предпросмотра.
	snapshot := display.NewHeadless()
	surfaces := []display.Surface{snapshot}
	var quit <-chan struct{}
	if cfg.Display.Backend == "terminal" {
		term := display.NewTerminal()
		surfaces = append(surfaces, term)
		quit = term.Done()
		// Терминал занят картинкой: в консоль ничего не пишем, только в файл.
		logging.Default().SetConsoleLevel(logging.OFF)
		logging.GetLoggerManager().SetConsoleLevelAll(logging.OFF)
	}
	surface := display.NewFanout(surfaces...)
	defer func() {
		if err := surface.Close(); err != nil {
			logging.Warn("Ошибка закрытия поверхности: %v", err)
		}
	}()
	if err := surface.Allocate(cfg.Display.Width, cfg.Display.Height); err != nil {
		return fmt.Errorf("выделение поверхности: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	frameMetrics, err := metrics.NewFrameMetrics(registry)
	if err != nil {
		return err
	}
	metricsServer := startMetrics(cfg, registry)
	defer stopMetrics(metricsServer)

	if cfg.Server.Enabled {
		apiLogger := logging.GetAPILogger()
		if cfg.Display.Backend == "terminal" {
			apiLogger.SetConsoleLevel(logging.OFF)
		}
		rest := api.NewRestServer(api.Config{
			Port:           fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
			RunID:          runID,
			Frames:         snapshot,
			DefaultOctaves: cfg.Noise.Octaves,
			Registry:       registry,
			Logger:         apiLogger,
		})
		if err := rest.Start(); err != nil {
			return err
		}
		defer func() {
			if err := rest.Stop(context.Background()); err != nil {
				logging.Error("❌ %v", err)
			}
			logging.GetLoggerManager().CloseAll()
		}()
	}

	demo, err := app.NewDemo(app.DemoConfig{
		Sampler:   sampler,
		Surface:   surface,
		Metrics:   frameMetrics,
		FrameRate: cfg.Demo.FrameRate,
		MaxFrames: cfg.Demo.MaxFrames,
		Quit:      quit,
	})
	if err != nil {
		return err
	}

	if err := demo.Run(ctx); err != nil {
		return err
	}
	logging.Info("👋 Демо остановлено после %d кадров", demo.Frames())
	return nil
}

// startMetrics поднимает отдельный /metrics, только если HTTP включён в конфиге.
func startMetrics(cfg *config.Config, gatherer prometheus.Gatherer) *http.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return metrics.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()), gatherer)
}

func stopMetrics(srv *http.Server) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		logging.Warn("Ошибка остановки Prometheus сервера: %v", err)
	}
}
