package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/annel0/perlin-wireframe/internal/heightfield"
	"github.com/annel0/perlin-wireframe/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FrameMetrics инкапсулирует Prometheus-метрики цикла кадров.
//
// Метрики:
// * perlin_frames_total — counter показанных кадров
// * perlin_frame_errors_total — counter неудачных кадров
// * perlin_frame_sample_seconds — histogram времени семплирования
// * perlin_frame_height_min / perlin_frame_height_max — gauge границ высот
// * perlin_frame_vertices — gauge числа вершин
type FrameMetrics struct {
	frames     prometheus.Counter
	errors     prometheus.Counter
	sampleTime prometheus.Histogram
	heightMin  prometheus.Gauge
	heightMax  prometheus.Gauge
	vertices   prometheus.Gauge
}

// NewFrameMetrics создаёт метрики и регистрирует их в reg.
func NewFrameMetrics(reg prometheus.Registerer) (*FrameMetrics, error) {
	fm := &FrameMetrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "perlin",
			Name:      "frames_total",
			Help:      "Общее число показанных кадров.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "perlin",
			Name:      "frame_errors_total",
			Help:      "Кадры, которые не удалось построить или показать.",
		}),
		sampleTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "perlin",
			Name:      "frame_sample_seconds",
			Help:      "Время семплирования поля высот за кадр.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.025, 0.05, 0.1},
		}),
		heightMin: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "perlin",
			Name:      "frame_height_min",
			Help:      "Минимальная высота последнего кадра.",
		}),
		heightMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "perlin",
			Name:      "frame_height_max",
			Help:      "Максимальная высота последнего кадра.",
		}),
		vertices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "perlin",
			Name:      "frame_vertices",
			Help:      "Число вершин в кадре.",
		}),
	}

	for _, c := range []prometheus.Collector{fm.frames, fm.errors, fm.sampleTime, fm.heightMin, fm.heightMax, fm.vertices} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return fm, nil
}

// ObserveFrame учитывает показанный кадр и время его семплирования.
func (fm *FrameMetrics) ObserveFrame(frame *heightfield.Frame, sampleTime time.Duration) {
	fm.frames.Inc()
	fm.sampleTime.Observe(sampleTime.Seconds())
	lo, hi := frame.Bounds()
	fm.heightMin.Set(lo)
	fm.heightMax.Set(hi)
	fm.vertices.Set(float64(len(frame.Vertices)))
}

// ObserveError учитывает неудачный кадр.
func (fm *FrameMetrics) ObserveError() {
	fm.errors.Inc()
}

// StartHTTP запускает отдельный HTTP-эндпоинт /metrics (например, ":2112").
// Метод неблокирующий; возвращённый сервер останавливается через Shutdown.
func StartHTTP(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}
