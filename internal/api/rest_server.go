package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/perlin-wireframe/internal/heightfield"
	"github.com/annel0/perlin-wireframe/internal/logging"
	"github.com/annel0/perlin-wireframe/internal/metrics"
	"github.com/annel0/perlin-wireframe/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// FrameSource отдаёт последний показанный кадр (реализуется display.Headless).
type FrameSource interface {
	Last() *heightfield.Frame
	Presented() uint64
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port           string               // адрес для запуска сервера
	RunID          string               // идентификатор запуска демо
	Frames         FrameSource          // источник кадров, может быть nil
	DefaultOctaves int                  // октавы /api/fbm, если параметр не задан
	Registry       *prometheus.Registry // реестр метрик; nil — новый
	Logger         *logging.Logger      // логгер запросов; nil — глобальный
}

// RestServer — REST API предпросмотра шума и текущего кадра
type RestServer struct {
	router   *gin.Engine
	config   Config
	registry *prometheus.Registry
	stats    *metrics.ProcessStats
	server   *http.Server
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("perlin_preview"))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw := middleware.NewPrometheusMiddleware("preview", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	rs := &RestServer{
		router:   router,
		config:   config,
		registry: config.Registry,
		stats:    metrics.NewProcessStats(),
	}
	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.GET("/noise", rs.handleNoise)
		api.GET("/fbm", rs.handleFBM)
		api.GET("/frame", rs.handleFrame)
		api.GET("/stats", rs.handleStats)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает HTTP сервер в отдельной горутине
func (rs *RestServer) Start() error {
	if rs.server != nil {
		return errors.New("REST сервер уже запущен")
	}

	rs.server = &http.Server{
		Addr:              rs.config.Port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logging.Info("🌐 REST API предпросмотра: http://localhost%s", rs.config.Port)
		if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка REST сервера: %v", err)
		}
	}()
	return nil
}

// Stop останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("остановка REST сервера: %w", err)
	}
	rs.server = nil
	return nil
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValueResponse — значение шума в точке
type ValueResponse struct {
	Value float64 `json:"value"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, GenericResponse{
		Success: false,
		Message: err.Error(),
	})
}

// queryFloat читает обязательный конечный float-параметр
func queryFloat(c *gin.Context, name string) (float64, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, fmt.Errorf("параметр %s обязателен", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("параметр %s: %q не число", name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("параметр %s должен быть конечным", name)
	}
	return v, nil
}

func queryPoint(c *gin.Context) (x, y, z float64, err error) {
	if x, err = queryFloat(c, "x"); err != nil {
		return
	}
	if y, err = queryFloat(c, "y"); err != nil {
		return
	}
	z, err = queryFloat(c, "z")
	return
}

// handleHealth обрабатывает проверку здоровья сервиса
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"run_id": rs.config.RunID,
		"time":   time.Now().Unix(),
	})
}

// handleStats возвращает статистику процесса и цикла кадров
func (rs *RestServer) handleStats(c *gin.Context) {
	var presented uint64
	if rs.config.Frames != nil {
		presented = rs.config.Frames.Presented()
	}

	stats := gin.H{
		"run_id":          rs.config.RunID,
		"uptime":          rs.stats.GetUptime(),
		"frames":          presented,
		"memory_usage_mb": rs.stats.GetMemoryUsage(),
	}
	if cpu, err := rs.stats.GetCPUUsage(); err == nil {
		stats["cpu_usage_percent"] = cpu
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}
