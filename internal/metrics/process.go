package metrics

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats содержит метрики процесса демо
type ProcessStats struct {
	StartTime time.Time
}

// NewProcessStats создает новый экземпляр метрик
func NewProcessStats() *ProcessStats {
	return &ProcessStats{
		StartTime: time.Now(),
	}
}

// GetUptime возвращает время работы в человекочитаемом виде
func (ps *ProcessStats) GetUptime() string {
	return formatUptime(time.Since(ps.StartTime))
}

func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// GetMemoryUsage возвращает использование памяти в MB
func (ps *ProcessStats) GetMemoryUsage() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024
}

// ErrNoCPUSample — gopsutil не вернул ни одного замера CPU.
var ErrNoCPUSample = errors.New("metrics: no cpu sample")

// GetCPUUsage возвращает использование CPU процессом в процентах
func (ps *ProcessStats) GetCPUUsage() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		// Если не удалось получить метрику процесса, попробуем системную
		return firstCPUPercent(cpu.Percent(100*time.Millisecond, false))
	}
	return cpuPercent, nil
}

// firstCPUPercent берёт общую загрузку из ответа cpu.Percent. Пустой ответ
// без ошибки возвращает ErrNoCPUSample.
func firstCPUPercent(percents []float64, err error) (float64, error) {
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, ErrNoCPUSample
	}
	return percents[0], nil
}

// DefaultWorkers возвращает число логических CPU для параллельного семплирования.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
