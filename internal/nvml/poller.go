package nvml

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matrixforge/matrix-node/internal/metrics"
)

// Poller periodically reads per-device memory and exports it through the
// Prometheus gauges. The /gpu-info endpoint never reads from here; it
// always queries the provider directly.
type Poller struct {
	provider Provider
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

func NewPoller(provider Provider, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		provider: provider,
		interval: interval,
		logger:   logger.Named("gpu_poller"),
	}
}

// Start launches the polling loop. A zero interval disables polling.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval == 0 {
		p.logger.Info("GPU metrics poll interval is zero, polling disabled")
		return
	}
	if p.started {
		return
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	// Populate the gauges now instead of waiting a full interval.
	p.collect()
	go p.run()
}

func (p *Poller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.collect()
		case <-p.stop:
			return
		}
	}
}

// Stop terminates the polling loop and waits for it to drain. Safe to call
// without a prior Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	close(p.stop)
	<-p.done
	p.started = false
}

func (p *Poller) collect() {
	readings, err := p.provider.DeviceMemory()
	if err != nil {
		p.logger.Error("failed to read GPU memory", zap.Error(err))
		return
	}

	for _, d := range readings {
		gpu := strconv.Itoa(d.Index)
		metrics.GPUMemoryUsedMB.WithLabelValues(gpu).Set(float64(d.UsedMB))
		metrics.GPUMemoryTotalMB.WithLabelValues(gpu).Set(float64(d.TotalMB))
	}
	p.logger.Debug("GPU memory gauges updated", zap.Int("devices", len(readings)))
}
