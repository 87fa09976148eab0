package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Gauge reports a current count for a named component, e.g. active games.
type Gauge func() int

// GoroutineMonitor tracks goroutine metrics and the gauges registered by
// server components
type GoroutineMonitor struct {
	mu             sync.RWMutex
	baseline       int
	current        int
	peak           int
	checkInterval  time.Duration
	alertThreshold int
	lastAlert      time.Time
	alertCooldown  time.Duration
	stopChan       chan struct{}
	stopOnce       sync.Once
	gauges         map[string]Gauge
	gaugeValues    map[string]int
	logger         zerolog.Logger
	numGoroutine   func() int
}

// NewGoroutineMonitor creates a new goroutine monitor
func NewGoroutineMonitor(logger zerolog.Logger, checkInterval time.Duration, alertThreshold int) *GoroutineMonitor {
	baseline := runtime.NumGoroutine()
	if checkInterval <= 0 {
		checkInterval = 30 * time.Second
	}
	if alertThreshold <= 0 {
		alertThreshold = 1000
	}
	return &GoroutineMonitor{
		baseline:       baseline,
		current:        baseline,
		peak:           baseline,
		checkInterval:  checkInterval,
		alertThreshold: alertThreshold,
		alertCooldown:  5 * time.Minute,
		stopChan:       make(chan struct{}),
		gauges:         make(map[string]Gauge),
		gaugeValues:    make(map[string]int),
		logger:         logger.With().Str("component", "GoroutineMonitor").Logger(),
		numGoroutine:   runtime.NumGoroutine,
	}
}

// Start begins monitoring goroutines
func (gm *GoroutineMonitor) Start() {
	go gm.monitor()
	gm.logger.Info().
		Int("baseline", gm.baseline).
		Dur("interval", gm.checkInterval).
		Msg("Started goroutine monitoring")
}

// Stop stops the monitor. It is safe to call more than once.
func (gm *GoroutineMonitor) Stop() {
	gm.stopOnce.Do(func() { close(gm.stopChan) })
}

// monitor is the main monitoring loop
func (gm *GoroutineMonitor) monitor() {
	defer func() {
		if r := recover(); r != nil {
			gm.logger.Error().
				Interface("panic", r).
				Msg("Goroutine monitor panicked")
		}
	}()

	ticker := time.NewTicker(gm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			gm.checkGoroutines()
		case <-gm.stopChan:
			return
		}
	}
}

// checkGoroutines samples the goroutine count and every gauge, and warns
// when the count passes the threshold
func (gm *GoroutineMonitor) checkGoroutines() {
	current := gm.numGoroutine()

	gm.mu.RLock()
	gauges := make(map[string]Gauge, len(gm.gauges))
	for name, g := range gm.gauges {
		gauges[name] = g
	}
	gm.mu.RUnlock()

	// Gauges may take their own locks, so they run outside ours
	values := make(map[string]int, len(gauges))
	for name, g := range gauges {
		values[name] = g()
	}

	gm.mu.Lock()
	gm.current = current
	if current > gm.peak {
		gm.peak = current
	}
	gm.gaugeValues = values

	growth := current - gm.baseline
	growthRate := 0.0
	if gm.baseline > 0 {
		growthRate = float64(growth) / float64(gm.baseline) * 100
	}

	shouldAlert := current > gm.alertThreshold &&
		time.Since(gm.lastAlert) > gm.alertCooldown
	if shouldAlert {
		gm.lastAlert = time.Now()
	}
	peak := gm.peak
	gm.mu.Unlock()

	event := gm.logger.Debug().
		Int("current", current).
		Int("baseline", gm.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate)
	for name, v := range values {
		event = event.Int(name, v)
	}
	event.Msg("Goroutine metrics")

	if shouldAlert {
		gm.logger.Warn().
			Int("current", current).
			Int("threshold", gm.alertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
}

// RegisterGauge adds a named count sampled on every check
func (gm *GoroutineMonitor) RegisterGauge(name string, g Gauge) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.gauges[name] = g
}

// GetMetrics returns the most recent sample
func (gm *GoroutineMonitor) GetMetrics() GoroutineMetrics {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	return GoroutineMetrics{
		Current:         gm.current,
		Baseline:        gm.baseline,
		Peak:            gm.peak,
		Growth:          gm.current - gm.baseline,
		ComponentCounts: copyMap(gm.gaugeValues),
	}
}

// GoroutineMetrics contains goroutine statistics
type GoroutineMetrics struct {
	Current         int            `json:"current"`
	Baseline        int            `json:"baseline"`
	Peak            int            `json:"peak"`
	Growth          int            `json:"growth"`
	ComponentCounts map[string]int `json:"component_counts"`
}

func copyMap(m map[string]int) map[string]int {
	result := make(map[string]int, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
