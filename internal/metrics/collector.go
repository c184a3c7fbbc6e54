package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector counts engine activity with no external dependencies. All
// methods are safe for concurrent use.
type Collector struct {
	engineMetrics     *EngineMetrics
	operationCounters map[string]*int64
	mu                sync.RWMutex
	startTime         time.Time
}

// EngineMetrics is a snapshot of the counters
type EngineMetrics struct {
	// Compiler
	ComponentsCompiled   int64 `json:"components_compiled"`
	ExpressionsExtracted int64 `json:"expressions_extracted"`
	CompileErrors        int64 `json:"compile_errors"`

	// Renderer
	RendersCompleted  int64 `json:"renders_completed"`
	RenderErrors      int64 `json:"render_errors"`
	LoopIterations    int64 `json:"loop_iterations"`
	ComponentsInlined int64 `json:"components_inlined"`
	IslandsEmitted    int64 `json:"islands_emitted"`

	// Timing
	TotalRenderTime time.Duration `json:"total_render_time"`

	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		engineMetrics: &EngineMetrics{
			StartTime: time.Now(),
		},
		operationCounters: make(map[string]*int64),
		startTime:         time.Now(),
	}
}

// IncrementCompiled records a compiled component and the size of its expression table
func (c *Collector) IncrementCompiled(expressions int) {
	atomic.AddInt64(&c.engineMetrics.ComponentsCompiled, 1)
	atomic.AddInt64(&c.engineMetrics.ExpressionsExtracted, int64(expressions))
}

// IncrementCompileError records a failed compile
func (c *Collector) IncrementCompileError() {
	atomic.AddInt64(&c.engineMetrics.CompileErrors, 1)
}

// RecordRender records a finished render and how long it took
func (c *Collector) RecordRender(d time.Duration) {
	atomic.AddInt64(&c.engineMetrics.RendersCompleted, 1)
	atomic.AddInt64((*int64)(&c.engineMetrics.TotalRenderTime), int64(d))
}

// IncrementRenderError records a failed render
func (c *Collector) IncrementRenderError() {
	atomic.AddInt64(&c.engineMetrics.RenderErrors, 1)
}

// AddLoopIterations records expanded loop iterations
func (c *Collector) AddLoopIterations(n int) {
	atomic.AddInt64(&c.engineMetrics.LoopIterations, int64(n))
}

// IncrementComponentInlined records a custom tag rendered from the dependency list
func (c *Collector) IncrementComponentInlined() {
	atomic.AddInt64(&c.engineMetrics.ComponentsInlined, 1)
}

// IncrementIsland records a custom tag emitted as a hydration island
func (c *Collector) IncrementIsland() {
	atomic.AddInt64(&c.engineMetrics.IslandsEmitted, 1)
}

// IncrementCustomCounter increments a custom named counter
func (c *Collector) IncrementCustomCounter(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, exists := c.operationCounters[name]; exists {
		atomic.AddInt64(counter, 1)
	} else {
		var newCounter int64 = 1
		c.operationCounters[name] = &newCounter
	}
}

// GetMetrics returns a snapshot of the current counters
func (c *Collector) GetMetrics() EngineMetrics {
	c.mu.RLock()
	start := c.startTime
	c.mu.RUnlock()

	return EngineMetrics{
		ComponentsCompiled:   atomic.LoadInt64(&c.engineMetrics.ComponentsCompiled),
		ExpressionsExtracted: atomic.LoadInt64(&c.engineMetrics.ExpressionsExtracted),
		CompileErrors:        atomic.LoadInt64(&c.engineMetrics.CompileErrors),
		RendersCompleted:     atomic.LoadInt64(&c.engineMetrics.RendersCompleted),
		RenderErrors:         atomic.LoadInt64(&c.engineMetrics.RenderErrors),
		LoopIterations:       atomic.LoadInt64(&c.engineMetrics.LoopIterations),
		ComponentsInlined:    atomic.LoadInt64(&c.engineMetrics.ComponentsInlined),
		IslandsEmitted:       atomic.LoadInt64(&c.engineMetrics.IslandsEmitted),
		TotalRenderTime:      time.Duration(atomic.LoadInt64((*int64)(&c.engineMetrics.TotalRenderTime))),
		StartTime:            start,
		Uptime:               time.Since(start),
	}
}

// GetCustomCounters returns all custom counters
func (c *Collector) GetCustomCounters() map[string]int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]int64)
	for name, counter := range c.operationCounters {
		result[name] = atomic.LoadInt64(counter)
	}
	return result
}

// Reset resets all metrics to zero
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	atomic.StoreInt64(&c.engineMetrics.ComponentsCompiled, 0)
	atomic.StoreInt64(&c.engineMetrics.ExpressionsExtracted, 0)
	atomic.StoreInt64(&c.engineMetrics.CompileErrors, 0)
	atomic.StoreInt64(&c.engineMetrics.RendersCompleted, 0)
	atomic.StoreInt64(&c.engineMetrics.RenderErrors, 0)
	atomic.StoreInt64(&c.engineMetrics.LoopIterations, 0)
	atomic.StoreInt64(&c.engineMetrics.ComponentsInlined, 0)
	atomic.StoreInt64(&c.engineMetrics.IslandsEmitted, 0)
	atomic.StoreInt64((*int64)(&c.engineMetrics.TotalRenderTime), 0)

	c.operationCounters = make(map[string]*int64)

	c.startTime = time.Now()
	c.engineMetrics.StartTime = c.startTime
}

// GetErrorRate returns failed renders as a fraction of all render attempts
func (c *Collector) GetErrorRate() float64 {
	completed := atomic.LoadInt64(&c.engineMetrics.RendersCompleted)
	errors := atomic.LoadInt64(&c.engineMetrics.RenderErrors)
	if completed+errors == 0 {
		return 0
	}
	return float64(errors) / float64(completed+errors)
}

// AverageRenderTime returns the mean duration of completed renders
func (c *Collector) AverageRenderTime() time.Duration {
	completed := atomic.LoadInt64(&c.engineMetrics.RendersCompleted)
	if completed == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64((*int64)(&c.engineMetrics.TotalRenderTime)) / completed)
}
