package telemetry

import (
	"log"
	"sync"
	"time"
)

// Telemetry tracks run metrics for the reasoning loop and its collaborators.
type Telemetry struct {
	logger  *log.Logger
	enabled bool

	mu sync.Mutex
	// Capability metrics
	capabilityCalls map[string]int64
	capabilityTimes map[string]time.Duration
	failedSteps     int64

	// Fetch metrics
	fetchCalls    int64
	fetchFailures int64
	fetchTime     time.Duration

	// LLM metrics
	llmCalls  int64
	llmErrors int64
	llmTime   time.Duration
}

func New(enabled bool, logger *log.Logger) *Telemetry {
	if logger == nil {
		logger = log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags)
	}
	return &Telemetry{
		logger:          logger,
		enabled:         enabled,
		capabilityCalls: map[string]int64{},
		capabilityTimes: map[string]time.Duration{},
	}
}

// RecordCapability records one capability invocation.
func (t *Telemetry) RecordCapability(name string, elapsed time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.capabilityCalls[name]++
	t.capabilityTimes[name] += elapsed
	t.mu.Unlock()
}

// RecordFailedStep records a reasoning step that produced no valid action.
func (t *Telemetry) RecordFailedStep() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.failedSteps++
	t.mu.Unlock()
}

// RecordFetch records one document fetch.
func (t *Telemetry) RecordFetch(elapsed time.Duration, success bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.fetchCalls++
	t.fetchTime += elapsed
	if !success {
		t.fetchFailures++
	}
	t.mu.Unlock()
}

// RecordLLM records one reasoning backend call.
func (t *Telemetry) RecordLLM(elapsed time.Duration, err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.llmCalls++
	t.llmTime += elapsed
	if err != nil {
		t.llmErrors++
	}
	t.mu.Unlock()
}

// LogSummary emits a run summary when telemetry is enabled.
func (t *Telemetry) LogSummary() {
	if t == nil || !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, calls := range t.capabilityCalls {
		t.logger.Printf("capability %s: %d call(s), %v total", name, calls, t.capabilityTimes[name])
	}
	if t.failedSteps > 0 {
		t.logger.Printf("failed reasoning steps: %d", t.failedSteps)
	}
	if t.fetchCalls > 0 {
		t.logger.Printf("fetches: %d (%d failed), %v total", t.fetchCalls, t.fetchFailures, t.fetchTime)
	}
	if t.llmCalls > 0 {
		t.logger.Printf("llm calls: %d (%d errored), %v total", t.llmCalls, t.llmErrors, t.llmTime)
	}
}
