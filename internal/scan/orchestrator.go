package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zlin/chanscan/internal/market"
	"github.com/zlin/chanscan/pkg/logger"
)

// ErrEmptyUniverse rejects a scan whose filtered universe has no rows.
var ErrEmptyUniverse = errors.New("scan: universe is empty")

// Status is the session lifecycle state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusFinished Status = "finished"
)

// EventKind tags events on the scan stream.
type EventKind int

const (
	EventProgress EventKind = iota
	EventFound
	EventDiagnostic
	EventFinished
)

// Event is one element of a session's event stream. Finished is always the
// last event, emitted exactly once, after which the stream closes.
type Event struct {
	Kind      EventKind
	Completed int
	Total     int
	Result    *Result  // EventFound
	Code      string   // EventDiagnostic
	Reason    string   // EventDiagnostic
	Summary   *Summary // EventFinished
}

// Summary is the terminal accounting of a session.
type Summary struct {
	Success int `json:"success"`
	Fail    int `json:"fail"`
	Found   int `json:"found"`
}

// Session holds one scan invocation's state. Created by Start, mutated only
// by the orchestrator's workers, never reused across scans.
type Session struct {
	mu        sync.Mutex
	status    Status
	total     int
	completed int
	success   int
	fail      int
	found     int
	cancel    context.CancelFunc
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Progress returns completed and total task counts.
func (s *Session) Progress() (completed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed, s.total
}

// Counts returns the current outcome counters.
func (s *Session) Counts() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{Success: s.success, Fail: s.fail, Found: s.found}
}

// Stop requests cooperative cancellation: no new tasks start, in-flight
// analyses run to completion.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.status == StatusRunning {
		s.status = StatusStopping
	}
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Orchestrator fans the universe out to a bounded worker pool and folds
// outcomes into a session and its event stream.
// ⭐ SSOT: 扫描任务的并发调度只在这里
type Orchestrator struct {
	analyzer *Analyzer
	logger   *logger.Logger
}

// NewOrchestrator creates an orchestrator around the given analyzer.
func NewOrchestrator(analyzer *Analyzer, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		analyzer: analyzer,
		logger:   log.WithField("module", "orchestrator"),
	}
}

// Start launches a scan over the universe and returns the session plus its
// event stream. The stream buffer covers every possible event, so workers
// never block on a slow consumer and Finished is delivered even if the
// consumer walks away.
func (o *Orchestrator) Start(ctx context.Context, universe []market.Quote, cfg Config) (*Session, <-chan Event, error) {
	if len(universe) == 0 {
		return nil, nil, ErrEmptyUniverse
	}
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	scanCtx, cancel := context.WithCancel(ctx)
	session := &Session{
		status: StatusRunning,
		total:  len(universe),
		cancel: cancel,
	}

	events := make(chan Event, 2*len(universe)+2)
	taskCh := make(chan market.Quote)

	o.logger.WithFields(map[string]interface{}{
		"universe":  len(universe),
		"workers":   workers,
		"resonance": cfg.UseResonance,
	}).Info("Starting scan")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for inst := range taskCh {
				// 取消后丢弃未开始的任务
				if scanCtx.Err() != nil {
					continue
				}
				outcome := o.runTask(scanCtx, inst, cfg)
				o.settle(session, events, inst, outcome)
			}
		}()
	}

	// 投递任务; 取消时停止投递
	go func() {
		defer close(taskCh)
		for _, inst := range universe {
			select {
			case taskCh <- inst:
			case <-scanCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		cancel()

		session.mu.Lock()
		session.status = StatusFinished
		summary := Summary{Success: session.success, Fail: session.fail, Found: session.found}
		completed, total := session.completed, session.total
		session.mu.Unlock()

		events <- Event{Kind: EventFinished, Completed: completed, Total: total, Summary: &summary}
		close(events)

		o.logger.WithFields(map[string]interface{}{
			"completed": completed,
			"total":     total,
			"success":   summary.Success,
			"fail":      summary.Fail,
			"found":     summary.Found,
		}).Info("Scan finished")
	}()

	return session, events, nil
}

// runTask contains one instrument's analysis. Panics never escape the task
// boundary; they become Failed outcomes.
func (o *Orchestrator) runTask(ctx context.Context, inst market.Quote, cfg Config) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = failOutcome(fmt.Sprintf("分析异常: %v", r))
		}
	}()
	return o.analyzer.Analyze(ctx, inst, cfg)
}

// settle updates counters and emits events for one completed task. The
// session mutex also serializes emission so progress counts on the stream
// are monotonic.
func (o *Orchestrator) settle(session *Session, events chan<- Event, inst market.Quote, outcome Outcome) {
	session.mu.Lock()
	defer session.mu.Unlock()

	session.completed++
	events <- Event{Kind: EventProgress, Completed: session.completed, Total: session.total}

	switch outcome.Kind {
	case OutcomeFound:
		session.success++
		session.found++
		events <- Event{Kind: EventFound, Completed: session.completed, Total: session.total, Result: outcome.Result}
	case OutcomeSkipped:
		// 静默: 无信号不是事件
		session.success++
	case OutcomeFailed:
		session.fail++
		events <- Event{Kind: EventDiagnostic, Completed: session.completed, Total: session.total, Code: inst.Code, Reason: outcome.Reason}
	}
}
