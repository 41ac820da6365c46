package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/orgmux/internal/worker"
	"github.com/ShayCichocki/orgmux/pkg/models"
)

const (
	// DefaultMaxConcurrent is the global ceiling on simultaneously
	// in-progress tasks.
	DefaultMaxConcurrent = 5
	// DefaultTickInterval is how often the run loop invokes Tick.
	DefaultTickInterval = 5 * time.Second
	// DefaultRetryLimit is the number of execution attempts before a task is
	// marked permanently failed.
	DefaultRetryLimit = 3
	// retryScoreDecay is subtracted from a task's score on each failure.
	retryScoreDecay = 20
	// defaultEventBuffer is the emitter channel capacity.
	defaultEventBuffer = 256
)

// Store is the optional persistence collaborator. The orchestrator functions
// entirely in memory when no store is configured; store errors are logged
// and never block scheduling.
type Store interface {
	// SaveTask inserts or updates a task.
	SaveTask(task *models.Task) error
	// UpdateTaskStatus updates a task's lifecycle fields.
	UpdateTaskStatus(id string, status models.TaskStatus, score, retryCount int, taskErr string) error
	// LoadPendingTasks returns tasks that were pending or queued when last saved.
	LoadPendingTasks() ([]*models.Task, error)
	// SaveEscalation inserts an escalation record.
	SaveEscalation(record *models.EscalationRecord) error
	// ResolveEscalationRecord marks a record resolved with the decision.
	ResolveEscalationRecord(id, decision string, resolvedAt time.Time) error
}

// historyEntry records a terminal task transition for the summary surface.
type historyEntry struct {
	taskID string
	role   string
	status models.TaskStatus
	at     time.Time
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*Orchestrator)

// WithMaxConcurrent sets the global ceiling on in-progress tasks.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithTickInterval sets the run loop's scheduling interval.
func WithTickInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.tickInterval = d
		}
	}
}

// WithRetryLimit sets the number of attempts before permanent failure.
func WithRetryLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.retryLimit = n
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithStore sets the persistence collaborator.
func WithStore(s Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithEventBuffer sets the emitter channel capacity.
func WithEventBuffer(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

// Orchestrator owns the task lifecycle and the scheduling loop. All mutable
// scheduling state (pending queue, in-progress set, history, escalations) is
// guarded by a single mutex so that Tick, Complete, and Fail observe a
// consistent snapshot.
type Orchestrator struct {
	registry *WorkerRegistry
	emitter  *EventEmitter
	logger   *DebugLogger
	store    Store
	now      func() time.Time

	maxConcurrent int
	tickInterval  time.Duration
	retryLimit    int
	eventBuffer   int

	mu           sync.Mutex
	queue        pendingQueue
	inProgress   map[string]*models.Task
	completedIDs map[string]bool
	history      []historyEntry
	escalations  []*models.EscalationRecord
	escByID      map[string]*models.EscalationRecord

	// run loop state
	loopMu   sync.Mutex
	stopLoop context.CancelFunc
	loopDone chan struct{}
}

// New creates an Orchestrator with the given options.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:      NewWorkerRegistry(),
		logger:        NopLogger(),
		now:           time.Now,
		maxConcurrent: DefaultMaxConcurrent,
		tickInterval:  DefaultTickInterval,
		retryLimit:    DefaultRetryLimit,
		eventBuffer:   defaultEventBuffer,
		inProgress:    make(map[string]*models.Task),
		completedIDs:  make(map[string]bool),
		escByID:       make(map[string]*models.EscalationRecord),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.emitter = NewEventEmitter(o.eventBuffer)
	return o
}

// Registry returns the worker registry, shared with the workflow engine.
func (o *Orchestrator) Registry() *WorkerRegistry {
	return o.registry
}

// Events returns the orchestrator's observable event stream.
func (o *Orchestrator) Events() <-chan Event {
	return o.emitter.Events()
}

// Register adds a worker to the pool. Duplicate roles are rejected.
func (o *Orchestrator) Register(w worker.Worker) error {
	if err := o.registry.Register(w); err != nil {
		return err
	}
	o.logger.Log("[orchestrator] registered worker for role %s", w.Role())
	return nil
}

// Enqueue computes the task's priority score and inserts it into the
// pending queue. Missing identity and timestamps are filled in.
func (o *Orchestrator) Enqueue(task *models.Task) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = o.now()
	}
	if !task.Priority.Valid() {
		task.Priority = models.PriorityMedium
	}

	o.mu.Lock()
	task.Score = models.Score(task, o.now(), o.completedIDs)
	task.Status = models.TaskStatusQueued
	o.queue.push(task)
	depth := o.queue.depth()
	o.mu.Unlock()

	o.persistSave(task)
	o.logger.Log("[orchestrator] queued task %s for role %s (score=%d, depth=%d)",
		task.ID, task.Role, task.Score, depth)
	o.emitter.Emit(Event{
		Type:      EventTaskQueued,
		TaskID:    task.ID,
		Role:      task.Role,
		Task:      task,
		Message:   fmt.Sprintf("task queued with score %d", task.Score),
		Timestamp: o.now(),
	})
}

// Tick runs one scheduling step: workers are scanned in registration order
// and each idle worker receives the highest-scored ready task for its role,
// up to the global concurrency ceiling. Returns the number of tasks
// dispatched. Calling Tick with no ready work is a no-op.
func (o *Orchestrator) Tick(ctx context.Context) int {
	dispatched := 0
	for _, role := range o.registry.RolesInOrder() {
		if o.registry.IsBusy(role) {
			continue
		}

		o.mu.Lock()
		if len(o.inProgress) >= o.maxConcurrent {
			o.mu.Unlock()
			break
		}
		task := o.queue.takeBestFor(role, o.completedIDs)
		if task == nil {
			o.mu.Unlock()
			continue
		}
		if !o.registry.Acquire(role) {
			// Lost a race with a direct dispatch; put the task back.
			o.queue.push(task)
			o.mu.Unlock()
			continue
		}
		task.Status = models.TaskStatusInProgress
		o.inProgress[task.ID] = task
		o.mu.Unlock()

		o.persistStatus(task)
		o.logger.Log("[orchestrator] assigned task %s to role %s", task.ID, role)
		o.emitter.Emit(Event{
			Type:      EventTaskAssigned,
			TaskID:    task.ID,
			Role:      role,
			Task:      task,
			Timestamp: o.now(),
		})

		w, _ := o.registry.Lookup(role)
		go o.execute(ctx, w, task)
		dispatched++
	}
	return dispatched
}

// execute runs a dispatched task on its worker and routes the outcome.
func (o *Orchestrator) execute(ctx context.Context, w worker.Worker, task *models.Task) {
	result, err := w.ProcessTask(ctx, task)
	if err != nil {
		o.emitter.Emit(Event{
			Type:      EventWorkerError,
			TaskID:    task.ID,
			Role:      task.Role,
			Error:     err,
			Timestamp: o.now(),
		})
		o.Fail(task, err)
		return
	}
	o.Complete(task, result)
}

// Complete marks the task terminal, appends it to history, and acts on any
// handoff or escalation signal in the result. A result carrying an
// escalation signal ends the task in escalated status instead of completed.
func (o *Orchestrator) Complete(task *models.Task, result *models.TaskResult) {
	if result == nil {
		result = &models.TaskResult{}
	}

	status := models.TaskStatusCompleted
	if result.Escalation != nil {
		status = models.TaskStatusEscalated
	}

	now := o.now()
	o.mu.Lock()
	delete(o.inProgress, task.ID)
	task.Status = status
	task.CompletedAt = &now
	if status == models.TaskStatusCompleted {
		o.completedIDs[task.ID] = true
	}
	o.history = append(o.history, historyEntry{taskID: task.ID, role: task.Role, status: status, at: now})
	o.mu.Unlock()
	o.registry.Release(task.Role)

	o.persistStatus(task)

	if result.Escalation != nil {
		o.Escalate(task, task.Role, result.Escalation)
	} else {
		o.logger.Log("[orchestrator] task %s completed by role %s", task.ID, task.Role)
		o.emitter.Emit(Event{
			Type:      EventTaskCompleted,
			TaskID:    task.ID,
			Role:      task.Role,
			Task:      task,
			Result:    result,
			Timestamp: now,
		})
	}

	if result.Handoff != nil {
		h := result.Handoff
		fromRole := h.FromRole
		if fromRole == "" {
			fromRole = task.Role
		}
		o.Handoff(fromRole, h.ToRole, h.Context, h.Priority, task)
	}
}

// Fail handles a task execution failure. Below the retry limit the task is
// re-queued with its score decayed by 20 (clamped at 0); at the limit it is
// marked permanently failed.
func (o *Orchestrator) Fail(task *models.Task, taskErr error) {
	o.mu.Lock()
	delete(o.inProgress, task.ID)
	task.RetryCount++
	task.Score -= retryScoreDecay
	if task.Score < 0 {
		task.Score = 0
	}
	if taskErr != nil {
		task.Error = taskErr.Error()
	}
	retry := task.RetryCount < o.retryLimit
	if retry {
		task.Status = models.TaskStatusQueued
		o.queue.push(task)
	} else {
		now := o.now()
		task.Status = models.TaskStatusFailed
		task.CompletedAt = &now
		o.history = append(o.history, historyEntry{taskID: task.ID, role: task.Role, status: models.TaskStatusFailed, at: now})
	}
	o.mu.Unlock()
	o.registry.Release(task.Role)

	o.persistStatus(task)

	if retry {
		o.logger.Log("[orchestrator] task %s failed (attempt %d/%d), re-queued with score %d: %v",
			task.ID, task.RetryCount, o.retryLimit, task.Score, taskErr)
		o.emitter.Emit(Event{
			Type:      EventTaskRetried,
			TaskID:    task.ID,
			Role:      task.Role,
			Task:      task,
			Error:     taskErr,
			Message:   fmt.Sprintf("retry %d of %d", task.RetryCount, o.retryLimit),
			Timestamp: o.now(),
		})
		return
	}

	o.logger.Log("[orchestrator] task %s permanently failed after %d attempts: %v",
		task.ID, task.RetryCount, taskErr)
	o.emitter.Emit(Event{
		Type:      EventTaskFailed,
		TaskID:    task.ID,
		Role:      task.Role,
		Task:      task,
		Error:     taskErr,
		Timestamp: o.now(),
	})
}

// Handoff synthesizes a new task for toRole carrying the handoff context and
// enqueues it. The synthesized task uses the requested priority when one is
// given, otherwise the origin task's tier, otherwise medium. The originating
// task is not mutated.
func (o *Orchestrator) Handoff(fromRole, toRole, handoffContext string, priority models.Priority, origin *models.Task) *models.Task {
	task := &models.Task{
		ID:          uuid.NewString(),
		Description: handoffContext,
		Role:        toRole,
		Priority:    models.PriorityMedium,
		CreatedAt:   o.now(),
		Metadata: map[string]string{
			"handoff_from": fromRole,
		},
	}
	if origin != nil {
		task.Metadata["origin_task"] = origin.ID
		if origin.Priority.Valid() {
			task.Priority = origin.Priority
		}
	}
	if priority.Valid() {
		task.Priority = priority
	}

	o.Enqueue(task)

	originID := ""
	if origin != nil {
		originID = origin.ID
	}
	o.logger.Log("[orchestrator] handoff %s -> %s created task %s (origin %s)",
		fromRole, toRole, task.ID, originID)
	o.emitter.Emit(Event{
		Type:          EventHandoffCreated,
		TaskID:        originID,
		Role:          fromRole,
		HandoffTaskID: task.ID,
		Message:       fmt.Sprintf("handoff from %s to %s", fromRole, toRole),
		Timestamp:     o.now(),
	})
	return task
}

// Escalate creates a pending EscalationRecord from the signal and emits an
// escalation event for external handling. Scheduling is not blocked. The
// record tier is the higher of the task's tier and the signal's own, so a
// rule-resolved priority is never lost and never de-escalates the task.
func (o *Orchestrator) Escalate(task *models.Task, role string, sig *models.EscalationSignal) *models.EscalationRecord {
	if sig == nil {
		sig = &models.EscalationSignal{}
	}
	priority := models.PriorityMedium
	if task != nil && task.Priority.Rank() > priority.Rank() {
		priority = task.Priority
	}
	if sig.Priority.Valid() && sig.Priority.Rank() > priority.Rank() {
		priority = sig.Priority
	}

	record := &models.EscalationRecord{
		ID:             uuid.NewString(),
		Role:           role,
		Reason:         sig.Reason,
		Recommendation: sig.Recommendation,
		Priority:       priority,
		Status:         models.EscalationStatusPending,
		CreatedAt:      o.now(),
	}
	if task != nil {
		record.TaskID = task.ID
	}

	o.mu.Lock()
	o.escalations = append(o.escalations, record)
	o.escByID[record.ID] = record
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.SaveEscalation(record); err != nil {
			o.logger.Log("[orchestrator] save escalation %s: %v", record.ID, err)
		}
	}

	o.logger.Log("[orchestrator] escalation %s raised by role %s (%s): %s", record.ID, role, record.Priority, record.Reason)
	o.emitter.Emit(Event{
		Type:      EventEscalation,
		TaskID:    record.TaskID,
		Role:      role,
		Record:    record,
		Message:   record.Reason,
		Timestamp: o.now(),
	})
	return record
}

// ResolveEscalation records the human decision on a pending escalation.
// Unknown or already-resolved records are an idempotent no-op.
func (o *Orchestrator) ResolveEscalation(id, decision string) {
	now := o.now()

	o.mu.Lock()
	record, ok := o.escByID[id]
	if !ok || record.Resolved() {
		o.mu.Unlock()
		return
	}
	record.Status = models.EscalationStatusResolved
	record.Decision = decision
	record.ResolvedAt = &now
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.ResolveEscalationRecord(id, decision, now); err != nil {
			o.logger.Log("[orchestrator] resolve escalation %s: %v", id, err)
		}
	}

	o.logger.Log("[orchestrator] escalation %s resolved: %s", id, decision)
	o.emitter.Emit(Event{
		Type:      EventEscalationResolved,
		TaskID:    record.TaskID,
		Role:      record.Role,
		Record:    record,
		Message:   decision,
		Timestamp: now,
	})
}

// PendingEscalations returns the unresolved escalation records, oldest first.
func (o *Orchestrator) PendingEscalations() []*models.EscalationRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []*models.EscalationRecord
	for _, record := range o.escalations {
		if !record.Resolved() {
			out = append(out, record)
		}
	}
	return out
}

// RestorePending loads tasks the store considered pending and re-queues
// them. Without a store this is a no-op.
func (o *Orchestrator) RestorePending() error {
	if o.store == nil {
		return nil
	}
	tasks, err := o.store.LoadPendingTasks()
	if err != nil {
		return fmt.Errorf("load pending tasks: %w", err)
	}
	for _, task := range tasks {
		o.Enqueue(task)
	}
	o.logger.Log("[orchestrator] restored %d pending tasks from store", len(tasks))
	return nil
}

// persistSave saves the full task, logging store errors.
func (o *Orchestrator) persistSave(task *models.Task) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveTask(task); err != nil {
		o.logger.Log("[orchestrator] save task %s: %v", task.ID, err)
	}
}

// persistStatus updates the task's lifecycle fields, logging store errors.
func (o *Orchestrator) persistStatus(task *models.Task) {
	if o.store == nil {
		return
	}
	if err := o.store.UpdateTaskStatus(task.ID, task.Status, task.Score, task.RetryCount, task.Error); err != nil {
		o.logger.Log("[orchestrator] update task %s status: %v", task.ID, err)
	}
}
