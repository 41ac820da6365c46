package orchestrator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ShayCichocki/orgmux/internal/worker"
)

// ErrDuplicateRole is returned when a worker's role is already registered.
var ErrDuplicateRole = errors.New("role already registered")

// WorkerRegistry manages the pool of registered workers and their busy
// state. Workers are scanned in registration order during scheduling. The
// registry is shared with the workflow engine, which performs its own
// bookkeeping and never touches busy flags.
type WorkerRegistry struct {
	// order holds roles in registration order.
	order []string
	// workers maps a role to its worker.
	workers map[string]worker.Worker
	// busy maps a role to whether its worker has a task in flight.
	busy map[string]bool
	// mu protects all fields.
	mu sync.RWMutex
}

// NewWorkerRegistry creates an empty WorkerRegistry.
func NewWorkerRegistry() *WorkerRegistry {
	return &WorkerRegistry{
		workers: make(map[string]worker.Worker),
		busy:    make(map[string]bool),
	}
}

// Register adds a worker to the pool. Registering a second worker for the
// same role is rejected with ErrDuplicateRole.
func (r *WorkerRegistry) Register(w worker.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := w.Role()
	if _, exists := r.workers[role]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRole, role)
	}
	r.workers[role] = w
	r.busy[role] = false
	r.order = append(r.order, role)
	return nil
}

// Lookup returns the worker for the given role.
func (r *WorkerRegistry) Lookup(role string) (worker.Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[role]
	return w, ok
}

// RolesInOrder returns the registered roles in registration order.
func (r *WorkerRegistry) RolesInOrder() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// IsBusy returns whether the role's worker has a task in flight.
func (r *WorkerRegistry) IsBusy(role string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.busy[role]
}

// Acquire marks the role's worker busy. Returns false if the role is
// unknown or the worker already has a task in flight.
func (r *WorkerRegistry) Acquire(role string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workers[role]; !ok {
		return false
	}
	if r.busy[role] {
		return false
	}
	r.busy[role] = true
	return true
}

// Release marks the role's worker idle again.
func (r *WorkerRegistry) Release(role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workers[role]; ok {
		r.busy[role] = false
	}
}

// BusyStates returns a snapshot of per-role busy flags.
func (r *WorkerRegistry) BusyStates() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.busy))
	for role, b := range r.busy {
		out[role] = b
	}
	return out
}

// Count returns the number of registered workers.
func (r *WorkerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}
