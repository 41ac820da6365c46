package orchestrator

import (
	"sort"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// queueEntry pairs a task with its arrival sequence number. The sequence
// number is the tiebreak for equal scores, keeping ordering deterministic.
type queueEntry struct {
	task *models.Task
	seq  uint64
}

// pendingQueue is the priority-ordered pending task list. It is owned by the
// Orchestrator and guarded by the orchestrator's mutex; the queue itself has
// no locking.
type pendingQueue struct {
	entries []queueEntry
	nextSeq uint64
}

// push inserts a task and re-sorts by descending score, arrival order on ties.
func (q *pendingQueue) push(task *models.Task) {
	q.entries = append(q.entries, queueEntry{task: task, seq: q.nextSeq})
	q.nextSeq++
	sort.SliceStable(q.entries, func(i, j int) bool {
		if q.entries[i].task.Score != q.entries[j].task.Score {
			return q.entries[i].task.Score > q.entries[j].task.Score
		}
		return q.entries[i].seq < q.entries[j].seq
	})
}

// takeBestFor removes and returns the highest-scored ready task assigned to
// the given role, or nil if none is ready.
func (q *pendingQueue) takeBestFor(role string, completed map[string]bool) *models.Task {
	for i, entry := range q.entries {
		if entry.task.Role != role {
			continue
		}
		if !models.Ready(entry.task, completed) {
			continue
		}
		q.entries = append(q.entries[:i], q.entries[i+1:]...)
		return entry.task
	}
	return nil
}

// depth returns the number of queued tasks.
func (q *pendingQueue) depth() int {
	return len(q.entries)
}

// tasks returns the queued tasks in priority order.
func (q *pendingQueue) tasks() []*models.Task {
	out := make([]*models.Task, len(q.entries))
	for i, entry := range q.entries {
		out[i] = entry.task
	}
	return out
}
