package orchestrator

import (
	"testing"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

func TestPendingQueue_OrdersByScoreDescending(t *testing.T) {
	q := &pendingQueue{}
	q.push(&models.Task{ID: "low", Score: 25})
	q.push(&models.Task{ID: "high", Score: 90})
	q.push(&models.Task{ID: "mid", Score: 50})

	got := q.tasks()
	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("queue[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestPendingQueue_TiesPreserveArrivalOrder(t *testing.T) {
	q := &pendingQueue{}
	q.push(&models.Task{ID: "first", Score: 50})
	q.push(&models.Task{ID: "second", Score: 50})
	q.push(&models.Task{ID: "third", Score: 50})
	q.push(&models.Task{ID: "winner", Score: 80})

	got := q.tasks()
	want := []string{"winner", "first", "second", "third"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("queue[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestPendingQueue_TakeBestFor(t *testing.T) {
	q := &pendingQueue{}
	q.push(&models.Task{ID: "ops-low", Role: "ops", Score: 20})
	q.push(&models.Task{ID: "finance", Role: "finance", Score: 90})
	q.push(&models.Task{ID: "ops-high", Role: "ops", Score: 70})

	task := q.takeBestFor("ops", nil)
	if task == nil || task.ID != "ops-high" {
		t.Fatalf("takeBestFor(ops) = %v, want ops-high", task)
	}
	if q.depth() != 2 {
		t.Errorf("depth after take = %d, want 2", q.depth())
	}

	// No tasks for an unknown role.
	if task := q.takeBestFor("legal", nil); task != nil {
		t.Errorf("takeBestFor(legal) = %v, want nil", task)
	}
}

func TestPendingQueue_TakeBestForSkipsBlocked(t *testing.T) {
	q := &pendingQueue{}
	q.push(&models.Task{ID: "blocked", Role: "ops", Score: 100, BlockedBy: []string{"t-0"}})
	q.push(&models.Task{ID: "ready", Role: "ops", Score: 10})

	// The blocked task outscores the ready one but must never be selected.
	task := q.takeBestFor("ops", map[string]bool{})
	if task == nil || task.ID != "ready" {
		t.Fatalf("takeBestFor() = %v, want the ready task", task)
	}

	// Once the prerequisite completes, the blocked task becomes eligible.
	task = q.takeBestFor("ops", map[string]bool{"t-0": true})
	if task == nil || task.ID != "blocked" {
		t.Fatalf("takeBestFor() = %v, want the formerly blocked task", task)
	}
}

func TestPendingQueue_EmptyQueue(t *testing.T) {
	q := &pendingQueue{}
	if q.depth() != 0 {
		t.Errorf("depth() = %d, want 0", q.depth())
	}
	if task := q.takeBestFor("ops", nil); task != nil {
		t.Errorf("takeBestFor() on empty queue = %v, want nil", task)
	}
}
