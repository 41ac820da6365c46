package orchestrator

import (
	"errors"
	"testing"

	"github.com/ShayCichocki/orgmux/internal/worker"
)

func TestWorkerRegistry_Register(t *testing.T) {
	r := NewWorkerRegistry()
	if err := r.Register(worker.NewEcho("finance")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	if _, ok := r.Lookup("finance"); !ok {
		t.Error("Lookup(finance) should find the registered worker")
	}
}

func TestWorkerRegistry_RejectsDuplicateRole(t *testing.T) {
	r := NewWorkerRegistry()
	if err := r.Register(worker.NewEcho("finance")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := r.Register(worker.NewEcho("finance"))
	if !errors.Is(err, ErrDuplicateRole) {
		t.Errorf("Register() duplicate error = %v, want ErrDuplicateRole", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count() after duplicate = %d, want 1", r.Count())
	}
}

func TestWorkerRegistry_RolesInOrder(t *testing.T) {
	r := NewWorkerRegistry()
	roles := []string{"finance", "devops", "support"}
	for _, role := range roles {
		if err := r.Register(worker.NewEcho(role)); err != nil {
			t.Fatalf("Register(%s) error = %v", role, err)
		}
	}

	got := r.RolesInOrder()
	for i, role := range roles {
		if got[i] != role {
			t.Errorf("RolesInOrder()[%d] = %s, want %s", i, got[i], role)
		}
	}
}

func TestWorkerRegistry_AcquireRelease(t *testing.T) {
	r := NewWorkerRegistry()
	if err := r.Register(worker.NewEcho("ops")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if !r.Acquire("ops") {
		t.Fatal("Acquire() on idle worker should succeed")
	}
	if !r.IsBusy("ops") {
		t.Error("IsBusy() after Acquire should be true")
	}
	if r.Acquire("ops") {
		t.Error("Acquire() on busy worker should fail")
	}

	r.Release("ops")
	if r.IsBusy("ops") {
		t.Error("IsBusy() after Release should be false")
	}
	if !r.Acquire("ops") {
		t.Error("Acquire() after Release should succeed")
	}
}

func TestWorkerRegistry_AcquireUnknownRole(t *testing.T) {
	r := NewWorkerRegistry()
	if r.Acquire("ghost") {
		t.Error("Acquire() on unknown role should fail")
	}
	// Release on an unknown role is a no-op, not a panic.
	r.Release("ghost")
}

func TestWorkerRegistry_BusyStates(t *testing.T) {
	r := NewWorkerRegistry()
	r.Register(worker.NewEcho("a"))
	r.Register(worker.NewEcho("b"))
	r.Acquire("a")

	states := r.BusyStates()
	if !states["a"] || states["b"] {
		t.Errorf("BusyStates() = %v, want a busy and b idle", states)
	}
}
