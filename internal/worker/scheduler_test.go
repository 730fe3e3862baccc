package worker

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestScheduler(t *testing.T, scanSpec, missingSpec string) (*Scheduler, error) {
	t.Helper()
	engine := NewAttendanceEngine(nil, nil, nil, NewLogDispatcher(zerolog.Nop()), testRules, zerolog.Nop())
	return NewScheduler(engine, scanSpec, missingSpec, zerolog.Nop())
}

func TestNewSchedulerRegistersJobs(t *testing.T) {
	s, err := newTestScheduler(t, "0 6 * * *", "0 * * * *")
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if len(s.jobs) != 2 {
		t.Errorf("registered %d jobs, want 2", len(s.jobs))
	}
	for _, name := range []string{"full_scan", "missing_attendance"} {
		if _, ok := s.jobs[name]; !ok {
			t.Errorf("job %q not registered", name)
		}
	}
}

func TestNewSchedulerInvalidSpec(t *testing.T) {
	if _, err := newTestScheduler(t, "not a cron spec", "0 * * * *"); err == nil {
		t.Error("NewScheduler() with bad scan spec, want error")
	}
	if _, err := newTestScheduler(t, "0 6 * * *", "also broken"); err == nil {
		t.Error("NewScheduler() with bad missing spec, want error")
	}
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	s, err := newTestScheduler(t, "0 6 * * *", "0 * * * *")
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if s.state != stateStopped {
		t.Fatalf("new scheduler state = %v, want stopped", s.state)
	}

	s.Start()
	s.Start() // second Start is a no-op
	if s.state != stateRunning {
		t.Fatalf("state after Start = %v, want running", s.state)
	}

	s.Stop()
	s.Stop() // second Stop is a no-op
	if s.state != stateStopped {
		t.Fatalf("state after Stop = %v, want stopped", s.state)
	}

	// The scheduler can be restarted after a stop.
	s.Start()
	if s.state != stateRunning {
		t.Fatalf("state after restart = %v, want running", s.state)
	}
	s.Stop()
}
