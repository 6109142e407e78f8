package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockIndexChecker struct {
	err error
}

func (m *mockIndexChecker) CheckIndex(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockIndexChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["search_index"] != CheckOK {
		t.Errorf("expected search_index %q, got %q", CheckOK, r.Checks["search_index"])
	}
}

func TestCheck_IndexError(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockIndexChecker{err: errors.New("unknown index")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["search_index"] != CheckError {
		t.Errorf("expected search_index %q, got %q", CheckError, r.Checks["search_index"])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockDBPinger{err: errors.New("db down")},
		&mockIndexChecker{err: errors.New("db down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NilIndexChecker(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["search_index"]; ok {
		t.Error("search_index check should be absent when checker is nil")
	}
}

func TestCheck_NilIndexChecker_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheck_Timeout(t *testing.T) {
	svc := New(slowPinger{}, &mockIndexChecker{}).WithTimeout(10 * time.Millisecond)

	start := time.Now()
	r := svc.Check(context.Background())

	if time.Since(start) > time.Second {
		t.Error("slow check must be cut off by the timeout")
	}
	if r.Checks["database"] != CheckError || r.Status != Degraded {
		t.Errorf("unexpected report: %+v", r)
	}
}
