package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/clock"
)

var errBoom = errors.New("boom")

func newTestBreaker(t *testing.T, mock *clock.Mock) *CircuitBreaker {
	t.Helper()
	return New("test", &Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		OpenTimeout:         30 * time.Second,
		HalfOpenMaxRequests: 2,
		Clock:               mock,
	}, zap.NewNop())
}

func fail(ctx context.Context) error { return errBoom }

func succeed(ctx context.Context) error { return nil }

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(t, mock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, fail); !errors.Is(err, errBoom) {
			t.Fatalf("Execute %d error = %v, expected errBoom", i, err)
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, expected open", cb.State())
	}

	if err := cb.Execute(ctx, succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute while open error = %v, expected ErrCircuitOpen", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(t, mock)
	ctx := context.Background()

	cb.Execute(ctx, fail)
	cb.Execute(ctx, fail)
	cb.Execute(ctx, succeed)
	cb.Execute(ctx, fail)
	cb.Execute(ctx, fail)

	if cb.State() != StateClosed {
		t.Errorf("state = %v, expected closed", cb.State())
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(t, mock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, fail)
	}
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, expected open", cb.State())
	}

	mock.Advance(31 * time.Second)

	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, expected half-open", cb.State())
	}

	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("second probe error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state = %v, expected closed after recovery", cb.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(t, mock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, fail)
	}
	mock.Advance(31 * time.Second)

	if err := cb.Execute(ctx, fail); !errors.Is(err, errBoom) {
		t.Fatalf("probe error = %v, expected errBoom", err)
	}
	if cb.State() != StateOpen {
		t.Errorf("state = %v, expected reopened", cb.State())
	}
}

func TestCanceledContextDoesNotCount(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(t, mock)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		cb.Execute(ctx, func(ctx context.Context) error {
			return context.Canceled
		})
	}

	if cb.State() != StateClosed {
		t.Errorf("state = %v, expected closed after cancellations", cb.State())
	}
}

func TestOnStateChange(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	var transitions []State
	cb := New("test", &Config{
		FailureThreshold:    1,
		SuccessThreshold:    1,
		OpenTimeout:         time.Second,
		HalfOpenMaxRequests: 1,
		Clock:               mock,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, to)
		},
	}, zap.NewNop())
	ctx := context.Background()

	cb.Execute(ctx, fail)
	mock.Advance(2 * time.Second)
	cb.Execute(ctx, succeed)

	want := []State{StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, expected %v", transitions, want)
	}
	for i, s := range want {
		if transitions[i] != s {
			t.Errorf("transition %d = %v, expected %v", i, transitions[i], s)
		}
	}
}

func TestStats(t *testing.T) {
	mock := clock.NewMock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	cb := newTestBreaker(t, mock)
	ctx := context.Background()

	cb.Execute(ctx, succeed)
	cb.Execute(ctx, fail)

	stats := cb.Stats()
	if stats.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, expected 2", stats.TotalRequests)
	}
	if stats.TotalSuccesses != 1 {
		t.Errorf("TotalSuccesses = %d, expected 1", stats.TotalSuccesses)
	}
	if stats.TotalFailures != 1 {
		t.Errorf("TotalFailures = %d, expected 1", stats.TotalFailures)
	}
	if stats.State != "closed" {
		t.Errorf("State = %q, expected closed", stats.State)
	}
}
