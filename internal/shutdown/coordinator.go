// Package shutdown coordinates graceful teardown of server components in
// ordered phases: stop accepting work, drain in-flight requests, close
// clients, then release infrastructure like database pools.
package shutdown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stopper is anything that can be shut down as part of the coordinated sequence.
type Stopper interface {
	Name() string
	Shutdown(ctx context.Context) error
}

// StopperFunc adapts a function to the Stopper interface.
type StopperFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewStopperFunc(name string, fn func(ctx context.Context) error) *StopperFunc {
	return &StopperFunc{name: name, fn: fn}
}

func (s *StopperFunc) Name() string { return s.name }

func (s *StopperFunc) Shutdown(ctx context.Context) error { return s.fn(ctx) }

// Phase identifies a stage of the shutdown sequence. Phases run in order;
// stoppers within a phase run concurrently.
type Phase int

const (
	// PhaseDrain stops intake and waits for in-flight work (HTTP server).
	PhaseDrain Phase = iota
	// PhaseStop closes active components (sweepers, email client).
	PhaseStop
	// PhaseRelease frees infrastructure (database pool, log flush).
	PhaseRelease
)

func (p Phase) String() string {
	switch p {
	case PhaseDrain:
		return "drain"
	case PhaseStop:
		return "stop"
	case PhaseRelease:
		return "release"
	default:
		return "unknown"
	}
}

const DefaultTimeout = 30 * time.Second

// Coordinator runs registered stoppers phase by phase on shutdown.
type Coordinator struct {
	mu       sync.Mutex
	stoppers map[Phase][]Stopper

	timeout time.Duration
	logger  *zap.Logger

	begun chan struct{}
	done  chan struct{}
	once  sync.Once
}

func NewCoordinator(timeout time.Duration, logger *zap.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{
		stoppers: make(map[Phase][]Stopper),
		timeout:  timeout,
		logger:   logger,
		begun:    make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Register adds a stopper to a phase. Safe to call until Shutdown begins.
func (c *Coordinator) Register(phase Phase, s Stopper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stoppers[phase] = append(c.stoppers[phase], s)
}

// RegisterFunc registers a plain function under the given name.
func (c *Coordinator) RegisterFunc(phase Phase, name string, fn func(ctx context.Context) error) {
	c.Register(phase, NewStopperFunc(name, fn))
}

// Begun returns a channel closed when shutdown starts. Readiness probes use
// it to start failing before the listener closes.
func (c *Coordinator) Begun() <-chan struct{} {
	return c.begun
}

// Shutdown runs the full sequence once and blocks until it completes or the
// caller's context is done. The sequence itself always gets the configured
// timeout, independent of the caller's context.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		close(c.begun)
		go c.run()
	})

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) run() {
	defer close(c.done)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	c.logger.Info("starting graceful shutdown", zap.Duration("timeout", c.timeout))

	var failed int
	for _, phase := range []Phase{PhaseDrain, PhaseStop, PhaseRelease} {
		c.mu.Lock()
		stoppers := c.stoppers[phase]
		c.mu.Unlock()

		if len(stoppers) == 0 {
			continue
		}

		c.logger.Info("shutdown phase",
			zap.String("phase", phase.String()),
			zap.Int("stoppers", len(stoppers)),
		)

		failed += c.runPhase(ctx, phase, stoppers)

		if ctx.Err() != nil {
			c.logger.Error("shutdown timeout exceeded",
				zap.String("phase", phase.String()),
				zap.Error(ctx.Err()),
			)
			break
		}
	}

	if failed > 0 {
		c.logger.Error("shutdown completed with errors", zap.Int("failed", failed))
	} else {
		c.logger.Info("graceful shutdown complete")
	}
}

func (c *Coordinator) runPhase(ctx context.Context, phase Phase, stoppers []Stopper) int {
	var wg sync.WaitGroup
	errCh := make(chan error, len(stoppers))

	for _, s := range stoppers {
		wg.Add(1)
		go func(s Stopper) {
			defer wg.Done()

			start := time.Now()
			if err := s.Shutdown(ctx); err != nil {
				c.logger.Error("stopper failed",
					zap.String("stopper", s.Name()),
					zap.String("phase", phase.String()),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
				errCh <- fmt.Errorf("%s: %w", s.Name(), err)
				return
			}
			c.logger.Debug("stopper done",
				zap.String("stopper", s.Name()),
				zap.String("phase", phase.String()),
				zap.Duration("duration", time.Since(start)),
			)
		}(s)
	}

	wg.Wait()
	close(errCh)
	return len(errCh)
}
