package main

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/shutdown"
)

func TestNotDraining(t *testing.T) {
	coord := shutdown.NewCoordinator(time.Second, zap.NewNop())
	ready := notDraining(coord)

	if !ready() {
		t.Error("ready() = false before shutdown")
	}

	if err := coord.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if ready() {
		t.Error("ready() = true after shutdown began")
	}
}

func TestDBPingerNil(t *testing.T) {
	if p := dbPinger(nil); p != nil {
		t.Errorf("dbPinger(nil) = %v, want untyped nil", p)
	}
}
