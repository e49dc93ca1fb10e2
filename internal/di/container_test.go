package di

import (
	"context"
	"mower-core/internal/config"
	"slices"
	"testing"
	"time"
)

func offlineConfig() *config.Config {
	return &config.Config{
		MowerID:         "test-mower",
		HTTPAddr:        "127.0.0.1:0",
		MQTTTopicPrefix: "mower",
		LogLevel:        "error",
		Tuning:          config.DefaultTuning(),
	}
}

func TestNewContainerOffline(t *testing.T) {
	c, err := NewContainer(offlineConfig())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer c.Cleanup()

	if c.MQTT != nil || c.StatusStore != nil || c.Telemetry != nil {
		t.Error("Expected integrations disabled without configuration")
	}
	if c.Async != nil {
		t.Error("Expected no throttled worker without throttled sinks")
	}

	tasks := c.Loop.Tasks()
	for _, name := range []string{"imu-sample", "control", "sim-step", "status-poll"} {
		if !slices.Contains(tasks, name) {
			t.Errorf("Expected task %s, have %v", name, tasks)
		}
	}

	if c.Controller.ModeName() != "DOCKED" {
		t.Errorf("Expected initial DOCKED, got %s", c.Controller.ModeName())
	}
}

func TestContainerRunsLoop(t *testing.T) {
	c, err := NewContainer(offlineConfig())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer c.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	var accepted bool
	if err := c.Loop.Do(ctx, func() {
		accepted = c.Controller.SetUserChangeableState("PAUSED")
	}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if !accepted {
		t.Fatal("Expected PAUSED to be accepted")
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		var state string
		if err := c.Loop.Do(ctx, func() { state = c.Aggregator.Current().State }); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if state == "PAUSED" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected status poll to pick up PAUSED, have %q", state)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestTransitionPushesImmediately(t *testing.T) {
	c, err := NewContainer(offlineConfig())
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	defer c.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	// same loop turn: no status-poll tick can run in between
	var before, after string
	if err := c.Loop.Do(ctx, func() {
		before = c.Aggregator.Current().State
		c.Controller.SetUserChangeableState("PAUSED")
		after = c.Aggregator.Current().State
	}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if before == "PAUSED" {
		t.Fatalf("Expected a state other than PAUSED before the change")
	}
	if after != "PAUSED" {
		t.Errorf("Expected snapshot to follow the transition, have %q", after)
	}
}
