package utils

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestThrottle(t *testing.T) {
	th := NewThrottle(10)

	if !th.Allow(3) {
		t.Fatalf("Expected first push to pass")
	}
	if th.Allow(12) {
		t.Errorf("Expected push 9s later to be throttled")
	}
	if !th.Allow(13) {
		t.Errorf("Expected push 10s later to pass")
	}
	if th.Allow(22) {
		t.Errorf("Expected window to restart at the last accepted push")
	}
	if !th.Allow(23) {
		t.Errorf("Expected push 10s after the last accepted one to pass")
	}
}

func TestLogStoreRing(t *testing.T) {
	store := NewLogStore(3)

	for _, line := range []string{"a", "b", "c", "d"} {
		store.Append(line)
	}

	msgs := store.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	want := []string{"2: b", "3: c", "4: d"}
	for i, w := range want {
		if msgs[i] != w {
			t.Errorf("message %d: got '%s', want '%s'", i, msgs[i], w)
		}
	}
	if store.Len() != 3 {
		t.Errorf("Expected Len 3, got %d", store.Len())
	}
}

func TestLogStorePartial(t *testing.T) {
	store := NewLogStore(5)
	store.Append("only")

	msgs := store.Messages()
	if len(msgs) != 1 || msgs[0] != "1: only" {
		t.Errorf("Unexpected messages: %v", msgs)
	}
}

func TestLogStoreHook(t *testing.T) {
	store := NewLogStore(10)
	store.Install()
	defer store.Uninstall()

	prev := Logger.GetLevel()
	defer Logger.SetLevel(prev)
	Logger.SetLevel(logrus.InfoLevel)

	Logger.Info("hook check")

	msgs := store.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 captured line, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0], "INFO hook check") {
		t.Errorf("Unexpected line: %s", msgs[0])
	}

	store.Uninstall()
	Logger.Info("after uninstall")
	if store.Len() != 1 {
		t.Errorf("Expected no capture after uninstall, got %d lines", store.Len())
	}
}

func TestSetupLogger(t *testing.T) {
	prev := Logger.GetLevel()
	defer Logger.SetLevel(prev)

	if !SetupLogger("debug") || LogLevel() != "debug" {
		t.Errorf("Expected debug level, got %s", LogLevel())
	}
	if SetupLogger("verbose") {
		t.Errorf("Expected unknown level to report false")
	}
	if LogLevel() != "info" {
		t.Errorf("Expected fallback to info, got %s", LogLevel())
	}
}
