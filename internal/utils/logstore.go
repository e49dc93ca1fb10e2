package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogStore keeps the most recent log lines in a bounded ring so they can be
// served to clients without a serial console.
type LogStore struct {
	mu       sync.Mutex
	lines    []string
	next     int
	full     bool
	capacity int
	lineNo   uint32
}

// NewLogStore creates a store holding at most capacity lines.
func NewLogStore(capacity int) *LogStore {
	if capacity < 1 {
		capacity = 1
	}
	return &LogStore{
		lines:    make([]string, capacity),
		capacity: capacity,
	}
}

// Install attaches the store to the global Logger.
func (s *LogStore) Install() {
	Logger.AddHook(s)
}

// Uninstall detaches the store from the global Logger, keeping other hooks.
func (s *LogStore) Uninstall() {
	kept := make(logrus.LevelHooks)
	for level, hooks := range Logger.ReplaceHooks(make(logrus.LevelHooks)) {
		for _, h := range hooks {
			if h != logrus.Hook(s) {
				kept[level] = append(kept[level], h)
			}
		}
	}
	Logger.ReplaceHooks(kept)
}

func (s *LogStore) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (s *LogStore) Fire(entry *logrus.Entry) error {
	s.Append(fmt.Sprintf("%s %s %s",
		entry.Time.Format(time.RFC3339),
		strings.ToUpper(entry.Level.String()),
		entry.Message))
	return nil
}

// Append adds a line, evicting the oldest one when the ring is full.
func (s *LogStore) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lineNo++
	s.lines[s.next] = fmt.Sprintf("%d: %s", s.lineNo, line)
	s.next = (s.next + 1) % s.capacity
	if s.next == 0 {
		s.full = true
	}
}

// Messages returns a copy of the stored lines, oldest first.
func (s *LogStore) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.next
	start := 0
	if s.full {
		count = s.capacity
		start = s.next
	}

	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if line := s.lines[(start+i)%s.capacity]; line != "" {
			result = append(result, line)
		}
	}
	return result
}

// Len reports how many lines are stored.
func (s *LogStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.full {
		return s.capacity
	}
	return s.next
}
