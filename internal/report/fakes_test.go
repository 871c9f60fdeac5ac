package report_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/ai"
)

// fakeAPI serves fixed snapshots and records mutating calls.
type fakeAPI struct {
	mu        sync.Mutex
	baseURL   string
	roster    []adminapi.Player
	detailed  map[string]adminapi.DetailedPlayer
	profiles  map[string]*adminapi.Profile
	stats     map[string]*adminapi.LiveStats
	logs      []adminapi.LogEntry
	rosterErr error
	calls     []string
}

var _ adminapi.API = (*fakeAPI)(nil)

func (f *fakeAPI) record(format string, args ...any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fmt.Sprintf(format, args...))

	return true, nil
}

func (f *fakeAPI) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Roster(context.Context) ([]adminapi.Player, error) {
	return f.roster, f.rosterErr
}

func (f *fakeAPI) DetailedRoster(context.Context) (map[string]adminapi.DetailedPlayer, error) {
	return f.detailed, nil
}

func (f *fakeAPI) Profile(_ context.Context, playerID string) (*adminapi.Profile, error) {
	if p, ok := f.profiles[playerID]; ok {
		return p, nil
	}

	return nil, adminapi.ErrPlayerNotFound
}

func (f *fakeAPI) LiveStats(_ context.Context, playerID string) (*adminapi.LiveStats, error) {
	if s, ok := f.stats[playerID]; ok {
		return s, nil
	}

	return nil, adminapi.ErrPlayerNotFound
}

func (f *fakeAPI) Kick(_ context.Context, name, playerID, reason string) (bool, error) {
	return f.record("kick(%s,%s,%s)", name, playerID, reason)
}

func (f *fakeAPI) TempBan(_ context.Context, name, playerID string, hours int, reason string) (bool, error) {
	return f.record("temp_ban(%s,%s,%d,%s)", name, playerID, hours, reason)
}

func (f *fakeAPI) PermaBan(_ context.Context, name, playerID, reason string) (bool, error) {
	return f.record("perma_ban(%s,%s,%s)", name, playerID, reason)
}

func (f *fakeAPI) AddBlacklist(_ context.Context, playerID, reason string) (bool, error) {
	return f.record("add_blacklist(%s,%s)", playerID, reason)
}

func (f *fakeAPI) MessagePlayer(_ context.Context, name, playerID, text string) (bool, error) {
	return f.record("message_player(%s,%s,%s)", name, playerID, text)
}

func (f *fakeAPI) PostComment(_ context.Context, playerID, text string) (bool, error) {
	return f.record("post_comment(%s,%s)", playerID, text)
}

func (f *fakeAPI) StructuredLogs(context.Context, int, adminapi.LogFilter) ([]adminapi.LogEntry, error) {
	return f.logs, nil
}

// fakeClassifier returns a fixed classification and counts calls.
type fakeClassifier struct {
	mu       sync.Mutex
	result   ai.Classification
	texts    []string
	detected int
}

func (f *fakeClassifier) Classify(_ context.Context, text, _ string) ai.Classification {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.texts = append(f.texts, text)

	return f.result
}

func (f *fakeClassifier) DetectLanguage(context.Context, string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.detected++

	return "en"
}

func (f *fakeClassifier) classified() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.texts...)
}

// stubWriter returns "<action>:<reason>" as the sanction text.
type stubWriter struct{}

func (stubWriter) SanctionMessage(_ context.Context, req ai.SanctionRequest) string {
	return string(req.Action) + ":" + req.Reason
}
