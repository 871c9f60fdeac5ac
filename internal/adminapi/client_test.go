package adminapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordedRequest captures what the fake admin API received.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()

	fake := &fakeServer{routes: make(map[string]func(w http.ResponseWriter))}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if len(raw) > 0 {
			_ = sonic.Unmarshal(raw, &rec.Body)
		}

		fake.mu.Lock()
		fake.requests = append(fake.requests, rec)
		route, ok := fake.routes[r.URL.Path]
		fake.mu.Unlock()

		if !ok {
			writeJSON(w, `{"result": true, "failed": false}`)
			return
		}

		route(w)
	}))
	t.Cleanup(srv.Close)

	return fake, srv
}

func (f *fakeServer) handle(path, body string) {
	f.routes[path] = func(w http.ResponseWriter) { writeJSON(w, body) }
}

func (f *fakeServer) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func newEndpoint(t *testing.T, srv *httptest.Server) *adminapi.Endpoint {
	t.Helper()

	client := adminapi.NewClient("secret", 5*time.Second, zap.NewNop())
	client.SetRetryOptions(utils.RetryOptions{
		MaxElapsedTime:  time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxRetries:      2,
	})
	t.Cleanup(client.Close)

	return client.At(srv.URL + "/")
}

func TestRoster(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_players", `{"result": [
		{"player_id": "7656", "name": "Kevin"},
		{"player_id": "7657", "name": "Ivan"}
	], "failed": false}`)

	players, err := newEndpoint(t, srv).Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)

	assert.Equal(t, adminapi.Player{PlayerID: "7656", Name: "Kevin"}, players[0])
	assert.Equal(t, "Bearer secret", fake.last().Auth)
}

func TestDetailedRoster(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_detailed_players", `{"result": {"players": {
		"1": {"player_id": "1", "name": "Anna", "team": "Allies", "unit_name": "able", "role": "Officer"},
		"2": {"player_id": "2", "name": "Ben", "team": "Allies", "unit_name": "able", "role": "rifleman"}
	}}, "failed": false}`)

	players, err := newEndpoint(t, srv).DetailedRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)

	assert.True(t, players["1"].IsLeader())
	assert.False(t, players["2"].IsLeader())
	assert.Equal(t, "able", players["2"].UnitName)
}

func TestProfileSendsPlayerID(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_player_profile", `{"result": {
		"player_id": "42", "total_playtime_seconds": 7300, "sessions_count": 3,
		"names": [{"name": "Old"}]
	}}`)

	profile, err := newEndpoint(t, srv).Profile(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, 2, profile.PlaytimeHours())
	assert.Equal(t, 3, profile.SessionsCount)
	assert.Equal(t, "player_id=42", fake.last().Query)
}

func TestLiveStatsPicksPlayer(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_live_game_stats", `{"result": {"stats": [
		{"player_id": "1", "player": "Anna", "kills": 3},
		{"player_id": "2", "player": "Ben", "kills": 9, "teamkills": 2,
		 "steaminfo": {"profile": {"realname": "Benjamin"}}}
	]}}`)

	endpoint := newEndpoint(t, srv)

	stats, err := endpoint.LiveStats(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Kills)
	assert.Equal(t, 2, stats.Teamkills)
	assert.Equal(t, "Benjamin", stats.RealName())

	_, err = endpoint.LiveStats(context.Background(), "3")
	require.ErrorIs(t, err, adminapi.ErrPlayerNotFound)
}

func TestMutationsPostPayload(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	endpoint := newEndpoint(t, srv)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (bool, error)
		path string
		want map[string]any
	}{
		{
			name: "kick",
			call: func() (bool, error) { return endpoint.Kick(ctx, "Kevin", "7656", "bye") },
			path: "/api/kick",
			want: map[string]any{"player_name": "Kevin", "player_id": "7656", "reason": "bye"},
		},
		{
			name: "temp ban",
			call: func() (bool, error) { return endpoint.TempBan(ctx, "Kevin", "7656", 24, "cool off") },
			path: "/api/temp_ban",
			want: map[string]any{"player_id": "7656", "duration_hours": float64(24), "reason": "cool off"},
		},
		{
			name: "perma ban",
			call: func() (bool, error) { return endpoint.PermaBan(ctx, "Kevin", "7656", "gone") },
			path: "/api/perma_ban",
			want: map[string]any{"player_id": "7656", "reason": "gone"},
		},
		{
			name: "blacklist",
			call: func() (bool, error) { return endpoint.AddBlacklist(ctx, "7656", "gone") },
			path: "/api/add_blacklist_record",
			want: map[string]any{"player_id": "7656", "reason": "gone"},
		},
		{
			name: "message",
			call: func() (bool, error) { return endpoint.MessagePlayer(ctx, "Kevin", "7656", "hello") },
			path: "/api/message_player",
			want: map[string]any{"player_id": "7656", "message": "hello"},
		},
		{
			name: "comment",
			call: func() (bool, error) { return endpoint.PostComment(ctx, "7656", "note") },
			path: "/api/post_player_comment",
			want: map[string]any{"player_id": "7656", "comment": "note"},
		},
	}

	for _, tt := range tests {
		ok, err := tt.call()
		require.NoError(t, err, tt.name)
		assert.True(t, ok, tt.name)

		req := fake.last()
		assert.Equal(t, http.MethodPost, req.Method, tt.name)
		assert.Equal(t, tt.path, req.Path, tt.name)

		for key, value := range tt.want {
			assert.Equal(t, value, req.Body[key], "%s: %s", tt.name, key)
		}
	}
}

func TestUnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	endpoint := newEndpoint(t, srv)

	ok, err := endpoint.Kick(context.Background(), "Kevin", "7656", "bye")
	require.ErrorIs(t, err, adminapi.ErrUnexpectedStatus)
	assert.False(t, ok)

	_, err = endpoint.Roster(context.Background())
	require.ErrorIs(t, err, adminapi.ErrUnexpectedStatus)
}

func TestReadRetriesUnexpectedStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		writeJSON(w, `{"result": [{"player_id": "1", "name": "Anna"}], "failed": false}`)
	}))
	t.Cleanup(srv.Close)

	players, err := newEndpoint(t, srv).Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMutationsAreNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := newEndpoint(t, srv).Kick(context.Background(), "Kevin", "1", "bye")
	require.ErrorIs(t, err, adminapi.ErrUnexpectedStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFailedEnvelope(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_players", `{"result": null, "failed": true, "error": "not logged in"}`)

	_, err := newEndpoint(t, srv).Roster(context.Background())
	require.ErrorIs(t, err, adminapi.ErrRequestFailed)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestFailedEnvelopeOnMutation(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/kick", `{"result": null, "failed": true, "error": "player left"}`)
	fake.handle("/api/message_player", ``)

	endpoint := newEndpoint(t, srv)

	ok, err := endpoint.Kick(context.Background(), "Kevin", "1", "bye")
	require.ErrorIs(t, err, adminapi.ErrRequestFailed)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "player left")

	ok, err = endpoint.MessagePlayer(context.Background(), "Kevin", "1", "hi")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConcurrentSessionAndClose(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_players", `{"result": []}`)

	client := adminapi.NewClient("secret", 5*time.Second, zap.NewNop())
	endpoint := client.At(srv.URL)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_, err := endpoint.Roster(context.Background())
			assert.NoError(t, err)
		}()

		go func() {
			defer wg.Done()
			client.Close()
		}()
	}

	wg.Wait()
	client.Close()
}

func TestLoginCapturesVersion(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_version", `{"result": "v10.2.0", "failed": false}`)

	endpoint := newEndpoint(t, srv)

	version, err := endpoint.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "v10.2.0", version)
	assert.Equal(t, "v10.2.0", endpoint.Version())
	assert.Equal(t, "admin", fake.requests[0].Body["username"])
}

func TestStructuredLogsFilters(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t)
	fake.handle("/api/get_structured_logs", `{"result": {"logs": [
		{"timestamp_ms": 1700000000000, "action": "KILL", "player_name_1": "Anna", "player_id_1": "1", "player_name_2": "Ben"}
	]}}`)

	logs, err := newEndpoint(t, srv).StructuredLogs(context.Background(), 30,
		adminapi.LogFilter{Action: "KILL", PlayerID: "1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	assert.Equal(t, "Ben", logs[0].Player2)
	assert.Equal(t, "filter_action=KILL&filter_player=1&since_min_ago=30", fake.last().Query)
}

func TestEmptyBaseURL(t *testing.T) {
	t.Parallel()

	client := adminapi.NewClient("secret", time.Second, zap.NewNop())

	_, err := client.At("").Roster(context.Background())
	require.ErrorIs(t, err, adminapi.ErrNoBaseURL)
}
