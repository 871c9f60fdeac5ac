package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hllmod/reportbot/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status from admin API")
	ErrRequestFailed    = errors.New("admin API reported failure")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNoBaseURL        = errors.New("no admin API base URL")

	errTransport = errors.New("transport error")
)

// Actor is recorded as the author of every sanction issued by the bot.
const Actor = "reportbot"

// API is the narrow view of the game server admin API used by the report pipeline.
type API interface {
	Roster(ctx context.Context) ([]Player, error)
	DetailedRoster(ctx context.Context) (map[string]DetailedPlayer, error)
	Profile(ctx context.Context, playerID string) (*Profile, error)
	LiveStats(ctx context.Context, playerID string) (*LiveStats, error)
	Kick(ctx context.Context, name, playerID, reason string) (bool, error)
	TempBan(ctx context.Context, name, playerID string, hours int, reason string) (bool, error)
	PermaBan(ctx context.Context, name, playerID, reason string) (bool, error)
	AddBlacklist(ctx context.Context, playerID, reason string) (bool, error)
	MessagePlayer(ctx context.Context, name, playerID, text string) (bool, error)
	PostComment(ctx context.Context, playerID, text string) (bool, error)
	StructuredLogs(ctx context.Context, sinceMinAgo int, filter LogFilter) ([]LogEntry, error)
}

// Client owns the HTTP session shared by all game servers.
// The session is created on first use and released by Close.
type Client struct {
	token   string
	timeout time.Duration
	retry   utils.RetryOptions
	logger  *zap.Logger

	mu   sync.Mutex
	http *http.Client
}

// NewClient creates a client authenticating with the given bearer token.
func NewClient(token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		token:   token,
		timeout: timeout,
		retry:   utils.GetReadRetryOptions(0),
		logger:  logger.Named("admin_api"),
	}
}

// SetRetryOptions replaces the backoff used for read requests.
func (c *Client) SetRetryOptions(opts utils.RetryOptions) {
	c.retry = opts
}

// At returns an Endpoint bound to one server's base URL.
func (c *Client) At(baseURL string) *Endpoint {
	return &Endpoint{
		client:  c,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  c.logger.With(zap.String("base_url", baseURL)),
	}
}

// Close releases idle connections of the shared session.
func (c *Client) Close() {
	c.mu.Lock()
	session := c.http
	c.mu.Unlock()

	if session != nil {
		session.CloseIdleConnections()
	}
}

// session returns the shared HTTP client, creating it on first use.
func (c *Client) session() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}

	return c.http
}

// Endpoint issues admin API calls against a single game server.
// Endpoints are cheap and share the session of their Client.
type Endpoint struct {
	client  *Client
	baseURL string
	logger  *zap.Logger

	mu      sync.RWMutex
	version string
}

var _ API = (*Endpoint)(nil)

// Version returns the server API version captured by Login.
func (e *Endpoint) Version() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.version
}

// Login authenticates with username and password and captures the server version.
func (e *Endpoint) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	if err := e.do(ctx, http.MethodPost, "/api/login", nil, payload, nil); err != nil {
		e.logger.Warn("Login failed", zap.Error(err))
		return "", err
	}

	var version string
	if err := e.read(ctx, "/api/get_version", nil, &version); err != nil {
		e.logger.Warn("Failed to fetch API version", zap.Error(err))
		return "", err
	}

	e.mu.Lock()
	e.version = version
	e.mu.Unlock()

	return version, nil
}

// Roster returns the players currently connected.
func (e *Endpoint) Roster(ctx context.Context) ([]Player, error) {
	var players []Player
	if err := e.read(ctx, "/api/get_players", nil, &players); err != nil {
		e.logger.Warn("Failed to fetch roster", zap.Error(err))
		return nil, err
	}

	return players, nil
}

// DetailedRoster returns connected players keyed by player ID.
func (e *Endpoint) DetailedRoster(ctx context.Context) (map[string]DetailedPlayer, error) {
	var result detailedPlayersResult
	if err := e.read(ctx, "/api/get_detailed_players", nil, &result); err != nil {
		e.logger.Warn("Failed to fetch detailed roster", zap.Error(err))
		return nil, err
	}

	return result.Players, nil
}

// Profile returns the extended profile of a player.
func (e *Endpoint) Profile(ctx context.Context, playerID string) (*Profile, error) {
	query := url.Values{"player_id": {playerID}}

	var profile Profile
	if err := e.read(ctx, "/api/get_player_profile", query, &profile); err != nil {
		e.logger.Warn("Failed to fetch player profile", zap.String("player_id", playerID), zap.Error(err))
		return nil, err
	}

	return &profile, nil
}

// LiveStats returns the current-match statistics of a player.
func (e *Endpoint) LiveStats(ctx context.Context, playerID string) (*LiveStats, error) {
	var result liveStatsResult
	if err := e.read(ctx, "/api/get_live_game_stats", nil, &result); err != nil {
		e.logger.Warn("Failed to fetch live stats", zap.String("player_id", playerID), zap.Error(err))
		return nil, err
	}

	for i := range result.Stats {
		if result.Stats[i].PlayerID == playerID {
			return &result.Stats[i], nil
		}
	}

	return nil, fmt.Errorf("%w: no live stats for %s", ErrPlayerNotFound, playerID)
}

// Kick removes a player from the server.
func (e *Endpoint) Kick(ctx context.Context, name, playerID, reason string) (bool, error) {
	return e.mutate(ctx, "/api/kick", map[string]any{
		"player_name": name,
		"player_id":   playerID,
		"reason":      reason,
		"by":          Actor,
	})
}

// TempBan bans a player for the given number of hours.
func (e *Endpoint) TempBan(ctx context.Context, name, playerID string, hours int, reason string) (bool, error) {
	return e.mutate(ctx, "/api/temp_ban", map[string]any{
		"player_name":    name,
		"player_id":      playerID,
		"duration_hours": hours,
		"reason":         reason,
		"by":             Actor,
	})
}

// PermaBan bans a player permanently.
func (e *Endpoint) PermaBan(ctx context.Context, name, playerID, reason string) (bool, error) {
	return e.mutate(ctx, "/api/perma_ban", map[string]any{
		"player_name": name,
		"player_id":   playerID,
		"reason":      reason,
		"by":          Actor,
	})
}

// AddBlacklist records a player on the server blacklist.
func (e *Endpoint) AddBlacklist(ctx context.Context, playerID, reason string) (bool, error) {
	return e.mutate(ctx, "/api/add_blacklist_record", map[string]any{
		"player_id":  playerID,
		"reason":     reason,
		"admin_name": Actor,
	})
}

// MessagePlayer sends an in-game message to a player.
func (e *Endpoint) MessagePlayer(ctx context.Context, name, playerID, text string) (bool, error) {
	return e.mutate(ctx, "/api/message_player", map[string]any{
		"player_name": name,
		"player_id":   playerID,
		"message":     text,
		"by":          Actor,
	})
}

// PostComment attaches a moderator comment to a player profile.
func (e *Endpoint) PostComment(ctx context.Context, playerID, text string) (bool, error) {
	return e.mutate(ctx, "/api/post_player_comment", map[string]any{
		"player_id": playerID,
		"comment":   text,
	})
}

// StructuredLogs returns game logs from the last sinceMinAgo minutes.
func (e *Endpoint) StructuredLogs(ctx context.Context, sinceMinAgo int, filter LogFilter) ([]LogEntry, error) {
	query := url.Values{"since_min_ago": {strconv.Itoa(sinceMinAgo)}}
	if filter.Action != "" {
		query.Set("filter_action", filter.Action)
	}

	if filter.PlayerID != "" {
		query.Set("filter_player", filter.PlayerID)
	}

	var result structuredLogsResult
	if err := e.read(ctx, "/api/get_structured_logs", query, &result); err != nil {
		e.logger.Warn("Failed to fetch structured logs", zap.Error(err))
		return nil, err
	}

	return result.Logs, nil
}

// mutate posts payload and reports success as a boolean.
func (e *Endpoint) mutate(ctx context.Context, path string, payload map[string]any) (bool, error) {
	if err := e.do(ctx, http.MethodPost, path, nil, payload, nil); err != nil {
		e.logger.Warn("Admin API call failed",
			zap.String("path", path),
			zap.Any("player_id", payload["player_id"]),
			zap.Error(err))

		return false, err
	}

	return true, nil
}

// read performs a GET. Transport failures and unexpected statuses are
// retried only when retries are configured.
func (e *Endpoint) read(ctx context.Context, path string, query url.Values, out any) error {
	_, err := utils.WithRetry(ctx, func() (struct{}, error) {
		return struct{}{}, e.do(ctx, http.MethodGet, path, query, nil, out)
	}, retryable, e.client.retry)

	return err
}

// retryable reports whether a failed read may succeed on a later attempt.
func retryable(err error) bool {
	return errors.Is(err, errTransport) || errors.Is(err, ErrUnexpectedStatus)
}

// do performs a request and decodes the result field of the response envelope into out.
func (e *Endpoint) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	if e.baseURL == "" {
		return ErrNoBaseURL
	}

	target := e.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := sonic.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+e.client.token)
	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.session().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", errTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, method, path, resp.StatusCode)
	}

	if out == nil && len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope[json.RawMessage]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		// Calls without a result only need the status when the body is no envelope.
		if out == nil {
			return nil
		}

		return fmt.Errorf("failed to decode response: %w", err)
	}

	if env.Failed {
		return fmt.Errorf("%w: %s", ErrRequestFailed, env.Error)
	}

	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}

	if err := sonic.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	return nil
}
