package adminapi

import "strings"

// Player is a roster entry.
type Player struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// DetailedPlayer extends a roster entry with in-game state.
type DetailedPlayer struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	UnitName string `json:"unit_name"`
	Role     string `json:"role"`
	Level    int    `json:"level"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
}

// leaderRoles are the roles that lead a unit.
var leaderRoles = map[string]struct{}{
	"officer":       {},
	"spotter":       {},
	"tankcommander": {},
	"armycommander": {},
}

// IsLeader reports whether the player holds a unit leader role.
func (p DetailedPlayer) IsLeader() bool {
	_, ok := leaderRoles[strings.ToLower(p.Role)]
	return ok
}

// LiveStats holds the current-match statistics of a player.
type LiveStats struct {
	PlayerID        string     `json:"player_id"`
	Player          string     `json:"player"`
	Kills           int        `json:"kills"`
	Deaths          int        `json:"deaths"`
	KillsStreak     int        `json:"kills_streak"`
	Teamkills       int        `json:"teamkills"`
	TeamkillsStreak int        `json:"teamkills_streak"`
	KillDeathRatio  float64    `json:"kill_death_ratio"`
	KillsPerMinute  float64    `json:"kills_per_minute"`
	SteamInfo       *SteamInfo `json:"steaminfo,omitempty"`
}

// SteamInfo carries optional platform profile data.
type SteamInfo struct {
	Profile *SteamProfile `json:"profile,omitempty"`
}

// SteamProfile is the platform profile attached to live stats.
type SteamProfile struct {
	RealName string `json:"realname"`
}

// RealName returns the profile real name if present.
func (s *LiveStats) RealName() string {
	if s == nil || s.SteamInfo == nil || s.SteamInfo.Profile == nil {
		return ""
	}

	return s.SteamInfo.Profile.RealName
}

// PlayerName is one entry of a player's name history.
type PlayerName struct {
	Name     string `json:"name"`
	LastSeen string `json:"last_seen"`
}

// Profile is the extended player profile.
type Profile struct {
	PlayerID             string       `json:"player_id"`
	TotalPlaytimeSeconds int          `json:"total_playtime_seconds"`
	SessionsCount        int          `json:"sessions_count"`
	Names                []PlayerName `json:"names"`
}

// PlaytimeHours returns the total playtime in whole hours.
func (p *Profile) PlaytimeHours() int {
	if p == nil {
		return 0
	}

	return p.TotalPlaytimeSeconds / 3600
}

// LogEntry is one structured game log line.
type LogEntry struct {
	Timestamp int64  `json:"timestamp_ms"`
	Action    string `json:"action"`
	Player    string `json:"player_name_1"`
	PlayerID  string `json:"player_id_1"`
	Player2   string `json:"player_name_2"`
	Message   string `json:"message"`
	Line      string `json:"line_without_time"`
}

// LogFilter narrows a structured log query.
type LogFilter struct {
	Action   string
	PlayerID string
}

// envelope is the common response wrapper of the admin API.
type envelope[T any] struct {
	Result T      `json:"result"`
	Failed bool   `json:"failed"`
	Error  string `json:"error"`
}

type detailedPlayersResult struct {
	Players map[string]DetailedPlayer `json:"players"`
}

type liveStatsResult struct {
	Stats []LiveStats `json:"stats"`
}

type structuredLogsResult struct {
	Logs []LogEntry `json:"logs"`
}
