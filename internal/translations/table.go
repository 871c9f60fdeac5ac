package translations

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Keys used by report cards and moderator actions.
const (
	KeyPlayerReport      = "player_report"
	KeyUnitReport        = "unit_report"
	KeyPlayerNotFound    = "player_not_found"
	KeyRealName          = "real_name"
	KeyPlaytime          = "playtime_hours"
	KeyPlayerID          = "player_id"
	KeyKills             = "kills"
	KeyKillStreak        = "kill_streak"
	KeyKDRatio           = "kd_ratio"
	KeyKillsPerMinute    = "kills_per_minute"
	KeyDeaths            = "deaths"
	KeyTeamkills         = "teamkills"
	KeyTeamkillStreak    = "teamkill_streak"
	KeyReporter          = "reporter"
	KeyTeam              = "team"
	KeyUnit              = "unit"
	KeyRole              = "role"
	KeyReason            = "reason"
	KeyMessage           = "message"
	KeyWarning           = "warning"
	KeyKick              = "kick"
	KeyTempBan           = "temp_ban"
	KeyPermaBan          = "perma_ban"
	KeyPositive          = "positive_ack"
	KeyDryRun            = "dry_run"
	KeyButtonMessage     = "button_message"
	KeyButtonPunish      = "button_punish"
	KeyButtonKick        = "button_kick"
	KeyButtonTempBan     = "button_tempban"
	KeyButtonPermaBan    = "button_permaban"
	KeyButtonUnjustified = "button_unjustified"
	KeyButtonNoAction    = "button_noaction"
	KeyButtonLogs        = "button_logs"
	KeyButtonManual      = "button_manual"
	KeyModalReason       = "modal_reason"
	KeyModalHours        = "modal_hours"
	KeyResolvedBy        = "resolved_by"
	KeyUnjustifiedReport = "unjustified_report"
	KeyNoLogs            = "no_logs"
	KeyActionFailed      = "action_failed"
)

// defaults is the built-in English table used when a key is missing everywhere else.
var defaults = map[string]string{
	KeyPlayerReport:      "Player report",
	KeyUnitReport:        "Unit report",
	KeyPlayerNotFound:    "Player not found",
	KeyRealName:          "Real name",
	KeyPlaytime:          "Playtime (hours)",
	KeyPlayerID:          "Player ID",
	KeyKills:             "Kills",
	KeyKillStreak:        "Kill streak",
	KeyKDRatio:           "K/D ratio",
	KeyKillsPerMinute:    "Kills/min",
	KeyDeaths:            "Deaths",
	KeyTeamkills:         "Teamkills",
	KeyTeamkillStreak:    "Teamkill streak",
	KeyReporter:          "Reporter",
	KeyTeam:              "Team",
	KeyUnit:              "Unit",
	KeyRole:              "Role",
	KeyReason:            "Reason",
	KeyMessage:           "Message",
	KeyWarning:           "Warning",
	KeyKick:              "Kick",
	KeyTempBan:           "24-hour ban",
	KeyPermaBan:          "Permanent ban",
	KeyPositive:          "Thank you",
	KeyDryRun:            "DRY RUN",
	KeyButtonMessage:     "Message",
	KeyButtonPunish:      "Punish",
	KeyButtonKick:        "Kick",
	KeyButtonTempBan:     "Temp ban",
	KeyButtonPermaBan:    "Perma ban",
	KeyButtonUnjustified: "Unjustified",
	KeyButtonNoAction:    "No action",
	KeyButtonLogs:        "Show logs",
	KeyButtonManual:      "Manual",
	KeyModalReason:       "Reason",
	KeyModalHours:        "Duration (hours)",
	KeyResolvedBy:        "Resolved by",
	KeyUnjustifiedReport: "Your report was reviewed and found to be unjustified.",
	KeyNoLogs:            "No logs in the last 30 minutes.",
	KeyActionFailed:      "The admin API rejected the action.",
}

// Table maps language codes to localized strings.
type Table struct {
	defaultLang string
	entries     map[string]map[string]string
}

// New creates a table from an in-memory mapping.
func New(defaultLang string, entries map[string]map[string]string) *Table {
	normalized := make(map[string]map[string]string, len(entries))
	for lang, values := range entries {
		normalized[strings.ToLower(lang)] = values
	}

	return &Table{
		defaultLang: strings.ToLower(defaultLang),
		entries:     normalized,
	}
}

// Load reads a JSON table of the form {"lang": {"key": "text"}}.
// A missing file yields a table backed only by the built-in English strings.
func Load(path, defaultLang string, logger *zap.Logger) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Translation table not found, using built-in strings", zap.String("path", path))
			return New(defaultLang, nil), nil
		}

		return nil, fmt.Errorf("failed to read translations: %w", err)
	}

	var entries map[string]map[string]string
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse translations: %w", err)
	}

	logger.Info("Loaded translations", zap.String("path", path), zap.Int("languages", len(entries)))

	return New(defaultLang, entries), nil
}

// T returns the string for key in lang. Lookups fall back to the default
// language, then to the built-in English string, then to the key itself.
func (t *Table) T(lang, key string) string {
	if value, ok := t.entries[strings.ToLower(lang)][key]; ok && value != "" {
		return value
	}

	if value, ok := t.entries[t.defaultLang][key]; ok && value != "" {
		return value
	}

	if value, ok := defaults[key]; ok {
		return value
	}

	return key
}

// Localizer binds a table to one language.
type Localizer struct {
	table *Table
	lang  string
}

// For returns a Localizer for lang.
func (t *Table) For(lang string) Localizer {
	return Localizer{table: t, lang: lang}
}

// T returns the localized string for key.
func (l Localizer) T(key string) string {
	return l.table.T(l.lang, key)
}
