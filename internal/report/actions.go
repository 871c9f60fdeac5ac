package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/hllmod/reportbot/internal/translations"
	"go.uber.org/zap"
)

// ErrUnknownAction is returned for button actions the executor does not know.
var ErrUnknownAction = errors.New("unknown moderator action")

// actionLabels maps moderator actions to their button label keys.
var actionLabels = map[string]string{
	constants.ActionMessage:     translations.KeyButtonMessage,
	constants.ActionPunish:      translations.KeyButtonPunish,
	constants.ActionKick:        translations.KeyButtonKick,
	constants.ActionTempBan:     translations.KeyButtonTempBan,
	constants.ActionPermaBan:    translations.KeyButtonPermaBan,
	constants.ActionUnjustified: translations.KeyButtonUnjustified,
	constants.ActionNoAction:    translations.KeyButtonNoAction,
	constants.ActionLogs:        translations.KeyButtonLogs,
	constants.ActionManual:      translations.KeyButtonManual,
}

// ModAction is a moderator's button or modal decision.
type ModAction struct {
	Action     string
	PlayerID   string
	PlayerName string
	Reason     string
	Hours      int
	Moderator  string
	ServerName string
}

// Resolution summarizes an executed moderator action.
type Resolution struct {
	Line    string
	Applied bool
	DryRun  bool
}

// Executor runs moderator actions against the admin API.
type Executor struct {
	dispatcher *Dispatcher
	l          translations.Localizer
	dryRun     bool
	logger     *zap.Logger
}

// NewExecutor creates an executor sharing the dispatcher's server directory.
func NewExecutor(dispatcher *Dispatcher, l translations.Localizer, dryRun bool, logger *zap.Logger) *Executor {
	return &Executor{
		dispatcher: dispatcher,
		l:          l,
		dryRun:     dryRun,
		logger:     logger.Named("mod_actions"),
	}
}

// Execute performs the action. Dry run skips every admin API call but still
// produces a resolution line.
func (e *Executor) Execute(ctx context.Context, a ModAction) (*Resolution, error) {
	label, ok := actionLabels[a.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, a.Action)
	}

	server, ok := e.dispatcher.SelectServer(a.ServerName)
	if !ok {
		return nil, ErrNoServer
	}

	res := &Resolution{Line: e.resolutionLine(a, label), DryRun: e.dryRun}

	if !mutates(a.Action) {
		return res, nil
	}

	if e.dryRun {
		e.logger.Info("Dry run, moderator action not applied",
			zap.String("action", a.Action),
			zap.String("player_id", a.PlayerID),
			zap.String("moderator", a.Moderator))

		return res, nil
	}

	api := e.dispatcher.endpoint(server.BaseURL)
	if a.PlayerName == "" {
		a.PlayerName = e.lookupName(ctx, api, a.PlayerID)
	}

	applied, err := e.apply(ctx, api, a)
	if err != nil {
		e.logger.Warn("Moderator action failed",
			zap.String("action", a.Action),
			zap.String("player_id", a.PlayerID),
			zap.Error(err))

		res.Line += " (" + e.l.T(translations.KeyActionFailed) + ")"

		return res, nil
	}

	res.Applied = applied

	if applied && a.Action != constants.ActionUnjustified {
		comment := fmt.Sprintf("%s by %s: %s", a.Action, a.Moderator, a.Reason)
		if _, err := api.PostComment(ctx, a.PlayerID, comment); err != nil {
			e.logger.Debug("Failed to record comment", zap.String("player_id", a.PlayerID), zap.Error(err))
		}
	}

	e.logger.Info("Moderator action applied",
		zap.String("action", a.Action),
		zap.String("player_id", a.PlayerID),
		zap.String("moderator", a.Moderator))

	return res, nil
}

// apply issues the admin API calls for a mutating action.
func (e *Executor) apply(ctx context.Context, api adminapi.API, a ModAction) (bool, error) {
	switch a.Action {
	case constants.ActionMessage:
		return api.MessagePlayer(ctx, a.PlayerName, a.PlayerID, a.Reason)
	case constants.ActionPunish:
		return api.MessagePlayer(ctx, a.PlayerName, a.PlayerID, e.l.T(translations.KeyButtonPunish)+": "+a.Reason)
	case constants.ActionKick:
		return api.Kick(ctx, a.PlayerName, a.PlayerID, a.Reason)
	case constants.ActionTempBan:
		hours := a.Hours
		if hours <= 0 {
			hours = constants.DefaultTempBanHours
		}

		return api.TempBan(ctx, a.PlayerName, a.PlayerID, hours, a.Reason)
	case constants.ActionPermaBan:
		banned, err := api.PermaBan(ctx, a.PlayerName, a.PlayerID, a.Reason)
		listed, listErr := api.AddBlacklist(ctx, a.PlayerID, a.Reason)

		return banned && listed, errors.Join(err, listErr)
	case constants.ActionUnjustified:
		return api.MessagePlayer(ctx, a.PlayerName, a.PlayerID, e.l.T(translations.KeyUnjustifiedReport))
	}

	return false, fmt.Errorf("%w: %s", ErrUnknownAction, a.Action)
}

// Logs returns the player's structured logs of the last 30 minutes as text.
func (e *Executor) Logs(ctx context.Context, serverName, playerID string) (string, error) {
	server, ok := e.dispatcher.SelectServer(serverName)
	if !ok {
		return "", ErrNoServer
	}

	entries, err := e.dispatcher.endpoint(server.BaseURL).StructuredLogs(ctx, constants.LogsWindowMinutes,
		adminapi.LogFilter{PlayerID: playerID})
	if err != nil {
		return "", err
	}

	return FormatLogs(entries, e.l.T(translations.KeyNoLogs)), nil
}

// FormatLogs renders the newest entries as a code block, or empty when there are none.
func FormatLogs(entries []adminapi.LogEntry, empty string) string {
	if len(entries) == 0 {
		return empty
	}

	if len(entries) > constants.MaxLogLines {
		entries = entries[len(entries)-constants.MaxLogLines:]
	}

	var b strings.Builder
	b.WriteString("```\n")

	for _, entry := range entries {
		line := entry.Line
		if line == "" {
			line = strings.TrimSpace(entry.Player + " " + entry.Message)
		}

		fmt.Fprintf(&b, "%s %s: %s\n",
			time.UnixMilli(entry.Timestamp).UTC().Format("15:04"), entry.Action, line)
	}

	b.WriteString("```")

	return b.String()
}

// ResolveEmbed appends the resolution line to a card and greys it out.
func ResolveEmbed(embed discord.Embed, resolvedBy, line string) discord.Embed {
	inline := false
	embed.Fields = append(embed.Fields, discord.EmbedField{
		Name:   resolvedBy,
		Value:  line,
		Inline: &inline,
	})
	embed.Color = constants.ResolvedColor

	return embed
}

// resolutionLine names the moderator, the action and the reason.
func (e *Executor) resolutionLine(a ModAction, labelKey string) string {
	line := fmt.Sprintf("%s: %s", a.Moderator, e.l.T(labelKey))
	if a.Action == constants.ActionTempBan {
		hours := a.Hours
		if hours <= 0 {
			hours = constants.DefaultTempBanHours
		}

		line += fmt.Sprintf(" (%dh)", hours)
	}

	if a.Reason != "" {
		line += " - " + a.Reason
	}

	if e.dryRun && mutates(a.Action) {
		line += " [" + e.l.T(translations.KeyDryRun) + "]"
	}

	return line
}

// lookupName finds the current name of playerID, or returns "".
func (e *Executor) lookupName(ctx context.Context, api adminapi.API, playerID string) string {
	roster, err := api.Roster(ctx)
	if err != nil {
		return ""
	}

	for _, player := range roster {
		if player.PlayerID == playerID {
			return player.Name
		}
	}

	return ""
}

// mutates reports whether the action calls a mutating admin API operation.
func mutates(action string) bool {
	switch action {
	case constants.ActionMessage, constants.ActionPunish, constants.ActionKick,
		constants.ActionTempBan, constants.ActionPermaBan, constants.ActionUnjustified:
		return true
	default:
		return false
	}
}
