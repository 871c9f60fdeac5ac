package report

import (
	"strconv"

	"github.com/disgoorg/disgo/discord"
	"github.com/hllmod/reportbot/internal/adjudication"
	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/hllmod/reportbot/internal/translations"
	"github.com/hllmod/reportbot/pkg/utils"
)

const (
	// Discord caps embed descriptions at 4096 characters and field values at 1024.
	maxDescriptionLength = 4096
	maxFieldLength       = 1024
)

// verdictTitles maps outcomes to their card title keys.
var verdictTitles = map[adjudication.Outcome]string{
	adjudication.OutcomeWarn:     translations.KeyWarning,
	adjudication.OutcomeKick:     translations.KeyKick,
	adjudication.OutcomeTempBan:  translations.KeyTempBan,
	adjudication.OutcomePermaBan: translations.KeyPermaBan,
	adjudication.OutcomePositive: translations.KeyPositive,
}

// Cards builds localized report cards.
type Cards struct {
	l      translations.Localizer
	dryRun bool
}

// NewCards creates a card builder.
func NewCards(l translations.Localizer, dryRun bool) Cards {
	return Cards{l: l, dryRun: dryRun}
}

// Footer returns the footer text for a card about server.
func (c Cards) Footer(server string) string {
	if !c.dryRun {
		return server
	}

	if server == "" {
		return constants.DryRunMarker
	}

	return server + constants.FooterSeparator + constants.DryRunMarker
}

// Player builds the card for a resolved player. Profile and stats may be nil.
func (c Cards) Player(
	server, reporter, text string, player adminapi.Player, profile *adminapi.Profile, stats *adminapi.LiveStats,
) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle(c.l.T(translations.KeyPlayerReport) + ": " + player.Name).
		SetDescription(utils.Truncate(text, maxDescriptionLength)).
		SetColor(constants.DefaultEmbedColor).
		SetAuthorName(player.Name).
		SetFooterText(c.Footer(server))

	builder.AddField(c.l.T(translations.KeyReporter), orNotApplicable(reporter), true)

	if realName := stats.RealName(); realName != "" {
		builder.AddField(c.l.T(translations.KeyRealName), realName, true)
	}

	playtime := constants.NotApplicable
	if profile != nil {
		playtime = strconv.Itoa(profile.PlaytimeHours())
	}

	builder.AddField(c.l.T(translations.KeyPlaytime), playtime, true)
	builder.AddField(c.l.T(translations.KeyPlayerID), "`"+player.PlayerID+"`", true)

	if stats != nil {
		builder.
			AddField(c.l.T(translations.KeyKills), strconv.Itoa(stats.Kills), true).
			AddField(c.l.T(translations.KeyKillStreak), strconv.Itoa(stats.KillsStreak), true).
			AddField(c.l.T(translations.KeyKDRatio), strconv.FormatFloat(stats.KillDeathRatio, 'f', 2, 64), true).
			AddField(c.l.T(translations.KeyKillsPerMinute), strconv.FormatFloat(stats.KillsPerMinute, 'f', 2, 64), true).
			AddField(c.l.T(translations.KeyDeaths), strconv.Itoa(stats.Deaths), true).
			AddField(c.l.T(translations.KeyTeamkills), strconv.Itoa(stats.Teamkills), true).
			AddField(c.l.T(translations.KeyTeamkillStreak), strconv.Itoa(stats.TeamkillsStreak), true)
	}

	return builder.Build()
}

// Unit builds the card for a resolved unit leader.
func (c Cards) Unit(server, reporter, text string, leader adminapi.DetailedPlayer) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(c.l.T(translations.KeyUnitReport)+": "+leader.Name).
		SetDescription(utils.Truncate(text, maxDescriptionLength)).
		SetColor(constants.DefaultEmbedColor).
		SetAuthorName(leader.Name).
		SetFooterText(c.Footer(server)).
		AddField(c.l.T(translations.KeyReporter), orNotApplicable(reporter), true).
		AddField(c.l.T(translations.KeyTeam), orNotApplicable(leader.Team), true).
		AddField(c.l.T(translations.KeyUnit), orNotApplicable(leader.UnitName), true).
		AddField(c.l.T(translations.KeyRole), orNotApplicable(leader.Role), true).
		AddField(c.l.T(translations.KeyPlayerID), "`"+leader.PlayerID+"`", true).
		AddField(c.l.T(translations.KeyKills), strconv.Itoa(leader.Kills), true).
		AddField(c.l.T(translations.KeyDeaths), strconv.Itoa(leader.Deaths), true).
		Build()
}

// NotFound builds the card shown when no player matched.
func (c Cards) NotFound(server, reporter, text string) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle(c.l.T(translations.KeyPlayerNotFound)).
		SetDescription(utils.Truncate(text, maxDescriptionLength)).
		SetColor(constants.NotFoundColor).
		SetFooterText(c.Footer(server)).
		AddField(c.l.T(translations.KeyReporter), orNotApplicable(reporter), true).
		Build()
}

// Verdict builds the card describing an adjudication.
func (c Cards) Verdict(server string, v *adjudication.Verdict) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle(c.l.T(verdictTitles[v.Outcome])).
		SetColor(v.Color()).
		SetFooterText(c.Footer(server)).
		AddField(c.l.T(translations.KeyReporter), orNotApplicable(v.PlayerName), true).
		AddField(c.l.T(translations.KeyPlayerID), "`"+v.PlayerID+"`", true)

	if v.Explanation != "" {
		builder.SetDescription(utils.Truncate(v.Explanation, maxDescriptionLength))
	}

	if v.Reason != "" {
		builder.AddField(c.l.T(translations.KeyReason), utils.Truncate(v.Reason, maxFieldLength), false)
	}

	if v.Message != "" {
		builder.AddField(c.l.T(translations.KeyMessage), utils.Truncate(v.Message, maxFieldLength), false)
	}

	return builder.Build()
}

// Buttons returns the moderator actions for a matched player. Self-referential
// reports only offer message, no-action and manual. The unjustified button
// targets the reporter and is omitted when the reporter is unknown.
func (c Cards) Buttons(playerID, reporterID string, self bool) []discord.ContainerComponent {
	if self {
		return []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewPrimaryButton(c.l.T(translations.KeyButtonMessage), constants.ButtonID(constants.ActionMessage, playerID)),
				discord.NewSecondaryButton(c.l.T(translations.KeyButtonNoAction), constants.ButtonID(constants.ActionNoAction, playerID)),
				discord.NewSecondaryButton(c.l.T(translations.KeyButtonManual), constants.ButtonID(constants.ActionManual, playerID)),
			),
		}
	}

	second := []discord.InteractiveComponent{}
	if reporterID != "" {
		second = append(second,
			discord.NewSuccessButton(c.l.T(translations.KeyButtonUnjustified), constants.ButtonID(constants.ActionUnjustified, reporterID)))
	}

	second = append(second,
		discord.NewSecondaryButton(c.l.T(translations.KeyButtonNoAction), constants.ButtonID(constants.ActionNoAction, playerID)),
		discord.NewSecondaryButton(c.l.T(translations.KeyButtonLogs), constants.ButtonID(constants.ActionLogs, playerID)),
		discord.NewSecondaryButton(c.l.T(translations.KeyButtonManual), constants.ButtonID(constants.ActionManual, playerID)),
	)

	return []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewPrimaryButton(c.l.T(translations.KeyButtonMessage), constants.ButtonID(constants.ActionMessage, playerID)),
			discord.NewPrimaryButton(c.l.T(translations.KeyButtonPunish), constants.ButtonID(constants.ActionPunish, playerID)),
			discord.NewDangerButton(c.l.T(translations.KeyButtonKick), constants.ButtonID(constants.ActionKick, playerID)),
			discord.NewDangerButton(c.l.T(translations.KeyButtonTempBan), constants.ButtonID(constants.ActionTempBan, playerID)),
			discord.NewDangerButton(c.l.T(translations.KeyButtonPermaBan), constants.ButtonID(constants.ActionPermaBan, playerID)),
		),
		discord.NewActionRow(second...),
	}
}

// NotFoundButtons returns the actions left when no player matched.
func (c Cards) NotFoundButtons(reporterID string) []discord.ContainerComponent {
	buttons := []discord.InteractiveComponent{}
	if reporterID != "" {
		buttons = append(buttons,
			discord.NewSuccessButton(c.l.T(translations.KeyButtonUnjustified), constants.ButtonID(constants.ActionUnjustified, reporterID)),
			discord.NewSecondaryButton(c.l.T(translations.KeyButtonNoAction), constants.ButtonID(constants.ActionNoAction, reporterID)),
			discord.NewSecondaryButton(c.l.T(translations.KeyButtonManual), constants.ButtonID(constants.ActionManual, reporterID)),
		)
	}

	if len(buttons) == 0 {
		return nil
	}

	return []discord.ContainerComponent{discord.NewActionRow(buttons...)}
}

func orNotApplicable(s string) string {
	if s == "" {
		return constants.NotApplicable
	}

	return s
}
