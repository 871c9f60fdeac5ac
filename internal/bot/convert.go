package bot

import (
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/hllmod/reportbot/internal/report"
	"github.com/hllmod/reportbot/internal/translations"
)

// toReportMessage converts a chat message into the dispatcher's input. Only
// the first embed is treated as relay metadata.
func toReportMessage(m discord.Message) report.Message {
	msg := report.Message{
		AuthorName: displayName(m),
		Content:    m.Content,
	}

	if len(m.Embeds) == 0 {
		return msg
	}

	embed := m.Embeds[0]
	meta := &report.Metadata{Description: embed.Description}

	if embed.Footer != nil {
		meta.Footer = embed.Footer.Text
	}

	if embed.Author != nil {
		meta.Author = embed.Author.Name
	}

	msg.Metadata = meta

	return msg
}

// displayName returns the author's server nickname, falling back to the
// global display name and then to the username.
func displayName(m discord.Message) string {
	if m.Member != nil && m.Member.Nick != nil && *m.Member.Nick != "" {
		return *m.Member.Nick
	}

	return m.Author.EffectiveName()
}

// cardTarget returns the card embed and the server and player name it carries.
func cardTarget(m *discord.Message) (discord.Embed, string, string, bool) {
	if m == nil || len(m.Embeds) == 0 {
		return discord.Embed{}, "", "", false
	}

	embed := m.Embeds[0]

	var server, player string
	if embed.Footer != nil {
		server = report.ServerFromFooter(embed.Footer.Text)
	}

	if embed.Author != nil {
		player = embed.Author.Name
	}

	return embed, server, player, true
}

// buildModal returns the reason modal for a button. Temp bans also ask for a duration.
func buildModal(l translations.Localizer, buttonID, action string) discord.ModalCreate {
	builder := discord.NewModalCreateBuilder().
		SetCustomID(constants.ModalID(buttonID)).
		SetTitle(l.T(actionLabelKey(action))).
		AddActionRow(
			discord.NewTextInput(constants.ReasonInputCustomID, discord.TextInputStyleParagraph, l.T(translations.KeyModalReason)).
				WithRequired(true).
				WithMaxLength(512),
		)

	if action == constants.ActionTempBan {
		builder.AddActionRow(
			discord.NewTextInput(constants.HoursInputCustomID, discord.TextInputStyleShort, l.T(translations.KeyModalHours)).
				WithRequired(false).
				WithPlaceholder(strconv.Itoa(constants.DefaultTempBanHours)).
				WithMaxLength(4),
		)
	}

	return builder.Build()
}

// parseHours reads the duration input, falling back to the default.
func parseHours(value string) int {
	hours, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || hours <= 0 {
		return constants.DefaultTempBanHours
	}

	return hours
}

func actionLabelKey(action string) string {
	switch action {
	case constants.ActionMessage:
		return translations.KeyButtonMessage
	case constants.ActionPunish:
		return translations.KeyButtonPunish
	case constants.ActionKick:
		return translations.KeyButtonKick
	case constants.ActionTempBan:
		return translations.KeyButtonTempBan
	case constants.ActionPermaBan:
		return translations.KeyButtonPermaBan
	}

	return action
}
