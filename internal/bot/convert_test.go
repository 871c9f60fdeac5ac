package bot

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/hllmod/reportbot/internal/translations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToReportMessage(t *testing.T) {
	t.Parallel()

	plain := toReportMessage(discord.Message{
		Author:  discord.User{Username: "kevin"},
		Content: "!admin ivan",
	})
	assert.Equal(t, "kevin", plain.AuthorName)
	assert.Equal(t, "!admin ivan", plain.Content)
	assert.Nil(t, plain.Metadata)

	relayed := toReportMessage(discord.Message{
		Author: discord.User{Username: "relay"},
		Embeds: []discord.Embed{
			{
				Description: "!admin ivan",
				Footer:      &discord.EmbedFooter{Text: "Server 1"},
				Author:      &discord.EmbedAuthor{Name: "Kevin [Allies]"},
			},
			{Description: "ignored"},
		},
	})
	require.NotNil(t, relayed.Metadata)
	assert.Equal(t, "!admin ivan", relayed.Metadata.Description)
	assert.Equal(t, "Server 1", relayed.Metadata.Footer)
	assert.Equal(t, "Kevin [Allies]", relayed.Metadata.Author)
}

func TestToReportMessageUsesDisplayName(t *testing.T) {
	t.Parallel()

	global := "Kevin the Great"
	nick := "Kev"

	withGlobal := toReportMessage(discord.Message{
		Author: discord.User{Username: "kevin", GlobalName: &global},
	})
	assert.Equal(t, "Kevin the Great", withGlobal.AuthorName)

	withNick := toReportMessage(discord.Message{
		Author: discord.User{Username: "kevin", GlobalName: &global},
		Member: &discord.Member{Nick: &nick},
	})
	assert.Equal(t, "Kev", withNick.AuthorName)
}

func TestCardTarget(t *testing.T) {
	t.Parallel()

	_, _, _, ok := cardTarget(nil)
	assert.False(t, ok)

	_, _, _, ok = cardTarget(&discord.Message{})
	assert.False(t, ok)

	embed, server, player, ok := cardTarget(&discord.Message{Embeds: []discord.Embed{{
		Title:  "Player report: Ivan",
		Footer: &discord.EmbedFooter{Text: "Server 2 | DRY RUN"},
		Author: &discord.EmbedAuthor{Name: "Ivan"},
	}}})
	require.True(t, ok)
	assert.Equal(t, "Player report: Ivan", embed.Title)
	assert.Equal(t, "Server 2", server)
	assert.Equal(t, "Ivan", player)
}

func TestBuildModal(t *testing.T) {
	t.Parallel()

	l := translations.New("en", nil).For("en")

	kick := buildModal(l, "kick_7", constants.ActionKick)
	assert.Equal(t, "kick_7_modal", kick.CustomID)
	assert.Equal(t, "Kick", kick.Title)
	assert.Len(t, kick.Components, 1)

	tempBan := buildModal(l, "tempban_7", constants.ActionTempBan)
	assert.Equal(t, "Temp ban", tempBan.Title)
	assert.Len(t, tempBan.Components, 2)
}

func TestParseHours(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 6, parseHours(" 6 "))
	assert.Equal(t, constants.DefaultTempBanHours, parseHours(""))
	assert.Equal(t, constants.DefaultTempBanHours, parseHours("-3"))
	assert.Equal(t, constants.DefaultTempBanHours, parseHours("soon"))
}
