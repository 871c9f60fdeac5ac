package report_test

import (
	"context"
	"strings"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/ai"
	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/hllmod/reportbot/internal/report"
	"github.com/hllmod/reportbot/internal/translations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExecuteMutatingActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input report.ModAction
		line  string
		calls []string
	}{
		{
			name:  "kick",
			input: report.ModAction{Action: constants.ActionKick, PlayerID: "1", PlayerName: "Kevin", Reason: "tk", Moderator: "mod"},
			line:  "mod: Kick - tk",
			calls: []string{"kick(Kevin,1,tk)", "post_comment(1,kick by mod: tk)"},
		},
		{
			name:  "temp ban defaults to 24 hours",
			input: report.ModAction{Action: constants.ActionTempBan, PlayerID: "1", PlayerName: "Kevin", Reason: "tk", Moderator: "mod"},
			line:  "mod: Temp ban (24h) - tk",
			calls: []string{"temp_ban(Kevin,1,24,tk)", "post_comment(1,tempban by mod: tk)"},
		},
		{
			name: "temp ban with hours",
			input: report.ModAction{
				Action: constants.ActionTempBan, PlayerID: "1", PlayerName: "Kevin", Reason: "tk", Hours: 2, Moderator: "mod",
			},
			line:  "mod: Temp ban (2h) - tk",
			calls: []string{"temp_ban(Kevin,1,2,tk)", "post_comment(1,tempban by mod: tk)"},
		},
		{
			name:  "perma ban blacklists",
			input: report.ModAction{Action: constants.ActionPermaBan, PlayerID: "1", PlayerName: "Kevin", Reason: "cheat", Moderator: "mod"},
			line:  "mod: Perma ban - cheat",
			calls: []string{"perma_ban(Kevin,1,cheat)", "add_blacklist(1,cheat)", "post_comment(1,permaban by mod: cheat)"},
		},
		{
			name:  "punish prefixes message",
			input: report.ModAction{Action: constants.ActionPunish, PlayerID: "1", PlayerName: "Kevin", Reason: "stop", Moderator: "mod"},
			line:  "mod: Punish - stop",
			calls: []string{"message_player(Kevin,1,Punish: stop)", "post_comment(1,punish by mod: stop)"},
		},
		{
			name:  "unjustified skips comment",
			input: report.ModAction{Action: constants.ActionUnjustified, PlayerID: "77", PlayerName: "Reporter", Moderator: "mod"},
			line:  "mod: Unjustified",
			calls: []string{"message_player(Reporter,77,Your report was reviewed and found to be unjustified.)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeAPI{}
			h := newHarness(t, api, ai.Unknown(), false)

			res, err := h.executor.Execute(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.line, res.Line)
			assert.True(t, res.Applied)
			assert.False(t, res.DryRun)
			assert.Equal(t, tt.calls, api.mutations())
		})
	}
}

func TestExecuteLooksUpMissingName(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{roster: []adminapi.Player{{PlayerID: "1", Name: "Kevin"}}}
	h := newHarness(t, api, ai.Unknown(), false)

	_, err := h.executor.Execute(context.Background(), report.ModAction{
		Action: constants.ActionMessage, PlayerID: "1", Reason: "hi", Moderator: "mod",
	})
	require.NoError(t, err)

	assert.Equal(t, "message_player(Kevin,1,hi)", api.mutations()[0])
}

func TestExecuteDryRun(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := newHarness(t, api, ai.Unknown(), true)

	res, err := h.executor.Execute(context.Background(), report.ModAction{
		Action: constants.ActionKick, PlayerID: "1", PlayerName: "Kevin", Reason: "tk", Moderator: "mod",
	})
	require.NoError(t, err)

	assert.Equal(t, "mod: Kick - tk [DRY RUN]", res.Line)
	assert.False(t, res.Applied)
	assert.True(t, res.DryRun)
	assert.Empty(t, api.mutations())
}

func TestExecuteDryRunLocalizesMarker(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := newHarness(t, api, ai.Unknown(), true)

	table := translations.New("en", map[string]map[string]string{
		"de": {translations.KeyDryRun: "TESTLAUF"},
	})
	executor := report.NewExecutor(h.dispatcher, table.For("de"), true, zap.NewNop())

	res, err := executor.Execute(context.Background(), report.ModAction{
		Action: constants.ActionKick, PlayerID: "1", PlayerName: "Kevin", Reason: "tk", Moderator: "mod",
	})
	require.NoError(t, err)

	assert.Equal(t, "mod: Kick - tk [TESTLAUF]", res.Line)
	assert.Empty(t, api.mutations())
}

func TestExecuteNonMutating(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := newHarness(t, api, ai.Unknown(), false)

	res, err := h.executor.Execute(context.Background(), report.ModAction{
		Action: constants.ActionNoAction, PlayerID: "1", Moderator: "mod",
	})
	require.NoError(t, err)

	assert.Equal(t, "mod: No action", res.Line)
	assert.Empty(t, api.mutations())
}

func TestExecuteUnknownAction(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeAPI{}, ai.Unknown(), false)

	_, err := h.executor.Execute(context.Background(), report.ModAction{Action: "explode"})
	require.ErrorIs(t, err, report.ErrUnknownAction)
}

func TestLogs(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{logs: []adminapi.LogEntry{
		{Timestamp: 1700000000000, Action: "KILL", Line: "Anna -> Ben"},
	}}
	h := newHarness(t, api, ai.Unknown(), false)

	text, err := h.executor.Logs(context.Background(), "Server 2", "1")
	require.NoError(t, err)

	assert.Equal(t, "```\n22:13 KILL: Anna -> Ben\n```", text)
	assert.Equal(t, []string{"http://two"}, h.baseURLs)
}

func TestFormatLogs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", report.FormatLogs(nil, "none"))

	entries := make([]adminapi.LogEntry, 25)
	for i := range entries {
		entries[i] = adminapi.LogEntry{Timestamp: int64(i) * 60_000, Action: "CHAT", Player: "p", Message: string(rune('a' + i))}
	}

	text := report.FormatLogs(entries, "none")
	lines := strings.Split(strings.Trim(text, "`\n"), "\n")

	require.Len(t, lines, constants.MaxLogLines)
	assert.Equal(t, "00:05 CHAT: p f", lines[0])
	assert.Equal(t, "00:24 CHAT: p y", lines[len(lines)-1])
}

func TestResolveEmbed(t *testing.T) {
	t.Parallel()

	embed := discord.NewEmbedBuilder().SetTitle("card").SetColor(0x123456).Build()

	resolved := report.ResolveEmbed(embed, "Resolved by", "mod: Kick")

	assert.Equal(t, constants.ResolvedColor, resolved.Color)
	require.Len(t, resolved.Fields, 1)
	assert.Equal(t, "Resolved by", resolved.Fields[0].Name)
	assert.Equal(t, "mod: Kick", resolved.Fields[0].Value)
	assert.Empty(t, embed.Fields)
}
