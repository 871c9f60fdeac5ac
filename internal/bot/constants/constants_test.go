package constants_test

import (
	"testing"

	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/stretchr/testify/assert"
)

func TestButtonIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := constants.ButtonID(constants.ActionTempBan, "76561198_abc")
	assert.Equal(t, "tempban_76561198_abc", id)

	action, playerID, ok := constants.ParseButtonID(id)
	assert.True(t, ok)
	assert.Equal(t, constants.ActionTempBan, action)
	assert.Equal(t, "76561198_abc", playerID)

	action, playerID, ok = constants.ParseModalID(constants.ModalID(id))
	assert.True(t, ok)
	assert.Equal(t, constants.ActionTempBan, action)
	assert.Equal(t, "76561198_abc", playerID)
}

func TestParseButtonIDRejectsUnknown(t *testing.T) {
	t.Parallel()

	_, _, ok := constants.ParseButtonID("explode_1")
	assert.False(t, ok)

	_, _, ok = constants.ParseButtonID("kick")
	assert.False(t, ok)

	_, _, ok = constants.ParseModalID("kick_1")
	assert.False(t, ok)
}

func TestNeedsModal(t *testing.T) {
	t.Parallel()

	assert.True(t, constants.NeedsModal(constants.ActionKick))
	assert.True(t, constants.NeedsModal(constants.ActionPunish))
	assert.False(t, constants.NeedsModal(constants.ActionLogs))
	assert.False(t, constants.NeedsModal(constants.ActionNoAction))
}
