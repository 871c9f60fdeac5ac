package constants

import "strings"

const (
	// Report prefix.
	AdminPrefix = "!admin"

	// Common.
	NotApplicable     = "N/A"
	DefaultEmbedColor = 0x312D2B
	ResolvedColor     = 0x95A5A6
	NotFoundColor     = 0x7F8C8D

	// Footer marker for cards produced in dry-run mode.
	DryRunMarker    = "DRY RUN"
	FooterSeparator = " | "

	// Moderator actions. Button IDs are "<action>_<player_id>".
	ActionMessage     = "message"
	ActionPunish      = "punish"
	ActionKick        = "kick"
	ActionTempBan     = "tempban"
	ActionPermaBan    = "permaban"
	ActionUnjustified = "unjustified"
	ActionNoAction    = "noaction"
	ActionLogs        = "logs"
	ActionManual      = "manual"

	// Modals.
	ModalSuffix         = "_modal"
	ReasonInputCustomID = "reason_input"
	HoursInputCustomID  = "hours_input"

	// Moderator flow defaults.
	DefaultTempBanHours = 24
	LogsWindowMinutes   = 30
	MaxLogLines         = 20
)

// actionSet holds every moderator action.
var actionSet = map[string]struct{}{
	ActionMessage: {}, ActionPunish: {}, ActionKick: {}, ActionTempBan: {}, ActionPermaBan: {},
	ActionUnjustified: {}, ActionNoAction: {}, ActionLogs: {}, ActionManual: {},
}

// ButtonID encodes a moderator action and its target player.
func ButtonID(action, playerID string) string {
	return action + "_" + playerID
}

// ParseButtonID splits a button ID into action and player ID.
// Player IDs may themselves contain underscores, so only the first one separates.
func ParseButtonID(customID string) (string, string, bool) {
	action, playerID, ok := strings.Cut(customID, "_")
	if !ok {
		return "", "", false
	}

	if _, known := actionSet[action]; !known {
		return "", "", false
	}

	return action, playerID, true
}

// ModalID encodes the modal opened for a button.
func ModalID(buttonID string) string {
	return buttonID + ModalSuffix
}

// ParseModalID reverses ModalID.
func ParseModalID(customID string) (string, string, bool) {
	buttonID, ok := strings.CutSuffix(customID, ModalSuffix)
	if !ok {
		return "", "", false
	}

	return ParseButtonID(buttonID)
}

// NeedsModal reports whether the action collects a reason before running.
func NeedsModal(action string) bool {
	switch action {
	case ActionMessage, ActionPunish, ActionKick, ActionTempBan, ActionPermaBan:
		return true
	default:
		return false
	}
}
