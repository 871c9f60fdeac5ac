package adjudication

import "github.com/hllmod/reportbot/internal/ai"

// Outcome is the terminal state of an adjudication.
type Outcome string

const (
	OutcomeWarn     Outcome = "WARN"
	OutcomeKick     Outcome = "KICK"
	OutcomeTempBan  Outcome = "TEMP_BAN_24H"
	OutcomePermaBan Outcome = "PERMA_BAN"
	OutcomePositive Outcome = "POSITIVE_ACK"
	OutcomeNoOp     Outcome = "NO_OP"
)

// TempBanHours is the duration of an automatic temporary ban.
const TempBanHours = 24

// Embed colours per outcome.
const (
	ColorAmber = 0xFFBF00
	ColorBlue  = 0x3498DB
	ColorGold  = 0xF1C40F
	ColorRed   = 0xE74C3C
	ColorGreen = 0x2ECC71
)

// Color returns the card colour of the outcome, or 0 for NO_OP.
func (o Outcome) Color() int {
	switch o {
	case OutcomeWarn:
		return ColorAmber
	case OutcomeKick:
		return ColorBlue
	case OutcomeTempBan:
		return ColorGold
	case OutcomePermaBan:
		return ColorRed
	case OutcomePositive:
		return ColorGreen
	case OutcomeNoOp:
		return 0
	}

	return 0
}

// Action returns the sanction message kind generated for the outcome.
func (o Outcome) Action() ai.Action {
	switch o {
	case OutcomeWarn:
		return ai.ActionWarning
	case OutcomeKick:
		return ai.ActionKick
	case OutcomeTempBan:
		return ai.ActionTempBan
	case OutcomePermaBan:
		return ai.ActionPerma
	case OutcomePositive, OutcomeNoOp:
		return ai.ActionPositive
	}

	return ai.ActionPositive
}

// UsesLedger reports whether the classification is decided by the warning count.
func UsesLedger(c ai.Classification) bool {
	switch c.Category {
	case ai.CategoryInsult, ai.CategoryTempBan:
		return c.Severity == ai.SeverityWarning
	case ai.CategoryLegit, ai.CategoryPerma, ai.CategoryUnknown:
		return false
	}

	return false
}

// Transition maps a classification and the reporter's prior warning count to an outcome.
func Transition(c ai.Classification, priorWarnings int64) Outcome {
	switch c.Category {
	case ai.CategoryPerma:
		return OutcomePermaBan
	case ai.CategoryInsult, ai.CategoryTempBan:
		switch c.Severity {
		case ai.SeverityPerma:
			return OutcomePermaBan
		case ai.SeverityTempBan:
			return OutcomeTempBan
		case ai.SeverityWarning:
			if priorWarnings == 0 {
				return OutcomeWarn
			}

			return OutcomeKick
		}

		return OutcomeWarn
	case ai.CategoryLegit:
		return OutcomePositive
	case ai.CategoryUnknown:
		return OutcomeNoOp
	}

	return OutcomeNoOp
}
