package adjudication

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/ai"
	"go.uber.org/zap"
)

// ErrReporterUnresolved is returned when the reporter is not on the roster.
var ErrReporterUnresolved = errors.New("reporter not found on roster")

// Sanctioner is the part of the admin API the machine drives.
type Sanctioner interface {
	Roster(ctx context.Context) ([]adminapi.Player, error)
	Kick(ctx context.Context, name, playerID, reason string) (bool, error)
	TempBan(ctx context.Context, name, playerID string, hours int, reason string) (bool, error)
	PermaBan(ctx context.Context, name, playerID, reason string) (bool, error)
	AddBlacklist(ctx context.Context, playerID, reason string) (bool, error)
	MessagePlayer(ctx context.Context, name, playerID, text string) (bool, error)
}

// MessageWriter phrases the text sent to the sanctioned player.
type MessageWriter interface {
	SanctionMessage(ctx context.Context, req ai.SanctionRequest) string
}

// Case is one message to adjudicate. The reporter travels with the case
// instead of living in shared state.
type Case struct {
	API            Sanctioner
	ReporterName   string
	Lang           string
	Classification ai.Classification
}

// Verdict describes what the machine decided and did.
type Verdict struct {
	Outcome     Outcome
	PlayerID    string
	PlayerName  string
	Reason      string
	Explanation string
	Message     string
	Warnings    int64
	DryRun      bool
	// Applied is false when dry run suppressed the calls or any call failed.
	Applied bool
}

// Color returns the card colour of the verdict.
func (v *Verdict) Color() int {
	return v.Outcome.Color()
}

// Machine escalates sanctions for reporter misconduct.
type Machine struct {
	ledger Ledger
	writer MessageWriter
	dryRun bool
	logger *zap.Logger
}

// NewMachine creates a new Machine.
func NewMachine(ledger Ledger, writer MessageWriter, dryRun bool, logger *zap.Logger) *Machine {
	return &Machine{
		ledger: ledger,
		writer: writer,
		dryRun: dryRun,
		logger: logger.Named("adjudication"),
	}
}

// Adjudicate decides the outcome for c and performs its side effects.
// NO_OP verdicts are returned without touching the roster or the ledger.
// ErrReporterUnresolved means the case was dropped.
func (m *Machine) Adjudicate(ctx context.Context, c Case) (*Verdict, error) {
	verdict := &Verdict{
		Outcome:     OutcomeNoOp,
		PlayerName:  c.ReporterName,
		Reason:      c.Classification.Reason,
		Explanation: c.Classification.Explanation,
		DryRun:      m.dryRun,
	}

	if Transition(c.Classification, 0) == OutcomeNoOp {
		return verdict, nil
	}

	reporter, err := m.lookupReporter(ctx, c)
	if err != nil {
		m.logger.Info("Dropping sanction for unresolved reporter",
			zap.String("reporter", c.ReporterName),
			zap.String("category", string(c.Classification.Category)),
			zap.Error(err))

		return nil, err
	}

	playerID := reporter.PlayerID
	verdict.PlayerID = playerID
	verdict.PlayerName = reporter.Name

	outcome, warnings, err := m.decide(ctx, playerID, c.Classification)
	if err != nil {
		return nil, err
	}

	verdict.Outcome = outcome
	verdict.Warnings = warnings
	verdict.Message = m.writer.SanctionMessage(ctx, ai.SanctionRequest{
		Action: outcome.Action(),
		Lang:   c.Lang,
		Name:   reporter.Name,
		Reason: c.Classification.Reason,
	})

	if m.dryRun {
		m.logger.Info("Dry run, sanction not applied",
			zap.String("outcome", string(outcome)),
			zap.String("player_id", playerID),
			zap.Int64("warnings", warnings))

		return verdict, nil
	}

	verdict.Applied = m.apply(ctx, c.API, verdict)

	return verdict, nil
}

// NotifyNotFound tells the reporter that the player named in query could not be
// found. An unresolved reporter yields ErrReporterUnresolved; dry run only logs.
func (m *Machine) NotifyNotFound(ctx context.Context, c Case, query string) error {
	reporter, err := m.lookupReporter(ctx, c)
	if err != nil {
		return err
	}

	text := m.writer.SanctionMessage(ctx, ai.SanctionRequest{
		Action: ai.ActionPlayerNotFound,
		Lang:   c.Lang,
		Name:   reporter.Name,
		Reason: query,
	})

	if m.dryRun {
		m.logger.Info("Dry run, not-found notice not sent",
			zap.String("player_id", reporter.PlayerID),
			zap.String("query", query))

		return nil
	}

	ok, err := c.API.MessagePlayer(ctx, reporter.Name, reporter.PlayerID, text)
	if err != nil {
		return fmt.Errorf("failed to send not-found notice: %w", err)
	}

	if !ok {
		return fmt.Errorf("%w: message_player", adminapi.ErrRequestFailed)
	}

	return nil
}

// decide runs the transition, keeping the ledger in step for warning-severity cases.
func (m *Machine) decide(ctx context.Context, playerID string, c ai.Classification) (Outcome, int64, error) {
	if !UsesLedger(c) {
		return Transition(c, 0), 0, nil
	}

	count, err := m.ledger.Increment(ctx, playerID)
	if err != nil {
		return OutcomeNoOp, 0, fmt.Errorf("ledger unavailable: %w", err)
	}

	outcome := Transition(c, count-1)
	if outcome == OutcomeKick {
		if err := m.ledger.Reset(ctx, playerID); err != nil {
			m.logger.Warn("Failed to reset warnings after kick",
				zap.String("player_id", playerID),
				zap.Error(err))

			return outcome, count, nil
		}

		count = 0
	}

	return outcome, count, nil
}

// apply issues the admin API calls for the verdict in order.
func (m *Machine) apply(ctx context.Context, api Sanctioner, v *Verdict) bool {
	var (
		ok  bool
		err error
	)

	switch v.Outcome {
	case OutcomeWarn, OutcomePositive:
		ok, err = api.MessagePlayer(ctx, v.PlayerName, v.PlayerID, v.Message)
	case OutcomeKick:
		ok, err = api.Kick(ctx, v.PlayerName, v.PlayerID, v.Message)
	case OutcomeTempBan:
		ok, err = api.TempBan(ctx, v.PlayerName, v.PlayerID, TempBanHours, v.Message)
	case OutcomePermaBan:
		ok, err = api.PermaBan(ctx, v.PlayerName, v.PlayerID, v.Message)

		listed, listErr := api.AddBlacklist(ctx, v.PlayerID, v.Reason)
		ok = ok && listed
		err = errors.Join(err, listErr)
	case OutcomeNoOp:
		return false
	}

	if err != nil || !ok {
		m.logger.Warn("Sanction not fully applied",
			zap.String("outcome", string(v.Outcome)),
			zap.String("player_id", v.PlayerID),
			zap.Error(err))

		return false
	}

	m.logger.Info("Sanction applied",
		zap.String("outcome", string(v.Outcome)),
		zap.String("player_id", v.PlayerID),
		zap.Int64("warnings", v.Warnings))

	return true
}

// lookupReporter finds the reporter's roster entry by case-insensitive name match.
func (m *Machine) lookupReporter(ctx context.Context, c Case) (adminapi.Player, error) {
	name := strings.TrimSpace(c.ReporterName)
	if name == "" || c.API == nil {
		return adminapi.Player{}, ErrReporterUnresolved
	}

	roster, err := c.API.Roster(ctx)
	if err != nil {
		return adminapi.Player{}, fmt.Errorf("%w: %w", ErrReporterUnresolved, err)
	}

	for _, player := range roster {
		if strings.EqualFold(player.Name, name) && player.PlayerID != "" {
			return player, nil
		}
	}

	return adminapi.Player{}, ErrReporterUnresolved
}
