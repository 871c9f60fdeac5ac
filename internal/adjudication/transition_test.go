package adjudication_test

import (
	"testing"

	"github.com/hllmod/reportbot/internal/adjudication"
	"github.com/hllmod/reportbot/internal/ai"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category ai.Category
		severity ai.Severity
		prior    int64
		want     adjudication.Outcome
	}{
		{ai.CategoryPerma, ai.SeverityWarning, 0, adjudication.OutcomePermaBan},
		{ai.CategoryPerma, ai.SeverityTempBan, 3, adjudication.OutcomePermaBan},
		{ai.CategoryInsult, ai.SeverityPerma, 0, adjudication.OutcomePermaBan},
		{ai.CategoryInsult, ai.SeverityTempBan, 0, adjudication.OutcomeTempBan},
		{ai.CategoryInsult, ai.SeverityWarning, 0, adjudication.OutcomeWarn},
		{ai.CategoryInsult, ai.SeverityWarning, 1, adjudication.OutcomeKick},
		{ai.CategoryInsult, ai.SeverityWarning, 4, adjudication.OutcomeKick},
		{ai.CategoryTempBan, ai.SeverityWarning, 0, adjudication.OutcomeWarn},
		{ai.CategoryTempBan, ai.SeverityWarning, 1, adjudication.OutcomeKick},
		{ai.CategoryTempBan, ai.SeverityTempBan, 0, adjudication.OutcomeTempBan},
		{ai.CategoryTempBan, ai.SeverityPerma, 0, adjudication.OutcomePermaBan},
		{ai.CategoryLegit, ai.SeverityPerma, 0, adjudication.OutcomePositive},
		{ai.CategoryUnknown, ai.SeverityPerma, 0, adjudication.OutcomeNoOp},
	}

	for _, tt := range tests {
		got := adjudication.Transition(ai.Classification{Category: tt.category, Severity: tt.severity}, tt.prior)
		assert.Equal(t, tt.want, got, "%s/%s/%d", tt.category, tt.severity, tt.prior)
	}
}

func TestUsesLedger(t *testing.T) {
	t.Parallel()

	assert.True(t, adjudication.UsesLedger(ai.Classification{Category: ai.CategoryInsult, Severity: ai.SeverityWarning}))
	assert.True(t, adjudication.UsesLedger(ai.Classification{Category: ai.CategoryTempBan, Severity: ai.SeverityWarning}))
	assert.False(t, adjudication.UsesLedger(ai.Classification{Category: ai.CategoryInsult, Severity: ai.SeverityTempBan}))
	assert.False(t, adjudication.UsesLedger(ai.Classification{Category: ai.CategoryPerma, Severity: ai.SeverityWarning}))
	assert.False(t, adjudication.UsesLedger(ai.Classification{Category: ai.CategoryLegit, Severity: ai.SeverityWarning}))
}

func TestOutcomeColors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0xFFBF00, adjudication.OutcomeWarn.Color())
	assert.Equal(t, 0x3498DB, adjudication.OutcomeKick.Color())
	assert.Equal(t, 0xF1C40F, adjudication.OutcomeTempBan.Color())
	assert.Equal(t, 0xE74C3C, adjudication.OutcomePermaBan.Color())
	assert.Equal(t, 0x2ECC71, adjudication.OutcomePositive.Color())
	assert.Zero(t, adjudication.OutcomeNoOp.Color())
}
