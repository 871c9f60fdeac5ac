package ai

import (
	"context"
	"fmt"

	"github.com/hllmod/reportbot/internal/prompts"
	"github.com/hllmod/reportbot/pkg/utils"
	"go.uber.org/zap"
)

// Action names a sanction message kind.
type Action string

const (
	ActionWarning        Action = "warning"
	ActionKick           Action = "kick"
	ActionTempBan        Action = "temp_ban"
	ActionPerma          Action = "perma"
	ActionPositive       Action = "positive"
	ActionPlayerNotFound Action = "player_not_found"
)

const (
	warningMaxLength = 200
	defaultMaxLength = 240
)

// SanctionRequest describes the message to generate.
type SanctionRequest struct {
	Action Action
	Lang   string
	Name   string
	Reason string
}

// MaxLength returns the character cap for action in lang.
func (c *Classifier) MaxLength(action Action, lang string) int {
	if n := c.prompts.Int(lang, fmt.Sprintf("actions.%s.metadata.max_length", action)); n > 0 {
		return n
	}

	if action == ActionWarning {
		return warningMaxLength
	}

	return defaultMaxLength
}

// SanctionMessage generates a short localized message for the sanctioned player.
// Overlong answers are cut on a word boundary. When the model fails the
// bundle's or the built-in fallback text is used.
func (c *Classifier) SanctionMessage(ctx context.Context, req SanctionRequest) string {
	maxLength := c.MaxLength(req.Action, req.Lang)
	data := map[string]any{
		"Action":    string(req.Action),
		"Language":  req.Lang,
		"Name":      req.Name,
		"Reason":    req.Reason,
		"MaxLength": maxLength,
	}

	path := fmt.Sprintf("actions.%s.templates.template", req.Action)
	instructions := c.render(req.Lang, path, SanctionPrompt, data)

	output, err := c.complete(ctx, instructions, req.Reason, generationTemperature, sanctionMaxTokens)
	if err != nil {
		c.logger.Warn("Sanction message generation failed, using fallback",
			zap.String("action", string(req.Action)),
			zap.Error(err))

		return utils.Truncate(c.fallback(req, data), maxLength)
	}

	return utils.Truncate(output, maxLength)
}

// fallback renders the bundle fallback for the action or the built-in one.
func (c *Classifier) fallback(req SanctionRequest, data map[string]any) string {
	path := fmt.Sprintf("actions.%s.templates.fallback", req.Action)

	raw := c.prompts.Get(req.Lang, path)
	if raw == "" {
		raw = fallbackMessages[req.Action]
	}

	out, err := prompts.Execute(path, raw, data)
	if err != nil {
		c.logger.Warn("Failed to render fallback message", zap.String("path", path), zap.Error(err))
		return req.Reason
	}

	return out
}
