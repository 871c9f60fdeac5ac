package ai

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/hllmod/reportbot/internal/ai/client"
	"github.com/hllmod/reportbot/internal/prompts"
	"github.com/hllmod/reportbot/pkg/utils"
	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the model answers with no content.
var ErrEmptyResponse = errors.New("empty model response")

// DefaultLanguage is returned by language detection when nothing better is known.
const DefaultLanguage = "en"

const (
	classificationPath    = "classification.report.templates.instructions"
	languageDetectionPath = "language_detection.templates.instructions"

	classificationMaxTokens    = 150
	languageDetectionMaxTokens = 5
	sanctionMaxTokens          = 120

	detectionTemperature  = 0.0
	generationTemperature = 0.7
)

// PromptSource resolves prompt bundle keys for a language.
type PromptSource interface {
	Get(lang, path string) string
	Int(lang, path string) int
}

// Classifier asks the language model to judge messages and phrase sanctions.
type Classifier struct {
	chat    client.ChatCompletions
	prompts PromptSource
	model   string
	logger  *zap.Logger
}

// NewClassifier creates a new Classifier.
func NewClassifier(chat client.ChatCompletions, source PromptSource, model string, logger *zap.Logger) *Classifier {
	return &Classifier{
		chat:    chat,
		prompts: source,
		model:   model,
		logger:  logger.Named("ai_classifier"),
	}
}

// Classify judges text. Empty text and every model or parse failure yield Unknown.
func (c *Classifier) Classify(ctx context.Context, text, lang string) Classification {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown()
	}

	instructions := c.render(lang, classificationPath, ClassificationPrompt, map[string]any{
		"Language": lang,
	})

	output, err := c.complete(ctx, instructions, text, detectionTemperature, classificationMaxTokens)
	if err != nil {
		c.logger.Warn("Classification failed", zap.String("lang", lang), zap.Error(err))
		return Unknown()
	}

	result := ParseClassification(output)

	c.logger.Debug("Classified message",
		zap.String("category", string(result.Category)),
		zap.String("severity", string(result.Severity)),
		zap.String("reason", result.Reason))

	return result
}

// DetectLanguage returns the two-letter code of text's language.
// Empty text and failures return DefaultLanguage.
func (c *Classifier) DetectLanguage(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return DefaultLanguage
	}

	instructions := c.render(DefaultLanguage, languageDetectionPath, LanguageDetectionPrompt, nil)

	output, err := c.complete(ctx, instructions, text, detectionTemperature, languageDetectionMaxTokens)
	if err != nil {
		c.logger.Warn("Language detection failed", zap.Error(err))
		return DefaultLanguage
	}

	if code, ok := parseLanguageCode(output); ok {
		return code
	}

	c.logger.Debug("Unrecognised language code", zap.String("output", output))

	return DefaultLanguage
}

// complete sends one system and one user message and returns the trimmed answer.
func (c *Classifier) complete(
	ctx context.Context, system, user string, temperature float64, maxTokens int64,
) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:               c.model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", err
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	return content, nil
}

// render renders the bundle prompt at path, or fallback when the bundle has none.
func (c *Classifier) render(lang, path, fallback string, data any) string {
	raw := c.prompts.Get(lang, path)
	if raw == "" {
		raw = fallback
	}

	out, err := prompts.Execute(path, raw, data)
	if err != nil {
		c.logger.Warn("Failed to render prompt", zap.String("path", path), zap.Error(err))
		return raw
	}

	return out
}

// parseLanguageCode extracts a two-letter code from model output such as "de" or "DE.".
func parseLanguageCode(output string) (string, bool) {
	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, utils.Lower(output))

	if len(letters) != 2 || letters[0] < 'a' || letters[0] > 'z' || letters[1] < 'a' || letters[1] > 'z' {
		return "", false
	}

	return letters, true
}
