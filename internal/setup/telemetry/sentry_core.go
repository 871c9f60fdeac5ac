package telemetry

import (
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

// SentryCore implements zapcore.Core and forwards error entries to Sentry.
type SentryCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
}

// NewSentryCore creates a new Core that forwards entries at or above enab to Sentry.
func NewSentryCore(enab zapcore.LevelEnabler) *SentryCore {
	return &SentryCore{LevelEnabler: enab}
}

// With keeps logger-scoped fields so they reach Sentry as extras.
func (c *SentryCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &SentryCore{LevelEnabler: c.LevelEnabler}
	clone.fields = append(append(clone.fields, c.fields...), fields...)

	return clone
}

// Check determines whether the supplied Entry should be logged.
func (c *SentryCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// Write forwards the entry to Sentry as an exception event.
func (c *SentryCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if sentry.CurrentHub().Client() == nil {
		return nil
	}

	event := buildSentryEvent(ent, append(append([]zapcore.Field{}, c.fields...), fields...))
	sentry.CaptureEvent(event)

	return nil
}

// Sync implements zapcore.Core.
func (c *SentryCore) Sync() error {
	return nil
}

// buildSentryEvent converts a zap entry and its fields into a Sentry event.
func buildSentryEvent(ent zapcore.Entry, fields []zapcore.Field) *sentry.Event {
	enc := zapcore.NewMapObjectEncoder()

	var errorValues []string

	for i := range fields {
		if fields[i].Type == zapcore.ErrorType {
			if err, ok := fields[i].Interface.(error); ok {
				errorValues = append(errorValues, err.Error())
			}
		}

		fields[i].AddTo(enc)
	}

	event := sentry.NewEvent()
	event.Level = sentryLevel(ent.Level)
	event.Message = ent.Message
	event.Logger = ent.LoggerName

	for k, v := range enc.Fields {
		if k != "error" {
			event.Extra[k] = v
		}
	}

	value := ent.Message
	if len(errorValues) > 0 {
		value = fmt.Sprintf("%s: %s", ent.Message, strings.Join(errorValues, "; "))
	}

	funcName := ent.Caller.Function
	if idx := strings.LastIndexByte(funcName, '.'); idx > -1 {
		funcName = funcName[idx+1:]
	}

	event.Exception = []sentry.Exception{{
		Value:      value,
		Type:       funcName,
		Module:     ent.Caller.TrimmedPath(),
		Stacktrace: sentry.NewStacktrace(),
	}}

	return event
}

// sentryLevel maps zap levels onto Sentry levels.
func sentryLevel(level zapcore.Level) sentry.Level {
	switch level {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel, zapcore.InvalidLevel:
		return sentry.LevelFatal
	}

	return sentry.LevelError
}
