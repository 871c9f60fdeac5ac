package bot

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/hllmod/reportbot/internal/bot/constants"
	"github.com/hllmod/reportbot/internal/report"
	"github.com/hllmod/reportbot/internal/translations"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// handlerTimeout bounds a single message or interaction handler.
const handlerTimeout = 2 * time.Minute

// Bot listens on the report channel, posts cards and runs moderator actions.
type Bot struct {
	client     bot.Client
	channelID  snowflake.ID
	dispatcher *report.Dispatcher
	executor   *report.Executor
	l          translations.Localizer
	logger     *zap.Logger
	wg         conc.WaitGroup
}

// New creates the Discord client and registers the event listeners.
func New(
	token string,
	channelID uint64,
	dispatcher *report.Dispatcher,
	executor *report.Executor,
	l translations.Localizer,
	logger *zap.Logger,
) (*Bot, error) {
	b := &Bot{
		channelID:  snowflake.ID(channelID),
		dispatcher: dispatcher,
		executor:   executor,
		l:          l,
		logger:     logger.Named("bot"),
	}

	client, err := disgo.New(token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnGuildMessageCreate:   b.handleMessage,
			OnComponentInteraction: b.handleComponentInteraction,
			OnModalSubmit:          b.handleModalSubmit,
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client

	return b, nil
}

// Start opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot", zap.Uint64("channel_id", uint64(b.channelID)))
	return b.client.OpenGateway(ctx)
}

// Close waits for running handlers and closes the gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.wg.Wait()
	b.client.Close(ctx)
}

// spawn runs fn in a tracked goroutine, logging panics instead of crashing.
func (b *Bot) spawn(kind string, fn func(ctx context.Context)) {
	b.wg.Go(func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in handler", zap.String("kind", kind), zap.Any("panic", r))
			}

			b.logger.Debug("Handler finished", zap.String("kind", kind), zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		fn(ctx)
	})
}

// handleMessage dispatches messages from the report channel and posts the resulting cards.
func (b *Bot) handleMessage(event *events.GuildMessageCreate) {
	if event.ChannelID != b.channelID || event.Message.Author.ID == event.Client().ID() {
		return
	}

	msg := toReportMessage(event.Message)

	b.spawn("message", func(ctx context.Context) {
		replies, err := b.dispatcher.Handle(ctx, msg)
		if err != nil {
			b.logger.Warn("Failed to handle message", zap.Error(err))
			return
		}

		for _, reply := range replies {
			create := discord.NewMessageCreateBuilder().
				SetEmbeds(reply.Embed).
				AddContainerComponents(reply.Components...).
				Build()

			if _, err := b.client.Rest().CreateMessage(b.channelID, create); err != nil {
				b.logger.Error("Failed to post card", zap.String("kind", reply.Kind.String()), zap.Error(err))
			}
		}
	})
}

// handleComponentInteraction opens the reason modal for sanctions and
// resolves the other buttons directly.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	customID := event.Data.CustomID()

	action, playerID, ok := constants.ParseButtonID(customID)
	if !ok {
		b.logger.Debug("Ignoring unknown component", zap.String("custom_id", customID))
		return
	}

	if constants.NeedsModal(action) {
		if err := event.Modal(buildModal(b.l, customID, action)); err != nil {
			b.logger.Error("Failed to open modal", zap.String("custom_id", customID), zap.Error(err))
		}

		return
	}

	embed, server, player, _ := cardTarget(&event.Message)
	moderator := event.User().Username

	if action == constants.ActionLogs {
		if err := event.DeferCreateMessage(true); err != nil {
			b.logger.Error("Failed to defer logs reply", zap.Error(err))
			return
		}

		b.spawn("logs", func(ctx context.Context) {
			text, err := b.executor.Logs(ctx, server, playerID)
			if err != nil {
				b.logger.Warn("Failed to fetch logs", zap.String("player_id", playerID), zap.Error(err))
				text = b.l.T(translations.KeyNoLogs)
			}

			followup := discord.NewMessageCreateBuilder().SetContent(text).SetEphemeral(true).Build()
			if _, err := event.Client().Rest().CreateFollowupMessage(event.ApplicationID(), event.Token(), followup); err != nil {
				b.logger.Error("Failed to send logs", zap.Error(err))
			}
		})

		return
	}

	if err := event.DeferUpdateMessage(); err != nil {
		b.logger.Error("Failed to defer update", zap.Error(err))
		return
	}

	if action == constants.ActionUnjustified {
		player = ""
	}

	b.spawn("component", func(ctx context.Context) {
		b.resolve(ctx, event.ApplicationID(), event.Token(), embed, report.ModAction{
			Action:     action,
			PlayerID:   playerID,
			PlayerName: player,
			Moderator:  moderator,
			ServerName: server,
		})
	})
}

// handleModalSubmit runs the sanction collected by a reason modal.
func (b *Bot) handleModalSubmit(event *events.ModalSubmitInteractionCreate) {
	action, playerID, ok := constants.ParseModalID(event.Data.CustomID)
	if !ok {
		b.logger.Debug("Ignoring unknown modal", zap.String("custom_id", event.Data.CustomID))
		return
	}

	embed, server, player, found := cardTarget(event.Message)
	if !found {
		b.logger.Warn("Modal submitted without a card", zap.String("custom_id", event.Data.CustomID))
		return
	}

	a := report.ModAction{
		Action:     action,
		PlayerID:   playerID,
		PlayerName: player,
		Reason:     event.Data.Text(constants.ReasonInputCustomID),
		Moderator:  event.User().Username,
		ServerName: server,
	}

	if action == constants.ActionTempBan {
		a.Hours = parseHours(event.Data.Text(constants.HoursInputCustomID))
	}

	if err := event.DeferUpdateMessage(); err != nil {
		b.logger.Error("Failed to defer update", zap.Error(err))
		return
	}

	b.spawn("modal", func(ctx context.Context) {
		b.resolve(ctx, event.ApplicationID(), event.Token(), embed, a)
	})
}

// resolve executes a and replaces the card with its resolved form.
func (b *Bot) resolve(ctx context.Context, appID snowflake.ID, token string, embed discord.Embed, a report.ModAction) {
	res, err := b.executor.Execute(ctx, a)
	if err != nil {
		if !errors.Is(err, report.ErrNoServer) {
			b.logger.Warn("Moderator action rejected", zap.String("action", a.Action), zap.Error(err))
		}

		return
	}

	update := discord.NewMessageUpdateBuilder().
		SetEmbeds(report.ResolveEmbed(embed, b.l.T(translations.KeyResolvedBy), res.Line)).
		ClearContainerComponents().
		Build()

	if _, err := b.client.Rest().UpdateInteractionResponse(appID, token, update); err != nil {
		b.logger.Error("Failed to update card", zap.String("action", a.Action), zap.Error(err))
	}
}
