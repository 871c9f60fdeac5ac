package report

import (
	"context"
	"errors"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/hllmod/reportbot/internal/adjudication"
	"github.com/hllmod/reportbot/internal/adminapi"
	"github.com/hllmod/reportbot/internal/ai"
	"github.com/hllmod/reportbot/internal/resolver"
	"github.com/hllmod/reportbot/internal/setup/config"
	"github.com/hllmod/reportbot/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoServer is returned when no admin API endpoint can serve a message.
var ErrNoServer = errors.New("no game server configured")

// Kind identifies the branch that produced a reply.
type Kind int

const (
	KindUnit Kind = iota
	KindPlayer
	KindNotFound
	KindVerdict
)

// String returns the branch name used in logs.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindPlayer:
		return "player"
	case KindNotFound:
		return "not_found"
	case KindVerdict:
		return "verdict"
	}

	return "unknown"
}

// Reply is one card to post.
type Reply struct {
	Kind       Kind
	Embed      discord.Embed
	Components []discord.ContainerComponent
}

// Classifier judges messages and detects their language.
type Classifier interface {
	Classify(ctx context.Context, text, lang string) ai.Classification
	DetectLanguage(ctx context.Context, text string) string
}

// Adjudicator decides and applies sanctions.
type Adjudicator interface {
	Adjudicate(ctx context.Context, c adjudication.Case) (*adjudication.Verdict, error)
	NotifyNotFound(ctx context.Context, c adjudication.Case, query string) error
}

// EndpointFunc returns the admin API for a server base URL.
type EndpointFunc func(baseURL string) adminapi.API

// Dispatcher routes inbound messages to the unit, player or adjudication branch.
type Dispatcher struct {
	servers     []config.Server
	endpoint    EndpointFunc
	players     *resolver.PlayerResolver
	classifier  Classifier
	adjudicator Adjudicator
	cards       Cards
	logger      *zap.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	servers []config.Server,
	endpoint EndpointFunc,
	players *resolver.PlayerResolver,
	classifier Classifier,
	adjudicator Adjudicator,
	cards Cards,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		servers:     servers,
		endpoint:    endpoint,
		players:     players,
		classifier:  classifier,
		adjudicator: adjudicator,
		cards:       cards,
		logger:      logger.Named("dispatcher"),
	}
}

// request carries everything known about one inbound message.
type request struct {
	server   config.Server
	api      adminapi.API
	reporter string
	team     string
	text     string
}

// Handle processes msg and returns the cards to post. Failures degrade to
// fewer or no replies; the error return is reserved for messages no server can serve.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) ([]Reply, error) {
	text := EffectiveText(msg)
	if text == "" {
		return nil, nil
	}

	server, ok := d.SelectServer(ServerName(msg))
	if !ok {
		d.logger.Warn("No server for message", zap.String("footer", ServerName(msg)))
		return nil, ErrNoServer
	}

	reporter, team := Reporter(msg)
	req := request{
		server:   server,
		api:      d.endpoint(server.BaseURL),
		reporter: reporter,
		team:     team,
		text:     text,
	}

	args, isAdmin := SplitAdmin(text)
	if !isAdmin || args == "" {
		return d.adjudicate(ctx, req), nil
	}

	keyword, _ := utils.FirstWord(args)
	if resolver.IsUnitKeyword(keyword) && team != "" {
		return d.unitReport(ctx, req, keyword), nil
	}

	return d.playerReport(ctx, req, args), nil
}

// SelectServer returns the server named by the footer, or the first configured
// server when the footer is empty or unknown.
func (d *Dispatcher) SelectServer(name string) (config.Server, bool) {
	if name != "" {
		if server, ok := config.FindServer(d.servers, name); ok {
			return server, true
		}
	}

	if len(d.servers) == 0 {
		return config.Server{}, false
	}

	return d.servers[0], true
}

// unitReport answers "!admin <unit> ..." with the unit leader's card.
func (d *Dispatcher) unitReport(ctx context.Context, req request, keyword string) []Reply {
	leader, err := resolver.ResolveUnit(ctx, req.api, req.team, keyword)
	if err != nil {
		d.logger.Debug("Unit leader not found",
			zap.String("team", req.team),
			zap.String("unit", keyword),
			zap.Error(err))

		return []Reply{{Kind: KindNotFound, Embed: d.cards.NotFound(req.server.Name, req.reporter, req.text)}}
	}

	roster, err := req.api.Roster(ctx)
	if err != nil {
		d.logger.Debug("Roster unavailable for reporter lookup", zap.String("server", req.server.Name), zap.Error(err))
	}

	self := strings.EqualFold(leader.Name, req.reporter)

	return []Reply{{
		Kind:       KindUnit,
		Embed:      d.cards.Unit(req.server.Name, req.reporter, req.text, *leader),
		Components: d.cards.Buttons(leader.PlayerID, findPlayerID(roster, req.reporter), self),
	}}
}

// playerReport resolves args against the roster. A miss posts the not-found
// card, tells the reporter in game and hands the message to adjudication.
func (d *Dispatcher) playerReport(ctx context.Context, req request, args string) []Reply {
	roster, err := req.api.Roster(ctx)
	if err != nil {
		d.logger.Warn("Roster unavailable", zap.String("server", req.server.Name), zap.Error(err))
	}

	reporterID := findPlayerID(roster, req.reporter)

	match, err := d.players.Match(args, roster)
	if err != nil {
		replies := []Reply{{
			Kind:       KindNotFound,
			Embed:      d.cards.NotFound(req.server.Name, req.reporter, req.text),
			Components: d.cards.NotFoundButtons(reporterID),
		}}

		scrubbed, lang := d.prepare(ctx, req.text, roster)
		d.notifyNotFound(ctx, req, lang, args)

		return append(replies, d.judge(ctx, req, scrubbed, lang)...)
	}

	profile, stats := d.playerDetails(ctx, req.api, match.Player.PlayerID)
	self := strings.EqualFold(match.Player.Name, req.reporter)

	return []Reply{{
		Kind:       KindPlayer,
		Embed:      d.cards.Player(req.server.Name, req.reporter, req.text, match.Player, profile, stats),
		Components: d.cards.Buttons(match.Player.PlayerID, reporterID, self),
	}}
}

// playerDetails fetches profile and live stats concurrently. Either may be nil.
func (d *Dispatcher) playerDetails(
	ctx context.Context, api adminapi.API, playerID string,
) (*adminapi.Profile, *adminapi.LiveStats) {
	var (
		profile *adminapi.Profile
		stats   *adminapi.LiveStats
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := api.Profile(gctx, playerID)
		if err != nil {
			d.logger.Debug("Profile unavailable", zap.String("player_id", playerID), zap.Error(err))
			return nil
		}

		profile = p

		return nil
	})

	g.Go(func() error {
		s, err := api.LiveStats(gctx, playerID)
		if err != nil {
			d.logger.Debug("Live stats unavailable", zap.String("player_id", playerID), zap.Error(err))
			return nil
		}

		stats = s

		return nil
	})

	_ = g.Wait()

	return profile, stats
}

// adjudicate fetches the roster for name scrubbing and adjudicates the message.
func (d *Dispatcher) adjudicate(ctx context.Context, req request) []Reply {
	roster, err := req.api.Roster(ctx)
	if err != nil {
		d.logger.Warn("Roster unavailable, classifying unscrubbed text", zap.Error(err))
	}

	scrubbed, lang := d.prepare(ctx, req.text, roster)

	return d.judge(ctx, req, scrubbed, lang)
}

// prepare removes roster names from text and detects its language.
func (d *Dispatcher) prepare(ctx context.Context, text string, roster []adminapi.Player) (string, string) {
	names := make([]string, 0, len(roster))
	for _, player := range roster {
		names = append(names, player.Name)
	}

	scrubbed := utils.StripPlayerNames(text, names)

	return scrubbed, d.classifier.DetectLanguage(ctx, scrubbed)
}

// notifyNotFound messages the reporter that query matched nobody.
func (d *Dispatcher) notifyNotFound(ctx context.Context, req request, lang, query string) {
	err := d.adjudicator.NotifyNotFound(ctx, adjudication.Case{
		API:          req.api,
		ReporterName: req.reporter,
		Lang:         lang,
	}, query)
	if err != nil && !errors.Is(err, adjudication.ErrReporterUnresolved) {
		d.logger.Warn("Failed to notify reporter", zap.String("reporter", req.reporter), zap.Error(err))
	}
}

// judge classifies the scrubbed text and returns the verdict card, if any.
func (d *Dispatcher) judge(ctx context.Context, req request, scrubbed, lang string) []Reply {
	classification := d.classifier.Classify(ctx, scrubbed, lang)
	if classification.Category == ai.CategoryUnknown {
		return nil
	}

	verdict, err := d.adjudicator.Adjudicate(ctx, adjudication.Case{
		API:            req.api,
		ReporterName:   req.reporter,
		Lang:           lang,
		Classification: classification,
	})
	if err != nil {
		if !errors.Is(err, adjudication.ErrReporterUnresolved) {
			d.logger.Warn("Adjudication failed", zap.String("reporter", req.reporter), zap.Error(err))
		}

		return nil
	}

	if verdict.Outcome == adjudication.OutcomeNoOp {
		return nil
	}

	return []Reply{{Kind: KindVerdict, Embed: d.cards.Verdict(req.server.Name, verdict)}}
}

// findPlayerID returns the ID of the roster entry named name, ignoring case.
func findPlayerID(roster []adminapi.Player, name string) string {
	for _, player := range roster {
		if strings.EqualFold(player.Name, name) {
			return player.PlayerID
		}
	}

	return ""
}
