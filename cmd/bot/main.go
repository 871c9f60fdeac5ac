package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hllmod/reportbot/internal/bot"
	"github.com/hllmod/reportbot/internal/setup"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// RunCommand starts the Discord bot.
	RunCommand = "run"

	// CheckCommand verifies the admin API of every configured server.
	CheckCommand = "check"

	// shutdownTimeout bounds the gateway close on exit.
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "reportbot",
		Usage: "Moderation assistant for in-game reports",
		Commands: []*cli.Command{
			{
				Name:   RunCommand,
				Usage:  "Start the bot and process reports",
				Action: runBot,
			},
			{
				Name:  CheckCommand,
				Usage: "Check connectivity to every configured server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "player",
						Aliases: []string{"p"},
						Usage:   "Resolve this text against each roster",
					},
				},
				Action: runCheck,
			},
		},
		Action: runBot,
	}

	return app.Run(context.Background(), os.Args)
}

// runBot starts the bot and blocks until an interrupt signal arrives.
func runBot(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	cfg := app.Config

	discordBot, err := bot.New(
		cfg.Discord.Token,
		cfg.Discord.ChannelID,
		app.Dispatcher,
		app.Executor,
		app.Translations.For(cfg.Language),
		app.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := discordBot.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	app.Logger.Info("Bot started, waiting for interrupt signal")
	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	discordBot.Close(closeCtx)

	return nil
}

// runCheck logs in to every server, prints its roster size and optionally
// resolves a player name.
func runCheck(ctx context.Context, c *cli.Command) error {
	app, err := setup.InitializeApp()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	cfg := app.Config
	query := c.String("player")

	for _, server := range cfg.Servers {
		endpoint := app.AdminAPI.At(server.BaseURL)

		if cfg.API.Username != "" {
			version, err := endpoint.Login(ctx, cfg.API.Username, cfg.API.Password)
			if err != nil {
				fmt.Printf("%s: login failed: %v\n", server.Name, err)
				continue
			}

			fmt.Printf("%s: API %s\n", server.Name, version)
		}

		roster, err := endpoint.Roster(ctx)
		if err != nil {
			fmt.Printf("%s: roster unavailable: %v\n", server.Name, err)
			continue
		}

		fmt.Printf("%s: %d players online\n", server.Name, len(roster))

		if query == "" {
			continue
		}

		match, err := app.Players.Find(ctx, endpoint, query)
		if err != nil {
			fmt.Printf("%s: no player matches %q\n", server.Name, query)
			continue
		}

		fmt.Printf("%s: %q matched %s (%s) with score %.2f\n",
			server.Name, match.Candidate, match.Player.Name, match.Player.PlayerID, match.Score)
	}

	app.Logger.Info("Check finished", zap.Int("servers", len(cfg.Servers)))

	return nil
}
