package discord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/internal/config"
	"github.com/keshon/cuboid/internal/logger"
	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
)

// Bot is a Discord bot
type Bot struct {
	cfg      *config.Config
	dg       *discordgo.Session
	registry *cmd.Registry
	log      zerolog.Logger
	libLog   zerolog.Logger

	dispatcher *Dispatcher
	reconciler *Reconciler

	ready  atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc

	// mu orders tasks.Add in onReady against tasks.Wait in Stop.
	mu       sync.Mutex
	stopping bool
	tasks    sync.WaitGroup
}

// New creates the session and wires the handlers. Nothing touches the
// network until Start.
func New(cfg *config.Config, registry *cmd.Registry, root zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		cfg:      cfg,
		dg:       dg,
		registry: registry,
		log:      logger.Child(root, "bot"),
		libLog:   logger.Child(root, "discordgo"),
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.dispatcher = NewDispatcher(registry, b, b.log)
	b.reconciler = NewReconciler(dg, registry, b.log)

	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.LogLevel = libraryLogLevel(cfg.DebugMode())
	discordgo.Logger = relayLibraryLogs(b.libLog)

	dg.AddHandlerOnce(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onRateLimit)
	dg.AddHandler(b.onDisconnect)

	return b, nil
}

// Start authenticates and opens the gateway connection. A bad token or an
// unreachable gateway is returned as is, without retrying.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)
	if err := b.dg.Open(); err != nil {
		b.cancel()
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	return nil
}

// Stop cancels background work, waits for it and closes the session.
func (b *Bot) Stop() error {
	b.mu.Lock()
	b.stopping = true
	b.mu.Unlock()

	b.cancel()
	b.tasks.Wait()
	b.ready.Store(false)
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}
	return nil
}

// Run starts the bot and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	b.log.Info().Msg("Shutdown signal received. Cleaning up...")
	return b.Stop()
}

func (b *Bot) Logger() zerolog.Logger  { return b.log }
func (b *Bot) Commands() []cmd.Command { return b.registry.All() }

// DevelopmentGuild resolves the configured development guild from the
// session state. It is nil until the bot is ready, and when no guild is
// configured or the bot is not a member of it.
func (b *Bot) DevelopmentGuild() *discordgo.Guild {
	id := b.cfg.DevGuildID
	if !b.ready.Load() || id == "" {
		return nil
	}
	g, err := b.dg.State.Guild(id)
	if err != nil {
		return nil
	}
	// Guilds from READY are stubs until their GUILD_CREATE arrives.
	if g.Name == "" {
		if full, err := b.dg.Guild(id); err == nil {
			return full
		}
	}
	return g
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.ready.Store(true)
	b.log.Info().Msgf("Ready! Logged in as: %s", r.User.String())

	devGuild := b.DevelopmentGuild()
	if devGuild != nil {
		b.log.Info().Msgf("Development guild: %s (%s)", devGuild.Name, devGuild.ID)
	}

	if scope, ok := selectScope(b.cfg.DebugMode(), applicationID(r), devGuild); ok {
		b.reconcileAsync(scope)
	} else {
		b.log.Error().Msg("No valid command scope found! Skipping command reconciliation.")
	}

	b.setPresence(s)
}

// reconcileAsync starts a tracked reconciliation pass unless Stop has begun.
func (b *Bot) reconcileAsync(scope Scope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping {
		b.log.Debug().Msg("Shutting down, skipping command reconciliation")
		return
	}
	ctx := b.ctx
	b.tasks.Add(1)
	go func() {
		defer b.tasks.Done()
		if _, err := b.reconciler.Reconcile(ctx, scope); err != nil {
			b.log.Error().Err(err).Msg("Command reconciliation failed")
		}
	}()
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatcher.Handle(b.ctx, s, i)
}

func (b *Bot) setPresence(s *discordgo.Session) {
	err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{
			Name: b.cfg.PresenceText,
			Type: discordgo.ActivityTypeGame,
		}},
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("Failed to set presence")
	}
}

func applicationID(r *discordgo.Ready) string {
	if r.Application != nil && r.Application.ID != "" {
		return r.Application.ID
	}
	if r.User != nil {
		return r.User.ID
	}
	return ""
}
