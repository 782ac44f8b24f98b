package discord

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/internal/command"
	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// editInterval keeps command edits well under Discord's rate limit.
	editInterval = 25 * time.Millisecond
	editWorkers  = 4
)

// CommandAPI is the application command surface of *discordgo.Session the
// reconciler needs.
type CommandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandEdit(appID, guildID, cmdID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

// Scope is where commands are registered: one guild, or the application's
// global command set when GuildID is empty.
type Scope struct {
	ApplicationID string
	GuildID       string
	GuildName     string
}

func GlobalScope(appID string) Scope { return Scope{ApplicationID: appID} }

func GuildScope(appID string, g *discordgo.Guild) Scope {
	return Scope{ApplicationID: appID, GuildID: g.ID, GuildName: g.Name}
}

func (s Scope) Global() bool { return s.GuildID == "" }

func (s Scope) String() string {
	if s.Global() {
		return "global"
	}
	return fmt.Sprintf("guild %s (%s)", s.GuildName, s.GuildID)
}

func (s Scope) describe(c *discordgo.ApplicationCommand) string {
	if s.Global() {
		return fmt.Sprintf("global command %s (type %d)", c.Name, c.Type)
	}
	return fmt.Sprintf("%s guild command %s (type %d)", s.GuildName, c.Name, c.Type)
}

// selectScope picks the development guild in debug mode and the global scope
// otherwise. It reports false when debug mode has no guild to target, so
// commands are never reconciled against the wrong scope.
func selectScope(debug bool, appID string, devGuild *discordgo.Guild) (Scope, bool) {
	if appID == "" {
		return Scope{}, false
	}
	if !debug {
		return GlobalScope(appID), true
	}
	if devGuild == nil {
		return Scope{}, false
	}
	return GuildScope(appID, devGuild), true
}

// Result counts what a reconciliation pass did.
type Result struct {
	Checked   int // chat-input commands found remotely
	Edited    int
	Failed    int
	Unhandled int // remote commands without a local descriptor
	Ignored   int // other command types
}

// Reconciler brings remote command registrations in line with the local
// registry. It only edits commands that exist on both sides and differ; it
// never creates or deletes.
type Reconciler struct {
	api      CommandAPI
	registry *cmd.Registry
	log      zerolog.Logger
	limiter  *rate.Limiter
	workers  int
}

func NewReconciler(api CommandAPI, registry *cmd.Registry, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		api:      api,
		registry: registry,
		log:      log,
		limiter:  rate.NewLimiter(rate.Every(editInterval), 1),
		workers:  editWorkers,
	}
}

// Reconcile runs one pass over scope and waits for its edits. Only a failure
// to list the remote commands is returned; edit failures are logged and
// counted.
func (r *Reconciler) Reconcile(ctx context.Context, scope Scope) (Result, error) {
	// ApplicationCommands asks for localizations, so they take part in the
	// comparison.
	remote, err := r.api.ApplicationCommands(scope.ApplicationID, scope.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch %s commands: %w", scope, err)
	}

	var (
		res            Result
		edited, failed atomic.Int32
		g              errgroup.Group
	)
	g.SetLimit(r.workers)

	for _, rc := range remote {
		desc := scope.describe(rc)
		r.log.Debug().Msgf("Checking %s", desc)

		if rc.Type != discordgo.ChatApplicationCommand {
			res.Ignored++
			continue
		}
		res.Checked++

		var local *discordgo.ApplicationCommand
		if c, ok := r.registry.Get(rc.Name); ok {
			local = command.Definition(c)
		}
		if local == nil {
			r.log.Warn().Msgf("Registration for unhandled %s", desc)
			res.Unhandled++
			continue
		}

		if definitionsEqual(local, rc) {
			continue
		}

		r.log.Info().Msgf("Synchronizing registration for %s", desc)
		r.log.Debug().RawJSON("definition", definitionJSON(local)).Msg("Local command definition")
		r.log.Debug().RawJSON("definition", definitionJSON(rc)).Msg("Remote command definition")

		id := rc.ID
		g.Go(func() error {
			if err := r.limiter.Wait(ctx); err != nil {
				r.log.Error().Err(err).Msgf("Gave up synchronizing %s", desc)
				failed.Add(1)
				return nil
			}
			if _, err := r.api.ApplicationCommandEdit(scope.ApplicationID, scope.GuildID, id, local, discordgo.WithContext(ctx)); err != nil {
				r.log.Error().Err(err).Msgf("Failed to synchronize %s", desc)
				failed.Add(1)
				return nil
			}
			edited.Add(1)
			return nil
		})
	}

	_ = g.Wait()
	res.Edited = int(edited.Load())
	res.Failed = int(failed.Load())

	if res.Edited > 0 {
		r.log.Warn().Msg("Synchronized one or more commands! Verify that this was not done in error!")
	}
	if res.Failed > 0 {
		r.log.Error().Msgf("Failed to synchronize %d command(s), they will be retried on the next reconciliation", res.Failed)
	}
	r.log.Info().
		Str("scope", scope.String()).
		Int("checked", res.Checked).
		Int("edited", res.Edited).
		Int("failed", res.Failed).
		Int("unhandled", res.Unhandled).
		Msg("Command reconciliation finished")
	return res, nil
}
