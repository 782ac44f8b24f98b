package command

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
)

// WithRecover turns a panic inside a command into an error, so it is
// reported to the user like any other failure.
func WithRecover() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("command %s panicked: %v\n%s", c.Name(), r, debug.Stack())
				}
			}()
			return c.Run(ctx, inv)
		})
	}
}

// WithCommandLogger logs every execution with its invoker and duration.
func WithCommandLogger(log zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			evt := log.Info()
			if err != nil {
				evt = log.Warn().Err(err)
			}
			if cc, ok := inv.Data.(*Context); ok && cc.Interaction != nil {
				evt = evt.Str("guild", cc.Interaction.GuildID())
				if u := cc.Interaction.User(); u != nil {
					evt = evt.Str("user", u.Username).Str("user_id", u.ID)
				}
			}
			evt.Str("command", c.Name()).
				Dur("took", time.Since(start)).
				Bool("failed", err != nil).
				Msgf("Executed /%s", c.Name())
			return err
		})
	}
}
