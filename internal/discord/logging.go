package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// relayLibraryLogs returns a discordgo.Logger that forwards the library's
// messages to log at the matching level.
func relayLibraryLogs(log zerolog.Logger) func(msgL, caller int, format string, a ...interface{}) {
	return func(msgL, _ int, format string, a ...interface{}) {
		var evt *zerolog.Event
		switch msgL {
		case discordgo.LogError:
			evt = log.Error()
		case discordgo.LogWarning:
			evt = log.Warn()
		case discordgo.LogInformational:
			evt = log.Info()
		default:
			evt = log.Debug()
		}
		evt.Msgf(format, a...)
	}
}

// libraryLogLevel is the discordgo verbosity for the session.
func libraryLogLevel(debug bool) int {
	if debug {
		return discordgo.LogDebug
	}
	return discordgo.LogWarning
}

func (b *Bot) onRateLimit(_ *discordgo.Session, r *discordgo.RateLimit) {
	evt := b.libLog.Warn().Str("url", r.URL)
	if r.TooManyRequests != nil {
		evt = evt.Str("bucket", r.Bucket).Dur("retry_after", r.RetryAfter)
	}
	evt.Msg("Rate limited")
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.libLog.Warn().Msg("Disconnected from gateway")
}
