// Package logging holds zerolog helpers shared by the bot and its transports.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a logger tagged with a component name under the "cmp"
// key. The context hook is attached so chat fields set on a context show up
// on events logged with Ctx.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger().Hook(ContextHook{})
}
