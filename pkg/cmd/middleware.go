package cmd

// Middleware decorates a command (logging, recovery, access checks).
type Middleware func(Command) Command

// Apply wraps c with mws in order, so the last middleware ends up outermost.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}
