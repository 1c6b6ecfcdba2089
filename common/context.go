package common

// A context carries the ambient dependencies of a component: its
// configuration and its logger.  Components derive whatever they need
// from the context at construction time.
type Context interface {
	Config() Config
	Logger() Logger
}

type ctx struct {
	config Config
	logger Logger
}

func NewContext(config Config) Context {
	return &ctx{config: config, logger: NewStandardLogger(config)}
}

func NewEmptyContext() Context {
	return NewContext(NewEmptyConfig())
}

func (c *ctx) Config() Config {
	return c.config
}

func (c *ctx) Logger() Logger {
	return c.logger
}
