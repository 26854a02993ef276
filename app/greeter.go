package app

import (
	"strings"

	"go.uber.org/zap"
)

// Greeter builds greetings. It is declared for auto-wiring: the logger comes
// from the container and the greeting falls back to "Hello".
type Greeter struct {
	logger   *zap.Logger
	greeting string
}

func NewGreeter(logger *zap.Logger, greeting string) *Greeter {
	return &Greeter{logger: logger, greeting: greeting}
}

// Greet greets name, or "world" when name is blank.
func (g *Greeter) Greet(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "world"
	}
	msg := g.greeting + ", " + name + "!"
	g.logger.Debug("greeted", zap.String("name", name))
	return msg
}
