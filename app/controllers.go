package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-autowire/framework/config"
	gohttp "github.com/km-arc/go-autowire/framework/http"
)

// HelloController answers GET /hello?name=... It is resolved per request.
type HelloController struct {
	greeter *Greeter
	config  *config.Config
}

func NewHelloController(greeter *Greeter, cfg *config.Config) *HelloController {
	return &HelloController{greeter: greeter, config: cfg}
}

func (c *HelloController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gohttp.NewResponse(w).Success(map[string]any{
		"message": c.greeter.Greet(r.URL.Query().Get("name")),
		"app":     c.config.App.Name,
	})
}

// StatusController answers GET /status. It is declared as a struct, so its
// exported fields are injected.
type StatusController struct {
	Config *config.Config
	Logger *zap.Logger `inject:"logger,optional"`
}

func (c *StatusController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.Logger != nil {
		c.Logger.Debug("status requested", zap.String("remote", r.RemoteAddr))
	}
	gohttp.NewResponse(w).Success(map[string]any{
		"app":   c.Config.App.Name,
		"env":   c.Config.App.Env,
		"debug": c.Config.App.Debug,
	})
}
