package app

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-autowire/framework/container"
	gohttp "github.com/km-arc/go-autowire/framework/http"
	"github.com/km-arc/go-autowire/framework/routing"
)

var (
	GreeterID = container.MustDeclare(NewGreeter,
		container.Param("logger"),
		container.Param("greeting").WithDefault("Hello"),
	)
	HelloControllerID = container.MustDeclare(NewHelloController,
		container.Param("greeter"),
		container.Param("config"),
	)
	StatusControllerID = container.MustDeclareStruct((*StatusController)(nil))
)

// AppServiceProvider wires the application's own services and routes.
type AppServiceProvider struct {
	container.BaseProvider
}

// Register makes the demo services transient: controllers are built per
// request, and greeters are built with greetings taken from the URL, which
// must not pile up in the cache.
func (p *AppServiceProvider) Register(app *container.Container) {
	app.NoShare(GreeterID)
	app.NoShare(HelloControllerID)
	app.NoShare(StatusControllerID)
}

func (p *AppServiceProvider) Boot(app *container.Container) {
	router := container.MustResolve[*routing.Router](app, "router")

	router.Prefix("/hello", func(r *routing.Router) {
		r.Controller(http.MethodGet, "/", app, HelloControllerID)

		// GET /hello/{greeting}?name=... builds a Greeter with the greeting
		// overridden.
		r.Get("/{greeting}", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			g, err := container.ResolveWith[*Greeter](app, GreeterID, container.Args{
				"greeting": routing.Param(req, "greeting"),
			})
			if err != nil {
				res.Failure(err, false)
				return
			}
			res.Success(map[string]any{"message": g.Greet(req.URL.Query().Get("name"))})
		})
	})

	router.Group(func(r *routing.Router) {
		r.Middleware(middleware.NoCache)
		r.Controller(http.MethodGet, "/status", app, StatusControllerID)
	})
}
