package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-autowire/framework/container"
	gohttp "github.com/km-arc/go-autowire/framework/http"
)

// Router wraps chi.Router with Laravel-style helpers.
type Router struct {
	mux    chi.Router
	logger *zap.Logger
	debug  bool
	extra  []func(http.Handler) http.Handler
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the access and error logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDebug includes resolution errors in controller error responses.
func WithDebug(debug bool) Option {
	return func(r *Router) { r.debug = debug }
}

// WithMiddleware appends middleware after the defaults. chi requires all
// middleware before the first route, so global middleware belongs here.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(r *Router) { r.extra = append(r.extra, mw...) }
}

// New creates a Router with sane defaults (RequestID, RealIP, access log, Recoverer).
func New(opts ...Option) *Router {
	r := &Router{mux: chi.NewRouter(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.mux.Use(middleware.RequestID)
	r.mux.Use(middleware.RealIP)
	r.mux.Use(AccessLog(r.logger))
	r.mux.Use(middleware.Recoverer)
	r.mux.Use(r.extra...)
	return r
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h http.HandlerFunc) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// Mount attaches a sub-handler under pattern.
//
//	router.Mount("/container", routing.Inspect(app.Container))
func (r *Router) Mount(pattern string, h http.Handler) {
	r.mux.Mount(pattern, h)
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group — Laravel: Route::group([], fn)
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx, logger: r.logger, debug: r.debug})
	})
}

// Prefix creates a sub-router with a URL prefix — Laravel: Route::prefix('/api')
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx, logger: r.logger, debug: r.debug})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Controllers ──────────────────────────────────────────────────────────────

// Controller routes method + pattern to the http.Handler bound to id. The
// handler is resolved on every request, so its share policy decides whether
// requests get a fresh controller.
//
//	// Laravel: Route::get('/hello', [HelloController::class, '__invoke'])
//	router.Controller(http.MethodGet, "/hello", app, container.KeyOf[*HelloController]())
func (r *Router) Controller(method, pattern string, res container.Resolver, id string) {
	r.mux.Method(method, pattern, r.resolving(res, id))
}

func (r *Router) resolving(res container.Resolver, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		h, err := container.Resolve[http.Handler](res, id)
		if err != nil {
			r.logger.Error("controller resolution failed",
				zap.String("id", id),
				zap.String("request_id", middleware.GetReqID(req.Context())),
				zap.Error(err))
			gohttp.NewResponse(w).Failure(err, r.debug)
			return
		}
		h.ServeHTTP(w, req)
	}
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param — equivalent to $request->route('id')
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}

// Routes lists the registered "METHOD pattern" pairs.
func (r *Router) Routes() []string {
	var out []string
	_ = chi.Walk(r.mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}
