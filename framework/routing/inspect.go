package routing

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/km-arc/go-autowire/framework/container"
	gohttp "github.com/km-arc/go-autowire/framework/http"
)

// Inspect serves a read-only view of c's bindings:
//
//	GET /      → {"data": [Binding...]}
//	GET /{id}  → {"data": Binding}, 404 if id is not resolvable
//
// Ids may contain slashes (type keys do), so the id is the rest of the path.
func Inspect(c *container.Container) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Success(c.Bindings())
	})
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		res := gohttp.NewResponse(w)
		id, err := url.PathUnescape(chi.URLParam(req, "*"))
		if err != nil {
			res.Error(http.StatusBadRequest, "Malformed identifier.")
			return
		}
		b, ok := c.Describe(id)
		if !ok {
			res.NotFound("No binding for [" + id + "].")
			return
		}
		res.Success(b)
	})
	return r
}
