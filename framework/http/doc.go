// Package http provides JSON response helpers for handlers served by the
// framework router.
//
//	func (c *HelloController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    res := gohttp.NewResponse(w)
//	    res.Success(map[string]any{"message": c.greeter.Greet(r.URL.Query().Get("name"))})
//	}
package http
