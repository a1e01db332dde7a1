package serving

import (
	"gemini-pages/internal/gemini"
)

// Serving is an interface used to define a serving driver.
type Serving interface {
	Serve(Handler) gemini.Response
}

// Handler aggregates the request attributes a serving driver needs to
// produce a response.
type Handler struct {
	// Request is the parsed protocol request, including the client
	// identity extracted from its certificate.
	Request *gemini.Request

	// Match is the route parameter captured by the routing layer, a
	// '/'-separated path relative to the serving root.
	Match string
}

// Serve passes the handler itself to the serving driver.
func (h Handler) Serve(s Serving) gemini.Response {
	return s.Serve(h)
}
