// Package routing matches request paths against an ordered route table
// and dispatches to serving drivers.
package routing

import (
	"fmt"
	"regexp"

	"gemini-pages/internal/gemini"
	"gemini-pages/internal/serving"
)

// route pairs an anchored path pattern with a serving driver. The
// pattern's first capture group becomes the match parameter handed to
// the driver.
type route struct {
	pattern *regexp.Regexp
	driver  serving.Serving
}

// Router dispatches requests to the first route whose pattern matches
// the request path. Read-only after setup, safe for concurrent use.
type Router struct {
	routes []route
}

// Add appends a route. The pattern is anchored to the whole path and
// must contain at most one capture group.
func (rt *Router) Add(pattern string, driver serving.Serving) error {
	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return fmt.Errorf("routing: compile pattern %q: %w", pattern, err)
	}

	if re.NumSubexp() > 1 {
		return fmt.Errorf("routing: pattern %q has more than one capture group", pattern)
	}

	rt.routes = append(rt.routes, route{pattern: re, driver: driver})
	return nil
}

// Route answers req with the first matching route, or a 51 when no
// route matches.
func (rt *Router) Route(req *gemini.Request) gemini.Response {
	for _, route := range rt.routes {
		submatches := route.pattern.FindStringSubmatch(req.URL.Path)
		if submatches == nil {
			continue
		}

		var match string
		if len(submatches) > 1 {
			match = submatches[1]
		}

		return route.driver.Serve(serving.Handler{Request: req, Match: match})
	}

	return gemini.Failure(gemini.StatusNotFound, "Not found")
}
