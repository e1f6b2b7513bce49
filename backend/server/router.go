package server

import (
	"log"
	"net/http"
	"strings"

	"easedrop/backend/utils"
	"easedrop/shared/endpoints"
)

type Route struct {
	Method string
	Path   string
}

type RouteDef struct {
	Methods HttpMethod
	Path    endpoints.Endpoint
	Handler http.HandlerFunc
}

type router struct {
	routes   map[Route]http.HandlerFunc
	reserved []string
	debug    bool
}

func (r *router) AddRoute(method string, path string, handler http.HandlerFunc) {
	route := Route{Path: path, Method: method}
	r.routes[route] = handler

	// Reserve endpoint to help pattern matching on new requests
	endpoint := strings.Split(route.Path, "/")[1]
	if len(endpoint) > 0 && endpoint != "*" && !utils.Contains(r.reserved, endpoint) {
		r.reserved = append(r.reserved, endpoint)
	}
}

func (r *router) AddRoutes(routes []RouteDef) {
	for _, route := range routes {
		for methodInt, methodStr := range MethodMap {
			if route.Methods&methodInt == 0 {
				continue
			}

			r.AddRoute(methodStr, string(route.Path), route.Handler)
		}
	}
}

// ServeHTTP finds the proper routing handler for the provided path.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	for el, handler := range r.routes {
		if r.matchPath(el.Path, req.URL.Path) && el.Method == req.Method {
			if r.debug {
				log.Printf("%s %s\n", req.Method, req.URL)
			}
			handler(w, req)
			return
		}
	}

	log.Printf("Error: %s %s", req.Method, req.URL)
	http.NotFound(w, req)
}

// matchPath takes a URL path and determines if it's a match for a particular
// handler. Wildcard segments ("*") match any non-empty path segment.
func (r *router) matchPath(pattern, path string) bool {
	parts := strings.Split(pattern, "/")
	segments := strings.Split(path, "/")

	if len(parts) != len(segments) {
		return false
	}

	for i, part := range parts {
		if part == "*" && len(segments[i]) > 0 {
			continue
		}

		if part != segments[i] {
			return false
		}
	}

	return true
}
