package catalog

import (
	"net/http"

	"RocketShoes/pkg/kit"
)

type HTTPDeps = kit.RouterDeps

// NewHandler serves the read-only product and stock API behind the shared
// middleware stack.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := kit.NewRouter(deps)
	r.Mount("/", s.Routes())
	return r
}
