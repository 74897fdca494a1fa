package storefront

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"RocketShoes/pkg/kit"
)

// NewReverseProxy forwards catalog reads so the SPA talks to one origin.
func NewReverseProxy(target string, log *zap.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("catalog proxy failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusBadGateway, "catalog unavailable", nil)
	}
	return p, nil
}
