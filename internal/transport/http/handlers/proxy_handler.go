package handlers

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/services/session"
	httperrors "github.com/highway905/awi-gateway/internal/transport/http/errors"
)

// ProxyHandler forwards API traffic to the upstream warehouse API. The
// session token never reaches the browser-facing response; it is
// attached here as a bearer header after the guard has validated the
// session. Inbound cookies are stripped so gateway session state stays
// on this side.
type ProxyHandler struct {
	proxy  *httputil.ReverseProxy
	prefix string
	log    *zap.Logger
}

func NewProxyHandler(upstreamBaseURL, stripPrefix string, log *zap.Logger) (*ProxyHandler, error) {
	target, err := url.Parse(upstreamBaseURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	h := &ProxyHandler{prefix: stripPrefix, log: log}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
		req.Header.Del("Cookie")
		if h.prefix != "" {
			req.URL.Path = "/" + strings.TrimPrefix(strings.TrimPrefix(req.URL.Path, h.prefix), "/")
		}
		if rec, ok := session.RecordFromContext(req.Context()); ok {
			req.Header.Set("Authorization", "Bearer "+rec.Token)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		h.log.Warn("upstream proxy failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "UPSTREAM_UNREACHABLE",
			Message: "warehouse API is unreachable",
		})
	}
	h.proxy = proxy

	return h, nil
}

func (h *ProxyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	h.proxy.ServeHTTP(w, r)
}
