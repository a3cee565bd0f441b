package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nimctl/pkg/types"
)

// Service is the upstream inference server as seen by the proxy.
type Service interface {
	Ready(ctx context.Context) (int, error)
	ListModels(ctx context.Context) (*types.ModelList, error)
	BaseURL() string
}

// HTTPError allows upstream errors to provide an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// NewMux builds the proxy router: observability endpoints plus a transparent
// reverse proxy for the upstream /v1 API. Nothing on the inference path is
// buffered or reordered; streamed responses flush through immediately.
func NewMux(svc Service, target *url.URL) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)

	rp := httputil.NewSingleHostReverseProxy(target)
	// Negative flush interval streams SSE fragments as they arrive.
	rp.FlushInterval = -1
	rp.ErrorHandler = func(w http.ResponseWriter, req *http.Request, err error) {
		IncrementProxyError("upstream_unreachable")
		writeJSONError(w, http.StatusBadGateway, "upstream unreachable: "+err.Error())
	}
	r.Handle("/v1/*", rp)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Ready(r.Context())
		if err == nil && status == http.StatusOK {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream not ready"))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		st := types.ServerStatus{BaseURL: svc.BaseURL()}
		if status, err := svc.Ready(r.Context()); err == nil && status == http.StatusOK {
			st.Ready = true
			st.State = "running"
			if ml, err := svc.ListModels(r.Context()); err == nil {
				st.Models = ml.Data
			}
		} else {
			st.State = "unready"
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: code})
}
