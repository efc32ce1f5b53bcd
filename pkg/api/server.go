// Package api is the HTTP adapter for the alert database: a thin translation
// of URL parameters into retrieval calls and retrieval outcomes into HTTP
// status codes. No retrieval semantics live here.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/astronomy-commons/alertdb/pkg/httputil"
	"github.com/astronomy-commons/alertdb/pkg/observability"
	"github.com/astronomy-commons/alertdb/pkg/retrieval"
)

// SchemaContentType is the preferred content type of a Confluent Schema
// Registry. This server is not one, but it serves the same kind of document.
const SchemaContentType = "application/vnd.schemaregistry.v1+json"

// AlertContentType is deliberately generic: there is no consensus content
// type for gzipped Confluent-Wire-Format Avro, and arbitrary-bytes is at
// least well understood by every client.
const AlertContentType = "application/octet-stream"

// Server routes HTTP requests to the retrieval service.
type Server struct {
	service *retrieval.Service
	router  *mux.Router
	logger  *observability.Logger
}

// NewServer creates the API server. Metrics may be nil in tests that do not
// assert on instrumentation.
func NewServer(service *retrieval.Service, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		service: service,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.router.Use(mux.MiddlewareFunc(httputil.RequestIDMiddleware))
	s.router.Use(mux.MiddlewareFunc(httputil.LoggingMiddleware(logger)))
	s.router.Use(mux.MiddlewareFunc(httputil.RecoveryMiddleware(logger)))
	if metrics != nil {
		s.router.Use(mux.MiddlewareFunc(observability.HTTPMetricsMiddleware(metrics, routeTemplate)))
	}

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/v1/alerts/{id}", s.getAlert).Methods("GET")
	s.router.HandleFunc("/v1/schemas/{id}", s.getSchema).Methods("GET")
	s.router.HandleFunc("/v1/health", s.healthcheck).Methods("GET")
}

// routeTemplate returns the matched mux route template so metric labels
// never carry raw identifiers.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}
