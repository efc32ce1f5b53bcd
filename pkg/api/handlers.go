package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/astronomy-commons/alertdb/pkg/httputil"
	"github.com/astronomy-commons/alertdb/pkg/storage"
)

// getAlert serves GET /v1/alerts/{id}: the alert packet in compressed
// Confluent Wire Format, exactly as stored.
func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	data, err := s.service.Retrieve(r.Context(), storage.KindAlert, id)
	if err != nil {
		s.writeRetrievalError(w, "alert", err)
		return
	}
	httputil.WriteBytes(w, http.StatusOK, AlertContentType, data)
}

// getSchema serves GET /v1/schemas/{id}: the JSON-serialized Avro schema
// document, exactly as stored.
func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	data, err := s.service.Retrieve(r.Context(), storage.KindSchema, id)
	if err != nil {
		s.writeRetrievalError(w, "schema", err)
		return
	}
	httputil.WriteBytes(w, http.StatusOK, SchemaContentType, data)
}

// healthcheck serves GET /v1/health with a bare OK body.
func (s *Server) healthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeRetrievalError maps the retrieval error taxonomy onto HTTP status
// codes. This is the only place that translation happens.
func (s *Server) writeRetrievalError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidID):
		httputil.WriteBadRequest(w, "invalid "+what+" identifier")
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFound(w, what+" not found")
	case errors.Is(err, storage.ErrUnavailable):
		httputil.WriteServiceUnavailable(w, "storage backend unavailable")
	default:
		s.logger.WithError(err).Error("unmapped retrieval error")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
