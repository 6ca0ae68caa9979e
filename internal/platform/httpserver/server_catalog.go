package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	httpadapter "opendata/contexts/open-data/event-catalog-service/adapters/http"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	cataloghttp "opendata/contexts/open-data/event-catalog-service/transport/http"
)

func (s *Server) registerCollection(path string, h httpadapter.Handler) {
	s.mux.HandleFunc("GET "+path, s.handleList(h))
	s.mux.HandleFunc("POST "+path, s.handleCreate(h))
	s.mux.HandleFunc("GET "+path+"/{id}", s.handleGet(h))
	s.mux.HandleFunc("PUT "+path+"/{id}", s.handleReplace(h))
	s.mux.HandleFunc("DELETE "+path+"/{id}", s.handleDelete(h))
}

func (s *Server) caller(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(s.opts.IdentityHeader))
}

func (s *Server) writeRequest(r *http.Request) httpadapter.WriteRequest {
	return httpadapter.WriteRequest{
		Caller:      s.caller(r),
		Accept:      r.Header.Get("Accept"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        r.Body,
	}
}

func (s *Server) handleList(h httpadapter.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := h.ListHandler(r.Context(), s.caller(r), r.Header.Get("Accept"), r.URL.Query())
		if err != nil {
			s.writeCatalogDomainError(w, err)
			return
		}
		writeRepresentation(w, rep)
	}
}

func (s *Server) handleGet(h httpadapter.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := h.GetHandler(r.Context(), s.caller(r), r.Header.Get("Accept"), r.PathValue("id"))
		if err != nil {
			s.writeCatalogDomainError(w, err)
			return
		}
		writeRepresentation(w, rep)
	}
}

func (s *Server) handleCreate(h httpadapter.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := h.CreateHandler(r.Context(), s.writeRequest(r))
		if err != nil {
			s.writeCatalogDomainError(w, err)
			return
		}
		writeRepresentation(w, rep)
	}
}

func (s *Server) handleReplace(h httpadapter.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.ReplaceHandler(r.Context(), r.PathValue("id"), s.writeRequest(r))
		if err != nil {
			s.writeCatalogDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleDelete(h httpadapter.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.DeleteHandler(r.Context(), s.caller(r), r.PathValue("id")); err != nil {
			s.writeCatalogDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleHarvest runs one ingestion sweep. It is disabled unless a harvest
// token is configured.
func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	if s.opts.HarvestToken == "" {
		writeCatalogError(w, http.StatusNotFound, "url", "path", "Not found")
		return
	}
	if !bearerMatches(r, s.opts.HarvestToken) {
		writeCatalogError(w, http.StatusUnauthorized, "header", "Authorization", "A valid bearer token is required")
		return
	}

	report, err := s.catalog.Harvester.RunOnce(r.Context())
	if err != nil {
		s.logger.Error("harvest sweep failed",
			"event", "http_harvest_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeCatalogError(w, http.StatusInternalServerError, "body", "harvest", "Harvest sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, cataloghttp.HarvestResponse{
		Status:          "ok",
		SourcesVisited:  report.SourcesVisited,
		SourcesFailed:   report.SourcesFailed,
		EventsCreated:   report.EventsCreated,
		EventsUpdated:   report.EventsUpdated,
		EventsDiscarded: report.EventsDiscarded,
	})
}

func bearerMatches(r *http.Request, token string) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(parts[1])), []byte(token)) == 1
}

func (s *Server) writeCatalogDomainError(w http.ResponseWriter, err error) {
	var validation *domainerrors.ValidationError
	switch {
	case errors.As(err, &validation):
		dtos := make([]cataloghttp.ErrorDTO, 0, len(validation.Errors))
		for _, fe := range validation.Errors {
			dtos = append(dtos, cataloghttp.ErrorDTO{Location: fe.Location, Name: fe.Name, Description: fe.Description})
		}
		writeJSON(w, http.StatusBadRequest, cataloghttp.ErrorResponse{Status: "error", Errors: dtos})
	case errors.Is(err, domainerrors.ErrForbidden):
		writeCatalogError(w, http.StatusForbidden, "header", s.opts.IdentityHeader, "A caller identity is required")
	case errors.Is(err, domainerrors.ErrRecordNotFound):
		writeCatalogError(w, http.StatusNotFound, "url", "id", "Not found")
	case errors.Is(err, domainerrors.ErrNotAcceptable):
		writeCatalogError(w, http.StatusNotAcceptable, "header", "Accept", err.Error())
	case errors.Is(err, domainerrors.ErrUnsupportedContentType):
		writeCatalogError(w, http.StatusUnsupportedMediaType, "header", "Content-Type", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidPayload):
		writeCatalogError(w, http.StatusBadRequest, "body", "body", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateRecord):
		writeCatalogError(w, http.StatusConflict, "body", "id", err.Error())
	default:
		s.logger.Error("catalog request failed",
			"event", "http_catalog_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeCatalogError(w, http.StatusInternalServerError, "body", "", "Internal server error")
	}
}

func writeCatalogError(w http.ResponseWriter, status int, location string, name string, description string) {
	writeJSON(w, status, cataloghttp.ErrorResponse{
		Status: status,
		Errors: []cataloghttp.ErrorDTO{{Location: location, Name: name, Description: description}},
	})
}

func writeRepresentation(w http.ResponseWriter, rep cataloghttp.Representation) {
	contentType := rep.ContentType
	if strings.HasPrefix(contentType, "text/") {
		contentType += "; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	if rep.Location != "" {
		w.Header().Set("Location", rep.Location)
	}
	if rep.TotalCount != nil {
		w.Header().Set("X-Total-Count", strconv.Itoa(*rep.TotalCount))
	}
	w.WriteHeader(rep.Status)
	_, _ = w.Write(rep.Body)
}

func healthResponse(status string) cataloghttp.HealthResponse {
	return cataloghttp.HealthResponse{Status: status}
}
