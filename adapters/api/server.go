// Package api hosts the engine's narrow RPC surface over HTTP. Transport
// only: every decision and number comes from the app layer, and safety
// values cross the wire as canonical decimal strings.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mechintegrity/app"
	"mechintegrity/domain/assessment"
	"mechintegrity/domain/core"
	"mechintegrity/ports"
)

// Server exposes assess, audit read, chain verify, and the material
// coverage listing.
type Server struct {
	pool     *app.Pool
	svc      *app.AssessmentService
	material ports.MaterialTable
	log      *slog.Logger
}

// NewServer wires the handlers.
func NewServer(pool *app.Pool, svc *app.AssessmentService, material ports.MaterialTable, log *slog.Logger) *Server {
	return &Server{pool: pool, svc: svc, material: material, log: log}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/v1/assess", s.handleAssess)
	r.Get("/v1/audit/verify", s.handleVerifyAudit)
	r.Get("/v1/audit/{calculationId}", s.handleGetAudit)
	r.Get("/v1/materials", s.handleMaterials)
	return r
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var job assessment.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		s.writeError(w, http.StatusBadRequest, core.NewError(core.KindInputInvalid, "malformed job body").WithCause(err))
		return
	}
	res, err := s.pool.Submit(r.Context(), job)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseCalculationID(chi.URLParam(r, "calculationId"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, core.NewError(core.KindInputInvalid, err.Error()))
		return
	}
	entry, err := s.svc.GetAudit(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleVerifyAudit(w http.ResponseWriter, r *http.Request) {
	fromSeq := int64(1)
	toSeq := int64(-1)
	if v := r.URL.Query().Get("from"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, core.NewError(core.KindInputInvalid, "from must be an integer"))
			return
		}
		fromSeq = n
	}
	if v := r.URL.Query().Get("to"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, core.NewError(core.KindInputInvalid, "to must be an integer"))
			return
		}
		toSeq = n
	}
	res, err := s.svc.VerifyAudit(r.Context(), fromSeq, toSeq)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	coverage, err := s.material.Coverage(r.Context())
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, coverage)
}

// errorBody is the wire form of the error taxonomy: stable code plus
// human-readable detail plus machine-readable fields.
type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	body := errorBody{Code: string(core.KindOf(err)), Message: err.Error()}
	var de *core.Error
	if errors.As(err, &de) {
		body.Fields = de.Fields
	}
	s.log.Warn("request failed", "code", body.Code, "err", err)
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encode failed", "err", err)
	}
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindInputInvalid, core.KindThickWallOutOfScope, core.KindOutOfMaterialRange:
		return http.StatusUnprocessableEntity
	case core.KindPropertyMissing, core.KindNotFound:
		return http.StatusNotFound
	case core.KindDualPathDivergence, core.KindPrecisionLoss, core.KindArithmeticFailure:
		return http.StatusConflict
	case core.KindBudgetExceeded:
		return http.StatusServiceUnavailable
	case core.KindAuditImmutableViolation:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
