package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	procerr "proc-lab/errors"
	"proc-lab/services"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to encode response", "err", err)
	}
}

// writeError maps the core error taxonomy onto HTTP statuses:
// NotFound → 404, LimitExceeded and malformed fields → 400, unknown
// resource class → 422. Anything else is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, procerr.ErrProcessNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Detail: err.Error()})
	case errors.Is(err, procerr.ErrUnknownClass):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	case errors.Is(err, procerr.ErrValidation),
		errors.Is(err, procerr.ErrLimitExceeded),
		errors.Is(err, procerr.ErrProcessTerminated),
		errors.Is(err, procerr.ErrNotTerminated):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	default:
		s.log.Error("Unhandled error", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "internal error"})
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var request services.CreateProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body"})
		return
	}
	record, err := s.processes.Create(request)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.processes.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.processes.Delete(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	view, err := s.processes.Resources(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateUsage(w http.ResponseWriter, r *http.Request) {
	var request services.UpdateUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body"})
		return
	}
	record, err := s.processes.UpdateUsage(r.PathValue("id"), request)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"process_id": record.ID,
		"usage":      record.Usage,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	record, err := s.rebalancer.EvaluateProcess(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if err := s.processes.Purge(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// Look the process up first so unknown ids are a 404, not an empty list.
	if _, err := s.processes.Get(id); err != nil {
		s.writeError(w, err)
		return
	}
	events, err := s.journal.History(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"process_id":  id,
		"transitions": events,
	})
}

func (s *Server) handleRebalance(w http.ResponseWriter, r *http.Request) {
	report, err := s.rebalancer.Rebalance()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":               "success",
		"processes_rebalanced": report.Upgrades + report.Downgrades,
		"total_evaluated":      report.TotalEvaluated,
		"upgrades":             report.Upgrades,
		"downgrades":           report.Downgrades,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.stats.Stats())
}

func (s *Server) handleMonitoring(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitoring.GetLatest())
}
