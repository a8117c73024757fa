package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/approval"
	"github.com/viant/hitl/service/store"
)

type createRequest struct {
	Kind           string                 `json:"kind"`
	AgentID        string                 `json:"agentId"`
	Title          string                 `json:"title"`
	Content        string                 `json:"content"`
	Context        map[string]interface{} `json:"context,omitempty"`
	Priority       string                 `json:"priority,omitempty"`
	TimeoutSeconds int                    `json:"timeoutSeconds,omitempty"`
}

type decisionRequest struct {
	DecidedBy string `json:"decidedBy"`
	Reason    string `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input createRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	submission := approval.Submission{
		Kind:     model.Kind(input.Kind),
		AgentID:  input.AgentID,
		Title:    input.Title,
		Content:  input.Content,
		Context:  input.Context,
		Priority: model.Priority(input.Priority),
	}
	if input.TimeoutSeconds > 0 {
		submission.Timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	request, err := s.approvals.RequestApproval(r.Context(), submission)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{
		Kind:    model.Kind(r.URL.Query().Get("kind")),
		AgentID: r.URL.Query().Get("agentId"),
	}
	if value := r.URL.Query().Get("status"); value != "" {
		status, err := model.ParseStatus(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		filter.Status = []model.Status{status}
	}
	if value := r.URL.Query().Get("limit"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		filter.Limit = limit
	}
	filter.ByPriority = r.URL.Query().Get("byPriority") == "true"
	records, err := s.approvals.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": records,
		"count":    len(records),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	request, err := s.approvals.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, true)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, false)
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request, approved bool) {
	var input decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	request, err := s.approvals.Decide(r.Context(), mux.Vars(r)["id"], approved, input.DecidedBy, input.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	request, err := s.approvals.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		writeError(w, http.StatusNotFound, errors.New("stats tracking disabled"))
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps service sentinel errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, store.ErrInvalidID), errors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, approval.ErrReasonRequired):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
