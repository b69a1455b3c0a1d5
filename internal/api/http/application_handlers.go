package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/leasehub/leasehub/internal/application/lifecycle"
	"github.com/leasehub/leasehub/internal/domain/application"
)

type applicationCreateRequest struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message,omitempty"`
}

func (s *Server) createApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	var req applicationCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid room_id")
		return
	}
	a, err := s.lifecycleSvc.CreateApplication(r.Context(), lifecycle.CreateApplicationInput{
		RoomID:   roomID,
		TenantID: actor,
		Message:  req.Message,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) listApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := application.Filter{}
	switch r.URL.Query().Get("role") {
	case "landlord":
		filter.LandlordID = &actor
	default:
		filter.TenantID = &actor
	}
	if st := r.URL.Query().Get("status"); st != "" {
		status := application.Status(st)
		filter.Status = &status
	}
	apps, err := s.lifecycleSvc.ListApplications(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

func (s *Server) getApplication(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.applicationCall(w, r)
	if !ok {
		return
	}
	a, err := s.lifecycleSvc.GetApplication(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) approveApplication(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.applicationCall(w, r)
	if !ok {
		return
	}
	a, err := s.lifecycleSvc.ApproveApplication(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) rejectApplication(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.applicationCall(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = decodeBody(r, &req)
	a, err := s.lifecycleSvc.RejectApplication(r.Context(), id, actor, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) withdrawApplication(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.applicationCall(w, r)
	if !ok {
		return
	}
	a, err := s.lifecycleSvc.WithdrawApplication(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) applicationCall(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := parseUUIDParam(r, "applicationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid applicationId")
		return uuid.Nil, uuid.Nil, false
	}
	return actor, id, true
}
