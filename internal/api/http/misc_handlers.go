package httpapi

import (
	"net/http"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	limit, offset := parseLimitOffset(r, 50, 200)
	ns, err := s.notifySvc.List(r.Context(), actor, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": ns})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "notificationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid notificationId")
		return
	}
	if err := s.notifySvc.MarkRead(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"notification_id": id, "read": true})
}

type paymentConfigRequest struct {
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	APIToken      string `json:"api_token"`
	Active        bool   `json:"active"`
}

func (s *Server) getPaymentConfig(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	cfg, err := s.reconcileSvc.GetConfig(r.Context(), actor)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if cfg == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no payment config")
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) setPaymentConfig(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	var req paymentConfigRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	cfg, err := s.reconcileSvc.SetConfig(r.Context(), actor, req.AccountNumber, req.BankCode, req.APIToken, req.Active)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
