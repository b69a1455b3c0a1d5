package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehub/leasehub/internal/application/lifecycle"
	"github.com/leasehub/leasehub/internal/domain/contract"
)

type contractCreateRequest struct {
	RoomID          string          `json:"room_id"`
	TenantID        string          `json:"tenant_id"`
	ApplicationID   *string         `json:"application_id,omitempty"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	Deposit         decimal.Decimal `json:"deposit"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	NoticeDays      int             `json:"notice_days,omitempty"`
	SkipNegotiation bool            `json:"skip_negotiation,omitempty"`
}

func (s *Server) createContract(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	var req contractCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid room_id")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid tenant_id")
		return
	}
	in := lifecycle.CreateContractInput{
		LandlordID:      actor,
		RoomID:          roomID,
		TenantID:        tenantID,
		MonthlyRent:     req.MonthlyRent,
		Deposit:         req.Deposit,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		NoticeDays:      req.NoticeDays,
		SkipNegotiation: req.SkipNegotiation,
	}
	if req.ApplicationID != nil {
		appID, err := uuid.Parse(*req.ApplicationID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid application_id")
			return
		}
		in.ApplicationID = &appID
	}
	c, err := s.lifecycleSvc.CreateContract(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) listContracts(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	limit, offset := parseLimitOffset(r, 50, 200)
	filter := contract.Filter{Search: r.URL.Query().Get("search")}
	if st := r.URL.Query().Get("status"); st != "" {
		status := contract.Status(st)
		if !status.Valid() {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "unknown status")
			return
		}
		filter.Status = &status
	}
	// The actor only ever sees their own contracts, on whichever side.
	switch r.URL.Query().Get("role") {
	case "landlord":
		filter.LandlordID = &actor
	default:
		filter.TenantID = &actor
	}
	contracts, err := s.lifecycleSvc.ListContracts(r.Context(), filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"contracts": contracts})
}

func (s *Server) getContract(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	c, err := s.lifecycleSvc.GetContract(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) sendContract(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	c, err := s.lifecycleSvc.SendContract(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) revokeContract(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	c, err := s.lifecycleSvc.RevokeContract(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) requestChanges(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	_ = decodeBody(r, &req)
	c, err := s.lifecycleSvc.RequestChanges(r.Context(), id, actor, req.Note)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) cancelContract(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = decodeBody(r, &req)
	c, err := s.lifecycleSvc.CancelContract(r.Context(), id, actor, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) tenantApprove(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	c, err := s.lifecycleSvc.TenantApprove(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// paymentStatus always answers 200 with {matched, status}; a deposit that has
// not arrived is a normal answer, not an error.
func (s *Server) paymentStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	status, err := s.lifecycleSvc.CheckPaymentStatus(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) terminationQuote(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	quote, err := s.lifecycleSvc.PreviewTermination(r.Context(), id, actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

func (s *Server) terminateContract(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.contractCall(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason     string `json:"reason"`
		NoticeDays int    `json:"notice_days"`
	}
	_ = decodeBody(r, &req)
	c, err := s.lifecycleSvc.Terminate(r.Context(), id, actor, req.Reason, req.NoticeDays)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// contractCall extracts the actor and contract id shared by every contract
// handler, writing the error response itself when either is missing.
func (s *Server) contractCall(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := parseUUIDParam(r, "contractId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid contractId")
		return uuid.Nil, uuid.Nil, false
	}
	return actor, id, true
}
