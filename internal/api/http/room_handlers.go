package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehub/leasehub/internal/application/lifecycle"
)

type roomCreateRequest struct {
	RoomNumber    string          `json:"room_number"`
	PricePerMonth decimal.Decimal `json:"price_per_month"`
}

func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	var req roomCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	rm, err := s.lifecycleSvc.CreateRoom(r.Context(), lifecycle.CreateRoomInput{
		LandlordID:    actor,
		RoomNumber:    req.RoomNumber,
		PricePerMonth: req.PricePerMonth,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rm)
}

func (s *Server) listRooms(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	var landlordID *uuid.UUID
	if v := r.URL.Query().Get("landlord_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid landlord_id")
			return
		}
		landlordID = &id
	}
	rooms, err := s.lifecycleSvc.ListRooms(r.Context(), landlordID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

func (s *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "roomId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid roomId")
		return
	}
	rm, err := s.lifecycleSvc.GetRoom(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rm)
}

func (s *Server) setRoomMaintenance(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-Id header required")
		return
	}
	id, err := parseUUIDParam(r, "roomId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid roomId")
		return
	}
	var req struct {
		Maintenance bool `json:"maintenance"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	rm, err := s.lifecycleSvc.SetRoomMaintenance(r.Context(), id, actor, req.Maintenance)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rm)
}
