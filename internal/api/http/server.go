package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/leasehub/leasehub/internal/application/lifecycle"
	"github.com/leasehub/leasehub/internal/application/notify"
	"github.com/leasehub/leasehub/internal/application/reconcile"
	"github.com/leasehub/leasehub/internal/domain/application"
	"github.com/leasehub/leasehub/internal/domain/contract"
	"github.com/leasehub/leasehub/internal/domain/room"
)

// Server holds dependencies for HTTP handlers. Identity is external: the
// acting user arrives as an X-User-Id header set by the edge.
type Server struct {
	lifecycleSvc *lifecycle.Service
	reconcileSvc *reconcile.Service
	notifySvc    *notify.Service
}

func NewServer(lifecycleSvc *lifecycle.Service, reconcileSvc *reconcile.Service, notifySvc *notify.Service) *Server {
	return &Server{
		lifecycleSvc: lifecycleSvc,
		reconcileSvc: reconcileSvc,
		notifySvc:    notifySvc,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", s.createRoom)
			r.Get("/", s.listRooms)
			r.Get("/{roomId}", s.getRoom)
			r.Post("/{roomId}/maintenance", s.setRoomMaintenance)
		})

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", s.createApplication)
			r.Get("/", s.listApplications)
			r.Get("/{applicationId}", s.getApplication)
			r.Post("/{applicationId}/approve", s.approveApplication)
			r.Post("/{applicationId}/reject", s.rejectApplication)
			r.Post("/{applicationId}/withdraw", s.withdrawApplication)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", s.createContract)
			r.Get("/", s.listContracts)
			r.Get("/{contractId}", s.getContract)
			r.Post("/{contractId}/send", s.sendContract)
			r.Post("/{contractId}/revoke", s.revokeContract)
			r.Post("/{contractId}/request-changes", s.requestChanges)
			r.Post("/{contractId}/cancel", s.cancelContract)
			r.Post("/{contractId}/approve", s.tenantApprove)
			r.Get("/{contractId}/payment-status", s.paymentStatus)
			r.Get("/{contractId}/termination-quote", s.terminationQuote)
			r.Post("/{contractId}/terminate", s.terminateContract)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Post("/{notificationId}/read", s.markNotificationRead)
		})

		r.Route("/payment-config", func(r chi.Router) {
			r.Get("/", s.getPaymentConfig)
			r.Put("/", s.setPaymentConfig)
		})
	})

	return r
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps domain errors onto the HTTP surface: transition
// and occupancy conflicts are 409, authorization failures 403, missing rows
// 404, the rest 400.
func respondServiceError(w http.ResponseWriter, err error) {
	var transitionErr *contract.InvalidTransitionError
	var unavailableErr *room.UnavailableError
	switch {
	case errors.As(err, &transitionErr):
		respondError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.As(err, &unavailableErr):
		respondError(w, http.StatusConflict, "ROOM_UNAVAILABLE", err.Error())
	case errors.Is(err, application.ErrNotPending):
		respondError(w, http.StatusConflict, "NOT_PENDING", err.Error())
	case errors.Is(err, contract.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, contract.ErrNotFound), errors.Is(err, room.ErrNotFound), errors.Is(err, application.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	}
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, key))
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// actorFromRequest reads the authenticated user id from X-User-Id.
func actorFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.Header.Get("X-User-Id"))
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
