package api

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/erazemk/skatedesk/internal/rental"
	"github.com/erazemk/skatedesk/internal/store"
)

// recentActivityLimit caps the activity feed shown on the dashboard.
const recentActivityLimit = 20

// RentalHandler serves the scan, action and dashboard endpoints.
type RentalHandler struct {
	DB      *sql.DB
	Service *rental.Service
	Logger  *zap.SugaredLogger
}

type scanRequest struct {
	QRCode string `json:"qr_code"`
}

type actionRequest struct {
	Action       string `json:"action"`
	Notes        string `json:"notes"`
	TargetStatus string `json:"target_status"`
}

// Dashboard handles GET /api/dashboard.
func (h *RentalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		rentalError(w, h.Logger, err)
		return
	}

	recent, err := store.ListRecentActivity(r.Context(), h.DB, recentActivityLimit)
	if err != nil {
		h.Logger.Errorw("Failed to list recent activity", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	d.Recent = recent

	jsonResponse(w, http.StatusOK, d)
}

// Scan handles POST /api/scan.
func (h *RentalHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.Service.LookupByQR(r.Context(), req.QRCode)
	if err != nil {
		rentalError(w, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, view)
}

// Action handles POST /api/items/{id}/actions. The acting agent is always
// the authenticated caller.
func (h *RentalHandler) Action(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	res, err := h.Service.ProcessAction(r.Context(), rental.ActionRequest{
		ItemID:       id,
		Action:       req.Action,
		Notes:        req.Notes,
		TargetStatus: req.TargetStatus,
		AgentID:      claims.UserID,
		AgentName:    claims.AgentName(),
	})
	if err != nil {
		rentalError(w, h.Logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

