package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"harir-backend/internal/models"
	"harir-backend/internal/services"

	"harir-backend/pkg/utils"
)

type VisitHandler struct {
	Service *services.VisitService
}

func NewVisitHandler(s *services.VisitService) *VisitHandler {
	return &VisitHandler{Service: s}
}

// RegisterVisit handles POST /api/vehicle-visits
func (h *VisitHandler) RegisterVisit(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.RegisterVisit(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// ListVisits handles GET /api/vehicle-visits. With ?id={id} it returns a
// single visit instead, matching the query-param convention the dashboard
// uses for this resource.
func (h *VisitHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid visit ID")
			return
		}
		visit, err := h.Service.GetVisit(r.Context(), id)
		if err != nil {
			utils.Error(w, http.StatusNotFound, "Visit not found")
			return
		}
		utils.JSON(w, http.StatusOK, models.VisitResponse{Visit: visit})
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}
	includeSupplier := r.URL.Query().Get("includeSupplier") == "true" ||
		r.URL.Query().Get("include_supplier") == "true"

	visits, err := h.Service.ListVisits(r.Context(), limit, includeSupplier)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if visits == nil {
		visits = []*models.VehicleVisit{}
	}
	utils.JSON(w, http.StatusOK, models.VisitListResponse{Visits: visits})
}

// UpdateVisit handles PUT /api/vehicle-visits?id={id} - lifecycle transitions
func (h *VisitHandler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		utils.Error(w, http.StatusBadRequest, "Missing id query parameter")
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid visit ID")
		return
	}

	var req models.UpdateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Status.Valid() {
		utils.Error(w, http.StatusBadRequest, "Unknown status")
		return
	}

	visit, err := h.Service.Transition(r.Context(), id, &req)
	if err != nil {
		if err.Error() == "visit not found" {
			utils.Error(w, http.StatusNotFound, err.Error())
			return
		}
		// Lifecycle guard rejections read "cannot ... while status is ..."
		if strings.HasPrefix(err.Error(), "cannot ") {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, models.VisitResponse{Visit: visit})
}
