package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"harir-backend/internal/models"
	"harir-backend/internal/services"

	"harir-backend/pkg/utils"
)

type WeightHandler struct {
	Service *services.WeightService
}

func NewWeightHandler(s *services.WeightService) *WeightHandler {
	return &WeightHandler{Service: s}
}

// ListWeights handles GET /api/weights. The response is always the envelope
// {weights, processedGateIds} so the dashboard can rebuild its view of which
// gate entries are already weighed.
func (h *WeightHandler) ListWeights(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}
	desc := r.URL.Query().Get("order") != "asc"

	resp, err := h.Service.ListWeights(r.Context(), limit, desc)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}

// SelectForWeighing handles GET /api/weights/select?visit_id={id} - the
// pre-capture guard the dashboard calls when an operator picks a vehicle
func (h *WeightHandler) SelectForWeighing(w http.ResponseWriter, r *http.Request) {
	visitID, err := strconv.Atoi(r.URL.Query().Get("visit_id"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid visit_id")
		return
	}

	visit, err := h.Service.SelectForWeighing(r.Context(), visitID)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyWeighed) {
			utils.Error(w, http.StatusConflict, "This vehicle has already been weighed for this visit")
			return
		}
		if err.Error() == "visit not found" {
			utils.Error(w, http.StatusNotFound, err.Error())
			return
		}
		if strings.HasPrefix(err.Error(), "cannot ") {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, visit)
}

// CaptureWeight handles POST /api/weights
func (h *WeightHandler) CaptureWeight(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.Service.CaptureWeight(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyWeighed) {
			utils.Error(w, http.StatusConflict, "This vehicle has already been weighed for this visit")
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, record)
}

// UpdateWeight handles PATCH /api/weights?id={id} - partial edits
func (h *WeightHandler) UpdateWeight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid weight record ID")
		return
	}

	var req models.UpdateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.Service.UpdateWeight(r.Context(), id, &req)
	if err != nil {
		if err.Error() == "weight record not found" {
			utils.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, record)
}

// DeleteWeight handles DELETE /api/weights?id={id} - admin only
func (h *WeightHandler) DeleteWeight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid weight record ID")
		return
	}

	if err := h.Service.DeleteWeight(r.Context(), id); err != nil {
		if err.Error() == "weight record not found" {
			utils.Error(w, http.StatusNotFound, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "Weight record deleted"})
}
